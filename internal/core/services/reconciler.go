package services

import (
	"sort"
	"time"

	"github.com/poyrazK/domainfolio/internal/core/domain"
)

const isoDate = "2006-01-02"

// Reconcile merges the seed records with the overlay of edits and synthetic
// records, drops deleted ids and annotates every record with its derived
// status. It is pure: inputs are not modified.
func Reconcile(seed []domain.DomainRecord, overlay map[string]domain.DomainPatch, deleted map[string]struct{}, now time.Time) []domain.DomainRecord {
	out := make([]domain.DomainRecord, 0, len(seed)+len(overlay))
	seen := make(map[string]struct{}, len(seed)+len(overlay))

	// 1. Seed records with their edits.
	for _, base := range seed {
		if _, gone := deleted[base.ID]; gone {
			continue
		}
		if _, dup := seen[base.ID]; dup {
			continue
		}
		seen[base.ID] = struct{}{}
		out = append(out, mergeSeed(base, overlay[base.ID]))
	}

	// 2. Records that exist only in the overlay.
	var synthetic []domain.DomainRecord
	for id, patch := range overlay {
		if !domain.IsSyntheticID(id) {
			continue
		}
		if _, gone := deleted[id]; gone {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		synthetic = append(synthetic, Materialize(id, patch, now))
	}
	sort.Slice(synthetic, func(i, j int) bool {
		if synthetic[i].CreatedAt != synthetic[j].CreatedAt {
			return synthetic[i].CreatedAt < synthetic[j].CreatedAt
		}
		return synthetic[i].ID < synthetic[j].ID
	})

	// 3. Seed order first, then synthetic.
	out = append(out, synthetic...)

	// 4. Derived status.
	for i := range out {
		out[i].StoredStatus = out[i].Status
		out[i].Status = domain.DeriveStatus(out[i].Status, out[i].RenewalDate, now)
	}
	return out
}

// mergeSeed layers patch over base. Identity and date-of-record fields
// always come from the seed; UpdatedAt and ExpirationDate come from the
// patch when it sets them.
func mergeSeed(base domain.DomainRecord, patch domain.DomainPatch) domain.DomainRecord {
	merged := patch.ApplyTo(base)
	merged.ID = base.ID
	merged.RegistrationDate = base.RegistrationDate
	merged.CreatedAt = base.CreatedAt
	merged.ApplyDefaults()
	return merged
}

// Materialize builds a complete record for a synthetic id from its patch,
// filling every unset field from the default table.
func Materialize(id string, patch domain.DomainPatch, now time.Time) domain.DomainRecord {
	stamp := now.UTC().Format(time.RFC3339)
	base := domain.DomainRecord{
		ID:               id,
		Type:             domain.TypeUnknown,
		Status:           domain.StatusUnknown,
		Project:          domain.DefaultProject,
		Department:       domain.DefaultDepartment,
		Owner:            domain.DefaultOwner,
		RegistrationDate: now.UTC().Format(isoDate),
		ExpirationDate:   now.UTC().AddDate(0, 0, 365).Format(isoDate),
		CreatedAt:        stamp,
		UpdatedAt:        stamp,
		Geo:              []string{},
		BlockedGeo:       []string{},
		Tags:             []string{},
		NSServers:        []string{},
		SSLStatus:        domain.DefaultSSLStatus,
		UpdateMethod:     domain.DefaultUpdateMethod,
		Currency:         domain.DefaultCurrency,
	}
	rec := patch.ApplyTo(base)
	rec.ID = id
	if rec.Project == "" {
		rec.Project = domain.DefaultProject
	}
	if rec.Department == "" {
		rec.Department = domain.DefaultDepartment
	}
	if rec.Owner == "" {
		rec.Owner = domain.DefaultOwner
	}
	if rec.ExpirationDate == "" {
		rec.ExpirationDate = base.ExpirationDate
	}
	rec.ApplyDefaults()
	return rec
}
