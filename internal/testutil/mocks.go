package testutil

import (
	"context"
	"slices"
	"sync/atomic"

	"github.com/poyrazK/domainfolio/internal/core/domain"
)

// StaticSeed implements ports.SeedSource over a fixed slice.
type StaticSeed struct {
	Records []domain.DomainRecord
	Err     error
}

func (s *StaticSeed) Domains(_ context.Context) ([]domain.DomainRecord, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return slices.Clone(s.Records), nil
}

// CountingInvalidator records how often the view was invalidated.
type CountingInvalidator struct {
	calls atomic.Int64
}

func (c *CountingInvalidator) Invalidate() { c.calls.Add(1) }

func (c *CountingInvalidator) Calls() int { return int(c.calls.Load()) }

// Seed builds a fully shaped seed record.
func Seed(id, name string, status domain.Status, renewal string) domain.DomainRecord {
	r := domain.DomainRecord{
		ID:               id,
		Name:             name,
		Type:             domain.TypeSite,
		Status:           status,
		Project:          "Retail",
		Department:       "Marketing",
		Owner:            "Anna",
		Registrar:        "Namecheap",
		RegistrationDate: "2020-01-01",
		ExpirationDate:   "2030-01-01",
		RenewalDate:      renewal,
		CreatedAt:        "2020-01-01T00:00:00Z",
		UpdatedAt:        "2024-01-01T00:00:00Z",
	}
	r.ApplyDefaults()
	return r
}
