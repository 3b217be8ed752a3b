package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/poyrazK/domainfolio/internal/core/domain"
	"github.com/poyrazK/domainfolio/internal/core/ports"
	"github.com/poyrazK/domainfolio/internal/infrastructure/metrics"
)

// MaxSearchHistory bounds the stored search history.
const MaxSearchHistory = 10

// errNoChange lets a mutation finish without writing or notifying.
var errNoChange = errors.New("no change")

// Invalidator is told synchronously that the domain view is stale.
type Invalidator interface {
	Invalidate()
}

// Gateway is the only write path into the store. Every mutation reads the
// current blob, computes the new state, writes the whole blob back and
// publishes a change notification. Rejected mutations write nothing.
type Gateway struct {
	seed   ports.SeedSource
	store  ports.KVStore
	blobs  blobs
	view   Invalidator
	mu     sync.Mutex
	logger *slog.Logger

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
}

func NewGateway(seed ports.SeedSource, store ports.KVStore, view Invalidator, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gateway{
		seed:   seed,
		store:  store,
		blobs:  blobs{store: store, logger: logger},
		view:   view,
		logger: logger,
		Clock:  time.Now,
	}
}

func (g *Gateway) stamp() string {
	return g.Clock().UTC().Format(time.RFC3339)
}

// mutate serializes fn against other mutations in this process, records the
// outcome and notifies every topic when fn changed something.
func (g *Gateway) mutate(ctx context.Context, op string, fn func() error, topics ...string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	err := fn()
	if errors.Is(err, errNoChange) {
		metrics.MutationsTotal.WithLabelValues(op, "noop").Inc()
		return nil
	}
	if err != nil {
		metrics.MutationsTotal.WithLabelValues(op, resultLabel(err)).Inc()
		return err
	}
	metrics.MutationsTotal.WithLabelValues(op, "ok").Inc()

	if g.view != nil && slices.Contains(topics, ports.TopicDomains) {
		g.view.Invalidate()
	}
	for _, topic := range topics {
		if errNotify := g.store.Notify(ctx, topic); errNotify != nil {
			g.logger.Warn("failed to publish change", "topic", topic, "error", errNotify)
		}
	}
	g.logger.Debug("mutation applied", "op", op)
	return nil
}

func resultLabel(err error) string {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return "rejected"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrDuplicate):
		return "duplicate"
	default:
		return "error"
	}
}

// current reconciles the stored state without going through any cache.
func (g *Gateway) current(ctx context.Context) (map[string]domain.DomainPatch, []domain.DomainRecord, error) {
	seed, err := g.seed.Domains(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("load seed: %w", err)
	}
	overlay, err := g.blobs.overlay(ctx)
	if err != nil {
		return nil, nil, err
	}
	deleted, _, err := g.blobs.idSet(ctx, ports.KeyDeletedDomainIDs)
	if err != nil {
		return nil, nil, err
	}
	return overlay, Reconcile(seed, overlay, deleted, g.Clock()), nil
}

func indexByID(records []domain.DomainRecord) map[string]int {
	idx := make(map[string]int, len(records))
	for i, r := range records {
		idx[r.ID] = i
	}
	return idx
}

func requireIDs(ids []string, idx map[string]int) error {
	if len(ids) == 0 {
		return domain.NewValidationError("ids", "no domains selected")
	}
	for _, id := range ids {
		if _, ok := idx[id]; !ok {
			return domain.NotFoundError("domain", id)
		}
	}
	return nil
}

// normalizePatch validates the enums carried by patch and normalizes its
// name. Derived statuses are never stored.
func normalizePatch(patch *domain.DomainPatch) error {
	if patch.Type != nil && !patch.Type.Valid() {
		return domain.NewValidationError("type", fmt.Sprintf("unknown domain type %q", *patch.Type))
	}
	if patch.Status != nil {
		if patch.Status.Derived() {
			return domain.NewValidationError("status", fmt.Sprintf("status %q is derived from the renewal date", *patch.Status))
		}
		if !patch.Status.Storable() {
			return domain.NewValidationError("status", fmt.Sprintf("unknown status %q", *patch.Status))
		}
	}
	if patch.Name == nil {
		return nil
	}
	name, err := domain.ValidateDomainName(*patch.Name)
	if err != nil {
		return err
	}
	patch.Name = &name
	return nil
}

// ApplyUpdate merges patch into the overlay entry for id.
func (g *Gateway) ApplyUpdate(ctx context.Context, id string, patch domain.DomainPatch) error {
	return g.mutate(ctx, "update_domain", func() error {
		if err := normalizePatch(&patch); err != nil {
			return err
		}
		overlay, records, err := g.current(ctx)
		if err != nil {
			return err
		}
		if err := requireIDs([]string{id}, indexByID(records)); err != nil {
			return err
		}
		stamp := g.stamp()
		patch.UpdatedAt = &stamp
		overlay[id] = overlay[id].Merge(patch)
		return save(ctx, g.blobs, ports.KeyEditedDomains, overlay)
	}, ports.TopicDomains)
}

// BulkUpdate applies the same patch to every id. Names cannot be bulk-set.
func (g *Gateway) BulkUpdate(ctx context.Context, ids []string, patch domain.DomainPatch) error {
	return g.mutate(ctx, "bulk_update", func() error {
		if patch.Name != nil {
			return domain.NewValidationError("name", "names cannot be changed in bulk; use bulk edit")
		}
		if err := normalizePatch(&patch); err != nil {
			return err
		}
		overlay, records, err := g.current(ctx)
		if err != nil {
			return err
		}
		if err := requireIDs(ids, indexByID(records)); err != nil {
			return err
		}
		stamp := g.stamp()
		patch.UpdatedAt = &stamp
		for _, id := range ids {
			overlay[id] = overlay[id].Merge(patch)
		}
		return save(ctx, g.blobs, ports.KeyEditedDomains, overlay)
	}, ports.TopicDomains)
}

// CreateDomain adds a synthetic record. The name is required and must not
// match an existing domain.
func (g *Gateway) CreateDomain(ctx context.Context, patch domain.DomainPatch) (*domain.DomainRecord, error) {
	var created domain.DomainRecord
	err := g.mutate(ctx, "create_domain", func() error {
		if patch.Name == nil {
			return domain.NewValidationError("name", "domain name cannot be empty")
		}
		if err := normalizePatch(&patch); err != nil {
			return err
		}
		overlay, records, err := g.current(ctx)
		if err != nil {
			return err
		}
		for _, r := range records {
			if strings.EqualFold(domain.NormalizeDomainName(r.Name), *patch.Name) {
				return domain.DuplicateError("domain", *patch.Name)
			}
		}

		now := g.Clock()
		id := domain.NewIDPrefix + uuid.New().String()
		stamp := now.UTC().Format(time.RFC3339)
		patch.CreatedAt = &stamp
		patch.UpdatedAt = &stamp
		if patch.RegistrationDate == nil {
			day := now.UTC().Format(isoDate)
			patch.RegistrationDate = &day
		}
		overlay[id] = patch
		if err := save(ctx, g.blobs, ports.KeyEditedDomains, overlay); err != nil {
			return err
		}

		created = Materialize(id, patch, now)
		created.StoredStatus = created.Status
		created.Status = domain.DeriveStatus(created.Status, created.RenewalDate, now)
		return nil
	}, ports.TopicDomains)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// DeleteDomains adds ids to the deletion set. Seed records stay in the seed
// and are filtered out of every view.
func (g *Gateway) DeleteDomains(ctx context.Context, ids []string) error {
	return g.mutate(ctx, "delete_domains", func() error {
		_, records, err := g.current(ctx)
		if err != nil {
			return err
		}
		if err := requireIDs(ids, indexByID(records)); err != nil {
			return err
		}
		set, list, err := g.blobs.idSet(ctx, ports.KeyDeletedDomainIDs)
		if err != nil {
			return err
		}
		list = addIDs(set, list, ids)
		return save(ctx, g.blobs, ports.KeyDeletedDomainIDs, list)
	}, ports.TopicDomains)
}

// HideDomains moves ids into the hidden partition.
func (g *Gateway) HideDomains(ctx context.Context, ids []string) error {
	return g.mutate(ctx, "hide_domains", func() error {
		_, records, err := g.current(ctx)
		if err != nil {
			return err
		}
		if err := requireIDs(ids, indexByID(records)); err != nil {
			return err
		}
		set, list, err := g.blobs.idSet(ctx, ports.KeyHiddenDomainIDs)
		if err != nil {
			return err
		}
		before := len(list)
		list = addIDs(set, list, ids)
		if len(list) == before {
			return errNoChange
		}
		return save(ctx, g.blobs, ports.KeyHiddenDomainIDs, list)
	}, ports.TopicDomains)
}

// UnhideDomains moves ids back into the visible partition.
func (g *Gateway) UnhideDomains(ctx context.Context, ids []string) error {
	return g.mutate(ctx, "unhide_domains", func() error {
		if len(ids) == 0 {
			return domain.NewValidationError("ids", "no domains selected")
		}
		_, list, err := g.blobs.idSet(ctx, ports.KeyHiddenDomainIDs)
		if err != nil {
			return err
		}
		drop := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			drop[id] = struct{}{}
		}
		kept := make([]string, 0, len(list))
		for _, id := range list {
			if _, ok := drop[id]; !ok {
				kept = append(kept, id)
			}
		}
		if len(kept) == len(list) {
			return errNoChange
		}
		return save(ctx, g.blobs, ports.KeyHiddenDomainIDs, kept)
	}, ports.TopicDomains)
}

// AssignLabel sets the label of a domain. An empty labelID clears it, also
// masking any label embedded in the record.
func (g *Gateway) AssignLabel(ctx context.Context, domainID, labelID string) error {
	return g.mutate(ctx, "assign_label", func() error {
		_, records, err := g.current(ctx)
		if err != nil {
			return err
		}
		if err := requireIDs([]string{domainID}, indexByID(records)); err != nil {
			return err
		}
		if labelID != "" {
			labels, err := g.blobs.labels(ctx)
			if err != nil {
				return err
			}
			if !slices.ContainsFunc(labels, func(l domain.Label) bool { return l.ID == labelID }) {
				return domain.NotFoundError("label", labelID)
			}
		}
		assignments, err := g.blobs.assignments(ctx)
		if err != nil {
			return err
		}
		assignments[domainID] = labelID
		return save(ctx, g.blobs, ports.KeyLabelAssignments, assignments)
	}, ports.TopicDomains)
}

// CommitBulkEdit renames several domains at once. It is the duplicate gate
// when leaving bulk-edit mode: if any two domains would share a name after
// the edit, nothing is written.
func (g *Gateway) CommitBulkEdit(ctx context.Context, names map[string]string) error {
	return g.mutate(ctx, "bulk_edit", func() error {
		if len(names) == 0 {
			return errNoChange
		}
		overlay, records, err := g.current(ctx)
		if err != nil {
			return err
		}
		idx := indexByID(records)

		normalized := make(map[string]string, len(names))
		for id, name := range names {
			i, ok := idx[id]
			if !ok {
				return domain.NotFoundError("domain", id)
			}
			n, err := domain.ValidateDomainName(name)
			if err != nil {
				return fmt.Errorf("%s: %w", records[i].Name, err)
			}
			normalized[id] = n
		}

		prospective := cloneRecords(records)
		for id, n := range normalized {
			prospective[idx[id]].Name = n
		}
		if groups := domain.FindDuplicates(prospective); len(groups) > 0 {
			dupNames := make([]string, len(groups))
			for i, grp := range groups {
				dupNames[i] = grp.Name
			}
			return domain.DuplicateError("domain", strings.Join(dupNames, ", "))
		}

		stamp := g.stamp()
		for id, n := range normalized {
			name := n
			overlay[id] = overlay[id].Merge(domain.DomainPatch{Name: &name, UpdatedAt: &stamp})
		}
		return save(ctx, g.blobs, ports.KeyEditedDomains, overlay)
	}, ports.TopicDomains)
}

// RecordSearch pushes text to the front of the search history.
func (g *Gateway) RecordSearch(ctx context.Context, text string) error {
	return g.mutate(ctx, "record_search", func() error {
		text = strings.TrimSpace(text)
		if text == "" {
			return errNoChange
		}
		history, err := g.blobs.searchHistory(ctx)
		if err != nil {
			return err
		}
		if len(history) > 0 && history[0] == text {
			return errNoChange
		}
		next := []string{text}
		for _, h := range history {
			if !strings.EqualFold(h, text) && len(next) < MaxSearchHistory {
				next = append(next, h)
			}
		}
		return save(ctx, g.blobs, ports.KeySearchHistory, next)
	}, ports.TopicSearch)
}

// addIDs appends ids not yet in set, keeping list order.
func addIDs(set map[string]struct{}, list []string, ids []string) []string {
	for _, id := range ids {
		if _, ok := set[id]; ok {
			continue
		}
		set[id] = struct{}{}
		list = append(list, id)
	}
	return list
}
