package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/poyrazK/domainfolio/internal/core/domain"
	"github.com/poyrazK/domainfolio/internal/core/ports"
	"github.com/poyrazK/domainfolio/internal/infrastructure/metrics"
)

const snapshotTTL = 10 * time.Minute

// Portfolio is the read model over the store. It reconciles the seed with
// the stored overlay on demand and caches the result until the next change.
type Portfolio struct {
	seed   ports.SeedSource
	store  ports.KVStore
	blobs  blobs
	cache  *ristretto.Cache[string, []domain.DomainRecord]
	gen    atomic.Uint64
	logger *slog.Logger

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
}

// NewPortfolio creates a Portfolio. maxCost bounds the snapshot cache in
// records; zero picks a default.
func NewPortfolio(seed ports.SeedSource, store ports.KVStore, maxCost int64, logger *slog.Logger) (*Portfolio, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if maxCost <= 0 {
		maxCost = 1 << 20
	}
	cache, err := ristretto.NewCache(&ristretto.Config[string, []domain.DomainRecord]{
		NumCounters: 1000,
		MaxCost:     maxCost,
		BufferItems: 64,
	})
	if err != nil {
		return nil, fmt.Errorf("create snapshot cache: %w", err)
	}
	return &Portfolio{
		seed:   seed,
		store:  store,
		blobs:  blobs{store: store, logger: logger},
		cache:  cache,
		logger: logger,
		Clock:  time.Now,
	}, nil
}

// Invalidate drops the cached snapshot. Snapshots computed before the call
// are never served afterwards.
func (p *Portfolio) Invalidate() {
	p.gen.Add(1)
	p.cache.Clear()
}

// Close releases the snapshot cache.
func (p *Portfolio) Close() {
	p.cache.Close()
}

func (p *Portfolio) snapshotKey(now time.Time) string {
	// Derived status changes with the calendar day, so the day is part of the key.
	return fmt.Sprintf("domains:%d:%s", p.gen.Load(), now.UTC().Format(isoDate))
}

// Domains returns the reconciled, status-annotated collection.
func (p *Portfolio) Domains(ctx context.Context) ([]domain.DomainRecord, error) {
	now := p.Clock()
	key := p.snapshotKey(now)
	if cached, ok := p.cache.Get(key); ok {
		metrics.SnapshotCache.WithLabelValues("hit").Inc()
		return cloneRecords(cached), nil
	}
	metrics.SnapshotCache.WithLabelValues("miss").Inc()

	records, err := p.reconcile(ctx, now)
	if err != nil {
		return nil, err
	}
	p.cache.SetWithTTL(key, records, int64(len(records))+1, snapshotTTL)
	return cloneRecords(records), nil
}

func (p *Portfolio) reconcile(ctx context.Context, now time.Time) ([]domain.DomainRecord, error) {
	start := time.Now()
	defer func() { metrics.ReconcileDuration.Observe(time.Since(start).Seconds()) }()

	seed, err := p.seed.Domains(ctx)
	if err != nil {
		return nil, fmt.Errorf("load seed: %w", err)
	}
	overlay, err := p.blobs.overlay(ctx)
	if err != nil {
		return nil, err
	}
	deleted, _, err := p.blobs.idSet(ctx, ports.KeyDeletedDomainIDs)
	if err != nil {
		return nil, err
	}
	return Reconcile(seed, overlay, deleted, now), nil
}

func (p *Portfolio) filterContext(ctx context.Context) (FilterContext, error) {
	assignments, err := p.blobs.assignments(ctx)
	if err != nil {
		return FilterContext{}, err
	}
	folders, err := p.blobs.folders(ctx)
	if err != nil {
		return FilterContext{}, err
	}
	hidden, _, err := p.blobs.idSet(ctx, ports.KeyHiddenDomainIDs)
	if err != nil {
		return FilterContext{}, err
	}
	return FilterContext{LabelAssignments: assignments, Folders: folders, Hidden: hidden}, nil
}

// ListDomains returns the records matching pred.
func (p *Portfolio) ListDomains(ctx context.Context, pred domain.Predicate) ([]domain.DomainRecord, error) {
	records, err := p.Domains(ctx)
	if err != nil {
		return nil, err
	}
	fc, err := p.filterContext(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(records, pred, fc), nil
}

// GetDomain returns one record of the reconciled view, hidden or not.
func (p *Portfolio) GetDomain(ctx context.Context, id string) (*domain.DomainRecord, error) {
	records, err := p.Domains(ctx)
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].ID == id {
			rec := records[i]
			return &rec, nil
		}
	}
	return nil, domain.NotFoundError("domain", id)
}

// Recent returns the most recently updated visible domains.
func (p *Portfolio) Recent(ctx context.Context, limit int) ([]domain.DomainRecord, error) {
	visible, err := p.ListDomains(ctx, domain.Predicate{})
	if err != nil {
		return nil, err
	}
	return Recent(visible, limit), nil
}

// Duplicates reports groups of domains sharing a name.
func (p *Portfolio) Duplicates(ctx context.Context) ([]domain.DuplicateGroup, error) {
	records, err := p.Domains(ctx)
	if err != nil {
		return nil, err
	}
	return domain.FindDuplicates(records), nil
}

// SelectIDs narrows a selection to the ids still present in the view pred
// describes.
func (p *Portfolio) SelectIDs(ctx context.Context, pred domain.Predicate, ids []string) ([]string, error) {
	filtered, err := p.ListDomains(ctx, pred)
	if err != nil {
		return nil, err
	}
	return PruneSelection(ids, filtered), nil
}

// ExportCSV writes the domains matching pred as CSV and returns the download
// file name. When ids is non-empty only the selected domains still in that
// view are written.
func (p *Portfolio) ExportCSV(ctx context.Context, w io.Writer, pred domain.Predicate, ids []string) (string, error) {
	filtered, err := p.ListDomains(ctx, pred)
	if err != nil {
		return "", err
	}
	rows := filtered
	if len(ids) > 0 {
		keep := make(map[string]struct{}, len(ids))
		for _, id := range PruneSelection(ids, filtered) {
			keep[id] = struct{}{}
		}
		rows = rows[:0:0]
		for _, r := range filtered {
			if _, ok := keep[r.ID]; ok {
				rows = append(rows, r)
			}
		}
	}
	if err := WriteCSV(w, rows); err != nil {
		return "", err
	}
	return ExportFilename(len(ids) > 0, p.Clock()), nil
}

// Folders returns every folder.
func (p *Portfolio) Folders(ctx context.Context) ([]domain.Folder, error) {
	return p.blobs.folders(ctx)
}

// GetFolder returns a folder and the reconciled domains it contains, in
// collection order.
func (p *Portfolio) GetFolder(ctx context.Context, id string) (*domain.Folder, []domain.DomainRecord, error) {
	folders, err := p.blobs.folders(ctx)
	if err != nil {
		return nil, nil, err
	}
	for i := range folders {
		if folders[i].ID != id {
			continue
		}
		records, err := p.Domains(ctx)
		if err != nil {
			return nil, nil, err
		}
		members := make([]domain.DomainRecord, 0, len(folders[i].DomainIDs))
		for _, r := range records {
			if folders[i].Contains(r.ID) {
				members = append(members, r)
			}
		}
		f := folders[i]
		return &f, members, nil
	}
	return nil, nil, domain.NotFoundError("folder", id)
}

// Labels returns every label.
func (p *Portfolio) Labels(ctx context.Context) ([]domain.Label, error) {
	return p.blobs.labels(ctx)
}

// Users returns users, skipping soft-deleted ones unless asked.
func (p *Portfolio) Users(ctx context.Context, includeDeleted bool) ([]domain.AppUser, error) {
	users, err := p.blobs.users(ctx)
	if err != nil {
		return nil, err
	}
	if includeDeleted {
		return users, nil
	}
	out := users[:0]
	for _, u := range users {
		if u.Status != domain.UserDeleted {
			out = append(out, u)
		}
	}
	return out, nil
}

// GetUser returns a user that has not been deleted.
func (p *Portfolio) GetUser(ctx context.Context, id string) (*domain.AppUser, error) {
	users, err := p.blobs.users(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id && users[i].Status != domain.UserDeleted {
			u := users[i]
			return &u, nil
		}
	}
	return nil, domain.NotFoundError("user", id)
}

// SearchHistory returns recent search texts, newest first.
func (p *Portfolio) SearchHistory(ctx context.Context) ([]string, error) {
	return p.blobs.searchHistory(ctx)
}

// HealthCheck pings the backing store.
func (p *Portfolio) HealthCheck(ctx context.Context) map[string]error {
	return map[string]error{
		"store": p.store.Ping(ctx),
	}
}

func cloneRecords(in []domain.DomainRecord) []domain.DomainRecord {
	out := make([]domain.DomainRecord, len(in))
	copy(out, in)
	return out
}
