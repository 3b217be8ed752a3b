package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/poyrazK/domainfolio/internal/core/domain"
	"github.com/poyrazK/domainfolio/internal/core/ports"
	"github.com/poyrazK/domainfolio/internal/infrastructure/metrics"
)

// blobs reads and writes the JSON documents behind each storage key.
// Corrupt documents are replaced by their empty default.
type blobs struct {
	store  ports.KVStore
	logger *slog.Logger
}

// load decodes key into a value of type T. A missing key yields def. A
// value that does not decode is logged, overwritten with def and also
// yields def.
func load[T any](ctx context.Context, b blobs, key string, def T) (T, error) {
	raw, found, err := b.store.Get(ctx, key)
	if err != nil {
		return def, fmt.Errorf("read %s: %w", key, err)
	}
	if !found || len(raw) == 0 {
		return def, nil
	}
	var out T
	if errDecode := json.Unmarshal(raw, &out); errDecode != nil {
		b.logger.Warn("discarding corrupt stored value", "key", key, "error", errDecode)
		metrics.StorageResets.WithLabelValues(key).Inc()
		if errReset := save(ctx, b, key, def); errReset != nil {
			b.logger.Error("failed to reset corrupt value", "key", key, "error", errReset)
		}
		return def, nil
	}
	return out, nil
}

func save[T any](ctx context.Context, b blobs, key string, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := b.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}

func (b blobs) overlay(ctx context.Context) (map[string]domain.DomainPatch, error) {
	m, err := load(ctx, b, ports.KeyEditedDomains, map[string]domain.DomainPatch{})
	if m == nil {
		m = make(map[string]domain.DomainPatch)
	}
	return m, err
}

func (b blobs) idSet(ctx context.Context, key string) (map[string]struct{}, []string, error) {
	ids, err := load(ctx, b, key, []string{})
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set, ids, err
}

func (b blobs) labels(ctx context.Context) ([]domain.Label, error) {
	labels, err := load(ctx, b, ports.KeyLabels, []domain.Label{})
	if labels == nil {
		labels = []domain.Label{}
	}
	return labels, err
}

func (b blobs) assignments(ctx context.Context) (map[string]string, error) {
	m, err := load(ctx, b, ports.KeyLabelAssignments, map[string]string{})
	if m == nil {
		m = make(map[string]string)
	}
	return m, err
}

func (b blobs) folders(ctx context.Context) ([]domain.Folder, error) {
	folders, err := load(ctx, b, ports.KeyFolders, []domain.Folder{})
	if folders == nil {
		folders = []domain.Folder{}
	}
	for i := range folders {
		folders[i].Normalize()
	}
	return folders, err
}

func (b blobs) users(ctx context.Context) ([]domain.AppUser, error) {
	users, err := load(ctx, b, ports.KeyUsers, []domain.AppUser{})
	if users == nil {
		users = []domain.AppUser{}
	}
	for i := range users {
		users[i].Normalize()
	}
	return users, err
}

func (b blobs) searchHistory(ctx context.Context) ([]string, error) {
	h, err := load(ctx, b, ports.KeySearchHistory, []string{})
	if h == nil {
		h = []string{}
	}
	return h, err
}
