package kvstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/poyrazK/domainfolio/internal/core/ports"
)

const DefaultPollInterval = time.Second

// PostgresStore keeps values in the kv_entries table. Every write bumps the
// row version; Poll compares versions to detect writes made by other nodes.
type PostgresStore struct {
	db     *sql.DB
	events *fanout
	logger *slog.Logger

	mu   sync.Mutex
	seen map[string]int64
}

func NewPostgresStore(db *sql.DB, logger *slog.Logger) *PostgresStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PostgresStore{
		db:     db,
		events: newFanout(),
		logger: logger,
		seen:   make(map[string]int64),
	}
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_entries WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	query := `INSERT INTO kv_entries (key, value, version, updated_at) VALUES ($1, $2, 1, $3)
	          ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, version = kv_entries.version + 1, updated_at = EXCLUDED.updated_at
	          RETURNING version`
	var version int64
	if err := s.db.QueryRowContext(ctx, query, key, value, time.Now().UTC()).Scan(&version); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	// Own writes are announced through Notify, not by the poller.
	s.mu.Lock()
	s.seen[key] = version
	s.mu.Unlock()
	return nil
}

func (s *PostgresStore) Notify(_ context.Context, topic string) error {
	s.events.publish(ports.ChangeEvent{Topic: topic})
	return nil
}

func (s *PostgresStore) Subscribe(ctx context.Context) (<-chan ports.ChangeEvent, error) {
	return s.events.subscribe(ctx), nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Poll checks row versions every interval until ctx is cancelled and
// publishes an event for each key changed outside this process. The first
// pass only records the baseline.
func (s *PostgresStore) Poll(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	s.logger.Info("starting kv poller", "interval", interval)

	if _, err := s.pollOnce(ctx, true); err != nil {
		s.logger.Warn("initial kv poll failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("shutting down kv poller")
			return nil
		case <-ticker.C:
			changed, err := s.pollOnce(ctx, false)
			if err != nil {
				s.logger.Warn("kv poll failed", "error", err)
				continue
			}
			for _, key := range changed {
				s.events.publish(ports.ChangeEvent{Topic: ports.TopicForKey(key), Key: key})
			}
		}
	}
}

// pollOnce returns the keys whose version differs from the last one seen.
func (s *PostgresStore) pollOnce(ctx context.Context, baseline bool) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, version FROM kv_entries`)
	if err != nil {
		return nil, err
	}
	defer func() {
		if errClose := rows.Close(); errClose != nil {
			s.logger.Warn("failed to close rows", "error", errClose)
		}
	}()

	current := make(map[string]int64)
	for rows.Next() {
		var key string
		var version int64
		if err := rows.Scan(&key, &version); err != nil {
			return nil, err
		}
		current[key] = version
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	var changed []string
	for key, version := range current {
		if prev, ok := s.seen[key]; !ok || prev != version {
			if !baseline {
				changed = append(changed, key)
			}
			s.seen[key] = version
		}
	}
	return changed, nil
}
