package kvstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/poyrazK/domainfolio/internal/config"
	"github.com/poyrazK/domainfolio/internal/core/ports"
)

// Backend is an opened store plus the background work and cleanup it needs.
type Backend struct {
	Store ports.KVStore
	// Poll, when set, must run for changes made by other processes to be
	// announced.
	Poll  func(ctx context.Context) error
	close func() error
}

func (b *Backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// Open connects the backend selected in cfg. Postgres schemas are migrated
// before the store is returned.
func Open(ctx context.Context, cfg config.Store, logger *slog.Logger) (*Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	switch cfg.Backend {
	case config.BackendMemory:
		logger.Warn("using in-memory store; state is lost on restart")
		return &Backend{Store: NewMemoryStore()}, nil

	case config.BackendRedis:
		rs := NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
		if err := rs.Ping(ctx); err != nil {
			_ = rs.Close()
			return nil, fmt.Errorf("ping redis at %s: %w", cfg.RedisAddr, err)
		}
		logger.Info("connected to redis", "addr", cfg.RedisAddr)
		return &Backend{Store: rs, close: rs.Close}, nil

	case config.BackendPostgres:
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping database: %w", err)
		}
		if err := Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		ps := NewPostgresStore(db, logger)
		logger.Info("connected to postgres")
		return &Backend{
			Store: ps,
			Poll:  func(ctx context.Context) error { return ps.Poll(ctx, cfg.PollInterval) },
			close: db.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
