package kvstore

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poyrazK/domainfolio/internal/core/ports"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix     = "domainfolio:"
	ChangeChannel = "domainfolio:changes"

	subscriberBuffer = 64
)

// RedisStore keeps values as Redis strings and broadcasts changes over a
// pub/sub channel, so every node sharing the Redis instance sees them.
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger
}

func NewRedisStore(addr string, password string, db int, logger *slog.Logger) *RedisStore {
	if logger == nil {
		logger = slog.Default()
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisStore{client: rdb, logger: logger}
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, keyPrefix+key, value, 0).Err()
}

func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Notify publishes topic to all nodes.
func (r *RedisStore) Notify(ctx context.Context, topic string) error {
	return r.client.Publish(ctx, ChangeChannel, topic).Err()
}

// Subscribe returns a channel of change events. The subscription is
// confirmed before Subscribe returns and closed when ctx is done.
func (r *RedisStore) Subscribe(ctx context.Context) (<-chan ports.ChangeEvent, error) {
	pubsub := r.client.Subscribe(ctx, ChangeChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	out := make(chan ports.ChangeEvent, subscriberBuffer)
	go func() {
		defer close(out)
		defer func() {
			if err := pubsub.Close(); err != nil {
				r.logger.Warn("failed to close subscription", "error", err)
			}
		}()
		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				select {
				case out <- ports.ChangeEvent{Topic: msg.Payload}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}
