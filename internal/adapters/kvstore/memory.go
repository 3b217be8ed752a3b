package kvstore

import (
	"context"
	"sync"

	"github.com/poyrazK/domainfolio/internal/core/ports"
)

// MemoryStore keeps values in process memory. Used for local runs and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string][]byte
	events *fanout
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string][]byte),
		events: newFanout(),
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *MemoryStore) Notify(_ context.Context, topic string) error {
	m.events.publish(ports.ChangeEvent{Topic: topic})
	return nil
}

func (m *MemoryStore) Subscribe(ctx context.Context) (<-chan ports.ChangeEvent, error) {
	return m.events.subscribe(ctx), nil
}

func (m *MemoryStore) Ping(_ context.Context) error {
	return nil
}
