package testutil

import (
	"context"

	"github.com/poyrazK/domainfolio/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

// MockStore implements ports.KVStore with testify expectations.
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(key)
	var value []byte
	if v := args.Get(0); v != nil {
		value = v.([]byte)
	}
	return value, args.Bool(1), args.Error(2)
}

func (m *MockStore) Set(ctx context.Context, key string, value []byte) error {
	args := m.Called(key, value)
	return args.Error(0)
}

func (m *MockStore) Notify(ctx context.Context, topic string) error {
	args := m.Called(topic)
	return args.Error(0)
}

func (m *MockStore) Subscribe(ctx context.Context) (<-chan ports.ChangeEvent, error) {
	args := m.Called()
	var ch <-chan ports.ChangeEvent
	if v := args.Get(0); v != nil {
		ch = v.(<-chan ports.ChangeEvent)
	}
	return ch, args.Error(1)
}

func (m *MockStore) Ping(ctx context.Context) error {
	args := m.Called()
	return args.Error(0)
}
