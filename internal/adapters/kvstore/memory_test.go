package kvstore

import (
	"context"
	"testing"
	"time"

	"github.com/poyrazK/domainfolio/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_GetSet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, found, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, found)

	value := []byte(`{"a":1}`)
	require.NoError(t, store.Set(ctx, "k", value))
	value[0] = 'x'

	got, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `{"a":1}`, string(got))

	got[0] = 'y'
	again, _, _ := store.Get(ctx, "k")
	assert.Equal(t, `{"a":1}`, string(again))
	assert.NoError(t, store.Ping(ctx))
}

func TestMemoryStore_NotifyReachesAllSubscribers(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	first, err := store.Subscribe(ctx)
	require.NoError(t, err)
	second, err := store.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, store.Notify(ctx, ports.TopicFolders))

	for _, ch := range []<-chan ports.ChangeEvent{first, second} {
		select {
		case ev := <-ch:
			assert.Equal(t, ports.TopicFolders, ev.Topic)
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for event")
		}
	}
}

func TestMemoryStore_SubscriptionClosesWithContext(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())

	events, err := store.Subscribe(ctx)
	require.NoError(t, err)
	cancel()

	select {
	case _, ok := <-events:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("subscription was not closed")
	}

	// Publishing after the subscriber left must not panic.
	assert.NoError(t, store.Notify(context.Background(), ports.TopicDomains))
}

func TestFanout_SlowSubscriberDoesNotBlock(t *testing.T) {
	f := newFanout()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events := f.subscribe(ctx)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 500; i++ {
			f.publish(ports.ChangeEvent{Topic: ports.TopicFolders})
		}
		f.publish(ports.ChangeEvent{Topic: ports.TopicDomains, Key: ports.KeyEditedDomains})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}

	seen := make(map[string]int)
	for seen[ports.TopicDomains] == 0 {
		select {
		case ev := <-events:
			seen[ev.Topic]++
		case <-time.After(time.Second):
			t.Fatalf("domains event lost behind folder events, got %v", seen)
		}
	}
	// One folders event may already be in flight when the rest coalesce.
	assert.LessOrEqual(t, seen[ports.TopicFolders], 2)
	assert.Equal(t, 1, seen[ports.TopicDomains])
}

func TestFanout_CoalescedEventKeepsLatestKey(t *testing.T) {
	f := newFanout()
	sub := &subscriber{pending: make(map[string]ports.ChangeEvent), wake: make(chan struct{}, 1)}
	f.subs[0] = sub

	f.publish(ports.ChangeEvent{Topic: ports.TopicDomains, Key: ports.KeyEditedDomains})
	f.publish(ports.ChangeEvent{Topic: ports.TopicFolders, Key: ports.KeyFolders})
	f.publish(ports.ChangeEvent{Topic: ports.TopicDomains, Key: ports.KeyDeletedDomainIDs})

	ev, ok := sub.pop()
	require.True(t, ok)
	assert.Equal(t, ports.ChangeEvent{Topic: ports.TopicDomains, Key: ports.KeyDeletedDomainIDs}, ev)
	ev, ok = sub.pop()
	require.True(t, ok)
	assert.Equal(t, ports.TopicFolders, ev.Topic)
	_, ok = sub.pop()
	assert.False(t, ok)
}
