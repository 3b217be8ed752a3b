// Package kvstore implements ports.KVStore on top of memory, Redis and
// PostgreSQL.
package kvstore

import (
	"context"
	"sync"

	"github.com/poyrazK/domainfolio/internal/core/ports"
	"github.com/poyrazK/domainfolio/internal/infrastructure/metrics"
)

// subscriber holds at most one undelivered event per topic. An event for a
// topic that is already pending replaces it.
type subscriber struct {
	mu      sync.Mutex
	pending map[string]ports.ChangeEvent
	order   []string
	wake    chan struct{}
}

func (s *subscriber) push(ev ports.ChangeEvent) {
	s.mu.Lock()
	if _, ok := s.pending[ev.Topic]; ok {
		metrics.NotificationsCoalesced.Inc()
	} else {
		s.order = append(s.order, ev.Topic)
	}
	s.pending[ev.Topic] = ev
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *subscriber) pop() (ports.ChangeEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.order) == 0 {
		return ports.ChangeEvent{}, false
	}
	topic := s.order[0]
	s.order = s.order[1:]
	ev := s.pending[topic]
	delete(s.pending, topic)
	return ev, true
}

// fanout delivers change events to every live subscriber without blocking
// the publisher.
type fanout struct {
	mu   sync.Mutex
	subs map[int]*subscriber
	next int
}

func newFanout() *fanout {
	return &fanout{subs: make(map[int]*subscriber)}
}

func (f *fanout) subscribe(ctx context.Context) <-chan ports.ChangeEvent {
	sub := &subscriber{
		pending: make(map[string]ports.ChangeEvent),
		wake:    make(chan struct{}, 1),
	}
	out := make(chan ports.ChangeEvent)

	f.mu.Lock()
	id := f.next
	f.next++
	f.subs[id] = sub
	f.mu.Unlock()

	go func() {
		defer close(out)
		defer func() {
			f.mu.Lock()
			delete(f.subs, id)
			f.mu.Unlock()
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case <-sub.wake:
			}
			for {
				ev, ok := sub.pop()
				if !ok {
					break
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out
}

func (f *fanout) publish(ev ports.ChangeEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, sub := range f.subs {
		sub.push(ev)
	}
}
