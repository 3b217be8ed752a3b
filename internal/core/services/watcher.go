package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/poyrazK/domainfolio/internal/core/ports"
)

// Watcher consumes store change notifications and keeps the domain view
// fresh. Bursts of events are coalesced into one invalidation.
type Watcher struct {
	store    ports.KVStore
	view     Invalidator
	debounce time.Duration
	logger   *slog.Logger
}

func NewWatcher(store ports.KVStore, view Invalidator, debounce time.Duration, logger *slog.Logger) *Watcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		store:    store,
		view:     view,
		debounce: debounce,
		logger:   logger,
	}
}

// Run blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	events, err := w.store.Subscribe(ctx)
	if err != nil {
		return err
	}
	w.logger.Info("starting change watcher", "debounce", w.debounce)

	d := NewDebouncer(w.debounce)
	defer d.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("shutting down change watcher")
			return nil
		case ev, ok := <-events:
			if !ok {
				w.logger.Warn("change subscription closed")
				return nil
			}
			w.logger.Debug("change received", "topic", ev.Topic, "key", ev.Key)
			if !affectsDomainView(ev.Topic) {
				continue
			}
			if w.debounce <= 0 {
				w.view.Invalidate()
				continue
			}
			d.Trigger(w.view.Invalidate)
		}
	}
}

func affectsDomainView(topic string) bool {
	return topic == ports.TopicDomains || topic == ports.TopicLabels
}
