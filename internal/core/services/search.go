package services

import (
	"context"
	"log/slog"
	"time"
)

const recordSearchTimeout = 5 * time.Second

// SearchHistoryWriter persists one search text.
type SearchHistoryWriter interface {
	RecordSearch(ctx context.Context, text string) error
}

// SearchRecorder records search text once input has settled, so the
// prefixes typed on the way to a query do not fill the history.
type SearchRecorder struct {
	writer   SearchHistoryWriter
	debounce *Debouncer
	logger   *slog.Logger
}

// NewSearchRecorder returns a recorder waiting wait after the last call.
// A non-positive wait selects SearchDebounce.
func NewSearchRecorder(writer SearchHistoryWriter, wait time.Duration, logger *slog.Logger) *SearchRecorder {
	if wait <= 0 {
		wait = SearchDebounce
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchRecorder{writer: writer, debounce: NewDebouncer(wait), logger: logger}
}

// Record schedules text, replacing any text still pending.
func (s *SearchRecorder) Record(text string) {
	s.debounce.Trigger(func() {
		ctx, cancel := context.WithTimeout(context.Background(), recordSearchTimeout)
		defer cancel()
		if err := s.writer.RecordSearch(ctx, text); err != nil {
			s.logger.Warn("failed to record search", "error", err)
		}
	})
}

// Stop drops any pending text.
func (s *SearchRecorder) Stop() {
	s.debounce.Stop()
}
