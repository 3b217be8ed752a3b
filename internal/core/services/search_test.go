package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type historyWriter struct {
	mu    sync.Mutex
	texts []string
}

func (h *historyWriter) RecordSearch(_ context.Context, text string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.texts = append(h.texts, text)
	return nil
}

func (h *historyWriter) recorded() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.texts...)
}

func TestSearchRecorder_KeepsSettledText(t *testing.T) {
	w := &historyWriter{}
	r := NewSearchRecorder(w, 20*time.Millisecond, nil)

	for _, text := range []string{"s", "sh", "sho", "shop"} {
		r.Record(text)
	}

	assert.Eventually(t, func() bool { return len(w.recorded()) == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, []string{"shop"}, w.recorded())
}

func TestSearchRecorder_Stop(t *testing.T) {
	w := &historyWriter{}
	r := NewSearchRecorder(w, 20*time.Millisecond, nil)

	r.Record("shop")
	r.Stop()
	time.Sleep(60 * time.Millisecond)
	assert.Empty(t, w.recorded())
}

func TestSearchRecorder_DefaultWait(t *testing.T) {
	r := NewSearchRecorder(&historyWriter{}, 0, nil)
	assert.Equal(t, SearchDebounce, r.debounce.wait)
}
