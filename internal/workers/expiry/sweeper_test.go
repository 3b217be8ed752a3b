package expiry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poyrazK/domainfolio/internal/core/domain"
	"github.com/poyrazK/domainfolio/internal/infrastructure/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	records []domain.DomainRecord
	err     error
}

func (s staticSource) Domains(context.Context) ([]domain.DomainRecord, error) {
	return s.records, s.err
}

var now = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

func fixtures() []domain.DomainRecord {
	return []domain.DomainRecord{
		{ID: "d1", Name: "a.com", Status: domain.StatusExpiring, RenewalDate: "2025-06-21"},
		{ID: "d2", Name: "b.com", Status: domain.StatusExpired, RenewalDate: "2025-05-30"},
		{ID: "d3", Name: "c.com", Status: domain.StatusActual, RenewalDate: "2026-01-01"},
		{ID: "d4", Name: "d.com", Status: domain.StatusActual},
	}
}

func TestExpiring(t *testing.T) {
	tests := []struct {
		name   string
		within int
		want   []string
	}{
		{"default window", 30, []string{"d2", "d1"}},
		{"narrow window", 5, []string{"d2"}},
		{"wide window", 365, []string{"d2", "d1", "d3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ids []string
			for _, e := range Expiring(fixtures(), now, tt.within) {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestSweep(t *testing.T) {
	s := NewSweeper(staticSource{records: fixtures()}, "@daily", nil)
	s.Clock = func() time.Time { return now }

	report, err := s.Sweep(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, report.Counts[domain.StatusActual])
	assert.Equal(t, 1, report.Counts[domain.StatusExpiring])
	assert.Equal(t, 1, report.Counts[domain.StatusExpired])
	require.Len(t, report.Expiring, 2)
	assert.Equal(t, -2, report.Expiring[0].DaysLeft)
	assert.Equal(t, 20, report.Expiring[1].DaysLeft)
	assert.Equal(t, report, s.Last())

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.DomainsByStatus.WithLabelValues("actual")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.DomainsByStatus.WithLabelValues("expired")))
}

func TestSweep_SourceError(t *testing.T) {
	s := NewSweeper(staticSource{err: errors.New("store down")}, "@daily", nil)
	_, err := s.Sweep(context.Background())
	assert.ErrorContains(t, err, "store down")
}

func TestRun_StopsOnCancel(t *testing.T) {
	s := NewSweeper(staticSource{records: fixtures()}, "@every 1h", nil)
	s.Clock = func() time.Time { return now }
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool { return !s.Last().At.IsZero() }, time.Second, 10*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestRun_InvalidSchedule(t *testing.T) {
	s := NewSweeper(staticSource{}, "not a schedule", nil)
	err := s.Run(context.Background())
	assert.ErrorContains(t, err, "invalid expiry schedule")
}
