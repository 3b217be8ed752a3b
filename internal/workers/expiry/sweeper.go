// Package expiry periodically recomputes derived-status counts and reports
// domains whose renewal date is near or past.
package expiry

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/poyrazK/domainfolio/internal/core/domain"
	"github.com/poyrazK/domainfolio/internal/infrastructure/metrics"
	"github.com/robfig/cron/v3"
)

// Source yields the reconciled, status-annotated domains.
type Source interface {
	Domains(ctx context.Context) ([]domain.DomainRecord, error)
}

// Entry is one domain with a renewal date inside the reporting window.
type Entry struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	Status   domain.Status `json:"status"`
	DaysLeft int           `json:"daysLeft"`
}

// Report summarizes one sweep.
type Report struct {
	At       time.Time             `json:"at"`
	Counts   map[domain.Status]int `json:"counts"`
	Expiring []Entry               `json:"expiring"`
}

// Expiring returns domains whose renewal is at most within days away,
// including already expired ones, soonest first.
func Expiring(records []domain.DomainRecord, now time.Time, within int) []Entry {
	var out []Entry
	for _, r := range records {
		days, ok := domain.DaysLeft(r.RenewalDate, now)
		if !ok || days > within {
			continue
		}
		out = append(out, Entry{ID: r.ID, Name: r.Name, Status: r.Status, DaysLeft: days})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].DaysLeft != out[j].DaysLeft {
			return out[i].DaysLeft < out[j].DaysLeft
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Sweeper runs Sweep on a cron schedule.
type Sweeper struct {
	src      Source
	schedule string
	logger   *slog.Logger

	mu   sync.Mutex
	last Report

	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
}

func NewSweeper(src Source, schedule string, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{
		src:      src,
		schedule: schedule,
		logger:   logger,
		Clock:    time.Now,
	}
}

// Sweep counts domains by derived status, publishes the counts as metrics
// and logs every domain inside the expiring window.
func (s *Sweeper) Sweep(ctx context.Context) (Report, error) {
	records, err := s.src.Domains(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("load domains: %w", err)
	}

	now := s.Clock()
	report := Report{
		At:       now,
		Counts:   make(map[domain.Status]int),
		Expiring: Expiring(records, now, domain.ExpiringWindowDays),
	}
	for _, r := range records {
		report.Counts[r.Status]++
	}

	metrics.DomainsByStatus.Reset()
	for status, n := range report.Counts {
		metrics.DomainsByStatus.WithLabelValues(string(status)).Set(float64(n))
	}

	for _, e := range report.Expiring {
		s.logger.Warn("domain renewal due", "id", e.ID, "name", e.Name, "days_left", e.DaysLeft)
	}
	s.logger.Info("expiry sweep finished",
		"domains", len(records),
		"expiring", report.Counts[domain.StatusExpiring],
		"expired", report.Counts[domain.StatusExpired],
	)

	s.mu.Lock()
	s.last = report
	s.mu.Unlock()
	return report, nil
}

// Last returns the most recent report.
func (s *Sweeper) Last() Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// Run sweeps once, then on every schedule tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	if _, err := s.Sweep(ctx); err != nil {
		s.logger.Warn("initial expiry sweep failed", "error", err)
	}

	c := cron.New()
	if _, err := c.AddFunc(s.schedule, func() {
		if _, err := s.Sweep(ctx); err != nil {
			s.logger.Warn("scheduled expiry sweep failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid expiry schedule %q: %w", s.schedule, err)
	}

	c.Start()
	s.logger.Info("expiry sweeper started", "schedule", s.schedule)

	<-ctx.Done()
	<-c.Stop().Done()
	s.logger.Info("expiry sweeper stopped")
	return nil
}
