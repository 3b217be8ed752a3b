package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MutationsTotal tracks gateway writes by operation and outcome
	MutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "domainfolio_mutations_total",
		Help: "Total number of mutations applied through the gateway",
	}, []string{"op", "result"})

	// ReconcileDuration tracks how long rebuilding the domain view takes
	ReconcileDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "domainfolio_reconcile_duration_seconds",
		Help:    "Histogram of reconcile duration",
		Buckets: prometheus.DefBuckets,
	})

	// SnapshotCache tracks reconciled-view cache hits and misses
	SnapshotCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "domainfolio_snapshot_cache_total",
		Help: "Total number of reconciled snapshot cache hits and misses",
	}, []string{"result"})

	// StorageResets counts corrupt values replaced with an empty default
	StorageResets = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "domainfolio_storage_resets_total",
		Help: "Total number of corrupt stored values reset to defaults",
	}, []string{"key"})

	// NotificationsCoalesced counts change events merged into a pending event
	// of the same topic
	NotificationsCoalesced = promauto.NewCounter(prometheus.CounterOpts{
		Name: "domainfolio_notifications_coalesced_total",
		Help: "Total number of change notifications merged for slow subscribers",
	})

	// DomainsByStatus is refreshed by the expiry sweep
	DomainsByStatus = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "domainfolio_domains",
		Help: "Number of domains by derived status",
	}, []string{"status"})

	// HTTPRequests tracks API requests by route pattern and status code
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "domainfolio_http_requests_total",
		Help: "Total number of API requests",
	}, []string{"method", "route", "code"})
)
