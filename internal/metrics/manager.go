// Package metrics defines the prometheus collectors the server exports.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	// counters
	CounterRequests             *prometheus.CounterVec
	CounterEntriesAdded         *prometheus.CounterVec
	CounterSetsCompleted        prometheus.Counter
	CounterPersonalRecords      prometheus.Counter
	CounterDashboardRecomputes  prometheus.Counter
	CounterStoreErrors          *prometheus.CounterVec
	CounterHandleRequestPanic   prometheus.Counter
	CounterNotificationsDropped prometheus.Counter

	// gauges
	GaugeRequests      prometheus.Gauge
	GaugeSubscriptions prometheus.Gauge

	// histograms
	HistRequestDuration   *prometheus.HistogramVec
	HistRecomputeDuration prometheus.Histogram
}

func NewTestManager() *Manager {
	return NewManager("mealtracker", "test_server", prometheus.NewRegistry())
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("mealtracker", "test_server", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request",
			Help:      "The total number of incoming requests",
		}, []string{"method", "status"}),
		CounterEntriesAdded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "entries_added",
			Help:      "The total number of logged food entries, by source",
		}, []string{"source"}),
		CounterSetsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "sets_completed",
			Help:      "The total number of workout sets marked completed",
		}),
		CounterPersonalRecords: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "personal_records",
			Help:      "The total number of weight PRs detected",
		}),
		CounterDashboardRecomputes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "dashboard_recomputes",
			Help:      "The total number of dashboard recomputations triggered by change notifications",
		}),
		CounterStoreErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "store_errors",
			Help:      "The total number of failed store operations",
		}, []string{"op"}),
		CounterHandleRequestPanic: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "handle_request_panic",
			Help:      "The total number of serve request panics",
		}),
		CounterNotificationsDropped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "notifications_dropped",
			Help:      "Change notifications coalesced because a subscriber was already signalled",
		}),
		GaugeRequests: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "current_requests",
			Help:      "Current number of requests served",
		}),
		GaugeSubscriptions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "subscriptions",
			Help:      "Current number of change subscriptions",
		}),
		HistRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			Name:      "request_duration_seconds",
			Help:      "Total duration of requests in seconds",
		}, []string{"route"}),
		HistRecomputeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			Name:      "dashboard_recompute_duration_seconds",
			Help:      "Duration of a single dashboard recomputation in seconds",
		}),
	}
}
