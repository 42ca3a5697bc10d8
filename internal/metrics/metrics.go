package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "power_status"

// Metrics holds all prometheus metrics
type Metrics struct {
	Checks          *prometheus.CounterVec
	ChecksSkipped   prometheus.Counter
	CheckDuration   prometheus.Histogram
	StateChanges    *prometheus.CounterVec
	ScheduleRefresh *prometheus.CounterVec
	Notifications   *prometheus.CounterVec
}

// New registers the service metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Checks: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checks_total",
			Help:      "Availability checks by outcome (available, unavailable, error).",
		}, []string{"result"}),
		ChecksSkipped: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checks_skipped_total",
			Help:      "Checks skipped because the previous check of the place was still running.",
		}),
		CheckDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "check_duration_seconds",
			Help:      "Duration of a single place check including retries.",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 5, 30, 60, 180, 420, 900},
		}),
		StateChanges: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_changes_total",
			Help:      "Recorded availability changes by new state.",
		}, []string{"state"}),
		ScheduleRefresh: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schedule_refresh_total",
			Help:      "Schedule cache refreshes by outcome (ok, error, evicted).",
		}, []string{"result"}),
		Notifications: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_total",
			Help:      "Change notifications handed to subscribers by outcome.",
		}, []string{"subscriber", "result"}),
	}
}

// NewNop returns metrics registered on a throwaway registry, for tests and
// components that run without an exporter.
func NewNop() *Metrics {
	return New(prometheus.NewRegistry())
}
