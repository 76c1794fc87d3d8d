package directory

import (
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes Prometheus collectors for directory calls.
type Metrics struct {
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var (
	defaultOnce    sync.Once
	defaultMetrics *Metrics
)

// NewMetrics registers the directory metrics against the provided registerer.
// When the registerer is nil the default Prometheus registerer is used.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		defaultOnce.Do(func() {
			defaultMetrics = buildMetrics(prometheus.DefaultRegisterer)
		})
		return defaultMetrics
	}
	return buildMetrics(registerer)
}

// Tracker instruments a single directory call.
type Tracker struct {
	metrics *Metrics
	op      string
	start   time.Time
}

// Track starts a tracker for the given operation.
func (m *Metrics) Track(op string) *Tracker {
	return &Tracker{metrics: m, op: op, start: time.Now()}
}

// End records the call outcome and returns err untouched.
func (t *Tracker) End(err error) error {
	if t == nil || t.metrics == nil {
		return err
	}
	t.metrics.calls.WithLabelValues(t.op, outcome(err)).Inc()
	t.metrics.duration.WithLabelValues(t.op).Observe(time.Since(t.start).Seconds())
	return err
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var upstream *UpstreamError
	if errors.As(err, &upstream) {
		switch {
		case upstream.NotFound():
			return "not_found"
		case upstream.Unauthorized():
			return "unauthorized"
		}
	}
	return "error"
}

func buildMetrics(registerer prometheus.Registerer) *Metrics {
	calls := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cepadmin_directory_calls_total",
		Help: "Directory API calls partitioned by operation and outcome.",
	}, []string{"op", "outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cepadmin_directory_call_duration_seconds",
		Help:    "Duration in seconds of directory API calls.",
		Buckets: prometheus.DefBuckets,
	}, []string{"op"})
	registerer.MustRegister(calls, duration)
	return &Metrics{calls: calls, duration: duration}
}
