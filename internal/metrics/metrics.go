// Package metrics defines the Prometheus instrumentation for the client core.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the session core.
// Pass to components that need to record metrics.
type Metrics struct {
	RequestsTotal     *prometheus.CounterVec
	RequestDuration   *prometheus.HistogramVec
	LoginsTotal       *prometheus.CounterVec
	LogoutsTotal      *prometheus.CounterVec
	UnauthorizedTotal prometheus.Counter
	Authenticated     prometheus.Gauge
}

// New creates and registers all metrics with the given registry.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "worksphere",
				Name:      "requests_total",
				Help:      "Total number of backend API requests issued",
			},
			[]string{"method", "status"}, // status=ok/unauthorized/forbidden/error/unreachable
		),
		RequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "worksphere",
				Name:      "request_duration_seconds",
				Help:      "Backend API request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		LoginsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "worksphere",
				Name:      "logins_total",
				Help:      "Total login attempts",
			},
			[]string{"result"}, // result=success/invalid_credentials/error
		),
		LogoutsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "worksphere",
				Name:      "logouts_total",
				Help:      "Total session terminations",
			},
			[]string{"cause"}, // cause=user/timeout/invalidated
		),
		UnauthorizedTotal: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "worksphere",
				Name:      "unauthorized_total",
				Help:      "Total 401 responses observed by the gateway",
			},
		),
		Authenticated: promauto.With(reg).NewGauge(
			prometheus.GaugeOpts{
				Namespace: "worksphere",
				Name:      "authenticated",
				Help:      "1 while a session is authenticated, 0 otherwise",
			},
		),
	}
}
