package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RateLimitChecks   *prometheus.CounterVec
	RateLimitRejected *prometheus.CounterVec
	RateLimitErrors   prometheus.Counter
}

func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RateLimitChecks: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "potterdex_ratelimit_checks_total",
			Help: "Total number of rate limit checks by route class",
		}, []string{"class"}),
		RateLimitRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "potterdex_ratelimit_rejected_total",
			Help: "Total number of requests rejected by the rate limiter by route class",
		}, []string{"class"}),
		RateLimitErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "potterdex_ratelimit_store_errors_total",
			Help: "Total number of rate limit checks that failed open because the store errored",
		}),
	}
}

func (m *Metrics) IncrementChecks(class string) {
	m.RateLimitChecks.WithLabelValues(class).Inc()
}

func (m *Metrics) IncrementRejected(class string) {
	m.RateLimitRejected.WithLabelValues(class).Inc()
}

func (m *Metrics) IncrementErrors() {
	m.RateLimitErrors.Inc()
}
