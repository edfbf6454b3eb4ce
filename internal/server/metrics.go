package server

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	Requests        *prometheus.CounterVec
	Duration        prometheus.Histogram
	StrategyAttempt *prometheus.CounterVec
	StrategySuccess *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg and returns them.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "audioconvert_requests_total",
			Help: "Conversion requests by terminal outcome code.",
		}, []string{"code"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "audioconvert_duration_seconds",
			Help:    "End-to-end invocation duration.",
			Buckets: []float64{0.5, 1, 2, 4, 8, 12, 16, 20, 26},
		}),
		StrategyAttempt: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "audioconvert_strategy_attempts_total",
			Help: "Transcode attempts by strategy name.",
		}, []string{"strategy"}),
		StrategySuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "audioconvert_strategy_success_total",
			Help: "Successful conversions by strategy name.",
		}, []string{"strategy"}),
	}
	reg.MustRegister(m.Requests, m.Duration, m.StrategyAttempt, m.StrategySuccess)
	return m
}
