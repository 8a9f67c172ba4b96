package fedauth

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics collects transport and exchange counters. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	Requests  *prometheus.CounterVec
	InFlight  prometheus.Gauge
	Duration  prometheus.Histogram
	Exchanges *prometheus.CounterVec
}

// NewMetrics builds the collectors and registers them with reg when reg is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fedauth_transport_requests_total",
			Help: "Total number of transport requests grouped by outcome",
		}, []string{"outcome"}),
		InFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fedauth_transport_inflight",
			Help: "Number of transport requests currently in flight",
		}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "fedauth_transport_request_duration_seconds",
			Help:    "Transport request latency",
			Buckets: prometheus.DefBuckets,
		}),
		Exchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "fedauth_exchange_total",
			Help: "Total number of finished backend exchanges grouped by provider and result",
		}, []string{"provider", "result"}),
	}

	if reg != nil {
		reg.MustRegister(m.Requests, m.InFlight, m.Duration, m.Exchanges)
	}
	return m
}

func (m *Metrics) transportStarted() {
	if m == nil {
		return
	}
	m.InFlight.Inc()
}

func (m *Metrics) transportFinished(outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.InFlight.Dec()
	m.Requests.WithLabelValues(outcome).Inc()
	m.Duration.Observe(elapsed.Seconds())
}

func (m *Metrics) exchangeFinished(provider ProviderKind, err error) {
	if m == nil {
		return
	}
	result := "success"
	if err != nil {
		result = "failed"
		if ae, ok := AsAuthError(err); ok {
			result = string(ae.Phase)
		}
	}
	if provider == "" {
		provider = "identity"
	}
	m.Exchanges.WithLabelValues(string(provider), result).Inc()
}
