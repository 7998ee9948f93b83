package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PostageMetrics exposes quoting metrics to Prometheus.
type PostageMetrics struct {
	quotes   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewPostageMetrics creates the collectors and registers them on reg.
func NewPostageMetrics(reg prometheus.Registerer) (*PostageMetrics, error) {
	m := &PostageMetrics{
		quotes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "postage_quotes_total",
			Help: "Postage quote requests by delivery module and outcome.",
		}, []string{"module", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "postage_quote_duration_seconds",
			Help:    "Time spent computing a postage quote.",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 8),
		}, []string{"module"}),
	}

	for _, c := range []prometheus.Collector{m.quotes, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

// ObserveQuote records one quote request.
func (m *PostageMetrics) ObserveQuote(module, outcome string, duration time.Duration) {
	m.quotes.WithLabelValues(module, outcome).Inc()
	m.duration.WithLabelValues(module).Observe(duration.Seconds())
}
