package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run outcome label values.
const (
	OutcomeSuccess          = "success"
	OutcomeContentFailed    = "content_failed"
	OutcomeThumbnailFailed  = "thumbnail_failed"
	OutcomeInvalidInput     = "invalid_input"
	OutcomeInsufficientCoin = "insufficient_coins"
)

// Metrics holds the service's Prometheus collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	GenerationRuns     *prometheus.CounterVec
	GenerationDuration prometheus.Histogram
	CoinsDebited       prometheus.Counter
	CoinsCredited      prometheus.Counter
	Purchases          *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		GenerationRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "viralstudio_generation_runs_total",
			Help: "Generation runs by outcome.",
		}, []string{"outcome"}),
		GenerationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "viralstudio_generation_duration_seconds",
			Help:    "Wall time of successful generation runs.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		CoinsDebited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "viralstudio_coins_debited_total",
			Help: "Coins debited for completed generation runs.",
		}),
		CoinsCredited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "viralstudio_coins_credited_total",
			Help: "Coins credited through purchases.",
		}),
		Purchases: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "viralstudio_purchases_total",
			Help: "Stubbed purchases by plan.",
		}, []string{"plan"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.GenerationRuns,
		m.GenerationDuration,
		m.CoinsDebited,
		m.CoinsCredited,
		m.Purchases,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
