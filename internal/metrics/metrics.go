package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	RateRequestsTotal       *prometheus.CounterVec
	ConversionRequestsTotal prometheus.Counter

	CacheHitsTotal      *prometheus.CounterVec
	CacheMissesTotal    *prometheus.CounterVec
	StaleServedTotal    *prometheus.CounterVec
	UpstreamFetchTotal  *prometheus.CounterVec
	UpstreamFetchTime   *prometheus.HistogramVec
	SchedulerRefreshes  *prometheus.CounterVec
	SnapshotLastUpdated *prometheus.GaugeVec
}

// NewMetrics registers every collector on reg. Tests pass a fresh
// prometheus.NewRegistry() so repeated construction does not collide.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"path", "method", "status_code"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"path", "method"},
		),

		RateRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_requests_total",
				Help: "Total number of rate listing requests",
			},
			[]string{"feed"},
		),

		ConversionRequestsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "conversion_requests_total",
				Help: "Total number of conversion requests",
			},
		),

		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_cache_hits_total",
				Help: "Reads served from a fresh snapshot",
			},
			[]string{"feed"},
		),

		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_cache_misses_total",
				Help: "Reads that found no snapshot or a stale one",
			},
			[]string{"feed"},
		),

		StaleServedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_stale_served_total",
				Help: "Reads answered with a stale snapshot after a failed fetch",
			},
			[]string{"feed"},
		),

		UpstreamFetchTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_upstream_fetch_total",
				Help: "Upstream fetch attempts by result",
			},
			[]string{"feed", "result"},
		),

		UpstreamFetchTime: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "rate_upstream_fetch_duration_seconds",
				Help:    "Upstream fetch duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"feed"},
		),

		SchedulerRefreshes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rate_scheduler_refresh_total",
				Help: "Background refreshes triggered by the scheduler, by result",
			},
			[]string{"feed", "result"},
		),

		SnapshotLastUpdated: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "rate_snapshot_last_updated_timestamp_seconds",
				Help: "Unix time of the current snapshot per feed",
			},
			[]string{"feed"},
		),
	}
}
