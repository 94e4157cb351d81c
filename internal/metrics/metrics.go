package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	globalCollector *Collector
	collectorMutex  sync.Mutex
)

// Collector holds the service's Prometheus metrics on a private registry.
type Collector struct {
	registry *prometheus.Registry

	Lookups          *prometheus.CounterVec
	StoreErrors      *prometheus.CounterVec
	FallbackRequests *prometheus.CounterVec
	FallbackDuration prometheus.Histogram
	SeedRows         prometheus.Gauge
}

// NewCollector builds a collector with its own registry.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		Lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lookups_total",
			Help:      "Symptom lookups by result source",
		}, []string{"source"}),
		StoreErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Graph store failures by operation",
		}, []string{"op"}),
		FallbackRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallback_requests_total",
			Help:      "External fallback calls by outcome",
		}, []string{"outcome"}),
		FallbackDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fallback_request_duration_seconds",
			Help:      "External fallback call latency",
			Buckets:   prometheus.DefBuckets,
		}),
		SeedRows: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "seed_rows_loaded",
			Help:      "Rows written by the last successful load",
		}),
	}

	registry.MustRegister(
		c.Lookups,
		c.StoreErrors,
		c.FallbackRequests,
		c.FallbackDuration,
		c.SeedRows,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

// Default returns the process-wide collector, creating it once.
func Default() *Collector {
	collectorMutex.Lock()
	defer collectorMutex.Unlock()
	if globalCollector == nil {
		globalCollector = NewCollector("symptom_finder")
	}
	return globalCollector
}

func (c *Collector) Registry() *prometheus.Registry { return c.registry }

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
