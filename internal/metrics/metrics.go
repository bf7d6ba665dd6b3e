// Package metrics defines the service's Prometheus collectors and the gin
// middleware that feeds the HTTP request metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Engine holds the analysis-side collectors.
type Engine struct {
	AnalysesTotal    prometheus.Counter
	AreasScored      prometheus.Histogram
	FallbacksTotal   prometheus.Counter
	ParseFailures    prometheus.Counter
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter
}

// HTTP holds the request-side collectors.
type HTTP struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
}

// Registry bundles all collectors with the registry that exposes them.
type Registry struct {
	Engine *Engine
	HTTP   *HTTP
	reg    *prometheus.Registry
}

// New creates a fresh registry with all safewatch collectors registered.
func New() *Registry {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Registry{
		reg: reg,
		Engine: &Engine{
			AnalysesTotal: factory.NewCounter(prometheus.CounterOpts{
				Name: "safewatch_analyses_total",
				Help: "Number of completed safety analysis passes.",
			}),
			AreasScored: factory.NewHistogram(prometheus.HistogramOpts{
				Name:    "safewatch_areas_scored",
				Help:    "Areas scored per analysis pass.",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			}),
			FallbacksTotal: factory.NewCounter(prometheus.CounterOpts{
				Name: "safewatch_fallback_predictions_total",
				Help: "Predictions served by the heuristic fallback path.",
			}),
			ParseFailures: factory.NewCounter(prometheus.CounterOpts{
				Name: "safewatch_date_parse_failures_total",
				Help: "Incident dates that could not be normalized.",
			}),
			CacheHitsTotal: factory.NewCounter(prometheus.CounterOpts{
				Name: "safewatch_analysis_cache_hits_total",
				Help: "Safety analyses served from the Redis cache.",
			}),
			CacheMissesTotal: factory.NewCounter(prometheus.CounterOpts{
				Name: "safewatch_analysis_cache_misses_total",
				Help: "Safety analyses recomputed after a cache miss.",
			}),
		},
		HTTP: &HTTP{
			RequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
				Name: "safewatch_http_requests_total",
				Help: "HTTP requests by method, route, and status.",
			}, []string{"method", "route", "status"}),
			RequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "safewatch_http_request_duration_seconds",
				Help:    "HTTP request latency by method and route.",
				Buckets: prometheus.DefBuckets,
			}, []string{"method", "route"}),
		},
	}
}

// Handler returns the /metrics endpoint handler for this registry.
func (r *Registry) Handler() gin.HandlerFunc {
	h := promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

// Middleware records request count and latency for every route.
func (r *Registry) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		r.HTTP.RequestsTotal.WithLabelValues(
			c.Request.Method, route, strconv.Itoa(c.Writer.Status()),
		).Inc()
		r.HTTP.RequestDuration.WithLabelValues(c.Request.Method, route).
			Observe(time.Since(start).Seconds())
	}
}
