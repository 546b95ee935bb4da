// Package metrics collects and exposes Prometheus metrics for the gateway.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds the gateway's metric instruments.
type Collector struct {
	requests *prometheus.CounterVec
	duration prometheus.Histogram
	watchers prometheus.Gauge
}

// NewCollector registers the gateway metrics on reg and returns a Collector.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tripsync_requests_total",
			Help: "HTTP requests served, by method and status code.",
		}, []string{"method", "status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tripsync_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}),
		watchers: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tripsync_watch_streams",
			Help: "Open websocket watch streams.",
		}),
	}
	reg.MustRegister(c.requests, c.duration, c.watchers)
	return c
}

// Middleware records one observation per request.
func (c *Collector) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			c.requests.WithLabelValues(r.Method, strconv.Itoa(ww.Status())).Inc()
			c.duration.Observe(time.Since(start).Seconds())
		})
	}
}

// WatchOpened / WatchClosed track the watch-stream gauge.
func (c *Collector) WatchOpened() { c.watchers.Inc() }
func (c *Collector) WatchClosed() { c.watchers.Dec() }

// Handler returns the /metrics endpoint for the given registry.
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
