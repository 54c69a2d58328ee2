// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file instruments HTTP traffic with Prometheus. Labels are kept to
// method, registered route, and status so cardinality stays bounded even
// when clients probe random URLs; unmatched requests fall back to the raw
// path, which is acceptable because they all collapse into 404.
package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// httpReqs counts requests by method, route, and status code.
	httpReqs = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "debate",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests processed.",
	}, []string{"method", "path", "status"})

	// httpLat records request duration. Status is deliberately not a label;
	// the latency of a route matters more than the latency of each outcome.
	httpLat = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "debate",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	// httpInflight gauges requests currently being handled. Long-lived
	// websocket sessions sit in this gauge for their whole lifetime, so a
	// high steady value is expected under room load.
	httpInflight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "debate",
		Subsystem: "http",
		Name:      "requests_inflight",
		Help:      "HTTP requests currently in flight.",
	})

	// httpRespSize captures response body sizes. Buckets span small JSON
	// envelopes up to multi-megabyte synthesized audio.
	httpRespSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "debate",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response sizes.",
		Buckets: []float64{
			256, 1 << 10, 4 << 10, 16 << 10, 64 << 10,
			256 << 10, 1 << 20, 4 << 20, 16 << 20,
		},
	}, []string{"method", "path"})
)

// Metrics returns a Gin middleware that records request count, latency,
// in-flight concurrency, and response size for every request.
//
// The path label uses c.FullPath() so parameterized routes stay a single
// series; hijacked connections (websocket upgrades) report a size of -1 and
// are skipped in the size histogram.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())

		httpReqs.WithLabelValues(method, path, status).Inc()
		httpLat.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
		if size := c.Writer.Size(); size >= 0 {
			httpRespSize.WithLabelValues(method, path).Observe(float64(size))
		}
	}
}
