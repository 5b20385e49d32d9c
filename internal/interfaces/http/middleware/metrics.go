package middleware

import (
	"strconv"
	"time"

	"github.com/crmconsole/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// httpDurationBuckets are request latency boundaries in seconds.
var httpDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// HTTPMetrics counts requests and records their latency per route.
// Unmatched routes are recorded as "unmatched" to bound cardinality.
func HTTPMetrics(meter metric.Meter) (gin.HandlerFunc, error) {
	requests, err := telemetry.NewCounter(meter,
		"http_server_request_total",
		"Total number of HTTP requests",
		"{request}")
	if err != nil {
		return nil, err
	}
	duration, err := telemetry.NewHistogram(meter,
		"http_server_request_duration_seconds",
		"HTTP request latency distribution in seconds",
		"s",
		httpDurationBuckets...)
	if err != nil {
		return nil, err
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		attrs := []attribute.KeyValue{
			attribute.String("http.method", c.Request.Method),
			attribute.String("http.route", route),
			attribute.String("http.status_code", strconv.Itoa(c.Writer.Status())),
		}
		ctx := c.Request.Context()
		requests.Inc(ctx, attrs...)
		duration.RecordDuration(ctx, time.Since(start), attrs...)
	}, nil
}
