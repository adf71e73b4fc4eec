package middleware

import (
	"context"
	"time"

	"github.com/corebank/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type httpMetrics struct {
	requestTotal    *telemetry.Counter
	requestDuration *telemetry.Histogram
	activeRequests  metric.Int64UpDownCounter
}

func newHTTPMetrics(meter metric.Meter) (*httpMetrics, error) {
	b := telemetry.NewInstruments(meter)
	m := &httpMetrics{
		requestTotal:    b.Counter("http_server_request_total", "Handled HTTP requests", "{request}"),
		requestDuration: b.Histogram("http_server_request_duration_seconds", "HTTP request latency", telemetry.HTTPDurationBuckets),
		activeRequests:  b.Gauge("http_server_active_requests", "HTTP requests in flight", "{request}"),
	}
	return m, b.Err()
}

// HTTPMetrics counts requests and records their latency by method, route
// pattern and status. A nil meter disables it.
func HTTPMetrics(meter metric.Meter) (gin.HandlerFunc, error) {
	if meter == nil {
		return func(c *gin.Context) { c.Next() }, nil
	}
	m, err := newHTTPMetrics(meter)
	if err != nil {
		return nil, err
	}
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()
		m.activeRequests.Add(ctx, 1)

		c.Next()

		m.activeRequests.Add(ctx, -1)
		m.record(ctx, c.Request.Method, routePattern(c), c.Writer.Status(), time.Since(start))
	}, nil
}

func (m *httpMetrics) record(ctx context.Context, method, route string, status int, d time.Duration) {
	base := []attribute.KeyValue{
		telemetry.AttrHTTPMethod.String(method),
		telemetry.AttrHTTPRoute.String(route),
	}
	m.requestTotal.Inc(ctx, append(base, telemetry.AttrHTTPStatus.Int(status))...)
	m.requestDuration.Observe(ctx, d, base...)
}

// routePattern keeps label cardinality bounded by using the matched route
func routePattern(c *gin.Context) string {
	if route := c.FullPath(); route != "" {
		return route
	}
	return "unmatched"
}
