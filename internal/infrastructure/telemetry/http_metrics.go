package telemetry

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// HTTPMetrics records request counts and latency per route
type HTTPMetrics struct {
	requests *Counter
	duration *Histogram
}

// NewHTTPMetrics registers the HTTP server instruments on meter
func NewHTTPMetrics(meter metric.Meter) (*HTTPMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	requests, err := NewCounter(meter, "http_server_requests_total", "HTTP requests served", "{requests}")
	if err != nil {
		return nil, err
	}
	duration, err := NewHistogram(meter, "http_server_request_duration_seconds",
		"HTTP request latency", "s", HTTPDurationBuckets...)
	if err != nil {
		return nil, err
	}
	return &HTTPMetrics{requests: requests, duration: duration}, nil
}

// Record records one finished request
func (m *HTTPMetrics) Record(ctx context.Context, method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.Inc(ctx,
		AttrHTTPMethod.String(method),
		AttrHTTPRoute.String(route),
		AttrHTTPStatus.String(strconv.Itoa(status)),
	)
	m.duration.RecordDuration(ctx, elapsed,
		AttrHTTPMethod.String(method),
		AttrHTTPRoute.String(route),
	)
}
