package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/shopfront/backend"

// Metrics groups the instruments recorded by the HTTP layer and services.
type Metrics struct {
	requests       metric.Int64Counter
	requestLatency metric.Float64Histogram
	inFlight       metric.Int64UpDownCounter
	rateLimited    metric.Int64Counter
	ordersPlaced   metric.Int64Counter
	orderRevenue   metric.Float64Counter
	loginFailures  metric.Int64Counter
}

// NewMetrics creates the instruments on meter
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}
	var err error

	if m.requests, err = meter.Int64Counter("http.server.requests",
		metric.WithDescription("Number of HTTP requests handled"),
		metric.WithUnit("{request}")); err != nil {
		return nil, fmt.Errorf("http.server.requests: %w", err)
	}
	if m.requestLatency, err = meter.Float64Histogram("http.server.duration",
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000)); err != nil {
		return nil, fmt.Errorf("http.server.duration: %w", err)
	}
	if m.inFlight, err = meter.Int64UpDownCounter("http.server.active_requests",
		metric.WithDescription("In-flight HTTP requests")); err != nil {
		return nil, fmt.Errorf("http.server.active_requests: %w", err)
	}
	if m.rateLimited, err = meter.Int64Counter("shop.ratelimit.rejections",
		metric.WithDescription("Requests rejected by the rate limiter")); err != nil {
		return nil, fmt.Errorf("shop.ratelimit.rejections: %w", err)
	}
	if m.ordersPlaced, err = meter.Int64Counter("shop.orders.placed",
		metric.WithDescription("Orders placed through the storefront")); err != nil {
		return nil, fmt.Errorf("shop.orders.placed: %w", err)
	}
	if m.orderRevenue, err = meter.Float64Counter("shop.orders.revenue",
		metric.WithDescription("Order totals at placement")); err != nil {
		return nil, fmt.Errorf("shop.orders.revenue: %w", err)
	}
	if m.loginFailures, err = meter.Int64Counter("shop.auth.login_failures",
		metric.WithDescription("Failed login attempts")); err != nil {
		return nil, fmt.Errorf("shop.auth.login_failures: %w", err)
	}
	return m, nil
}

// RequestStarted increments the in-flight gauge
func (m *Metrics) RequestStarted(ctx context.Context) {
	if m == nil {
		return
	}
	m.inFlight.Add(ctx, 1)
}

// RequestFinished records a completed request
func (m *Metrics) RequestFinished(ctx context.Context, method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("http.request.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.response.status_code", status),
	)
	m.inFlight.Add(ctx, -1)
	m.requests.Add(ctx, 1, attrs)
	m.requestLatency.Record(ctx, float64(elapsed.Microseconds())/1000, attrs)
}

// RateLimited counts a rejected request for the limiter scope
func (m *Metrics) RateLimited(ctx context.Context, scope string) {
	if m == nil {
		return
	}
	m.rateLimited.Add(ctx, 1, metric.WithAttributes(attribute.String("scope", scope)))
}

// OrderPlaced records a new order and its total
func (m *Metrics) OrderPlaced(ctx context.Context, currency string, total float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("currency", currency))
	m.ordersPlaced.Add(ctx, 1, attrs)
	m.orderRevenue.Add(ctx, total, attrs)
}

// LoginFailed counts a failed login for the given realm (admin or customer)
func (m *Metrics) LoginFailed(ctx context.Context, realm string) {
	if m == nil {
		return
	}
	m.loginFailures.Add(ctx, 1, metric.WithAttributes(attribute.String("realm", realm)))
}
