package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

func TestSetup_Disabled(t *testing.T) {
	p, err := Setup(context.Background(), Config{Enabled: false, ServiceName: "shop"}, zap.NewNop())
	require.NoError(t, err)

	assert.False(t, p.TracingEnabled())
	assert.NotNil(t, p.Tracer("test"))
	assert.NotNil(t, p.Meter("test"))

	l := zap.NewNop()
	assert.Same(t, l, p.BridgeLogger(l))
	assert.NoError(t, p.Shutdown(context.Background()))
}

func TestSampler(t *testing.T) {
	assert.Contains(t, Sampler(1).Description(), "AlwaysOnSampler")
	assert.Equal(t, sdktrace.NeverSample().Description(), Sampler(0).Description())
	assert.Contains(t, Sampler(0.25).Description(), "TraceIDRatioBased")
}

func TestMetrics_Record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer func() { _ = mp.Shutdown(context.Background()) }()

	m, err := NewMetrics(mp.Meter(meterName))
	require.NoError(t, err)

	ctx := context.Background()
	m.RequestStarted(ctx)
	m.RequestFinished(ctx, "GET", "/api/v1/products", 200, 12*time.Millisecond)
	m.RateLimited(ctx, "login")
	m.OrderPlaced(ctx, "USD", 42.5)
	m.LoginFailed(ctx, "admin")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	names := map[string]bool{}
	for _, sm := range rm.ScopeMetrics[0].Metrics {
		names[sm.Name] = true
	}
	for _, want := range []string{
		"http.server.requests", "http.server.duration", "http.server.active_requests",
		"shop.ratelimit.rejections", "shop.orders.placed", "shop.orders.revenue", "shop.auth.login_failures",
	} {
		assert.True(t, names[want], want)
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RequestStarted(context.Background())
		m.RequestFinished(context.Background(), "GET", "/", 200, time.Millisecond)
		m.OrderPlaced(context.Background(), "USD", 1)
	})
}

func TestDBTracingPlugin_Disabled(t *testing.T) {
	p := NewDBTracingPlugin(DBTracingConfig{}, zap.NewNop())
	assert.Equal(t, 200*time.Millisecond, p.config.SlowQueryThresh)
	assert.NoError(t, p.Register(nil))
}
