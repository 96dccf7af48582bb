package telemetry

import (
	"context"
	"runtime/pprof"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewProfiler_Disabled(t *testing.T) {
	p, err := NewProfiler(ProfilerConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, p.Enabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestNewProfiler_RequiresServer(t *testing.T) {
	_, err := NewProfiler(ProfilerConfig{Enabled: true, ApplicationName: "shop"}, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server address")
}

func TestWithProfilingLabels(t *testing.T) {
	long := strings.Repeat("r", MaxLabelValueLength+10)
	var route, method string
	var routeOK, emptyOK bool

	WithProfilingLabels(context.Background(), map[string]string{
		"route":  long,
		"method": "GET",
		"empty":  "",
	}, func(ctx context.Context) {
		route, routeOK = pprof.Label(ctx, "route")
		method, _ = pprof.Label(ctx, "method")
		_, emptyOK = pprof.Label(ctx, "empty")
	})

	assert.True(t, routeOK)
	assert.Len(t, route, MaxLabelValueLength)
	assert.Equal(t, "GET", method)
	assert.False(t, emptyOK)
}

func TestWithProfilingLabels_NoLabels(t *testing.T) {
	called := false
	WithProfilingLabels(context.Background(), nil, func(context.Context) { called = true })
	assert.True(t, called)
}
