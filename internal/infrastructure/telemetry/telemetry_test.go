package telemetry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/crmconsole/backend/internal/domain/integration"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
)

func TestDisabledProviders(t *testing.T) {
	ctx := context.Background()

	tp, err := NewTracerProvider(ctx, Config{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"))
	assert.NoError(t, tp.Shutdown(ctx))

	mp, err := NewMeterProvider(ctx, MetricsConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(ctx))
}

func TestSamplerFor(t *testing.T) {
	assert.Contains(t, samplerFor(1).Description(), "AlwaysOn")
	assert.Contains(t, samplerFor(0).Description(), "AlwaysOff")
	assert.Contains(t, samplerFor(0.5).Description(), "TraceIDRatioBased")
}

func TestIntegrationMetrics(t *testing.T) {
	_, err := NewIntegrationMetrics(nil)
	assert.ErrorIs(t, err, ErrMeterNil)

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewIntegrationMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordMappingSave(ctx, integration.RecordTypeAccount, "create", nil)
	m.RecordMappingSave(ctx, integration.RecordTypeAccount, "update", errors.New("boom"))
	m.RecordDescribe(ctx, "Account", 120*time.Millisecond, nil)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	found := map[string]bool{}
	for _, sm := range rm.ScopeMetrics {
		for _, metric := range sm.Metrics {
			found[metric.Name] = true
			if metric.Name == "crm_mapping_saves_total" {
				sum, ok := metric.Data.(metricdata.Sum[int64])
				require.True(t, ok)
				assert.Len(t, sum.DataPoints, 2)
			}
		}
	}
	assert.True(t, found["crm_mapping_saves_total"])
	assert.True(t, found["crm_describe_calls_total"])
	assert.True(t, found["crm_describe_duration_seconds"])
}

func TestEnd(t *testing.T) {
	_, span := StartSpan(context.Background(), "op")
	End(span, errors.New("boom"))
	_, span = StartClientSpan(context.Background(), "call")
	End(span, nil)
}
