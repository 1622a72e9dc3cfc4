package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]metricdata.Metrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := make(map[string]metricdata.Metrics)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			out[m.Name] = m
		}
	}
	return out
}

func sumByAttr(t *testing.T, m metricdata.Metrics, key attribute.Key) map[string]int64 {
	t.Helper()
	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok, "%s is not an int64 sum", m.Name)
	out := make(map[string]int64)
	for _, dp := range sum.DataPoints {
		v, _ := dp.Attributes.Value(key)
		out[v.Emit()] += dp.Value
	}
	return out
}

func TestPricingMetrics(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	p := NewWithReader(reader)

	m, err := NewPricingMetrics(p.Meter("pricing"))
	require.NoError(t, err)

	m.QuoteComputed(ctx, 2*time.Millisecond, false)
	m.QuoteComputed(ctx, time.Millisecond, false)
	m.QuoteComputed(ctx, time.Millisecond, true)
	m.ValidationFailed(ctx, "lineItems[0].unitPrice.codeCurrency")
	m.ValidationFailed(ctx, "lineItems[12].unitPrice.codeCurrency")
	m.ValidationFailed(ctx, "precision")
	m.SettlementRecorded(ctx, "partial")
	m.SettlementRecorded(ctx, "paid")

	metrics := collect(t, reader)

	assert.Equal(t, map[string]int64{"false": 2, "true": 1},
		sumByAttr(t, metrics["pos_quote_total"], AttrHouseCosted))
	assert.Equal(t, map[string]int64{"lineItems.unitPrice.codeCurrency": 2, "precision": 1},
		sumByAttr(t, metrics["pos_quote_validation_errors_total"], AttrValidationField))
	assert.Equal(t, map[string]int64{"partial": 1, "paid": 1},
		sumByAttr(t, metrics["pos_settlement_total"], AttrSettlementStatus))

	hist, ok := metrics["pos_quote_duration_seconds"].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	var count uint64
	for _, dp := range hist.DataPoints {
		count += dp.Count
	}
	assert.Equal(t, uint64(3), count)
}

func TestNewPricingMetrics_NilMeter(t *testing.T) {
	_, err := NewPricingMetrics(nil)
	assert.ErrorIs(t, err, ErrMeterNil)
}
