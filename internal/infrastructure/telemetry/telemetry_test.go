package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/corebank/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	out := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					out[m.Name] += dp.Value
				}
			case metricdata.Histogram[float64]:
				for _, dp := range data.DataPoints {
					out[m.Name] += int64(dp.Count)
				}
			}
		}
	}
	return out
}

func TestStartServiceSpan(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "ceiling", "approve",
		telemetry.SpanAttrReference, "CC-1", telemetry.SpanAttrBranchCount, 2)
	telemetry.SetAttributes(span, telemetry.SpanAttrAmount, decimal.NewFromInt(500))
	telemetry.RecordError(span, errors.New("insufficient funds"))
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "ceiling.approve", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)

	attrs := map[string]string{}
	for _, kv := range spans[0].Attributes() {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "CC-1", attrs[telemetry.SpanAttrReference])
	assert.Equal(t, "2", attrs[telemetry.SpanAttrBranchCount])
	assert.Equal(t, "500", attrs[telemetry.SpanAttrAmount])
}

func TestRecordError_NilIsNoop(t *testing.T) {
	sr := setupTestTracer(t)
	_, span := telemetry.StartSpan(context.Background(), "noop")
	telemetry.RecordError(span, nil)
	telemetry.AddEvent(span, "checked", "ok", true)
	span.End()

	require.Len(t, sr.Ended(), 1)
	assert.Equal(t, codes.Unset, sr.Ended()[0].Status().Code)
	assert.Len(t, sr.Ended()[0].Events(), 1)
}

func TestNewTracerProvider_Disabled(t *testing.T) {
	tp, err := telemetry.NewTracerProvider(context.Background(), telemetry.Config{Enabled: false}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("x"))
	assert.NoError(t, tp.Shutdown(context.Background()))
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	mp, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("x"))
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestCustodyMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := telemetry.NewCustodyMetrics(provider.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	m.RecordCashTransaction(ctx, "WITHDRAWAL", decimal.NewFromInt(1500))
	m.RecordCashTransaction(ctx, "DEPOSIT", decimal.NewFromInt(500))
	m.RecordPostingWarnings(ctx, "cash_transaction", 2)
	m.RecordPostingWarnings(ctx, "cash_transaction", 0)
	m.RecordCeilingDecision(ctx, "SUB_TO_PRIMARY", "APPROVED")
	m.RecordDayTransition(ctx, "open", 2, 1)

	got := collect(t, reader)
	assert.Equal(t, int64(2), got["cash_transactions_total"])
	assert.Equal(t, int64(2000), got["cash_volume_units_total"])
	assert.Equal(t, int64(2), got["posting_warnings_total"])
	assert.Equal(t, int64(1), got["cash_ceiling_decisions_total"])
	assert.Equal(t, int64(3), got["accounting_day_transitions_total"])
}

func TestNewCustodyMetrics_NilMeter(t *testing.T) {
	_, err := telemetry.NewCustodyMetrics(nil)
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
}

func TestDBMetricsPlugin(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	plugin, err := telemetry.NewDBMetricsPlugin(provider.Meter("db"), time.Nanosecond, zap.NewNop())
	require.NoError(t, err)

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.Use(plugin))

	type probe struct {
		ID   uint
		Name string
	}
	require.NoError(t, db.AutoMigrate(&probe{}))
	require.NoError(t, db.Create(&probe{Name: "a"}).Error)
	var rows []probe
	require.NoError(t, db.Find(&rows).Error)

	got := collect(t, reader)
	assert.GreaterOrEqual(t, got["db_query_total"], int64(2))
	assert.GreaterOrEqual(t, got["db_query_duration_seconds"], int64(2))
	assert.GreaterOrEqual(t, got["db_slow_query_total"], int64(2))
}

func TestInstruments_KeepsFirstError(t *testing.T) {
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewManualReader()))
	b := telemetry.NewInstruments(provider.Meter("test"))

	ok := b.Counter("till_operations_total", "ok", "{op}")
	require.NoError(t, b.Err())
	require.NotNil(t, ok)

	b.Counter("1bad", "starts with a digit", "{op}")
	b.Histogram("also bad", "has a space", telemetry.DBDurationBuckets)
	require.Error(t, b.Err())
	assert.Contains(t, b.Err().Error(), "1bad")
}
