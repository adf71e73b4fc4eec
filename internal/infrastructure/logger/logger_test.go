package logger

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func TestParseLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"WARN":    zapcore.WarnLevel,
		"warning": zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"bogus":   zapcore.InfoLevel,
		"":        zapcore.InfoLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, ParseLevel(in), in)
	}
}

func TestNew_FileOutput(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custody.log")
	l, err := New(&Config{Level: "debug", Format: "json", Output: path})
	require.NoError(t, err)
	l.Info("hello")
	require.NoError(t, l.Sync())
	assert.FileExists(t, path)
}

func TestNew_StampsServiceFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custody.log")
	l, err := New(&Config{Format: "json", Output: path, Service: "custody-backend", Env: "test"})
	require.NoError(t, err)
	l.Info("day opened")
	require.NoError(t, l.Sync())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var line map[string]any
	require.NoError(t, json.Unmarshal(raw, &line))
	assert.Equal(t, "custody-backend", line["service"])
	assert.Equal(t, "test", line["env"])
	assert.Equal(t, "day opened", line["msg"])
}

func TestNew_UnwritableOutput(t *testing.T) {
	_, err := New(&Config{Output: filepath.Join(t.TempDir(), "missing", "x.log")})
	assert.Error(t, err)
}

func TestContextValues(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithBranchID(ctx, "branch-9")
	ctx = WithUserID(ctx, "user-3")

	assert.Equal(t, "req-1", GetRequestID(ctx))
	assert.Equal(t, "branch-9", GetBranchID(ctx))
	assert.Equal(t, "user-3", GetUserID(ctx))
	assert.Empty(t, GetRequestID(context.Background()))
}

func TestFromContext_DefaultsToNop(t *testing.T) {
	assert.NotNil(t, FromContext(context.Background()))
}

func TestL_AddsScopedFields(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	ctx := WithContext(context.Background(), zap.New(core))
	ctx = WithBranchID(WithRequestID(ctx, "req-1"), "branch-9")

	L(ctx).Info("day opened")

	entries := recorded.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "branch-9", fields["branch_id"])
	assert.NotContains(t, fields, "user_id")
}

func TestEnrich_AddsTraceIDs(t *testing.T) {
	core, recorded := observer.New(zapcore.InfoLevel)
	traceID, _ := trace.TraceIDFromHex("0102030405060708090a0b0c0d0e0f10")
	spanID, _ := trace.SpanIDFromHex("0102030405060708")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	Enrich(ctx, zap.New(core)).Info("posted")

	fields := recorded.All()[0].ContextMap()
	assert.Equal(t, traceID.String(), fields["trace_id"])
	assert.Equal(t, spanID.String(), fields["span_id"])
}

func TestGormLogger_Trace(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Info, WithSlowThreshold(10*time.Millisecond))
	fc := func() (string, int64) { return `SELECT * FROM "accounting_days" WHERE branch_id = 'b'`, 1 }

	gl.Trace(context.Background(), time.Now(), fc, nil)
	gl.Trace(context.Background(), time.Now().Add(-time.Second), fc, nil)
	gl.Trace(context.Background(), time.Now(), fc, errors.New("boom"))
	gl.Trace(context.Background(), time.Now(), fc, gorm.ErrDuplicatedKey)
	gl.Trace(context.Background(), time.Now(), fc, gorm.ErrRecordNotFound)

	entries := recorded.All()
	require.Len(t, entries, 4)
	assert.Equal(t, "SQL", entries[0].Message)
	assert.Equal(t, "accounting_days", entries[0].ContextMap()["table"])
	assert.Equal(t, "Slow SQL", entries[1].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Equal(t, "SQL error", entries[2].Message)
	assert.Equal(t, "SQL constraint conflict", entries[3].Message)
	assert.Equal(t, zapcore.WarnLevel, entries[3].Level)
}

func TestGormLogger_WarnLevelSkipsFastStatements(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Warn, WithSlowThreshold(0))

	called := false
	gl.Trace(context.Background(), time.Now().Add(-time.Hour), func() (string, int64) {
		called = true
		return "UPDATE custodian_accounts SET balance = 1", 1
	}, nil)

	assert.Empty(t, recorded.All())
	assert.False(t, called, "statement text is not rendered when nothing is logged")
}

func TestGormLogger_ParamsFilter(t *testing.T) {
	plain := NewGormLogger(zap.NewNop(), gormlogger.Info)
	sql, params := plain.ParamsFilter(context.Background(), "SELECT ?", 42)
	assert.Equal(t, "SELECT ?", sql)
	assert.Equal(t, []any{42}, params)

	redacted := NewGormLogger(zap.NewNop(), gormlogger.Info, WithRedactedParams(true))
	_, params = redacted.ParamsFilter(context.Background(), "SELECT ?", 42)
	assert.Nil(t, params)
}

func TestGormLogger_Silent(t *testing.T) {
	core, recorded := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), gormlogger.Info).LogMode(gormlogger.Silent)

	gl.Trace(context.Background(), time.Now(), func() (string, int64) { return "SELECT 1", 0 }, errors.New("x"))
	gl.Info(context.Background(), "ignored")

	assert.Empty(t, recorded.All())
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("ERROR"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel("whatever"))
}

func TestGinMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	r := gin.New()
	r.Use(func(c *gin.Context) { c.Set("request_id", "req-7"); c.Next() })
	r.Use(GinMiddleware(base), Recovery(base))
	r.GET("/ok", func(c *gin.Context) {
		L(c.Request.Context()).Info("inside")
		c.Status(http.StatusOK)
	})
	r.GET("/panic", func(c *gin.Context) { panic("boom") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var sawInside, sawPanic bool
	for _, e := range recorded.All() {
		switch e.Message {
		case "inside":
			sawInside = true
			assert.Equal(t, "req-7", e.ContextMap()["request_id"])
		case "Panic recovered":
			sawPanic = true
		}
	}
	assert.True(t, sawInside)
	assert.True(t, sawPanic)
}

func TestGinMiddleware_AccessLine(t *testing.T) {
	gin.SetMode(gin.TestMode)
	core, recorded := observer.New(zapcore.DebugLevel)

	r := gin.New()
	r.Use(GinMiddleware(zap.New(core), "/health"))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/days/:id", func(c *gin.Context) {
		c.Header("Idempotent-Replayed", "true")
		c.Status(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/days/42", nil))

	entries := recorded.FilterMessage("HTTP request").All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.DebugLevel, entries[0].Level, "probes are quiet")

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	fields := entries[1].ContextMap()
	assert.Equal(t, "/days/:id", fields["route"])
	assert.Equal(t, "/days/42", fields["path"])
	assert.Equal(t, true, fields["replayed"])
}
