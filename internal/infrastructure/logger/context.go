package logger

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type contextKey string

const (
	loggerKey    contextKey = "logger"
	requestIDKey contextKey = "request_id"
	branchIDKey  contextKey = "branch_id"
	userIDKey    contextKey = "user_id"
)

// scopedKeys are copied onto every entry written through L
var scopedKeys = []contextKey{requestIDKey, branchIDKey, userIDKey}

// WithContext attaches a logger to the context
func WithContext(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the attached logger or a no-op one
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(loggerKey).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// WithRequestID records the request ID on the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// WithBranchID records the branch the request acts on
func WithBranchID(ctx context.Context, branchID string) context.Context {
	return context.WithValue(ctx, branchIDKey, branchID)
}

// WithUserID records the acting user
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetRequestID returns the request ID or ""
func GetRequestID(ctx context.Context) string {
	return stringValue(ctx, requestIDKey)
}

// GetBranchID returns the branch ID or ""
func GetBranchID(ctx context.Context) string {
	return stringValue(ctx, branchIDKey)
}

// GetUserID returns the user ID or ""
func GetUserID(ctx context.Context) string {
	return stringValue(ctx, userIDKey)
}

func stringValue(ctx context.Context, key contextKey) string {
	v, _ := ctx.Value(key).(string)
	return v
}

// L returns the context's logger enriched with trace and request fields.
//
//	logger.L(ctx).Info("day opened", zap.String("date", d))
func L(ctx context.Context) *zap.Logger {
	return Enrich(ctx, FromContext(ctx))
}

// Enrich adds trace_id, span_id and any request scoped IDs found in ctx
func Enrich(ctx context.Context, l *zap.Logger) *zap.Logger {
	if l == nil {
		l = zap.NewNop()
	}
	var fields []zap.Field
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		fields = append(fields,
			zap.String("trace_id", sc.TraceID().String()),
			zap.String("span_id", sc.SpanID().String()),
		)
	}
	for _, k := range scopedKeys {
		if v := stringValue(ctx, k); v != "" {
			fields = append(fields, zap.String(string(k), v))
		}
	}
	if len(fields) == 0 {
		return l
	}
	return l.With(fields...)
}
