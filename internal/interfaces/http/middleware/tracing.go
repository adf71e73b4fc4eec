package middleware

import (
	"github.com/corebank/backend/internal/infrastructure/telemetry"
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Tracing returns the otelgin server span middleware. otelgin ends the
// span when the chain returns, so attributes are added by middleware that
// runs inside it: the request ID here, the caller in Authenticate.
func Tracing(serviceName string, enabled bool) gin.HandlerFunc {
	if !enabled {
		return func(c *gin.Context) { c.Next() }
	}
	return otelgin.Middleware(serviceName)
}

// TraceRequestID tags the active span with the request ID. Register it
// after Tracing and RequestID.
func TraceRequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		if id := GetRequestID(c); id != "" {
			span := trace.SpanFromContext(c.Request.Context())
			if span.IsRecording() {
				span.SetAttributes(attribute.String("request_id", id))
			}
		}
		c.Next()
	}
}

func traceCaller(c *gin.Context, caller Caller) {
	span := trace.SpanFromContext(c.Request.Context())
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(
		attribute.String(telemetry.SpanAttrUserID, caller.UserID.String()),
		attribute.String(telemetry.SpanAttrBranchID, caller.BranchID.String()),
	)
}
