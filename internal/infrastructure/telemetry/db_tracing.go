package telemetry

import (
	"errors"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBTracingConfig controls the GORM span instrumentation
type DBTracingConfig struct {
	Enabled            bool
	LogFullSQL         bool // keep bound variables in db.statement, development only
	SlowQueryThreshold time.Duration
	DBSystem           string
}

// DBTracingPlugin registers otelgorm and annotates its spans with the
// statement duration and a slow query marker.
type DBTracingPlugin struct {
	config DBTracingConfig
	logger *zap.Logger
}

// NewDBTracingPlugin creates a DBTracingPlugin
func NewDBTracingPlugin(cfg DBTracingConfig, logger *zap.Logger) *DBTracingPlugin {
	if cfg.SlowQueryThreshold <= 0 {
		cfg.SlowQueryThreshold = 200 * time.Millisecond
	}
	if cfg.DBSystem == "" {
		cfg.DBSystem = "postgresql"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DBTracingPlugin{config: cfg, logger: logger}
}

// Register installs the tracing callbacks on db. It is a no-op when disabled.
func (p *DBTracingPlugin) Register(db *gorm.DB) error {
	if !p.config.Enabled {
		p.logger.Debug("Database tracing disabled")
		return nil
	}

	opts := []otelgorm.Option{otelgorm.WithDBName(p.config.DBSystem)}
	if !p.config.LogFullSQL {
		opts = append(opts, otelgorm.WithoutQueryVariables())
	}
	if err := db.Use(otelgorm.NewPlugin(opts...)); err != nil {
		return err
	}

	// the annotation runs before otelgorm ends the span
	cb := db.Callback()
	if err := errors.Join(
		cb.Create().Before("gorm:create").Register("custody_trace:before_create", markStatementStart),
		cb.Query().Before("gorm:query").Register("custody_trace:before_query", markStatementStart),
		cb.Update().Before("gorm:update").Register("custody_trace:before_update", markStatementStart),
		cb.Delete().Before("gorm:delete").Register("custody_trace:before_delete", markStatementStart),
		cb.Row().Before("gorm:row").Register("custody_trace:before_row", markStatementStart),
		cb.Raw().Before("gorm:raw").Register("custody_trace:before_raw", markStatementStart),

		cb.Create().After("gorm:create").Before("otel:after:create").Register("custody_trace:after_create", p.after),
		cb.Query().After("gorm:query").Before("otel:after:query").Register("custody_trace:after_query", p.after),
		cb.Update().After("gorm:update").Before("otel:after:update").Register("custody_trace:after_update", p.after),
		cb.Delete().After("gorm:delete").Before("otel:after:delete").Register("custody_trace:after_delete", p.after),
		cb.Row().After("gorm:row").Before("otel:after:row").Register("custody_trace:after_row", p.after),
		cb.Raw().After("gorm:raw").Before("otel:after:raw").Register("custody_trace:after_raw", p.after),
	); err != nil {
		return err
	}

	p.logger.Info("Database tracing enabled",
		zap.Bool("log_full_sql", p.config.LogFullSQL),
		zap.Duration("slow_query_threshold", p.config.SlowQueryThreshold),
		zap.String("db_system", p.config.DBSystem),
	)
	return nil
}

func (p *DBTracingPlugin) after(db *gorm.DB) {
	elapsed, ok := statementElapsed(db)
	if !ok {
		return
	}

	span := trace.SpanFromContext(db.Statement.Context)
	if !span.IsRecording() {
		return
	}
	span.SetAttributes(
		attribute.Float64("db.duration_ms", float64(elapsed.Microseconds())/1000),
		attribute.String("db.sql.table", db.Statement.Table),
	)
	if elapsed < p.config.SlowQueryThreshold {
		return
	}
	span.SetAttributes(attribute.Bool("db.slow_query", true))
	span.AddEvent("slow_query", trace.WithAttributes(
		attribute.Int64("threshold_ms", p.config.SlowQueryThreshold.Milliseconds()),
	))
	p.logger.Warn("Slow database query",
		zap.String("table", db.Statement.Table),
		zap.Duration("duration", elapsed),
		zap.String("trace_id", span.SpanContext().TraceID().String()),
	)
}
