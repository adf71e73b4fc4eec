package telemetry

import (
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DBMetricsPlugin is a GORM plugin counting statements per operation and
// table, recording their latency and counting those over the slow
// threshold
type DBMetricsPlugin struct {
	statements    *Counter
	latency       *Histogram
	slow          *Counter
	slowThreshold time.Duration
	logger        *zap.Logger
}

// NewDBMetricsPlugin creates the plugin instruments on meter
func NewDBMetricsPlugin(meter metric.Meter, slowThreshold time.Duration, logger *zap.Logger) (*DBMetricsPlugin, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if slowThreshold <= 0 {
		slowThreshold = 200 * time.Millisecond
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	b := NewInstruments(meter)
	p := &DBMetricsPlugin{
		statements:    b.Counter("db_query_total", "Executed SQL statements by operation", "{query}"),
		latency:       b.Histogram("db_query_duration_seconds", "SQL statement latency", DBDurationBuckets),
		slow:          b.Counter("db_slow_query_total", "SQL statements over the slow threshold by table", "{query}"),
		slowThreshold: slowThreshold,
		logger:        logger,
	}
	if err := b.Err(); err != nil {
		return nil, err
	}
	return p, nil
}

// Name implements gorm.Plugin
func (p *DBMetricsPlugin) Name() string {
	return "custody:db_metrics"
}

// Initialize implements gorm.Plugin
func (p *DBMetricsPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()
	err := errors.Join(
		cb.Create().Before("gorm:create").Register("custody_metrics:before_create", markStatementStart),
		cb.Query().Before("gorm:query").Register("custody_metrics:before_query", markStatementStart),
		cb.Update().Before("gorm:update").Register("custody_metrics:before_update", markStatementStart),
		cb.Delete().Before("gorm:delete").Register("custody_metrics:before_delete", markStatementStart),
		cb.Row().Before("gorm:row").Register("custody_metrics:before_row", markStatementStart),
		cb.Raw().Before("gorm:raw").Register("custody_metrics:before_raw", markStatementStart),

		cb.Create().After("gorm:create").Register("custody_metrics:after_create", p.observe("INSERT")),
		cb.Query().After("gorm:query").Register("custody_metrics:after_query", p.observe("SELECT")),
		cb.Update().After("gorm:update").Register("custody_metrics:after_update", p.observe("UPDATE")),
		cb.Delete().After("gorm:delete").Register("custody_metrics:after_delete", p.observe("DELETE")),
		cb.Row().After("gorm:row").Register("custody_metrics:after_row", p.observe("")),
		cb.Raw().After("gorm:raw").Register("custody_metrics:after_raw", p.observe("")),
	)
	if err != nil {
		return err
	}
	p.logger.Info("Database metrics plugin initialized", zap.Duration("slow_threshold", p.slowThreshold))
	return nil
}

// observe returns the after callback for a processor. Row and raw
// statements pass an empty operation and are classified from their SQL.
func (p *DBMetricsPlugin) observe(operation string) func(*gorm.DB) {
	return func(db *gorm.DB) {
		elapsed, ok := statementElapsed(db)
		if !ok {
			return
		}
		op := operation
		if op == "" {
			op = sqlOperation(db.Statement.SQL.String())
		}
		ctx := db.Statement.Context
		p.statements.Inc(ctx, AttrDBOperation.String(op))
		p.latency.Observe(ctx, elapsed, AttrDBOperation.String(op))
		if elapsed > p.slowThreshold {
			table := db.Statement.Table
			if table == "" {
				table = "unknown"
			}
			p.slow.Inc(ctx, AttrDBTable.String(table))
		}
	}
}

func sqlOperation(sql string) string {
	verb, _, _ := strings.Cut(strings.TrimSpace(sql), " ")
	switch op := strings.ToUpper(verb); op {
	case "SELECT", "INSERT", "UPDATE", "DELETE":
		return op
	default:
		return "OTHER"
	}
}
