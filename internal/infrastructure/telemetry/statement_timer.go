package telemetry

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type statementStartKey struct{}

// markStatementStart stamps the statement context with the current time.
// It is registered before the core callback by both GORM plugins; a reused
// statement is restamped so durations never span two executions.
func markStatementStart(db *gorm.DB) {
	ctx := db.Statement.Context
	if ctx == nil {
		ctx = context.Background()
	}
	db.Statement.Context = context.WithValue(ctx, statementStartKey{}, time.Now())
}

// statementElapsed is the time since markStatementStart, false when the
// statement was never stamped
func statementElapsed(db *gorm.DB) (time.Duration, bool) {
	if db.Statement.Context == nil {
		return 0, false
	}
	start, ok := db.Statement.Context.Value(statementStartKey{}).(time.Time)
	if !ok {
		return 0, false
	}
	return time.Since(start), true
}
