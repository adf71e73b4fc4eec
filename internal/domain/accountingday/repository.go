package accountingday

import (
	"context"
	"time"

	"github.com/corebank/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository persists accounting days. Every finder ignores deleted rows.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*AccountingDay, error)
	// FindByBranchAndDate returns nil, nil when no record exists.
	// A nil branch addresses the centralized record.
	FindByBranchAndDate(ctx context.Context, branchID *uuid.UUID, date time.Time) (*AccountingDay, error)
	// FindCurrentOpen returns the most recent open day, or nil, nil
	FindCurrentOpen(ctx context.Context, branchID *uuid.UUID) (*AccountingDay, error)
	List(ctx context.Context, branchID *uuid.UUID, filter shared.Filter) ([]AccountingDay, int64, error)
	Save(ctx context.Context, day *AccountingDay) error
	SaveWithLock(ctx context.Context, day *AccountingDay) error
}
