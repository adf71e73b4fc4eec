package persistence

import (
	"errors"

	"github.com/corebank/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// Active restricts a query to live rows. Every finder over a table with a
// lifecycle column goes through it.
func Active(db *gorm.DB) *gorm.DB {
	return db.Where("lifecycle = ?", shared.LifecycleActive)
}

// Paginate applies the filter's page window
func Paginate(filter shared.Filter) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if filter.PageSize <= 0 {
			return db
		}
		return db.Offset(filter.Offset()).Limit(filter.PageSize)
	}
}

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func optimisticLockFailed(what string) error {
	return shared.NewKindError(shared.KindConflict, "OPTIMISTIC_LOCK_FAILED", what+" was modified by another transaction")
}
