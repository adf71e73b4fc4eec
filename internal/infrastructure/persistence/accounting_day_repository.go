package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/corebank/backend/internal/domain/accountingday"
	"github.com/corebank/backend/internal/domain/shared"
	"github.com/corebank/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormAccountingDayRepository implements accountingday.Repository using GORM
type GormAccountingDayRepository struct {
	db *gorm.DB
}

// NewGormAccountingDayRepository creates a new GormAccountingDayRepository
func NewGormAccountingDayRepository(db *gorm.DB) *GormAccountingDayRepository {
	return &GormAccountingDayRepository{db: db}
}

func branchClause(db *gorm.DB, branchID *uuid.UUID) *gorm.DB {
	if branchID == nil || *branchID == uuid.Nil {
		return db.Where("branch_id IS NULL")
	}
	return db.Where("branch_id = ?", *branchID)
}

// FindByID finds an accounting day by ID
func (r *GormAccountingDayRepository) FindByID(ctx context.Context, id uuid.UUID) (*accountingday.AccountingDay, error) {
	var m models.AccountingDayModel
	if err := r.db.WithContext(ctx).Scopes(Active).First(&m, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, accountingday.ErrDayNotFound
		}
		return nil, fmt.Errorf("find accounting day: %w", err)
	}
	return m.ToDomain(), nil
}

// FindByBranchAndDate finds the live record for a branch and date
func (r *GormAccountingDayRepository) FindByBranchAndDate(ctx context.Context, branchID *uuid.UUID, date time.Time) (*accountingday.AccountingDay, error) {
	var m models.AccountingDayModel
	q := branchClause(r.db.WithContext(ctx).Scopes(Active), branchID)
	if err := q.Where("date = ?", shared.DateOnly(date)).First(&m).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find accounting day by branch and date: %w", err)
	}
	return m.ToDomain(), nil
}

// FindCurrentOpen returns the most recent open day of the branch
func (r *GormAccountingDayRepository) FindCurrentOpen(ctx context.Context, branchID *uuid.UUID) (*accountingday.AccountingDay, error) {
	var m models.AccountingDayModel
	q := branchClause(r.db.WithContext(ctx).Scopes(Active), branchID)
	if err := q.Where("status = ?", accountingday.StatusOpen).Order("date DESC").First(&m).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find current accounting day: %w", err)
	}
	return m.ToDomain(), nil
}

// List returns the branch's days, newest first unless the filter orders otherwise
func (r *GormAccountingDayRepository) List(ctx context.Context, branchID *uuid.UUID, filter shared.Filter) ([]accountingday.AccountingDay, int64, error) {
	q := branchClause(r.db.WithContext(ctx).Model(&models.AccountingDayModel{}).Scopes(Active), branchID)
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count accounting days: %w", err)
	}
	var rows []models.AccountingDayModel
	if err := q.Session(&gorm.Session{}).Scopes(Paginate(filter), OrderBy(filter, DaySortFields, "date")).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list accounting days: %w", err)
	}
	days := make([]accountingday.AccountingDay, len(rows))
	for i := range rows {
		days[i] = *rows[i].ToDomain()
	}
	return days, total, nil
}

// Save creates or overwrites an accounting day
func (r *GormAccountingDayRepository) Save(ctx context.Context, day *accountingday.AccountingDay) error {
	return r.db.WithContext(ctx).Save(models.AccountingDayModelFromDomain(day)).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormAccountingDayRepository) SaveWithLock(ctx context.Context, day *accountingday.AccountingDay) error {
	result := r.db.WithContext(ctx).
		Model(&models.AccountingDayModel{}).
		Where("id = ? AND version = ?", day.ID, day.Version-1).
		Updates(map[string]interface{}{
			"status":       day.Status,
			"closed_at":    day.ClosedAt,
			"closed_by":    day.ClosedBy,
			"reopened_at":  day.ReopenedAt,
			"reopened_by":  day.ReopenedBy,
			"reopen_count": day.ReopenCount,
			"note":         day.Note,
			"lifecycle":    day.Lifecycle,
			"version":      day.Version,
			"updated_at":   day.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("update accounting day: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return optimisticLockFailed("Accounting day")
	}
	return nil
}

var _ accountingday.Repository = (*GormAccountingDayRepository)(nil)
