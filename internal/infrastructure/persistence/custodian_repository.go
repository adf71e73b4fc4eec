package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/corebank/backend/internal/domain/cash"
	"github.com/corebank/backend/internal/domain/shared"
	"github.com/corebank/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCustodianAccountRepository implements cash.CustodianAccountRepository using GORM
type GormCustodianAccountRepository struct {
	db *gorm.DB
}

// NewGormCustodianAccountRepository creates a new GormCustodianAccountRepository
func NewGormCustodianAccountRepository(db *gorm.DB) *GormCustodianAccountRepository {
	return &GormCustodianAccountRepository{db: db}
}

// FindByID finds a custodian account by ID
func (r *GormCustodianAccountRepository) FindByID(ctx context.Context, id uuid.UUID) (*cash.CustodianAccount, error) {
	var m models.CustodianAccountModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, cash.ErrCustodianNotFound
		}
		return nil, fmt.Errorf("find custodian account: %w", err)
	}
	return m.ToDomain(), nil
}

// FindByCustodian finds the account held by a teller or vault
func (r *GormCustodianAccountRepository) FindByCustodian(ctx context.Context, custodianID uuid.UUID) (*cash.CustodianAccount, error) {
	var m models.CustodianAccountModel
	if err := r.db.WithContext(ctx).First(&m, "custodian_id = ?", custodianID).Error; err != nil {
		if isNotFound(err) {
			return nil, cash.ErrCustodianNotFound
		}
		return nil, fmt.Errorf("find custodian account by custodian: %w", err)
	}
	return m.ToDomain(), nil
}

// FindByBranch lists every custodian account of a branch
func (r *GormCustodianAccountRepository) FindByBranch(ctx context.Context, branchID uuid.UUID) ([]cash.CustodianAccount, error) {
	var rows []models.CustodianAccountModel
	if err := r.db.WithContext(ctx).Where("branch_id = ?", branchID).Order("kind, created_at").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list custodian accounts: %w", err)
	}
	out := make([]cash.CustodianAccount, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save creates or overwrites a custodian account
func (r *GormCustodianAccountRepository) Save(ctx context.Context, account *cash.CustodianAccount) error {
	return r.db.WithContext(ctx).Save(models.CustodianAccountModelFromDomain(account)).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormCustodianAccountRepository) SaveWithLock(ctx context.Context, account *cash.CustodianAccount) error {
	result := r.db.WithContext(ctx).
		Model(&models.CustodianAccountModel{}).
		Where("id = ? AND version = ?", account.ID, account.Version-1).
		Updates(map[string]interface{}{
			"balance":          account.Balance,
			"previous_balance": account.PreviousBalance,
			"opening_day_id":   account.OpeningDayID,
			"version":          account.Version,
			"updated_at":       account.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("update custodian account: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return optimisticLockFailed("Custodian account")
	}
	return nil
}

// GormProvisioningHistoryRepository implements cash.ProvisioningHistoryRepository using GORM
type GormProvisioningHistoryRepository struct {
	db *gorm.DB
}

// NewGormProvisioningHistoryRepository creates a new GormProvisioningHistoryRepository
func NewGormProvisioningHistoryRepository(db *gorm.DB) *GormProvisioningHistoryRepository {
	return &GormProvisioningHistoryRepository{db: db}
}

// FindByID finds a provisioning history by ID
func (r *GormProvisioningHistoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*cash.ProvisioningHistory, error) {
	var m models.ProvisioningHistoryModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, cash.ErrNoProvisioningHistory
		}
		return nil, fmt.Errorf("find provisioning history: %w", err)
	}
	return m.ToDomain(), nil
}

// FindLastUpdated returns the custodian's most recently touched record,
// or nil, nil when the custodian was never provisioned.
func (r *GormProvisioningHistoryRepository) FindLastUpdated(ctx context.Context, custodianID uuid.UUID) (*cash.ProvisioningHistory, error) {
	var m models.ProvisioningHistoryModel
	if err := r.db.WithContext(ctx).
		Where("custodian_id = ?", custodianID).
		Order("accounting_date DESC, updated_at DESC").
		First(&m).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find last provisioning history: %w", err)
	}
	return m.ToDomain(), nil
}

// FindByBranchAndDate lists the records of a branch for a day in the given status
func (r *GormProvisioningHistoryRepository) FindByBranchAndDate(ctx context.Context, branchID uuid.UUID, date time.Time, status cash.ProvisioningStatus) ([]cash.ProvisioningHistory, error) {
	var rows []models.ProvisioningHistoryModel
	if err := r.db.WithContext(ctx).
		Where("branch_id = ? AND accounting_date = ? AND status = ?", branchID, shared.DateOnly(date), status).
		Order("created_at").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list provisioning histories: %w", err)
	}
	out := make([]cash.ProvisioningHistory, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save creates or overwrites a provisioning history
func (r *GormProvisioningHistoryRepository) Save(ctx context.Context, history *cash.ProvisioningHistory) error {
	return r.db.WithContext(ctx).Save(models.ProvisioningHistoryModelFromDomain(history)).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormProvisioningHistoryRepository) SaveWithLock(ctx context.Context, history *cash.ProvisioningHistory) error {
	result := r.db.WithContext(ctx).
		Model(&models.ProvisioningHistoryModel{}).
		Where("id = ? AND version = ?", history.ID, history.Version-1).
		Updates(map[string]interface{}{
			"counts":         history.Counts,
			"cash_in_total":  history.CashInTotal,
			"cash_out_total": history.CashOutTotal,
			"status":         history.Status,
			"frozen_at":      history.FrozenAt,
			"version":        history.Version,
			"updated_at":     history.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("update provisioning history: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return optimisticLockFailed("Provisioning history")
	}
	return nil
}

var (
	_ cash.CustodianAccountRepository    = (*GormCustodianAccountRepository)(nil)
	_ cash.ProvisioningHistoryRepository = (*GormProvisioningHistoryRepository)(nil)
)
