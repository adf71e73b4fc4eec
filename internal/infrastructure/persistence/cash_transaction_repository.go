package persistence

import (
	"context"
	"fmt"

	"github.com/corebank/backend/internal/domain/cash"
	"github.com/corebank/backend/internal/domain/shared"
	"github.com/corebank/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCashTransactionRepository implements cash.CashTransactionRepository using GORM
type GormCashTransactionRepository struct {
	db *gorm.DB
}

// NewGormCashTransactionRepository creates a new GormCashTransactionRepository
func NewGormCashTransactionRepository(db *gorm.DB) *GormCashTransactionRepository {
	return &GormCashTransactionRepository{db: db}
}

// FindByReference finds a transaction by its reference
func (r *GormCashTransactionRepository) FindByReference(ctx context.Context, reference string) (*cash.CashTransaction, error) {
	var m models.CashTransactionModel
	if err := r.db.WithContext(ctx).First(&m, "reference = ?", reference).Error; err != nil {
		if isNotFound(err) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("find cash transaction: %w", err)
	}
	return m.ToDomain(), nil
}

// Save creates or overwrites a transaction
func (r *GormCashTransactionRepository) Save(ctx context.Context, tx *cash.CashTransaction) error {
	return r.db.WithContext(ctx).Save(models.CashTransactionModelFromDomain(tx)).Error
}

// UpdateWarnings stores posting reconciliation notes on a committed transaction
func (r *GormCashTransactionRepository) UpdateWarnings(ctx context.Context, id uuid.UUID, warnings cash.Warnings) error {
	return r.db.WithContext(ctx).
		Model(&models.CashTransactionModel{}).
		Where("id = ?", id).
		Update("warnings", warnings).Error
}

// GormDenominationRecordRepository implements cash.DenominationRecordRepository using GORM
type GormDenominationRecordRepository struct {
	db *gorm.DB
}

// NewGormDenominationRecordRepository creates a new GormDenominationRecordRepository
func NewGormDenominationRecordRepository(db *gorm.DB) *GormDenominationRecordRepository {
	return &GormDenominationRecordRepository{db: db}
}

// SaveAll inserts the records of one reference
func (r *GormDenominationRecordRepository) SaveAll(ctx context.Context, records []cash.DenominationRecord) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]models.DenominationRecordModel, len(records))
	for i, rec := range records {
		rows[i] = models.DenominationRecordModelFromDomain(rec)
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// FindByReference returns the records of a reference, largest face value first
func (r *GormDenominationRecordRepository) FindByReference(ctx context.Context, reference string) ([]cash.DenominationRecord, error) {
	var rows []models.DenominationRecordModel
	if err := r.db.WithContext(ctx).Where("reference = ?", reference).Order("face_value DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list denomination records: %w", err)
	}
	out := make([]cash.DenominationRecord, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// GormTellerOperationRepository implements cash.TellerOperationRepository using GORM
type GormTellerOperationRepository struct {
	db *gorm.DB
}

// NewGormTellerOperationRepository creates a new GormTellerOperationRepository
func NewGormTellerOperationRepository(db *gorm.DB) *GormTellerOperationRepository {
	return &GormTellerOperationRepository{db: db}
}

// Save inserts an audit row
func (r *GormTellerOperationRepository) Save(ctx context.Context, op *cash.TellerOperation) error {
	return r.db.WithContext(ctx).Create(models.TellerOperationModelFromDomain(op)).Error
}

// FindByReference finds the audit row of a reference
func (r *GormTellerOperationRepository) FindByReference(ctx context.Context, reference string) (*cash.TellerOperation, error) {
	var m models.TellerOperationModel
	if err := r.db.WithContext(ctx).First(&m, "reference = ?", reference).Error; err != nil {
		if isNotFound(err) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("find teller operation: %w", err)
	}
	return m.ToDomain(), nil
}

var (
	_ cash.CashTransactionRepository    = (*GormCashTransactionRepository)(nil)
	_ cash.DenominationRecordRepository = (*GormDenominationRecordRepository)(nil)
	_ cash.TellerOperationRepository    = (*GormTellerOperationRepository)(nil)
)
