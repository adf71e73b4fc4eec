package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/corebank/backend/internal/domain/cash"
	"github.com/corebank/backend/internal/domain/posting"
	"github.com/corebank/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBatchRepository implements posting.BatchRepository using GORM
type GormBatchRepository struct {
	db *gorm.DB
}

// NewGormBatchRepository creates a new GormBatchRepository
func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

// SaveBatch inserts the header and every leg in emission order
func (r *GormBatchRepository) SaveBatch(ctx context.Context, batch *posting.Batch) error {
	header := models.PostingBatchModel{
		Reference:    batch.Reference,
		StatedAmount: batch.StatedAmount,
		StatedFee:    batch.StatedFee,
		FeeInclusive: batch.FeeInclusive,
		Warnings:     cash.Warnings{},
		CreatedAt:    time.Now(),
	}
	db := r.db.WithContext(ctx)
	if err := db.Create(&header).Error; err != nil {
		return fmt.Errorf("create posting batch: %w", err)
	}
	if len(batch.Legs) == 0 {
		return nil
	}
	legs := make([]models.PostingLegModel, len(batch.Legs))
	for i, l := range batch.Legs {
		legs[i] = models.PostingLegModelFromDomain(l, i)
	}
	if err := db.Create(&legs).Error; err != nil {
		return fmt.Errorf("create posting legs: %w", err)
	}
	return nil
}

// FindByReference loads a batch with its legs
func (r *GormBatchRepository) FindByReference(ctx context.Context, reference string) (*posting.Batch, error) {
	db := r.db.WithContext(ctx)
	var header models.PostingBatchModel
	if err := db.First(&header, "reference = ?", reference).Error; err != nil {
		if isNotFound(err) {
			return nil, posting.ErrBatchNotFound
		}
		return nil, fmt.Errorf("find posting batch: %w", err)
	}
	var rows []models.PostingLegModel
	if err := db.Where("batch_reference = ?", reference).Order("position").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list posting legs: %w", err)
	}
	batch := &posting.Batch{
		Reference:    header.Reference,
		StatedAmount: header.StatedAmount,
		StatedFee:    header.StatedFee,
		FeeInclusive: header.FeeInclusive,
		Legs:         make([]posting.Leg, len(rows)),
	}
	for i := range rows {
		batch.Legs[i] = rows[i].ToDomain()
	}
	return batch, nil
}

// RecordVerification stores the ledger's verdict on a batch
func (r *GormBatchRepository) RecordVerification(ctx context.Context, reference string, warnings []string) error {
	now := time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.PostingBatchModel{}).
		Where("reference = ?", reference).
		Updates(map[string]interface{}{
			"verified":    len(warnings) == 0,
			"warnings":    cash.Warnings(append([]string{}, warnings...)),
			"verified_at": &now,
		})
	if result.Error != nil {
		return fmt.Errorf("record posting verification: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return posting.ErrBatchNotFound
	}
	return nil
}

// GormSchemeRepository implements posting.SchemeRepository using GORM
type GormSchemeRepository struct {
	db *gorm.DB
}

// NewGormSchemeRepository creates a new GormSchemeRepository
func NewGormSchemeRepository(db *gorm.DB) *GormSchemeRepository {
	return &GormSchemeRepository{db: db}
}

// FindByID finds a scheme by ID
func (r *GormSchemeRepository) FindByID(ctx context.Context, id uuid.UUID) (*posting.CommissionScheme, error) {
	var m models.CommissionSchemeModel
	if err := r.db.WithContext(ctx).Scopes(Active).First(&m, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, posting.ErrSchemeNotFound
		}
		return nil, fmt.Errorf("find commission scheme: %w", err)
	}
	return m.ToDomain(), nil
}

// FindByCode finds a live scheme by its code
func (r *GormSchemeRepository) FindByCode(ctx context.Context, code string) (*posting.CommissionScheme, error) {
	var m models.CommissionSchemeModel
	if err := r.db.WithContext(ctx).Scopes(Active).First(&m, "code = ?", code).Error; err != nil {
		if isNotFound(err) {
			return nil, posting.ErrSchemeNotFound
		}
		return nil, fmt.Errorf("find commission scheme by code: %w", err)
	}
	return m.ToDomain(), nil
}

// List returns every live scheme ordered by code
func (r *GormSchemeRepository) List(ctx context.Context) ([]posting.CommissionScheme, error) {
	var rows []models.CommissionSchemeModel
	if err := r.db.WithContext(ctx).Scopes(Active).Order("code").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list commission schemes: %w", err)
	}
	out := make([]posting.CommissionScheme, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save creates or overwrites a scheme
func (r *GormSchemeRepository) Save(ctx context.Context, scheme *posting.CommissionScheme) error {
	err := r.db.WithContext(ctx).Save(models.CommissionSchemeModelFromDomain(scheme)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return posting.ErrSchemeExists
	}
	return err
}

var (
	_ posting.BatchRepository  = (*GormBatchRepository)(nil)
	_ posting.SchemeRepository = (*GormSchemeRepository)(nil)
)
