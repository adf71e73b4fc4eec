package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/corebank/backend/internal/domain/ceiling"
	"github.com/corebank/backend/internal/domain/shared"
	"github.com/corebank/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCeilingRepository implements ceiling.Repository using GORM
type GormCeilingRepository struct {
	db *gorm.DB
}

// NewGormCeilingRepository creates a new GormCeilingRepository
func NewGormCeilingRepository(db *gorm.DB) *GormCeilingRepository {
	return &GormCeilingRepository{db: db}
}

// FindByID finds a ceiling request by ID
func (r *GormCeilingRepository) FindByID(ctx context.Context, id uuid.UUID) (*ceiling.Request, error) {
	var m models.CashCeilingRequestModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, ceiling.ErrRequestNotFound
		}
		return nil, fmt.Errorf("find ceiling request: %w", err)
	}
	return m.ToDomain(), nil
}

// FindPending returns the pending request of a teller and direction
func (r *GormCeilingRepository) FindPending(ctx context.Context, tellerID uuid.UUID, reqType ceiling.RequestType) (*ceiling.Request, error) {
	var m models.CashCeilingRequestModel
	err := r.db.WithContext(ctx).
		Where("teller_id = ? AND type = ? AND status = ?", tellerID, reqType, ceiling.StatusPending).
		First(&m).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find pending ceiling request: %w", err)
	}
	return m.ToDomain(), nil
}

// List returns the requests of a branch, newest first by default. An empty status matches all.
func (r *GormCeilingRepository) List(ctx context.Context, branchID uuid.UUID, status ceiling.Status, filter shared.Filter) ([]ceiling.Request, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.CashCeilingRequestModel{}).Where("branch_id = ?", branchID)
	if status != "" {
		q = q.Where("status = ?", status)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count ceiling requests: %w", err)
	}

	var rows []models.CashCeilingRequestModel
	if err := q.Session(&gorm.Session{}).Scopes(Paginate(filter), OrderBy(filter, CeilingSortFields, "requested_at")).Find(&rows).Error; err != nil {
		return nil, 0, fmt.Errorf("list ceiling requests: %w", err)
	}
	out := make([]ceiling.Request, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// Save creates or overwrites a request. A second pending request for the
// same teller and direction hits the partial unique index.
func (r *GormCeilingRepository) Save(ctx context.Context, req *ceiling.Request) error {
	err := r.db.WithContext(ctx).Save(models.CashCeilingRequestModelFromDomain(req)).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ceiling.ErrDuplicatePendingRequest
	}
	return err
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormCeilingRepository) SaveWithLock(ctx context.Context, req *ceiling.Request) error {
	result := r.db.WithContext(ctx).
		Model(&models.CashCeilingRequestModel{}).
		Where("id = ? AND version = ?", req.ID, req.Version-1).
		Updates(map[string]interface{}{
			"status":                   req.Status,
			"destination_custodian_id": req.DestinationCustodianID,
			"validated_by":             req.ValidatedBy,
			"validated_at":             req.ValidatedAt,
			"rejected_by":              req.RejectedBy,
			"rejected_at":              req.RejectedAt,
			"reject_reason":            req.RejectReason,
			"version":                  req.Version,
			"updated_at":               req.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("update ceiling request: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return optimisticLockFailed("Cash ceiling request")
	}
	return nil
}

var _ ceiling.Repository = (*GormCeilingRepository)(nil)
