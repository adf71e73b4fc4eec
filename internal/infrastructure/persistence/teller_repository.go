package persistence

import (
	"context"
	"fmt"

	"github.com/corebank/backend/internal/domain/teller"
	"github.com/corebank/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormTellerRepository implements teller.TellerRepository using GORM
type GormTellerRepository struct {
	db *gorm.DB
}

// NewGormTellerRepository creates a new GormTellerRepository
func NewGormTellerRepository(db *gorm.DB) *GormTellerRepository {
	return &GormTellerRepository{db: db}
}

// FindByID finds a live teller by ID
func (r *GormTellerRepository) FindByID(ctx context.Context, id uuid.UUID) (*teller.Teller, error) {
	var m models.TellerModel
	if err := r.db.WithContext(ctx).Scopes(Active).First(&m, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, teller.ErrTellerNotFound
		}
		return nil, fmt.Errorf("find teller: %w", err)
	}
	return m.ToDomain(), nil
}

// FindByBranch lists the live tellers of a branch
func (r *GormTellerRepository) FindByBranch(ctx context.Context, branchID uuid.UUID) ([]teller.Teller, error) {
	var rows []models.TellerModel
	if err := r.db.WithContext(ctx).Scopes(Active).Where("branch_id = ?", branchID).Order("code").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list tellers: %w", err)
	}
	out := make([]teller.Teller, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// Save creates or overwrites a teller
func (r *GormTellerRepository) Save(ctx context.Context, t *teller.Teller) error {
	return r.db.WithContext(ctx).Save(models.TellerModelFromDomain(t)).Error
}

// GormAssignmentRepository implements teller.AssignmentRepository using GORM
type GormAssignmentRepository struct {
	db *gorm.DB
}

// NewGormAssignmentRepository creates a new GormAssignmentRepository
func NewGormAssignmentRepository(db *gorm.DB) *GormAssignmentRepository {
	return &GormAssignmentRepository{db: db}
}

func (r *GormAssignmentRepository) first(ctx context.Context, query string, args ...interface{}) (*teller.Assignment, error) {
	var m models.TellerAssignmentModel
	if err := r.db.WithContext(ctx).Scopes(Active).Where(query, args...).Order("assigned_at DESC").First(&m).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find teller assignment: %w", err)
	}
	return m.ToDomain(), nil
}

// FindByID finds an assignment by ID, ended ones included
func (r *GormAssignmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*teller.Assignment, error) {
	var m models.TellerAssignmentModel
	if err := r.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if isNotFound(err) {
			return nil, teller.ErrAssignmentNotFound
		}
		return nil, fmt.Errorf("find teller assignment: %w", err)
	}
	return m.ToDomain(), nil
}

// FindActiveByUserAndTeller finds the user's live assignment on a teller
func (r *GormAssignmentRepository) FindActiveByUserAndTeller(ctx context.Context, userID, tellerID uuid.UUID) (*teller.Assignment, error) {
	return r.first(ctx, "user_id = ? AND teller_id = ?", userID, tellerID)
}

// FindActivePrimary finds the branch's live primary assignment
func (r *GormAssignmentRepository) FindActivePrimary(ctx context.Context, branchID uuid.UUID) (*teller.Assignment, error) {
	return r.first(ctx, "branch_id = ? AND is_primary = ?", branchID, true)
}

// FindActiveByTeller finds whoever currently holds the teller
func (r *GormAssignmentRepository) FindActiveByTeller(ctx context.Context, tellerID uuid.UUID) (*teller.Assignment, error) {
	return r.first(ctx, "teller_id = ?", tellerID)
}

// FindActiveSub finds the user's live sub-teller assignment in a branch
func (r *GormAssignmentRepository) FindActiveSub(ctx context.Context, userID, branchID uuid.UUID) (*teller.Assignment, error) {
	return r.first(ctx, "user_id = ? AND branch_id = ? AND is_primary = ?", userID, branchID, false)
}

// FindActiveForUser prefers the sub-teller assignment, then the primary one
func (r *GormAssignmentRepository) FindActiveForUser(ctx context.Context, userID, branchID uuid.UUID) (*teller.Assignment, error) {
	a, err := r.FindActiveSub(ctx, userID, branchID)
	if err != nil || a != nil {
		return a, err
	}
	return r.first(ctx, "user_id = ? AND branch_id = ? AND is_primary = ?", userID, branchID, true)
}

// Save creates or overwrites an assignment
func (r *GormAssignmentRepository) Save(ctx context.Context, a *teller.Assignment) error {
	return r.db.WithContext(ctx).Save(models.TellerAssignmentModelFromDomain(a)).Error
}

var (
	_ teller.TellerRepository     = (*GormTellerRepository)(nil)
	_ teller.AssignmentRepository = (*GormAssignmentRepository)(nil)
)
