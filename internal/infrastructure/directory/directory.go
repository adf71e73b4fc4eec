// Package directory serves the branch and customer lookups of the custody
// core from the read-model tables kept by the bank's master data feeds.
package directory

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/corebank/backend/internal/application/custody"
	"github.com/corebank/backend/internal/domain/shared"
	"github.com/corebank/backend/internal/infrastructure/persistence"
	"github.com/corebank/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBranchDirectory implements custody.BranchDirectory over the branches table
type GormBranchDirectory struct {
	db *gorm.DB
}

// NewGormBranchDirectory creates a new GormBranchDirectory
func NewGormBranchDirectory(db *gorm.DB) *GormBranchDirectory {
	return &GormBranchDirectory{db: db}
}

// GetBranchByID returns a live branch
func (d *GormBranchDirectory) GetBranchByID(ctx context.Context, id uuid.UUID) (*custody.Branch, error) {
	var m models.BranchModel
	if err := d.db.WithContext(ctx).Scopes(persistence.Active).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, custody.ErrBranchNotFound.WithMessage(fmt.Sprintf("Branch %s not found", id))
		}
		return nil, fmt.Errorf("find branch: %w", err)
	}
	return toBranch(&m), nil
}

// GetBranches lists the live branches ordered by code
func (d *GormBranchDirectory) GetBranches(ctx context.Context) ([]custody.Branch, error) {
	var rows []models.BranchModel
	if err := d.db.WithContext(ctx).Scopes(persistence.Active).Order("code").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list branches: %w", err)
	}
	out := make([]custody.Branch, len(rows))
	for i := range rows {
		out[i] = *toBranch(&rows[i])
	}
	return out, nil
}

// Upsert writes a branch as received from the master data feed
func (d *GormBranchDirectory) Upsert(ctx context.Context, b custody.Branch) error {
	if b.ID == uuid.Nil || strings.TrimSpace(b.Code) == "" {
		return errors.New("branch id and code are required")
	}
	now := time.Now()
	m := &models.BranchModel{Code: strings.ToUpper(b.Code), Name: b.Name, Lifecycle: shared.LifecycleActive}
	m.ID, m.CreatedAt, m.UpdatedAt = b.ID, now, now
	return d.db.WithContext(ctx).Save(m).Error
}

func toBranch(m *models.BranchModel) *custody.Branch {
	return &custody.Branch{ID: m.ID, Name: m.Name, Code: m.Code}
}

// GormCustomerDirectory implements custody.CustomerDirectory over the customers table
type GormCustomerDirectory struct {
	db *gorm.DB
}

// NewGormCustomerDirectory creates a new GormCustomerDirectory
func NewGormCustomerDirectory(db *gorm.DB) *GormCustomerDirectory {
	return &GormCustomerDirectory{db: db}
}

// GetCustomerByID returns a customer with its home branch
func (d *GormCustomerDirectory) GetCustomerByID(ctx context.Context, id uuid.UUID) (*custody.Customer, error) {
	var m models.CustomerModel
	if err := d.db.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, custody.ErrCustomerNotFound.WithMessage(fmt.Sprintf("Customer %s not found", id))
		}
		return nil, fmt.Errorf("find customer: %w", err)
	}
	return &custody.Customer{
		ID:       m.ID,
		Name:     m.Name,
		BranchID: m.BranchID,
		Phone:    m.Phone,
		Language: m.Language,
	}, nil
}

// Upsert writes a customer as received from the master data feed
func (d *GormCustomerDirectory) Upsert(ctx context.Context, c custody.Customer) error {
	if c.ID == uuid.Nil || c.BranchID == uuid.Nil {
		return errors.New("customer id and branch are required")
	}
	lang := c.Language
	if lang == "" {
		lang = "en"
	}
	now := time.Now()
	m := &models.CustomerModel{Name: c.Name, BranchID: c.BranchID, Phone: c.Phone, Language: lang}
	m.ID, m.CreatedAt, m.UpdatedAt = c.ID, now, now
	return d.db.WithContext(ctx).Save(m).Error
}

var (
	_ custody.BranchDirectory   = (*GormBranchDirectory)(nil)
	_ custody.CustomerDirectory = (*GormCustomerDirectory)(nil)
)
