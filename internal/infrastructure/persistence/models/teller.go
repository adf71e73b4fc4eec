package models

import (
	"time"

	"github.com/corebank/backend/internal/domain/shared"
	"github.com/corebank/backend/internal/domain/teller"
	"github.com/google/uuid"
)

// TellerModel is the persistence model for a till.
type TellerModel struct {
	AggregateModel
	BranchID  uuid.UUID        `gorm:"type:uuid;not null;index"`
	Code      string           `gorm:"type:varchar(30);not null"`
	Name      string           `gorm:"type:varchar(100)"`
	IsPrimary bool             `gorm:"not null;default:false"`
	Lifecycle shared.Lifecycle `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
}

// TableName returns the table name for GORM
func (TellerModel) TableName() string {
	return "tellers"
}

// ToDomain converts the persistence model to a domain Teller.
func (m *TellerModel) ToDomain() *teller.Teller {
	return &teller.Teller{
		BaseAggregateRoot: m.root(),
		BranchID:          m.BranchID,
		Code:              m.Code,
		Name:              m.Name,
		IsPrimary:         m.IsPrimary,
		Lifecycle:         m.Lifecycle,
	}
}

// TellerModelFromDomain creates a persistence model from the domain entity.
func TellerModelFromDomain(t *teller.Teller) *TellerModel {
	m := &TellerModel{
		BranchID:  t.BranchID,
		Code:      t.Code,
		Name:      t.Name,
		IsPrimary: t.IsPrimary,
		Lifecycle: t.Lifecycle,
	}
	m.fromRoot(t.BaseAggregateRoot)
	return m
}

// TellerAssignmentModel is the persistence model for a daily teller assignment.
type TellerAssignmentModel struct {
	AggregateModel
	UserID     uuid.UUID `gorm:"type:uuid;not null;index"`
	BranchID   uuid.UUID `gorm:"type:uuid;not null;index"`
	TellerID   uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_assignment_active_teller,where:lifecycle = 'ACTIVE'"`
	IsPrimary  bool      `gorm:"not null;default:false"`
	AssignedAt time.Time `gorm:"not null"`
	AssignedBy uuid.UUID `gorm:"type:uuid"`
	EndedAt    *time.Time
	EndedBy    *uuid.UUID       `gorm:"type:uuid"`
	Lifecycle  shared.Lifecycle `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
}

// TableName returns the table name for GORM
func (TellerAssignmentModel) TableName() string {
	return "teller_assignments"
}

// ToDomain converts the persistence model to a domain Assignment.
func (m *TellerAssignmentModel) ToDomain() *teller.Assignment {
	return &teller.Assignment{
		BaseAggregateRoot: m.root(),
		UserID:            m.UserID,
		BranchID:          m.BranchID,
		TellerID:          m.TellerID,
		IsPrimary:         m.IsPrimary,
		AssignedAt:        m.AssignedAt,
		AssignedBy:        m.AssignedBy,
		EndedAt:           m.EndedAt,
		EndedBy:           m.EndedBy,
		Lifecycle:         m.Lifecycle,
	}
}

// TellerAssignmentModelFromDomain creates a persistence model from the domain entity.
func TellerAssignmentModelFromDomain(a *teller.Assignment) *TellerAssignmentModel {
	m := &TellerAssignmentModel{
		UserID:     a.UserID,
		BranchID:   a.BranchID,
		TellerID:   a.TellerID,
		IsPrimary:  a.IsPrimary,
		AssignedAt: a.AssignedAt,
		AssignedBy: a.AssignedBy,
		EndedAt:    a.EndedAt,
		EndedBy:    a.EndedBy,
		Lifecycle:  a.Lifecycle,
	}
	m.fromRoot(a.BaseAggregateRoot)
	return m
}
