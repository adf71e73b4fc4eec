package models

import (
	"time"

	"github.com/corebank/backend/internal/domain/accountingday"
	"github.com/corebank/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// AccountingDayModel is the persistence model for the AccountingDay aggregate root.
type AccountingDayModel struct {
	AggregateModel
	Date          time.Time            `gorm:"type:date;not null;uniqueIndex:idx_accounting_day_branch_date,where:lifecycle = 'ACTIVE'"`
	BranchID      *uuid.UUID           `gorm:"type:uuid;uniqueIndex:idx_accounting_day_branch_date,where:lifecycle = 'ACTIVE'"`
	IsCentralized bool                 `gorm:"not null;default:false"`
	Status        accountingday.Status `gorm:"type:varchar(20);not null;index"`
	OpenedAt      time.Time            `gorm:"not null"`
	OpenedBy      uuid.UUID            `gorm:"type:uuid"`
	ClosedAt      *time.Time
	ClosedBy      *uuid.UUID `gorm:"type:uuid"`
	ReopenedAt    *time.Time
	ReopenedBy    *uuid.UUID       `gorm:"type:uuid"`
	ReopenCount   int              `gorm:"not null;default:0"`
	Note          string           `gorm:"type:varchar(500)"`
	Lifecycle     shared.Lifecycle `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
}

// TableName returns the table name for GORM
func (AccountingDayModel) TableName() string {
	return "accounting_days"
}

// ToDomain converts the persistence model to a domain AccountingDay.
func (m *AccountingDayModel) ToDomain() *accountingday.AccountingDay {
	return &accountingday.AccountingDay{
		BaseAggregateRoot: m.root(),
		Date:              m.Date.UTC(),
		BranchID:          m.BranchID,
		IsCentralized:     m.IsCentralized,
		Status:            m.Status,
		OpenedAt:          m.OpenedAt,
		OpenedBy:          m.OpenedBy,
		ClosedAt:          m.ClosedAt,
		ClosedBy:          m.ClosedBy,
		ReopenedAt:        m.ReopenedAt,
		ReopenedBy:        m.ReopenedBy,
		ReopenCount:       m.ReopenCount,
		Note:              m.Note,
		Lifecycle:         m.Lifecycle,
	}
}

// AccountingDayModelFromDomain creates a persistence model from the domain aggregate.
func AccountingDayModelFromDomain(d *accountingday.AccountingDay) *AccountingDayModel {
	m := &AccountingDayModel{
		Date:          d.Date,
		BranchID:      d.BranchID,
		IsCentralized: d.IsCentralized,
		Status:        d.Status,
		OpenedAt:      d.OpenedAt,
		OpenedBy:      d.OpenedBy,
		ClosedAt:      d.ClosedAt,
		ClosedBy:      d.ClosedBy,
		ReopenedAt:    d.ReopenedAt,
		ReopenedBy:    d.ReopenedBy,
		ReopenCount:   d.ReopenCount,
		Note:          d.Note,
		Lifecycle:     d.Lifecycle,
	}
	m.fromRoot(d.BaseAggregateRoot)
	return m
}
