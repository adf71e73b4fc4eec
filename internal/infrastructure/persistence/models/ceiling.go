package models

import (
	"time"

	"github.com/corebank/backend/internal/domain/cash"
	"github.com/corebank/backend/internal/domain/ceiling"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CashCeilingRequestModel is the persistence model for a cash ceiling request.
// The partial unique index backs the one-pending-per-teller-and-direction rule.
type CashCeilingRequestModel struct {
	AggregateModel
	Reference              string               `gorm:"type:varchar(60);not null;uniqueIndex"`
	TellerID               uuid.UUID            `gorm:"type:uuid;not null;uniqueIndex:idx_ceiling_pending,where:status = 'PENDING'"`
	BranchID               uuid.UUID            `gorm:"type:uuid;not null;index"`
	Type                   ceiling.RequestType  `gorm:"type:varchar(20);not null;uniqueIndex:idx_ceiling_pending,where:status = 'PENDING'"`
	Amount                 decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Denominations          cash.DenominationSet `gorm:"type:jsonb"`
	Status                 ceiling.Status       `gorm:"type:varchar(20);not null;index"`
	Note                   string               `gorm:"type:varchar(500)"`
	RequestedBy            uuid.UUID            `gorm:"type:uuid"`
	RequestedAt            time.Time            `gorm:"not null"`
	DestinationCustodianID *uuid.UUID           `gorm:"type:uuid"`
	ValidatedBy            *uuid.UUID           `gorm:"type:uuid"`
	ValidatedAt            *time.Time
	RejectedBy             *uuid.UUID `gorm:"type:uuid"`
	RejectedAt             *time.Time
	RejectReason           string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (CashCeilingRequestModel) TableName() string {
	return "cash_ceiling_requests"
}

// ToDomain converts the persistence model to a domain Request.
func (m *CashCeilingRequestModel) ToDomain() *ceiling.Request {
	return &ceiling.Request{
		BaseAggregateRoot:      m.root(),
		Reference:              m.Reference,
		TellerID:               m.TellerID,
		BranchID:               m.BranchID,
		Type:                   m.Type,
		Amount:                 m.Amount,
		Denominations:          m.Denominations,
		Status:                 m.Status,
		Note:                   m.Note,
		RequestedBy:            m.RequestedBy,
		RequestedAt:            m.RequestedAt,
		DestinationCustodianID: m.DestinationCustodianID,
		ValidatedBy:            m.ValidatedBy,
		ValidatedAt:            m.ValidatedAt,
		RejectedBy:             m.RejectedBy,
		RejectedAt:             m.RejectedAt,
		RejectReason:           m.RejectReason,
	}
}

// CashCeilingRequestModelFromDomain creates a persistence model from the domain aggregate.
func CashCeilingRequestModelFromDomain(r *ceiling.Request) *CashCeilingRequestModel {
	m := &CashCeilingRequestModel{
		Reference:              r.Reference,
		TellerID:               r.TellerID,
		BranchID:               r.BranchID,
		Type:                   r.Type,
		Amount:                 r.Amount,
		Denominations:          r.Denominations,
		Status:                 r.Status,
		Note:                   r.Note,
		RequestedBy:            r.RequestedBy,
		RequestedAt:            r.RequestedAt,
		DestinationCustodianID: r.DestinationCustodianID,
		ValidatedBy:            r.ValidatedBy,
		ValidatedAt:            r.ValidatedAt,
		RejectedBy:             r.RejectedBy,
		RejectedAt:             r.RejectedAt,
		RejectReason:           r.RejectReason,
	}
	m.fromRoot(r.BaseAggregateRoot)
	return m
}
