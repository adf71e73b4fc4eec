package models

import (
	"time"

	"github.com/corebank/backend/internal/domain/cash"
	"github.com/corebank/backend/internal/domain/posting"
	"github.com/corebank/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PostingBatchModel is the header row of a posting batch.
type PostingBatchModel struct {
	Reference    string          `gorm:"type:varchar(60);primary_key"`
	StatedAmount decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	StatedFee    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	FeeInclusive bool            `gorm:"not null;default:false"`
	Verified     bool            `gorm:"not null;default:false"`
	Warnings     cash.Warnings   `gorm:"type:jsonb"`
	CreatedAt    time.Time       `gorm:"not null"`
	VerifiedAt   *time.Time
}

// TableName returns the table name for GORM
func (PostingBatchModel) TableName() string {
	return "posting_batches"
}

// PostingLegModel is one leg of a posting batch. EventCode keeps the
// rendered {subject}@{attribute} form for text based reconciliation.
type PostingLegModel struct {
	ID                      uuid.UUID         `gorm:"type:uuid;primary_key"`
	BatchReference          string            `gorm:"type:varchar(60);not null;index"`
	Position                int               `gorm:"not null"`
	Subject                 string            `gorm:"type:varchar(100);not null"`
	Attribute               posting.Attribute `gorm:"type:varchar(60);not null"`
	EventCode               string            `gorm:"type:varchar(170);not null;index"`
	Amount                  decimal.Decimal   `gorm:"type:decimal(18,4);not null"`
	IsPrincipal             bool              `gorm:"not null"`
	IsInterBranchCommission bool              `gorm:"not null"`
	Narration               string            `gorm:"type:varchar(300);not null"`
	BranchID                uuid.UUID         `gorm:"type:uuid;index"`
	AccountingDate          time.Time         `gorm:"type:date;not null"`
	CreatedAt               time.Time         `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PostingLegModel) TableName() string {
	return "posting_legs"
}

// ToDomain converts the persistence model to a domain Leg.
func (m *PostingLegModel) ToDomain() posting.Leg {
	return posting.Leg{
		ID:                      m.ID,
		BatchReference:          m.BatchReference,
		Key:                     posting.EventKey{Subject: m.Subject, Attribute: m.Attribute},
		Amount:                  m.Amount,
		IsPrincipal:             m.IsPrincipal,
		IsInterBranchCommission: m.IsInterBranchCommission,
		Narration:               m.Narration,
		BranchID:                m.BranchID,
		AccountingDate:          m.AccountingDate.UTC(),
		CreatedAt:               m.CreatedAt,
	}
}

// PostingLegModelFromDomain creates a persistence model from the domain leg.
func PostingLegModelFromDomain(l posting.Leg, position int) PostingLegModel {
	return PostingLegModel{
		ID:                      l.ID,
		BatchReference:          l.BatchReference,
		Position:                position,
		Subject:                 l.Key.Subject,
		Attribute:               l.Key.Attribute,
		EventCode:               l.Key.Code(),
		Amount:                  l.Amount,
		IsPrincipal:             l.IsPrincipal,
		IsInterBranchCommission: l.IsInterBranchCommission,
		Narration:               l.Narration,
		BranchID:                l.BranchID,
		AccountingDate:          l.AccountingDate,
		CreatedAt:               l.CreatedAt,
	}
}

// CommissionSchemeModel is the persistence model for a commission sharing scheme.
type CommissionSchemeModel struct {
	AggregateModel
	Code              string           `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name              string           `gorm:"type:varchar(100)"`
	SourceBranch      decimal.Decimal  `gorm:"type:decimal(7,4);not null"`
	DestinationBranch decimal.Decimal  `gorm:"type:decimal(7,4);not null"`
	HeadOffice        decimal.Decimal  `gorm:"type:decimal(7,4);not null"`
	PartnerOne        decimal.Decimal  `gorm:"type:decimal(7,4);not null"`
	PartnerTwo        decimal.Decimal  `gorm:"type:decimal(7,4);not null"`
	Lifecycle         shared.Lifecycle `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
}

// TableName returns the table name for GORM
func (CommissionSchemeModel) TableName() string {
	return "commission_schemes"
}

// ToDomain converts the persistence model to a domain CommissionScheme.
func (m *CommissionSchemeModel) ToDomain() *posting.CommissionScheme {
	return &posting.CommissionScheme{
		BaseAggregateRoot: m.root(),
		Code:              m.Code,
		Name:              m.Name,
		Shares: posting.Shares{
			SourceBranch:      m.SourceBranch,
			DestinationBranch: m.DestinationBranch,
			HeadOffice:        m.HeadOffice,
			PartnerOne:        m.PartnerOne,
			PartnerTwo:        m.PartnerTwo,
		},
		Lifecycle: m.Lifecycle,
	}
}

// CommissionSchemeModelFromDomain creates a persistence model from the domain aggregate.
func CommissionSchemeModelFromDomain(s *posting.CommissionScheme) *CommissionSchemeModel {
	m := &CommissionSchemeModel{
		Code:              s.Code,
		Name:              s.Name,
		SourceBranch:      s.Shares.SourceBranch,
		DestinationBranch: s.Shares.DestinationBranch,
		HeadOffice:        s.Shares.HeadOffice,
		PartnerOne:        s.Shares.PartnerOne,
		PartnerTwo:        s.Shares.PartnerTwo,
		Lifecycle:         s.Lifecycle,
	}
	m.fromRoot(s.BaseAggregateRoot)
	return m
}
