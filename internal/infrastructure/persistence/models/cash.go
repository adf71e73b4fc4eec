package models

import (
	"time"

	"github.com/corebank/backend/internal/domain/cash"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustodianAccountModel is the persistence model for a custodian cash position.
type CustodianAccountModel struct {
	AggregateModel
	BranchID        uuid.UUID          `gorm:"type:uuid;not null;index"`
	Kind            cash.CustodianKind `gorm:"type:varchar(20);not null"`
	CustodianID     uuid.UUID          `gorm:"type:uuid;not null;uniqueIndex"`
	Balance         decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	PreviousBalance decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	OpeningDayID    *uuid.UUID         `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (CustodianAccountModel) TableName() string {
	return "custodian_accounts"
}

// ToDomain converts the persistence model to a domain CustodianAccount.
func (m *CustodianAccountModel) ToDomain() *cash.CustodianAccount {
	return &cash.CustodianAccount{
		BaseAggregateRoot: m.root(),
		BranchID:          m.BranchID,
		Kind:              m.Kind,
		CustodianID:       m.CustodianID,
		Balance:           m.Balance,
		PreviousBalance:   m.PreviousBalance,
		OpeningDayID:      m.OpeningDayID,
	}
}

// CustodianAccountModelFromDomain creates a persistence model from the domain aggregate.
func CustodianAccountModelFromDomain(a *cash.CustodianAccount) *CustodianAccountModel {
	m := &CustodianAccountModel{
		BranchID:        a.BranchID,
		Kind:            a.Kind,
		CustodianID:     a.CustodianID,
		Balance:         a.Balance,
		PreviousBalance: a.PreviousBalance,
		OpeningDayID:    a.OpeningDayID,
	}
	m.fromRoot(a.BaseAggregateRoot)
	return m
}

// ProvisioningHistoryModel is the persistence model for a day's denomination inventory.
type ProvisioningHistoryModel struct {
	AggregateModel
	Kind           cash.CustodianKind      `gorm:"type:varchar(20);not null"`
	CustodianID    uuid.UUID               `gorm:"type:uuid;not null;index"`
	BranchID       uuid.UUID               `gorm:"type:uuid;not null;index"`
	AccountingDate time.Time               `gorm:"type:date;not null;index"`
	OpeningCounts  cash.DenominationSet    `gorm:"type:jsonb;not null"`
	Counts         cash.DenominationSet    `gorm:"type:jsonb;not null"`
	CashInTotal    decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	CashOutTotal   decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	Status         cash.ProvisioningStatus `gorm:"type:varchar(20);not null;index"`
	FrozenAt       *time.Time
}

// TableName returns the table name for GORM
func (ProvisioningHistoryModel) TableName() string {
	return "provisioning_histories"
}

// ToDomain converts the persistence model to a domain ProvisioningHistory.
func (m *ProvisioningHistoryModel) ToDomain() *cash.ProvisioningHistory {
	return &cash.ProvisioningHistory{
		BaseAggregateRoot: m.root(),
		Kind:              m.Kind,
		CustodianID:       m.CustodianID,
		BranchID:          m.BranchID,
		AccountingDate:    m.AccountingDate.UTC(),
		OpeningCounts:     m.OpeningCounts,
		Counts:            m.Counts,
		CashInTotal:       m.CashInTotal,
		CashOutTotal:      m.CashOutTotal,
		Status:            m.Status,
		FrozenAt:          m.FrozenAt,
	}
}

// ProvisioningHistoryModelFromDomain creates a persistence model from the domain aggregate.
func ProvisioningHistoryModelFromDomain(h *cash.ProvisioningHistory) *ProvisioningHistoryModel {
	m := &ProvisioningHistoryModel{
		Kind:           h.Kind,
		CustodianID:    h.CustodianID,
		BranchID:       h.BranchID,
		AccountingDate: h.AccountingDate,
		OpeningCounts:  h.OpeningCounts,
		Counts:         h.Counts,
		CashInTotal:    h.CashInTotal,
		CashOutTotal:   h.CashOutTotal,
		Status:         h.Status,
		FrozenAt:       h.FrozenAt,
	}
	m.fromRoot(h.BaseAggregateRoot)
	return m
}

// CashTransactionModel is the persistence model for a completed till operation.
type CashTransactionModel struct {
	AggregateModel
	Reference            string               `gorm:"type:varchar(60);not null;uniqueIndex"`
	Type                 cash.TransactionType `gorm:"type:varchar(20);not null;index"`
	AccountID            uuid.UUID            `gorm:"type:uuid;not null;index"`
	ProductCode          string               `gorm:"type:varchar(50);not null"`
	AccountType          string               `gorm:"type:varchar(50)"`
	CustomerID           uuid.UUID            `gorm:"type:uuid;index"`
	CustomerBranchID     uuid.UUID            `gorm:"type:uuid"`
	DestinationAccountID *uuid.UUID           `gorm:"type:uuid"`
	BranchID             uuid.UUID            `gorm:"type:uuid;not null;index"`
	TellerID             uuid.UUID            `gorm:"type:uuid;index"`
	UserID               uuid.UUID            `gorm:"type:uuid"`
	AccountingDate       time.Time            `gorm:"type:date;not null;index"`
	Amount               decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Fee                  decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	FeeInclusive         bool                 `gorm:"not null;default:false"`
	InterBranch          bool                 `gorm:"not null;default:false"`
	Denominations        cash.DenominationSet `gorm:"type:jsonb"`
	Warnings             cash.Warnings        `gorm:"type:jsonb"`
}

// TableName returns the table name for GORM
func (CashTransactionModel) TableName() string {
	return "cash_transactions"
}

// ToDomain converts the persistence model to a domain CashTransaction.
func (m *CashTransactionModel) ToDomain() *cash.CashTransaction {
	return &cash.CashTransaction{
		BaseAggregateRoot:    m.root(),
		Reference:            m.Reference,
		Type:                 m.Type,
		AccountID:            m.AccountID,
		ProductCode:          m.ProductCode,
		AccountType:          m.AccountType,
		CustomerID:           m.CustomerID,
		CustomerBranchID:     m.CustomerBranchID,
		DestinationAccountID: m.DestinationAccountID,
		BranchID:             m.BranchID,
		TellerID:             m.TellerID,
		UserID:               m.UserID,
		AccountingDate:       m.AccountingDate.UTC(),
		Amount:               m.Amount,
		Fee:                  m.Fee,
		FeeInclusive:         m.FeeInclusive,
		InterBranch:          m.InterBranch,
		Denominations:        m.Denominations,
		Warnings:             m.Warnings,
	}
}

// CashTransactionModelFromDomain creates a persistence model from the domain aggregate.
func CashTransactionModelFromDomain(t *cash.CashTransaction) *CashTransactionModel {
	m := &CashTransactionModel{
		Reference:            t.Reference,
		Type:                 t.Type,
		AccountID:            t.AccountID,
		ProductCode:          t.ProductCode,
		AccountType:          t.AccountType,
		CustomerID:           t.CustomerID,
		CustomerBranchID:     t.CustomerBranchID,
		DestinationAccountID: t.DestinationAccountID,
		BranchID:             t.BranchID,
		TellerID:             t.TellerID,
		UserID:               t.UserID,
		AccountingDate:       t.AccountingDate,
		Amount:               t.Amount,
		Fee:                  t.Fee,
		FeeInclusive:         t.FeeInclusive,
		InterBranch:          t.InterBranch,
		Denominations:        t.Denominations,
		Warnings:             t.Warnings,
	}
	m.fromRoot(t.BaseAggregateRoot)
	return m
}

// DenominationRecordModel is the persistence model for one materialized denomination row.
type DenominationRecordModel struct {
	ID         uuid.UUID       `gorm:"type:uuid;primary_key"`
	Reference  string          `gorm:"type:varchar(60);not null;index"`
	FaceValue  int64           `gorm:"not null"`
	Count      int64           `gorm:"not null"`
	LineTotal  decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	GrandTotal decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	CreatedAt  time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (DenominationRecordModel) TableName() string {
	return "denomination_records"
}

// ToDomain converts the persistence model to a domain DenominationRecord.
func (m *DenominationRecordModel) ToDomain() cash.DenominationRecord {
	return cash.DenominationRecord{
		ID:         m.ID,
		Reference:  m.Reference,
		FaceValue:  m.FaceValue,
		Count:      m.Count,
		LineTotal:  m.LineTotal,
		GrandTotal: m.GrandTotal,
		CreatedAt:  m.CreatedAt,
	}
}

// DenominationRecordModelFromDomain creates a persistence model from the domain record.
func DenominationRecordModelFromDomain(r cash.DenominationRecord) DenominationRecordModel {
	return DenominationRecordModel{
		ID:         r.ID,
		Reference:  r.Reference,
		FaceValue:  r.FaceValue,
		Count:      r.Count,
		LineTotal:  r.LineTotal,
		GrandTotal: r.GrandTotal,
		CreatedAt:  r.CreatedAt,
	}
}

// TellerOperationModel is the persistence model for a custody transfer audit row.
type TellerOperationModel struct {
	ID                     uuid.UUID            `gorm:"type:uuid;primary_key"`
	Reference              string               `gorm:"type:varchar(60);not null;uniqueIndex"`
	OperationType          string               `gorm:"type:varchar(30);not null"`
	BranchID               uuid.UUID            `gorm:"type:uuid;not null;index"`
	SourceCustodianID      uuid.UUID            `gorm:"type:uuid;not null"`
	DestinationCustodianID uuid.UUID            `gorm:"type:uuid;not null"`
	Amount                 decimal.Decimal      `gorm:"type:decimal(18,4);not null"`
	Denominations          cash.DenominationSet `gorm:"type:jsonb"`
	OperatorID             uuid.UUID            `gorm:"type:uuid"`
	AccountingDate         time.Time            `gorm:"type:date;not null"`
	CreatedAt              time.Time            `gorm:"not null"`
}

// TableName returns the table name for GORM
func (TellerOperationModel) TableName() string {
	return "teller_operations"
}

// ToDomain converts the persistence model to a domain TellerOperation.
func (m *TellerOperationModel) ToDomain() *cash.TellerOperation {
	return &cash.TellerOperation{
		ID:                     m.ID,
		Reference:              m.Reference,
		OperationType:          m.OperationType,
		BranchID:               m.BranchID,
		SourceCustodianID:      m.SourceCustodianID,
		DestinationCustodianID: m.DestinationCustodianID,
		Amount:                 m.Amount,
		Denominations:          m.Denominations,
		OperatorID:             m.OperatorID,
		AccountingDate:         m.AccountingDate.UTC(),
		CreatedAt:              m.CreatedAt,
	}
}

// TellerOperationModelFromDomain creates a persistence model from the domain record.
func TellerOperationModelFromDomain(op *cash.TellerOperation) *TellerOperationModel {
	return &TellerOperationModel{
		ID:                     op.ID,
		Reference:              op.Reference,
		OperationType:          op.OperationType,
		BranchID:               op.BranchID,
		SourceCustodianID:      op.SourceCustodianID,
		DestinationCustodianID: op.DestinationCustodianID,
		Amount:                 op.Amount,
		Denominations:          op.Denominations,
		OperatorID:             op.OperatorID,
		AccountingDate:         op.AccountingDate,
		CreatedAt:              op.CreatedAt,
	}
}
