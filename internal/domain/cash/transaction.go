package cash

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/corebank/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionType is the customer facing operation
type TransactionType string

const (
	TransactionWithdrawal TransactionType = "WITHDRAWAL"
	TransactionDeposit    TransactionType = "DEPOSIT"
	TransactionTransfer   TransactionType = "TRANSFER"
)

// MovesCash reports whether the operation touches a till
func (t TransactionType) MovesCash() bool {
	return t == TransactionWithdrawal || t == TransactionDeposit
}

// Warnings is a JSON encoded list of reconciliation notes
type Warnings []string

// Value implements driver.Valuer
func (w Warnings) Value() (driver.Value, error) {
	if w == nil {
		return "[]", nil
	}
	b, err := json.Marshal(w)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner
func (w *Warnings) Scan(value interface{}) error {
	if value == nil {
		*w = Warnings{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("failed to scan Warnings: unsupported type")
	}
	return json.Unmarshal(data, w)
}

// CashTransaction is a completed customer operation at a till
type CashTransaction struct {
	shared.BaseAggregateRoot
	Reference            string
	Type                 TransactionType
	AccountID            uuid.UUID
	ProductCode          string
	AccountType          string
	CustomerID           uuid.UUID
	CustomerBranchID     uuid.UUID
	DestinationAccountID *uuid.UUID
	BranchID             uuid.UUID
	TellerID             uuid.UUID
	UserID               uuid.UUID
	AccountingDate       time.Time
	Amount               decimal.Decimal
	Fee                  decimal.Decimal
	FeeInclusive         bool
	InterBranch          bool
	Denominations        DenominationSet
	Warnings             Warnings
}

// NewCashTransactionInput groups the fields needed to record an operation
type NewCashTransactionInput struct {
	Type                 TransactionType
	AccountID            uuid.UUID
	ProductCode          string
	AccountType          string
	CustomerID           uuid.UUID
	CustomerBranchID     uuid.UUID
	DestinationAccountID *uuid.UUID
	BranchID             uuid.UUID
	TellerID             uuid.UUID
	UserID               uuid.UUID
	AccountingDate       time.Time
	Amount               decimal.Decimal
	Fee                  decimal.Decimal
	FeeInclusive         bool
	Denominations        DenominationSet
}

// NewCashTransaction records an operation. The reference is derived from
// the type and the generated id.
func NewCashTransaction(in NewCashTransactionInput) (*CashTransaction, error) {
	if in.AccountID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACCOUNT", "Account ID cannot be empty")
	}
	if in.ProductCode == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product code is required")
	}
	if !in.Amount.IsPositive() {
		return nil, ErrInvalidAmount
	}
	if in.Fee.IsNegative() {
		return nil, shared.NewDomainError("INVALID_FEE", "Fee cannot be negative")
	}
	if in.AccountingDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Accounting date is required")
	}
	if in.Type == TransactionTransfer {
		if in.DestinationAccountID == nil || *in.DestinationAccountID == uuid.Nil {
			return nil, shared.NewDomainError("INVALID_DESTINATION", "Transfer needs a destination account")
		}
		if *in.DestinationAccountID == in.AccountID {
			return nil, shared.NewDomainError("INVALID_DESTINATION", "Cannot transfer to the same account")
		}
	}
	tx := &CashTransaction{
		BaseAggregateRoot:    shared.NewBaseAggregateRoot(),
		Type:                 in.Type,
		AccountID:            in.AccountID,
		ProductCode:          in.ProductCode,
		AccountType:          in.AccountType,
		CustomerID:           in.CustomerID,
		CustomerBranchID:     in.CustomerBranchID,
		DestinationAccountID: in.DestinationAccountID,
		BranchID:             in.BranchID,
		TellerID:             in.TellerID,
		UserID:               in.UserID,
		AccountingDate:       shared.DateOnly(in.AccountingDate),
		Amount:               in.Amount,
		Fee:                  in.Fee,
		FeeInclusive:         in.FeeInclusive,
		InterBranch:          in.CustomerBranchID != uuid.Nil && in.CustomerBranchID != in.BranchID,
		Denominations:        in.Denominations.Clone(),
		Warnings:             Warnings{},
	}
	tx.Reference = NewReference(string(in.Type), tx.ID, tx.AccountingDate)
	return tx, nil
}

// AddWarnings attaches posting reconciliation notes
func (t *CashTransaction) AddWarnings(w ...string) {
	if len(w) == 0 {
		return
	}
	t.Warnings = append(t.Warnings, w...)
	t.UpdatedAt = time.Now()
}

// Complete raises the completion event consumed by notifications
func (t *CashTransaction) Complete() {
	t.AddDomainEvent(NewCashTransactionCompletedEvent(t))
}

// NewReference builds a human readable transaction reference
func NewReference(prefix string, id uuid.UUID, date time.Time) string {
	short := id.String()[:8]
	return fmt.Sprintf("%s-%s-%s", prefix, date.Format("20060102"), short)
}
