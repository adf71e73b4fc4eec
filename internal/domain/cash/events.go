package cash

import (
	"time"

	"github.com/corebank/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventTypeCashTransactionCompleted is published after a till operation commits
const EventTypeCashTransactionCompleted = "CashTransactionCompleted"

// CashTransactionCompletedEvent is raised when a withdrawal, deposit or transfer commits
type CashTransactionCompletedEvent struct {
	shared.BaseDomainEvent
	Reference      string          `json:"reference"`
	Type           TransactionType `json:"transaction_type"`
	CustomerID     uuid.UUID       `json:"customer_id"`
	AccountID      uuid.UUID       `json:"account_id"`
	Amount         decimal.Decimal `json:"amount"`
	Fee            decimal.Decimal `json:"fee"`
	AccountingDate time.Time       `json:"accounting_date"`
}

// EventType returns the event type name
func (e *CashTransactionCompletedEvent) EventType() string {
	return EventTypeCashTransactionCompleted
}

// NewCashTransactionCompletedEvent creates a new CashTransactionCompletedEvent
func NewCashTransactionCompletedEvent(t *CashTransaction) *CashTransactionCompletedEvent {
	return &CashTransactionCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCashTransactionCompleted, "CashTransaction", t.ID, t.BranchID),
		Reference:       t.Reference,
		Type:            t.Type,
		CustomerID:      t.CustomerID,
		AccountID:       t.AccountID,
		Amount:          t.Amount,
		Fee:             t.Fee,
		AccountingDate:  t.AccountingDate,
	}
}
