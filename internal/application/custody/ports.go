// Package custody holds the ports shared by the cash custody services:
// repository bundle, transaction scope, key locking and the external
// directory and notification collaborators.
package custody

import (
	"context"

	"github.com/corebank/backend/internal/domain/accountingday"
	"github.com/corebank/backend/internal/domain/cash"
	"github.com/corebank/backend/internal/domain/ceiling"
	"github.com/corebank/backend/internal/domain/posting"
	"github.com/corebank/backend/internal/domain/shared"
	"github.com/corebank/backend/internal/domain/teller"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Repositories gives access to every repository, either on the root
// connection or scoped to a transaction.
type Repositories interface {
	Days() accountingday.Repository
	Tellers() teller.TellerRepository
	Assignments() teller.AssignmentRepository
	Custodians() cash.CustodianAccountRepository
	Provisioning() cash.ProvisioningHistoryRepository
	Transactions() cash.CashTransactionRepository
	Denominations() cash.DenominationRecordRepository
	TellerOperations() cash.TellerOperationRepository
	Ceilings() ceiling.Repository
	Batches() posting.BatchRepository
	Schemes() posting.SchemeRepository
}

// TransactionScope runs fn atomically. Returning an error rolls back
// every write made through repos.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos Repositories) error) error
}

// Customer is the view of a bank customer the core needs
type Customer struct {
	ID       uuid.UUID
	Name     string
	BranchID uuid.UUID
	Phone    string
	Language string
}

// Branch is the view of a branch the core needs
type Branch struct {
	ID   uuid.UUID
	Name string
	Code string
}

var (
	ErrCustomerNotFound = shared.NewKindError(shared.KindNotFound, "CUSTOMER_NOT_FOUND", "Customer not found")
	ErrBranchNotFound   = shared.NewKindError(shared.KindNotFound, "BRANCH_NOT_FOUND", "Branch not found")
)

// CustomerDirectory looks customers up
type CustomerDirectory interface {
	GetCustomerByID(ctx context.Context, id uuid.UUID) (*Customer, error)
}

// BranchDirectory looks branches up
type BranchDirectory interface {
	GetBranchByID(ctx context.Context, id uuid.UUID) (*Branch, error)
	GetBranches(ctx context.Context) ([]Branch, error)
}

// Notifier delivers a message to a customer. Callers never fail on its errors.
type Notifier interface {
	SendNotification(ctx context.Context, customerID uuid.UUID, title, message string) error
}

// Metrics receives business counters
type Metrics interface {
	RecordCashTransaction(ctx context.Context, txType string, amount decimal.Decimal)
	RecordPostingWarnings(ctx context.Context, source string, count int)
	RecordCeilingDecision(ctx context.Context, reqType, status string)
	RecordDayTransition(ctx context.Context, action string, succeeded, failed int)
}

// NoopMetrics discards everything
type NoopMetrics struct{}

func (NoopMetrics) RecordCashTransaction(context.Context, string, decimal.Decimal) {}
func (NoopMetrics) RecordPostingWarnings(context.Context, string, int) {}
func (NoopMetrics) RecordCeilingDecision(context.Context, string, string) {}
func (NoopMetrics) RecordDayTransition(context.Context, string, int, int) {}
