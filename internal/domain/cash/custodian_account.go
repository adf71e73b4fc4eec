package cash

import (
	"fmt"
	"time"

	"github.com/corebank/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustodianKind identifies who holds the cash
type CustodianKind string

const (
	CustodianPrimaryTeller CustodianKind = "PRIMARY_TELLER"
	CustodianSubTeller     CustodianKind = "SUB_TELLER"
	CustodianVault         CustodianKind = "VAULT"
)

// IsValid checks if the kind is known
func (k CustodianKind) IsValid() bool {
	switch k {
	case CustodianPrimaryTeller, CustodianSubTeller, CustodianVault:
		return true
	}
	return false
}

// CustodianAccount is the cash position of a teller till or a vault
type CustodianAccount struct {
	shared.BaseAggregateRoot
	BranchID        uuid.UUID
	Kind            CustodianKind
	CustodianID     uuid.UUID
	Balance         decimal.Decimal
	PreviousBalance decimal.Decimal
	OpeningDayID    *uuid.UUID
}

// NewCustodianAccount creates an account with an opening balance
func NewCustodianAccount(branchID uuid.UUID, kind CustodianKind, custodianID uuid.UUID, opening decimal.Decimal) (*CustodianAccount, error) {
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if custodianID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTODIAN", "Custodian ID cannot be empty")
	}
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_CUSTODIAN_KIND", fmt.Sprintf("Unknown custodian kind %q", kind))
	}
	if opening.IsNegative() {
		return nil, ErrInvalidAmount
	}
	return &CustodianAccount{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BranchID:          branchID,
		Kind:              kind,
		CustodianID:       custodianID,
		Balance:           opening,
		PreviousBalance:   decimal.Zero,
	}, nil
}

// Debit removes amount from the balance. The balance is left untouched
// when it cannot cover the amount.
func (a *CustodianAccount) Debit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if a.Balance.LessThan(amount) {
		return ErrInsufficientFunds.WithMessage(fmt.Sprintf(
			"Custodian %s holds %s, cannot debit %s", a.CustodianID, a.Balance.String(), amount.String()))
	}
	a.apply(a.Balance.Sub(amount))
	return nil
}

// Credit adds amount to the balance
func (a *CustodianAccount) Credit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	a.apply(a.Balance.Add(amount))
	return nil
}

func (a *CustodianAccount) apply(newBalance decimal.Decimal) {
	a.PreviousBalance = a.Balance
	a.Balance = newBalance
	a.Touch(time.Now())
}

// AttachDay records the accounting day the position was opened for
func (a *CustodianAccount) AttachDay(dayID uuid.UUID) {
	a.OpeningDayID = &dayID
	a.Touch(time.Now())
}

// VerifyIntegrity compares the balance with the cash the provisioning
// history says the custodian holds.
func (a *CustodianAccount) VerifyIntegrity(history *ProvisioningHistory) error {
	if history == nil {
		return ErrNoProvisioningHistory
	}
	if history.CustodianID != a.CustodianID {
		return ErrBalanceIntegrityViolation.WithMessage("Provisioning history belongs to another custodian")
	}
	if expected := history.Total(); !expected.Equal(a.Balance) {
		return ErrBalanceIntegrityViolation.WithMessage(fmt.Sprintf(
			"Custodian %s balance %s differs from cash at hand %s", a.CustodianID, a.Balance.String(), expected.String()))
	}
	return nil
}
