package cash

import (
	"fmt"
	"time"

	"github.com/corebank/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProvisioningStatus is the state of a day's inventory record
type ProvisioningStatus string

const (
	ProvisioningOpen   ProvisioningStatus = "OPEN"
	ProvisioningFrozen ProvisioningStatus = "FROZEN"
)

// ProvisioningHistory is the per-custodian, per-day cash inventory broken
// down by denomination. Kind distinguishes the primary, sub and vault variants.
type ProvisioningHistory struct {
	shared.BaseAggregateRoot
	Kind           CustodianKind
	CustodianID    uuid.UUID
	BranchID       uuid.UUID
	AccountingDate time.Time
	OpeningCounts  DenominationSet
	Counts         DenominationSet
	CashInTotal    decimal.Decimal
	CashOutTotal   decimal.Decimal
	Status         ProvisioningStatus
	FrozenAt       *time.Time
}

// NewProvisioningHistory starts the inventory of a custodian for a day
func NewProvisioningHistory(kind CustodianKind, custodianID, branchID uuid.UUID, date time.Time, opening DenominationSet) (*ProvisioningHistory, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_CUSTODIAN_KIND", fmt.Sprintf("Unknown custodian kind %q", kind))
	}
	if custodianID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTODIAN", "Custodian ID cannot be empty")
	}
	if date.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Accounting date is required")
	}
	if err := opening.CheckCounts(); err != nil {
		return nil, err
	}
	return &ProvisioningHistory{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Kind:              kind,
		CustodianID:       custodianID,
		BranchID:          branchID,
		AccountingDate:    shared.DateOnly(date),
		OpeningCounts:     opening.Clone(),
		Counts:            opening.Clone(),
		CashInTotal:       decimal.Zero,
		CashOutTotal:      decimal.Zero,
		Status:            ProvisioningOpen,
	}, nil
}

// CarryForward opens the next day's record from the closing counts of h
func (h *ProvisioningHistory) CarryForward(date time.Time) (*ProvisioningHistory, error) {
	return NewProvisioningHistory(h.Kind, h.CustodianID, h.BranchID, date, h.Counts)
}

// Total returns the cash at hand
func (h *ProvisioningHistory) Total() decimal.Decimal {
	return h.Counts.Total()
}

// IsOpen reports whether the record still accepts movements
func (h *ProvisioningHistory) IsOpen() bool {
	return h.Status == ProvisioningOpen
}

// CashIn adds the supplied notes/coins to the inventory
func (h *ProvisioningHistory) CashIn(amount decimal.Decimal, set DenominationSet) error {
	if err := h.checkMovement(amount, set); err != nil {
		return err
	}
	counts, err := h.Counts.Add(set)
	if err != nil {
		return err
	}
	h.Counts = counts
	h.CashInTotal = h.CashInTotal.Add(amount)
	h.touch()
	return nil
}

// CashOut removes the supplied notes/coins. Coverage is checked per
// denomination, so a correct total with an unavailable mix is refused.
func (h *ProvisioningHistory) CashOut(amount decimal.Decimal, set DenominationSet) error {
	if err := h.checkMovement(amount, set); err != nil {
		return err
	}
	remaining, err := h.Counts.Sub(set)
	if err != nil {
		return ErrInsufficientCashAtHand.WithMessage(fmt.Sprintf(
			"Custodian %s cannot pay out the requested denominations", h.CustodianID))
	}
	h.Counts = remaining
	h.CashOutTotal = h.CashOutTotal.Add(amount)
	h.touch()
	return nil
}

// Freeze closes the record at day close
func (h *ProvisioningHistory) Freeze() error {
	if h.Status == ProvisioningFrozen {
		return nil
	}
	now := time.Now()
	h.Status = ProvisioningFrozen
	h.FrozenAt = &now
	h.touch()
	return nil
}

// Thaw reopens a frozen record when its accounting day is reopened
func (h *ProvisioningHistory) Thaw() {
	if h.Status == ProvisioningOpen {
		return
	}
	h.Status = ProvisioningOpen
	h.FrozenAt = nil
	h.touch()
}

func (h *ProvisioningHistory) checkMovement(amount decimal.Decimal, set DenominationSet) error {
	if !h.IsOpen() {
		return ErrProvisioningFrozen
	}
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if err := set.CheckCounts(); err != nil {
		return err
	}
	if total := set.Total(); !total.Equal(amount) {
		return ErrDenominationMismatch.WithMessage(
			fmt.Sprintf("Denominations total %s but amount is %s", total.String(), amount.String()))
	}
	return nil
}

func (h *ProvisioningHistory) touch() {
	h.Touch(time.Now())
}
