package posting

import (
	"fmt"
	"time"

	"github.com/corebank/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Direction tells which way cash flows at the till
type Direction string

const (
	DirectionIn       Direction = "IN"
	DirectionOut      Direction = "OUT"
	DirectionInternal Direction = "INTERNAL"
)

var ErrCommissionMismatch = shared.NewKindError(shared.KindBadRequest, "COMMISSION_MISMATCH", "Commission parts do not add up to the fee")

// Operation is a completed business operation to post
type Operation struct {
	Reference          string
	Direction          Direction
	Name               string
	Subject            string
	PrincipalAttribute Attribute
	AccountType        string
	Amount             decimal.Decimal
	Fee                decimal.Decimal
	FeeInclusive       bool
	InterBranch        bool
	Commission         Split
	BranchID           uuid.UUID
	AccountingDate     time.Time
}

// Leg is one side of the batch, resolved to accounts through its key
type Leg struct {
	ID                      uuid.UUID
	BatchReference          string
	Key                     EventKey
	Amount                  decimal.Decimal
	IsPrincipal             bool
	IsInterBranchCommission bool
	Narration               string
	BranchID                uuid.UUID
	AccountingDate          time.Time
	CreatedAt               time.Time
}

// Batch is the full leg set for one transaction reference
type Batch struct {
	Reference    string
	StatedAmount decimal.Decimal
	StatedFee    decimal.Decimal
	FeeInclusive bool
	Legs         []Leg
}

// PrincipalTotal sums the principal legs
func (b *Batch) PrincipalTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range b.Legs {
		if l.IsPrincipal {
			total = total.Add(l.Amount)
		}
	}
	return total
}

// CommissionTotal sums the commission legs
func (b *Batch) CommissionTotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range b.Legs {
		if !l.IsPrincipal {
			total = total.Add(l.Amount)
		}
	}
	return total
}

// ExpectedPrincipal is the principal the stated amounts call for
func (b *Batch) ExpectedPrincipal() decimal.Decimal {
	if b.FeeInclusive {
		return b.StatedAmount.Add(b.StatedFee)
	}
	return b.StatedAmount
}

// Engine turns operations into leg batches
type Engine struct{}

// NewEngine creates a posting engine
func NewEngine() *Engine {
	return &Engine{}
}

// Build emits the principal leg followed by one leg per non-zero
// commission part. Inter-branch operations use the inter-branch
// attributes; local ones fold both branch shares into one branch leg.
func (e *Engine) Build(op Operation) (*Batch, error) {
	if op.Reference == "" {
		return nil, shared.NewDomainError("INVALID_REFERENCE", "Posting reference is required")
	}
	if op.Subject == "" {
		return nil, shared.NewDomainError("INVALID_SUBJECT", "Product or account identifier is required")
	}
	if !op.PrincipalAttribute.IsPrincipal() {
		return nil, ErrUnknownAttribute.WithMessage(fmt.Sprintf("%q is not a principal attribute", op.PrincipalAttribute))
	}
	if !op.Amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Posting amount must be positive")
	}
	if op.Fee.IsNegative() {
		return nil, shared.NewDomainError("INVALID_FEE", "Fee cannot be negative")
	}
	if total := op.Commission.Total(); !total.Equal(op.Fee) {
		return nil, ErrCommissionMismatch.WithMessage(fmt.Sprintf(
			"Commission parts total %s but fee is %s", total.String(), op.Fee.String()))
	}

	batch := &Batch{
		Reference:    op.Reference,
		StatedAmount: op.Amount,
		StatedFee:    op.Fee,
		FeeInclusive: op.FeeInclusive,
	}

	principal := op.Amount
	if op.FeeInclusive {
		principal = principal.Add(op.Fee)
	}
	batch.Legs = append(batch.Legs, e.leg(op, op.PrincipalAttribute, principal))

	type part struct {
		attr   Attribute
		amount decimal.Decimal
	}
	var parts []part
	c := op.Commission
	if op.InterBranch {
		parts = []part{
			{SourceBranchCommission, c.SourceBranch},
			{DestinationBranchCommission, c.DestinationBranch},
			{InterBranchHeadOfficeCommission, c.HeadOffice},
			{InterBranchPartnerOneCommission, c.PartnerOne},
			{InterBranchPartnerTwoCommission, c.PartnerTwo},
		}
	} else {
		parts = []part{
			{BranchCommission, c.SourceBranch.Add(c.DestinationBranch)},
			{HeadOfficeCommission, c.HeadOffice},
			{PartnerOneCommission, c.PartnerOne},
			{PartnerTwoCommission, c.PartnerTwo},
		}
	}
	for _, p := range parts {
		if p.amount.IsZero() {
			continue
		}
		batch.Legs = append(batch.Legs, e.leg(op, p.attr, p.amount))
	}
	return batch, nil
}

func (e *Engine) leg(op Operation, attr Attribute, amount decimal.Decimal) Leg {
	return Leg{
		ID:                      uuid.New(),
		BatchReference:          op.Reference,
		Key:                     EventKey{Subject: op.Subject, Attribute: attr},
		Amount:                  amount,
		IsPrincipal:             attr.IsPrincipal(),
		IsInterBranchCommission: attr.IsInterBranch(),
		Narration:               Narration(op.Direction, op.Name, op.AccountType, amount, op.Reference),
		BranchID:                op.BranchID,
		AccountingDate:          op.AccountingDate,
		CreatedAt:               time.Now(),
	}
}

// Narration renders the reconciliation text carried by every leg
func Narration(direction Direction, operation, accountType string, amount decimal.Decimal, reference string) string {
	return fmt.Sprintf("%s-%s | Account: %s | Amount: %s | Reference: %s",
		direction, operation, accountType, amount.String(), reference)
}
