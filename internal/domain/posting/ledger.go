package posting

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// JournalLine is a resolved debit or credit line
type JournalLine struct {
	Reference string
	Account   string
	Key       EventKey
	Debit     decimal.Decimal
	Credit    decimal.Decimal
	Narration string
}

// Verification is the outcome of checking a batch. Warnings never undo
// the cash movement that produced the batch.
type Verification struct {
	Reference   string
	Lines       []JournalLine
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	Warnings    []string
}

// Balanced reports whether the batch passed every check
func (v Verification) Balanced() bool {
	return len(v.Warnings) == 0
}

// Ledger expands batches into journal lines and checks them
type Ledger struct {
	rules *RuleTable
}

// NewLedger creates a ledger over the rule table
func NewLedger(rules *RuleTable) *Ledger {
	return &Ledger{rules: rules}
}

// Verify resolves every leg, then checks that debits equal credits and
// that principal and commission legs reconcile with the stated amounts.
func (l *Ledger) Verify(b *Batch) Verification {
	v := Verification{
		Reference:   b.Reference,
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}
	for _, leg := range b.Legs {
		rule, ok := l.rules.Resolve(leg.Key)
		if !ok {
			v.Warnings = append(v.Warnings, fmt.Sprintf("no account rule for %s", leg.Key.Code()))
			continue
		}
		if rule.Debit != "" {
			v.Lines = append(v.Lines, JournalLine{
				Reference: b.Reference, Account: rule.Debit, Key: leg.Key,
				Debit: leg.Amount, Credit: decimal.Zero, Narration: leg.Narration,
			})
			v.TotalDebit = v.TotalDebit.Add(leg.Amount)
		}
		if rule.Credit != "" {
			v.Lines = append(v.Lines, JournalLine{
				Reference: b.Reference, Account: rule.Credit, Key: leg.Key,
				Debit: decimal.Zero, Credit: leg.Amount, Narration: leg.Narration,
			})
			v.TotalCredit = v.TotalCredit.Add(leg.Amount)
		}
	}
	if !v.TotalDebit.Equal(v.TotalCredit) {
		v.Warnings = append(v.Warnings, fmt.Sprintf("batch %s unbalanced: debit %s, credit %s",
			b.Reference, v.TotalDebit.String(), v.TotalCredit.String()))
	}
	if got, want := b.PrincipalTotal(), b.ExpectedPrincipal(); !got.Equal(want) {
		v.Warnings = append(v.Warnings, fmt.Sprintf("batch %s principal %s does not match stated %s",
			b.Reference, got.String(), want.String()))
	}
	if got := b.CommissionTotal(); !got.Equal(b.StatedFee) {
		v.Warnings = append(v.Warnings, fmt.Sprintf("batch %s commissions %s do not match stated fee %s",
			b.Reference, got.String(), b.StatedFee.String()))
	}
	return v
}
