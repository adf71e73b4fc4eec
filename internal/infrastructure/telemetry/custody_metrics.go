package telemetry

import (
	"context"
	"errors"

	"github.com/corebank/backend/internal/application/custody"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
)

// ErrMeterNil is returned when no meter is supplied
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// CustodyMetrics records the business counters of the custody services
type CustodyMetrics struct {
	cashTransactions *Counter
	cashVolume       *Counter
	postingWarnings  *Counter
	ceilingDecisions *Counter
	dayTransitions   *Counter
}

// NewCustodyMetrics creates the instruments on meter
func NewCustodyMetrics(meter metric.Meter) (*CustodyMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	b := NewInstruments(meter)
	m := &CustodyMetrics{
		cashTransactions: b.Counter("cash_transactions_total",
			"Completed till operations by type", "{transaction}"),
		cashVolume: b.Counter("cash_volume_units_total",
			"Cash amount moved by till operations, in currency units", "{unit}"),
		postingWarnings: b.Counter("posting_warnings_total",
			"Reconciliation warnings raised by batch verification", "{warning}"),
		ceilingDecisions: b.Counter("cash_ceiling_decisions_total",
			"Approved and rejected cash ceiling requests", "{request}"),
		dayTransitions: b.Counter("accounting_day_transitions_total",
			"Per branch accounting day transitions by outcome", "{branch}"),
	}
	if err := b.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// RecordCashTransaction counts a committed till operation
func (m *CustodyMetrics) RecordCashTransaction(ctx context.Context, txType string, amount decimal.Decimal) {
	m.cashTransactions.Inc(ctx, AttrTxType.String(txType))
	m.cashVolume.Add(ctx, amount.IntPart(), AttrTxType.String(txType))
}

// RecordPostingWarnings counts warnings attached to a batch
func (m *CustodyMetrics) RecordPostingWarnings(ctx context.Context, source string, count int) {
	if count <= 0 {
		return
	}
	m.postingWarnings.Add(ctx, int64(count), AttrPostingSource.String(source))
}

// RecordCeilingDecision counts an approval or rejection
func (m *CustodyMetrics) RecordCeilingDecision(ctx context.Context, reqType, status string) {
	m.ceilingDecisions.Inc(ctx, AttrRequestType.String(reqType), AttrDecision.String(status))
}

// RecordDayTransition counts the branch outcomes of an open, close or reopen
func (m *CustodyMetrics) RecordDayTransition(ctx context.Context, action string, succeeded, failed int) {
	if succeeded > 0 {
		m.dayTransitions.Add(ctx, int64(succeeded), AttrDayAction.String(action), AttrOutcome.String("success"))
	}
	if failed > 0 {
		m.dayTransitions.Add(ctx, int64(failed), AttrDayAction.String(action), AttrOutcome.String("failure"))
	}
}

var _ custody.Metrics = (*CustodyMetrics)(nil)
