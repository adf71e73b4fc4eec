package cash

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TellerOperation is the audit record of cash changing custodian
type TellerOperation struct {
	ID                     uuid.UUID
	Reference              string
	OperationType          string
	BranchID               uuid.UUID
	SourceCustodianID      uuid.UUID
	DestinationCustodianID uuid.UUID
	Amount                 decimal.Decimal
	Denominations          DenominationSet
	OperatorID             uuid.UUID
	AccountingDate         time.Time
	CreatedAt              time.Time
}

// NewTellerOperation creates the audit record for a custody transfer
func NewTellerOperation(reference, opType string, branchID, source, destination uuid.UUID, amount decimal.Decimal, set DenominationSet, operator uuid.UUID, date time.Time) *TellerOperation {
	return &TellerOperation{
		ID:                     uuid.New(),
		Reference:              reference,
		OperationType:          opType,
		BranchID:               branchID,
		SourceCustodianID:      source,
		DestinationCustodianID: destination,
		Amount:                 amount,
		Denominations:          set.Clone(),
		OperatorID:             operator,
		AccountingDate:         date,
		CreatedAt:              time.Now(),
	}
}
