package cash

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// CustodianAccountRepository persists custodian cash positions
type CustodianAccountRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CustodianAccount, error)
	// FindByCustodian returns the account held by a teller or vault
	FindByCustodian(ctx context.Context, custodianID uuid.UUID) (*CustodianAccount, error)
	FindByBranch(ctx context.Context, branchID uuid.UUID) ([]CustodianAccount, error)
	Save(ctx context.Context, account *CustodianAccount) error
	// SaveWithLock persists only if nobody saved a newer version meanwhile
	SaveWithLock(ctx context.Context, account *CustodianAccount) error
}

// ProvisioningHistoryRepository persists the per-day denomination inventory
type ProvisioningHistoryRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*ProvisioningHistory, error)
	// FindLastUpdated returns the current state of a custodian's inventory
	FindLastUpdated(ctx context.Context, custodianID uuid.UUID) (*ProvisioningHistory, error)
	FindByBranchAndDate(ctx context.Context, branchID uuid.UUID, date time.Time, status ProvisioningStatus) ([]ProvisioningHistory, error)
	Save(ctx context.Context, history *ProvisioningHistory) error
	SaveWithLock(ctx context.Context, history *ProvisioningHistory) error
}

// CashTransactionRepository persists completed till operations
type CashTransactionRepository interface {
	FindByReference(ctx context.Context, reference string) (*CashTransaction, error)
	Save(ctx context.Context, tx *CashTransaction) error
	UpdateWarnings(ctx context.Context, id uuid.UUID, warnings Warnings) error
}

// DenominationRecordRepository persists materialized denomination rows
type DenominationRecordRepository interface {
	SaveAll(ctx context.Context, records []DenominationRecord) error
	FindByReference(ctx context.Context, reference string) ([]DenominationRecord, error)
}

// TellerOperationRepository persists custody transfer audit rows
type TellerOperationRepository interface {
	Save(ctx context.Context, op *TellerOperation) error
	FindByReference(ctx context.Context, reference string) (*TellerOperation, error)
}
