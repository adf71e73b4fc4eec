package cash

import "github.com/corebank/backend/internal/domain/shared"

var (
	ErrDenominationMismatch        = shared.NewKindError(shared.KindBadRequest, "DENOMINATION_MISMATCH", "Denomination breakdown does not match the amount")
	ErrInvalidAmount               = shared.NewKindError(shared.KindBadRequest, "INVALID_AMOUNT", "Amount must be a positive whole number of currency units")
	ErrDenominationCountOutOfRange = shared.NewKindError(shared.KindBadRequest, "DENOMINATION_COUNT_OUT_OF_RANGE", "Denomination count is out of range")
	ErrUnknownFaceValue            = shared.NewKindError(shared.KindBadRequest, "UNKNOWN_FACE_VALUE", "Denomination face value is not in the configured table")
	ErrInsufficientFunds           = shared.NewKindError(shared.KindBadRequest, "INSUFFICIENT_FUNDS", "Custodian balance is lower than the requested amount")
	ErrInsufficientCashAtHand      = shared.NewKindError(shared.KindBadRequest, "INSUFFICIENT_CASH_AT_HAND", "Cash at hand cannot cover the requested denominations")
	ErrBalanceIntegrityViolation   = shared.NewKindError(shared.KindInternal, "BALANCE_INTEGRITY_VIOLATION", "Custodian balance diverges from its provisioning history")
	ErrNoProvisioningHistory       = shared.NewKindError(shared.KindNotFound, "NO_PROVISIONING_HISTORY", "No provisioning history for custodian")
	ErrProvisioningFrozen          = shared.NewKindError(shared.KindForbidden, "PROVISIONING_FROZEN", "Provisioning history is frozen for the accounting day")
	ErrCustodianNotFound           = shared.NewKindError(shared.KindNotFound, "CUSTODIAN_NOT_FOUND", "Custodian account not found")
	ErrOptimisticLock              = shared.NewKindError(shared.KindConflict, "OPTIMISTIC_LOCK_FAILED", "Record was modified by another process")
)
