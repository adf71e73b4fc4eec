package ceiling

import (
	"time"

	"github.com/corebank/backend/internal/domain/cash"
	"github.com/corebank/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RequestType is the direction of the movement
type RequestType string

const (
	SubToPrimary   RequestType = "SUB_TO_PRIMARY"
	PrimaryToVault RequestType = "PRIMARY_TO_VAULT"
)

// IsValid checks if the request type is known
func (t RequestType) IsValid() bool {
	return t == SubToPrimary || t == PrimaryToVault
}

// Status represents the approval status of a request
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

var (
	ErrDuplicatePendingRequest = shared.NewKindError(shared.KindConflict, "DUPLICATE_PENDING_REQUEST", "A pending request already exists for this teller and direction")
	ErrAlreadyValidated        = shared.NewKindError(shared.KindForbidden, "ALREADY_VALIDATED", "Request has already been approved")
	ErrAlreadyRejected         = shared.NewKindError(shared.KindForbidden, "ALREADY_REJECTED", "Request has already been rejected")
	ErrRequestNotFound         = shared.NewKindError(shared.KindNotFound, "CEILING_REQUEST_NOT_FOUND", "Cash ceiling request not found")
	ErrNoDestination           = shared.NewKindError(shared.KindNotFound, "NO_DESTINATION_CUSTODIAN", "No custodian can receive the cash")
)

// Request moves cash from a sub-teller to the primary teller, or from the
// primary teller to the vault, once approved.
type Request struct {
	shared.BaseAggregateRoot
	Reference              string
	TellerID               uuid.UUID
	BranchID               uuid.UUID
	Type                   RequestType
	Amount                 decimal.Decimal
	Denominations          cash.DenominationSet
	Status                 Status
	Note                   string
	RequestedBy            uuid.UUID
	RequestedAt            time.Time
	DestinationCustodianID *uuid.UUID
	ValidatedBy            *uuid.UUID
	ValidatedAt            *time.Time
	RejectedBy             *uuid.UUID
	RejectedAt             *time.Time
	RejectReason           string
}

// NewRequest creates a pending request. Denominations are validated by the
// caller against the configured ledger.
func NewRequest(tellerID, branchID uuid.UUID, reqType RequestType, amount decimal.Decimal, set cash.DenominationSet, requestedBy uuid.UUID, note string) (*Request, error) {
	if tellerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TELLER", "Teller ID cannot be empty")
	}
	if !reqType.IsValid() {
		return nil, shared.NewDomainError("INVALID_REQUEST_TYPE", "Request type must be SUB_TO_PRIMARY or PRIMARY_TO_VAULT")
	}
	if !amount.IsPositive() {
		return nil, cash.ErrInvalidAmount
	}
	now := time.Now()
	r := &Request{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		TellerID:          tellerID,
		BranchID:          branchID,
		Type:              reqType,
		Amount:            amount,
		Denominations:     set.Clone(),
		Status:            StatusPending,
		Note:              note,
		RequestedBy:       requestedBy,
		RequestedAt:       now,
	}
	r.Reference = cash.NewReference("CC", r.ID, now)
	return r, nil
}

// Approve marks the request approved. The custody transfer itself is
// carried out by the application service in the same unit of work.
func (r *Request) Approve(by, destination uuid.UUID) error {
	switch r.Status {
	case StatusApproved:
		return ErrAlreadyValidated
	case StatusRejected:
		return ErrAlreadyRejected
	}
	now := time.Now()
	r.Status = StatusApproved
	r.ValidatedBy = &by
	r.ValidatedAt = &now
	r.DestinationCustodianID = &destination
	r.Touch(now)
	r.AddDomainEvent(NewApprovedEvent(r))
	return nil
}

// Reject closes the request without moving cash
func (r *Request) Reject(by uuid.UUID, reason string) error {
	switch r.Status {
	case StatusApproved:
		return ErrAlreadyValidated
	case StatusRejected:
		return ErrAlreadyRejected
	}
	now := time.Now()
	r.Status = StatusRejected
	r.RejectedBy = &by
	r.RejectedAt = &now
	r.RejectReason = reason
	r.Touch(now)
	return nil
}

// CheckPending fails when the request is no longer pending
func (r *Request) CheckPending() error {
	switch r.Status {
	case StatusApproved:
		return ErrAlreadyValidated
	case StatusRejected:
		return ErrAlreadyRejected
	}
	return nil
}
