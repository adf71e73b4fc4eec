package teller

import (
	"time"

	"github.com/corebank/backend/internal/domain/shared"
	"github.com/google/uuid"
)

var (
	ErrAlreadyActive                  = shared.NewKindError(shared.KindConflict, "ASSIGNMENT_ALREADY_ACTIVE", "User is already assigned to this teller")
	ErrPrimaryAlreadyAssigned         = shared.NewKindError(shared.KindConflict, "PRIMARY_ALREADY_ASSIGNED", "Branch already has an active primary teller")
	ErrTellerAlreadyAssigned          = shared.NewKindError(shared.KindConflict, "TELLER_ALREADY_ASSIGNED", "Teller is already assigned to another user")
	ErrUserAlreadyHasSubTeller        = shared.NewKindError(shared.KindForbidden, "USER_ALREADY_HAS_SUB_TELLER", "User already holds an active sub-teller")
	ErrCrossBranchSubTellerNotAllowed = shared.NewKindError(shared.KindForbidden, "CROSS_BRANCH_SUB_TELLER_NOT_ALLOWED", "Sub-teller must belong to the user's own branch")
	ErrAssignmentNotActive            = shared.NewKindError(shared.KindConflict, "ASSIGNMENT_NOT_ACTIVE", "Assignment has already ended")
	ErrTellerNotFound                 = shared.NewKindError(shared.KindNotFound, "TELLER_NOT_FOUND", "Teller not found")
	ErrAssignmentNotFound             = shared.NewKindError(shared.KindNotFound, "ASSIGNMENT_NOT_FOUND", "Teller assignment not found")
	ErrNoActiveTeller                 = shared.NewKindError(shared.KindNotFound, "NO_ACTIVE_TELLER", "No active teller assignment")
)

// Assignment binds a user to a till for a working session (a daily teller)
type Assignment struct {
	shared.BaseAggregateRoot
	UserID     uuid.UUID
	BranchID   uuid.UUID
	TellerID   uuid.UUID
	IsPrimary  bool
	AssignedAt time.Time
	AssignedBy uuid.UUID
	EndedAt    *time.Time
	EndedBy    *uuid.UUID
	Lifecycle  shared.Lifecycle
}

// IsActive reports whether the session is still running
func (a *Assignment) IsActive() bool {
	return a.Lifecycle.IsActive()
}

// End soft-deletes the assignment. Provisioning history is not touched.
func (a *Assignment) End(by uuid.UUID) error {
	if !a.IsActive() {
		return ErrAssignmentNotActive
	}
	now := time.Now()
	a.Lifecycle = shared.LifecycleDeleted
	a.EndedAt = &now
	a.EndedBy = &by
	a.Touch(now)
	return nil
}

// AssignRequest is the input of the assignment policy
type AssignRequest struct {
	UserID       uuid.UUID
	UserBranchID uuid.UUID
	BranchID     uuid.UUID
	TellerID     uuid.UUID
	IsPrimary    bool
	AssignedBy   uuid.UUID
}

// ActiveState is the set of live assignments the policy checks against.
// Nil fields mean no such assignment exists.
type ActiveState struct {
	// UserOnTeller is the user's active assignment on the requested teller
	UserOnTeller *Assignment
	// BranchPrimary is the branch's active primary assignment
	BranchPrimary *Assignment
	// TellerHolder is any active assignment on the requested teller
	TellerHolder *Assignment
	// UserSub is the user's active sub-teller assignment in the branch
	UserSub *Assignment
}

// Assign applies the assignment rules in order and returns the new
// assignment. A teller flagged primary always yields a primary assignment.
func Assign(req AssignRequest, t *Teller, state ActiveState) (*Assignment, error) {
	if req.UserID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_USER", "User ID cannot be empty")
	}
	if t == nil || !t.Lifecycle.IsActive() {
		return nil, ErrTellerNotFound
	}
	if t.BranchID != req.BranchID {
		return nil, shared.NewDomainError("TELLER_BRANCH_MISMATCH", "Teller does not belong to the requested branch")
	}

	primary := req.IsPrimary || t.IsPrimary

	if state.UserOnTeller != nil {
		return nil, ErrAlreadyActive
	}
	if primary && state.BranchPrimary != nil {
		return nil, ErrPrimaryAlreadyAssigned
	}
	if state.TellerHolder != nil && state.TellerHolder.UserID != req.UserID {
		return nil, ErrTellerAlreadyAssigned
	}
	if !primary && state.UserSub != nil {
		return nil, ErrUserAlreadyHasSubTeller
	}
	if !primary && req.UserBranchID != req.BranchID {
		return nil, ErrCrossBranchSubTellerNotAllowed
	}

	now := time.Now()
	a := &Assignment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		UserID:            req.UserID,
		BranchID:          req.BranchID,
		TellerID:          req.TellerID,
		IsPrimary:         primary,
		AssignedAt:        now,
		AssignedBy:        req.AssignedBy,
		Lifecycle:         shared.LifecycleActive,
	}
	return a, nil
}
