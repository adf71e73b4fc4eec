package accountingday

import (
	"fmt"
	"time"

	"github.com/corebank/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// CentralisedSystemName labels days that are not bound to a resolvable branch
const CentralisedSystemName = "Centralised System"

// Status represents the state of an accounting day
type Status string

const (
	StatusOpen   Status = "OPEN"
	StatusClosed Status = "CLOSED"
)

var (
	ErrAlreadyOpen          = shared.NewKindError(shared.KindConflict, "ACCOUNTING_DAY_ALREADY_OPEN", "Accounting day is already open")
	ErrAlreadyClosed        = shared.NewKindError(shared.KindConflict, "ACCOUNTING_DAY_ALREADY_CLOSED", "Accounting day was already closed, reopen it instead")
	ErrNotOpen              = shared.NewKindError(shared.KindConflict, "ACCOUNTING_DAY_NOT_OPEN", "Accounting day is not open")
	ErrNotClosed            = shared.NewKindError(shared.KindForbidden, "ACCOUNTING_DAY_NOT_CLOSED", "Only a closed accounting day can be reopened")
	ErrPreviousDayStillOpen = shared.NewKindError(shared.KindConflict, "PREVIOUS_DAY_STILL_OPEN", "Another accounting day is still open for the branch")
	ErrNoOpenDay            = shared.NewKindError(shared.KindForbidden, "NO_OPEN_ACCOUNTING_DAY", "No accounting day is open for the branch")
	ErrDayNotFound          = shared.NewKindError(shared.KindNotFound, "ACCOUNTING_DAY_NOT_FOUND", "Accounting day not found")
)

// AccountingDay is the logical business date of one branch, or of the
// whole institution when BranchID is nil.
type AccountingDay struct {
	shared.BaseAggregateRoot
	Date          time.Time
	BranchID      *uuid.UUID
	IsCentralized bool
	Status        Status
	OpenedAt      time.Time
	OpenedBy      uuid.UUID
	ClosedAt      *time.Time
	ClosedBy      *uuid.UUID
	ReopenedAt    *time.Time
	ReopenedBy    *uuid.UUID
	ReopenCount   int
	Note          string
	Lifecycle     shared.Lifecycle
}

// Open creates an open accounting day
func Open(date time.Time, branchID *uuid.UUID, centralized bool, openedBy uuid.UUID, note string) (*AccountingDay, error) {
	if date.IsZero() {
		return nil, shared.NewDomainError("INVALID_DATE", "Accounting date is required")
	}
	if branchID != nil && *branchID == uuid.Nil {
		branchID = nil
	}
	if branchID == nil && !centralized {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch is required unless the day is centralized")
	}
	now := time.Now()
	d := &AccountingDay{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Date:              shared.DateOnly(date),
		BranchID:          branchID,
		IsCentralized:     centralized,
		Status:            StatusOpen,
		OpenedAt:          now,
		OpenedBy:          openedBy,
		Note:              note,
		Lifecycle:         shared.LifecycleActive,
	}
	d.AddDomainEvent(newDayEvent(EventTypeOpened, d))
	return d, nil
}

// IsOpen reports whether postings may target this day
func (d *AccountingDay) IsOpen() bool {
	return d.Status == StatusOpen && d.Lifecycle.IsActive()
}

// BranchKey returns the branch id, uuid.Nil for centralized days
func (d *AccountingDay) BranchKey() uuid.UUID {
	if d.BranchID == nil {
		return uuid.Nil
	}
	return *d.BranchID
}

// Close records the closer and stops postings for the day
func (d *AccountingDay) Close(closedBy uuid.UUID, note string) error {
	if !d.IsOpen() {
		return ErrNotOpen.WithMessage(fmt.Sprintf("Accounting day %s is not open", d.Date.Format(shared.DateLayout)))
	}
	now := time.Now()
	d.Status = StatusClosed
	d.ClosedAt = &now
	d.ClosedBy = &closedBy
	if note != "" {
		d.Note = note
	}
	d.Touch(now)
	d.AddDomainEvent(newDayEvent(EventTypeClosed, d))
	return nil
}

// Reopen moves a closed day back to open
func (d *AccountingDay) Reopen(reopenedBy uuid.UUID, note string) error {
	if d.Status != StatusClosed || !d.Lifecycle.IsActive() {
		return ErrNotClosed.WithMessage(fmt.Sprintf("Accounting day %s is %s, only a closed day can be reopened",
			d.Date.Format(shared.DateLayout), d.Status))
	}
	now := time.Now()
	d.Status = StatusOpen
	d.ReopenedAt = &now
	d.ReopenedBy = &reopenedBy
	d.ReopenCount++
	if note != "" {
		d.Note = note
	}
	d.Touch(now)
	d.AddDomainEvent(newDayEvent(EventTypeReopened, d))
	return nil
}

// Delete is the administrative cleanup path
func (d *AccountingDay) Delete() {
	d.Lifecycle = shared.LifecycleDeleted
	d.Touch(time.Now())
}
