package ceiling

import (
	"github.com/corebank/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EventTypeApproved is published when cash has changed custodian
const EventTypeApproved = "CashCeilingApproved"

// ApprovedEvent is raised when a ceiling request is approved
type ApprovedEvent struct {
	shared.BaseDomainEvent
	Reference   string          `json:"reference"`
	RequestType RequestType     `json:"request_type"`
	TellerID    uuid.UUID       `json:"teller_id"`
	Amount      decimal.Decimal `json:"amount"`
}

// EventType returns the event type name
func (e *ApprovedEvent) EventType() string {
	return EventTypeApproved
}

// NewApprovedEvent creates a new ApprovedEvent
func NewApprovedEvent(r *Request) *ApprovedEvent {
	return &ApprovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeApproved, "CashCeilingRequest", r.ID, r.BranchID),
		Reference:       r.Reference,
		RequestType:     r.Type,
		TellerID:        r.TellerID,
		Amount:          r.Amount,
	}
}
