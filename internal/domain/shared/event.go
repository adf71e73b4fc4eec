package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact recorded by a custody aggregate. Events carry the
// branch they happened in so subscribers can route them per branch;
// centralized events carry uuid.Nil.
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	OccurredAt() time.Time
	AggregateID() uuid.UUID
	AggregateType() string
	BranchID() uuid.UUID
}

// AggregateRef names the aggregate an event belongs to
type AggregateRef struct {
	Type string    `json:"type"`
	ID   uuid.UUID `json:"id"`
}

// BaseDomainEvent is embedded by concrete events to satisfy DomainEvent
type BaseDomainEvent struct {
	ID        uuid.UUID    `json:"id"`
	Type      string       `json:"type"`
	At        time.Time    `json:"occurred_at"`
	Aggregate AggregateRef `json:"aggregate"`
	Branch    uuid.UUID    `json:"branch_id"`
}

// NewBaseDomainEvent stamps a new event of eventType for the aggregate
func NewBaseDomainEvent(eventType, aggType string, aggID, branchID uuid.UUID) BaseDomainEvent {
	return BaseDomainEvent{
		ID:        uuid.New(),
		Type:      eventType,
		At:        time.Now(),
		Aggregate: AggregateRef{Type: aggType, ID: aggID},
		Branch:    branchID,
	}
}

func (e *BaseDomainEvent) EventID() uuid.UUID     { return e.ID }
func (e *BaseDomainEvent) EventType() string      { return e.Type }
func (e *BaseDomainEvent) OccurredAt() time.Time  { return e.At }
func (e *BaseDomainEvent) AggregateID() uuid.UUID { return e.Aggregate.ID }
func (e *BaseDomainEvent) AggregateType() string  { return e.Aggregate.Type }
func (e *BaseDomainEvent) BranchID() uuid.UUID    { return e.Branch }
