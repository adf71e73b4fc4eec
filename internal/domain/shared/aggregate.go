package shared

import "time"

// BaseAggregateRoot is embedded by custody aggregates. Version backs the
// optimistic lock checked by SaveWithLock repositories: a save matches the
// stored row at Version-1.
type BaseAggregateRoot struct {
	BaseEntity
	Version      int
	domainEvents []DomainEvent
}

// NewBaseAggregateRoot returns a root at version 1
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

// Touch records a mutation at the given instant and moves the version on
func (a *BaseAggregateRoot) Touch(at time.Time) {
	a.UpdatedAt = at
	a.Version++
}

// AddDomainEvent queues an event until the owning service publishes it
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent {
	return a.domainEvents
}

func (a *BaseAggregateRoot) ClearDomainEvents() {
	a.domainEvents = nil
}
