package accountingday

import (
	"time"

	"github.com/corebank/backend/internal/domain/shared"
)

const (
	EventTypeOpened   = "AccountingDayOpened"
	EventTypeClosed   = "AccountingDayClosed"
	EventTypeReopened = "AccountingDayReopened"
)

// DayEvent is raised on every accounting day transition
type DayEvent struct {
	shared.BaseDomainEvent
	Date          time.Time `json:"date"`
	Status        Status    `json:"status"`
	IsCentralized bool      `json:"is_centralized"`
}

func newDayEvent(eventType string, d *AccountingDay) *DayEvent {
	return &DayEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "AccountingDay", d.ID, d.BranchKey()),
		Date:            d.Date,
		Status:          d.Status,
		IsCentralized:   d.IsCentralized,
	}
}
