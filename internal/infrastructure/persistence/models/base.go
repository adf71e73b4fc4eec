package models

import (
	"time"

	"github.com/corebank/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BaseModel is the id and audit columns shared by every custody table
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// AggregateModel adds the version column read by the SaveWithLock
// repositories' compare-and-set updates
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

func (m *AggregateModel) fromRoot(a shared.BaseAggregateRoot) {
	m.ID, m.CreatedAt, m.UpdatedAt = a.ID, a.CreatedAt, a.UpdatedAt
	m.Version = a.Version
}

func (m *AggregateModel) root() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{
		BaseEntity: shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		Version:    m.Version,
	}
}
