package models

import (
	"github.com/corebank/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BranchModel is the read model of the branch directory.
type BranchModel struct {
	BaseModel
	Code      string           `gorm:"type:varchar(20);not null;uniqueIndex"`
	Name      string           `gorm:"type:varchar(100);not null"`
	Lifecycle shared.Lifecycle `gorm:"type:varchar(20);not null;default:'ACTIVE'"`
}

// TableName returns the table name for GORM
func (BranchModel) TableName() string {
	return "branches"
}

// CustomerModel is the read model of the customer directory.
type CustomerModel struct {
	BaseModel
	Name     string    `gorm:"type:varchar(200);not null"`
	BranchID uuid.UUID `gorm:"type:uuid;not null;index"`
	Phone    string    `gorm:"type:varchar(30)"`
	Language string    `gorm:"type:varchar(10);not null;default:'en'"`
}

// TableName returns the table name for GORM
func (CustomerModel) TableName() string {
	return "customers"
}
