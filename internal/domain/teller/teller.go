package teller

import (
	"time"

	"github.com/corebank/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Teller is a physical till of a branch
type Teller struct {
	shared.BaseAggregateRoot
	BranchID  uuid.UUID
	Code      string
	Name      string
	IsPrimary bool
	Lifecycle shared.Lifecycle
}

// NewTeller creates a till
func NewTeller(branchID uuid.UUID, code, name string, isPrimary bool) (*Teller, error) {
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}
	if code == "" {
		return nil, shared.NewDomainError("INVALID_TELLER_CODE", "Teller code cannot be empty")
	}
	if len(code) > 30 {
		return nil, shared.NewDomainError("INVALID_TELLER_CODE", "Teller code cannot exceed 30 characters")
	}
	return &Teller{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BranchID:          branchID,
		Code:              code,
		Name:              name,
		IsPrimary:         isPrimary,
		Lifecycle:         shared.LifecycleActive,
	}, nil
}

// Deactivate retires the till
func (t *Teller) Deactivate() {
	t.Lifecycle = shared.LifecycleDeleted
	t.Touch(time.Now())
}
