package teller

import (
	"context"

	"github.com/google/uuid"
)

// TellerRepository persists tills
type TellerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Teller, error)
	FindByBranch(ctx context.Context, branchID uuid.UUID) ([]Teller, error)
	Save(ctx context.Context, t *Teller) error
}

// AssignmentRepository persists daily teller assignments. Finders return
// only active assignments and nil, nil when nothing matches.
type AssignmentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Assignment, error)
	FindActiveByUserAndTeller(ctx context.Context, userID, tellerID uuid.UUID) (*Assignment, error)
	FindActivePrimary(ctx context.Context, branchID uuid.UUID) (*Assignment, error)
	FindActiveByTeller(ctx context.Context, tellerID uuid.UUID) (*Assignment, error)
	FindActiveSub(ctx context.Context, userID, branchID uuid.UUID) (*Assignment, error)
	// FindActiveForUser returns the user's assignment in the branch, sub first
	FindActiveForUser(ctx context.Context, userID, branchID uuid.UUID) (*Assignment, error)
	Save(ctx context.Context, a *Assignment) error
}
