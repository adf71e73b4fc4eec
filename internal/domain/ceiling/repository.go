package ceiling

import (
	"context"

	"github.com/corebank/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository persists cash ceiling requests
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Request, error)
	// FindPending returns nil, nil when no pending request exists
	FindPending(ctx context.Context, tellerID uuid.UUID, reqType RequestType) (*Request, error)
	List(ctx context.Context, branchID uuid.UUID, status Status, filter shared.Filter) ([]Request, int64, error)
	Save(ctx context.Context, r *Request) error
	SaveWithLock(ctx context.Context, r *Request) error
}
