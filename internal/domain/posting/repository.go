package posting

import (
	"context"

	"github.com/google/uuid"
)

// BatchRepository persists posting batches and their legs
type BatchRepository interface {
	SaveBatch(ctx context.Context, batch *Batch) error
	FindByReference(ctx context.Context, reference string) (*Batch, error)
	// RecordVerification stores the ledger's verdict on a committed batch
	RecordVerification(ctx context.Context, reference string, warnings []string) error
}

// SchemeRepository persists commission schemes
type SchemeRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*CommissionScheme, error)
	FindByCode(ctx context.Context, code string) (*CommissionScheme, error)
	List(ctx context.Context) ([]CommissionScheme, error)
	Save(ctx context.Context, scheme *CommissionScheme) error
}
