package custody

import (
	"context"

	"github.com/corebank/backend/internal/domain/posting"
	"go.uber.org/zap"
)

// VerifyPosting checks a committed batch against the chart and stores the
// verdict. The cash movement behind the batch is never undone; a failure
// here is logged and surfaced as warnings only.
func VerifyPosting(
	ctx context.Context,
	batches posting.BatchRepository,
	journal *posting.Ledger,
	batch *posting.Batch,
	source string,
	metrics Metrics,
	logger *zap.Logger,
) []string {
	v := journal.Verify(batch)
	if err := batches.RecordVerification(ctx, batch.Reference, v.Warnings); err != nil {
		logger.Error("failed to record posting verification",
			zap.String("reference", batch.Reference), zap.Error(err))
	}
	if !v.Balanced() {
		metrics.RecordPostingWarnings(ctx, source, len(v.Warnings))
		logger.Warn("posting batch did not reconcile",
			zap.String("reference", batch.Reference),
			zap.Strings("warnings", v.Warnings),
		)
	}
	return v.Warnings
}
