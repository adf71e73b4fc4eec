package directory

import (
	"context"

	"github.com/corebank/backend/internal/application/custody"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LogNotifier hands customer notices to the log stream, where the
// messaging gateway collects them
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a new LogNotifier
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.Named("notifier")}
}

// SendNotification implements custody.Notifier
func (n *LogNotifier) SendNotification(ctx context.Context, customerID uuid.UUID, title, message string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.logger.Info("customer notification",
		zap.String("customer_id", customerID.String()),
		zap.String("title", title),
		zap.String("message", message),
	)
	return nil
}

var _ custody.Notifier = (*LogNotifier)(nil)
