package cashops

import (
	"context"
	"errors"

	"github.com/corebank/backend/internal/application/custody"
	"github.com/corebank/backend/internal/domain/cash"
	"github.com/corebank/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// NotificationHandler tells the customer about a completed operation.
// Delivery problems are logged and never reach the operation.
type NotificationHandler struct {
	customers custody.CustomerDirectory
	notifier  custody.Notifier
	logger    *zap.Logger
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(customers custody.CustomerDirectory, notifier custody.Notifier, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{customers: customers, notifier: notifier, logger: logger}
}

// EventTypes implements shared.EventHandler
func (h *NotificationHandler) EventTypes() []string {
	return []string{cash.EventTypeCashTransactionCompleted}
}

// Handle implements shared.EventHandler
func (h *NotificationHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	e, ok := event.(*cash.CashTransactionCompletedEvent)
	if !ok {
		return errors.New("unexpected event payload for cash transaction notification")
	}
	lang := language.English
	if c, err := h.customers.GetCustomerByID(ctx, e.CustomerID); err == nil && c.Language != "" {
		if tag, err := language.Parse(c.Language); err == nil {
			lang = tag
		}
	}
	title, body := RenderNotification(lang, e)
	if err := h.notifier.SendNotification(ctx, e.CustomerID, title, body); err != nil {
		h.logger.Warn("customer notification failed",
			zap.String("reference", e.Reference),
			zap.String("customer_id", e.CustomerID.String()),
			zap.Error(err),
		)
	}
	return nil
}

var operationNames = map[cash.TransactionType]string{
	cash.TransactionWithdrawal: "cash withdrawal",
	cash.TransactionDeposit:    "cash deposit",
	cash.TransactionTransfer:   "transfer",
}

// RenderNotification formats the title and body of a completion notice
// with the number grouping of lang
func RenderNotification(lang language.Tag, e *cash.CashTransactionCompletedEvent) (string, string) {
	name, ok := operationNames[e.Type]
	if !ok {
		name = string(e.Type)
	}
	p := message.NewPrinter(lang)
	title := cases.Title(lang).String(name)
	body := p.Sprintf("Your %s of %d was completed on %s. Fee: %d. Reference: %s",
		name, units(e.Amount), e.AccountingDate.Format(shared.DateLayout), units(e.Fee), e.Reference)
	return title, body
}

func units(d decimal.Decimal) int64 {
	return d.IntPart()
}
