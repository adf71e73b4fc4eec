package event

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/corebank/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InMemoryEventBus delivers events to handlers on background goroutines.
// Publish never waits for handlers and never reports their errors, so a
// failing side effect cannot undo the operation that raised the event.
type InMemoryEventBus struct {
	registry       *HandlerRegistry
	logger         *zap.Logger
	handlerTimeout time.Duration
	stopped        atomic.Bool
	wg             sync.WaitGroup
}

// NewInMemoryEventBus creates a bus. Each delivery gets handlerTimeout.
func NewInMemoryEventBus(logger *zap.Logger, handlerTimeout time.Duration) *InMemoryEventBus {
	if handlerTimeout <= 0 {
		handlerTimeout = 30 * time.Second
	}
	return &InMemoryEventBus{
		registry:       NewHandlerRegistry(),
		logger:         logger.Named("eventbus"),
		handlerTimeout: handlerTimeout,
	}
}

// Publish schedules delivery of every event to its handlers
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if b.stopped.Load() {
		b.logger.Warn("event bus stopped, dropping events", zap.Int("count", len(events)))
		return nil
	}
	for _, ev := range events {
		for _, h := range b.registry.Handlers(ev.EventType()) {
			b.wg.Add(1)
			go b.deliver(context.WithoutCancel(ctx), h, ev)
		}
	}
	return nil
}

// Subscribe registers handler for eventTypes, defaulting to its own list
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed", zap.Strings("event_types", eventTypes))
}

// Unsubscribe removes a handler
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
}

// Start implements shared.EventBus
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.stopped.Store(false)
	b.logger.Info("event bus started")
	return nil
}

// Stop refuses new events and waits for in-flight deliveries or ctx
func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.stopped.Store(true)
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		b.logger.Info("event bus stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *InMemoryEventBus) deliver(ctx context.Context, h shared.EventHandler, ev shared.DomainEvent) {
	defer b.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panicked",
				zap.String("event_type", ev.EventType()),
				zap.String("event_id", ev.EventID().String()),
				zap.Any("panic", r),
			)
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, b.handlerTimeout)
	defer cancel()
	if err := h.Handle(ctx, ev); err != nil {
		b.logger.Error("handler failed to process event",
			zap.String("event_type", ev.EventType()),
			zap.String("event_id", ev.EventID().String()),
			zap.Error(err),
		)
	}
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
