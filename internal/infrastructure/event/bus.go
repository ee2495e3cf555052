package event

import (
	"context"

	"github.com/franchise/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// InMemoryEventBus dispatches ledger events to in-process subscribers.
// Delivery is best effort: a failing handler is logged and skipped, it
// never fails the publish.
type InMemoryEventBus struct {
	registry *HandlerRegistry
	logger   *zap.Logger
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)

func NewInMemoryEventBus(logger *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{
		registry: NewHandlerRegistry(),
		logger:   logger,
	}
}

// Publish delivers each event synchronously to every handler registered
// for its type, in registration order.
func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	for _, event := range events {
		b.publishOne(ctx, event)
	}
	return nil
}

func (b *InMemoryEventBus) publishOne(ctx context.Context, event shared.DomainEvent) {
	for _, handler := range b.registry.HandlersFor(event.EventType()) {
		if err := b.dispatch(ctx, handler, event); err != nil {
			b.logger.Error("handler failed to process event",
				zap.String("event_type", event.EventType()),
				zap.String("event_id", event.EventID().String()),
				zap.String("aggregate_id", event.AggregateID().String()),
				zap.Error(err),
			)
		}
	}
}

// Subscribe registers a handler. When no event types are given the handler's
// own EventTypes are used; an empty list there subscribes it to everything.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	b.registry.Register(handler, eventTypes...)
	b.logger.Debug("handler subscribed",
		zap.Strings("event_types", eventTypes),
	)
}

// Unsubscribe removes a handler from all event types.
func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.registry.Unregister(handler)
	b.logger.Debug("handler unsubscribed")
}

// Start marks the bus as running. Dispatch is synchronous, so there is no
// background work to launch.
func (b *InMemoryEventBus) Start(ctx context.Context) error {
	b.logger.Info("event bus started")
	return nil
}

func (b *InMemoryEventBus) Stop(ctx context.Context) error {
	b.logger.Info("event bus stopped")
	return nil
}

// dispatch shields the bus from a panicking handler.
func (b *InMemoryEventBus) dispatch(ctx context.Context, handler shared.EventHandler, event shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("handler panicked",
				zap.String("event_type", event.EventType()),
				zap.Any("panic", r),
			)
		}
	}()

	return handler.Handle(ctx, event)
}
