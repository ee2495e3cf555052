package event

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/franchise/backend/internal/domain/billing"
	"github.com/franchise/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testEvent implements DomainEvent for testing
type testEvent struct {
	shared.BaseDomainEvent
	Data string `json:"data"`
}

func newTestEvent(eventType string) *testEvent {
	return &testEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, "Invoice", uuid.New()),
		Data:            "test data",
	}
}

// testHandler implements EventHandler for testing
type testHandler struct {
	eventTypes []string
	handled    []shared.DomainEvent
	err        error
	mu         sync.Mutex
}

func newTestHandler(eventTypes ...string) *testHandler {
	return &testHandler{
		eventTypes: eventTypes,
		handled:    make([]shared.DomainEvent, 0),
	}
}

func (h *testHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.handled = append(h.handled, event)
	return h.err
}

func (h *testHandler) EventTypes() []string {
	return h.eventTypes
}

func (h *testHandler) setError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.err = err
}

func (h *testHandler) getHandled() []shared.DomainEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]shared.DomainEvent(nil), h.handled...)
}

// panicHandler blows up on every event.
type panicHandler struct{}

func (panicHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	panic("handler exploded")
}

func (panicHandler) EventTypes() []string { return nil }

func newBus() *InMemoryEventBus {
	return NewInMemoryEventBus(zap.NewNop())
}

func TestInMemoryEventBus_Publish(t *testing.T) {
	bus := newBus()

	handler := newTestHandler(billing.EventTypeInvoiceGenerated)
	bus.Subscribe(handler, billing.EventTypeInvoiceGenerated)

	event := newTestEvent(billing.EventTypeInvoiceGenerated)
	err := bus.Publish(context.Background(), event)

	require.NoError(t, err)
	assert.Len(t, handler.getHandled(), 1)
	assert.Equal(t, event, handler.getHandled()[0])
}

func TestInMemoryEventBus_Publish_MultipleEvents(t *testing.T) {
	bus := newBus()

	handler := newTestHandler(billing.EventTypeInvoicePaid)
	bus.Subscribe(handler, billing.EventTypeInvoicePaid)

	event1 := newTestEvent(billing.EventTypeInvoicePaid)
	event2 := newTestEvent(billing.EventTypeInvoicePaid)
	err := bus.Publish(context.Background(), event1, event2)

	require.NoError(t, err)
	assert.Len(t, handler.getHandled(), 2)
}

func TestInMemoryEventBus_Publish_MultipleHandlers(t *testing.T) {
	bus := newBus()

	handler1 := newTestHandler(billing.EventTypeCreditGranted)
	handler2 := newTestHandler(billing.EventTypeCreditGranted)
	bus.Subscribe(handler1, billing.EventTypeCreditGranted)
	bus.Subscribe(handler2, billing.EventTypeCreditGranted)

	event := newTestEvent(billing.EventTypeCreditGranted)
	err := bus.Publish(context.Background(), event)

	require.NoError(t, err)
	assert.Len(t, handler1.getHandled(), 1)
	assert.Len(t, handler2.getHandled(), 1)
}

func TestInMemoryEventBus_Publish_WildcardHandler(t *testing.T) {
	bus := newBus()

	wildcardHandler := newTestHandler() // No event types = wildcard
	bus.Subscribe(wildcardHandler)

	event := newTestEvent(billing.EventTypeCreditDepleted)
	err := bus.Publish(context.Background(), event)

	require.NoError(t, err)
	assert.Len(t, wildcardHandler.getHandled(), 1)
}

func TestInMemoryEventBus_Publish_PanickingHandler(t *testing.T) {
	bus := newBus()

	bus.Subscribe(panicHandler{}, billing.EventTypeInvoicePaid)
	survivor := newTestHandler(billing.EventTypeInvoicePaid)
	bus.Subscribe(survivor, billing.EventTypeInvoicePaid)

	err := bus.Publish(context.Background(), newTestEvent(billing.EventTypeInvoicePaid))

	// The panic is recovered and the remaining handlers still run.
	require.NoError(t, err)
	assert.Len(t, survivor.getHandled(), 1)
}

func TestInMemoryEventBus_Publish_HandlerError(t *testing.T) {
	bus := newBus()

	handler1 := newTestHandler(billing.EventTypeInvoicePaid)
	handler1.setError(errors.New("handler error"))
	handler2 := newTestHandler(billing.EventTypeInvoicePaid)
	bus.Subscribe(handler1, billing.EventTypeInvoicePaid)
	bus.Subscribe(handler2, billing.EventTypeInvoicePaid)

	event := newTestEvent(billing.EventTypeInvoicePaid)
	err := bus.Publish(context.Background(), event)

	// Should not return error, but continue with other handlers
	require.NoError(t, err)
	assert.Len(t, handler1.getHandled(), 1)
	assert.Len(t, handler2.getHandled(), 1)
}

func TestInMemoryEventBus_Publish_NoMatchingHandlers(t *testing.T) {
	bus := newBus()

	handler := newTestHandler(billing.EventTypeCreditRevoked)
	bus.Subscribe(handler, billing.EventTypeCreditRevoked)

	event := newTestEvent(billing.EventTypeInvoiceGenerated)
	err := bus.Publish(context.Background(), event)

	require.NoError(t, err)
	assert.Len(t, handler.getHandled(), 0)
}

func TestInMemoryEventBus_Unsubscribe(t *testing.T) {
	bus := newBus()

	handler := newTestHandler(billing.EventTypeInvoicePaid)
	bus.Subscribe(handler, billing.EventTypeInvoicePaid)

	event1 := newTestEvent(billing.EventTypeInvoicePaid)
	_ = bus.Publish(context.Background(), event1)
	assert.Len(t, handler.getHandled(), 1)

	bus.Unsubscribe(handler)

	event2 := newTestEvent(billing.EventTypeInvoicePaid)
	_ = bus.Publish(context.Background(), event2)
	assert.Len(t, handler.getHandled(), 1) // Still 1, not 2
}

func TestInMemoryEventBus_StartStop(t *testing.T) {
	bus := newBus()

	ctx := context.Background()
	err := bus.Start(ctx)
	require.NoError(t, err)

	// Can still publish after start
	handler := newTestHandler(billing.EventTypeInvoicePaid)
	bus.Subscribe(handler, billing.EventTypeInvoicePaid)
	event := newTestEvent(billing.EventTypeInvoicePaid)
	err = bus.Publish(ctx, event)
	require.NoError(t, err)
	assert.Len(t, handler.getHandled(), 1)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	err = bus.Stop(ctx)
	require.NoError(t, err)
}

func TestLedgerAuditHandler(t *testing.T) {
	bus := NewInMemoryEventBus(zap.NewNop())
	bus.Subscribe(NewLedgerAuditHandler(zap.NewNop()))

	err := bus.Publish(context.Background(), newTestEvent(billing.EventTypeCreditConsumed))
	require.NoError(t, err)
}
