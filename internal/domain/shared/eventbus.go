package shared

import "context"

// EventPublisher publishes domain events after the owning transaction commits.
// Publishing is best effort; ledger state never depends on delivery.
type EventPublisher interface {
	// Publish publishes one or more domain events
	Publish(ctx context.Context, events ...DomainEvent) error
}

// EventHandler processes domain events delivered by a bus
type EventHandler interface {
	// Handle processes a single event
	Handle(ctx context.Context, event DomainEvent) error

	// EventTypes returns the event types this handler subscribes to.
	// An empty slice means the handler receives every event.
	EventTypes() []string
}

// EventBus is an EventPublisher that also dispatches to subscribed handlers
type EventBus interface {
	EventPublisher

	// Subscribe registers a handler, optionally overriding its event types
	Subscribe(handler EventHandler, eventTypes ...string)

	// Unsubscribe removes a handler
	Unsubscribe(handler EventHandler)
}
