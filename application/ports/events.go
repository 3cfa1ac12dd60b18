package ports

import (
	"context"

	"stackecho/domain/events"
)

// EventPublisher forwards domain events outside the process
type EventPublisher interface {
	Publish(ctx context.Context, event events.DomainEvent) error
}

// EventHandler handles a dispatched domain event
type EventHandler interface {
	Handle(ctx context.Context, event events.DomainEvent) error
}

// EventHandlerFunc adapts a function to EventHandler
type EventHandlerFunc func(ctx context.Context, event events.DomainEvent) error

// Handle calls f(ctx, event)
func (f EventHandlerFunc) Handle(ctx context.Context, event events.DomainEvent) error {
	return f(ctx, event)
}
