// Package messaging fans domain events out to local handlers off the
// request path.
package messaging

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"stackecho/application/ports"
	"stackecho/domain/events"
)

// AllEvents registers a handler for every event type.
const AllEvents = "*"

// ErrQueueFull is returned when the dispatcher cannot accept more events.
var ErrQueueFull = errors.New("event queue full")

// ErrClosed is returned after the dispatcher stopped.
var ErrClosed = errors.New("event dispatcher closed")

// Dispatcher queues events and delivers them to registered handlers on a
// single worker, in enqueue order.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]ports.EventHandler

	queue   chan events.DomainEvent
	timeout time.Duration
	logger  *zap.Logger

	closeOnce sync.Once
	closed    chan struct{}
}

// NewDispatcher creates a dispatcher with a queue of size buffer.
func NewDispatcher(buffer int, logger *zap.Logger) *Dispatcher {
	if buffer <= 0 {
		buffer = 256
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{
		handlers: make(map[string][]ports.EventHandler),
		queue:    make(chan events.DomainEvent, buffer),
		timeout:  10 * time.Second,
		logger:   logger,
		closed:   make(chan struct{}),
	}
}

// Register adds h for eventType, or for every type with AllEvents.
func (d *Dispatcher) Register(eventType string, h ports.EventHandler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[eventType] = append(d.handlers[eventType], h)
}

// Publish implements ports.EventPublisher. It never blocks.
func (d *Dispatcher) Publish(_ context.Context, event events.DomainEvent) error {
	select {
	case <-d.closed:
		return ErrClosed
	default:
	}

	select {
	case d.queue <- event:
		return nil
	default:
		d.logger.Warn("Dropping event, queue full",
			zap.String("eventType", event.GetEventType()),
			zap.String("aggregateID", event.GetAggregateID()))
		return ErrQueueFull
	}
}

// Run delivers queued events until ctx is done, then drains what is left.
func (d *Dispatcher) Run(ctx context.Context) error {
	defer d.closeOnce.Do(func() { close(d.closed) })

	for {
		select {
		case <-ctx.Done():
			d.drain()
			return nil
		case event := <-d.queue:
			d.dispatch(event)
		}
	}
}

func (d *Dispatcher) drain() {
	for {
		select {
		case event := <-d.queue:
			d.dispatch(event)
		default:
			return
		}
	}
}

func (d *Dispatcher) dispatch(event events.DomainEvent) {
	d.mu.RLock()
	handlers := append([]ports.EventHandler{}, d.handlers[event.GetEventType()]...)
	handlers = append(handlers, d.handlers[AllEvents]...)
	d.mu.RUnlock()

	if len(handlers) == 0 {
		return
	}

	startTime := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	for _, h := range handlers {
		if err := h.Handle(ctx, event); err != nil {
			d.logger.Error("Failed to dispatch event",
				zap.String("eventType", event.GetEventType()),
				zap.String("aggregateID", event.GetAggregateID()),
				zap.Error(err))
		}
	}

	d.logger.Debug("Event dispatched",
		zap.String("eventType", event.GetEventType()),
		zap.Int("handlers", len(handlers)),
		zap.Duration("duration", time.Since(startTime)))
}

var _ ports.EventPublisher = (*Dispatcher)(nil)
