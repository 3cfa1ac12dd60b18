// Package websocket streams a session's store events to its open
// connections.
package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"stackecho/domain/events"
)

// ErrHubStopped is returned when sending to a hub that is no longer running.
var ErrHubStopped = errors.New("websocket hub stopped")

// ErrBroadcastFull is returned when the broadcast queue has no room.
var ErrBroadcastFull = errors.New("broadcast channel full, message dropped")

// Message is the frame written to clients.
type Message struct {
	SessionID string          `json:"-"`
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// Metrics tracks hub activity
type Metrics struct {
	ActiveConnections int64
	MessagesSent      int64
	MessagesFailed    int64
}

// Hub maintains active connections grouped by session. Connection
// bookkeeping happens on the Run goroutine.
type Hub struct {
	mu          sync.RWMutex
	connections map[string]map[*Client]struct{}

	register   chan *Client
	unregister chan *Client
	broadcast  chan *Message

	done    chan struct{}
	stopped sync.Once

	metricsMu sync.Mutex
	metrics   Metrics

	pingInterval time.Duration
	logger       *zap.Logger
}

// NewHub creates a new hub. Call Run to start it.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		connections:  make(map[string]map[*Client]struct{}),
		register:     make(chan *Client, 100),
		unregister:   make(chan *Client, 100),
		broadcast:    make(chan *Message, 1000),
		done:         make(chan struct{}),
		pingInterval: 30 * time.Second,
		logger:       logger,
	}
}

// Run processes registrations and broadcasts until ctx is done, then
// closes every connection.
func (h *Hub) Run(ctx context.Context) error {
	ticker := time.NewTicker(h.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			h.stopped.Do(func() { close(h.done) })
			h.closeAllConnections()
			h.logger.Info("Hub shut down")
			return nil

		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case message := <-h.broadcast:
			h.broadcastToSession(message)

		case <-ticker.C:
			h.performHealthCheck()
		}
	}
}

// Send queues a message for every connection of sessionID without blocking.
func (h *Hub) Send(sessionID, messageType string, data interface{}, at time.Time) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	message := &Message{
		SessionID: sessionID,
		Type:      messageType,
		Data:      payload,
		Timestamp: at.Unix(),
	}

	select {
	case <-h.done:
		return ErrHubStopped
	default:
	}

	select {
	case h.broadcast <- message:
		return nil
	default:
		h.recordFailure()
		return ErrBroadcastFull
	}
}

// Forward relays a store event to the session's connections. Its
// signature matches session.Listener.
func (h *Hub) Forward(sessionID string, event events.DomainEvent) {
	if h.ConnectionCount(sessionID) == 0 {
		return
	}
	if err := h.Send(sessionID, event.GetEventType(), event, event.GetTimestamp()); err != nil {
		h.logger.Warn("Failed to forward event",
			zap.String("sessionID", sessionID),
			zap.String("eventType", event.GetEventType()),
			zap.Error(err),
		)
	}
}

func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.connections[client.sessionID] == nil {
		h.connections[client.sessionID] = make(map[*Client]struct{})
	}
	h.connections[client.sessionID][client] = struct{}{}

	h.metricsMu.Lock()
	h.metrics.ActiveConnections++
	h.metricsMu.Unlock()

	h.logger.Info("Client registered",
		zap.String("sessionID", client.sessionID),
		zap.String("connectionID", client.id),
		zap.Int("sessionConnections", len(h.connections[client.sessionID])),
	)
}

func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(client)
}

// removeLocked drops client and closes its send channel. It is a no-op
// for clients already removed.
func (h *Hub) removeLocked(client *Client) {
	clients, ok := h.connections[client.sessionID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.connections, client.sessionID)
	}

	h.metricsMu.Lock()
	h.metrics.ActiveConnections--
	h.metricsMu.Unlock()

	h.logger.Info("Client unregistered",
		zap.String("sessionID", client.sessionID),
		zap.String("connectionID", client.id),
		zap.Int("remainingConnections", len(clients)),
	)
}

func (h *Hub) broadcastToSession(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		h.logger.Error("Failed to marshal broadcast message",
			zap.Error(err),
			zap.String("messageType", message.Type),
		)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.connections[message.SessionID] {
		select {
		case client.send <- data:
			h.metricsMu.Lock()
			h.metrics.MessagesSent++
			h.metricsMu.Unlock()
		default:
			h.recordFailure()
			h.logger.Warn("Closing slow client",
				zap.String("sessionID", client.sessionID),
				zap.String("connectionID", client.id),
			)
			h.removeLocked(client)
		}
	}
}

func (h *Hub) performHealthCheck() {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, clients := range h.connections {
		total += len(clients)
	}
	h.logger.Debug("Health check performed",
		zap.Int("totalConnections", total),
		zap.Int("totalSessions", len(h.connections)),
	)
}

func (h *Hub) closeAllConnections() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for sessionID, clients := range h.connections {
		for client := range clients {
			close(client.send)
		}
		delete(h.connections, sessionID)
	}
	h.metricsMu.Lock()
	h.metrics.ActiveConnections = 0
	h.metricsMu.Unlock()
}

func (h *Hub) recordFailure() {
	h.metricsMu.Lock()
	h.metrics.MessagesFailed++
	h.metricsMu.Unlock()
}

// Metrics returns current hub metrics
func (h *Hub) Metrics() Metrics {
	h.metricsMu.Lock()
	defer h.metricsMu.Unlock()
	return h.metrics
}

// ConnectionCount returns the number of open connections for a session
func (h *Hub) ConnectionCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections[sessionID])
}
