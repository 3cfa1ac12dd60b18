package websocket

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"stackecho/pkg/api"
	"stackecho/pkg/auth"
)

// ServerConfig holds websocket server configuration
type ServerConfig struct {
	ReadBufferSize        int
	WriteBufferSize       int
	CheckOrigin           func(r *http.Request) bool
	MaxSessionConnections int
}

// DefaultServerConfig returns default websocket server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		ReadBufferSize:        1024,
		WriteBufferSize:       1024,
		MaxSessionConnections: 10,
	}
}

// Server upgrades requests and attaches them to the hub.
type Server struct {
	hub      *Hub
	upgrader websocket.Upgrader
	maxConns int
	logger   *zap.Logger
}

// NewServer creates a websocket server.
func NewServer(hub *Hub, cfg ServerConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		hub: hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:   cfg.ReadBufferSize,
			WriteBufferSize:  cfg.WriteBufferSize,
			CheckOrigin:      cfg.CheckOrigin,
			HandshakeTimeout: 10 * time.Second,
		},
		maxConns: cfg.MaxSessionConnections,
		logger:   logger,
	}
}

// ServeHTTP expects the session middleware to have resolved the caller.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	sess, err := auth.GetSessionFromContext(r.Context())
	if err != nil {
		api.Error(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if s.maxConns > 0 && s.hub.ConnectionCount(sess.SessionID) >= s.maxConns {
		s.logger.Warn("Connection limit exceeded for session",
			zap.String("sessionID", sess.SessionID),
		)
		api.Error(w, http.StatusTooManyRequests, "Connection limit exceeded")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error.
		s.logger.Debug("Failed to upgrade connection", zap.Error(err))
		return
	}

	client := NewClient(sess.SessionID, s.hub, conn, s.logger)
	if !client.Start() {
		return
	}
	s.logger.Info("WebSocket connection established",
		zap.String("sessionID", sess.SessionID),
		zap.String("connectionID", client.ID()),
	)
}
