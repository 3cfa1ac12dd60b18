package auth

import (
	"context"
	"errors"
)

type contextKey struct {
	name string
}

var sessionKey = contextKey{"session"}

// ErrNoSession is returned when a request carries no session context
var ErrNoSession = errors.New("no session in context")

// SessionContext is the per-request view of the caller's session
type SessionContext struct {
	SessionID string
	UserID    string
	Username  string
}

// Authenticated reports whether a user is logged in on this session
func (s *SessionContext) Authenticated() bool {
	return s != nil && s.UserID != ""
}

// SetSessionInContext stores the session context
func SetSessionInContext(ctx context.Context, session *SessionContext) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// GetSessionFromContext retrieves the session context
func GetSessionFromContext(ctx context.Context) (*SessionContext, error) {
	session, ok := ctx.Value(sessionKey).(*SessionContext)
	if !ok || session == nil {
		return nil, ErrNoSession
	}
	return session, nil
}
