// Package handlers implements the REST endpoints over a session's store.
package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"stackecho/application/store"
	"stackecho/pkg/api"
	"stackecho/pkg/auth"
	apperrors "stackecho/pkg/errors"
)

// StoreProvider returns the store of a session, creating it on first use.
type StoreProvider interface {
	Get(ctx context.Context, sessionID string) *store.Store
}

// sessionStore resolves the request's session and its store.
func sessionStore(sessions StoreProvider, r *http.Request) (*store.Store, *auth.SessionContext, error) {
	sess, err := auth.GetSessionFromContext(r.Context())
	if err != nil {
		return nil, nil, apperrors.NewUnauthorized("no session")
	}
	return sessions.Get(r.Context(), sess.SessionID), sess, nil
}

// requireViewer mirrors the sign-in redirects of the web client: mutating
// endpoints answer 401 when nobody is signed in on the session.
func requireViewer(s *store.Store) error {
	if !s.IsAuthenticated() {
		return apperrors.NewUnauthorized("sign in to continue")
	}
	return nil
}

func respondError(logger *zap.Logger, w http.ResponseWriter, r *http.Request, err error) {
	if apperrors.IsInternal(err) {
		logger.Error("Request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	api.FromError(w, err)
}
