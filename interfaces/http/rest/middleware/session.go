// Package middleware holds the HTTP middleware of the REST interface.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stackecho/pkg/api"
	"stackecho/pkg/auth"
)

// SessionTokenHeader carries a freshly issued session token.
const SessionTokenHeader = "X-Session-Token"

// TokenIssuer issues and validates session tokens.
type TokenIssuer interface {
	Issue(sessionID, userID, username string) (string, error)
	Validate(token string) (*auth.Claims, error)
}

// Session resolves the caller's session from a bearer token, or from the
// token query parameter for websocket upgrades. Requests without a token
// start a new anonymous session whose token is returned in
// SessionTokenHeader.
func Session(tokens TokenIssuer, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)

			var sess *auth.SessionContext
			if raw == "" {
				sessionID := uuid.NewString()
				token, err := tokens.Issue(sessionID, "", "")
				if err != nil {
					logger.Error("Failed to issue session token", zap.Error(err))
					api.Error(w, http.StatusInternalServerError, "Failed to start session")
					return
				}
				w.Header().Set(SessionTokenHeader, token)
				sess = &auth.SessionContext{SessionID: sessionID}
			} else {
				claims, err := tokens.Validate(raw)
				if err != nil {
					message := "Invalid session token"
					if errors.Is(err, auth.ErrExpiredToken) {
						message = "Session token has expired"
					}
					logger.Debug("Rejected session token", zap.Error(err))
					api.Error(w, http.StatusUnauthorized, message)
					return
				}
				sess = &auth.SessionContext{
					SessionID: claims.SessionID,
					UserID:    claims.UserID,
					Username:  claims.Username,
				}
			}

			ctx := auth.SetSessionInContext(r.Context(), sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header != "" {
		if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
			return strings.TrimSpace(header[7:])
		}
		return ""
	}
	return r.URL.Query().Get("token")
}
