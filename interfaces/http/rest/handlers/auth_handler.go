package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	appauth "stackecho/application/auth"
	"stackecho/domain/core/entities"
	"stackecho/interfaces/http/rest/middleware"
	"stackecho/pkg/api"
	"stackecho/pkg/auth"
	"stackecho/pkg/validation"
)

// Accounts is the credential directory.
type Accounts interface {
	appauth.Authenticator
	Exists(email string) bool
	Register(ctx context.Context, u entities.User, password string) error
}

// TokenIssuer signs session tokens.
type TokenIssuer interface {
	Issue(sessionID, userID, username string) (string, error)
}

// AuthHandler handles sign-in, registration and provider callbacks
type AuthHandler struct {
	sessions StoreProvider
	accounts Accounts
	oauth    appauth.Providers
	tokens   TokenIssuer
	now      func() time.Time
	logger   *zap.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	sessions StoreProvider,
	accounts Accounts,
	oauth appauth.Providers,
	tokens TokenIssuer,
	logger *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		sessions: sessions,
		accounts: accounts,
		oauth:    oauth,
		tokens:   tokens,
		now:      time.Now,
		logger:   logger,
	}
}

// LoginRequest represents the request body for email sign-in
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest represents the request body for creating an account
type RegisterRequest struct {
	Username        string `json:"username" validate:"required,min=3"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
	AgreeToTerms    bool   `json:"agreeToTerms" validate:"required"`
}

// CallbackRequest carries a provider authorization code
type CallbackRequest struct {
	Code string `json:"code"`
}

// SessionResponse describes the session after an auth change
type SessionResponse struct {
	User            *entities.User `json:"user"`
	IsAuthenticated bool           `json:"isAuthenticated"`
	Token           string         `json:"token,omitempty"`
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.FromError(w, err)
		return
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := validation.Struct(req); err != nil {
		api.FromError(w, err)
		return
	}

	identity, err := h.accounts.Authenticate(r.Context(), appauth.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	h.signIn(w, r, identity, http.StatusOK)
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.FromError(w, err)
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if err := validation.Struct(req); err != nil {
		api.FromError(w, err)
		return
	}
	if h.accounts.Exists(req.Email) {
		api.FromError(w, appauth.ErrEmailTaken)
		return
	}

	s, sess, err := sessionStore(h.sessions, r)
	if err != nil {
		api.FromError(w, err)
		return
	}
	// The directory claims the email before the session's viewer changes.
	user, err := s.RegisterWith(entities.Registration{Username: req.Username, Email: req.Email}, func(u entities.User) error {
		return h.accounts.Register(r.Context(), u, req.Password)
	})
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}

	h.logger.Info("Member registered",
		zap.String("sessionID", sess.SessionID),
		zap.String("userID", user.ID),
	)
	h.respond(w, sess.SessionID, &user, http.StatusCreated)
}

// Logout handles POST /auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	s, sess, err := sessionStore(h.sessions, r)
	if err != nil {
		api.FromError(w, err)
		return
	}
	s.Logout()
	h.respond(w, sess.SessionID, nil, http.StatusOK)
}

// Me handles GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	s, _, err := sessionStore(h.sessions, r)
	if err != nil {
		api.FromError(w, err)
		return
	}
	user, ok := s.CurrentUser()
	if !ok {
		api.Success(w, http.StatusOK, SessionResponse{})
		return
	}
	api.Success(w, http.StatusOK, SessionResponse{User: &user, IsAuthenticated: true})
}

// Callback handles POST /auth/{provider}/callback
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	provider, err := h.oauth.Lookup(chi.URLParam(r, "provider"))
	if err != nil {
		api.FromError(w, err)
		return
	}

	var req CallbackRequest
	if r.ContentLength != 0 {
		if err := api.DecodeJSON(r, &req); err != nil {
			api.FromError(w, err)
			return
		}
	}

	identity, err := provider.Exchange(r.Context(), strings.TrimSpace(req.Code))
	if err != nil {
		respondError(h.logger, w, r, err)
		return
	}
	h.signIn(w, r, identity, http.StatusOK)
}

func (h *AuthHandler) signIn(w http.ResponseWriter, r *http.Request, identity appauth.Identity, status int) {
	s, sess, err := sessionStore(h.sessions, r)
	if err != nil {
		api.FromError(w, err)
		return
	}
	user := identity.ToUser(h.now())
	s.Login(user)

	h.logger.Info("Member signed in",
		zap.String("sessionID", sess.SessionID),
		zap.String("userID", user.ID),
		zap.String("provider", string(identity.Provider)),
	)
	h.respond(w, sess.SessionID, &user, status)
}

// respond reissues the session token so its claims follow the store.
func (h *AuthHandler) respond(w http.ResponseWriter, sessionID string, user *entities.User, status int) {
	var userID, username string
	if user != nil {
		userID, username = user.ID, user.Username
	}
	token, err := h.tokens.Issue(sessionID, userID, username)
	if err != nil {
		h.logger.Error("Failed to issue session token", zap.Error(err))
		api.Error(w, http.StatusInternalServerError, "Failed to issue session token")
		return
	}
	w.Header().Set(middleware.SessionTokenHeader, token)
	api.Success(w, status, SessionResponse{User: user, IsAuthenticated: user != nil, Token: token})
}

var (
	_ Accounts    = (*appauth.Directory)(nil)
	_ TokenIssuer = (*auth.TokenService)(nil)
)
