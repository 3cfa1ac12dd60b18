// Package rest wires the REST endpoints onto a chi router.
package rest

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	appauth "stackecho/application/auth"
	"stackecho/application/queries"
	"stackecho/infrastructure/observability"
	"stackecho/interfaces/http/rest/handlers"
	"stackecho/interfaces/http/rest/middleware"
	"stackecho/pkg/api"
)

// TokenService issues and validates session tokens.
type TokenService interface {
	middleware.TokenIssuer
	handlers.TokenIssuer
}

// Dependencies are the collaborators the router mounts.
type Dependencies struct {
	Sessions handlers.StoreProvider
	Accounts handlers.Accounts
	OAuth    appauth.Providers
	Tokens   TokenService
	Users    *queries.UserDirectory
	Tags     *queries.TagDirectory

	// Events serves the websocket event stream; nil disables the route.
	Events http.Handler
	// Metrics enables request metrics and /metrics when set.
	Metrics *observability.Collector
	// ServiceName enables tracing spans when set.
	ServiceName string
	// Ready reports whether dependencies can serve traffic.
	Ready func(ctx context.Context) error

	CORSOrigins []string
	Logger      *zap.Logger
}

// Router creates and configures the HTTP router
type Router struct {
	deps Dependencies
}

// NewRouter creates a new router instance
func NewRouter(deps Dependencies) *Router {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	return &Router{deps: deps}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()
	logger := rt.deps.Logger

	// Global middleware
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(logger))
	if rt.deps.Metrics != nil {
		router.Use(observability.MetricsMiddleware(rt.deps.Metrics))
	}
	if rt.deps.ServiceName != "" {
		router.Use(observability.TracingMiddleware(rt.deps.ServiceName))
	}

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   rt.deps.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", middleware.SessionTokenHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.deps.Metrics != nil {
		router.Method(http.MethodGet, "/metrics", rt.deps.Metrics.Handler())
	}

	authHandler := handlers.NewAuthHandler(rt.deps.Sessions, rt.deps.Accounts, rt.deps.OAuth, rt.deps.Tokens, logger)
	questionHandler := handlers.NewQuestionHandler(rt.deps.Sessions, logger)
	directoryHandler := handlers.NewDirectoryHandler(rt.deps.Sessions, rt.deps.Users, rt.deps.Tags)

	router.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Session(rt.deps.Tokens, logger))

		r.Route("/auth", func(r chi.Router) {
			r.Post("/login", authHandler.Login)
			r.Post("/register", authHandler.Register)
			r.Post("/logout", authHandler.Logout)
			r.Get("/me", authHandler.Me)
			r.Post("/{provider}/callback", authHandler.Callback)
		})

		r.Route("/questions", func(r chi.Router) {
			r.Get("/", questionHandler.List)
			r.Post("/", questionHandler.Create)
			r.Get("/{id}", questionHandler.Get)
			r.Post("/{id}/vote", questionHandler.Vote)
			r.Post("/{id}/bookmark", questionHandler.Bookmark)
			r.Post("/{id}/answers", questionHandler.Answer)
			r.Post("/{id}/answers/{answerID}/vote", questionHandler.VoteAnswer)
			r.Post("/{id}/answers/{answerID}/accept", questionHandler.Accept)
		})

		r.Get("/users", directoryHandler.ListUsers)
		r.Get("/users/{id}", directoryHandler.GetUser)
		r.Get("/tags", directoryHandler.ListTags)
		r.Get("/profile", directoryHandler.Profile)

		if rt.deps.Events != nil {
			r.Method(http.MethodGet, "/events", rt.deps.Events)
		}
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, _ *http.Request) {
	api.Success(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, r *http.Request) {
	if rt.deps.Ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := rt.deps.Ready(ctx); err != nil {
			rt.deps.Logger.Warn("Readiness check failed", zap.Error(err))
			api.Success(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	api.Success(w, http.StatusOK, map[string]string{"status": "ready"})
}
