package di

import (
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"go.uber.org/zap"

	appauth "stackecho/application/auth"
	"stackecho/application/ports"
	"stackecho/application/queries"
	"stackecho/application/session"
	"stackecho/application/store"
	"stackecho/domain/events"
	"stackecho/infrastructure/config"
	"stackecho/infrastructure/messaging"
	"stackecho/infrastructure/messaging/eventbridge"
	"stackecho/infrastructure/observability"
	"stackecho/infrastructure/persistence/breaker"
	"stackecho/infrastructure/persistence/dynamodb"
	"stackecho/infrastructure/persistence/file"
	"stackecho/infrastructure/persistence/memory"
	"stackecho/infrastructure/persistence/sqlite"
	"stackecho/interfaces/http/rest"
	"stackecho/interfaces/websocket"
	pkgauth "stackecho/pkg/auth"
)

// devJWTSecret signs session tokens outside production when no secret is set.
const devJWTSecret = "stackecho-development-secret"

// readinessKey is probed on /ready; it is never written.
const readinessKey = "__readiness__"

// ReadinessCheck reports whether the process can serve traffic.
type ReadinessCheck func(ctx context.Context) error

// ProvideLogLevel parses the configured log level
func ProvideLogLevel(cfg *config.Config) (zap.AtomicLevel, error) {
	return config.NewLogLevel(cfg)
}

// ProvideLogger creates the process logger. The cleanup flushes it.
func ProvideLogger(cfg *config.Config, level zap.AtomicLevel) (*zap.Logger, func(), error) {
	logger, err := config.NewLoggerAt(cfg, level)
	if err != nil {
		return nil, nil, err
	}
	return logger, func() { _ = logger.Sync() }, nil
}

// ProvideAWSConfig creates AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideMetrics returns nil when metrics are disabled.
func ProvideMetrics(cfg *config.Config) *observability.Collector {
	if !cfg.Observability.EnableMetrics {
		return nil
	}
	return observability.NewCollector("stackecho")
}

// ProvideTracing installs the tracer provider and flushes it on cleanup.
func ProvideTracing(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*observability.Tracing, func(), error) {
	tracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		Enabled:        cfg.Observability.EnableTracing,
		ServiceName:    cfg.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
		Environment:    cfg.Environment,
		Endpoint:       cfg.Observability.OTLPEndpoint,
		SampleRate:     cfg.Observability.SampleRate,
	})
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := tracing.Shutdown(context.Background()); err != nil {
			logger.Warn("Tracer shutdown failed", zap.Error(err))
		}
	}
	return tracing, cleanup, nil
}

// ProvideSnapshotStore opens the configured backend and layers the
// circuit breaker and instrumentation over it.
func ProvideSnapshotStore(
	cfg *config.Config,
	client *awsdynamodb.Client,
	metrics *observability.Collector,
	logger *zap.Logger,
) (ports.SnapshotStore, func(), error) {
	var (
		backend ports.SnapshotStore
		cleanup = func() {}
	)

	switch cfg.Storage.Backend {
	case config.BackendMemory:
		backend = memory.NewStore()
	case config.BackendFile:
		s, err := file.NewStore(cfg.Storage.Dir, logger)
		if err != nil {
			return nil, nil, err
		}
		backend = s
	case config.BackendSQLite:
		s, err := sqlite.Open(cfg.Storage.SQLitePath, logger)
		if err != nil {
			return nil, nil, err
		}
		backend = s
		cleanup = func() {
			if err := s.Close(); err != nil {
				logger.Warn("Failed to close sqlite store", zap.Error(err))
			}
		}
	case config.BackendDynamoDB:
		backend = dynamodb.NewStore(client, cfg.Storage.DynamoDBTable, logger)
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	if cfg.Storage.BreakerEnabled && cfg.Storage.Backend != config.BackendMemory {
		backend = breaker.Wrap(backend, breaker.DefaultConfig("snapshot-"+cfg.Storage.Backend), logger)
	}
	if metrics != nil {
		backend = observability.Instrument(backend, cfg.Storage.Backend, metrics)
	}

	logger.Info("Snapshot store ready",
		zap.String("backend", cfg.Storage.Backend),
		zap.Bool("breaker", cfg.Storage.BreakerEnabled),
	)
	return backend, cleanup, nil
}

// ProvideReadiness probes the snapshot store. An open breaker fails it.
func ProvideReadiness(snapshots ports.SnapshotStore) ReadinessCheck {
	return func(ctx context.Context) error {
		_, err := snapshots.Load(ctx, readinessKey)
		return err
	}
}

// ProvideDispatcher creates the event dispatcher and registers the
// outbound handlers.
func ProvideDispatcher(cfg *config.Config, client *awseventbridge.Client, logger *zap.Logger) *messaging.Dispatcher {
	dispatcher := messaging.NewDispatcher(256, logger)

	dispatcher.Register(messaging.AllEvents, ports.EventHandlerFunc(func(_ context.Context, event events.DomainEvent) error {
		logger.Debug("Store event",
			zap.String("type", event.GetEventType()),
			zap.String("aggregate_id", event.GetAggregateID()),
		)
		return nil
	}))

	if cfg.Events.EventBusName != "" {
		dispatcher.Register(messaging.AllEvents, eventbridge.NewPublisher(client, cfg.Events.EventBusName, logger))
	}
	return dispatcher
}

// ProvideHub creates the websocket hub
func ProvideHub(logger *zap.Logger) *websocket.Hub {
	return websocket.NewHub(logger)
}

// ProvideEventsServer serves the websocket event stream
func ProvideEventsServer(hub *websocket.Hub, logger *zap.Logger) *websocket.Server {
	return websocket.NewServer(hub, websocket.DefaultServerConfig(), logger)
}

// ProvideSessionManager creates the session manager and subscribes the
// metrics, websocket and dispatcher sinks to every store.
func ProvideSessionManager(
	cfg *config.Config,
	snapshots ports.SnapshotStore,
	dispatcher *messaging.Dispatcher,
	hub *websocket.Hub,
	metrics *observability.Collector,
	logger *zap.Logger,
) *session.Manager {
	sessionCfg := session.Config{
		StorageName:   cfg.Storage.Name,
		StoreOptions:  []store.Option{store.WithPersistTimeout(cfg.Storage.PersistTimeout)},
		IdleTimeout:   cfg.Sessions.IdleTimeout,
		MaxSessions:   cfg.Sessions.MaxOpen,
		SweepInterval: cfg.Sessions.SweepInterval,
	}
	if metrics != nil {
		sessionCfg.OnSweep = metrics.SetActiveSessions
	}
	manager := session.NewManager(snapshots, sessionCfg, logger)

	if metrics != nil {
		manager.AddListener(metrics.ObserveEvent)
	}
	manager.AddListener(hub.Forward)
	manager.AddListener(func(sessionID string, event events.DomainEvent) {
		if err := dispatcher.Publish(context.Background(), event); err != nil {
			logger.Warn("Dropped store event",
				zap.String("session_id", sessionID),
				zap.String("type", event.GetEventType()),
				zap.Error(err),
			)
		}
	})
	return manager
}

// ProvideTokenService creates the session token service
func ProvideTokenService(cfg *config.Config, logger *zap.Logger) (*pkgauth.TokenService, error) {
	secret := cfg.Auth.JWTSecret
	if secret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT secret is required in production")
		}
		logger.Warn("JWT_SECRET not set, using the development secret")
		secret = devJWTSecret
	}
	return pkgauth.NewTokenService(pkgauth.TokenConfig{
		SecretKey: secret,
		Issuer:    cfg.Auth.JWTIssuer,
		TTL:       cfg.Auth.TokenTTL,
	})
}

// ProvideAccounts creates the credential directory seeded with the demo accounts
func ProvideAccounts(cfg *config.Config, logger *zap.Logger) (*appauth.Directory, error) {
	return appauth.NewDirectory(appauth.DemoAccounts(), cfg.Auth.BcryptCost, logger)
}

// ProvideOAuthProviders registers the demo OAuth providers
func ProvideOAuthProviders() appauth.Providers {
	return appauth.NewProviders(
		appauth.NewDemoOAuth(appauth.ProviderGitHub, nil),
		appauth.NewDemoOAuth(appauth.ProviderGoogle, nil),
	)
}

// ProvideUserDirectory creates the community user directory
func ProvideUserDirectory() *queries.UserDirectory {
	return queries.NewUserDirectory(queries.SeedProfiles())
}

// ProvideTagDirectory creates the tag directory
func ProvideTagDirectory() *queries.TagDirectory {
	return queries.NewTagDirectory(queries.SeedTags())
}

// ProvideWatcher returns nil when no configuration file is in use.
func ProvideWatcher(cfg *config.Config, level zap.AtomicLevel, logger *zap.Logger) (*config.Watcher, error) {
	if cfg.Path == "" {
		return nil, nil
	}
	return config.NewWatcher(cfg.Path, level, logger)
}

// ProvideHandler builds the HTTP handler
func ProvideHandler(
	cfg *config.Config,
	sessions *session.Manager,
	accounts *appauth.Directory,
	oauth appauth.Providers,
	tokens *pkgauth.TokenService,
	users *queries.UserDirectory,
	tags *queries.TagDirectory,
	stream *websocket.Server,
	metrics *observability.Collector,
	ready ReadinessCheck,
	logger *zap.Logger,
) http.Handler {
	deps := rest.Dependencies{
		Sessions:    meteredSessions{Manager: sessions, metrics: metrics},
		Accounts:    accounts,
		OAuth:       oauth,
		Tokens:      tokens,
		Users:       users,
		Tags:        tags,
		Events:      stream,
		Metrics:     metrics,
		Ready:       ready,
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      logger,
	}
	if cfg.Observability.EnableTracing {
		deps.ServiceName = cfg.ServiceName
	}
	return rest.NewRouter(deps).Setup()
}

// meteredSessions keeps the active session gauge current.
type meteredSessions struct {
	*session.Manager
	metrics *observability.Collector
}

func (m meteredSessions) Get(ctx context.Context, sessionID string) *store.Store {
	s := m.Manager.Get(ctx, sessionID)
	if m.metrics != nil {
		m.metrics.SetActiveSessions(m.Manager.Len())
	}
	return s
}
