package di

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/crypto/bcrypt"

	"stackecho/domain/events"
	"stackecho/infrastructure/config"
	"stackecho/interfaces/http/rest/middleware"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Environment = "test"
	cfg.LogLevel = "error"
	cfg.Auth.JWTSecret = "test-secret"
	cfg.Auth.BcryptCost = bcrypt.MinCost
	return cfg
}

func TestInitializeContainer_ServesRequests(t *testing.T) {
	// Arrange
	ctx := context.Background()
	c, cleanup, err := InitializeContainer(ctx, testConfig())
	require.NoError(t, err)
	defer cleanup()
	srv := httptest.NewServer(c.Handler)
	defer srv.Close()

	// Act
	resp, err := http.Get(srv.URL + "/api/v1/questions/1")
	require.NoError(t, err)
	defer resp.Body.Close()

	// Assert
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(middleware.SessionTokenHeader))
	assert.Equal(t, 1, c.Sessions.Len())
	require.NotNil(t, c.Metrics)
	assert.Equal(t, float64(1), testutil.ToFloat64(c.Metrics.ActiveSessions))
	assert.Nil(t, c.Watcher)
}

func TestInitializeContainer_ReadyAgainstSnapshotStore(t *testing.T) {
	// Arrange
	c, cleanup, err := InitializeContainer(context.Background(), testConfig())
	require.NoError(t, err)
	defer cleanup()

	// Act
	rec := httptest.NewRecorder()
	c.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	// Assert
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestInitializeContainer_RejectsBadLogLevel(t *testing.T) {
	cfg := testConfig()
	cfg.LogLevel = "loud"

	_, _, err := InitializeContainer(context.Background(), cfg)

	assert.Error(t, err)
}

func TestContainer_RunWorkersStopsOnCancel(t *testing.T) {
	// Arrange
	c, cleanup, err := InitializeContainer(context.Background(), testConfig())
	require.NoError(t, err)
	defer cleanup()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.RunWorkers(ctx) }()

	// Act
	cancel()

	// Assert
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("workers did not stop")
	}
}

func TestProvideSnapshotStore_Backends(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		backend string
		wantErr bool
	}{
		{name: "memory", backend: config.BackendMemory},
		{name: "file", backend: config.BackendFile},
		{name: "sqlite", backend: config.BackendSQLite},
		{name: "unknown", backend: "tape", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			cfg.Storage.Backend = tt.backend
			cfg.Storage.Dir = filepath.Join(dir, tt.name)
			cfg.Storage.SQLitePath = filepath.Join(dir, tt.name+".db")

			store, cleanup, err := ProvideSnapshotStore(cfg, nil, ProvideMetrics(cfg), zap.NewNop())

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer cleanup()
			snap, err := store.Load(context.Background(), readinessKey)
			assert.NoError(t, err)
			assert.Nil(t, snap)
		})
	}
}

func TestProvideTokenService_SecretFallback(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.JWTSecret = ""

	tokens, err := ProvideTokenService(cfg, zap.NewNop())
	require.NoError(t, err)
	token, err := tokens.Issue("s1", "", "")
	require.NoError(t, err)
	claims, err := tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "s1", claims.SessionID)

	cfg.Environment = "production"
	_, err = ProvideTokenService(cfg, zap.NewNop())
	assert.Error(t, err)
}

func TestProvideWatcher_UsesConfigPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stackecho.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logLevel: debug\n"), 0o644))
	cfg := testConfig()
	cfg.Path = path
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)

	w, err := ProvideWatcher(cfg, level, zap.NewNop())

	require.NoError(t, err)
	require.NotNil(t, w)
	assert.Equal(t, "debug", w.Current().LogLevel)
}

func TestProvideDispatcher_LogsEveryEvent(t *testing.T) {
	// Arrange
	core, logs := observer.New(zapcore.DebugLevel)
	d := ProvideDispatcher(testConfig(), nil, zap.New(core))
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- d.Run(ctx) }()

	// Act
	require.NoError(t, d.Publish(ctx, events.NewQuestionViewed("1", 128, time.Now())))

	// Assert
	require.Eventually(t, func() bool {
		return logs.FilterMessage("Store event").Len() == 1
	}, time.Second, 5*time.Millisecond)
	entry := logs.FilterMessage("Store event").All()[0]
	assert.Equal(t, events.TypeQuestionViewed, entry.ContextMap()["type"])
	cancel()
	require.NoError(t, <-done)
}

func TestProvideHandler_ListsSeedQuestions(t *testing.T) {
	// Arrange
	c, cleanup, err := InitializeContainer(context.Background(), testConfig())
	require.NoError(t, err)
	defer cleanup()

	// Act
	rec := httptest.NewRecorder()
	c.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/questions?sort=votes", nil))

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Total int `json:"total"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body.Total)
}

func TestInitializeContainer_TokenlessRequestsStayWithinSessionCap(t *testing.T) {
	// Arrange
	cfg := testConfig()
	cfg.Sessions.MaxOpen = 50
	c, cleanup, err := InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()

	// Act
	for i := 0; i < 500; i++ {
		rec := httptest.NewRecorder()
		c.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/questions", nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	// Assert
	assert.Equal(t, 50, c.Sessions.Len())
	assert.Equal(t, float64(50), testutil.ToFloat64(c.Metrics.ActiveSessions))
}

func TestContainer_RunWorkersSweepsIdleSessions(t *testing.T) {
	// Arrange
	cfg := testConfig()
	cfg.Sessions.IdleTimeout = time.Millisecond
	cfg.Sessions.SweepInterval = 5 * time.Millisecond
	c, cleanup, err := InitializeContainer(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()
	c.Handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/questions", nil))
	require.Equal(t, 1, c.Sessions.Len())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	// Act
	go func() { done <- c.RunWorkers(ctx) }()

	// Assert
	assert.Eventually(t, func() bool {
		return c.Sessions.Len() == 0 && testutil.ToFloat64(c.Metrics.ActiveSessions) == 0
	}, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}
