package observability

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"stackecho/application/ports"
	"stackecho/domain/events"
	"stackecho/infrastructure/persistence/memory"
	"stackecho/tests/mocks"
)

func TestCollector_IndependentRegistries(t *testing.T) {
	a := NewCollector("stackecho")
	b := NewCollector("stackecho")

	a.ObserveEvent("s1", events.NewQuestionViewed("1", 10, time.Now()))

	assert.Equal(t, 1.0, testutil.ToFloat64(a.StoreEvents.WithLabelValues(events.TypeQuestionViewed)))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.StoreEvents.WithLabelValues(events.TypeQuestionViewed)))
}

func TestCollector_ActiveSessions(t *testing.T) {
	c := NewCollector("stackecho")

	c.SetActiveSessions(3)

	assert.Equal(t, 3.0, testutil.ToFloat64(c.ActiveSessions))
}

func TestCollector_Handler(t *testing.T) {
	c := NewCollector("stackecho")
	c.ObserveEvent("s1", events.NewUserLoggedOut("1", time.Now()))

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `stackecho_store_events_total{type="user.logged_out"} 1`)
}

func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	// Arrange
	c := NewCollector("stackecho")
	r := chi.NewRouter()
	r.Use(MetricsMiddleware(c))
	r.Get("/questions/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	// Act
	for _, id := range []string{"1", "2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/questions/"+id, nil))
	}

	// Assert
	assert.Equal(t, 2.0, testutil.ToFloat64(c.HTTPRequests.WithLabelValues("GET", "/questions/{id}", "404")))
}

func TestTracingMiddleware_Disabled(t *testing.T) {
	tr, err := InitTracing(context.Background(), TracingConfig{ServiceName: "stackecho"})
	require.NoError(t, err)
	defer tr.Shutdown(context.Background())

	r := chi.NewRouter()
	r.Use(TracingMiddleware("stackecho"))
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
	// The no-op provider produces invalid span contexts.
	assert.Empty(t, rec.Header().Get("X-Trace-ID"))
}

func TestInstrumentedStore_RecordsOperations(t *testing.T) {
	// Arrange
	c := NewCollector("stackecho")
	s := Instrument(memory.NewStore(), "memory", c)
	ctx := context.Background()

	// Act
	require.NoError(t, s.Save(ctx, "k", &ports.Snapshot{Questions: nil}))
	snap, err := s.Load(ctx, "k")
	require.NoError(t, err)
	require.NoError(t, s.Delete(ctx, "k"))

	// Assert
	require.NotNil(t, snap)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.SnapshotOps.WithLabelValues("save", "memory", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.SnapshotOps.WithLabelValues("load", "memory", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.SnapshotOps.WithLabelValues("delete", "memory", "success")))
}

func TestInstrumentedStore_ClassifiesErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status string
	}{
		{"corrupt", ports.ErrCorruptSnapshot, "corrupt"},
		{"deadline", context.DeadlineExceeded, "timeout"},
		{"other", errors.New("boom"), "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCollector("stackecho")
			next := new(mocks.MockSnapshotStore)
			next.On("Load", mock.Anything, "k").Return(nil, tt.err)
			s := Instrument(next, "mock", c)

			_, err := s.Load(context.Background(), "k")

			assert.ErrorIs(t, err, tt.err)
			assert.Equal(t, 1.0, testutil.ToFloat64(c.SnapshotOps.WithLabelValues("load", "mock", tt.status)))
			next.AssertExpectations(t)
		})
	}
}

func TestCollector_MetricNames(t *testing.T) {
	c := NewCollector("stackecho")
	c.HTTPRequests.WithLabelValues("GET", "/", "200").Inc()

	n, err := testutil.GatherAndCount(c.Registry(), "stackecho_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	err = testutil.GatherAndCompare(c.Registry(), strings.NewReader(`
# HELP stackecho_active_sessions Number of sessions with an open store
# TYPE stackecho_active_sessions gauge
stackecho_active_sessions 0
`), "stackecho_active_sessions")
	assert.NoError(t, err)
}
