// Package session maps viewer sessions to their own application state.
package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"stackecho/application/ports"
	"stackecho/application/store"
	"stackecho/domain/events"
)

// Listener receives every event emitted by any session's store.
type Listener func(sessionID string, event events.DomainEvent)

// Config configures a Manager.
type Config struct {
	StorageName  string
	StoreOptions []store.Option
	// IdleTimeout evicts sessions not touched for this long. Zero keeps
	// them until MaxSessions pushes them out.
	IdleTimeout time.Duration
	// MaxSessions caps the open sessions; the least recently used one is
	// evicted first. Zero means no cap.
	MaxSessions   int
	SweepInterval time.Duration
	// OnSweep, when set, receives the open count after a sweep evicts.
	OnSweep func(open int)
}

type entry struct {
	store    *store.Store
	lastUsed time.Time
}

// Manager creates and restores one store per session on first use.
// Evicted sessions keep their snapshot and are restored on the next Get.
type Manager struct {
	mu        sync.Mutex
	stores    map[string]*entry
	snapshots ports.SnapshotStore
	listeners []Listener
	cfg       Config
	now       func() time.Time
	logger    *zap.Logger
}

// NewManager creates a session manager. snapshots may be nil for a
// volatile deployment.
func NewManager(snapshots ports.SnapshotStore, cfg Config, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.StorageName == "" {
		cfg.StorageName = ports.DefaultStorageName
	}
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	return &Manager{
		stores:    make(map[string]*entry),
		snapshots: snapshots,
		cfg:       cfg,
		now:       time.Now,
		logger:    logger,
	}
}

// AddListener attaches l to every store, including ones already created.
func (m *Manager) AddListener(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
	for id, e := range m.stores {
		sessionID := id
		e.store.Subscribe(func(ev events.DomainEvent) { l(sessionID, ev) })
	}
}

// Get returns the store for sessionID, restoring it from its snapshot the
// first time it is requested.
func (m *Manager) Get(ctx context.Context, sessionID string) *store.Store {
	if s, ok := m.lookup(sessionID); ok {
		return s
	}

	// Restore talks to the snapshot backend; other sessions must not wait on it.
	opts := append([]store.Option{}, m.cfg.StoreOptions...)
	opts = append(opts, store.WithLogger(m.logger.With(zap.String("session_id", sessionID))))
	if m.snapshots != nil {
		opts = append(opts, store.WithSnapshotStore(m.snapshots, ports.SessionKey(m.cfg.StorageName, sessionID)))
	}
	s := store.New(opts...)
	restored := s.Restore(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.stores[sessionID]; ok {
		e.lastUsed = m.now()
		return e.store
	}
	for _, l := range m.listeners {
		listener := l
		s.Subscribe(func(e events.DomainEvent) { listener(sessionID, e) })
	}
	m.stores[sessionID] = &entry{store: s, lastUsed: m.now()}
	m.enforceCapLocked()

	m.logger.Debug("session opened",
		zap.String("session_id", sessionID),
		zap.Bool("restored", restored))
	return s
}

func (m *Manager) lookup(sessionID string) (*store.Store, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.stores[sessionID]
	if !ok {
		return nil, false
	}
	e.lastUsed = m.now()
	return e.store, true
}

// enforceCapLocked evicts least recently used sessions beyond MaxSessions.
func (m *Manager) enforceCapLocked() {
	if m.cfg.MaxSessions <= 0 {
		return
	}
	for len(m.stores) > m.cfg.MaxSessions {
		var (
			oldestID string
			oldest   time.Time
		)
		for id, e := range m.stores {
			if oldestID == "" || e.lastUsed.Before(oldest) {
				oldestID, oldest = id, e.lastUsed
			}
		}
		delete(m.stores, oldestID)
		m.logger.Debug("session evicted", zap.String("session_id", oldestID), zap.String("reason", "capacity"))
	}
}

// Sweep evicts sessions idle since before now minus IdleTimeout and
// returns how many it dropped.
func (m *Manager) Sweep(now time.Time) int {
	if m.cfg.IdleTimeout <= 0 {
		return 0
	}
	cutoff := now.Add(-m.cfg.IdleTimeout)

	m.mu.Lock()
	evicted := 0
	for id, e := range m.stores {
		if e.lastUsed.Before(cutoff) {
			delete(m.stores, id)
			evicted++
		}
	}
	open := len(m.stores)
	m.mu.Unlock()

	if evicted > 0 {
		m.logger.Debug("idle sessions evicted", zap.Int("count", evicted), zap.Int("open", open))
		if m.cfg.OnSweep != nil {
			m.cfg.OnSweep(open)
		}
	}
	return evicted
}

// Run sweeps idle sessions every SweepInterval until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) error {
	if m.cfg.IdleTimeout <= 0 {
		<-ctx.Done()
		return nil
	}
	ticker := time.NewTicker(m.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			m.Sweep(m.now())
		}
	}
}

// Evict drops the in-memory store for sessionID. Its snapshot is kept.
func (m *Manager) Evict(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.stores, sessionID)
}

// Len returns the number of open sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.stores)
}
