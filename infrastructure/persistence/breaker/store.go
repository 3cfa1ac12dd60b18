// Package breaker guards a snapshot store with a circuit breaker.
package breaker

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"stackecho/application/ports"
)

// ErrUnavailable is returned while the circuit is open.
var ErrUnavailable = errors.New("snapshot store temporarily unavailable")

// Config holds configuration for the circuit breaker
type Config struct {
	Name             string
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultConfig returns a default configuration for the circuit breaker
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		MaxRequests:      1,
		Interval:         30 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      5,
	}
}

// Store wraps a ports.SnapshotStore. Absent snapshots and context
// cancellation do not count as failures.
type Store struct {
	next   ports.SnapshotStore
	cb     *gobreaker.CircuitBreaker
	logger *zap.Logger
}

// Wrap guards next.
func Wrap(next ports.SnapshotStore, cfg Config, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
		},
		IsSuccessful: func(err error) bool {
			var p *passthrough
			return err == nil || errors.As(err, &p) || errors.Is(err, context.Canceled)
		},
	})
	return &Store{next: next, cb: cb, logger: logger}
}

// State reports the breaker state.
func (s *Store) State() gobreaker.State {
	return s.cb.State()
}

func (s *Store) execute(fn func() (interface{}, error)) (interface{}, error) {
	out, err := s.cb.Execute(fn)
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, errors.Join(ErrUnavailable, err)
	}
	return out, err
}

// Load implements ports.SnapshotStore.
func (s *Store) Load(ctx context.Context, key string) (*ports.Snapshot, error) {
	out, err := s.execute(func() (interface{}, error) {
		snap, err := s.next.Load(ctx, key)
		if errors.Is(err, ports.ErrCorruptSnapshot) {
			// The backend answered; the content is the problem.
			return nil, &passthrough{err}
		}
		return snap, err
	})
	var p *passthrough
	if errors.As(err, &p) {
		return nil, p.err
	}
	if err != nil {
		return nil, err
	}
	snap, _ := out.(*ports.Snapshot)
	return snap, nil
}

// Save implements ports.SnapshotStore.
func (s *Store) Save(ctx context.Context, key string, snapshot *ports.Snapshot) error {
	_, err := s.execute(func() (interface{}, error) {
		return nil, s.next.Save(ctx, key, snapshot)
	})
	return err
}

// Delete implements ports.SnapshotStore.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.execute(func() (interface{}, error) {
		return nil, s.next.Delete(ctx, key)
	})
	return err
}

// passthrough carries an error that must not trip the breaker.
type passthrough struct{ err error }

func (p *passthrough) Error() string { return p.err.Error() }

var _ ports.SnapshotStore = (*Store)(nil)
