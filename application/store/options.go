package store

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"stackecho/application/ports"
	"stackecho/domain/core/entities"
)

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for persistence warnings.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source used for createdAt, updatedAt and joinDate.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// WithIDGenerator overrides the generator used for user, question and answer ids.
func WithIDGenerator(gen func() string) Option {
	return func(s *Store) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// WithSnapshotStore binds the store to a durable slot under key.
func WithSnapshotStore(snapshots ports.SnapshotStore, key string) Option {
	return func(s *Store) {
		s.snapshots = snapshots
		if key != "" {
			s.key = key
		}
	}
}

// WithPersistTimeout bounds each snapshot write.
func WithPersistTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.persistTimeout = d
		}
	}
}

// WithSeed replaces the built-in seed questions.
func WithSeed(questions []entities.Question) Option {
	return func(s *Store) {
		s.seed = func() []entities.Question { return entities.CloneQuestions(questions) }
	}
}

func defaultID() string {
	return uuid.NewString()
}
