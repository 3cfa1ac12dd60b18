// Package memory keeps snapshots in process memory.
package memory

import (
	"context"
	"sort"
	"sync"

	"stackecho/application/ports"
)

// Store is a map-backed snapshot store. Snapshots are held encoded so that
// callers never share state with the store.
type Store struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{blobs: make(map[string][]byte)}
}

// Load implements ports.SnapshotStore.
func (s *Store) Load(ctx context.Context, key string) (*ports.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	data, ok := s.blobs[key]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return ports.DecodeSnapshot(data)
}

// Save implements ports.SnapshotStore.
func (s *Store) Save(ctx context.Context, key string, snapshot *ports.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := ports.EncodeSnapshot(snapshot)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.blobs[key] = data
	s.mu.Unlock()
	return nil
}

// Delete implements ports.SnapshotStore.
func (s *Store) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.blobs, key)
	s.mu.Unlock()
	return nil
}

// Keys lists stored keys in order.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.blobs))
	for k := range s.blobs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Put stores raw bytes under key.
func (s *Store) Put(key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = append([]byte(nil), data...)
}

var _ ports.SnapshotStore = (*Store)(nil)
