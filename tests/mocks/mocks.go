// Package mocks provides testify mocks for the application ports.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"stackecho/application/ports"
	"stackecho/domain/events"
)

// MockSnapshotStore mocks ports.SnapshotStore.
type MockSnapshotStore struct {
	mock.Mock
}

func (m *MockSnapshotStore) Load(ctx context.Context, key string) (*ports.Snapshot, error) {
	args := m.Called(ctx, key)
	snap, _ := args.Get(0).(*ports.Snapshot)
	return snap, args.Error(1)
}

func (m *MockSnapshotStore) Save(ctx context.Context, key string, snapshot *ports.Snapshot) error {
	args := m.Called(ctx, key, snapshot)
	return args.Error(0)
}

func (m *MockSnapshotStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// MockEventPublisher mocks ports.EventPublisher.
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

var (
	_ ports.SnapshotStore  = (*MockSnapshotStore)(nil)
	_ ports.EventPublisher = (*MockEventPublisher)(nil)
)
