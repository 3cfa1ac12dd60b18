package ports

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"stackecho/domain/core/entities"
)

// DefaultStorageName is the fixed name of the durable snapshot slot.
const DefaultStorageName = "stack-echo-storage"

// ErrCorruptSnapshot is returned when a stored blob cannot be decoded.
var ErrCorruptSnapshot = errors.New("corrupt snapshot")

// Snapshot is the persisted part of a viewer session. It is an internal
// blob with no schema version; readers fall back to seed data when it
// cannot be decoded.
type Snapshot struct {
	CurrentUser     *entities.User      `json:"currentUser"`
	IsAuthenticated bool                `json:"isAuthenticated"`
	Questions       []entities.Question `json:"questions"`
}

// SnapshotStore is a durable key-value slot for session snapshots.
// Load returns (nil, nil) when no snapshot exists under key.
type SnapshotStore interface {
	Load(ctx context.Context, key string) (*Snapshot, error)
	Save(ctx context.Context, key string, snapshot *Snapshot) error
	Delete(ctx context.Context, key string) error
}

// EncodeSnapshot serializes a snapshot for storage.
func EncodeSnapshot(s *Snapshot) ([]byte, error) {
	if s == nil {
		return nil, fmt.Errorf("nil snapshot")
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses a stored blob. Any decode failure is reported as
// ErrCorruptSnapshot.
func DecodeSnapshot(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	if s.Questions == nil {
		s.Questions = []entities.Question{}
	}
	return &s, nil
}

// SessionKey derives the slot key for one session.
func SessionKey(storageName, sessionID string) string {
	if storageName == "" {
		storageName = DefaultStorageName
	}
	if sessionID == "" {
		return storageName
	}
	return storageName + "/" + sessionID
}
