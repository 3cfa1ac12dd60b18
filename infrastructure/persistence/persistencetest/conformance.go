// Package persistencetest holds the behaviour every snapshot store shares.
package persistencetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stackecho/application/ports"
	"stackecho/domain/core/entities"
	"stackecho/domain/core/valueobjects"
)

// SampleSnapshot returns a snapshot touching every persisted field.
func SampleSnapshot() *ports.Snapshot {
	at := time.Date(2024, time.January, 15, 10, 30, 0, 0, time.UTC)
	author := entities.User{
		ID:         "1",
		Username:   "john_doe",
		Email:      "john@example.com",
		Avatar:     entities.DefaultAvatar,
		Reputation: 1250,
		JoinDate:   time.Date(2023, time.January, 15, 0, 0, 0, 0, time.UTC),
		Badges:     []string{"Contributor", "Helper"},
	}
	return &ports.Snapshot{
		CurrentUser:     &author,
		IsAuthenticated: true,
		Questions: []entities.Question{
			{
				ID:           "1",
				Title:        "How to implement authentication in Next.js 14?",
				Content:      "Looking for session management advice.",
				Author:       author,
				Votes:        16,
				Views:        128,
				Tags:         []string{"nextjs", "react"},
				CreatedAt:    at,
				UpdatedAt:    at.Add(time.Hour),
				IsBookmarked: true,
				UserVote:     valueobjects.VoteUp,
				Answers: []entities.Answer{
					{
						ID:         "a1",
						Content:    "Use Auth.js with the app router.",
						Author:     author,
						Votes:      22,
						CreatedAt:  at.Add(time.Hour),
						IsAccepted: true,
						UserVote:   valueobjects.VoteDown,
					},
				},
			},
		},
	}
}

// Run exercises load, save, overwrite and delete against store.
func Run(t *testing.T, store ports.SnapshotStore) {
	t.Helper()
	ctx := context.Background()

	t.Run("absent key loads nil", func(t *testing.T) {
		snap, err := store.Load(ctx, "missing")
		require.NoError(t, err)
		assert.Nil(t, snap)
	})

	t.Run("round trip", func(t *testing.T) {
		want := SampleSnapshot()
		require.NoError(t, store.Save(ctx, "stack-echo-storage/s1", want))

		got, err := store.Load(ctx, "stack-echo-storage/s1")
		require.NoError(t, err)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("snapshot mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("overwrite", func(t *testing.T) {
		first := SampleSnapshot()
		require.NoError(t, store.Save(ctx, "k", first))
		second := SampleSnapshot()
		second.CurrentUser = nil
		second.IsAuthenticated = false
		second.Questions[0].Votes = 15
		require.NoError(t, store.Save(ctx, "k", second))

		got, err := store.Load(ctx, "k")
		require.NoError(t, err)
		assert.Nil(t, got.CurrentUser)
		assert.False(t, got.IsAuthenticated)
		assert.Equal(t, 15, got.Questions[0].Votes)
	})

	t.Run("keys are independent", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "a", &ports.Snapshot{Questions: []entities.Question{}}))
		require.NoError(t, store.Save(ctx, "b", SampleSnapshot()))

		a, err := store.Load(ctx, "a")
		require.NoError(t, err)
		assert.Empty(t, a.Questions)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, "gone", SampleSnapshot()))
		require.NoError(t, store.Delete(ctx, "gone"))
		require.NoError(t, store.Delete(ctx, "gone"))

		snap, err := store.Load(ctx, "gone")
		require.NoError(t, err)
		assert.Nil(t, snap)
	})
}
