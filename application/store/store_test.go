package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"stackecho/application/ports"
	"stackecho/domain/core/entities"
	"stackecho/domain/core/valueobjects"
	"stackecho/domain/events"
	"stackecho/tests/fixtures"
	"stackecho/tests/mocks"
)

// blobStore keeps encoded snapshots so tests exercise the stored shape.
type blobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
	saves int
}

func newBlobStore() *blobStore {
	return &blobStore{blobs: make(map[string][]byte)}
}

func (b *blobStore) Load(_ context.Context, key string) (*ports.Snapshot, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok := b.blobs[key]
	if !ok {
		return nil, nil
	}
	return ports.DecodeSnapshot(data)
}

func (b *blobStore) Save(_ context.Context, key string, snap *ports.Snapshot) error {
	data, err := ports.EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.blobs[key] = data
	b.saves++
	return nil
}

func (b *blobStore) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.blobs, key)
	return nil
}

func newTestStore(opts ...Option) *Store {
	base := []Option{
		WithClock(fixtures.FixedClock(fixtures.BaseTime)),
		WithIDGenerator(fixtures.SequentialIDs("id")),
	}
	return New(append(base, opts...)...)
}

func loggedIn(opts ...Option) *Store {
	s := newTestStore(opts...)
	s.Login(SeedUsers()[0])
	return s
}

func votesOf(t *testing.T, s *Store, id string) int {
	t.Helper()
	q, ok := s.QuestionByID(id)
	require.True(t, ok)
	return q.Votes
}

func ids(qs []entities.Question) []string {
	out := make([]string, len(qs))
	for i, q := range qs {
		out[i] = q.ID
	}
	return out
}

func TestNew_StartsWithSeedAndNoViewer(t *testing.T) {
	s := newTestStore()

	_, ok := s.CurrentUser()
	assert.False(t, ok)
	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, []string{"1", "2", "3"}, ids(s.Questions()))
	assert.Equal(t, valueobjects.SortNewest, s.Filters().SortBy)
}

func TestVoteQuestion_RetractRestoresTally(t *testing.T) {
	// Arrange
	s := loggedIn()
	require.Equal(t, 15, votesOf(t, s, "1"))

	// Act & Assert
	s.VoteQuestion("1", valueobjects.VoteUp)
	assert.Equal(t, 16, votesOf(t, s, "1"))
	q, _ := s.QuestionByID("1")
	assert.Equal(t, valueobjects.VoteUp, q.UserVote)

	s.VoteQuestion("1", valueobjects.VoteUp)
	assert.Equal(t, 15, votesOf(t, s, "1"))
	q, _ = s.QuestionByID("1")
	assert.Equal(t, valueobjects.VoteNone, q.UserVote)
}

func TestVoteQuestion_SwitchMovesByTwo(t *testing.T) {
	s := loggedIn()

	s.VoteQuestion("1", valueobjects.VoteUp)
	s.VoteQuestion("1", valueobjects.VoteDown)

	assert.Equal(t, 14, votesOf(t, s, "1"))
	q, _ := s.QuestionByID("1")
	assert.Equal(t, valueobjects.VoteDown, q.UserVote)
}

func TestVoteQuestion_NoViewerIsNoop(t *testing.T) {
	// Arrange
	snapshots := newBlobStore()
	s := newTestStore(WithSnapshotStore(snapshots, "k"))

	// Act
	s.VoteQuestion("1", valueobjects.VoteUp)

	// Assert
	assert.Equal(t, 15, votesOf(t, s, "1"))
	assert.Zero(t, snapshots.saves)
}

func TestVoteQuestion_UnknownIDAndInvalidDirection(t *testing.T) {
	s := loggedIn()
	before := s.Questions()

	s.VoteQuestion("missing", valueobjects.VoteUp)
	s.VoteQuestion("1", valueobjects.VoteDirection("sideways"))

	assert.Empty(t, cmp.Diff(before, s.Questions()))
}

func TestVoteAnswer_StateMachine(t *testing.T) {
	s := loggedIn()

	s.VoteAnswer("1", "a1", valueobjects.VoteDown)
	q, _ := s.QuestionByID("1")
	assert.Equal(t, 22, q.Answers[0].Votes)
	assert.Equal(t, valueobjects.VoteDown, q.Answers[0].UserVote)

	s.VoteAnswer("1", "a1", valueobjects.VoteUp)
	q, _ = s.QuestionByID("1")
	assert.Equal(t, 24, q.Answers[0].Votes)

	s.VoteAnswer("1", "missing", valueobjects.VoteUp)
	q, _ = s.QuestionByID("1")
	assert.Equal(t, 24, q.Answers[0].Votes)
}

func TestAcceptAnswer_Toggle(t *testing.T) {
	// Arrange
	s := loggedIn()
	added, ok := s.AddAnswer("1", "A second approach that uses middleware to guard routes.")
	require.True(t, ok)

	// Act: re-accepting the accepted answer clears it
	s.AcceptAnswer("1", "a1")

	// Assert
	q, _ := s.QuestionByID("1")
	_, hasAccepted := q.AcceptedAnswer()
	assert.False(t, hasAccepted)

	// Act: accepting another answer makes it the only accepted one
	s.AcceptAnswer("1", added.ID)
	q, _ = s.QuestionByID("1")
	accepted, hasAccepted := q.AcceptedAnswer()
	require.True(t, hasAccepted)
	assert.Equal(t, added.ID, accepted.ID)
	assert.False(t, q.Answers[0].IsAccepted)

	// Act: switching back
	s.AcceptAnswer("1", "a1")
	q, _ = s.QuestionByID("1")
	assert.True(t, q.Answers[0].IsAccepted)
	assert.False(t, q.Answers[1].IsAccepted)
}

func TestAcceptAnswer_UnknownAnswerClearsAll(t *testing.T) {
	s := newTestStore()

	s.AcceptAnswer("1", "missing")

	q, _ := s.QuestionByID("1")
	_, hasAccepted := q.AcceptedAnswer()
	assert.False(t, hasAccepted)
}

func TestAddQuestion_PrependsAuthoredByViewer(t *testing.T) {
	// Arrange
	s := loggedIn()
	draft := entities.QuestionDraft{
		Title:   "Why does my goroutine leak?",
		Content: "A worker never exits after the channel is closed and I cannot see why.",
		Tags:    []string{"go", "concurrency"},
	}

	// Act
	q, ok := s.AddQuestion(draft)

	// Assert
	require.True(t, ok)
	assert.Equal(t, "id-1", q.ID)
	assert.Equal(t, "john_doe", q.Author.Username)
	assert.Equal(t, fixtures.BaseTime, q.CreatedAt)
	assert.Equal(t, fixtures.BaseTime, q.UpdatedAt)
	assert.Zero(t, q.Votes)
	assert.Zero(t, q.Views)
	assert.Empty(t, q.Answers)
	assert.Equal(t, []string{"id-1", "1", "2", "3"}, ids(s.Questions()))
}

func TestAddQuestion_NoViewerIsNoop(t *testing.T) {
	s := newTestStore()

	_, ok := s.AddQuestion(entities.QuestionDraft{Title: "Title long enough", Content: strings.Repeat("x", 40)})

	assert.False(t, ok)
	assert.Len(t, s.Questions(), 3)
}

func TestAddAnswer_AppendsAndBumpsUpdatedAt(t *testing.T) {
	s := loggedIn()

	a, ok := s.AddAnswer("3", "Start with strict mode and a layered project structure.")

	require.True(t, ok)
	q, _ := s.QuestionByID("3")
	require.Len(t, q.Answers, 1)
	assert.Equal(t, a.ID, q.Answers[0].ID)
	assert.False(t, q.Answers[0].IsAccepted)
	assert.Equal(t, fixtures.BaseTime, q.UpdatedAt)

	s.SetSortBy(valueobjects.SortActive)
	assert.Equal(t, []string{"3", "1", "2"}, ids(s.FilteredQuestions()))
}

func TestAddAnswer_Preconditions(t *testing.T) {
	anonymous := newTestStore()
	_, ok := anonymous.AddAnswer("1", "content")
	assert.False(t, ok)

	viewer := loggedIn()
	_, ok = viewer.AddAnswer("missing", "content")
	assert.False(t, ok)
}

func TestBookmarkAndViews(t *testing.T) {
	s := newTestStore()

	s.BookmarkQuestion("2")
	s.IncrementViews("2")
	s.IncrementViews("2")

	q, _ := s.QuestionByID("2")
	assert.True(t, q.IsBookmarked)
	assert.Equal(t, 91, q.Views)
	assert.Equal(t, []string{"2"}, ids(s.BookmarkedQuestions()))

	s.BookmarkQuestion("2")
	assert.Empty(t, s.BookmarkedQuestions())
}

func TestFilteredQuestions_SearchIsCaseInsensitive(t *testing.T) {
	s := newTestStore()

	for _, query := range []string{"typescript", "TypeScript", "TYPESCRIPT"} {
		t.Run(query, func(t *testing.T) {
			s.SetSearchQuery(query)
			assert.Equal(t, []string{"3"}, ids(s.FilteredQuestions()))
		})
	}
}

func TestFilteredQuestions_Pipeline(t *testing.T) {
	tests := []struct {
		name    string
		filters Filters
		want    []string
	}{
		{name: "newest", filters: Filters{SortBy: valueobjects.SortNewest}, want: []string{"1", "2", "3"}},
		{name: "votes", filters: Filters{SortBy: valueobjects.SortVotes}, want: []string{"3", "1", "2"}},
		{name: "active", filters: Filters{SortBy: valueobjects.SortActive}, want: []string{"1", "2", "3"}},
		{name: "unanswered", filters: Filters{SortBy: valueobjects.SortUnanswered}, want: []string{"3"}},
		{name: "tag react", filters: Filters{SelectedTags: []string{"react"}, SortBy: valueobjects.SortNewest}, want: []string{"1", "2"}},
		{name: "any tag", filters: Filters{SelectedTags: []string{"hooks", "nodejs"}, SortBy: valueobjects.SortVotes}, want: []string{"3", "2"}},
		{name: "tag match is exact", filters: Filters{SelectedTags: []string{"React"}}, want: []string{}},
		{name: "search and tag", filters: Filters{SearchQuery: "auth", SelectedTags: []string{"react"}}, want: []string{"1"}},
		{name: "search in body", filters: Filters{SearchQuery: "useeffect"}, want: []string{}},
		{name: "search in tag", filters: Filters{SearchQuery: "app-rout"}, want: []string{"1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore()
			s.SetFilters(tt.filters)

			assert.Equal(t, tt.want, ids(s.FilteredQuestions()))
		})
	}
}

func TestFilteredQuestions_DoesNotReorderStore(t *testing.T) {
	s := newTestStore()
	s.SetSortBy(valueobjects.SortVotes)

	_ = s.FilteredQuestions()

	assert.Equal(t, []string{"1", "2", "3"}, ids(s.Questions()))
}

func TestFilteredQuestions_TiesKeepStoredOrder(t *testing.T) {
	qs := []entities.Question{
		fixtures.NewQuestionBuilder().WithID("a").WithVotes(5).Build(),
		fixtures.NewQuestionBuilder().WithID("b").WithVotes(5).Build(),
		fixtures.NewQuestionBuilder().WithID("c").WithVotes(9).Build(),
	}

	got := FilterQuestions(qs, Filters{SortBy: valueobjects.SortVotes})

	assert.Equal(t, []string{"c", "a", "b"}, ids(got))
}

func TestQuestionByID_ReturnsCopy(t *testing.T) {
	s := newTestStore()

	q, ok := s.QuestionByID("1")
	require.True(t, ok)
	q.Tags[0] = "mutated"
	q.Answers[0].Votes = 999

	again, _ := s.QuestionByID("1")
	assert.Equal(t, "nextjs", again.Tags[0])
	assert.Equal(t, 23, again.Answers[0].Votes)

	_, ok = s.QuestionByID("missing")
	assert.False(t, ok)
}

func TestRegister_SignsInNewMember(t *testing.T) {
	s := newTestStore()

	u := s.Register(entities.Registration{Username: "newbie", Email: "newbie@example.com"})

	assert.Equal(t, "id-1", u.ID)
	assert.Equal(t, 1, u.Reputation)
	assert.Equal(t, []string{entities.BadgeNewMember}, u.Badges)
	assert.Equal(t, fixtures.BaseTime, u.JoinDate)
	current, ok := s.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, u.ID, current.ID)
	assert.True(t, s.IsAuthenticated())
}

func TestRegisterWith_RejectedKeepsViewer(t *testing.T) {
	// Arrange
	snapshots := newBlobStore()
	s := loggedIn(WithSnapshotStore(snapshots, "k"))
	savesBefore := snapshots.saves
	var emitted []string
	s.Subscribe(func(e events.DomainEvent) { emitted = append(emitted, e.GetEventType()) })
	taken := errors.New("email taken")

	// Act
	_, err := s.RegisterWith(entities.Registration{Username: "newbie", Email: "newbie@example.com"}, func(entities.User) error {
		return taken
	})

	// Assert
	assert.ErrorIs(t, err, taken)
	current, ok := s.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, SeedUsers()[0].ID, current.ID)
	assert.True(t, s.IsAuthenticated())
	assert.Empty(t, emitted)
	assert.Equal(t, savesBefore, snapshots.saves)
}

func TestRegisterWith_ReserveSeesNewMember(t *testing.T) {
	s := newTestStore()
	var reserved entities.User

	u, err := s.RegisterWith(entities.Registration{Username: "newbie", Email: "newbie@example.com"}, func(candidate entities.User) error {
		reserved = candidate
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, u.ID, reserved.ID)
	current, ok := s.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, u.ID, current.ID)
}

func TestLogout_KeepsContent(t *testing.T) {
	s := loggedIn()
	_, _ = s.AddQuestion(entities.QuestionDraft{Title: "A question that stays", Content: strings.Repeat("y", 40)})

	s.Logout()

	_, ok := s.CurrentUser()
	assert.False(t, ok)
	assert.False(t, s.IsAuthenticated())
	assert.Len(t, s.Questions(), 4)
}

func TestAuthoredQueries(t *testing.T) {
	s := newTestStore()

	assert.Equal(t, []string{"1", "3"}, ids(s.QuestionsByAuthor("1")))
	answers := s.AnswersByAuthor("2")
	require.Len(t, answers, 2)
	assert.Equal(t, "1", answers[0].QuestionID)
	assert.Equal(t, "a2", answers[1].Answer.ID)
	assert.Empty(t, s.AnswersByAuthor("3"))
}

func TestPersistence_RoundTrip(t *testing.T) {
	// Arrange
	ctx := context.Background()
	snapshots := newBlobStore()
	s := loggedIn(WithSnapshotStore(snapshots, "stack-echo-storage/abc"))
	s.VoteQuestion("2", valueobjects.VoteUp)
	s.BookmarkQuestion("3")
	_, _ = s.AddAnswer("3", "Use ts-node for development and compile for production builds.")
	s.SetSearchQuery("react")

	// Act
	restored := newTestStore(WithSnapshotStore(snapshots, "stack-echo-storage/abc"))
	ok := restored.Restore(ctx)

	// Assert
	require.True(t, ok)
	if diff := cmp.Diff(s.Snapshot(), restored.Snapshot()); diff != "" {
		t.Errorf("restored snapshot mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "", restored.Filters().SearchQuery, "filters are not persisted")
}

func TestPersistence_VoteRetractScenario(t *testing.T) {
	ctx := context.Background()
	snapshots := newBlobStore()
	key := ports.SessionKey("", "viewer")

	s := loggedIn(WithSnapshotStore(snapshots, key))
	s.VoteQuestion("1", valueobjects.VoteUp)
	s.VoteQuestion("1", valueobjects.VoteUp)

	reloaded := newTestStore(WithSnapshotStore(snapshots, key))
	require.True(t, reloaded.Restore(ctx))
	q, _ := reloaded.QuestionByID("1")
	assert.Equal(t, 15, q.Votes)
	assert.Equal(t, valueobjects.VoteNone, q.UserVote)
}

func TestPersistence_FilterChangesDoNotWrite(t *testing.T) {
	snapshots := new(mocks.MockSnapshotStore)
	s := newTestStore(WithSnapshotStore(snapshots, "k"))

	s.SetSearchQuery("go")
	s.SetSelectedTags([]string{"react"})
	s.SetSortBy(valueobjects.SortVotes)

	snapshots.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
}

func TestRestore_FallsBackToSeed(t *testing.T) {
	tests := []struct {
		name string
		snap *ports.Snapshot
		err  error
	}{
		{name: "absent"},
		{name: "corrupt", err: ports.ErrCorruptSnapshot},
		{name: "backend down", err: errors.New("connection refused")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			snapshots := new(mocks.MockSnapshotStore)
			snapshots.On("Load", mock.Anything, "k").Return(tt.snap, tt.err)
			s := newTestStore(WithSnapshotStore(snapshots, "k"))

			// Act
			ok := s.Restore(context.Background())

			// Assert
			assert.False(t, ok)
			assert.Equal(t, []string{"1", "2", "3"}, ids(s.Questions()))
			_, hasUser := s.CurrentUser()
			assert.False(t, hasUser)
			snapshots.AssertExpectations(t)
		})
	}
}

func TestRestore_CorruptBlobFromStore(t *testing.T) {
	snapshots := newBlobStore()
	snapshots.blobs["k"] = []byte("{not json")
	s := newTestStore(WithSnapshotStore(snapshots, "k"))

	assert.False(t, s.Restore(context.Background()))
	assert.Len(t, s.Questions(), 3)
}

func TestPersist_FailureIsLoggedNotReturned(t *testing.T) {
	// Arrange
	core, logs := observer.New(zapcore.WarnLevel)
	snapshots := new(mocks.MockSnapshotStore)
	snapshots.On("Save", mock.Anything, "k", mock.AnythingOfType("*ports.Snapshot")).Return(errors.New("disk full"))
	s := newTestStore(WithSnapshotStore(snapshots, "k"), WithLogger(zap.New(core)))

	// Act
	s.Login(SeedUsers()[1])

	// Assert
	assert.True(t, s.IsAuthenticated())
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "failed to persist snapshot", logs.All()[0].Message)
	snapshots.AssertExpectations(t)
}

func TestSubscribe_ReceivesEventsUntilUnsubscribed(t *testing.T) {
	// Arrange
	s := loggedIn()
	var received []string
	unsubscribe := s.Subscribe(func(e events.DomainEvent) {
		received = append(received, e.GetEventType())
	})

	// Act
	s.VoteQuestion("1", valueobjects.VoteUp)
	s.IncrementViews("1")
	s.VoteQuestion("missing", valueobjects.VoteUp)
	unsubscribe()
	unsubscribe()
	s.BookmarkQuestion("1")

	// Assert
	assert.Equal(t, []string{events.TypeQuestionVoted, events.TypeQuestionViewed}, received)
}

func TestSubscribe_EventCarriesTally(t *testing.T) {
	s := loggedIn()
	var got events.QuestionVoted
	s.Subscribe(func(e events.DomainEvent) {
		if v, ok := e.(events.QuestionVoted); ok {
			got = v
		}
	})

	s.VoteQuestion("2", valueobjects.VoteDown)

	assert.Equal(t, "2", got.GetAggregateID())
	assert.Equal(t, 7, got.Votes)
	assert.Equal(t, "down", got.UserVote)
}

func TestReset_RestoresSeed(t *testing.T) {
	s := loggedIn()
	_, _ = s.AddQuestion(entities.QuestionDraft{Title: "Temporary question", Content: strings.Repeat("z", 40)})

	s.Reset()

	assert.False(t, s.IsAuthenticated())
	assert.Equal(t, []string{"1", "2", "3"}, ids(s.Questions()))
}

func TestStore_ConcurrentMutations(t *testing.T) {
	snapshots := newBlobStore()
	s := loggedIn(WithSnapshotStore(snapshots, "k"))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.IncrementViews("1")
			_ = s.FilteredQuestions()
		}()
	}
	wg.Wait()

	q, _ := s.QuestionByID("1")
	assert.Equal(t, 177, q.Views)

	restored := newTestStore(WithSnapshotStore(snapshots, "k"))
	require.True(t, restored.Restore(context.Background()))
	rq, _ := restored.QuestionByID("1")
	assert.Equal(t, 177, rq.Views)
}
