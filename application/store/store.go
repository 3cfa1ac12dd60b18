// Package store holds the per-viewer application state: the question
// graph, the signed-in member and the list filters.
package store

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"stackecho/application/ports"
	"stackecho/domain/core/entities"
	"stackecho/domain/core/valueobjects"
	"stackecho/domain/events"
	"stackecho/domain/specifications"
)

const defaultPersistTimeout = 5 * time.Second

// Filters is the list view state. It is never persisted.
type Filters struct {
	SearchQuery  string                `json:"searchQuery"`
	SelectedTags []string              `json:"selectedTags"`
	SortBy       valueobjects.SortMode `json:"sortBy"`
}

// AuthoredAnswer pairs an answer with the question it was posted on.
type AuthoredAnswer struct {
	QuestionID    string          `json:"questionId"`
	QuestionTitle string          `json:"questionTitle"`
	Answer        entities.Answer `json:"answer"`
}

// Store is the application state for one viewer. Operations whose
// preconditions fail are silent no-ops.
type Store struct {
	mu              sync.RWMutex
	currentUser     *entities.User
	isAuthenticated bool
	questions       []entities.Question
	filters         Filters

	key            string
	snapshots      ports.SnapshotStore
	persistTimeout time.Duration
	persistMu      sync.Mutex
	version        uint64
	persisted      uint64

	subMu       sync.RWMutex
	subscribers map[uint64]func(events.DomainEvent)
	nextSub     uint64

	seed   func() []entities.Question
	now    func() time.Time
	newID  func() string
	logger *zap.Logger
}

// New creates a store holding the seed questions and no viewer.
func New(opts ...Option) *Store {
	s := &Store{
		key:            ports.DefaultStorageName,
		persistTimeout: defaultPersistTimeout,
		subscribers:    make(map[uint64]func(events.DomainEvent)),
		seed:           SeedQuestions,
		now:            func() time.Time { return time.Now().UTC() },
		newID:          defaultID,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.questions = s.seed()
	s.filters = Filters{SelectedTags: []string{}, SortBy: valueobjects.SortNewest}
	return s
}

// Key returns the snapshot slot this store persists to.
func (s *Store) Key() string {
	return s.key
}

// Restore replaces the persisted fields with the stored snapshot. An absent,
// unreadable or corrupt snapshot leaves the seed state in place and is
// reported by the false return value.
func (s *Store) Restore(ctx context.Context) bool {
	if s.snapshots == nil {
		return false
	}

	snap, err := s.snapshots.Load(ctx, s.key)
	if err != nil {
		s.logger.Warn("snapshot unavailable, using seed data",
			zap.String("key", s.key),
			zap.Error(err))
		return false
	}
	if snap == nil {
		s.logger.Debug("no snapshot stored, using seed data", zap.String("key", s.key))
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.applySnapshotLocked(snap)
	return true
}

func (s *Store) applySnapshotLocked(snap *ports.Snapshot) {
	if snap.CurrentUser != nil {
		u := snap.CurrentUser.Clone()
		s.currentUser = &u
	} else {
		s.currentUser = nil
	}
	s.isAuthenticated = snap.IsAuthenticated
	s.questions = entities.CloneQuestions(snap.Questions)
}

// Snapshot returns a copy of the persisted fields.
func (s *Store) Snapshot() *ports.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() *ports.Snapshot {
	snap := &ports.Snapshot{
		IsAuthenticated: s.isAuthenticated,
		Questions:       entities.CloneQuestions(s.questions),
	}
	if s.currentUser != nil {
		u := s.currentUser.Clone()
		snap.CurrentUser = &u
	}
	return snap
}

// Reset drops the viewer and restores the seed questions.
func (s *Store) Reset() {
	s.mutate(func() (events.DomainEvent, bool) {
		s.currentUser = nil
		s.isAuthenticated = false
		s.questions = s.seed()
		return nil, true
	})
}

// Subscribe registers fn for every event emitted by a mutation. The returned
// function removes the subscription.
func (s *Store) Subscribe(fn func(events.DomainEvent)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subscribers[id] = fn
	s.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subscribers, id)
			s.subMu.Unlock()
		})
	}
}

// mutate runs fn under the write lock. When fn reports a change to the
// persisted fields, the snapshot is written and the event published after
// the lock is released.
func (s *Store) mutate(fn func() (events.DomainEvent, bool)) {
	s.mu.Lock()
	event, changed := fn()
	if !changed {
		s.mu.Unlock()
		return
	}
	s.version++
	version := s.version
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.persist(snap, version)
	if event != nil {
		s.publish(event)
	}
}

func (s *Store) persist(snap *ports.Snapshot, version uint64) {
	if s.snapshots == nil {
		return
	}

	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	// A later version already reached the slot.
	if version <= s.persisted {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.persistTimeout)
	defer cancel()
	if err := s.snapshots.Save(ctx, s.key, snap); err != nil {
		s.logger.Warn("failed to persist snapshot",
			zap.String("key", s.key),
			zap.Uint64("version", version),
			zap.Error(err))
		return
	}
	s.persisted = version
}

func (s *Store) publish(event events.DomainEvent) {
	s.subMu.RLock()
	subs := make([]func(events.DomainEvent), 0, len(s.subscribers))
	for _, fn := range s.subscribers {
		subs = append(subs, fn)
	}
	s.subMu.RUnlock()

	for _, fn := range subs {
		fn(event)
	}
}

func (s *Store) findLocked(questionID string) *entities.Question {
	for i := range s.questions {
		if s.questions[i].ID == questionID {
			return &s.questions[i]
		}
	}
	return nil
}

// Login signs user in.
func (s *Store) Login(user entities.User) {
	s.mutate(func() (events.DomainEvent, bool) {
		u := user.Clone()
		s.currentUser = &u
		s.isAuthenticated = true
		return events.NewUserLoggedIn(u.ID, u.Username, s.now()), true
	})
}

// Logout clears the viewer. Content is untouched.
func (s *Store) Logout() {
	s.mutate(func() (events.DomainEvent, bool) {
		var userID string
		if s.currentUser != nil {
			userID = s.currentUser.ID
		}
		s.currentUser = nil
		s.isAuthenticated = false
		return events.NewUserLoggedOut(userID, s.now()), true
	})
}

// Register creates a member from data and signs them in.
func (s *Store) Register(data entities.Registration) entities.User {
	created, _ := s.RegisterWith(data, nil)
	return created
}

// RegisterWith is Register gated on reserve, which sees the new member
// before the viewer changes. When reserve fails the store is untouched
// and no event is emitted.
func (s *Store) RegisterWith(data entities.Registration, reserve func(entities.User) error) (entities.User, error) {
	var (
		created entities.User
		err     error
	)
	s.mutate(func() (events.DomainEvent, bool) {
		now := s.now()
		u := entities.NewUserFromRegistration(data, s.newID(), now)
		if reserve != nil {
			if err = reserve(u); err != nil {
				return nil, false
			}
		}
		created = u
		cur := u.Clone()
		s.currentUser = &cur
		s.isAuthenticated = true
		return events.NewUserRegistered(u.ID, u.Username, u.Email, now), true
	})
	return created, err
}

// AddQuestion posts draft as the current viewer at the top of the list.
// The bool is false when nobody is signed in.
func (s *Store) AddQuestion(draft entities.QuestionDraft) (entities.Question, bool) {
	var (
		created entities.Question
		ok      bool
	)
	s.mutate(func() (events.DomainEvent, bool) {
		if s.currentUser == nil {
			return nil, false
		}
		now := s.now()
		created = entities.NewQuestion(s.newID(), draft, *s.currentUser, now)
		s.questions = append([]entities.Question{created.Clone()}, s.questions...)
		ok = true
		return events.NewQuestionAsked(created.ID, created.Author.ID, created.Title, created.Tags, now), true
	})
	return created, ok
}

// VoteQuestion applies the viewer's vote action to a question.
func (s *Store) VoteQuestion(questionID string, dir valueobjects.VoteDirection) {
	s.mutate(func() (events.DomainEvent, bool) {
		if s.currentUser == nil || !dir.IsValid() {
			return nil, false
		}
		q := s.findLocked(questionID)
		if q == nil {
			return nil, false
		}
		q.Vote(dir)
		return events.NewQuestionVoted(q.ID, q.Votes, string(q.UserVote), s.now()), true
	})
}

// BookmarkQuestion flips the viewer's bookmark on a question.
func (s *Store) BookmarkQuestion(questionID string) {
	s.mutate(func() (events.DomainEvent, bool) {
		q := s.findLocked(questionID)
		if q == nil {
			return nil, false
		}
		q.IsBookmarked = !q.IsBookmarked
		return events.NewQuestionBookmarked(q.ID, q.IsBookmarked, s.now()), true
	})
}

// IncrementViews counts one view of a question.
func (s *Store) IncrementViews(questionID string) {
	s.mutate(func() (events.DomainEvent, bool) {
		q := s.findLocked(questionID)
		if q == nil {
			return nil, false
		}
		q.Views++
		return events.NewQuestionViewed(q.ID, q.Views, s.now()), true
	})
}

// AddAnswer appends an answer by the current viewer and bumps the
// question's updatedAt. The bool is false when nobody is signed in or the
// question does not exist.
func (s *Store) AddAnswer(questionID, content string) (entities.Answer, bool) {
	var (
		created entities.Answer
		ok      bool
	)
	s.mutate(func() (events.DomainEvent, bool) {
		if s.currentUser == nil {
			return nil, false
		}
		q := s.findLocked(questionID)
		if q == nil {
			return nil, false
		}
		now := s.now()
		created = entities.NewAnswer(s.newID(), content, *s.currentUser, now)
		q.AddAnswer(created.Clone())
		ok = true
		return events.NewAnswerPosted(q.ID, created.ID, created.Author.ID, now), true
	})
	return created, ok
}

// VoteAnswer applies the viewer's vote action to an answer.
func (s *Store) VoteAnswer(questionID, answerID string, dir valueobjects.VoteDirection) {
	s.mutate(func() (events.DomainEvent, bool) {
		if s.currentUser == nil || !dir.IsValid() {
			return nil, false
		}
		q := s.findLocked(questionID)
		if q == nil {
			return nil, false
		}
		a := q.FindAnswer(answerID)
		if a == nil {
			return nil, false
		}
		a.Vote(dir)
		return events.NewAnswerVoted(q.ID, a.ID, a.Votes, string(a.UserVote), s.now()), true
	})
}

// AcceptAnswer toggles the accepted flag of answerID and clears it on the
// question's other answers. Authorization is the caller's concern.
func (s *Store) AcceptAnswer(questionID, answerID string) {
	s.mutate(func() (events.DomainEvent, bool) {
		q := s.findLocked(questionID)
		if q == nil {
			return nil, false
		}
		q.ToggleAccepted(answerID)
		var acceptedID string
		if a, ok := q.AcceptedAnswer(); ok {
			acceptedID = a.ID
		}
		return events.NewAnswerAccepted(q.ID, acceptedID, s.now()), true
	})
}

// SetSearchQuery sets the list search text.
func (s *Store) SetSearchQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters.SearchQuery = query
}

// SetSelectedTags sets the list tag filter.
func (s *Store) SetSelectedTags(tags []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters.SelectedTags = append([]string{}, tags...)
}

// SetSortBy sets the list ordering.
func (s *Store) SetSortBy(mode valueobjects.SortMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters.SortBy = mode
}

// SetFilters replaces the whole list view state.
func (s *Store) SetFilters(f Filters) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filters = Filters{
		SearchQuery:  f.SearchQuery,
		SelectedTags: append([]string{}, f.SelectedTags...),
		SortBy:       f.SortBy,
	}
}

// Filters returns the current list view state.
func (s *Store) Filters() Filters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Filters{
		SearchQuery:  s.filters.SearchQuery,
		SelectedTags: append([]string{}, s.filters.SelectedTags...),
		SortBy:       s.filters.SortBy,
	}
}

// FilteredQuestions returns the questions passing the current filters in
// the current order. The stored list is not reordered.
func (s *Store) FilteredQuestions() []entities.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FilterQuestions(s.questions, s.filters)
}

// Query runs the list pipeline with f instead of the stored filters.
func (s *Store) Query(f Filters) []entities.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return FilterQuestions(s.questions, f)
}

// FilterQuestions keeps questions matching the search text and any selected
// tag, then orders them by mode. Ties keep stored order. The unanswered mode
// filters instead of sorting. The result is a deep copy.
func FilterQuestions(questions []entities.Question, f Filters) []entities.Question {
	spec := specifications.NewSearchSpec(f.SearchQuery).And(specifications.NewHasAnyTagSpec(f.SelectedTags))

	matched := make([]*entities.Question, 0, len(questions))
	for i := range questions {
		if spec.IsSatisfiedBy(&questions[i]) {
			matched = append(matched, &questions[i])
		}
	}

	switch f.SortBy {
	case valueobjects.SortNewest:
		slices.SortStableFunc(matched, func(a, b *entities.Question) int {
			return b.CreatedAt.Compare(a.CreatedAt)
		})
	case valueobjects.SortActive:
		slices.SortStableFunc(matched, func(a, b *entities.Question) int {
			return b.UpdatedAt.Compare(a.UpdatedAt)
		})
	case valueobjects.SortVotes:
		slices.SortStableFunc(matched, func(a, b *entities.Question) int {
			return cmp.Compare(b.Votes, a.Votes)
		})
	case valueobjects.SortUnanswered:
		matched = specifications.Filter(matched, specifications.NewUnansweredSpec())
	}

	out := make([]entities.Question, len(matched))
	for i, q := range matched {
		out[i] = q.Clone()
	}
	return out
}

// QuestionByID looks up a question.
func (s *Store) QuestionByID(id string) (entities.Question, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, q := range s.questions {
		if q.ID == id {
			return q.Clone(), true
		}
	}
	return entities.Question{}, false
}

// CurrentUser returns the signed-in member, if any.
func (s *Store) CurrentUser() (entities.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentUser == nil {
		return entities.User{}, false
	}
	return s.currentUser.Clone(), true
}

// IsAuthenticated reports the persisted authentication flag.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isAuthenticated
}

// Questions returns every question in stored order.
func (s *Store) Questions() []entities.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return entities.CloneQuestions(s.questions)
}

// QuestionsByAuthor returns the questions posted by userID in stored order.
func (s *Store) QuestionsByAuthor(userID string) []entities.Question {
	return s.selectQuestions(specifications.NewAuthoredBySpec(userID))
}

// BookmarkedQuestions returns the questions the viewer bookmarked.
func (s *Store) BookmarkedQuestions() []entities.Question {
	return s.selectQuestions(specifications.NewBookmarkedSpec())
}

func (s *Store) selectQuestions(spec specifications.QuestionSpecification) []entities.Question {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []entities.Question{}
	for i := range s.questions {
		if spec.IsSatisfiedBy(&s.questions[i]) {
			out = append(out, s.questions[i].Clone())
		}
	}
	return out
}

// AnswersByAuthor returns every answer posted by userID with its question.
func (s *Store) AnswersByAuthor(userID string) []AuthoredAnswer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []AuthoredAnswer{}
	for _, q := range s.questions {
		for _, a := range q.Answers {
			if a.Author.ID == userID {
				out = append(out, AuthoredAnswer{
					QuestionID:    q.ID,
					QuestionTitle: q.Title,
					Answer:        a.Clone(),
				})
			}
		}
	}
	return out
}
