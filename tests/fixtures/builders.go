package fixtures

import (
	"fmt"
	"time"

	"stackecho/domain/core/entities"
)

// BaseTime is the fixed clock used by fixtures.
var BaseTime = time.Date(2024, time.February, 1, 12, 0, 0, 0, time.UTC)

// FixedClock returns a clock frozen at t.
func FixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

// SequentialIDs returns a generator producing prefix-1, prefix-2, ...
func SequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

// UserBuilder helps create test users with default values
type UserBuilder struct {
	user entities.User
}

func NewUserBuilder() *UserBuilder {
	return &UserBuilder{user: entities.User{
		ID:         "test-user-1",
		Username:   "test_user",
		Email:      "test@example.com",
		Avatar:     entities.DefaultAvatar,
		Reputation: 10,
		JoinDate:   BaseTime.AddDate(-1, 0, 0),
		Badges:     []string{"Helper"},
	}}
}

func (b *UserBuilder) WithID(id string) *UserBuilder {
	b.user.ID = id
	return b
}

func (b *UserBuilder) WithUsername(username string) *UserBuilder {
	b.user.Username = username
	return b
}

func (b *UserBuilder) WithEmail(email string) *UserBuilder {
	b.user.Email = email
	return b
}

func (b *UserBuilder) Build() entities.User {
	return b.user.Clone()
}

// QuestionBuilder helps create test questions with default values
type QuestionBuilder struct {
	question entities.Question
}

func NewQuestionBuilder() *QuestionBuilder {
	return &QuestionBuilder{question: entities.Question{
		ID:        "q-test",
		Title:     "How do I write a table test?",
		Content:   "I want to cover many inputs without repeating myself in every test.",
		Author:    NewUserBuilder().Build(),
		Answers:   []entities.Answer{},
		Tags:      []string{"go"},
		CreatedAt: BaseTime,
		UpdatedAt: BaseTime,
	}}
}

func (b *QuestionBuilder) WithID(id string) *QuestionBuilder {
	b.question.ID = id
	return b
}

func (b *QuestionBuilder) WithTitle(title string) *QuestionBuilder {
	b.question.Title = title
	return b
}

func (b *QuestionBuilder) WithContent(content string) *QuestionBuilder {
	b.question.Content = content
	return b
}

func (b *QuestionBuilder) WithAuthor(author entities.User) *QuestionBuilder {
	b.question.Author = author.Clone()
	return b
}

func (b *QuestionBuilder) WithTags(tags ...string) *QuestionBuilder {
	b.question.Tags = append([]string{}, tags...)
	return b
}

func (b *QuestionBuilder) WithVotes(votes int) *QuestionBuilder {
	b.question.Votes = votes
	return b
}

func (b *QuestionBuilder) WithCreatedAt(t time.Time) *QuestionBuilder {
	b.question.CreatedAt = t
	b.question.UpdatedAt = t
	return b
}

func (b *QuestionBuilder) WithUpdatedAt(t time.Time) *QuestionBuilder {
	b.question.UpdatedAt = t
	return b
}

// WithAnswer appends an answer with the given id and accepted flag.
func (b *QuestionBuilder) WithAnswer(id string, accepted bool) *QuestionBuilder {
	b.question.Answers = append(b.question.Answers, entities.Answer{
		ID:         id,
		Content:    "Use a slice of structs and range over it with t.Run for each case.",
		Author:     NewUserBuilder().WithID("answerer").WithUsername("answerer").Build(),
		Votes:      0,
		CreatedAt:  b.question.CreatedAt.Add(time.Hour),
		IsAccepted: accepted,
	})
	return b
}

func (b *QuestionBuilder) Build() entities.Question {
	return b.question.Clone()
}
