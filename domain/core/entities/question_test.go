package entities

import (
	"testing"
	"time"

	"stackecho/domain/core/valueobjects"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func questionWithAnswers(ids ...string) Question {
	q := NewQuestion("q1", QuestionDraft{Title: "How do channels work?", Tags: []string{"go"}}, User{ID: "u1"}, time.Unix(0, 0))
	for _, id := range ids {
		q.AddAnswer(NewAnswer(id, "body", User{ID: "u2"}, time.Unix(10, 0)))
	}
	return q
}

func acceptedCount(q Question) int {
	n := 0
	for _, a := range q.Answers {
		if a.IsAccepted {
			n++
		}
	}
	return n
}

func TestQuestion_ToggleAccepted(t *testing.T) {
	q := questionWithAnswers("a1", "a2", "a3")

	q.ToggleAccepted("a1")
	assert.Equal(t, 1, acceptedCount(q))
	accepted, ok := q.AcceptedAnswer()
	require.True(t, ok)
	assert.Equal(t, "a1", accepted.ID)

	q.ToggleAccepted("a2")
	assert.Equal(t, 1, acceptedCount(q))
	accepted, _ = q.AcceptedAnswer()
	assert.Equal(t, "a2", accepted.ID)

	q.ToggleAccepted("a2")
	assert.Equal(t, 0, acceptedCount(q))
}

func TestQuestion_ToggleAccepted_UnknownIDClearsAll(t *testing.T) {
	q := questionWithAnswers("a1", "a2")
	q.ToggleAccepted("a1")

	q.ToggleAccepted("missing")

	assert.Equal(t, 0, acceptedCount(q))
}

func TestQuestion_AddAnswerTouchesUpdatedAt(t *testing.T) {
	q := questionWithAnswers()
	assert.True(t, q.IsUnanswered())

	q.AddAnswer(NewAnswer("a1", "body", User{ID: "u2"}, time.Unix(99, 0)))

	assert.False(t, q.IsUnanswered())
	assert.Equal(t, time.Unix(99, 0), q.UpdatedAt)
	assert.Equal(t, time.Unix(0, 0), q.CreatedAt)
}

func TestQuestion_VoteAndAnswerVote(t *testing.T) {
	q := questionWithAnswers("a1")
	q.Votes = 15

	q.Vote(valueobjects.VoteUp)
	assert.Equal(t, 16, q.Votes)
	assert.Equal(t, valueobjects.VoteUp, q.UserVote)

	q.FindAnswer("a1").Vote(valueobjects.VoteDown)
	assert.Equal(t, -1, q.Answers[0].Votes)
	assert.Nil(t, q.FindAnswer("nope"))
}

func TestQuestion_CloneIsDeep(t *testing.T) {
	q := questionWithAnswers("a1")
	q.Author.Badges = []string{"Helper"}

	c := q.Clone()
	c.Tags[0] = "rust"
	c.Answers[0].Votes = 100
	c.Author.Badges[0] = "Changed"

	assert.Equal(t, "go", q.Tags[0])
	assert.Equal(t, 0, q.Answers[0].Votes)
	assert.Equal(t, "Helper", q.Author.Badges[0])
}

func TestNewUserFromRegistration(t *testing.T) {
	now := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

	u := NewUserFromRegistration(Registration{Username: "newbie", Email: "n@example.com"}, "id-1", now)

	assert.Equal(t, 1, u.Reputation)
	assert.Equal(t, []string{BadgeNewMember}, u.Badges)
	assert.Equal(t, DefaultAvatar, u.Avatar)
	assert.Equal(t, now, u.JoinDate)
}
