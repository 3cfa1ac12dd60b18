package entities

import (
	"time"

	"stackecho/domain/core/valueobjects"
)

// Answer is a reply to a question, owned by value by its question.
type Answer struct {
	ID         string                     `json:"id"`
	Content    string                     `json:"content"`
	Author     User                       `json:"author"`
	Votes      int                        `json:"votes"`
	CreatedAt  time.Time                  `json:"createdAt"`
	IsAccepted bool                       `json:"isAccepted"`
	UserVote   valueobjects.VoteDirection `json:"userVote,omitempty"`
}

// NewAnswer creates an unvoted, unaccepted answer.
func NewAnswer(id, content string, author User, now time.Time) Answer {
	return Answer{
		ID:        id,
		Content:   content,
		Author:    author.Clone(),
		CreatedAt: now,
	}
}

// Vote applies the viewer's vote action to the tally.
func (a *Answer) Vote(dir valueobjects.VoteDirection) {
	a.Votes, a.UserVote = valueobjects.ApplyVote(a.Votes, a.UserVote, dir)
}

// Clone returns a deep copy.
func (a Answer) Clone() Answer {
	c := a
	c.Author = a.Author.Clone()
	return c
}
