package entities

import (
	"time"

	"stackecho/domain/core/valueobjects"
)

// Question is the aggregate root: it owns its answers by value.
type Question struct {
	ID           string                     `json:"id"`
	Title        string                     `json:"title"`
	Content      string                     `json:"content"`
	Author       User                       `json:"author"`
	Votes        int                        `json:"votes"`
	Answers      []Answer                   `json:"answers"`
	Views        int                        `json:"views"`
	Tags         []string                   `json:"tags"`
	CreatedAt    time.Time                  `json:"createdAt"`
	UpdatedAt    time.Time                  `json:"updatedAt"`
	IsBookmarked bool                       `json:"isBookmarked,omitempty"`
	UserVote     valueobjects.VoteDirection `json:"userVote,omitempty"`
}

// QuestionDraft is the caller-supplied part of a new question.
type QuestionDraft struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// NewQuestion creates an unvoted, unanswered question authored by author.
func NewQuestion(id string, draft QuestionDraft, author User, now time.Time) Question {
	return Question{
		ID:        id,
		Title:     draft.Title,
		Content:   draft.Content,
		Author:    author.Clone(),
		Answers:   []Answer{},
		Tags:      append([]string{}, draft.Tags...),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Vote applies the viewer's vote action to the tally.
func (q *Question) Vote(dir valueobjects.VoteDirection) {
	q.Votes, q.UserVote = valueobjects.ApplyVote(q.Votes, q.UserVote, dir)
}

// AddAnswer appends an answer and marks the question active.
func (q *Question) AddAnswer(a Answer) {
	q.Answers = append(q.Answers, a)
	q.UpdatedAt = a.CreatedAt
}

// FindAnswer returns a pointer into q.Answers, or nil.
func (q *Question) FindAnswer(answerID string) *Answer {
	for i := range q.Answers {
		if q.Answers[i].ID == answerID {
			return &q.Answers[i]
		}
	}
	return nil
}

// ToggleAccepted flips the target answer's accepted flag and clears it on
// every other answer. An unknown id therefore clears all of them.
func (q *Question) ToggleAccepted(answerID string) {
	for i := range q.Answers {
		a := &q.Answers[i]
		if a.ID == answerID {
			a.IsAccepted = !a.IsAccepted
		} else {
			a.IsAccepted = false
		}
	}
}

// AcceptedAnswer returns the accepted answer, if any.
func (q *Question) AcceptedAnswer() (Answer, bool) {
	for _, a := range q.Answers {
		if a.IsAccepted {
			return a, true
		}
	}
	return Answer{}, false
}

// HasTag reports whether the question carries tag exactly.
func (q *Question) HasTag(tag string) bool {
	for _, t := range q.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// IsUnanswered reports whether no answers have been posted.
func (q *Question) IsUnanswered() bool {
	return len(q.Answers) == 0
}

// Clone returns a deep copy.
func (q Question) Clone() Question {
	c := q
	c.Author = q.Author.Clone()
	c.Tags = append([]string{}, q.Tags...)
	c.Answers = make([]Answer, len(q.Answers))
	for i, a := range q.Answers {
		c.Answers[i] = a.Clone()
	}
	return c
}

// CloneQuestions deep-copies a slice of questions.
func CloneQuestions(qs []Question) []Question {
	out := make([]Question, len(qs))
	for i, q := range qs {
		out[i] = q.Clone()
	}
	return out
}
