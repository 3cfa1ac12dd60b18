// Package queries serves the read-only directory and profile views.
package queries

import (
	"stackecho/domain/core/entities"
)

// QuestionSource exposes the question list of a viewer's state.
type QuestionSource interface {
	Questions() []entities.Question
}

// ViewerSource adds the signed-in member.
type ViewerSource interface {
	QuestionSource
	CurrentUser() (entities.User, bool)
}

// AnswerRef is an answer listed with the question it belongs to.
type AnswerRef struct {
	QuestionID    string          `json:"questionId"`
	QuestionTitle string          `json:"questionTitle"`
	Answer        entities.Answer `json:"answer"`
}

func collect(questions []entities.Question, match func(entities.User) bool) ([]entities.Question, []AnswerRef) {
	asked := []entities.Question{}
	answered := []AnswerRef{}
	for _, q := range questions {
		if match(q.Author) {
			asked = append(asked, q)
		}
		for _, a := range q.Answers {
			if match(a.Author) {
				answered = append(answered, AnswerRef{QuestionID: q.ID, QuestionTitle: q.Title, Answer: a})
			}
		}
	}
	return asked, answered
}
