package specifications

import (
	"strings"

	"stackecho/domain/core/entities"
)

// QuestionSpecification is a specification over questions
type QuestionSpecification = Specification[*entities.Question]

// NewSearchSpec matches a case-insensitive substring of the title, the body
// or any tag. An empty query matches everything.
func NewSearchSpec(query string) QuestionSpecification {
	if query == "" {
		return All[*entities.Question]()
	}
	needle := strings.ToLower(query)
	return NewBaseSpecification(func(q *entities.Question) bool {
		if q == nil {
			return false
		}
		if strings.Contains(strings.ToLower(q.Title), needle) ||
			strings.Contains(strings.ToLower(q.Content), needle) {
			return true
		}
		for _, tag := range q.Tags {
			if strings.Contains(strings.ToLower(tag), needle) {
				return true
			}
		}
		return false
	})
}

// NewHasAnyTagSpec matches questions carrying at least one of tags.
// No tags matches everything.
func NewHasAnyTagSpec(tags []string) QuestionSpecification {
	if len(tags) == 0 {
		return All[*entities.Question]()
	}
	wanted := append([]string(nil), tags...)
	return NewBaseSpecification(func(q *entities.Question) bool {
		if q == nil {
			return false
		}
		for _, tag := range wanted {
			if q.HasTag(tag) {
				return true
			}
		}
		return false
	})
}

// NewUnansweredSpec matches questions with no answers.
func NewUnansweredSpec() QuestionSpecification {
	return NewBaseSpecification(func(q *entities.Question) bool {
		return q != nil && q.IsUnanswered()
	})
}

// NewAuthoredBySpec matches questions whose embedded author has userID.
func NewAuthoredBySpec(userID string) QuestionSpecification {
	return NewBaseSpecification(func(q *entities.Question) bool {
		return q != nil && q.Author.ID == userID
	})
}

// NewBookmarkedSpec matches questions the viewer bookmarked.
func NewBookmarkedSpec() QuestionSpecification {
	return NewBaseSpecification(func(q *entities.Question) bool {
		return q != nil && q.IsBookmarked
	})
}
