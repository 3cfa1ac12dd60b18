package specifications

import (
	"testing"

	"stackecho/domain/core/entities"

	"github.com/stretchr/testify/assert"
)

func sampleQuestions() []*entities.Question {
	return []*entities.Question{
		{ID: "1", Title: "Auth in Next.js", Content: "session handling", Tags: []string{"nextjs", "react"}},
		{ID: "2", Title: "useState lag", Content: "React state is stale", Tags: []string{"react", "hooks"},
			Answers: []entities.Answer{{ID: "a1"}}},
		{ID: "3", Title: "Node best practices", Content: "project layout", Tags: []string{"TypeScript", "nodejs"}},
	}
}

func ids(qs []*entities.Question) []string {
	out := make([]string, 0, len(qs))
	for _, q := range qs {
		out = append(out, q.ID)
	}
	return out
}

func TestSearchSpec(t *testing.T) {
	qs := sampleQuestions()

	assert.Equal(t, []string{"1", "2", "3"}, ids(Filter(qs, NewSearchSpec(""))))
	assert.Equal(t, []string{"2"}, ids(Filter(qs, NewSearchSpec("STALE"))))
	assert.Equal(t, []string{"3"}, ids(Filter(qs, NewSearchSpec("typescript"))))
	assert.Equal(t, []string{"1", "2"}, ids(Filter(qs, NewSearchSpec("react"))))
}

func TestHasAnyTagSpec_ExactMatch(t *testing.T) {
	qs := sampleQuestions()

	assert.Equal(t, []string{"1", "2", "3"}, ids(Filter(qs, NewHasAnyTagSpec(nil))))
	assert.Equal(t, []string{"2"}, ids(Filter(qs, NewHasAnyTagSpec([]string{"hooks", "vue"}))))
	assert.Empty(t, Filter(qs, NewHasAnyTagSpec([]string{"typescript"})))
}

func TestComposition(t *testing.T) {
	qs := sampleQuestions()

	spec := NewSearchSpec("react").And(NewUnansweredSpec())
	assert.Equal(t, []string{"1"}, ids(Filter(qs, spec)))

	spec = NewUnansweredSpec().Not().Or(NewHasAnyTagSpec([]string{"nodejs"}))
	assert.Equal(t, []string{"2", "3"}, ids(Filter(qs, spec)))
}
