package queries

import (
	"stackecho/domain/core/entities"
	apperrors "stackecho/pkg/errors"
)

// ProfileStats are the headline numbers of the viewer's own profile.
type ProfileStats struct {
	Reputation int `json:"reputation"`
	Questions  int `json:"questions"`
	Answers    int `json:"answers"`
	Badges     int `json:"badges"`
	Bookmarks  int `json:"bookmarks"`
	VoteTotal  int `json:"voteTotal"`
}

// ProfileView is the signed-in member's own activity.
type ProfileView struct {
	User      entities.User       `json:"user"`
	Stats     ProfileStats        `json:"stats"`
	Questions []entities.Question `json:"questions"`
	Answers   []AnswerRef         `json:"answers"`
	Bookmarks []entities.Question `json:"bookmarks"`
}

// BuildProfile assembles the viewer's profile. Posts are matched by
// member id. VoteTotal sums the tallies of the viewer's questions and
// answers.
func BuildProfile(src ViewerSource) (ProfileView, error) {
	user, ok := src.CurrentUser()
	if !ok {
		return ProfileView{}, apperrors.NewUnauthorized("sign in to view your profile")
	}

	questions := src.Questions()
	asked, answered := collect(questions, func(u entities.User) bool {
		return u.ID == user.ID
	})
	bookmarks := []entities.Question{}
	for _, q := range questions {
		if q.IsBookmarked {
			bookmarks = append(bookmarks, q)
		}
	}

	total := 0
	for _, q := range asked {
		total += q.Votes
	}
	for _, a := range answered {
		total += a.Answer.Votes
	}

	return ProfileView{
		User: user,
		Stats: ProfileStats{
			Reputation: user.Reputation,
			Questions:  len(asked),
			Answers:    len(answered),
			Badges:     len(user.Badges),
			Bookmarks:  len(bookmarks),
			VoteTotal:  total,
		},
		Questions: asked,
		Answers:   answered,
		Bookmarks: bookmarks,
	}, nil
}
