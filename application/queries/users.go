package queries

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"stackecho/domain/core/entities"
	apperrors "stackecho/pkg/errors"
)

// UserSort orders the member directory.
type UserSort string

const (
	UserSortReputation UserSort = "reputation"
	UserSortNewest     UserSort = "newest"
	UserSortOldest     UserSort = "oldest"
)

// ParseUserSort defaults to reputation.
func ParseUserSort(s string) UserSort {
	switch sort := UserSort(strings.ToLower(strings.TrimSpace(s))); sort {
	case UserSortNewest, UserSortOldest:
		return sort
	default:
		return UserSortReputation
	}
}

// Profile is a public member card.
type Profile struct {
	ID              string    `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	Avatar          string    `json:"avatar"`
	Reputation      int       `json:"reputation"`
	JoinDate        time.Time `json:"joinDate"`
	Location        string    `json:"location"`
	Website         string    `json:"website,omitempty"`
	Bio             string    `json:"bio"`
	Badges          []string  `json:"badges"`
	QuestionsCount  int       `json:"questionsCount"`
	AnswersCount    int       `json:"answersCount"`
	AcceptedAnswers int       `json:"acceptedAnswers,omitempty"`
	Views           int       `json:"views,omitempty"`
}

// UserDetail is a profile with the member's activity in a viewer's state.
type UserDetail struct {
	Profile   Profile             `json:"profile"`
	Questions []entities.Question `json:"questions"`
	Answers   []AnswerRef         `json:"answers"`
}

// UserDirectory lists public member profiles.
type UserDirectory struct {
	profiles []Profile
}

// NewUserDirectory creates a directory over profiles.
func NewUserDirectory(profiles []Profile) *UserDirectory {
	return &UserDirectory{profiles: slices.Clone(profiles)}
}

// List filters by a case-insensitive match on username, bio or location
// and orders by sort.
func (d *UserDirectory) List(search string, sort UserSort) []Profile {
	needle := strings.ToLower(search)
	out := []Profile{}
	for _, p := range d.profiles {
		if needle == "" ||
			strings.Contains(strings.ToLower(p.Username), needle) ||
			strings.Contains(strings.ToLower(p.Bio), needle) ||
			strings.Contains(strings.ToLower(p.Location), needle) {
			out = append(out, p)
		}
	}

	slices.SortStableFunc(out, func(a, b Profile) int {
		switch sort {
		case UserSortNewest:
			return b.JoinDate.Compare(a.JoinDate)
		case UserSortOldest:
			return a.JoinDate.Compare(b.JoinDate)
		default:
			return cmp.Compare(b.Reputation, a.Reputation)
		}
	})
	return out
}

// Get returns one profile.
func (d *UserDirectory) Get(id string) (Profile, error) {
	for _, p := range d.profiles {
		if p.ID == id {
			return p, nil
		}
	}
	return Profile{}, apperrors.NewNotFound("user not found")
}

// Detail returns the profile with the questions and answers its member
// posted in src. Posts are matched by username because directory ids are
// independent of member ids.
func (d *UserDirectory) Detail(id string, src QuestionSource) (UserDetail, error) {
	p, err := d.Get(id)
	if err != nil {
		return UserDetail{}, err
	}
	asked, answered := collect(src.Questions(), func(u entities.User) bool {
		return u.Username == p.Username
	})
	return UserDetail{Profile: p, Questions: asked, Answers: answered}, nil
}

func joined(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// SeedProfiles returns the built-in member directory.
func SeedProfiles() []Profile {
	avatar := "/placeholder.svg?height=60&width=60"
	return []Profile{
		{
			ID: "1", Username: "alice_dev", Email: "alice@example.com", Avatar: avatar,
			Reputation: 2847, JoinDate: joined(2022, time.August, 20), Location: "San Francisco, CA",
			Website:         "https://alice-dev.com",
			Bio:             "Full-stack developer with 8+ years of experience in React and Node.js",
			Badges:          []string{"Expert", "Top Contributor", "Mentor"},
			QuestionsCount:  45,
			AnswersCount:    123,
			AcceptedAnswers: 89,
			Views:           15420,
		},
		{
			ID: "2", Username: "bob_coder", Email: "bob@example.com", Avatar: avatar,
			Reputation: 1923, JoinDate: joined(2023, time.March, 10), Location: "New York, NY",
			Website:         "https://bobcodes.dev",
			Bio:             "Backend engineer specializing in Python and microservices",
			Badges:          []string{"Problem Solver", "Helper"},
			QuestionsCount:  23,
			AnswersCount:    67,
			AcceptedAnswers: 45,
			Views:           8930,
		},
		{
			ID: "3", Username: "charlie_js", Email: "charlie@example.com", Avatar: avatar,
			Reputation: 1456, JoinDate: joined(2023, time.January, 15), Location: "London, UK",
			Bio:            "Frontend developer passionate about modern JavaScript frameworks",
			Badges:         []string{"JavaScript Expert", "React Specialist"},
			QuestionsCount: 34,
			AnswersCount:   89,
		},
		{
			ID: "4", Username: "diana_py", Email: "diana@example.com", Avatar: avatar,
			Reputation: 1234, JoinDate: joined(2023, time.May, 22), Location: "Toronto, Canada",
			Bio:            "Data scientist and Python developer with ML expertise",
			Badges:         []string{"Python Expert", "Data Science"},
			QuestionsCount: 18,
			AnswersCount:   45,
		},
		{
			ID: "5", Username: "evan_mobile", Email: "evan@example.com", Avatar: avatar,
			Reputation: 987, JoinDate: joined(2023, time.July, 8), Location: "Austin, TX",
			Bio:            "Mobile app developer focusing on React Native and Flutter",
			Badges:         []string{"Mobile Dev", "React Native"},
			QuestionsCount: 12,
			AnswersCount:   28,
		},
		{
			ID: "6", Username: "fiona_ui", Email: "fiona@example.com", Avatar: avatar,
			Reputation: 876, JoinDate: joined(2023, time.September, 14), Location: "Berlin, Germany",
			Bio:            "UI/UX designer and frontend developer with a passion for great design",
			Badges:         []string{"UI/UX", "CSS Expert"},
			QuestionsCount: 15,
			AnswersCount:   32,
		},
	}
}
