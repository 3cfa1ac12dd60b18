package entities

import (
	"time"
)

// DefaultAvatar is used when a registration carries no avatar.
const DefaultAvatar = "/placeholder.svg?height=40&width=40"

// BadgeNewMember is awarded on registration.
const BadgeNewMember = "New Member"

// User is a registered member. Questions and answers embed a copy of their
// author taken at post time; later edits to the user do not reach old posts.
type User struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Avatar     string    `json:"avatar"`
	Reputation int       `json:"reputation"`
	JoinDate   time.Time `json:"joinDate"`
	Badges     []string  `json:"badges"`
}

// Registration is the caller-supplied part of a new user.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Avatar   string `json:"avatar"`
}

// NewUserFromRegistration builds a fresh member record.
func NewUserFromRegistration(reg Registration, id string, now time.Time) User {
	avatar := reg.Avatar
	if avatar == "" {
		avatar = DefaultAvatar
	}
	return User{
		ID:         id,
		Username:   reg.Username,
		Email:      reg.Email,
		Avatar:     avatar,
		Reputation: 1,
		JoinDate:   now,
		Badges:     []string{BadgeNewMember},
	}
}

// Clone returns a deep copy.
func (u User) Clone() User {
	c := u
	if u.Badges != nil {
		c.Badges = append([]string(nil), u.Badges...)
	}
	return c
}
