// Package auth resolves credentials and provider callbacks into members.
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stackecho/domain/core/entities"
	apperrors "stackecho/pkg/errors"
)

// Provider names where an identity came from.
type Provider string

const (
	ProviderEmail  Provider = "email"
	ProviderGitHub Provider = "github"
	ProviderGoogle Provider = "google"
)

var (
	ErrInvalidCredentials = apperrors.NewUnauthorized("Invalid email or password")
	ErrMissingCode        = apperrors.NewValidation("No authorization code provided")
	ErrEmailTaken         = apperrors.NewConflict("An account with this email already exists")
	ErrUnknownProvider    = apperrors.NewNotFound("Unknown authentication provider")
)

// ParseProvider maps a path segment to an OAuth provider.
func ParseProvider(s string) (Provider, error) {
	switch p := Provider(strings.ToLower(s)); p {
	case ProviderGitHub, ProviderGoogle:
		return p, nil
	default:
		return "", ErrUnknownProvider
	}
}

// Credentials is an email and password pair.
type Credentials struct {
	Email    string
	Password string
}

// Identity is an authenticated member profile. A zero JoinDate means the
// member is new and joins when converted.
type Identity struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	Avatar     string    `json:"avatar"`
	Provider   Provider  `json:"provider"`
	Reputation int       `json:"reputation"`
	JoinDate   time.Time `json:"joinDate"`
	Badges     []string  `json:"badges"`
}

// ToUser builds the member record handed to the store.
func (i Identity) ToUser(now time.Time) entities.User {
	u := entities.User{
		ID:         i.ID,
		Username:   i.Username,
		Email:      i.Email,
		Avatar:     i.Avatar,
		Reputation: i.Reputation,
		JoinDate:   i.JoinDate,
		Badges:     append([]string{}, i.Badges...),
	}
	if u.Avatar == "" {
		u.Avatar = entities.DefaultAvatar
	}
	if u.JoinDate.IsZero() {
		u.JoinDate = now
	}
	return u
}

// IdentityFromUser wraps an existing member.
func IdentityFromUser(u entities.User, provider Provider) Identity {
	return Identity{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		Avatar:     u.Avatar,
		Provider:   provider,
		Reputation: u.Reputation,
		JoinDate:   u.JoinDate,
		Badges:     append([]string{}, u.Badges...),
	}
}

// Authenticator checks email credentials.
type Authenticator interface {
	Authenticate(ctx context.Context, creds Credentials) (Identity, error)
}

// OAuthProvider exchanges a provider callback code for an identity.
type OAuthProvider interface {
	Name() Provider
	Exchange(ctx context.Context, code string) (Identity, error)
}

func providerBadge(p Provider) string {
	return fmt.Sprintf("%s Login", p)
}
