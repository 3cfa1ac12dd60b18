package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"stackecho/domain/core/entities"
	apperrors "stackecho/pkg/errors"
)

func newDirectory(t *testing.T) *Directory {
	t.Helper()
	d, err := NewDirectory(DemoAccounts(), bcrypt.MinCost, zap.NewNop())
	require.NoError(t, err)
	return d
}

func TestDirectory_Authenticate(t *testing.T) {
	tests := []struct {
		name     string
		creds    Credentials
		wantUser string
		wantErr  error
	}{
		{name: "john", creds: Credentials{Email: "john@example.com", Password: "password123"}, wantUser: "john_doe"},
		{name: "email is case insensitive", creds: Credentials{Email: " Alice@Example.com", Password: "password123"}, wantUser: "alice_dev"},
		{name: "demo", creds: Credentials{Email: "demo@example.com", Password: "demo"}, wantUser: "demo_user"},
		{name: "wrong password", creds: Credentials{Email: "john@example.com", Password: "nope"}, wantErr: ErrInvalidCredentials},
		{name: "unknown email", creds: Credentials{Email: "ghost@example.com", Password: "password123"}, wantErr: ErrInvalidCredentials},
	}

	d := newDirectory(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := d.Authenticate(context.Background(), tt.creds)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, apperrors.IsUnauthorized(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantUser, id.Username)
			assert.Equal(t, ProviderEmail, id.Provider)
		})
	}
}

func TestDirectory_Register(t *testing.T) {
	// Arrange
	ctx := context.Background()
	d := newDirectory(t)
	u := entities.User{ID: "u-9", Username: "newbie", Email: "newbie@example.com"}

	// Act
	err := d.Register(ctx, u, "s3cret-pass")

	// Assert
	require.NoError(t, err)
	assert.True(t, d.Exists("NEWBIE@example.com"))
	id, err := d.Authenticate(ctx, Credentials{Email: "newbie@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.Equal(t, "u-9", id.ID)

	err = d.Register(ctx, u, "other")
	assert.ErrorIs(t, err, ErrEmailTaken)
	assert.True(t, apperrors.IsConflict(err))
}

func TestDemoOAuth_Exchange(t *testing.T) {
	now := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)
	github := NewDemoOAuth(ProviderGitHub, func() time.Time { return now })

	id, err := github.Exchange(context.Background(), "abc")

	require.NoError(t, err)
	assert.Equal(t, "github_1709283600000", id.ID)
	assert.Equal(t, "github_user", id.Username)
	user := id.ToUser(now)
	assert.Equal(t, 1000, user.Reputation)
	assert.Equal(t, []string{"New Member", "github Login"}, user.Badges)
	assert.Equal(t, now, user.JoinDate)
	assert.Equal(t, entities.DefaultAvatar, user.Avatar)
}

func TestDemoOAuth_MissingCode(t *testing.T) {
	google := NewDemoOAuth(ProviderGoogle, nil)

	_, err := google.Exchange(context.Background(), "  ")

	assert.ErrorIs(t, err, ErrMissingCode)
	assert.True(t, apperrors.IsValidation(err))
}

func TestProviders_Lookup(t *testing.T) {
	providers := NewProviders(NewDemoOAuth(ProviderGitHub, nil))

	p, err := providers.Lookup("GitHub")
	require.NoError(t, err)
	assert.Equal(t, ProviderGitHub, p.Name())

	_, err = providers.Lookup("google")
	assert.ErrorIs(t, err, ErrUnknownProvider)

	_, err = providers.Lookup("myspace")
	assert.ErrorIs(t, err, ErrUnknownProvider)
}
