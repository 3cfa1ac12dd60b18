package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *TokenService {
	t.Helper()
	svc, err := NewTokenService(TokenConfig{
		SecretKey: "test-secret",
		Issuer:    "stackecho-test",
		Audience:  []string{"stackecho-api"},
		TTL:       time.Hour,
	})
	require.NoError(t, err)
	return svc
}

func TestTokenService_IssueAndValidate(t *testing.T) {
	svc := newTestService(t)

	token, err := svc.Issue("session-1", "user-1", "john_doe")
	require.NoError(t, err)

	claims, err := svc.Validate("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "session-1", claims.SessionID)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "john_doe", claims.Username)
}

func TestTokenService_AnonymousSession(t *testing.T) {
	svc := newTestService(t)

	token, err := svc.Issue("session-2", "", "")
	require.NoError(t, err)

	claims, err := svc.Validate(token)
	require.NoError(t, err)
	assert.Empty(t, claims.UserID)
}

func TestTokenService_Expired(t *testing.T) {
	svc := newTestService(t)
	issuedAt := time.Now().Add(-2 * time.Hour)
	svc.now = func() time.Time { return issuedAt }

	token, err := svc.Issue("session-3", "user-1", "john_doe")
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenService_WrongSecret(t *testing.T) {
	svc := newTestService(t)
	other, err := NewTokenService(TokenConfig{SecretKey: "other", Issuer: "stackecho-test", Audience: []string{"stackecho-api"}})
	require.NoError(t, err)

	token, err := other.Issue("session-4", "", "")
	require.NoError(t, err)

	_, err = svc.Validate(token)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestTokenService_MissingToken(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Validate("Bearer ")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestNewTokenService_RequiresSecret(t *testing.T) {
	_, err := NewTokenService(TokenConfig{})
	assert.Error(t, err)
}
