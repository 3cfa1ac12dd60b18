package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"stackecho/domain/core/entities"
	apperrors "stackecho/pkg/errors"
)

type account struct {
	user entities.User
	hash []byte
}

// DemoAccount seeds the directory.
type DemoAccount struct {
	User     entities.User
	Password string
}

// DemoAccounts returns the built-in sign-in accounts.
func DemoAccounts() []DemoAccount {
	joined := time.Date(2023, time.January, 15, 0, 0, 0, 0, time.UTC)
	profile := func(id, username, email string) entities.User {
		return entities.User{
			ID:         id,
			Username:   username,
			Email:      email,
			Avatar:     entities.DefaultAvatar,
			Reputation: 1250,
			JoinDate:   joined,
			Badges:     []string{"Contributor", "Helper"},
		}
	}
	return []DemoAccount{
		{User: profile("1", "john_doe", "john@example.com"), Password: "password123"},
		{User: profile("2", "alice_dev", "alice@example.com"), Password: "password123"},
		{User: profile("demo", "demo_user", "demo@example.com"), Password: "demo"},
	}
}

// Directory is an in-memory account book keyed by lower-cased email.
type Directory struct {
	mu       sync.RWMutex
	accounts map[string]account
	cost     int
	logger   *zap.Logger
}

// NewDirectory creates a directory holding seed. cost is the bcrypt cost;
// values below bcrypt.MinCost use bcrypt.DefaultCost.
func NewDirectory(seed []DemoAccount, cost int, logger *zap.Logger) (*Directory, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	d := &Directory{
		accounts: make(map[string]account, len(seed)),
		cost:     cost,
		logger:   logger,
	}
	for _, a := range seed {
		if err := d.add(a.User, a.Password); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (d *Directory) add(u entities.User, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), d.cost)
	if err != nil {
		return apperrors.NewInternal("failed to hash password", err)
	}
	d.accounts[normalizeEmail(u.Email)] = account{user: u.Clone(), hash: hash}
	return nil
}

// Authenticate implements Authenticator.
func (d *Directory) Authenticate(ctx context.Context, creds Credentials) (Identity, error) {
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}

	d.mu.RLock()
	acct, ok := d.accounts[normalizeEmail(creds.Email)]
	d.mu.RUnlock()
	if !ok {
		return Identity{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(acct.hash, []byte(creds.Password)); err != nil {
		d.logger.Debug("password mismatch", zap.String("user_id", acct.user.ID))
		return Identity{}, ErrInvalidCredentials
	}
	return IdentityFromUser(acct.user, ProviderEmail), nil
}

// Exists reports whether email already has an account.
func (d *Directory) Exists(email string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.accounts[normalizeEmail(email)]
	return ok
}

// Register records u with password so later sign-ins resolve to the same
// member. It fails with ErrEmailTaken when the email is in use.
func (d *Directory) Register(ctx context.Context, u entities.User, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.accounts[normalizeEmail(u.Email)]; ok {
		return ErrEmailTaken
	}
	if err := d.add(u, password); err != nil {
		return err
	}
	d.logger.Info("account registered", zap.String("user_id", u.ID))
	return nil
}

var _ Authenticator = (*Directory)(nil)
