package auth

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// OAuthReputation is the starting reputation of members created by an
// OAuth sign-in.
const OAuthReputation = 1000

// DemoOAuth stands in for a provider token exchange: any non-empty code
// yields a fixed provider account.
type DemoOAuth struct {
	provider Provider
	now      func() time.Time
}

// NewDemoOAuth creates the exchanger for provider.
func NewDemoOAuth(provider Provider, now func() time.Time) *DemoOAuth {
	if now == nil {
		now = time.Now
	}
	return &DemoOAuth{provider: provider, now: now}
}

// Name implements OAuthProvider.
func (o *DemoOAuth) Name() Provider {
	return o.provider
}

// Exchange implements OAuthProvider.
func (o *DemoOAuth) Exchange(ctx context.Context, code string) (Identity, error) {
	if err := ctx.Err(); err != nil {
		return Identity{}, err
	}
	if strings.TrimSpace(code) == "" {
		return Identity{}, ErrMissingCode
	}

	username, email := "github_user", "user@github.com"
	if o.provider == ProviderGoogle {
		username, email = "google_user", "user@gmail.com"
	}
	return Identity{
		ID:         fmt.Sprintf("%s_%d", o.provider, o.now().UnixMilli()),
		Username:   username,
		Email:      email,
		Provider:   o.provider,
		Reputation: OAuthReputation,
		Badges:     []string{"New Member", providerBadge(o.provider)},
	}, nil
}

// Providers indexes OAuth exchangers by name.
type Providers map[Provider]OAuthProvider

// NewProviders indexes ps.
func NewProviders(ps ...OAuthProvider) Providers {
	out := make(Providers, len(ps))
	for _, p := range ps {
		out[p.Name()] = p
	}
	return out
}

// Lookup resolves a provider path segment.
func (p Providers) Lookup(name string) (OAuthProvider, error) {
	provider, err := ParseProvider(name)
	if err != nil {
		return nil, err
	}
	exchanger, ok := p[provider]
	if !ok {
		return nil, ErrUnknownProvider
	}
	return exchanger, nil
}

var _ OAuthProvider = (*DemoOAuth)(nil)
