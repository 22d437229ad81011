package oauth2

import (
	"context"
	"time"
)

// ProviderConfig contains the client settings for an authorization-code flow.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	AuthURL      string
	TokenURL     string
	CallbackURL  string
	Scopes       []string
}

// Token contains the credentials returned by a provider's token endpoint.
type Token struct {
	AccessToken  string
	RefreshToken string
	TokenType    string
	ExpiresIn    int // seconds until expiry
	Scope        string

	// Raw carries any extra top-level fields from the token response;
	// generic providers surface account details here.
	Raw map[string]any
}

// ExpiresAt calculates the absolute expiry time from ExpiresIn.
func (t *Token) ExpiresAt() *time.Time {
	if t.ExpiresIn <= 0 {
		return nil
	}
	exp := time.Now().Add(time.Duration(t.ExpiresIn) * time.Second)
	return &exp
}

// Profile is the resolved third-party identity handed to the verifiers.
// Explicit fields, no provider JSON bags: the github provider fills
// OrganizationsURL, the generic provider leaves it empty.
type Profile struct {
	ID               int
	Username         string
	OrganizationsURL string
}

// Provider implements one OAuth2 authorization-code client.
type Provider interface {
	// Name returns the provider identifier (e.g. "github").
	Name() string

	// Config returns the provider's client settings.
	Config() ProviderConfig

	// AuthCodeURL builds the authorization redirect URL carrying the given
	// anti-forgery state.
	AuthCodeURL(state string) string

	// Exchange trades an authorization code for tokens.
	Exchange(ctx context.Context, code string) (*Token, error)

	// FetchProfile resolves the authenticated account behind an access token.
	FetchProfile(ctx context.Context, token *Token) (*Profile, error)
}
