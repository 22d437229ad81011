package oauth2

import (
	"context"
	"strings"
	"testing"

	"github.com/paasops/authgate/internal/config"
)

func genericTestConfig() config.OAuth2 {
	return config.OAuth2{
		ClientName:   "acme",
		AuthURL:      "https://idp.acme.test/authorize",
		TokenURL:     "https://idp.acme.test/token",
		ClientID:     "cid",
		ClientSecret: "secret",
		CallbackURL:  "https://gateway.test/auth/oauth2/callback",
		Scope:        "openid profile",
	}
}

func TestGenericProvider_Config(t *testing.T) {
	provider := NewGenericProvider(genericTestConfig())

	if provider.Name() != "acme" {
		t.Errorf("name = %q", provider.Name())
	}

	cfg := provider.Config()
	if cfg.AuthURL != "https://idp.acme.test/authorize" || cfg.TokenURL != "https://idp.acme.test/token" {
		t.Errorf("unexpected endpoints: %+v", cfg)
	}
	if len(cfg.Scopes) != 2 || cfg.Scopes[0] != "openid" || cfg.Scopes[1] != "profile" {
		t.Errorf("unexpected scopes: %v", cfg.Scopes)
	}
}

func TestGenericProvider_EmptyScope(t *testing.T) {
	cfg := genericTestConfig()
	cfg.Scope = ""

	provider := NewGenericProvider(cfg)
	if scopes := provider.Config().Scopes; len(scopes) != 0 {
		t.Errorf("expected no scopes, got %v", scopes)
	}
	if strings.Contains(provider.AuthCodeURL("nonce"), "scope=") {
		t.Error("expected no scope parameter in the redirect url")
	}
}

func TestGenericProvider_FetchProfileFromExtras(t *testing.T) {
	provider := NewGenericProvider(genericTestConfig())

	token := &Token{
		AccessToken: "at",
		Raw:         map[string]any{"access_token": "at", "id": float64(7), "username": "jane"},
	}
	profile, err := provider.FetchProfile(context.Background(), token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.ID != 7 || profile.Username != "jane" {
		t.Errorf("unexpected profile: %+v", profile)
	}
	if profile.OrganizationsURL != "" {
		t.Errorf("expected no organizations url, got %q", profile.OrganizationsURL)
	}
}

func TestGenericProvider_FetchProfileWithoutExtras(t *testing.T) {
	provider := NewGenericProvider(genericTestConfig())

	// A provider returning only the token fields yields an empty profile,
	// not an error.
	profile, err := provider.FetchProfile(context.Background(), &Token{AccessToken: "at"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile.ID != 0 || profile.Username != "" {
		t.Errorf("expected an empty profile, got %+v", profile)
	}
}
