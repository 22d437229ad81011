package oauth2

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	githubAuthURL  = "https://github.com/login/oauth/authorize"
	githubTokenURL = "https://github.com/login/oauth/access_token"
	githubUserURL  = "https://api.github.com/user"
)

// GitHubProvider implements the authorization-code flow against GitHub.
// The fetched profile carries the account's organizations URL so the
// authorization gate can check membership.
type GitHubProvider struct {
	clientID     string
	clientSecret string
	callbackURL  string
	httpClient   *http.Client

	// overridden in tests
	authURL  string
	tokenURL string
	userURL  string
}

// NewGitHubProvider creates a GitHub OAuth2 provider.
func NewGitHubProvider(clientID, clientSecret, callbackURL string) *GitHubProvider {
	return &GitHubProvider{
		clientID:     clientID,
		clientSecret: clientSecret,
		callbackURL:  callbackURL,
		httpClient:   newHTTPClient(),
		authURL:      githubAuthURL,
		tokenURL:     githubTokenURL,
		userURL:      githubUserURL,
	}
}

func (p *GitHubProvider) Name() string {
	return "github"
}

func (p *GitHubProvider) Config() ProviderConfig {
	return ProviderConfig{
		ClientID:     p.clientID,
		ClientSecret: p.clientSecret,
		AuthURL:      p.authURL,
		TokenURL:     p.tokenURL,
		CallbackURL:  p.callbackURL,
		Scopes:       []string{"read:org", "user:email"},
	}
}

func (p *GitHubProvider) AuthCodeURL(state string) string {
	return authCodeURL(p.Config(), state)
}

func (p *GitHubProvider) Exchange(ctx context.Context, code string) (*Token, error) {
	return exchangeCode(ctx, p.httpClient, p.Config(), code)
}

// FetchProfile resolves the authenticated GitHub account.
func (p *GitHubProvider) FetchProfile(ctx context.Context, token *Token) (*Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.userURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build user request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("user request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user endpoint returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read user response: %w", err)
	}

	var account struct {
		ID               int    `json:"id"`
		Login            string `json:"login"`
		OrganizationsURL string `json:"organizations_url"`
	}
	if err := json.Unmarshal(body, &account); err != nil {
		return nil, fmt.Errorf("failed to parse user response: %w", err)
	}

	return &Profile{
		ID:               account.ID,
		Username:         account.Login,
		OrganizationsURL: account.OrganizationsURL,
	}, nil
}
