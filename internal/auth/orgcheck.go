package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// The upstream identity provider is queried exactly once per github login.
// The call is bounded: an unreachable provider must surface as a rejection,
// not a hung request.
const orgCheckTimeout = 10 * time.Second

// OrgMembershipChecker answers whether the caller behind an organizations
// URL belongs to a named organization.
type OrgMembershipChecker interface {
	Member(ctx context.Context, organizationsURL, org string) (bool, error)
}

// OrgChecker queries a provider-supplied organizations endpoint, expecting
// a JSON array of objects carrying a "login" field.
type OrgChecker struct {
	httpClient *http.Client
}

// NewOrgChecker creates a checker with a bounded HTTP client.
func NewOrgChecker() *OrgChecker {
	return &OrgChecker{
		httpClient: &http.Client{
			Timeout: orgCheckTimeout,
		},
	}
}

type organization struct {
	Login string `json:"login"`
}

// Member issues a single GET to organizationsURL and reports whether any
// entry's login equals org. Every failure path returns an error so the
// caller fails closed; a cancelled request context aborts the call.
func (c *OrgChecker) Member(ctx context.Context, organizationsURL, org string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, organizationsURL, nil)
	if err != nil {
		return false, fmt.Errorf("failed to build organizations request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("organizations request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("organizations request returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return false, fmt.Errorf("failed to read organizations response: %w", err)
	}

	var orgs []organization
	if err := json.Unmarshal(body, &orgs); err != nil {
		return false, fmt.Errorf("failed to parse organizations response: %w", err)
	}

	for _, o := range orgs {
		if o.Login == org {
			return true, nil
		}
	}
	return false, nil
}
