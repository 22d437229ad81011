package auth

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/paasops/authgate/internal/entities"
	"github.com/paasops/authgate/internal/oauth2"
)

var (
	// ErrBadCredentials is the local strategy's rejection. The message is
	// deliberately the same for unknown users and wrong passwords.
	ErrBadCredentials = errors.New("incorrect username or password")

	// ErrUnknownToken is the bearer strategy's rejection. Bearer carries no
	// interactive challenge and establishes no session; the error exists
	// for logging only and is never written to the caller.
	ErrUnknownToken = errors.New("unknown api token")
)

// OrgDeniedError marks a successful identity proof paired with an
// authorization denial: the caller is who they claim, but is not in the
// allowed organization.
type OrgDeniedError struct {
	Username string
	Org      string
}

func (e *OrgDeniedError) Error() string {
	return fmt.Sprintf("%s is not in allowed organization %s", e.Username, e.Org)
}

// IsOrgDenied reports whether err is an organization membership denial.
func IsOrgDenied(err error) bool {
	var denied *OrgDeniedError
	return errors.As(err, &denied)
}

// Engine holds one verifier per strategy. Each verifier takes
// method-specific input and yields either a resolved identity or a
// rejection; nothing in here touches session state.
type Engine struct {
	store      *CredentialStore
	orgs       OrgMembershipChecker
	allowedOrg string
}

// NewEngine wires the strategy verifiers. The org checker and allowed
// organization are only consulted by the github strategy.
func NewEngine(store *CredentialStore, orgs OrgMembershipChecker, allowedOrg string) *Engine {
	return &Engine{
		store:      store,
		orgs:       orgs,
		allowedOrg: allowedOrg,
	}
}

// VerifyLocal resolves a username/password pair against the credential
// store. First matching record wins.
func (e *Engine) VerifyLocal(username, password string) (entities.Identity, error) {
	user, ok := e.store.FindByCredentials(username, password)
	if !ok {
		return entities.Identity{}, ErrBadCredentials
	}
	return user.Identity(), nil
}

// VerifyBearer resolves an API token. A matched token yields a local-method
// identity; bearer is not a method of its own on the wire.
func (e *Engine) VerifyBearer(apitoken string) (entities.Identity, error) {
	user, ok := e.store.FindByToken(apitoken)
	if !ok {
		return entities.Identity{}, ErrUnknownToken
	}
	return user.Identity(), nil
}

// VerifyGitHub takes a provider-issued profile whose identity proof already
// succeeded upstream and applies the organization gate before resolving.
// Network or parse failure during the check propagates as a rejection,
// never as an implicit allow.
func (e *Engine) VerifyGitHub(ctx context.Context, profile *oauth2.Profile) (entities.Identity, error) {
	member, err := e.orgs.Member(ctx, profile.OrganizationsURL, e.allowedOrg)
	if err != nil {
		return entities.Identity{}, fmt.Errorf("organization check failed: %w", err)
	}
	if !member {
		log.Printf("%s is not in allowed organization %s", profile.Username, e.allowedOrg)
		return entities.Identity{}, &OrgDeniedError{Username: profile.Username, Org: e.allowedOrg}
	}

	return entities.Identity{
		ID:       profile.ID,
		Method:   entities.MethodGitHub,
		Username: profile.Username,
	}, nil
}

// VerifyOAuth2 resolves a generic-provider profile unconditionally. The
// missing secondary authorization check is intentional configuration
// design, not an oversight; only the github strategy gates on membership.
func (e *Engine) VerifyOAuth2(profile *oauth2.Profile) (entities.Identity, error) {
	return entities.Identity{
		ID:       profile.ID,
		Method:   entities.MethodOAuth2,
		Username: profile.Username,
	}, nil
}
