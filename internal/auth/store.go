package auth

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/paasops/authgate/internal/entities"
)

// CredentialStore is the read-only collection of local user records. It is
// built once at startup from the AUTH_USERS blob and never mutated, so
// concurrent reads from in-flight requests need no locking.
//
// Usernames are not required to be unique; every lookup uses first-match
// semantics and operators are responsible for keeping the list sane.
type CredentialStore struct {
	users      []entities.LocalUser
	sessionKey string
}

// NewCredentialStore parses the user list. A malformed blob is logged and
// degrades to an empty store rather than aborting startup: local
// authentication becomes vacuous but the process keeps serving. The
// returned error reports the parse failure for callers that want it; the
// store is usable either way.
func NewCredentialStore(rawUsers, sessionKey string) (*CredentialStore, error) {
	store := &CredentialStore{sessionKey: sessionKey}

	if rawUsers == "" {
		return store, nil
	}

	var users []entities.LocalUser
	if err := json.Unmarshal([]byte(rawUsers), &users); err != nil {
		log.Printf("ERROR loading local users: %v", err)
		return store, fmt.Errorf("failed to parse user list: %w", err)
	}

	store.users = users
	return store, nil
}

// FindByCredentials returns the first record matching the username and
// password, honoring the per-record insecure flag. Records requiring a
// signed comparison never match when no session key is configured.
func (s *CredentialStore) FindByCredentials(username, password string) (entities.LocalUser, bool) {
	for _, u := range s.users {
		if u.Username != username {
			continue
		}
		if matchPassword(u.Password, password, s.sessionKey, u.Insecure) {
			return u, true
		}
	}
	return entities.LocalUser{}, false
}

// FindByToken returns the first record whose API token equals the supplied
// one. Records without a token are skipped.
func (s *CredentialStore) FindByToken(apitoken string) (entities.LocalUser, bool) {
	if apitoken == "" {
		return entities.LocalUser{}, false
	}
	for _, u := range s.users {
		if u.APIToken != "" && secureCompare(u.APIToken, apitoken) {
			return u, true
		}
	}
	return entities.LocalUser{}, false
}

// FindByID returns the record with the given id. Session restoration uses
// this to re-resolve local identities against the current list, so a user
// removed from configuration loses access on their next request.
func (s *CredentialStore) FindByID(id int) (entities.LocalUser, bool) {
	for _, u := range s.users {
		if u.ID == id {
			return u, true
		}
	}
	return entities.LocalUser{}, false
}

// Len reports how many records were loaded.
func (s *CredentialStore) Len() int {
	return len(s.users)
}
