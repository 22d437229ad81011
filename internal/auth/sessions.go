package auth

import (
	"database/sql"
	"net/http"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"

	"github.com/paasops/authgate/internal/config"
	"github.com/paasops/authgate/internal/entities"
)

// Session data keys. Only {method, id, username} is ever persisted:
// passwords and API tokens never enter the session artifact.
const (
	SessionKeyMethod   = "auth_method"
	SessionKeyUserID   = "auth_user_id"
	SessionKeyUsername = "auth_username"
)

// SessionManager wraps scs.SessionManager with the per-method persist and
// restore contract. Local identities are re-validated against the live
// credential store on every restore; federated identities (github, oauth2)
// are trusted as persisted. That trust boundary is deliberate: federated
// callers are not re-checked against their provider per request.
type SessionManager struct {
	*scs.SessionManager
	store *CredentialStore
}

// NewSessionManager creates a configured session manager. When sqlDB is
// non-nil sessions survive restarts in the sqlite sessions table; otherwise
// scs's in-memory store is used.
func NewSessionManager(sqlDB *sql.DB, store *CredentialStore, cfg config.Auth) (*SessionManager, error) {
	sm := scs.New()

	if sqlDB != nil {
		_, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS sessions (
			token TEXT PRIMARY KEY,
			data BLOB NOT NULL,
			expiry REAL NOT NULL
		);
		CREATE INDEX IF NOT EXISTS sessions_expiry_idx ON sessions(expiry);`)
		if err != nil {
			return nil, err
		}
		sm.Store = sqlite3store.New(sqlDB)
	}

	sm.Lifetime = cfg.SessionLifetime
	sm.IdleTimeout = cfg.SessionLifetime / 2

	sm.Cookie.Name = "authgate_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.Secure = cfg.SecureCookies
	sm.Cookie.SameSite = http.SameSiteLaxMode // OAuth callbacks arrive cross-site
	sm.Cookie.Path = "/"

	return &SessionManager{SessionManager: sm, store: store}, nil
}

// PersistIdentity serializes a resolved identity into the session after a
// successful verification. The session token is renewed first to prevent
// fixation.
func (sm *SessionManager) PersistIdentity(r *http.Request, identity entities.Identity) error {
	if err := sm.RenewToken(r.Context()); err != nil {
		return err
	}

	sm.Put(r.Context(), SessionKeyMethod, string(identity.Method))
	sm.Put(r.Context(), SessionKeyUserID, identity.ID)
	sm.Put(r.Context(), SessionKeyUsername, identity.Username)

	return nil
}

// RestoreIdentity reconstructs the identity from the session artifact,
// dispatching on the persisted method. Restoration failure leaves the
// caller unauthenticated even though they hold a session cookie; there is
// no fallback identity.
func (sm *SessionManager) RestoreIdentity(r *http.Request) (entities.Identity, bool) {
	method := entities.Method(sm.GetString(r.Context(), SessionKeyMethod))

	switch method {
	case entities.MethodLocal:
		// Re-resolve against the current store so a user removed from the
		// configuration loses access without session invalidation logic.
		user, ok := sm.store.FindByID(sm.GetInt(r.Context(), SessionKeyUserID))
		if !ok {
			return entities.Identity{}, false
		}
		return user.Identity(), true

	case entities.MethodGitHub, entities.MethodOAuth2:
		return entities.Identity{
			ID:       sm.GetInt(r.Context(), SessionKeyUserID),
			Method:   method,
			Username: sm.GetString(r.Context(), SessionKeyUsername),
		}, true
	}

	return entities.Identity{}, false
}

// DestroySession removes all session data and invalidates the session.
func (sm *SessionManager) DestroySession(r *http.Request) error {
	return sm.Destroy(r.Context())
}

// IsAuthenticated reports whether the request carries a restorable session.
func (sm *SessionManager) IsAuthenticated(r *http.Request) bool {
	_, ok := sm.RestoreIdentity(r)
	return ok
}
