// Package auth implements the pluggable multi-strategy authenticator that
// gates every request entering the gateway.
//
// Four strategies are supported, discovered from the environment at startup:
//
//   - local: username/password against the AUTH_USERS list
//   - bearer: API token against the same list (active whenever local is)
//   - github: GitHub OAuth with a mandatory organization membership check
//   - oauth2: a generic OAuth2 provider, no secondary check
//
// A strategy is active only when every configuration field it needs is
// present; anything missing disables it silently. When no strategy is
// active the gate waves every request through.
//
// # Configuration
//
//	AUTH_USERS='[{"id":1,"username":"admin","password":"...","insecure":false}]'
//	AUTH_SESSION_KEY=<hmac key for hashed passwords>
//	GITHUB_CLIENT_ID / GITHUB_CLIENT_SECRET / GITHUB_CLIENT_CALLBACKURL
//	GITHUB_CLIENT_ORG=<allowed organization>
//	OAUTH2_CLIENT_NAME / OAUTH2_CLIENT_AUTH_URL / OAUTH2_CLIENT_TOKEN_URL
//	OAUTH2_CLIENT_ID / OAUTH2_CLIENT_SECRET / OAUTH2_CLIENT_CALLBACKURL
//
// # Usage
//
//	methods := auth.DetectMethods(cfg)
//	store, err := auth.NewCredentialStore(cfg.Auth.Users, cfg.Auth.SessionKey)
//	engine := auth.NewEngine(store, auth.NewOrgChecker(), cfg.GitHub.Org)
//	router.Use(middleware.Handler())
//
// Handlers read the caller with auth.GetIdentity(c), which returns the
// anonymous identity when no verification has occurred.
package auth
