package config

const (
	// DefaultDatabasePath is where sessions and audit events are stored.
	DefaultDatabasePath = "./authgate.db"

	// DefaultOAuth2Scope is requested when OAUTH2_CLIENT_SCOPE is unset.
	DefaultOAuth2Scope = "user:email"
)
