package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Auth
		GitHub
		OAuth2
		Database
		Audit
		Global
	}

	HTTP struct {
		Port int32
		Host string
	}

	// Auth holds the local-strategy settings. Users is the raw JSON blob
	// from the environment; it is parsed exactly once at startup.
	Auth struct {
		Users           string
		SessionKey      string // HMAC key for hashed local passwords
		SessionLifetime time.Duration
		SecureCookies   bool
	}

	// GitHub holds the GitHub OAuth client settings. The strategy is only
	// active when ClientID, ClientSecret and CallbackURL are all set.
	GitHub struct {
		ClientID     string
		ClientSecret string
		CallbackURL  string
		Org          string // allowed organization; empty means nobody passes
	}

	// OAuth2 holds the generic OAuth2 client settings. The strategy is only
	// active when all six required fields are set. Scope is space-delimited.
	OAuth2 struct {
		ClientName   string
		AuthURL      string
		TokenURL     string
		ClientID     string
		ClientSecret string
		CallbackURL  string
		Scope        string
	}

	Database struct {
		Path string
	}

	Audit struct {
		RetentionDays int    // Days to keep auth events (default: 30)
		PruneSchedule string // Cron format: "0 3 * * *" = daily at 03:00
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 2000)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)

	v.SetDefault("database_path", DefaultDatabasePath)

	// Auth defaults
	v.SetDefault("auth_users", "")
	v.SetDefault("auth_session_key", "")
	v.SetDefault("auth_session_lifetime", "24h")
	v.SetDefault("auth_secure_cookies", true)

	// OAuth2 defaults
	v.SetDefault("oauth2_client_scope", DefaultOAuth2Scope)

	// Audit defaults
	v.SetDefault("audit_retention_days", 30)
	v.SetDefault("audit_prune_schedule", "0 3 * * *")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Auth: Auth{
			Users:           v.GetString("AUTH_USERS"),
			SessionKey:      v.GetString("AUTH_SESSION_KEY"),
			SessionLifetime: v.GetDuration("AUTH_SESSION_LIFETIME"),
			SecureCookies:   v.GetBool("AUTH_SECURE_COOKIES"),
		},
		GitHub: GitHub{
			ClientID:     v.GetString("GITHUB_CLIENT_ID"),
			ClientSecret: v.GetString("GITHUB_CLIENT_SECRET"),
			CallbackURL:  v.GetString("GITHUB_CLIENT_CALLBACKURL"),
			Org:          v.GetString("GITHUB_CLIENT_ORG"),
		},
		OAuth2: OAuth2{
			ClientName:   v.GetString("OAUTH2_CLIENT_NAME"),
			AuthURL:      v.GetString("OAUTH2_CLIENT_AUTH_URL"),
			TokenURL:     v.GetString("OAUTH2_CLIENT_TOKEN_URL"),
			ClientID:     v.GetString("OAUTH2_CLIENT_ID"),
			ClientSecret: v.GetString("OAUTH2_CLIENT_SECRET"),
			CallbackURL:  v.GetString("OAUTH2_CLIENT_CALLBACKURL"),
			Scope:        v.GetString("OAUTH2_CLIENT_SCOPE"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Audit: Audit{
			RetentionDays: v.GetInt("AUDIT_RETENTION_DAYS"),
			PruneSchedule: v.GetString("AUDIT_PRUNE_SCHEDULE"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}
