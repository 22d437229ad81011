package auth

import "github.com/paasops/authgate/internal/config"

// Methods is the set of authentication strategies active for the lifetime
// of the process. It is derived from configuration exactly once; a method
// missing any required field resolves to disabled, never to an error.
type Methods struct {
	Local  bool
	GitHub bool
	OAuth2 bool
}

// DetectMethods inspects the configuration and reports which strategies
// can run. Bearer-token verification rides on Local: it uses the same user
// list and has no switch of its own.
func DetectMethods(cfg *config.Config) Methods {
	return Methods{
		Local: cfg.Auth.Users != "",

		GitHub: cfg.GitHub.ClientID != "" &&
			cfg.GitHub.ClientSecret != "" &&
			cfg.GitHub.CallbackURL != "",

		OAuth2: cfg.OAuth2.ClientName != "" &&
			cfg.OAuth2.AuthURL != "" &&
			cfg.OAuth2.TokenURL != "" &&
			cfg.OAuth2.ClientID != "" &&
			cfg.OAuth2.ClientSecret != "" &&
			cfg.OAuth2.CallbackURL != "",
	}
}

// Enabled reports whether authentication is required at all. With no
// active method the gate passes every request.
func (m Methods) Enabled() bool {
	return m.Local || m.GitHub || m.OAuth2
}

// Active lists the active strategy names for startup logging.
func (m Methods) Active() []string {
	var names []string
	if m.Local {
		names = append(names, "local", "bearer")
	}
	if m.GitHub {
		names = append(names, "github")
	}
	if m.OAuth2 {
		names = append(names, "oauth2")
	}
	return names
}
