package entities

// Method identifies how an identity was proven.
type Method string

const (
	MethodLocal  Method = "local"
	MethodGitHub Method = "github"
	MethodOAuth2 Method = "oauth2"
)

// Identity is the verified result of an authentication attempt: who the
// caller is and by which method. It is immutable once constructed and is
// all downstream handlers ever see of the caller.
type Identity struct {
	ID       int    `json:"id"`
	Method   Method `json:"method"`
	Username string `json:"username"`
	APIToken string `json:"apitoken,omitempty"`
}

// Anonymous is the identity of an unauthenticated caller.
func Anonymous() Identity {
	return Identity{
		ID:       0,
		Method:   "",
		Username: "anonymous",
	}
}

// IsAnonymous reports whether the identity belongs to no verified caller.
func (i Identity) IsAnonymous() bool {
	return i.Method == ""
}

// LocalUser is one record of the operator-supplied user list. The list is
// parsed once at startup and never modified afterwards.
//
// Password is either a plaintext value (Insecure=true) or the hex-encoded
// HMAC-SHA256 of the real password keyed with the session key.
type LocalUser struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Insecure bool   `json:"insecure,omitempty"`
	APIToken string `json:"apitoken,omitempty"`
}

// Identity converts a matched record into the caller identity. Credentials
// never cross this boundary; the API token is carried only so that handlers
// can report which token authenticated an API call.
func (u LocalUser) Identity() Identity {
	return Identity{
		ID:       u.ID,
		Method:   MethodLocal,
		Username: u.Username,
		APIToken: u.APIToken,
	}
}
