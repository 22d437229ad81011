package oauth2

import "errors"

var (
	ErrNoAccessToken = errors.New("token response contained no access token")
	ErrStateMismatch = errors.New("state mismatch")
)
