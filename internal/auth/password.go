package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// SignPassword computes the hex-encoded HMAC-SHA256 of a password under the
// process-wide session key. Operators store this value in the user list for
// records that are not marked insecure.
func SignPassword(key, password string) string {
	mac := hmac.New(sha256.New, []byte(key))
	mac.Write([]byte(password))
	return hex.EncodeToString(mac.Sum(nil))
}

// matchPassword compares a stored password representation with a supplied
// plaintext. Records marked insecure hold the plaintext verbatim; all other
// records hold a signed value, and without a signing key such a record can
// never match.
func matchPassword(stored, supplied, key string, insecure bool) bool {
	if insecure {
		return secureCompare(stored, supplied)
	}
	if key == "" {
		return false
	}
	return secureCompare(stored, SignPassword(key, supplied))
}

// secureCompare is a constant-time string equality check.
func secureCompare(a, b string) bool {
	return hmac.Equal([]byte(a), []byte(b))
}
