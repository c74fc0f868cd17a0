// File: internal/platform/crypto/generator.go
package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
)

// GenerateSecureRandomString returns n random bytes encoded as URL-safe base64.
func GenerateSecureRandomString(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// ConstantTimeEqual compares two secrets without leaking their common prefix length.
func ConstantTimeEqual(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
