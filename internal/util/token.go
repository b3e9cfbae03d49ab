package util

import (
	"crypto/rand"
	"encoding/base64"
)

const resetTokenBytes = 32

// GenerateResetToken returns a URL-safe opaque token with 256 bits of
// entropy, suitable for embedding in a password-reset link.
func GenerateResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
