package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// tokenBytes is the raw entropy of a generated token. 32 bytes gives 256
// bits, far beyond brute-force reach for short-lived credentials.
const tokenBytes = 32

// GenerateToken returns a cryptographically secure random token in URL-safe
// base64 encoding (43 characters). Tokens are opaque values; all state about
// them lives in the store.
func GenerateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
