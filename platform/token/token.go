// Package token issues opaque URL-safe tokens for email links.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// DefaultSize is the number of random bytes behind subscription tokens.
const DefaultSize = 32

// GenerateRandomToken returns size random bytes encoded with base64url without padding.
func GenerateRandomToken(size int) (string, error) {
	if size <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", size)
	}
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// New returns a DefaultSize token.
func New() (string, error) {
	return GenerateRandomToken(DefaultSize)
}
