// internal/utils/tokens.go
package utils

import (
	"crypto/rand"
	"encoding/hex"
)

// NewRefreshToken returns the opaque hex credential stored per user for the
// refresh-rotation flow: issued on login, swapped for a new one on every
// /refresh call. nBytes sizes the entropy.
func NewRefreshToken(nBytes int) (string, error) {
	if nBytes <= 0 {
		nBytes = 32 // 256 бит по умолчанию
	}
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
