// Package securetoken generates opaque random tokens for password reset and
// email verification links.
package securetoken

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// DefaultByteLength is the entropy of a generated token in bytes.
const DefaultByteLength = 32

// Generate returns byteLength bytes from the system CSPRNG, hex encoded.
// The plaintext is handed to the user once and never persisted or logged;
// only an argon2 hash of it is stored.
func Generate(byteLength int) (string, error) {
	if byteLength <= 0 {
		byteLength = DefaultByteLength
	}
	buf := make([]byte, byteLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(buf), nil
}
