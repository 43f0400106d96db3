// Package password provides argon2id hashing for user passwords and for
// single-use security tokens. Tokens deliberately use the same slow,
// password-grade hash: a stored token hash must resist offline brute force
// exactly like a password hash does.
package password

import "github.com/matthewhartstonge/argon2"

// Hasher wraps an argon2id configuration.
type Hasher struct {
	cfg argon2.Config
}

// NewHasher returns a Hasher with the library's recommended defaults.
func NewHasher() *Hasher {
	return &Hasher{cfg: argon2.DefaultConfig()}
}

// Hash derives an encoded argon2id hash from the plaintext.
func (h *Hasher) Hash(plain string) (string, error) {
	encoded, err := h.cfg.HashEncoded([]byte(plain))
	if err != nil {
		return "", err
	}
	return string(encoded), nil
}

// Verify reports whether plain matches the encoded hash. The comparison is
// performed by the argon2 library and is constant-time over the digest.
func (h *Hasher) Verify(plain, encoded string) (bool, error) {
	return argon2.VerifyEncoded([]byte(plain), []byte(encoded))
}
