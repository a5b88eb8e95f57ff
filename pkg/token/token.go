// Package token generates single-use recovery tokens. Only the SHA-256
// digest of a token is meant to be persisted; the plain value is handed to
// the requester exactly once.
package token

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// DefaultLength is the number of random bytes in a generated token.
const DefaultLength = 20

// Pair holds a freshly generated token in both forms.
type Pair struct {
	Plain string // value returned to the requester
	Hash  string // value to persist
}

// New generates a cryptographically random token of byteLength random bytes,
// hex-encoded, together with its storable hash. A non-positive byteLength
// falls back to DefaultLength.
func New(byteLength int) (Pair, error) {
	if byteLength <= 0 {
		byteLength = DefaultLength
	}

	b := make([]byte, byteLength)
	if _, err := rand.Read(b); err != nil {
		return Pair{}, err
	}

	plain := hex.EncodeToString(b)
	return Pair{Plain: plain, Hash: Hash(plain)}, nil
}

// Hash returns the hex-encoded SHA-256 digest of a plain token.
func Hash(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// Verify reports whether the plain token matches the stored hash.
// The comparison is constant-time to prevent timing attacks.
func Verify(plain, storedHash string) bool {
	if plain == "" || storedHash == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(Hash(plain)), []byte(storedHash)) == 1
}
