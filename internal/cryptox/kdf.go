// Package cryptox implements the cipher engine: key derivation, the
// authenticated at-rest envelope, PIN hashing, and multi-pass secure erase.
package cryptox

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/pbkdf2"
)

// MinKDFIterations is the floor for PBKDF2 iteration counts. Stored
// credentials record their own count so it can be raised without breaking
// existing hashes.
const MinKDFIterations = 100_000

// KeySize is the size of all symmetric keys in the engine (AES-256).
const KeySize = 32

// DeriveKey derives a 256-bit key from a secret via PBKDF2-SHA256.
// Iteration counts below MinKDFIterations are clamped up.
func DeriveKey(secret, salt []byte, iterations int) []byte {
	if iterations < MinKDFIterations {
		iterations = MinKDFIterations
	}
	return pbkdf2.Key(secret, salt, iterations, KeySize, sha256.New)
}

// DeriveUnlockKey derives the master-key wrapping key from a PIN with
// argon2id. This is a separate derivation from the PIN-verification hash:
// the verification hash is stored, the unlock key never is, so neither one
// can be computed from the other.
func DeriveUnlockKey(pin string, salt []byte) []byte {
	return argon2.IDKey([]byte(pin), salt, 1, 64*1024, 4, KeySize)
}

// DeriveServerKey expands the server secret into a purpose-bound 256-bit
// key via HKDF-SHA256. Distinct info strings yield independent keys from
// the same secret (master-key wrapping, share-key wrapping).
func DeriveServerKey(secret []byte, info string) ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(info)), key); err != nil {
		return nil, err
	}
	return key, nil
}
