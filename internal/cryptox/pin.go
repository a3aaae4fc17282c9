package cryptox

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"

	"github.com/vantavault/vantavault/internal/common"
)

const pinSaltSize = 16

// HashPIN creates a verification hash for a PIN or share password:
// PBKDF2-SHA256 over a fresh random 16-byte salt, encoded as
// base64url(salt || digest). A new salt is generated on every call, so
// updating a credential never reuses one.
func HashPIN(pin string, iterations int) string {
	salt := common.GenerateRandByteArray(pinSaltSize)
	digest := DeriveKey([]byte(pin), salt, iterations)

	buf := make([]byte, 0, pinSaltSize+len(digest))
	buf = append(buf, salt...)
	buf = append(buf, digest...)
	return base64.URLEncoding.EncodeToString(buf)
}

// VerifyPINHash checks a candidate PIN against a stored hash using a
// constant-time digest comparison. Malformed hashes verify as false rather
// than erroring, so a corrupt credential row behaves like a wrong PIN.
func VerifyPINHash(encoded, pin string, iterations int) bool {
	raw, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil || len(raw) <= pinSaltSize {
		return false
	}
	salt := raw[:pinSaltSize]
	stored := raw[pinSaltSize:]
	if len(stored) != sha256.Size {
		return false
	}

	candidate := DeriveKey([]byte(pin), salt, iterations)
	return subtle.ConstantTimeCompare(stored, candidate) == 1
}
