// Package common defines shared constants and sentinel errors used across
// the vault engine. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Authentication errors. ErrAuthFailed is deliberately generic: callers
	// must not be able to tell a wrong real-vault PIN from a wrong decoy-vault
	// PIN or from a PIN matching neither.
	ErrAuthFailed  = errors.New("authentication failed")
	ErrRateLimited = errors.New("too many failed attempts")

	// Session errors (missing, expired, or malformed session token).
	ErrSessionExpired = errors.New("session expired")

	// Crypto errors. ErrIntegrity means ciphertext failed authentication:
	// tampered data or wrong key. Decryption fails closed.
	ErrIntegrity             = errors.New("integrity check failed")
	ErrSecureEraseIncomplete = errors.New("secure erase incomplete")

	// Validation errors (weak PIN, out-of-range parameters).
	ErrInvalidParameter = errors.New("invalid parameter")

	// Storage errors: the operation aborted with no partial state persisted.
	ErrStorageIO = errors.New("storage i/o error")

	// Share-link errors.
	ErrShareExpired     = errors.New("share link expired")
	ErrViewLimitReached = errors.New("view limit reached")
	ErrPasswordRequired = errors.New("password required")
	ErrInvalidPassword  = errors.New("invalid password")
)
