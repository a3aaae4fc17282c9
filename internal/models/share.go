package models

import "time"

// ShareToken is a bearer capability granting limited, time-boxed access to
// one real-vault object without full authentication. The token value is 32
// random bytes, URL-safe base64 encoded. WrappedKey holds the object's file
// key re-wrapped under the server share key so redemption does not depend
// on any vault session.
type ShareToken struct {
	Token          string
	ObjectID       string
	ExpiresAt      time.Time
	ViewCount      int
	MaxViews       int
	PasswordHash   *string
	WrappedKey     []byte
	KeyNonce       []byte
	CreatedAt      time.Time
	LastAccessedAt *time.Time
}
