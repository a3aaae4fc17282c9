package models

import "time"

// Credential is the stored authentication material for one vault identity.
// PINHash is a salted PBKDF2 digest used only for verification; the master
// key that actually protects payloads is stored wrapped (AES-GCM) under a
// separate unlock key derived from the PIN, so the PIN's verification hash
// never touches file encryption. ServerWrappedKey is a second copy of the
// master key wrapped under a key derived from the server secret; it lets a
// fingerprint assertion unlock the vault without the PIN.
type Credential struct {
	Identity         VaultIdentity
	PINHash          string
	WrappedMasterKey []byte
	WrapNonce        []byte
	ServerWrappedKey []byte
	ServerWrapNonce  []byte
	KeySalt          []byte
	Iterations       int
	UpdatedAt        time.Time
}

// FailedAttempt tracks authentication failures per client address inside a
// rolling window. BlockedUntil is nil unless a block is active; an expired
// block is lazily cleared on the next read.
type FailedAttempt struct {
	ClientAddr   string
	Attempts     int
	WindowStart  time.Time
	BlockedUntil *time.Time
}
