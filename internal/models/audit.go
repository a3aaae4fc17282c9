package models

import "time"

// AuditKind classifies an audit event.
type AuditKind string

const (
	AuditPIN             AuditKind = "PIN"
	AuditFingerprint     AuditKind = "Fingerprint"
	AuditSetup           AuditKind = "Setup"
	AuditObjectLifecycle AuditKind = "ObjectLifecycle"
)

// AuditEvent is one append-only record of an authentication or
// object-lifecycle event. The application never mutates or deletes these
// rows; retention is an external concern.
type AuditEvent struct {
	ID            int64
	Timestamp     time.Time
	Kind          AuditKind
	Success       bool
	ClientAddr    string
	ClientAgent   string
	Identity      *VaultIdentity
	FailureReason *string
}

// WebAuthnCredential stores a registered fingerprint/WebAuthn credential.
// The protocol itself is delegated to an external verifier; the engine only
// persists what the verifier hands back.
type WebAuthnCredential struct {
	UserID       string
	CredentialID []byte
	PublicKey    []byte
	SignCount    int64
	CreatedAt    time.Time
	LastUsedAt   *time.Time
}
