// Package webauthn defines the seam between the engine and whatever
// WebAuthn/fingerprint library the outer application wires in. The engine
// never parses authenticator responses itself; it persists the credentials
// a Verifier hands back and asks it to check assertions.
package webauthn

import "context"

// Credential is the registration result the engine persists.
type Credential struct {
	CredentialID []byte
	PublicKey    []byte
	SignCount    int64
}

// Verifier runs the WebAuthn ceremonies.
type Verifier interface {
	// Register begins a registration ceremony and returns the challenge
	// to present to the authenticator.
	Register(ctx context.Context, userID string) (challenge []byte, err error)

	// VerifyRegistration validates an attestation response against the
	// outstanding challenge and returns the credential to store.
	VerifyRegistration(ctx context.Context, userID string, response []byte) (*Credential, error)

	// Authenticate begins an assertion ceremony.
	Authenticate(ctx context.Context, userID string) (challenge []byte, err error)

	// VerifyAuthentication validates an assertion response. On success it
	// returns the credential id that signed and its updated sign count.
	VerifyAuthentication(ctx context.Context, userID string, response []byte) (credentialID []byte, signCount int64, err error)
}
