package webauthn

import (
	"context"
	"errors"
)

// ErrDisabled is returned by Disabled for every ceremony.
var ErrDisabled = errors.New("webauthn not configured")

// Disabled is the Verifier used when no WebAuthn library is wired in:
// every ceremony fails, so fingerprint unlock stays unavailable and PIN
// remains the only path.
type Disabled struct{}

func (Disabled) Register(ctx context.Context, userID string) ([]byte, error) {
	return nil, ErrDisabled
}

func (Disabled) VerifyRegistration(ctx context.Context, userID string, response []byte) (*Credential, error) {
	return nil, ErrDisabled
}

func (Disabled) Authenticate(ctx context.Context, userID string) ([]byte, error) {
	return nil, ErrDisabled
}

func (Disabled) VerifyAuthentication(ctx context.Context, userID string, response []byte) ([]byte, int64, error) {
	return nil, 0, ErrDisabled
}
