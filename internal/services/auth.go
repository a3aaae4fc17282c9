// Package services contains the vault engine's business logic. This file
// implements AuthService: PIN verification against the real and decoy
// credentials, rate limiting per client address, credential updates, and
// fingerprint-based unlock via an external WebAuthn verifier.
package services

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vantavault/vantavault/internal/common"
	"github.com/vantavault/vantavault/internal/config"
	"github.com/vantavault/vantavault/internal/cryptox"
	"github.com/vantavault/vantavault/internal/dbx"
	"github.com/vantavault/vantavault/internal/logging"
	"github.com/vantavault/vantavault/internal/models"
	"github.com/vantavault/vantavault/internal/repositories/repomanager"
	"github.com/vantavault/vantavault/internal/webauthn"
)

const (
	// Failure threshold and windows for the per-address lockout.
	maxFailedAttempts = 5
	attemptWindow     = time.Hour
	blockDuration     = time.Hour

	serverWrapInfo = "master-wrap"
)

// pinDenylist rejects the obvious sequential and common choices. All-same
// digits are rejected separately for any length.
var pinDenylist = map[string]struct{}{
	"1234": {}, "4321": {}, "0123": {}, "12345": {}, "54321": {},
	"123456": {}, "654321": {}, "012345": {}, "123123": {}, "112233": {},
	"696969": {}, "121212": {},
}

// ClientInfo identifies the caller of an authentication attempt for rate
// limiting and audit purposes.
type ClientInfo struct {
	Addr  string
	Agent string
}

// AuthService verifies PINs, enforces the per-address lockout, and manages
// credentials for both vault identities.
type AuthService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	verifier    webauthn.Verifier
	logger      logging.Logger
	pinMin      int
	pinMax      int
	serverKey   []byte
	now         func() time.Time
}

func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, verifier webauthn.Verifier, cfg *config.Config, logger logging.Logger) (*AuthService, error) {
	serverKey, err := cryptox.DeriveServerKey([]byte(cfg.SecretKey), serverWrapInfo)
	if err != nil {
		return nil, fmt.Errorf("deriving server key: %w", err)
	}
	return &AuthService{
		db:          db,
		repomanager: m,
		verifier:    verifier,
		logger:      logger,
		pinMin:      cfg.PINMinDigits,
		pinMax:      cfg.PINMaxDigits,
		serverKey:   serverKey,
		now:         time.Now,
	}, nil
}

// IsBlocked reports whether the client address has an active lockout.
// An expired block is cleared as a side effect, so the next failure after
// a block starts a fresh count at 1.
func (s *AuthService) IsBlocked(ctx context.Context, addr string) (bool, error) {
	repo := s.repomanager.Attempts(s.db)

	rec, err := repo.Get(ctx, addr)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	if rec.BlockedUntil == nil {
		return false, nil
	}

	now := s.now().UTC()
	if rec.BlockedUntil.After(now) {
		return true, nil
	}

	// lazily clear the expired block
	if err := repo.Reset(ctx, addr); err != nil {
		return false, err
	}
	return false, nil
}

// Verify checks a PIN against the real credential first, then the decoy,
// and returns the identity that matched along with its unwrapped master
// key. A PIN matching neither returns common.ErrAuthFailed with no hint of
// which vault came closer; a blocked address returns common.ErrRateLimited
// before any verification happens.
func (s *AuthService) Verify(ctx context.Context, pin string, client ClientInfo) (models.VaultIdentity, []byte, error) {
	blocked, err := s.IsBlocked(ctx, client.Addr)
	if err != nil {
		return "", nil, err
	}
	if blocked {
		s.audit(ctx, models.AuditPIN, false, client, nil, "rate limited")
		return "", nil, common.ErrRateLimited
	}

	for _, identity := range []models.VaultIdentity{models.IdentityReal, models.IdentityDecoy} {
		cred, err := s.repomanager.Credentials(s.db).Get(ctx, identity)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				continue
			}
			return "", nil, err
		}
		if !cryptox.VerifyPINHash(cred.PINHash, pin, cred.Iterations) {
			continue
		}

		masterKey, err := s.unwrapWithPIN(cred, pin)
		if err != nil {
			return "", nil, err
		}

		if err := s.repomanager.Attempts(s.db).Reset(ctx, client.Addr); err != nil {
			s.logger.Warn(ctx, "failed to reset attempt counter", "addr", client.Addr, "error", err)
		}
		s.audit(ctx, models.AuditPIN, true, client, &identity, "")
		return identity, masterKey, nil
	}

	if err := s.recordFailure(ctx, client.Addr); err != nil {
		s.logger.Warn(ctx, "failed to record auth failure", "addr", client.Addr, "error", err)
	}
	s.audit(ctx, models.AuditPIN, false, client, nil, "invalid pin")
	return "", nil, common.ErrAuthFailed
}

// recordFailure bumps the address's counter and installs a block once the
// threshold is reached. The increment is a single atomic UPSERT, so
// concurrent failures cannot slip past the threshold.
func (s *AuthService) recordFailure(ctx context.Context, addr string) error {
	now := s.now().UTC()
	repo := s.repomanager.Attempts(s.db)

	count, err := repo.RecordFailure(ctx, addr, now, attemptWindow)
	if err != nil {
		return err
	}
	if count >= maxFailedAttempts {
		return repo.Block(ctx, addr, now.Add(blockDuration))
	}
	return nil
}

// SetCredential installs or replaces the PIN for an identity. The stored
// verification hash gets a fresh salt every update; the identity's master
// key is preserved (or created on first set) and re-wrapped under the new
// PIN, so existing payloads never need re-encryption.
func (s *AuthService) SetCredential(ctx context.Context, identity models.VaultIdentity, newPIN string) error {
	if err := s.validatePIN(newPIN); err != nil {
		return err
	}
	return s.setCredentialOn(ctx, s.db, identity, newPIN)
}

// setCredentialOn writes a credential through db, which may be a
// transaction. The PIN must already be validated.
func (s *AuthService) setCredentialOn(ctx context.Context, db dbx.DBTX, identity models.VaultIdentity, newPIN string) error {
	repo := s.repomanager.Credentials(db)

	masterKey := cryptox.NewFileKey()
	if existing, err := repo.Get(ctx, identity); err == nil {
		// keep the master key so stored objects stay readable
		masterKey, err = cryptox.UnwrapKey(existing.ServerWrappedKey, existing.ServerWrapNonce, s.serverKey)
		if err != nil {
			return fmt.Errorf("unwrapping master key: %w", err)
		}
	} else if !errors.Is(err, common.ErrNotFound) {
		return err
	}
	defer common.WipeByteArray(masterKey)

	salt := common.GenerateRandByteArray(16)
	unlockKey := cryptox.DeriveUnlockKey(newPIN, salt)
	defer common.WipeByteArray(unlockKey)

	wrapped, wrapNonce, err := cryptox.WrapKey(masterKey, unlockKey)
	if err != nil {
		return err
	}
	serverWrapped, serverNonce, err := cryptox.WrapKey(masterKey, s.serverKey)
	if err != nil {
		return err
	}

	return repo.Upsert(ctx, &models.Credential{
		Identity:         identity,
		PINHash:          cryptox.HashPIN(newPIN, cryptox.MinKDFIterations),
		WrappedMasterKey: wrapped,
		WrapNonce:        wrapNonce,
		ServerWrappedKey: serverWrapped,
		ServerWrapNonce:  serverNonce,
		KeySalt:          salt,
		Iterations:       cryptox.MinKDFIterations,
		UpdatedAt:        s.now().UTC(),
	})
}

// IsInitialized reports whether the real-vault credential has been set.
// First-run setup flows key off this.
func (s *AuthService) IsInitialized(ctx context.Context) (bool, error) {
	return s.repomanager.Credentials(s.db).Exists(ctx, models.IdentityReal)
}

// Setup performs first-run initialization: sets the real PIN and, when
// decoyPIN is non-empty, the decoy PIN. The two PINs must differ, otherwise
// verification order would silently shadow the decoy vault.
// Setup creates both credentials. When decoyPIN is empty a random 6-digit
// decoy is generated so the decoy vault always exists; the PIN in effect is
// returned either way.
func (s *AuthService) Setup(ctx context.Context, realPIN, decoyPIN string, client ClientInfo) (string, error) {
	initialized, err := s.IsInitialized(ctx)
	if err != nil {
		return "", err
	}
	if initialized {
		return "", fmt.Errorf("%w: vault already initialized", common.ErrInvalidParameter)
	}
	if decoyPIN == "" {
		decoyPIN, err = s.randomDecoyPIN(realPIN)
		if err != nil {
			return "", err
		}
	}
	if decoyPIN == realPIN {
		return "", fmt.Errorf("%w: decoy pin must differ from real pin", common.ErrInvalidParameter)
	}

	// both PINs are validated before anything is written, and both
	// credentials land in one transaction: a refused Setup leaves the
	// vault uninitialized and retryable
	if err := s.validatePIN(realPIN); err != nil {
		return "", err
	}
	if err := s.validatePIN(decoyPIN); err != nil {
		return "", fmt.Errorf("decoy pin: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.setCredentialOn(ctx, tx, models.IdentityReal, realPIN); err != nil {
			return err
		}
		return s.setCredentialOn(ctx, tx, models.IdentityDecoy, decoyPIN)
	})
	if err != nil {
		return "", err
	}
	s.audit(ctx, models.AuditSetup, true, client, nil, "")
	return decoyPIN, nil
}

// randomDecoyPIN draws 6-digit PINs until one passes the policy and differs
// from the real PIN.
func (s *AuthService) randomDecoyPIN(realPIN string) (string, error) {
	buf := make([]byte, 6)
	for attempt := 0; attempt < 100; attempt++ {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("random decoy pin: %w", err)
		}
		for i, b := range buf {
			buf[i] = '0' + b%10
		}
		pin := string(buf)
		if pin == realPIN || s.validatePIN(pin) != nil {
			continue
		}
		return pin, nil
	}
	return "", errors.New("random decoy pin: no candidate found")
}

// RegisterFingerprint starts a WebAuthn registration ceremony.
func (s *AuthService) RegisterFingerprint(ctx context.Context, userID string) ([]byte, error) {
	return s.verifier.Register(ctx, userID)
}

// CompleteFingerprintRegistration verifies the attestation response and
// persists the resulting credential.
func (s *AuthService) CompleteFingerprintRegistration(ctx context.Context, userID string, response []byte) error {
	cred, err := s.verifier.VerifyRegistration(ctx, userID, response)
	if err != nil {
		return common.ErrAuthFailed
	}
	return s.repomanager.WebAuthnCreds(s.db).Insert(ctx, &models.WebAuthnCredential{
		UserID:       userID,
		CredentialID: cred.CredentialID,
		PublicKey:    cred.PublicKey,
		SignCount:    cred.SignCount,
		CreatedAt:    s.now().UTC(),
	})
}

// BeginFingerprint starts an assertion ceremony.
func (s *AuthService) BeginFingerprint(ctx context.Context, userID string) ([]byte, error) {
	return s.verifier.Authenticate(ctx, userID)
}

// VerifyFingerprint checks an assertion response. Fingerprint always
// unlocks the real vault: the decoy is reachable only by PIN. The master
// key comes from the server-wrapped copy, since no PIN is available on
// this path. Rate limiting applies the same as for PINs.
func (s *AuthService) VerifyFingerprint(ctx context.Context, userID string, response []byte, client ClientInfo) (models.VaultIdentity, []byte, error) {
	blocked, err := s.IsBlocked(ctx, client.Addr)
	if err != nil {
		return "", nil, err
	}
	if blocked {
		s.audit(ctx, models.AuditFingerprint, false, client, nil, "rate limited")
		return "", nil, common.ErrRateLimited
	}

	credentialID, signCount, err := s.verifier.VerifyAuthentication(ctx, userID, response)
	if err != nil {
		if err := s.recordFailure(ctx, client.Addr); err != nil {
			s.logger.Warn(ctx, "failed to record auth failure", "addr", client.Addr, "error", err)
		}
		s.audit(ctx, models.AuditFingerprint, false, client, nil, "assertion failed")
		return "", nil, common.ErrAuthFailed
	}

	now := s.now().UTC()
	if err := s.repomanager.WebAuthnCreds(s.db).UpdateSignCount(ctx, credentialID, signCount, now); err != nil {
		s.logger.Warn(ctx, "failed to update sign count", "error", err)
	}

	cred, err := s.repomanager.Credentials(s.db).Get(ctx, models.IdentityReal)
	if err != nil {
		return "", nil, err
	}
	masterKey, err := cryptox.UnwrapKey(cred.ServerWrappedKey, cred.ServerWrapNonce, s.serverKey)
	if err != nil {
		return "", nil, err
	}

	if err := s.repomanager.Attempts(s.db).Reset(ctx, client.Addr); err != nil {
		s.logger.Warn(ctx, "failed to reset attempt counter", "addr", client.Addr, "error", err)
	}
	identity := models.IdentityReal
	s.audit(ctx, models.AuditFingerprint, true, client, &identity, "")
	return identity, masterKey, nil
}

// unwrapWithPIN recovers the identity's master key from the credential row
// using the PIN-derived unlock key.
func (s *AuthService) unwrapWithPIN(cred *models.Credential, pin string) ([]byte, error) {
	unlockKey := cryptox.DeriveUnlockKey(pin, cred.KeySalt)
	defer common.WipeByteArray(unlockKey)
	return cryptox.UnwrapKey(cred.WrappedMasterKey, cred.WrapNonce, unlockKey)
}

// validatePIN enforces the PIN policy: digits only, length within the
// configured bounds, not all one digit, not on the denylist.
func (s *AuthService) validatePIN(pin string) error {
	if len(pin) < s.pinMin || len(pin) > s.pinMax {
		return fmt.Errorf("%w: pin must be %d-%d digits", common.ErrInvalidParameter, s.pinMin, s.pinMax)
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return fmt.Errorf("%w: pin must contain only digits", common.ErrInvalidParameter)
		}
	}
	if strings.Count(pin, pin[:1]) == len(pin) {
		return fmt.Errorf("%w: pin must not repeat one digit", common.ErrInvalidParameter)
	}
	if _, bad := pinDenylist[pin]; bad {
		return fmt.Errorf("%w: pin is too common", common.ErrInvalidParameter)
	}
	return nil
}

// audit appends an event; failures are logged and never block the caller.
func (s *AuthService) audit(ctx context.Context, kind models.AuditKind, success bool, client ClientInfo, identity *models.VaultIdentity, reason string) {
	e := &models.AuditEvent{
		Timestamp:   s.now().UTC(),
		Kind:        kind,
		Success:     success,
		ClientAddr:  client.Addr,
		ClientAgent: client.Agent,
		Identity:    identity,
	}
	if reason != "" {
		e.FailureReason = &reason
	}
	if err := s.repomanager.Audit(s.db).Insert(ctx, e); err != nil {
		s.logger.Warn(ctx, "failed to write audit event", "kind", string(kind), "error", err)
	}
}

// RecentEvents returns the newest audit events, optionally filtered to one
// vault identity.
func (s *AuthService) RecentEvents(ctx context.Context, limit int, identity *models.VaultIdentity) ([]models.AuditEvent, error) {
	return s.repomanager.Audit(s.db).Recent(ctx, limit, identity)
}
