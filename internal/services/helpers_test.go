package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vantavault/vantavault/internal/blob"
	"github.com/vantavault/vantavault/internal/config"
	"github.com/vantavault/vantavault/internal/logging"
	"github.com/vantavault/vantavault/internal/repositories/repomanager"
	"github.com/vantavault/vantavault/internal/webauthn"
)

var testDBCounter atomic.Int64

// newTestDB opens a private in-memory SQLite database with the full schema
// applied.
func newTestDB(t *testing.T) (*sql.DB, repomanager.RepositoryManager) {
	t.Helper()
	dsn := fmt.Sprintf("file:services_%d?mode=memory&cache=shared", testDBCounter.Add(1))
	db, m, err := repomanager.Open(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, m
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "test-secret"
	cfg.StorageDir = t.TempDir()
	return cfg
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func newTestStore(t *testing.T, cfg *config.Config) blob.Store {
	t.Helper()
	store, err := blob.NewFSStore(cfg.StorageDir)
	require.NoError(t, err)
	return store
}

// fakeVerifier is a canned WebAuthn verifier: any response equal to
// okResponse verifies, everything else fails.
type fakeVerifier struct {
	okResponse   []byte
	credentialID []byte
	signCount    int64
}

func (f *fakeVerifier) Register(ctx context.Context, userID string) ([]byte, error) {
	return []byte("reg-challenge"), nil
}

func (f *fakeVerifier) VerifyRegistration(ctx context.Context, userID string, response []byte) (*webauthn.Credential, error) {
	if string(response) != string(f.okResponse) {
		return nil, errors.New("bad attestation")
	}
	return &webauthn.Credential{
		CredentialID: f.credentialID,
		PublicKey:    []byte("pubkey"),
		SignCount:    f.signCount,
	}, nil
}

func (f *fakeVerifier) Authenticate(ctx context.Context, userID string) ([]byte, error) {
	return []byte("auth-challenge"), nil
}

func (f *fakeVerifier) VerifyAuthentication(ctx context.Context, userID string, response []byte) ([]byte, int64, error) {
	if string(response) != string(f.okResponse) {
		return nil, 0, errors.New("bad assertion")
	}
	f.signCount++
	return f.credentialID, f.signCount, nil
}

func newFakeVerifier() *fakeVerifier {
	return &fakeVerifier{
		okResponse:   []byte("good-response"),
		credentialID: []byte("cred-1"),
	}
}

// newTestAuth builds an AuthService over a fresh database with a
// controllable clock.
func newTestAuth(t *testing.T) (*AuthService, *sql.DB, repomanager.RepositoryManager, *time.Time) {
	t.Helper()
	db, m := newTestDB(t)
	cfg := testConfig(t)

	svc, err := NewAuthService(db, m, newFakeVerifier(), cfg, testLogger())
	require.NoError(t, err)

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	clock := &now
	svc.now = func() time.Time { return *clock }
	return svc, db, m, clock
}
