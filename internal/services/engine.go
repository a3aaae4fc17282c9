package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/vantavault/vantavault/internal/blob"
	"github.com/vantavault/vantavault/internal/common"
	"github.com/vantavault/vantavault/internal/config"
	"github.com/vantavault/vantavault/internal/logging"
	"github.com/vantavault/vantavault/internal/models"
	"github.com/vantavault/vantavault/internal/repositories/repomanager"
	"github.com/vantavault/vantavault/internal/session"
	"github.com/vantavault/vantavault/internal/webauthn"
)

// Engine is the façade the route layer calls. Authentication mints a
// session token; every vault operation takes that token, resolves it to an
// unlocked session (identity + master key), and refuses expired or unknown
// tokens instead of trusting a caller-supplied identity.
type Engine struct {
	Auth    *AuthService
	Objects *ObjectService
	Shares  *ShareService

	sessions  *session.Store
	jwtSecret []byte
}

func NewEngine(db *sql.DB, m repomanager.RepositoryManager, store blob.Store, verifier webauthn.Verifier, cfg *config.Config, logger logging.Logger) (*Engine, error) {
	auth, err := NewAuthService(db, m, verifier, cfg, logger)
	if err != nil {
		return nil, err
	}
	shares, err := NewShareService(db, m, store, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Engine{
		Auth:      auth,
		Objects:   NewObjectService(db, m, store, cfg, logger),
		Shares:    shares,
		sessions:  session.NewStore(cfg.SessionTTL),
		jwtSecret: []byte(cfg.SecretKey),
	}, nil
}

// Unlock verifies a PIN and, on success, opens a session and returns its
// bearer token. The decoy PIN yields a token scoped to the decoy vault;
// the caller cannot tell which identity it unlocked from the token alone.
func (e *Engine) Unlock(ctx context.Context, pin string, client ClientInfo) (string, error) {
	identity, masterKey, err := e.Auth.Verify(ctx, pin, client)
	if err != nil {
		return "", err
	}
	sess := e.sessions.Create(identity, masterKey)
	return session.GenerateToken(sess.ID, e.jwtSecret)
}

// UnlockFingerprint opens a real-vault session from a verified WebAuthn
// assertion.
func (e *Engine) UnlockFingerprint(ctx context.Context, userID string, response []byte, client ClientInfo) (string, error) {
	identity, masterKey, err := e.Auth.VerifyFingerprint(ctx, userID, response, client)
	if err != nil {
		return "", err
	}
	sess := e.sessions.Create(identity, masterKey)
	return session.GenerateToken(sess.ID, e.jwtSecret)
}

// Lock invalidates the session behind a token, wiping its master key.
// Unknown or already-expired tokens are a no-op.
func (e *Engine) Lock(token string) {
	id, err := session.GetSessionIDFromToken(token, e.jwtSecret)
	if err != nil {
		return
	}
	e.sessions.Invalidate(id)
}

// LockAll invalidates every open session.
func (e *Engine) LockAll() {
	e.sessions.InvalidateAll()
}

// resolve turns a bearer token into its live session, refreshing the
// inactivity window.
func (e *Engine) resolve(token string) (*session.Session, error) {
	id, err := session.GetSessionIDFromToken(token, e.jwtSecret)
	if err != nil {
		return nil, err
	}
	return e.sessions.Get(id)
}

// Identity reports which vault the token is unlocked for.
func (e *Engine) Identity(token string) (models.VaultIdentity, error) {
	sess, err := e.resolve(token)
	if err != nil {
		return "", err
	}
	return sess.Identity, nil
}

// StoreObject encrypts and stores a payload in the session's vault.
func (e *Engine) StoreObject(ctx context.Context, token string, payload []byte, displayName, folderID string) (*models.StoredObject, error) {
	sess, err := e.resolve(token)
	if err != nil {
		return nil, err
	}
	return e.Objects.Store(ctx, sess.Identity, sess.MasterKey, payload, displayName, folderID)
}

// FetchObject returns a decrypted payload from the session's vault.
func (e *Engine) FetchObject(ctx context.Context, token, id string) ([]byte, *models.StoredObject, error) {
	sess, err := e.resolve(token)
	if err != nil {
		return nil, nil, err
	}
	return e.Objects.Fetch(ctx, sess.Identity, sess.MasterKey, id)
}

// FetchThumbnail returns an object's decrypted thumbnail.
func (e *Engine) FetchThumbnail(ctx context.Context, token, id string) ([]byte, error) {
	sess, err := e.resolve(token)
	if err != nil {
		return nil, err
	}
	return e.Objects.FetchThumbnail(ctx, sess.Identity, sess.MasterKey, id)
}

// ListObjects lists a folder in the session's vault.
func (e *Engine) ListObjects(ctx context.Context, token, folderID string, includeHidden bool, limit int) ([]models.StoredObject, error) {
	sess, err := e.resolve(token)
	if err != nil {
		return nil, err
	}
	return e.Objects.List(ctx, sess.Identity, folderID, includeHidden, limit)
}

// SoftDeleteObject soft-deletes in the real vault, destroys in the decoy.
func (e *Engine) SoftDeleteObject(ctx context.Context, token, id, reason string) error {
	sess, err := e.resolve(token)
	if err != nil {
		return err
	}
	return e.Objects.SoftDelete(ctx, sess.Identity, id, reason)
}

// RestoreObject brings a soft-deleted object back from the recycle bin.
func (e *Engine) RestoreObject(ctx context.Context, token, id string) error {
	sess, err := e.resolve(token)
	if err != nil {
		return err
	}
	return e.Objects.Restore(ctx, sess.Identity, id)
}

// RecycleBin lists the session vault's pending-purge entries.
func (e *Engine) RecycleBin(ctx context.Context, token string) ([]models.RecycleEntry, error) {
	sess, err := e.resolve(token)
	if err != nil {
		return nil, err
	}
	return e.Objects.RecycleBin(ctx, sess.Identity)
}

// CreateShare issues a share link for a real-vault object. Decoy sessions
// cannot share: the decoy vault has no outward surface.
func (e *Engine) CreateShare(ctx context.Context, token, objectID string, expiry time.Duration, maxViews int, password string) (*models.ShareToken, error) {
	sess, err := e.resolve(token)
	if err != nil {
		return nil, err
	}
	if sess.Identity != models.IdentityReal {
		return nil, common.ErrNotFound
	}
	return e.Shares.Create(ctx, sess.MasterKey, objectID, expiry, maxViews, password)
}

// RedeemShare needs no session; the token itself is the capability.
func (e *Engine) RedeemShare(ctx context.Context, token, password string) (*SharedContent, error) {
	return e.Shares.Redeem(ctx, token, password)
}

// Stats summarizes the session's vault.
func (e *Engine) Stats(ctx context.Context, token string) (*models.VaultStats, error) {
	sess, err := e.resolve(token)
	if err != nil {
		return nil, err
	}
	return e.Objects.Stats(ctx, sess.Identity)
}

// Setup runs first-time initialization. No session exists yet, so it is
// the one mutating operation that takes no token.
func (e *Engine) Setup(ctx context.Context, realPIN, decoyPIN string, client ClientInfo) (string, error) {
	return e.Auth.Setup(ctx, realPIN, decoyPIN, client)
}

// SetCredential changes the PIN of the vault the session is unlocked for.
func (e *Engine) SetCredential(ctx context.Context, token, newPIN string) error {
	sess, err := e.resolve(token)
	if err != nil {
		return err
	}
	return e.Auth.SetCredential(ctx, sess.Identity, newPIN)
}

// IsBlocked reports whether a client address is currently locked out.
func (e *Engine) IsBlocked(ctx context.Context, addr string) (bool, error) {
	return e.Auth.IsBlocked(ctx, addr)
}

// RecentEvents returns audit history. Decoy sessions only see decoy-tagged
// events; real sessions see everything.
func (e *Engine) RecentEvents(ctx context.Context, token string, limit int) ([]models.AuditEvent, error) {
	sess, err := e.resolve(token)
	if err != nil {
		return nil, err
	}
	if sess.Identity == models.IdentityDecoy {
		decoy := models.IdentityDecoy
		return e.Auth.RecentEvents(ctx, limit, &decoy)
	}
	return e.Auth.RecentEvents(ctx, limit, nil)
}

// SetHiddenObject toggles an object's hidden flag in the session's vault.
func (e *Engine) SetHiddenObject(ctx context.Context, token, id string, hidden bool) error {
	sess, err := e.resolve(token)
	if err != nil {
		return err
	}
	return e.Objects.SetHidden(ctx, sess.Identity, id, hidden)
}

// CreateFolder adds a folder to the session's vault.
func (e *Engine) CreateFolder(ctx context.Context, token, name string, parentID *string, color, icon string, sortOrder int) (*models.Folder, error) {
	sess, err := e.resolve(token)
	if err != nil {
		return nil, err
	}
	return e.Objects.CreateFolder(ctx, sess.Identity, name, parentID, color, icon, sortOrder)
}

// ListFolders lists folders under a parent (nil for the root level).
func (e *Engine) ListFolders(ctx context.Context, token string, parentID *string) ([]models.Folder, error) {
	sess, err := e.resolve(token)
	if err != nil {
		return nil, err
	}
	return e.Objects.ListFolders(ctx, sess.Identity, parentID)
}

// RenameFolder updates a folder's name, color, icon or sort order.
func (e *Engine) RenameFolder(ctx context.Context, token, id string, u FolderUpdate) error {
	sess, err := e.resolve(token)
	if err != nil {
		return err
	}
	return e.Objects.RenameFolder(ctx, sess.Identity, id, u)
}

// DeleteFolder removes a folder, moving its objects to the default folder.
func (e *Engine) DeleteFolder(ctx context.Context, token, id string) error {
	sess, err := e.resolve(token)
	if err != nil {
		return err
	}
	return e.Objects.DeleteFolder(ctx, sess.Identity, id)
}

// RevokeShare deletes a share link. Decoy sessions get the same answer a
// missing link would, matching CreateShare.
func (e *Engine) RevokeShare(ctx context.Context, token, shareToken string) error {
	sess, err := e.resolve(token)
	if err != nil {
		return err
	}
	if sess.Identity != models.IdentityReal {
		return common.ErrNotFound
	}
	return e.Shares.Revoke(ctx, shareToken)
}

// Sweep runs the periodic maintenance pass: expired recycle entries,
// expired share links, and idle sessions.
func (e *Engine) Sweep(ctx context.Context) (purged int, sharesDropped int64, sessionsDropped int) {
	var err error
	purged, err = e.Objects.PurgeExpired(ctx)
	if err != nil {
		e.Objects.logger.Warn(ctx, "purge sweep failed", "error", err)
	}
	sharesDropped, err = e.Shares.SweepExpired(ctx)
	if err != nil {
		e.Shares.logger.Warn(ctx, "share sweep failed", "error", err)
	}
	sessionsDropped = e.sessions.Sweep()
	return purged, sharesDropped, sessionsDropped
}
