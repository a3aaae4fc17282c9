package services

import (
	"context"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/vantavault/vantavault/internal/blob"
	"github.com/vantavault/vantavault/internal/common"
	"github.com/vantavault/vantavault/internal/config"
	"github.com/vantavault/vantavault/internal/cryptox"
	"github.com/vantavault/vantavault/internal/logging"
	"github.com/vantavault/vantavault/internal/models"
	"github.com/vantavault/vantavault/internal/repositories/repomanager"
)

const (
	shareTokenBytes = 32
	shareWrapInfo   = "share-wrap"

	minShareExpiry = time.Hour
)

// SharedContent is what a successful redemption returns.
type SharedContent struct {
	Payload     []byte
	DisplayName string
	MimeType    string
}

// ShareService issues and redeems share links. A link carries the object's
// file key re-wrapped under a server-derived share key, so redemption
// works with no vault session and no master key in memory.
type ShareService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	store         blob.Store
	logger        logging.Logger
	shareKey      []byte
	defaultExpiry time.Duration
	maxExpiry     time.Duration
	now           func() time.Time
}

func NewShareService(db *sql.DB, m repomanager.RepositoryManager, store blob.Store, cfg *config.Config, logger logging.Logger) (*ShareService, error) {
	shareKey, err := cryptox.DeriveServerKey([]byte(cfg.SecretKey), shareWrapInfo)
	if err != nil {
		return nil, fmt.Errorf("deriving share key: %w", err)
	}
	return &ShareService{
		db:            db,
		repomanager:   m,
		store:         store,
		logger:        logger,
		shareKey:      shareKey,
		defaultExpiry: cfg.ShareDefaultExpiry,
		maxExpiry:     cfg.ShareMaxExpiry,
		now:           time.Now,
	}, nil
}

// Create issues a share link for a real-vault object. expiry must be
// within [1h, the configured ceiling]; zero picks the default. The caller
// proves access by holding the vault's master key, which is needed to
// re-wrap the object's file key for session-free redemption.
func (s *ShareService) Create(ctx context.Context, masterKey []byte, objectID string, expiry time.Duration, maxViews int, password string) (*models.ShareToken, error) {
	if expiry == 0 {
		expiry = s.defaultExpiry
	}
	if expiry < minShareExpiry || expiry > s.maxExpiry {
		return nil, fmt.Errorf("%w: share expiry out of range", common.ErrInvalidParameter)
	}
	if maxViews < 1 {
		return nil, fmt.Errorf("%w: max views must be at least 1", common.ErrInvalidParameter)
	}

	obj, err := s.repomanager.Objects(s.db).Get(ctx, models.IdentityReal, objectID)
	if err != nil {
		return nil, err
	}
	if obj.Deleted {
		return nil, common.ErrNotFound
	}

	fileKey, err := cryptox.UnwrapKey(obj.WrappedKey, obj.KeyNonce, masterKey)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(fileKey)

	wrapped, nonce, err := cryptox.WrapKey(fileKey, s.shareKey)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	token := &models.ShareToken{
		Token:      base64.URLEncoding.EncodeToString(common.GenerateRandByteArray(shareTokenBytes)),
		ObjectID:   objectID,
		ExpiresAt:  now.Add(expiry),
		MaxViews:   maxViews,
		WrappedKey: wrapped,
		KeyNonce:   nonce,
		CreatedAt:  now,
	}
	if password != "" {
		hash := cryptox.HashPIN(password, cryptox.MinKDFIterations)
		token.PasswordHash = &hash
	}

	if err := s.repomanager.Shares(s.db).Insert(ctx, token); err != nil {
		return nil, err
	}
	return token, nil
}

// Redeem exchanges a token for the decrypted object. Order of checks:
// existence, expiry, password, then the view-count consume. Consume runs
// last, only once the payload is decrypted and ready, so a storage or
// crypto failure does not burn a view. It is a single conditional update:
// two concurrent redemptions of a one-view token cannot both pass, and the
// loser gets nothing because content is only returned after its own
// consume succeeds.
func (s *ShareService) Redeem(ctx context.Context, token, password string) (*SharedContent, error) {
	share, err := s.repomanager.Shares(s.db).Get(ctx, token)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	if !now.Before(share.ExpiresAt) {
		return nil, common.ErrShareExpired
	}
	if share.PasswordHash != nil {
		if password == "" {
			return nil, common.ErrPasswordRequired
		}
		if !cryptox.VerifyPINHash(*share.PasswordHash, password, cryptox.MinKDFIterations) {
			return nil, common.ErrInvalidPassword
		}
	}
	if share.ViewCount >= share.MaxViews {
		return nil, common.ErrViewLimitReached
	}

	obj, err := s.repomanager.Objects(s.db).GetByID(ctx, share.ObjectID)
	if err != nil {
		return nil, err
	}

	fileKey, err := cryptox.UnwrapKey(share.WrappedKey, share.KeyNonce, s.shareKey)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(fileKey)

	sealed, err := s.store.Read(ctx, obj.StoragePath)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", common.ErrStorageIO, err)
	}
	payload, err := cryptox.Open(sealed, fileKey)
	if err != nil {
		return nil, err
	}

	ok, err := s.repomanager.Shares(s.db).ConsumeView(ctx, token, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrViewLimitReached
	}

	return &SharedContent{
		Payload:     payload,
		DisplayName: obj.DisplayName,
		MimeType:    obj.MimeType,
	}, nil
}

// Revoke deletes a share link before its expiry.
func (s *ShareService) Revoke(ctx context.Context, token string) error {
	return s.repomanager.Shares(s.db).Delete(ctx, token)
}

// SweepExpired removes share links whose expiry has passed and returns how
// many were dropped.
func (s *ShareService) SweepExpired(ctx context.Context) (int64, error) {
	return s.repomanager.Shares(s.db).DeleteExpired(ctx, s.now().UTC())
}
