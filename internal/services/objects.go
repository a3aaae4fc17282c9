package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/google/uuid"

	"github.com/vantavault/vantavault/internal/blob"
	"github.com/vantavault/vantavault/internal/common"
	"github.com/vantavault/vantavault/internal/config"
	"github.com/vantavault/vantavault/internal/cryptox"
	"github.com/vantavault/vantavault/internal/dbx"
	"github.com/vantavault/vantavault/internal/logging"
	"github.com/vantavault/vantavault/internal/mimex"
	"github.com/vantavault/vantavault/internal/models"
	"github.com/vantavault/vantavault/internal/repositories/folders"
	"github.com/vantavault/vantavault/internal/repositories/repomanager"
	"github.com/vantavault/vantavault/internal/thumbs"
)

// ObjectService owns the object catalog and lifecycle: store, fetch, list,
// soft-delete, restore, purge, and the folder tree. Payload bytes go
// through the blob store sealed with a per-object file key; the catalog
// only ever holds that key wrapped under the vault's master key.
type ObjectService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	store       blob.Store
	logger      logging.Logger
	retention   time.Duration
	erasePasses int
	thumbQual   int
	now         func() time.Time
}

func NewObjectService(db *sql.DB, m repomanager.RepositoryManager, store blob.Store, cfg *config.Config, logger logging.Logger) *ObjectService {
	return &ObjectService{
		db:          db,
		repomanager: m,
		store:       store,
		logger:      logger,
		retention:   time.Duration(cfg.RetentionDays) * 24 * time.Hour,
		erasePasses: cfg.ErasePasses,
		thumbQual:   cfg.ThumbnailQuality,
		now:         time.Now,
	}
}

// Store encrypts payload under a fresh file key and writes it to the blob
// store before inserting the catalog row, so a failed write never leaves a
// row pointing at missing bytes. Images additionally get an encrypted
// thumbnail; thumbnail failures are logged and never fail the store.
func (s *ObjectService) Store(ctx context.Context, identity models.VaultIdentity, masterKey, payload []byte, displayName, folderID string) (*models.StoredObject, error) {
	if !identity.Valid() {
		return nil, fmt.Errorf("%w: bad vault identity", common.ErrInvalidParameter)
	}
	if displayName == "" {
		return nil, fmt.Errorf("%w: empty display name", common.ErrInvalidParameter)
	}
	if folderID == "" {
		folderID = models.DefaultFolderID
	}
	if folderID != models.DefaultFolderID {
		if _, err := s.repomanager.Folders(s.db).Get(ctx, folderID); err != nil {
			return nil, err
		}
	}

	fileKey := cryptox.NewFileKey()
	defer common.WipeByteArray(fileKey)

	sealed, err := cryptox.Seal(payload, fileKey)
	if err != nil {
		return nil, err
	}
	wrappedKey, keyNonce, err := cryptox.WrapKey(fileKey, masterKey)
	if err != nil {
		return nil, err
	}

	id := uuid.NewString()
	storagePath := path.Join(string(identity), id+".enc")
	if err := s.store.Write(ctx, storagePath, sealed); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrStorageIO, err)
	}

	mimeType := mimex.Guess(displayName)
	thumbPath := s.writeThumbnail(ctx, identity, id, mimeType, payload, fileKey)

	obj := &models.StoredObject{
		ID:            id,
		Identity:      identity,
		DisplayName:   displayName,
		StoragePath:   storagePath,
		ThumbnailPath: thumbPath,
		FolderID:      folderID,
		ByteSize:      int64(len(payload)),
		MimeType:      mimeType,
		WrappedKey:    wrappedKey,
		KeyNonce:      keyNonce,
		UploadedAt:    s.now().UTC(),
	}
	if err := s.repomanager.Objects(s.db).Insert(ctx, obj); err != nil {
		// roll the bytes back so no orphan payload stays behind
		if delErr := s.store.Delete(ctx, storagePath); delErr != nil {
			s.logger.Warn(ctx, "failed to remove orphaned payload", "path", storagePath, "error", delErr)
		}
		if thumbPath != nil {
			if delErr := s.store.Delete(ctx, *thumbPath); delErr != nil {
				s.logger.Warn(ctx, "failed to remove orphaned thumbnail", "path", *thumbPath, "error", delErr)
			}
		}
		return nil, err
	}
	return obj, nil
}

// writeThumbnail generates, encrypts, and stores a thumbnail for image
// payloads. Any failure downgrades to "no thumbnail".
func (s *ObjectService) writeThumbnail(ctx context.Context, identity models.VaultIdentity, id, mimeType string, payload, fileKey []byte) *string {
	if !mimex.IsImage(mimeType) {
		return nil
	}
	thumb, err := thumbs.Generate(payload, s.thumbQual)
	if err != nil {
		s.logger.Debug(ctx, "thumbnail generation skipped", "object", id, "error", err)
		return nil
	}
	sealed, err := cryptox.Seal(thumb, fileKey)
	if err != nil {
		return nil
	}
	thumbPath := path.Join(string(identity), id+".thumb.enc")
	if err := s.store.Write(ctx, thumbPath, sealed); err != nil {
		s.logger.Warn(ctx, "failed to write thumbnail", "object", id, "error", err)
		return nil
	}
	return &thumbPath
}

// Fetch returns the decrypted payload of an active or soft-deleted object
// in the vault's namespace and bumps its access counters. Tampered bytes
// or a wrong master key fail closed with common.ErrIntegrity and leave the
// counters untouched.
func (s *ObjectService) Fetch(ctx context.Context, identity models.VaultIdentity, masterKey []byte, id string) ([]byte, *models.StoredObject, error) {
	obj, err := s.repomanager.Objects(s.db).Get(ctx, identity, id)
	if err != nil {
		return nil, nil, err
	}

	plaintext, err := s.decryptObject(ctx, obj, masterKey)
	if err != nil {
		return nil, nil, err
	}

	if err := s.repomanager.Objects(s.db).TouchAccess(ctx, id, s.now().UTC()); err != nil {
		s.logger.Warn(ctx, "failed to update access counters", "object", id, "error", err)
	}
	return plaintext, obj, nil
}

// FetchThumbnail returns the decrypted thumbnail, or common.ErrNotFound if
// the object has none.
func (s *ObjectService) FetchThumbnail(ctx context.Context, identity models.VaultIdentity, masterKey []byte, id string) ([]byte, error) {
	obj, err := s.repomanager.Objects(s.db).Get(ctx, identity, id)
	if err != nil {
		return nil, err
	}
	if obj.ThumbnailPath == nil {
		return nil, common.ErrNotFound
	}

	fileKey, err := cryptox.UnwrapKey(obj.WrappedKey, obj.KeyNonce, masterKey)
	if err != nil {
		return nil, err
	}
	defer common.WipeByteArray(fileKey)

	sealed, err := s.store.Read(ctx, *obj.ThumbnailPath)
	if err != nil {
		return nil, err
	}
	return cryptox.Open(sealed, fileKey)
}

// decryptObject unwraps the object's file key and opens its envelope.
func (s *ObjectService) decryptObject(ctx context.Context, obj *models.StoredObject, masterKey []byte) ([]byte, error) {
	fileKey, err := cryptox.UnwrapKey(obj.WrappedKey, obj.KeyNonce, masterKey)
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
	return cryptox.Open(sealed, fileKey)
}

// List returns a folder's active objects, newest upload first.
func (s *ObjectService) List(ctx context.Context, identity models.VaultIdentity, folderID string, includeHidden bool, limit int) ([]models.StoredObject, error) {
	if folderID == "" {
		folderID = models.DefaultFolderID
	}
	return s.repomanager.Objects(s.db).List(ctx, identity, folderID, includeHidden, limit)
}

// SoftDelete removes an object from listings. For the real vault the row
// is flagged and a recycle entry schedules the purge; decoy-vault deletes
// are immediate and permanent, bytes securely erased on the spot.
func (s *ObjectService) SoftDelete(ctx context.Context, identity models.VaultIdentity, id, reason string) error {
	obj, err := s.repomanager.Objects(s.db).Get(ctx, identity, id)
	if err != nil {
		return err
	}
	if obj.Deleted {
		return common.ErrNotFound
	}

	if identity == models.IdentityDecoy {
		return s.destroy(ctx, obj)
	}

	now := s.now().UTC()
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Objects(tx).MarkDeleted(ctx, id, now); err != nil {
			return err
		}
		return s.repomanager.Recycle(tx).Insert(ctx, &models.RecycleEntry{
			ObjectID:     id,
			Identity:     identity,
			DeletedAt:    now,
			PurgeAfter:   now.Add(s.retention),
			OriginalPath: obj.StoragePath,
			Reason:       reason,
		})
	})
	if err != nil {
		return err
	}
	s.auditLifecycle(ctx, true, identity, "soft delete "+id)
	return nil
}

// Restore brings a soft-deleted object back and drops its recycle entry.
func (s *ObjectService) Restore(ctx context.Context, identity models.VaultIdentity, id string) error {
	entry, err := s.repomanager.Recycle(s.db).Get(ctx, id)
	if err != nil {
		return err
	}
	if entry.Identity != identity {
		return common.ErrNotFound
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Objects(tx).ClearDeleted(ctx, id); err != nil {
			return err
		}
		return s.repomanager.Recycle(tx).Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.auditLifecycle(ctx, true, entry.Identity, "restore "+id)
	return nil
}

// RecycleBin lists a vault's pending-purge entries, newest first.
func (s *ObjectService) RecycleBin(ctx context.Context, identity models.VaultIdentity) ([]models.RecycleEntry, error) {
	return s.repomanager.Recycle(s.db).List(ctx, identity)
}

// PurgeExpired permanently removes every recycle entry whose purge time
// has passed: catalog row, share links, and securely erased bytes. A
// single object's erase failure is logged and does not abort the sweep.
func (s *ObjectService) PurgeExpired(ctx context.Context) (int, error) {
	expired, err := s.repomanager.Recycle(s.db).ListExpired(ctx, s.now().UTC())
	if err != nil {
		return 0, err
	}

	purged := 0
	for _, entry := range expired {
		obj, err := s.repomanager.Objects(s.db).GetByID(ctx, entry.ObjectID)
		if err != nil {
			if errors.Is(err, common.ErrNotFound) {
				// orphaned entry, drop it
				if err := s.repomanager.Recycle(s.db).Delete(ctx, entry.ObjectID); err != nil {
					s.logger.Warn(ctx, "failed to drop orphaned recycle entry", "object", entry.ObjectID, "error", err)
				}
				continue
			}
			s.logger.Warn(ctx, "purge: catalog lookup failed", "object", entry.ObjectID, "error", err)
			continue
		}
		if err := s.destroy(ctx, obj); err != nil {
			s.logger.Warn(ctx, "purge: destroy failed", "object", obj.ID, "error", err)
			continue
		}
		purged++
	}
	return purged, nil
}

// destroy removes an object for good: every catalog reference first, then
// a secure erase of the payload and thumbnail. Erase failures after the
// rows are gone are logged as incomplete rather than resurrecting the row.
func (s *ObjectService) destroy(ctx context.Context, obj *models.StoredObject) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Shares(tx).DeleteForObject(ctx, obj.ID); err != nil {
			return err
		}
		if err := s.repomanager.Recycle(tx).Delete(ctx, obj.ID); err != nil && !errors.Is(err, common.ErrNotFound) {
			return err
		}
		return s.repomanager.Objects(tx).Delete(ctx, obj.ID)
	})
	if err != nil {
		return err
	}

	if err := s.store.SecureErase(ctx, obj.StoragePath, s.erasePasses); err != nil {
		s.logger.Warn(ctx, "secure erase incomplete", "path", obj.StoragePath, "error", err)
	}
	if obj.ThumbnailPath != nil {
		if err := s.store.SecureErase(ctx, *obj.ThumbnailPath, s.erasePasses); err != nil {
			s.logger.Warn(ctx, "secure erase incomplete", "path", *obj.ThumbnailPath, "error", err)
		}
	}
	s.auditLifecycle(ctx, true, obj.Identity, "purge "+obj.ID)
	return nil
}

// SetHidden toggles an object's hidden flag.
func (s *ObjectService) SetHidden(ctx context.Context, identity models.VaultIdentity, id string, hidden bool) error {
	obj, err := s.repomanager.Objects(s.db).Get(ctx, identity, id)
	if err != nil {
		return err
	}
	if obj.Deleted {
		return common.ErrNotFound
	}
	return s.repomanager.Objects(s.db).SetHidden(ctx, id, hidden)
}

// CreateFolder adds a folder to the vault's tree.
func (s *ObjectService) CreateFolder(ctx context.Context, identity models.VaultIdentity, name string, parentID *string, color, icon string, sortOrder int) (*models.Folder, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty folder name", common.ErrInvalidParameter)
	}
	if parentID != nil {
		parent, err := s.repomanager.Folders(s.db).Get(ctx, *parentID)
		if err != nil {
			return nil, err
		}
		if parent.Identity != identity {
			return nil, common.ErrNotFound
		}
	}
	f := &models.Folder{
		ID:        uuid.NewString(),
		Name:      name,
		Identity:  identity,
		ParentID:  parentID,
		Color:     color,
		Icon:      icon,
		SortOrder: sortOrder,
		CreatedAt: s.now().UTC(),
	}
	if f.Color == "" {
		f.Color = "#666666"
	}
	if f.Icon == "" {
		f.Icon = "folder"
	}
	if err := s.repomanager.Folders(s.db).Insert(ctx, f); err != nil {
		return nil, err
	}
	return f, nil
}

// ListFolders returns a vault's folders under a parent (nil = roots).
func (s *ObjectService) ListFolders(ctx context.Context, identity models.VaultIdentity, parentID *string) ([]models.Folder, error) {
	return s.repomanager.Folders(s.db).List(ctx, identity, parentID)
}

// RenameFolder applies the non-nil fields of u. Folders in the other
// vault are invisible: a mismatched identity reads as not found.
func (s *ObjectService) RenameFolder(ctx context.Context, identity models.VaultIdentity, id string, u FolderUpdate) error {
	folder, err := s.repomanager.Folders(s.db).Get(ctx, id)
	if err != nil {
		return err
	}
	if folder.Identity != identity {
		return common.ErrNotFound
	}
	return s.repomanager.Folders(s.db).Update(ctx, id, u.toRepo())
}

// DeleteFolder removes a folder. In one transaction its objects move to
// the default folder and its direct child folders re-parent to the deleted
// folder's own parent, so no row is ever left pointing at a missing folder.
func (s *ObjectService) DeleteFolder(ctx context.Context, identity models.VaultIdentity, id string) error {
	folder, err := s.repomanager.Folders(s.db).Get(ctx, id)
	if err != nil {
		return err
	}
	if folder.Identity != identity {
		return common.ErrNotFound
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Objects(tx).ReassignFolder(ctx, folder.Identity, id, models.DefaultFolderID); err != nil {
			return err
		}
		if err := s.repomanager.Folders(tx).ReparentChildren(ctx, id, folder.ParentID); err != nil {
			return err
		}
		return s.repomanager.Folders(tx).Delete(ctx, id)
	})
}

// Stats summarizes a vault's active objects and folder count.
func (s *ObjectService) Stats(ctx context.Context, identity models.VaultIdentity) (*models.VaultStats, error) {
	stats, err := s.repomanager.Objects(s.db).Stats(ctx, identity)
	if err != nil {
		return nil, err
	}
	count, err := s.repomanager.Folders(s.db).Count(ctx, identity)
	if err != nil {
		return nil, err
	}
	stats.FolderCount = count
	return stats, nil
}

func (s *ObjectService) auditLifecycle(ctx context.Context, success bool, identity models.VaultIdentity, detail string) {
	e := &models.AuditEvent{
		Timestamp: s.now().UTC(),
		Kind:      models.AuditObjectLifecycle,
		Success:   success,
		Identity:  &identity,
	}
	if !success && detail != "" {
		e.FailureReason = &detail
	}
	if err := s.repomanager.Audit(s.db).Insert(ctx, e); err != nil {
		s.logger.Warn(ctx, "failed to write audit event", "kind", "ObjectLifecycle", "error", err)
	}
}

// FolderUpdate mirrors folders.Update at the service boundary.
type FolderUpdate struct {
	Name      *string
	Color     *string
	Icon      *string
	SortOrder *int
}

func (u FolderUpdate) toRepo() folders.Update {
	return folders.Update{Name: u.Name, Color: u.Color, Icon: u.Icon, SortOrder: u.SortOrder}
}
