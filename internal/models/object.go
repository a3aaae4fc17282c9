package models

import "time"

// DefaultFolderID is the virtual folder objects land in when none is
// specified and the one they fall back to when their folder is deleted.
// It has no row in the folders table.
const DefaultFolderID = "default"

// StoredObject is one catalog row: the metadata for an encrypted media file
// at rest. The payload itself lives in the blob store under StoragePath,
// sealed with a per-object file key; WrappedKey is that file key wrapped
// under the vault's master key.
type StoredObject struct {
	ID             string
	Identity       VaultIdentity
	DisplayName    string
	StoragePath    string
	ThumbnailPath  *string
	FolderID       string
	ByteSize       int64
	MimeType       string
	WrappedKey     []byte
	KeyNonce       []byte
	UploadedAt     time.Time
	LastAccessedAt *time.Time
	AccessCount    int64
	Hidden         bool
	Deleted        bool
	DeletedAt      *time.Time
}

// RecycleEntry is a pending-purge record for a soft-deleted real-vault
// object. PurgeAfter = DeletedAt + retention window; entries whose
// PurgeAfter has passed are eligible for the purge sweep.
type RecycleEntry struct {
	ObjectID     string
	Identity     VaultIdentity
	DeletedAt    time.Time
	PurgeAfter   time.Time
	OriginalPath string
	Reason       string
}

// Folder is a node in a per-vault folder tree. ParentID is nil for roots.
type Folder struct {
	ID        string
	Name      string
	Identity  VaultIdentity
	ParentID  *string
	Color     string
	Icon      string
	SortOrder int
	CreatedAt time.Time
}

// VaultStats summarizes one vault's storage usage.
type VaultStats struct {
	FileCount   int64
	TotalBytes  int64
	FolderCount int64
	OldestFile  *time.Time
	NewestFile  *time.Time
}
