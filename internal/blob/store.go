// Package blob abstracts the byte store that holds encrypted payloads.
// The catalog knows objects by storage path; a Store maps those paths to
// bytes. Backends: local filesystem (default) and S3-compatible object
// storage.
package blob

import "context"

// Store is a filesystem-like byte store addressed by storage path.
// Paths are slash-separated and namespaced per vault identity
// ("real/<name>", "decoy/<name>"); no two catalog rows ever share one.
type Store interface {
	// Write stores data under path, creating or truncating it.
	Write(ctx context.Context, path string, data []byte) error

	// Read returns the full contents stored under path.
	Read(ctx context.Context, path string) ([]byte, error)

	// Delete removes the bytes under path. Missing paths are not an error.
	Delete(ctx context.Context, path string) error

	// SecureErase overwrites the bytes under path with random data for the
	// given number of passes, then deletes them. An error wrapping
	// common.ErrSecureEraseIncomplete means the overwrite could not finish
	// but deletion was still attempted.
	SecureErase(ctx context.Context, path string, passes int) error
}
