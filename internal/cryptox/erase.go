package cryptox

import (
	"crypto/rand"
	"fmt"
	"os"

	"github.com/vantavault/vantavault/internal/common"
)

// DefaultErasePasses is the number of random-overwrite passes SecureErase
// performs before unlinking.
const DefaultErasePasses = 3

// SecureErase overwrites the file at path with cryptographically random
// data for the given number of passes, syncing after each, then unlinks it.
//
// On any I/O failure during overwrite the file is still unlinked so that
// the object cannot silently survive, and the error wraps
// common.ErrSecureEraseIncomplete so the caller can downgrade it to a
// warning. A missing file is not an error.
func SecureErase(path string, passes int) error {
	if passes <= 0 {
		passes = DefaultErasePasses
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	size := info.Size()

	for pass := 0; pass < passes; pass++ {
		if err := overwriteRandom(path, size); err != nil {
			rmErr := os.Remove(path)
			if rmErr != nil {
				return fmt.Errorf("overwrite pass %d failed (%v), unlink failed (%v): %w",
					pass+1, err, rmErr, common.ErrSecureEraseIncomplete)
			}
			return fmt.Errorf("overwrite pass %d failed (%v), file unlinked: %w",
				pass+1, err, common.ErrSecureEraseIncomplete)
		}
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("unlink %s: %w", path, err)
	}
	return nil
}

func overwriteRandom(path string, size int64) error {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return err
	}

	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		_ = f.Close()
		return err
	}
	if _, err := f.WriteAt(buf, 0); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
