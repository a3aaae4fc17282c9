package blob

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vantavault/vantavault/internal/common"
	"github.com/vantavault/vantavault/internal/cryptox"
)

// FSStore keeps encrypted payloads as files under a root directory.
type FSStore struct {
	root string
}

// NewFSStore creates a filesystem store rooted at dir, creating it and the
// per-vault namespace directories if needed.
func NewFSStore(dir string) (*FSStore, error) {
	for _, sub := range []string{"", "real", "decoy"} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o700); err != nil {
			return nil, fmt.Errorf("mkdir %s: %w", filepath.Join(dir, sub), err)
		}
	}
	return &FSStore{root: dir}, nil
}

// abs maps a storage path onto the local filesystem, refusing paths that
// would escape the root.
func (s *FSStore) abs(path string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(path))
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) || filepath.IsAbs(clean) {
		return "", fmt.Errorf("storage path %q escapes store root", path)
	}
	return filepath.Join(s.root, clean), nil
}

func (s *FSStore) Write(ctx context.Context, path string, data []byte) error {
	target, err := s.abs(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o700); err != nil {
		return err
	}

	// write to a temp name first so a crashed write never leaves a
	// half-written object under its final path
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func (s *FSStore) Read(ctx context.Context, path string) ([]byte, error) {
	target, err := s.abs(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

func (s *FSStore) Delete(ctx context.Context, path string) error {
	target, err := s.abs(path)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *FSStore) SecureErase(ctx context.Context, path string, passes int) error {
	target, err := s.abs(path)
	if err != nil {
		return err
	}
	return cryptox.SecureErase(target, passes)
}
