package blob

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vantavault/vantavault/internal/common"
)

func newFSStore(t *testing.T) *FSStore {
	t.Helper()
	s, err := NewFSStore(t.TempDir())
	require.NoError(t, err)
	return s
}

func TestFSStore_WriteReadDelete(t *testing.T) {
	s := newFSStore(t)
	ctx := context.Background()

	data := common.GenerateRandByteArray(512)
	require.NoError(t, s.Write(ctx, "real/abc.bin", data))

	got, err := s.Read(ctx, "real/abc.bin")
	require.NoError(t, err)
	require.Equal(t, data, got)

	// overwrite in place
	data2 := common.GenerateRandByteArray(256)
	require.NoError(t, s.Write(ctx, "real/abc.bin", data2))
	got, err = s.Read(ctx, "real/abc.bin")
	require.NoError(t, err)
	require.Equal(t, data2, got)

	require.NoError(t, s.Delete(ctx, "real/abc.bin"))
	_, err = s.Read(ctx, "real/abc.bin")
	require.ErrorIs(t, err, common.ErrNotFound)

	// deleting a missing path is not an error
	require.NoError(t, s.Delete(ctx, "real/abc.bin"))
}

func TestFSStore_ReadMissingIsNotFound(t *testing.T) {
	s := newFSStore(t)

	_, err := s.Read(context.Background(), "real/never-written.enc")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestFSStore_SecureEraseRemovesBackingBytes(t *testing.T) {
	s := newFSStore(t)
	ctx := context.Background()

	require.NoError(t, s.Write(ctx, "decoy/x.bin", common.GenerateRandByteArray(2048)))
	require.NoError(t, s.SecureErase(ctx, "decoy/x.bin", 3))

	_, err := os.Stat(filepath.Join(s.root, "decoy", "x.bin"))
	require.True(t, errors.Is(err, os.ErrNotExist))
}

func TestFSStore_RejectsEscapingPaths(t *testing.T) {
	s := newFSStore(t)
	ctx := context.Background()

	require.Error(t, s.Write(ctx, "../outside.bin", []byte("x")))
	_, err := s.Read(ctx, "/etc/passwd")
	require.Error(t, err)
}
