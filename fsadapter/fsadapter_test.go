package fsadapter_test

import (
	"io/fs"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tupofs/tupofs"
	"github.com/tupofs/tupofs/backend/file"
	"github.com/tupofs/tupofs/fsadapter"
	"github.com/tupofs/tupofs/internal/inode"
	"github.com/tupofs/tupofs/internal/tupofsconst"
)

func newAdapter(t *testing.T) *fsadapter.FS {
	t.Helper()
	sectors := tupofsconst.FirstInodeTableBlockIdx + 8 + 8
	path := filepath.Join(t.TempDir(), "image.bin")
	b, err := file.CreateFromPath(path, int64(sectors*tupofsconst.SectorSize))
	require.NoError(t, err)
	tfs, err := tupofs.Format(b, tupofs.Options{InodeMapBytes: 1, DataMapBytes: 1})
	require.NoError(t, err)

	_, err = tfs.Create("/greeting", inode.File)
	require.NoError(t, err)
	require.NoError(t, tfs.WriteFile("/greeting", []byte("hello")))
	_, err = tfs.Create("/sub", inode.Directory)
	require.NoError(t, err)

	return fsadapter.New(tfs)
}

func TestReadFileThroughAdapter(t *testing.T) {
	a := newAdapter(t)
	data, err := fs.ReadFile(a, "greeting")
	require.NoError(t, err)
	require.Equal(t, "hello", string(data))
}

func TestReadDirThroughAdapter(t *testing.T) {
	a := newAdapter(t)
	entries, err := fs.ReadDir(a, ".")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	require.Equal(t, "greeting", entries[0].Name())
	require.False(t, entries[0].IsDir())
	require.Equal(t, "sub", entries[1].Name())
	require.True(t, entries[1].IsDir())
}

func TestOpenMissingFileFails(t *testing.T) {
	a := newAdapter(t)
	_, err := a.Open("nope")
	require.Error(t, err)
	require.ErrorIs(t, err, fs.ErrNotExist)
}
