package tupofs_test

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tupofs/tupofs"
	"github.com/tupofs/tupofs/backend/file"
	"github.com/tupofs/tupofs/internal/inode"
	"github.com/tupofs/tupofs/internal/tupofsconst"
)

func newFS(t *testing.T) *tupofs.Filesystem {
	t.Helper()
	inodeMapBytes, dataMapBytes := 1, 1
	sectors := tupofsconst.FirstInodeTableBlockIdx + 8*inodeMapBytes + 8*dataMapBytes
	path := filepath.Join(t.TempDir(), "image.bin")
	b, err := file.CreateFromPath(path, int64(sectors*tupofsconst.SectorSize))
	require.NoError(t, err)
	fs, err := tupofs.Format(b, tupofs.Options{InodeMapBytes: inodeMapBytes, DataMapBytes: dataMapBytes})
	require.NoError(t, err)
	return fs
}

// Boundary scenario 1: a freshly formatted image's root is an empty
// directory at the root inode index.
func TestFormatCreatesEmptyRootDirectory(t *testing.T) {
	fs := newFS(t)
	info, err := fs.Stat("/")
	require.NoError(t, err)
	require.Equal(t, tupofsconst.RootInodeIndex, info.Idx)
	require.Equal(t, inode.Directory, info.Kind)
	require.Equal(t, 0, info.ChildrenCount)
}

// Boundary scenario 2: nested create and ls.
func TestCreateAndList(t *testing.T) {
	fs := newFS(t)

	foo, err := fs.Create("/foo", inode.Directory)
	require.NoError(t, err)
	bar, err := fs.Create("/bar", inode.Directory)
	require.NoError(t, err)
	baz, err := fs.Create("/bar/baz", inode.File)
	require.NoError(t, err)

	info, err := fs.Stat("/bar/baz")
	require.NoError(t, err)
	require.Equal(t, inode.File, info.Kind)

	root, err := fs.List("/")
	require.NoError(t, err)
	require.Equal(t, []tupofs.DirEntry{{InodeIdx: foo, Name: "foo"}, {InodeIdx: bar, Name: "bar"}}, root)

	barEntries, err := fs.List("/bar")
	require.NoError(t, err)
	require.Equal(t, []tupofs.DirEntry{{InodeIdx: baz, Name: "baz"}}, barEntries)
}

// A name collision in the parent is conflated with NotFound, preserving
// original_source's behavior.
func TestCreateCollisionReturnsNotFound(t *testing.T) {
	fs := newFS(t)
	_, err := fs.Create("/dup", inode.File)
	require.NoError(t, err)
	_, err = fs.Create("/dup", inode.File)
	require.ErrorIs(t, err, tupofs.ErrNotFound)
}

// Boundary scenario 4: a 2077-byte file spans two blocks, and reading it
// back copies the partial second block only up to the file size.
func TestReadFilePartialTailStopsAtFileSize(t *testing.T) {
	fs := newFS(t)
	_, err := fs.Create("/small", inode.File)
	require.NoError(t, err)

	payload := bytes.Repeat([]byte{0xAB}, 2077)
	require.NoError(t, fs.WriteFile("/small", payload))

	got, err := fs.ReadFile("/small")
	require.NoError(t, err)
	require.Len(t, got, 2077)
	require.Equal(t, payload, got)

	size, err := fs.Size("/small")
	require.NoError(t, err)
	require.Equal(t, 2077, size)
}

// Boundary scenario 5: rename within the same directory preserves the
// inode index, and the renamed file is readable under its new name.
func TestRenameWithinSameDirectory(t *testing.T) {
	fs := newFS(t)
	_, err := fs.Create("/foo", inode.Directory)
	require.NoError(t, err)
	_, err = fs.Create("/foo/bar", inode.Directory)
	require.NoError(t, err)
	idx, err := fs.Create("/foo/bar/hardbass", inode.File)
	require.NoError(t, err)

	moved, err := fs.Rename("/foo/bar/hardbass", "/foo/bar/baz")
	require.NoError(t, err)
	require.Equal(t, idx, moved)

	require.NoError(t, fs.WriteFile("/foo/bar/baz", []byte("test")))
	got, err := fs.ReadFile("/foo/bar/baz")
	require.NoError(t, err)
	require.Equal(t, []byte("test"), got)
}

func TestRenameAcrossDirectoriesIsNotFound(t *testing.T) {
	fs := newFS(t)
	_, err := fs.Create("/a", inode.Directory)
	require.NoError(t, err)
	_, err = fs.Create("/b", inode.Directory)
	require.NoError(t, err)
	_, err = fs.Create("/a/leaf", inode.File)
	require.NoError(t, err)

	_, err = fs.Rename("/a/leaf", "/b/leaf")
	require.ErrorIs(t, err, tupofs.ErrNotFound)
}

// Boundary scenario 6: deleting a non-empty directory is a no-op
// returning (0, nil); deleting bottom-up frees everything back to an
// empty root.
func TestDeleteNonEmptyDirectoryIsNoop(t *testing.T) {
	fs := newFS(t)
	_, err := fs.Create("/foo", inode.Directory)
	require.NoError(t, err)
	_, err = fs.Create("/foo/bar", inode.Directory)
	require.NoError(t, err)
	_, err = fs.Create("/foo/bar/baz", inode.File)
	require.NoError(t, err)

	freed, err := fs.Delete("/foo")
	require.NoError(t, err)
	require.Equal(t, 0, freed)

	freed, err = fs.Delete("/foo/bar/baz")
	require.NoError(t, err)
	require.NotZero(t, freed)
	freed, err = fs.Delete("/foo/bar")
	require.NoError(t, err)
	require.NotZero(t, freed)
	freed, err = fs.Delete("/foo")
	require.NoError(t, err)
	require.NotZero(t, freed)

	root, err := fs.List("/")
	require.NoError(t, err)
	require.Empty(t, root)
}

// Preserved defect: overwriting a file does not free its previously-used
// data blocks. With an 8-block data region, eight one-block overwrites
// exhaust all of it; a freeing implementation would never run out.
func TestWriteFileLeaksOldBlocksOnOverwrite(t *testing.T) {
	fs := newFS(t)
	_, err := fs.Create("/f", inode.File)
	require.NoError(t, err)

	for i := 0; i < 8; i++ {
		require.NoError(t, fs.WriteFile("/f", bytes.Repeat([]byte{byte(i)}, tupofsconst.SectorSize)))
	}

	err = fs.WriteFile("/f", bytes.Repeat([]byte{9}, tupofsconst.SectorSize))
	require.ErrorIs(t, err, tupofs.ErrOutOfSpace)

	got, err := fs.ReadFile("/f")
	require.NoError(t, err)
	require.Equal(t, bytes.Repeat([]byte{7}, tupofsconst.SectorSize), got)
}
