package superblock_test

import (
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/tupofs/tupofs/backend/file"
	"github.com/tupofs/tupofs/internal/blockdev"
	"github.com/tupofs/tupofs/internal/superblock"
	"github.com/tupofs/tupofs/internal/tfserr"
	"github.com/tupofs/tupofs/internal/tupofsconst"
)

func newDevice(t *testing.T) *blockdev.Device {
	t.Helper()
	path := filepath.Join(t.TempDir(), "image.bin")
	b, err := file.CreateFromPath(path, int64(4*tupofsconst.SectorSize))
	require.NoError(t, err)
	return blockdev.New(b)
}

func TestStoreLoadRoundTrip(t *testing.T) {
	dev := newDevice(t)
	id := uuid.New()
	want := superblock.Superblock{InodeMapSize: 1, DataMapSize: 1, VolumeID: id}
	require.NoError(t, superblock.Store(dev, want))

	got, err := superblock.Load(dev)
	require.NoError(t, err)
	require.Equal(t, want.InodeMapSize, got.InodeMapSize)
	require.Equal(t, want.DataMapSize, got.DataMapSize)
	require.Equal(t, id, got.VolumeID)
	require.Equal(t, superblock.Magic, got.Magic)
}

func TestLoadRejectsBadMagic(t *testing.T) {
	dev := newDevice(t)
	buf := make([]byte, tupofsconst.SectorSize)
	buf[0] = 0xFF
	require.NoError(t, dev.WriteBlock(tupofsconst.SuperblockBlockIdx, buf))

	_, err := superblock.Load(dev)
	require.ErrorIs(t, err, tfserr.ErrBadMagic)
}
