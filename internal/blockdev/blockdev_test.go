package blockdev_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tupofs/tupofs/backend/file"
	"github.com/tupofs/tupofs/internal/blockdev"
	"github.com/tupofs/tupofs/internal/tupofsconst"
)

func newTestDevice(t *testing.T, sectors int) *blockdev.Device {
	t.Helper()
	path := filepath.Join(t.TempDir(), "image.bin")
	b, err := file.CreateFromPath(path, int64(sectors*tupofsconst.SectorSize))
	require.NoError(t, err)
	t.Cleanup(func() {
		osFile, err := b.Sys()
		if err == nil {
			_ = osFile.Close()
		}
	})
	return blockdev.New(b)
}

func TestReadWriteBlockRoundTrip(t *testing.T) {
	dev := newTestDevice(t, 4)
	buf := make([]byte, tupofsconst.SectorSize)
	for i := range buf {
		buf[i] = byte(i % 251)
	}
	require.NoError(t, dev.WriteBlock(2, buf))

	got := make([]byte, tupofsconst.SectorSize)
	require.NoError(t, dev.ReadBlock(2, got))
	require.Equal(t, buf, got)

	// untouched sector stays zero-filled
	other := make([]byte, tupofsconst.SectorSize)
	require.NoError(t, dev.ReadBlock(1, other))
	for i, b := range other {
		if b != 0 {
			t.Fatalf("expected zero-filled sector 1, byte %d = %d", i, b)
		}
	}
}

func TestWriteBlockRejectsWrongSize(t *testing.T) {
	dev := newTestDevice(t, 2)
	err := dev.WriteBlock(0, make([]byte, 10))
	require.Error(t, err)
}

func TestReadBlockRejectsWrongSize(t *testing.T) {
	dev := newTestDevice(t, 2)
	err := dev.ReadBlock(0, make([]byte, tupofsconst.SectorSize-1))
	require.Error(t, err)
}

func TestOpenReadOnlyRejectsWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.bin")
	b, err := file.CreateFromPath(path, int64(2*tupofsconst.SectorSize))
	require.NoError(t, err)
	osFile, err := b.Sys()
	require.NoError(t, err)
	require.NoError(t, osFile.Close())

	ro, err := file.OpenFromPath(path, true)
	require.NoError(t, err)
	dev := blockdev.New(ro)
	err = dev.WriteBlock(0, make([]byte, tupofsconst.SectorSize))
	require.Error(t, err)
}
