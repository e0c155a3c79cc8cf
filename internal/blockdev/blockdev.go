// Package blockdev wraps a backend.Storage with sector-granular read/write,
// the block layer every other TupoFS package reads and writes through.
// Sector 0 is the superblock, sector 1 the inode bitmap, sector 2 the data
// bitmap; higher indices are computed by the inode and data stores.
package blockdev

import (
	"fmt"

	"github.com/tupofs/tupofs/backend"
	"github.com/tupofs/tupofs/internal/tupofsconst"
)

// Device is the sector-addressed view of a backing store.
type Device struct {
	backend backend.Storage
}

// New wraps b as a Device.
func New(b backend.Storage) *Device {
	return &Device{backend: b}
}

// Backend returns the underlying storage, e.g. for Stat/Close by the
// caller that owns its lifecycle.
func (d *Device) Backend() backend.Storage {
	return d.backend
}

// ReadBlock reads one whole sector at idx (0-based) into buf, which must be
// exactly tupofsconst.SectorSize bytes. A short read is fatal, per spec.
func (d *Device) ReadBlock(idx int, buf []byte) error {
	if len(buf) != tupofsconst.SectorSize {
		return fmt.Errorf("blockdev: buffer must be %d bytes, got %d", tupofsconst.SectorSize, len(buf))
	}
	off := int64(idx) * tupofsconst.SectorSize
	n, err := d.backend.ReadAt(buf, off)
	if err != nil {
		return fmt.Errorf("blockdev: read block %d: %w", idx, err)
	}
	if n != tupofsconst.SectorSize {
		return fmt.Errorf("blockdev: short read of block %d: got %d of %d bytes", idx, n, tupofsconst.SectorSize)
	}
	return nil
}

// WriteBlock writes one whole sector at idx (0-based) from buf, which must
// be exactly tupofsconst.SectorSize bytes. A short write is fatal, per spec.
func (d *Device) WriteBlock(idx int, buf []byte) error {
	if len(buf) != tupofsconst.SectorSize {
		return fmt.Errorf("blockdev: buffer must be %d bytes, got %d", tupofsconst.SectorSize, len(buf))
	}
	w, err := d.backend.Writable()
	if err != nil {
		return fmt.Errorf("blockdev: write block %d: %w", idx, err)
	}
	off := int64(idx) * tupofsconst.SectorSize
	n, err := w.WriteAt(buf, off)
	if err != nil {
		return fmt.Errorf("blockdev: write block %d: %w", idx, err)
	}
	if n != tupofsconst.SectorSize {
		return fmt.Errorf("blockdev: short write of block %d: wrote %d of %d bytes", idx, n, tupofsconst.SectorSize)
	}
	return nil
}
