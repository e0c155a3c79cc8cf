//go:build linux

package blockdev

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Sync flushes the backing store to stable storage by issuing an fsync on
// its underlying *os.File, whether that is a plain image file or a real
// block device; TupoFS does no journaling, so this is the only durability
// guarantee available.
func (d *Device) Sync() error {
	osFile, err := d.backend.Sys()
	if err != nil {
		// not an *os.File (e.g. an in-memory fixture in tests): nothing to
		// flush at the OS level.
		return nil
	}
	if err := osFile.Sync(); err != nil {
		return fmt.Errorf("blockdev: sync: %w", err)
	}
	return nil
}

// IsBlockDevice reports whether the backing store is a real block device
// rather than a regular file, mirroring the check go-diskfs makes before
// issuing device-only ioctls.
func (d *Device) IsBlockDevice() (bool, error) {
	info, err := d.backend.Stat()
	if err != nil {
		return false, err
	}
	return info.Mode()&os.ModeDevice != 0, nil
}

// LogicalSectorSize returns the kernel-reported logical sector size of the
// backing store when it is a real block device, via BLKSSZGET. It is
// informational only: TupoFS always addresses the device in 2048-byte
// sectors regardless of what this reports.
func (d *Device) LogicalSectorSize() (int, error) {
	isDev, err := d.IsBlockDevice()
	if err != nil {
		return 0, err
	}
	if !isDev {
		return 0, backendNotDeviceErr
	}
	osFile, err := d.backend.Sys()
	if err != nil {
		return 0, err
	}
	sz, err := unix.IoctlGetInt(int(osFile.Fd()), unix.BLKSSZGET)
	if err != nil {
		return 0, fmt.Errorf("blockdev: BLKSSZGET: %w", err)
	}
	return sz, nil
}

var backendNotDeviceErr = fmt.Errorf("blockdev: backing store is not a block device")
