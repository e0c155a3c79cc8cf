//go:build !linux

package blockdev

import (
	"errors"
	"os"
)

// Sync flushes the backing store to stable storage when it is backed by an
// *os.File; otherwise it does nothing.
func (d *Device) Sync() error {
	osFile, err := d.backend.Sys()
	if err != nil {
		return nil
	}
	return osFile.Sync()
}

// IsBlockDevice reports whether the backing store is a real block device.
func (d *Device) IsBlockDevice() (bool, error) {
	info, err := d.backend.Stat()
	if err != nil {
		return false, err
	}
	return info.Mode()&os.ModeDevice != 0, nil
}

// LogicalSectorSize is not supported outside Linux; TupoFS always
// addresses the backing store in fixed 2048-byte sectors regardless.
func (d *Device) LogicalSectorSize() (int, error) {
	return 0, errors.New("blockdev: block device geometry not supported on this platform")
}
