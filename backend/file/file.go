// Package file implements backend.Storage over a plain os.File, the usual
// way a TupoFS backing image is opened.
package file

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/tupofs/tupofs/backend"
)

type rawBackend struct {
	storage  backend.File
	readOnly bool
}

// New wraps an already-open backend.File as a backend.Storage.
func New(f backend.File, readOnly bool) backend.Storage {
	return rawBackend{
		storage:  f,
		readOnly: readOnly,
	}
}

// OpenFromPath opens an existing backing image at pathName for repeated
// use across a process lifetime, so it deliberately does not pass
// O_EXCL: unlike CreateFromPath (which must refuse to clobber an
// existing image), opening an already-formatted image for a second
// session is the normal case, not an error. The file must already
// exist; use tupofs.Format to lay down a fresh image first.
func OpenFromPath(pathName string, readOnly bool) (backend.Storage, error) {
	if pathName == "" {
		return nil, errors.New("must pass a backing image path")
	}

	if _, err := os.Stat(pathName); os.IsNotExist(err) {
		return nil, fmt.Errorf("backing image %s does not exist", pathName)
	}

	openMode := os.O_RDONLY
	if !readOnly {
		openMode |= os.O_RDWR
	}

	f, err := os.OpenFile(pathName, openMode, 0o600)
	if err != nil {
		return nil, fmt.Errorf("could not open backing image %s with mode %v: %w", pathName, openMode, err)
	}

	return rawBackend{
		storage:  f,
		readOnly: readOnly,
	}, nil
}

// CreateFromPath creates a new, zero-filled backing image of the given size
// in bytes. The file must not already exist.
func CreateFromPath(pathName string, size int64) (backend.Storage, error) {
	if pathName == "" {
		return nil, errors.New("must pass a backing image path")
	}
	if size <= 0 {
		return nil, errors.New("must pass a positive backing image size")
	}
	f, err := os.OpenFile(pathName, os.O_RDWR|os.O_EXCL|os.O_CREATE, 0o666)
	if err != nil {
		return nil, fmt.Errorf("could not create backing image %s: %w", pathName, err)
	}
	if err := os.Truncate(pathName, size); err != nil {
		return nil, fmt.Errorf("could not expand backing image %s to size %d: %w", pathName, size, err)
	}

	return rawBackend{
		storage:  f,
		readOnly: false,
	}, nil
}

// backend.Storage interface guard
var _ backend.Storage = (*rawBackend)(nil)

// Sys exposes the OS-specific handle for ioctl calls via fd.
func (f rawBackend) Sys() (*os.File, error) {
	if osFile, ok := f.storage.(*os.File); ok {
		return osFile, nil
	}
	return nil, backend.ErrNotSuitable
}

// Writable returns a handle usable for writes.
func (f rawBackend) Writable() (backend.WritableFile, error) {
	if rwFile, ok := f.storage.(backend.WritableFile); ok {
		if !f.readOnly {
			return rwFile, nil
		}

		return nil, backend.ErrIncorrectOpenMode
	}
	return nil, backend.ErrNotSuitable
}

func (f rawBackend) Stat() (fs.FileInfo, error) {
	return f.storage.Stat()
}

func (f rawBackend) Close() error {
	return f.storage.Close()
}

func (f rawBackend) ReadAt(p []byte, off int64) (n int, err error) {
	return f.storage.ReadAt(p, off)
}
