package tupofs

import (
	"errors"
	"fmt"

	"github.com/tupofs/tupofs/internal/tfserr"
)

// Sentinel errors mirroring original_source/hw2/tupofs/tfs_errs.h
// one-for-one. Use errors.Is to test for them; operations may wrap these
// with additional context.
var (
	ErrNotFound      = tfserr.ErrNotFound
	ErrOutOfSpace    = tfserr.ErrOutOfSpace
	ErrAlreadyExists = tfserr.ErrAlreadyExists
	ErrInvalidPath   = tfserr.ErrInvalidPath
	ErrBadMagic      = tfserr.ErrBadMagic
	ErrNotDirectory  = errors.New("tupofs: not a directory")
	ErrNotFile       = errors.New("tupofs: not a file")
)

// Errno maps err back to the original tfs_errs.h numeric contract, for
// callers (the shell, the mount adapter) that still want an integer
// result instead of a Go error. Returns 1 for nil (TFS_ESUCC).
func Errno(err error) int {
	switch {
	case err == nil:
		return 1
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidPath), errors.Is(err, ErrNotDirectory), errors.Is(err, ErrNotFile):
		return -2
	case errors.Is(err, ErrOutOfSpace):
		return -3
	case errors.Is(err, ErrAlreadyExists):
		return -4
	default:
		return -1
	}
}

func wrapf(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("tupofs: %s: %w", op, err)
}
