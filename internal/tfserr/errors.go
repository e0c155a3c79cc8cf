// Package tfserr holds the sentinel errors shared across TupoFS's internal
// packages and re-exported by the root package, mirroring the numeric
// error codes of original_source/hw2/tupofs/tfs_errs.h one-for-one.
package tfserr

import "errors"

var (
	// ErrNotFound covers a missing path component, wrong kind (file where
	// a directory is expected), unimplemented cross-directory rename, and
	// directory-full on append — tfs_errs.h's TFS_ENOENT (-2). Parser
	// rejection has its own ErrInvalidPath, which Errno also reports as -2.
	ErrNotFound = errors.New("tupofs: not found")

	// ErrOutOfSpace means no free inode or no free data blocks —
	// tfs_errs.h's TFS_ENOSPACE (-3).
	ErrOutOfSpace = errors.New("tupofs: out of space")

	// ErrAlreadyExists is returned when Create, Delete or Rename is given
	// the root path (zero components) — tfs_errs.h's TFS_EEXISTS (-4).
	// Note that a name collision inside an
	// existing parent directory returns ErrNotFound instead, per spec.md
	// §9 (preserved source behavior).
	ErrAlreadyExists = errors.New("tupofs: already exists")

	// ErrInvalidPath is returned by the path parser for a relative path
	// or one with too many components.
	ErrInvalidPath = errors.New("tupofs: invalid path")

	// ErrBadMagic is returned by superblock.Load when the image's magic
	// does not match TupoFS's.
	ErrBadMagic = errors.New("tupofs: bad superblock magic")
)
