// Package fsadapter exposes a *tupofs.Filesystem as a read-only io/fs.FS,
// standing in for the mount adapter surface described for TupoFS (the
// getattr/readdir/open/read calls original_source/hw2/tupofs/fuse.c
// implements against libfuse). Only O_RDONLY-equivalent access is
// offered; there is no write path, matching fuse.c's hello_open, which
// rejects any other flag with EACCES.
package fsadapter

import (
	"bytes"
	"io/fs"
	"path"
	"time"

	"github.com/tupofs/tupofs"
	"github.com/tupofs/tupofs/internal/inode"
)

// FS adapts a *tupofs.Filesystem to io/fs.FS and io/fs.ReadDirFS.
type FS struct {
	tfs *tupofs.Filesystem
}

// New wraps tfs for read-only access through the io/fs interfaces.
func New(tfs *tupofs.Filesystem) *FS {
	return &FS{tfs: tfs}
}

func toTupoPath(name string) string {
	if name == "." {
		return "/"
	}
	return "/" + name
}

// Open resolves name (an io/fs-style slash path, "." for the root) to its
// TupoFS inode and returns a read-only handle. Directories yield a handle
// satisfying fs.ReadDirFile.
func (a *FS) Open(name string) (fs.File, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrInvalid}
	}
	p := toTupoPath(name)
	info, err := a.tfs.Stat(p)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}

	base := path.Base(name)
	if name == "." {
		base = "/"
	}

	if info.Kind == inode.Directory {
		entries, err := a.tfs.List(p)
		if err != nil {
			return nil, &fs.PathError{Op: "open", Path: name, Err: err}
		}
		return &dirHandle{info: dirInfo{name: base}, entries: a.toDirEntries(entries)}, nil
	}

	data, err := a.tfs.ReadFile(p)
	if err != nil {
		return nil, &fs.PathError{Op: "open", Path: name, Err: err}
	}
	return &fileHandle{
		info:   fileInfo{name: base, size: int64(len(data))},
		Reader: bytes.NewReader(data),
	}, nil
}

// ReadDir lists name's children plus nothing else — TupoFS has no "."/".."
// entries in its own directory records, and neither ReadDir nor the
// directory handle returned by Open adds them.
func (a *FS) ReadDir(name string) ([]fs.DirEntry, error) {
	if !fs.ValidPath(name) {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: fs.ErrInvalid}
	}
	entries, err := a.tfs.List(toTupoPath(name))
	if err != nil {
		return nil, &fs.PathError{Op: "readdir", Path: name, Err: err}
	}
	return a.toDirEntries(entries), nil
}

// toDirEntries resolves each child's real kind via Inspect so IsDir/Type
// reflect the actual inode rather than guessing — TupoFS directory
// records carry only {inode_idx, name}, no type bit (internal/inode.DirEnt).
func (a *FS) toDirEntries(entries []tupofs.DirEntry) []fs.DirEntry {
	out := make([]fs.DirEntry, len(entries))
	for i, e := range entries {
		isDir := false
		if childInfo, err := a.tfs.Inspect(e.InodeIdx); err == nil {
			isDir = childInfo.Kind == inode.Directory
		}
		out[i] = dirEntry{name: e.Name, isDir: isDir}
	}
	return out
}

type fileInfo struct {
	name string
	size int64
}

func (fi fileInfo) Name() string       { return fi.name }
func (fi fileInfo) Size() int64        { return fi.size }
func (fi fileInfo) Mode() fs.FileMode  { return 0o444 }
func (fi fileInfo) ModTime() time.Time { return time.Time{} }
func (fi fileInfo) IsDir() bool        { return false }
func (fi fileInfo) Sys() any           { return nil }

type dirInfo struct {
	name string
}

func (di dirInfo) Name() string       { return di.name }
func (di dirInfo) Size() int64        { return 0 }
func (di dirInfo) Mode() fs.FileMode  { return fs.ModeDir | 0o555 }
func (di dirInfo) ModTime() time.Time { return time.Time{} }
func (di dirInfo) IsDir() bool        { return true }
func (di dirInfo) Sys() any           { return nil }

// dirEntry wraps a directory child as an fs.DirEntry.
type dirEntry struct {
	name  string
	isDir bool
}

func (de dirEntry) Name() string { return de.name }
func (de dirEntry) IsDir() bool  { return de.isDir }
func (de dirEntry) Type() fs.FileMode {
	if de.isDir {
		return fs.ModeDir
	}
	return 0
}
func (de dirEntry) Info() (fs.FileInfo, error) {
	if de.isDir {
		return dirInfo{name: de.name}, nil
	}
	return fileInfo{name: de.name}, nil
}

type fileHandle struct {
	info fileInfo
	*bytes.Reader
}

func (f *fileHandle) Stat() (fs.FileInfo, error) { return f.info, nil }
func (f *fileHandle) Close() error               { return nil }

type dirHandle struct {
	info    dirInfo
	entries []fs.DirEntry
	pos     int
}

func (d *dirHandle) Stat() (fs.FileInfo, error) { return d.info, nil }
func (d *dirHandle) Read([]byte) (int, error) {
	return 0, &fs.PathError{Op: "read", Path: d.info.name, Err: fs.ErrInvalid}
}
func (d *dirHandle) Close() error { return nil }

// ReadDir implements fs.ReadDirFile.
func (d *dirHandle) ReadDir(n int) ([]fs.DirEntry, error) {
	if n <= 0 {
		rest := d.entries[d.pos:]
		d.pos = len(d.entries)
		return rest, nil
	}
	if d.pos >= len(d.entries) {
		return nil, nil
	}
	end := d.pos + n
	if end > len(d.entries) {
		end = len(d.entries)
	}
	out := d.entries[d.pos:end]
	d.pos = end
	return out, nil
}
