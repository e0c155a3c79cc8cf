package tupofs

import (
	"github.com/tupofs/tupofs/internal/inode"
	"github.com/tupofs/tupofs/internal/tpath"
	"github.com/tupofs/tupofs/internal/tupofsconst"
)

// resolveParent parses path, walks every component but the last, and
// returns the parent directory's inode index and the leaf component name.
func (fs *Filesystem) resolveParent(path string) (int, string, error) {
	p, err := tpath.Parse(path)
	if err != nil {
		return 0, "", err
	}
	if p.Len() == 0 {
		return 0, "", ErrAlreadyExists
	}
	parentIdx, err := tpath.Traverse(fs.inodes, p, tupofsconst.RootInodeIndex, 0, p.Len()-1)
	if err != nil {
		return 0, "", err
	}
	return parentIdx, p.Components[p.Len()-1], nil
}

// Stat resolves path to its terminal inode (get_inode_by_path).
func (fs *Filesystem) Stat(path string) (InodeInfo, error) {
	p, err := tpath.Parse(path)
	if err != nil {
		return InodeInfo{}, wrapf("stat", err)
	}
	idx, err := tpath.Resolve(fs.inodes, p, tupofsconst.RootInodeIndex)
	if err != nil {
		return InodeInfo{}, wrapf("stat", err)
	}
	rec, err := fs.inodes.Get(idx)
	if err != nil {
		return InodeInfo{}, wrapf("stat", err)
	}
	return infoFromRecord(rec), nil
}

// Inspect returns raw inode info by index, regardless of path.
func (fs *Filesystem) Inspect(idx int) (InodeInfo, error) {
	rec, err := fs.inodes.Get(idx)
	if err != nil {
		return InodeInfo{}, wrapf("inspect", err)
	}
	return infoFromRecord(rec), nil
}

// Create allocates a fresh inode of kind at path and links it into its
// parent directory. A name collision in the parent returns ErrNotFound,
// not ErrAlreadyExists, conflated exactly as original_source does it.
func (fs *Filesystem) Create(path string, kind inode.Kind) (int, error) {
	parentIdx, leaf, err := fs.resolveParent(path)
	if err != nil {
		return 0, wrapf("create", err)
	}
	parent, err := fs.inodes.Get(parentIdx)
	if err != nil {
		return 0, wrapf("create", err)
	}
	if parent.Type != inode.Directory || parent.Dir == nil {
		return 0, wrapf("create", ErrNotDirectory)
	}
	if parent.Dir.FindChild(leaf) != nil {
		return 0, wrapf("create", ErrNotFound)
	}

	idx, _, err := fs.inodes.Allocate(kind)
	if err != nil {
		return 0, wrapf("create", err)
	}
	if parent.Dir.AppendChild(idx, leaf) == nil {
		// Directory is at capacity; undo the allocation.
		_ = fs.inodes.Free(idx)
		return 0, wrapf("create", ErrNotFound)
	}
	if err := fs.inodes.Put(parentIdx, parent); err != nil {
		return 0, wrapf("create", err)
	}
	fs.log.WithField("path", path).WithField("inode", idx).Debug("tupofs: created")
	return idx, nil
}

// Size returns a file's byte length without reading its contents.
func (fs *Filesystem) Size(path string) (int, error) {
	rec, err := fs.statRecord(path)
	if err != nil {
		return 0, wrapf("size", err)
	}
	if rec.Type != inode.File || rec.File == nil {
		return 0, wrapf("size", ErrNotFile)
	}
	return rec.File.Size, nil
}

// ReadFile resolves path to a file inode and returns its full contents.
func (fs *Filesystem) ReadFile(path string) ([]byte, error) {
	rec, err := fs.statRecord(path)
	if err != nil {
		return nil, wrapf("read", err)
	}
	if rec.Type != inode.File || rec.File == nil {
		return nil, wrapf("read", ErrNotFile)
	}

	out := make([]byte, rec.File.Size)
	remaining := rec.File.Size
	buf := make([]byte, tupofsconst.SectorSize)
	for _, d := range rec.File.UsedBlocks {
		if remaining <= 0 {
			break
		}
		if err := fs.data.Get(d, buf); err != nil {
			return nil, wrapf("read", err)
		}
		n := remaining
		if n > tupofsconst.SectorSize {
			n = tupofsconst.SectorSize
		}
		off := rec.File.Size - remaining
		copy(out[off:off+n], buf[:n])
		remaining -= n
	}
	return out, nil
}

// WriteFile replaces a file's entire contents. It resolves path to an
// existing inode (typically freshly Create'd). It does not free the
// file's previously-used data blocks before allocating new ones — a
// rewrite leaks old blocks, preserved from original_source's behavior.
func (fs *Filesystem) WriteFile(path string, data []byte) error {
	p, err := tpath.Parse(path)
	if err != nil {
		return wrapf("write", err)
	}
	idx, err := tpath.Resolve(fs.inodes, p, tupofsconst.RootInodeIndex)
	if err != nil {
		return wrapf("write", err)
	}
	rec, err := fs.inodes.Get(idx)
	if err != nil {
		return wrapf("write", err)
	}
	if rec.Type != inode.File || rec.File == nil {
		return wrapf("write", ErrNotFile)
	}

	need := ceilDiv(len(data), tupofsconst.SectorSize)
	if need > tupofsconst.MaxBlocksPerFile {
		return wrapf("write", ErrOutOfSpace)
	}

	bm, err := fs.data.ReadBitmap()
	if err != nil {
		return wrapf("write", err)
	}
	free, err := bm.FindFree(need)
	if err != nil {
		return wrapf("write", ErrOutOfSpace)
	}

	used := make([]int, need)
	buf := make([]byte, tupofsconst.SectorSize)
	for i, bit := range free {
		d := bit + 1
		used[i] = d
		start := i * tupofsconst.SectorSize
		end := start + tupofsconst.SectorSize
		if end > len(data) {
			end = len(data)
		}
		for j := range buf {
			buf[j] = 0
		}
		copy(buf, data[start:end])
		if err := fs.data.Put(d, buf); err != nil {
			return wrapf("write", err)
		}
	}
	bm.SetMany(free, true)
	if err := fs.data.WriteBitmap(bm); err != nil {
		return wrapf("write", err)
	}

	rec.File.Size = len(data)
	rec.File.UsedBlocks = used
	if err := fs.inodes.Put(idx, rec); err != nil {
		return wrapf("write", err)
	}
	fs.log.WithField("path", path).WithField("bytes", len(data)).Debug("tupofs: wrote file")
	return nil
}

// Delete removes the entry named at path from its parent. A non-empty
// directory is not removed: it returns (0, nil), matching
// original_source's "busy" return instead of an error. Otherwise it
// returns the freed inode's index.
func (fs *Filesystem) Delete(path string) (int, error) {
	parentIdx, leaf, err := fs.resolveParent(path)
	if err != nil {
		return 0, wrapf("delete", err)
	}
	parent, err := fs.inodes.Get(parentIdx)
	if err != nil {
		return 0, wrapf("delete", err)
	}
	if parent.Type != inode.Directory || parent.Dir == nil {
		return 0, wrapf("delete", ErrNotDirectory)
	}
	childPos := parent.Dir.FindChildIdx(leaf)
	if childPos < 0 {
		return 0, wrapf("delete", ErrNotFound)
	}
	childIdx := parent.Dir.Entries[childPos].InodeIdx

	child, err := fs.inodes.Get(childIdx)
	if err != nil {
		return 0, wrapf("delete", err)
	}
	if child.Type == inode.Directory && child.Dir != nil && len(child.Dir.Entries) > 0 {
		return 0, nil
	}
	if child.Type == inode.File && child.File != nil && len(child.File.UsedBlocks) > 0 {
		bm, err := fs.data.ReadBitmap()
		if err != nil {
			return 0, wrapf("delete", err)
		}
		for _, d := range child.File.UsedBlocks {
			bm.Set(d-1, false)
		}
		if err := fs.data.WriteBitmap(bm); err != nil {
			return 0, wrapf("delete", err)
		}
	}

	if err := fs.inodes.Free(childIdx); err != nil {
		return 0, wrapf("delete", err)
	}
	parent.Dir.DeleteChildAt(childPos)
	if err := fs.inodes.Put(parentIdx, parent); err != nil {
		return 0, wrapf("delete", err)
	}
	fs.log.WithField("path", path).WithField("inode", childIdx).Debug("tupofs: deleted")
	return childIdx, nil
}

// Rename moves the entry at from to to within the same parent directory.
// Cross-directory rename is not implemented and returns ErrNotFound,
// matching original_source.
func (fs *Filesystem) Rename(from, to string) (int, error) {
	fromParent, fromLeaf, err := fs.resolveParent(from)
	if err != nil {
		return 0, wrapf("rename", err)
	}
	toParent, toLeaf, err := fs.resolveParent(to)
	if err != nil {
		return 0, wrapf("rename", err)
	}
	if fromParent != toParent {
		return 0, wrapf("rename", ErrNotFound)
	}

	parent, err := fs.inodes.Get(fromParent)
	if err != nil {
		return 0, wrapf("rename", err)
	}
	if parent.Type != inode.Directory || parent.Dir == nil {
		return 0, wrapf("rename", ErrNotDirectory)
	}
	pos := parent.Dir.FindChildIdx(fromLeaf)
	if pos < 0 {
		return 0, wrapf("rename", ErrNotFound)
	}
	parent.Dir.Entries[pos].Name = toLeaf
	if err := fs.inodes.Put(fromParent, parent); err != nil {
		return 0, wrapf("rename", err)
	}
	return parent.Dir.Entries[pos].InodeIdx, nil
}

// List returns path's directory entries in insertion order.
func (fs *Filesystem) List(path string) ([]DirEntry, error) {
	rec, err := fs.statRecord(path)
	if err != nil {
		return nil, wrapf("list", err)
	}
	if rec.Type != inode.Directory || rec.Dir == nil {
		return nil, wrapf("list", ErrNotDirectory)
	}
	out := make([]DirEntry, len(rec.Dir.Entries))
	for i, e := range rec.Dir.Entries {
		out[i] = DirEntry{InodeIdx: e.InodeIdx, Name: e.Name}
	}
	return out, nil
}

func (fs *Filesystem) statRecord(path string) (inode.Record, error) {
	p, err := tpath.Parse(path)
	if err != nil {
		return inode.Record{}, err
	}
	idx, err := tpath.Resolve(fs.inodes, p, tupofsconst.RootInodeIndex)
	if err != nil {
		return inode.Record{}, err
	}
	return fs.inodes.Get(idx)
}

func ceilDiv(a, b int) int {
	if a == 0 {
		return 0
	}
	n := a / b
	if a%b != 0 {
		n++
	}
	return n
}
