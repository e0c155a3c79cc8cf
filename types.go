package tupofs

import "github.com/tupofs/tupofs/internal/inode"

// InodeInfo is a snapshot of one inode, returned by Stat and Inspect.
type InodeInfo struct {
	Idx           int
	Kind          inode.Kind
	Size          int // File: byte length. Directory: 0.
	ChildrenCount int // Directory: number of entries. File: 0.
}

// DirEntry is one child of a directory, as returned by List.
type DirEntry struct {
	InodeIdx int
	Name     string
}

func infoFromRecord(rec inode.Record) InodeInfo {
	info := InodeInfo{Idx: rec.InodeIdx, Kind: rec.Type}
	switch rec.Type {
	case inode.Directory:
		if rec.Dir != nil {
			info.ChildrenCount = len(rec.Dir.Entries)
		}
	case inode.File:
		if rec.File != nil {
			info.Size = rec.File.Size
		}
	}
	return info
}
