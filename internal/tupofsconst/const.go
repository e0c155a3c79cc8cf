// Package tupofsconst centralizes the on-disk format constants shared by
// every TupoFS package, the way go-diskfs/filesystem/ext4 keeps its block
// and group sizing constants in one place.
package tupofsconst

const (
	// SectorSize is the fixed unit of backing-store I/O. Every structure
	// below is laid out in whole sectors.
	SectorSize = 2048

	// InodeRecordSize is the on-disk size of one inode: one sector.
	InodeRecordSize = SectorSize

	// InodeHeaderSize is the fixed {type, padding, inode_idx} header at
	// the front of every inode record.
	InodeHeaderSize = 32

	// InodeDataPayload is the usable payload after the inode header.
	InodeDataPayload = SectorSize - InodeHeaderSize // 2016

	// MaxBlocksPerFile is how many 1-based data-block indices fit in a
	// file inode's payload.
	MaxBlocksPerFile = 503

	// MaxDirChildren is how many 32-byte directory entries fit in a
	// directory inode's payload.
	MaxDirChildren = 62

	// DirEntrySize is the on-disk size of one directory entry.
	DirEntrySize = 32

	// DirEntryNameSize is the fixed name field width within a directory
	// entry.
	DirEntryNameSize = 28

	// MaxFileSize is the largest file TupoFS can represent.
	MaxFileSize = SectorSize * MaxBlocksPerFile // 1,030,144

	// RootInodeIndex is the 1-based index of the root directory inode.
	RootInodeIndex = 1

	// DefaultBitmapBytes is the default size, in bytes, of each of the
	// two bitmaps (inode and data), giving 8*2048 = 16384 addressable
	// entries of each kind.
	DefaultBitmapBytes = SectorSize

	// PathMaxComponents bounds how many '/'-separated components a path
	// may have.
	PathMaxComponents = 50

	// SuperblockBlockIdx, InodeBitmapBlockIdx and DataBitmapBlockIdx are
	// the fixed sector indices of the three header structures.
	SuperblockBlockIdx  = 0
	InodeBitmapBlockIdx = 1
	DataBitmapBlockIdx  = 2

	// FirstInodeTableBlockIdx is the sector index of inode 1.
	FirstInodeTableBlockIdx = 3
)
