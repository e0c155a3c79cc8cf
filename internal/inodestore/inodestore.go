// Package inodestore maps inode index to on-disk inode record, and
// allocates/frees inodes through the inode bitmap (spec.md §4.3).
package inodestore

import (
	"fmt"

	"github.com/tupofs/tupofs/internal/bitmap"
	"github.com/tupofs/tupofs/internal/blockdev"
	"github.com/tupofs/tupofs/internal/inode"
	"github.com/tupofs/tupofs/internal/tfserr"
	"github.com/tupofs/tupofs/internal/tupofsconst"
)

// ErrOutOfSpace is returned by FindFree/Allocate when no inode is free. It
// wraps the shared tfserr.ErrOutOfSpace so callers can match on either.
var ErrOutOfSpace = fmt.Errorf("inodestore: no free inode: %w", tfserr.ErrOutOfSpace)

// Store is the inode table plus its bitmap.
type Store struct {
	dev       *blockdev.Device
	mapBytes  int
	bitmapIdx int
}

// New wraps dev as an inode store whose bitmap is mapBytes bytes long,
// living at sector tupofsconst.InodeBitmapBlockIdx.
func New(dev *blockdev.Device, mapBytes int) *Store {
	return &Store{dev: dev, mapBytes: mapBytes, bitmapIdx: tupofsconst.InodeBitmapBlockIdx}
}

// Count returns the number of addressable inodes: 8 * mapBytes.
func (s *Store) Count() int {
	return s.mapBytes * 8
}

// blockIdx returns the sector holding inode i (1-based), per spec.md §4.3:
// inode i lives in sector 3 + (i-1).
func blockIdx(i int) (int, error) {
	if i < 1 {
		return 0, fmt.Errorf("inodestore: invalid inode index %d", i)
	}
	return tupofsconst.FirstInodeTableBlockIdx + (i - 1), nil
}

func (s *Store) readBitmap() (*bitmap.Bitmap, error) {
	buf := make([]byte, tupofsconst.SectorSize)
	if err := s.dev.ReadBlock(s.bitmapIdx, buf); err != nil {
		return nil, fmt.Errorf("inodestore: read bitmap: %w", err)
	}
	return bitmap.FromBytes(buf[:s.mapBytes]), nil
}

func (s *Store) writeBitmap(bm *bitmap.Bitmap) error {
	buf := make([]byte, tupofsconst.SectorSize)
	copy(buf, bm.Bytes())
	if err := s.dev.WriteBlock(s.bitmapIdx, buf); err != nil {
		return fmt.Errorf("inodestore: write bitmap: %w", err)
	}
	return nil
}

// Get reads the full inode record at i. The on-disk inode_idx is always
// equal to i (invariant 1); a mismatch indicates a corrupted image.
func (s *Store) Get(i int) (inode.Record, error) {
	idx, err := blockIdx(i)
	if err != nil {
		return inode.Record{}, err
	}
	buf := make([]byte, tupofsconst.SectorSize)
	if err := s.dev.ReadBlock(idx, buf); err != nil {
		return inode.Record{}, fmt.Errorf("inodestore: get inode %d: %w", i, err)
	}
	rec, err := inode.Decode(buf)
	if err != nil {
		return inode.Record{}, fmt.Errorf("inodestore: get inode %d: %w", i, err)
	}
	if rec.InodeIdx != i {
		return inode.Record{}, fmt.Errorf("inodestore: inode %d has stored index %d", i, rec.InodeIdx)
	}
	return rec, nil
}

// Put writes the full inode record at i.
func (s *Store) Put(i int, rec inode.Record) error {
	idx, err := blockIdx(i)
	if err != nil {
		return err
	}
	buf, err := inode.Encode(rec)
	if err != nil {
		return fmt.Errorf("inodestore: put inode %d: %w", i, err)
	}
	if err := s.dev.WriteBlock(idx, buf); err != nil {
		return fmt.Errorf("inodestore: put inode %d: %w", i, err)
	}
	return nil
}

// FormatTable pre-writes every inode record as Free with its own index
// preloaded, so Get(i).InodeIdx == i always holds (spec.md §4.3, §3
// Lifecycle).
func (s *Store) FormatTable() error {
	count := s.Count()
	for i := 1; i <= count; i++ {
		if err := s.Put(i, inode.NewFree(i)); err != nil {
			return fmt.Errorf("inodestore: format inode %d: %w", i, err)
		}
	}
	return s.writeBitmap(bitmap.New(s.mapBytes))
}

// FindFree scans the inode bitmap for the first zero bit b, returning
// inode index b+1.
func (s *Store) FindFree() (int, error) {
	bm, err := s.readBitmap()
	if err != nil {
		return 0, err
	}
	free, err := bm.FindFree(1)
	if err != nil {
		return 0, ErrOutOfSpace
	}
	return free[0] + 1, nil
}

func (s *Store) setOccupied(i int, occupied bool) error {
	bm, err := s.readBitmap()
	if err != nil {
		return err
	}
	bm.Set(i-1, occupied)
	return s.writeBitmap(bm)
}

// Allocate finds a free inode, initializes it for kind, writes it, and
// marks its bitmap bit set. kind must be Directory or File.
func (s *Store) Allocate(kind inode.Kind) (int, inode.Record, error) {
	i, err := s.FindFree()
	if err != nil {
		return 0, inode.Record{}, err
	}
	var rec inode.Record
	switch kind {
	case inode.Directory:
		rec = inode.NewDirectory(i)
	case inode.File:
		rec = inode.NewFile(i)
	default:
		return 0, inode.Record{}, fmt.Errorf("inodestore: cannot allocate inode of kind %v", kind)
	}
	if err := s.Put(i, rec); err != nil {
		return 0, inode.Record{}, err
	}
	if err := s.setOccupied(i, true); err != nil {
		return 0, inode.Record{}, err
	}
	return i, rec, nil
}

// Free clears inode i's bitmap bit and rewrites its record as Free,
// preserving inode_idx.
func (s *Store) Free(i int) error {
	if err := s.setOccupied(i, false); err != nil {
		return err
	}
	return s.Put(i, inode.NewFree(i))
}

// IsOccupied reports whether inode i's bitmap bit is set.
func (s *Store) IsOccupied(i int) (bool, error) {
	bm, err := s.readBitmap()
	if err != nil {
		return false, err
	}
	return bm.Get(i - 1)
}
