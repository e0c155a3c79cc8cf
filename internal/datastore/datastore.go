// Package datastore maps data-block index to sector in the data region
// (spec.md §4.4). Unlike inodestore, allocation is not a primitive here:
// the file writer finds free bits via the data bitmap directly, writes the
// blocks, then flips the bits; deletion does the reverse.
package datastore

import (
	"fmt"

	"github.com/tupofs/tupofs/internal/bitmap"
	"github.com/tupofs/tupofs/internal/blockdev"
	"github.com/tupofs/tupofs/internal/tupofsconst"
)

// Store is the data region plus its bitmap.
type Store struct {
	dev           *blockdev.Device
	mapBytes      int
	bitmapIdx     int
	dataRegionIdx int
}

// New wraps dev as a data store whose bitmap is mapBytes bytes long. The
// data region starts right after the inode table, whose size is derived
// from inodeMapBytes (spec.md §4.4: sector 3 + 8*inode_map_size + (d-1)).
func New(dev *blockdev.Device, inodeMapBytes, dataMapBytes int) *Store {
	return &Store{
		dev:           dev,
		mapBytes:      dataMapBytes,
		bitmapIdx:     tupofsconst.DataBitmapBlockIdx,
		dataRegionIdx: tupofsconst.FirstInodeTableBlockIdx + 8*inodeMapBytes,
	}
}

// Count returns the number of addressable data blocks: 8 * mapBytes.
func (s *Store) Count() int {
	return s.mapBytes * 8
}

func (s *Store) blockIdx(d int) (int, error) {
	if d < 1 {
		return 0, fmt.Errorf("datastore: invalid data-block index %d", d)
	}
	return s.dataRegionIdx + (d - 1), nil
}

// Get reads data block d into buf (tupofsconst.SectorSize bytes).
func (s *Store) Get(d int, buf []byte) error {
	idx, err := s.blockIdx(d)
	if err != nil {
		return err
	}
	if err := s.dev.ReadBlock(idx, buf); err != nil {
		return fmt.Errorf("datastore: get block %d: %w", d, err)
	}
	return nil
}

// Put writes buf (tupofsconst.SectorSize bytes) to data block d.
func (s *Store) Put(d int, buf []byte) error {
	idx, err := s.blockIdx(d)
	if err != nil {
		return err
	}
	if err := s.dev.WriteBlock(idx, buf); err != nil {
		return fmt.Errorf("datastore: put block %d: %w", d, err)
	}
	return nil
}

// ReadBitmap loads the data bitmap.
func (s *Store) ReadBitmap() (*bitmap.Bitmap, error) {
	buf := make([]byte, tupofsconst.SectorSize)
	if err := s.dev.ReadBlock(s.bitmapIdx, buf); err != nil {
		return nil, fmt.Errorf("datastore: read bitmap: %w", err)
	}
	return bitmap.FromBytes(buf[:s.mapBytes]), nil
}

// WriteBitmap persists bm as the data bitmap.
func (s *Store) WriteBitmap(bm *bitmap.Bitmap) error {
	buf := make([]byte, tupofsconst.SectorSize)
	copy(buf, bm.Bytes())
	if err := s.dev.WriteBlock(s.bitmapIdx, buf); err != nil {
		return fmt.Errorf("datastore: write bitmap: %w", err)
	}
	return nil
}

// FormatBitmap zeroes the data bitmap at format time.
func (s *Store) FormatBitmap() error {
	return s.WriteBitmap(bitmap.New(s.mapBytes))
}
