// Package superblock reads and writes the image header: magic plus the
// two bitmap sizes (spec.md §4.1, §6 sector 0).
package superblock

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
	"github.com/tupofs/tupofs/internal/blockdev"
	"github.com/tupofs/tupofs/internal/tfserr"
	"github.com/tupofs/tupofs/internal/tupofsconst"
)

// Magic is the 16-byte identifier stamped into every TupoFS image's first
// sector: 0x00 0x13 0x37 0x00 "TupoFS" followed by six zero bytes.
var Magic = [16]byte{0x00, 0x13, 0x37, 0x00, 'T', 'u', 'p', 'o', 'F', 'S', 0, 0, 0, 0, 0, 0}

// Superblock is the decoded contents of sector 0. VolumeID has no
// equivalent in the original format; it is stamped into the padding past
// data_map_size at format time and is purely informational.
type Superblock struct {
	Magic        [16]byte
	InodeMapSize int32
	DataMapSize  int32
	VolumeID     uuid.UUID
}

// Load reads and validates the superblock from dev's sector 0.
func Load(dev *blockdev.Device) (Superblock, error) {
	buf := make([]byte, tupofsconst.SectorSize)
	if err := dev.ReadBlock(tupofsconst.SuperblockBlockIdx, buf); err != nil {
		return Superblock{}, fmt.Errorf("superblock: load: %w", err)
	}
	if !bytes.Equal(buf[:16], Magic[:]) {
		return Superblock{}, tfserr.ErrBadMagic
	}
	sb := Superblock{
		InodeMapSize: int32(binary.NativeEndian.Uint32(buf[16:20])),
		DataMapSize:  int32(binary.NativeEndian.Uint32(buf[20:24])),
	}
	copy(sb.Magic[:], buf[:16])
	id, err := uuid.FromBytes(buf[24:40])
	if err != nil {
		return Superblock{}, fmt.Errorf("superblock: load: volume id: %w", err)
	}
	sb.VolumeID = id
	return sb, nil
}

// Store writes sb to dev's sector 0, zero-padded to a full sector.
func Store(dev *blockdev.Device, sb Superblock) error {
	buf := make([]byte, tupofsconst.SectorSize)
	copy(buf[:16], Magic[:])
	binary.NativeEndian.PutUint32(buf[16:20], uint32(sb.InodeMapSize))
	binary.NativeEndian.PutUint32(buf[20:24], uint32(sb.DataMapSize))
	copy(buf[24:40], sb.VolumeID[:])
	if err := dev.WriteBlock(tupofsconst.SuperblockBlockIdx, buf); err != nil {
		return fmt.Errorf("superblock: store: %w", err)
	}
	return nil
}
