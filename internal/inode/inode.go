// Package inode implements the TupoFS inode record: a sector-sized tagged
// union discriminated by a type byte, with Directory and File payload
// variants. It is a value type, copied in and out of the backing store —
// the backing store is the only owner of persistent state (spec.md §9).
package inode

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/tupofs/tupofs/internal/tupofsconst"
)

// Kind is the inode type discriminator, byte 0 of every record.
type Kind byte

const (
	Free      Kind = 0
	Directory Kind = 1
	File      Kind = 2
)

func (k Kind) String() string {
	switch k {
	case Free:
		return "free"
	case Directory:
		return "directory"
	case File:
		return "file"
	default:
		return fmt.Sprintf("unknown(%d)", byte(k))
	}
}

// DirEnt is one directory entry: a child inode index and its name within
// the parent.
type DirEnt struct {
	InodeIdx int
	Name     string
}

// DirPayload is the Directory variant's payload.
type DirPayload struct {
	Entries []DirEnt
}

// FilePayload is the File variant's payload. UsedBlocks holds only the
// blocks in use (length == ceil(Size/SectorSize)); entries past that in
// the on-disk record are unspecified, per spec.
type FilePayload struct {
	Size       int
	UsedBlocks []int
}

// Record is one full inode: the common header plus whichever payload Type
// selects. Dir is non-nil iff Type == Directory; File is non-nil iff
// Type == File.
type Record struct {
	Type     Kind
	InodeIdx int
	Dir      *DirPayload
	File     *FilePayload
}

// NewFree returns a Free record preloaded with its own index, the state
// every inode is formatted into (spec.md §4.3).
func NewFree(idx int) Record {
	return Record{Type: Free, InodeIdx: idx}
}

// NewDirectory returns an empty Directory record for idx.
func NewDirectory(idx int) Record {
	return Record{Type: Directory, InodeIdx: idx, Dir: &DirPayload{}}
}

// NewFile returns an empty File record for idx.
func NewFile(idx int) Record {
	return Record{Type: File, InodeIdx: idx, File: &FilePayload{}}
}

// BlockCount returns ceil(Size/SectorSize), the number of data blocks in
// use by a File record.
func (f *FilePayload) BlockCount() int {
	return ceilDiv(f.Size, tupofsconst.SectorSize)
}

func ceilDiv(a, b int) int {
	return a/b + boolToInt(a%b != 0)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// AppendChild appends a {childIdx, name} entry to d and returns a pointer
// to the new entry, or nil if the directory is at capacity. Does not write
// anything back to disk — the caller rewrites the parent record.
//
// Preserves the source's off-by-one: the guard rejects at
// children_cnt+1 == MaxDirChildren, leaving the final slot unreachable
// (spec.md §9).
func (d *DirPayload) AppendChild(childIdx int, name string) *DirEnt {
	if len(d.Entries)+1 >= tupofsconst.MaxDirChildren {
		return nil
	}
	d.Entries = append(d.Entries, DirEnt{InodeIdx: childIdx, Name: name})
	return &d.Entries[len(d.Entries)-1]
}

// DeleteChildAt removes the entry at idx, shifting later entries left to
// preserve insertion order.
func (d *DirPayload) DeleteChildAt(idx int) bool {
	if idx < 0 || idx >= len(d.Entries) {
		return false
	}
	d.Entries = append(d.Entries[:idx], d.Entries[idx+1:]...)
	return true
}

// FindChildIdx returns the position of the entry named name, or -1.
func (d *DirPayload) FindChildIdx(name string) int {
	for i, e := range d.Entries {
		if e.Name == name {
			return i
		}
	}
	return -1
}

// FindChild returns the entry named name, or nil.
func (d *DirPayload) FindChild(name string) *DirEnt {
	idx := d.FindChildIdx(name)
	if idx == -1 {
		return nil
	}
	return &d.Entries[idx]
}

// Encode serializes r into a fixed tupofsconst.InodeRecordSize byte record.
func Encode(r Record) ([]byte, error) {
	buf := make([]byte, tupofsconst.InodeRecordSize)
	buf[0] = byte(r.Type)
	binary.NativeEndian.PutUint32(buf[28:32], uint32(int32(r.InodeIdx)))

	payload := buf[tupofsconst.InodeHeaderSize:]
	switch r.Type {
	case Free:
		// zero payload
	case Directory:
		if r.Dir == nil {
			return nil, fmt.Errorf("inode: directory record %d missing payload", r.InodeIdx)
		}
		if len(r.Dir.Entries) > tupofsconst.MaxDirChildren {
			return nil, fmt.Errorf("inode: directory record %d has %d entries, max %d", r.InodeIdx, len(r.Dir.Entries), tupofsconst.MaxDirChildren)
		}
		binary.NativeEndian.PutUint32(payload[0:4], uint32(len(r.Dir.Entries)))
		for i, e := range r.Dir.Entries {
			off := 4 + i*tupofsconst.DirEntrySize
			binary.NativeEndian.PutUint32(payload[off:off+4], uint32(int32(e.InodeIdx)))
			if err := putFixedString(payload[off+4:off+tupofsconst.DirEntrySize], e.Name); err != nil {
				return nil, fmt.Errorf("inode: directory record %d entry %d: %w", r.InodeIdx, i, err)
			}
		}
	case File:
		if r.File == nil {
			return nil, fmt.Errorf("inode: file record %d missing payload", r.InodeIdx)
		}
		if r.File.Size > tupofsconst.MaxFileSize || r.File.Size < 0 {
			return nil, fmt.Errorf("inode: file record %d has invalid size %d", r.InodeIdx, r.File.Size)
		}
		binary.NativeEndian.PutUint32(payload[0:4], uint32(int32(r.File.Size)))
		if len(r.File.UsedBlocks) > tupofsconst.MaxBlocksPerFile {
			return nil, fmt.Errorf("inode: file record %d has %d blocks, max %d", r.InodeIdx, len(r.File.UsedBlocks), tupofsconst.MaxBlocksPerFile)
		}
		for i, blk := range r.File.UsedBlocks {
			off := 4 + i*4
			binary.NativeEndian.PutUint32(payload[off:off+4], uint32(int32(blk)))
		}
	default:
		return nil, fmt.Errorf("inode: unknown type %v for record %d", r.Type, r.InodeIdx)
	}
	return buf, nil
}

// Decode parses a fixed-size inode record. For File records, only the
// first ceil(Size/SectorSize) block entries are read back, matching the
// spec's "entries past the boundary are unspecified" contract.
func Decode(buf []byte) (Record, error) {
	if len(buf) != tupofsconst.InodeRecordSize {
		return Record{}, fmt.Errorf("inode: record must be %d bytes, got %d", tupofsconst.InodeRecordSize, len(buf))
	}
	kind := Kind(buf[0])
	idx := int(int32(binary.NativeEndian.Uint32(buf[28:32])))
	payload := buf[tupofsconst.InodeHeaderSize:]

	r := Record{Type: kind, InodeIdx: idx}
	switch kind {
	case Free:
		// no payload
	case Directory:
		cnt := int(int32(binary.NativeEndian.Uint32(payload[0:4])))
		if cnt < 0 || cnt > tupofsconst.MaxDirChildren {
			return Record{}, fmt.Errorf("inode: record %d has invalid children_cnt %d", idx, cnt)
		}
		d := &DirPayload{Entries: make([]DirEnt, cnt)}
		for i := 0; i < cnt; i++ {
			off := 4 + i*tupofsconst.DirEntrySize
			d.Entries[i] = DirEnt{
				InodeIdx: int(int32(binary.NativeEndian.Uint32(payload[off : off+4]))),
				Name:     getFixedString(payload[off+4 : off+tupofsconst.DirEntrySize]),
			}
		}
		r.Dir = d
	case File:
		size := int(int32(binary.NativeEndian.Uint32(payload[0:4])))
		if size < 0 || size > tupofsconst.MaxFileSize {
			return Record{}, fmt.Errorf("inode: record %d has invalid file_size %d", idx, size)
		}
		f := &FilePayload{Size: size}
		blocks := f.BlockCount()
		f.UsedBlocks = make([]int, blocks)
		for i := 0; i < blocks; i++ {
			off := 4 + i*4
			f.UsedBlocks[i] = int(int32(binary.NativeEndian.Uint32(payload[off : off+4])))
		}
		r.File = f
	default:
		return Record{}, fmt.Errorf("inode: record %d has unknown type byte %d", idx, buf[0])
	}
	return r, nil
}

// putFixedString writes name into a fixed-width field, null-terminated if
// it fits with room to spare, or exactly filling the field with no
// terminator if it is exactly field-width long (spec.md §6.1).
func putFixedString(field []byte, name string) error {
	if len(name) > len(field) {
		return fmt.Errorf("name %q exceeds %d-byte field", name, len(field))
	}
	for i := range field {
		field[i] = 0
	}
	copy(field, name)
	return nil
}

func getFixedString(field []byte) string {
	if i := bytes.IndexByte(field, 0); i >= 0 {
		return string(field[:i])
	}
	return string(field)
}
