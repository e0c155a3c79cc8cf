// Package tupofs implements a block-addressed, single-volume filesystem
// engine over a byte-addressable backing store: a superblock, two
// bitmap-backed allocators, an inode table, and a data region, wired
// together behind path-based create/read/write/delete/rename operations.
//
// The on-disk format is bit-exact with original_source/hw2/tupofs: fixed
// 2048-byte sectors, native-endian 32-bit integers, a 16-byte magic, and
// a tagged-union inode record. See internal/tupofsconst for the format's
// constants and internal/inode for the record layout.
package tupofs

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/tupofs/tupofs/backend"
	"github.com/tupofs/tupofs/internal/blockdev"
	"github.com/tupofs/tupofs/internal/datastore"
	"github.com/tupofs/tupofs/internal/inode"
	"github.com/tupofs/tupofs/internal/inodestore"
	"github.com/tupofs/tupofs/internal/superblock"
	"github.com/tupofs/tupofs/internal/tupofsconst"
)

// Options configures Format. Zero values are replaced with the spec's
// one-sector-bitmap default (2048 bytes each: 16384 inodes, 16384 data
// blocks). Each bitmap lives in a single sector, so that default is also
// the largest size; tests pass smaller sizes to format tiny images.
type Options struct {
	InodeMapBytes int
	DataMapBytes  int
	VolumeID      uuid.UUID
	Logger        *logrus.Entry
}

func (o Options) withDefaults() Options {
	if o.InodeMapBytes == 0 {
		o.InodeMapBytes = tupofsconst.DefaultBitmapBytes
	}
	if o.DataMapBytes == 0 {
		o.DataMapBytes = tupofsconst.DefaultBitmapBytes
	}
	if o.Logger == nil {
		o.Logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return o
}

// Filesystem is a handle onto one TupoFS image. It is not safe for
// concurrent use: the core is single-threaded and performs no internal
// locking, exactly like go-diskfs's disk.Disk — callers serialize access
// externally if they share a handle across goroutines.
type Filesystem struct {
	dev    *blockdev.Device
	sb     superblock.Superblock
	inodes *inodestore.Store
	data   *datastore.Store
	log    *logrus.Entry
}

// Format lays down a fresh TupoFS image on b: writes the superblock,
// zeroes both bitmaps, pre-formats the inode table, and allocates the
// root directory at tupofsconst.RootInodeIndex.
func Format(b backend.Storage, opts Options) (*Filesystem, error) {
	opts = opts.withDefaults()
	dev := blockdev.New(b)

	volumeID := opts.VolumeID
	if volumeID == uuid.Nil {
		volumeID = uuid.New()
	}
	sb := superblock.Superblock{
		InodeMapSize: int32(opts.InodeMapBytes),
		DataMapSize:  int32(opts.DataMapBytes),
		VolumeID:     volumeID,
	}
	if err := superblock.Store(dev, sb); err != nil {
		return nil, wrapf("format", err)
	}

	inodes := inodestore.New(dev, opts.InodeMapBytes)
	if err := inodes.FormatTable(); err != nil {
		return nil, wrapf("format", err)
	}
	data := datastore.New(dev, opts.InodeMapBytes, opts.DataMapBytes)
	if err := data.FormatBitmap(); err != nil {
		return nil, wrapf("format", err)
	}

	rootIdx, _, err := inodes.Allocate(inode.Directory)
	if err != nil {
		return nil, wrapf("format", err)
	}
	if rootIdx != tupofsconst.RootInodeIndex {
		return nil, fmt.Errorf("tupofs: format: root inode allocated at %d, want %d", rootIdx, tupofsconst.RootInodeIndex)
	}

	fs := &Filesystem{dev: dev, sb: sb, inodes: inodes, data: data, log: opts.Logger}
	fs.log.WithField("volume_id", sb.VolumeID).Debug("tupofs: formatted image")
	return fs, nil
}

// Read opens an existing TupoFS image from b, validating its superblock.
func Read(b backend.Storage) (*Filesystem, error) {
	dev := blockdev.New(b)
	sb, err := superblock.Load(dev)
	if err != nil {
		return nil, wrapf("read", err)
	}
	fs := &Filesystem{
		dev:    dev,
		sb:     sb,
		inodes: inodestore.New(dev, int(sb.InodeMapSize)),
		data:   datastore.New(dev, int(sb.InodeMapSize), int(sb.DataMapSize)),
		log:    logrus.NewEntry(logrus.StandardLogger()),
	}
	fs.log.WithField("volume_id", sb.VolumeID).Debug("tupofs: opened image")
	return fs, nil
}

// VolumeID returns the image's stamped identifier.
func (fs *Filesystem) VolumeID() uuid.UUID {
	return fs.sb.VolumeID
}

// WithLogger returns fs with its logger replaced by entry.
func (fs *Filesystem) WithLogger(entry *logrus.Entry) *Filesystem {
	fs.log = entry
	return fs
}
