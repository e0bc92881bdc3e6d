// Package device provides the sector-addressed block device abstraction
// that filesystem/esfs2 is built on: every on-disk structure is reached
// through a Device.
package device

import (
	"errors"
	"fmt"

	"github.com/essencefs/esfs2/backend"
)

// SectorSize is the fixed device addressing unit. Block sizes declared by
// an EssenceFS2 superblock are always a multiple of this.
const SectorSize = 512

// ErrOutOfRange is returned when a read would run past the end of the
// backing storage. filesystem/esfs2 rewrites this to a BadFs error at
// mount time, matching the original driver's OutOfRange-to-BadFs mapping.
var ErrOutOfRange = errors.New("device: read out of range")

// ReadObserver is invoked once for each sector-level read issued while
// decoding a byte range. It is a plain function parameter, not a field
// stashed on the Device, so it never leaks past the call that installed it.
type ReadObserver func(sector uint64, offsetInSector uint32, length int)

// Device is a random-access, 512-byte-sector block device.
type Device interface {
	// ID identifies the device for logging, independent of any path it may
	// have been opened from.
	ID() string
	// SectorCount reports the device's total size in 512-byte sectors.
	SectorCount() uint64
	// ReadAt reads len(out) bytes starting at sector, offsetInSector bytes
	// into that sector. offsetInSector must be < SectorSize; the read may
	// cross sector boundaries freely. If observer is non-nil it is called
	// exactly once, describing this read, before the read is attempted; it
	// is not called when out is empty or offsetInSector is out of range.
	ReadAt(sector uint64, offsetInSector uint32, out []byte, observer ReadObserver) error
}

// storageDevice adapts a backend.Storage into a Device.
type storageDevice struct {
	id      string
	storage backend.Storage
	sectors uint64
}

// New wraps a backend.Storage as a Device of the given size in bytes.
// sizeBytes may be 0, in which case the backend is Stat'd to discover its
// size; pass it explicitly when storage represents only part of a larger
// file (see backend.Sub).
func New(id string, storage backend.Storage, sizeBytes int64) (Device, error) {
	if sizeBytes <= 0 {
		fi, err := storage.Stat()
		if err != nil {
			return nil, fmt.Errorf("device: could not stat backing storage: %w", err)
		}
		sizeBytes = fi.Size()
	}
	return &storageDevice{
		id:      id,
		storage: storage,
		sectors: uint64(sizeBytes) / SectorSize,
	}, nil
}

func (d *storageDevice) ID() string {
	return d.id
}

func (d *storageDevice) SectorCount() uint64 {
	return d.sectors
}

func (d *storageDevice) ReadAt(sector uint64, offsetInSector uint32, out []byte, observer ReadObserver) error {
	if offsetInSector >= SectorSize {
		return fmt.Errorf("device: offset %d into sector out of range", offsetInSector)
	}
	if len(out) == 0 {
		return nil
	}
	if observer != nil {
		observer(sector, offsetInSector, len(out))
	}
	pos := int64(sector)*SectorSize + int64(offsetInSector)
	n, err := d.storage.ReadAt(out, pos)
	if n == len(out) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrOutOfRange, err)
	}
	return ErrOutOfRange
}
