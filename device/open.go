package device

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/essencefs/esfs2/backend"
	backendfile "github.com/essencefs/esfs2/backend/file"
)

// OpenPath opens pathName (a raw block device or a plain image file) and
// wraps it as a Device. If the path names an actual block device, its
// sector count is discovered via BLKGETSIZE64 rather than Stat, since block
// devices generally report a zero or meaningless st_size.
func OpenPath(pathName string) (Device, error) {
	storage, err := backendfile.OpenFromPath(pathName)
	if err != nil {
		return nil, err
	}
	return wrap(pathName, storage)
}

// OpenPathAt opens pathName and windows it to the byte range [offset,
// offset+size), for an EssenceFS2 volume embedded inside a larger backing
// image (for example, one partition of a raw disk image) rather than
// occupying the whole file. The returned Device's sector 0 is offset
// within pathName; sizeBytes, not the backing file's length, determines
// its SectorCount.
func OpenPathAt(pathName string, offset, sizeBytes int64) (Device, error) {
	storage, err := backendfile.OpenFromPath(pathName)
	if err != nil {
		return nil, err
	}
	windowed := backend.Sub(storage, offset, sizeBytes)
	logrus.WithFields(logrus.Fields{
		"device": pathName,
		"offset": offset,
		"size":   sizeBytes,
	}).Debug("device opened (windowed)")
	return New(pathName, windowed, sizeBytes)
}

func wrap(id string, storage backend.Storage) (Device, error) {
	fi, err := storage.Stat()
	if err != nil {
		return nil, fmt.Errorf("device: could not stat %s: %w", id, err)
	}

	size := fi.Size()
	fields := logrus.Fields{"device": id}
	if fi.Mode()&os.ModeDevice != 0 {
		if osFile, err := storage.Sys(); err == nil {
			if blkSize, ok := blockDeviceSize(osFile); ok {
				size = blkSize
				fields["block_device_size"] = blkSize
			}
		}
	}
	if bt, ok := birthTime(fi); ok {
		fields["backing_birth_time"] = bt
	}
	logrus.WithFields(fields).Debug("device opened")

	return New(id, storage, size)
}
