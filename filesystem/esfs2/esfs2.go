package esfs2

import (
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/essencefs/esfs2/device"
)

// FileSystem is a mounted EssenceFS2 volume: the public facade composing
// the superblock loader, directory iterator, extent reader, and path
// resolver (spec.md §4.7). It owns the parsed superblock and the root
// directory entry; the underlying device.Device is borrowed, never
// closed by FileSystem.
type FileSystem struct {
	dev       device.Device
	sb        *Superblock
	root      *DirectoryEntry
	blockSize uint64
	log       *logrus.Logger
}

// Mount reads the superblock at its fixed disk location, validates it,
// reads and validates the root directory entry it points to, and returns
// a FileSystem ready for Open/Dir/Label/UUID.
//
// Any device.ErrOutOfRange encountered while reading the superblock or
// root entry is rewritten to a BadFs *Error, matching spec.md §4.2: a
// device that can't even supply the fixed superblock/root-entry region is
// indistinguishable, to this driver, from a volume that was never
// EssenceFS2 in the first place. Any other device error is reported as
// an IOError.
func Mount(dev device.Device, opts MountOptions) (*FileSystem, error) {
	log := opts.logger()

	sbBuf := make([]byte, superblockSize)
	if err := dev.ReadAt(superblockOffset/device.SectorSize, 0, sbBuf, nil); err != nil {
		return nil, rewriteOutOfRange(err)
	}

	sb, err := parseSuperblock(sbBuf)
	if err != nil {
		log.WithError(err).Warn("mount: superblock validation failed")
		return nil, err
	}

	blockSizeSectors := sb.BlockSize / device.SectorSize
	rootSector, rootOffset := normalizeOffset(sb.Root.Block*blockSizeSectors, sb.Root.OffsetIntoBlock)

	rootBuf := make([]byte, direntrySize)
	if err := dev.ReadAt(rootSector, rootOffset, rootBuf, nil); err != nil {
		return nil, rewriteOutOfRange(err)
	}
	if !checkDirectoryEntry(rootBuf) {
		err := badFs("root directory entry has an incorrect signature")
		log.WithError(err).Warn("mount: root entry validation failed")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"volume":      sb.VolumeName,
		"block_size":  sb.BlockSize,
		"block_count": sb.BlockCount,
	}).Info("mounted esfs2 volume")

	return &FileSystem{
		dev:       dev,
		sb:        sb,
		root:      parseDirectoryEntry(rootBuf),
		blockSize: sb.BlockSize,
		log:       log,
	}, nil
}

func rewriteOutOfRange(err error) error {
	if errors.Is(err, device.ErrOutOfRange) {
		return wrapBadFs(err, "could not read fixed filesystem region")
	}
	return ioError(err)
}

// Superblock returns the mounted volume's parsed superblock.
func (fs *FileSystem) Superblock() *Superblock {
	return fs.sb
}

// Label returns the volume name recorded in the superblock.
func (fs *FileSystem) Label() string {
	return fs.sb.VolumeName
}

// UUID returns the volume identifier as 32 lowercase hex characters.
func (fs *FileSystem) UUID() string {
	return fs.sb.Identifier.Hex()
}

// Open resolves path (absolute, '/'-separated) to a file and returns a
// File positioned at offset 0.
func (fs *FileSystem) Open(path string) (*File, error) {
	entry, err := resolvePath(fs.dev, fs.blockSize, fs.log, fs.root, path, KindFile)
	if err != nil {
		return nil, err
	}
	return &File{fs: fs, entry: entry}, nil
}

// DirInfo is the per-child metadata Dir's hook receives.
type DirInfo struct {
	IsDir        bool
	MTimeSeconds int64
}

// DirHook is called once per child of the directory Dir walks. Returning
// true stops the walk early.
type DirHook func(name string, info DirInfo) bool

// Dir resolves path to a directory and invokes hook once per child,
// reporting is_dir and mtime_seconds (modification time truncated to
// whole seconds), per spec.md §4.7.
func (fs *FileSystem) Dir(path string, hook DirHook) error {
	dir, err := resolvePath(fs.dev, fs.blockSize, fs.log, fs.root, path, KindDirectory)
	if err != nil {
		return err
	}
	return iterate(fs.dev, fs.blockSize, fs.log, dir, func(name string, kind NodeKind, child *DirectoryEntry) bool {
		info := DirInfo{
			IsDir:        kind == KindDirectory,
			MTimeSeconds: int64(child.ModificationTime / 1_000_000),
		}
		return hook(name, info)
	})
}

// File is an open handle to a single EssenceFS2 file: an owning copy of
// its directory entry, a borrowed FileSystem, and a read cursor.
// spec.md §9 notes the source reuses one scratch directory-entry buffer
// across Open calls; this implementation instead gives each File its own
// owned entry, the alternative spec.md explicitly allows ("a target
// implementation may ... give each file its own owned entry").
type File struct {
	fs     *FileSystem
	entry  *DirectoryEntry
	cursor uint64
	closed bool
}

// Size returns the file's declared size in bytes.
func (f *File) Size() uint64 {
	return f.entry.FileSize
}

// Entry returns the file's parsed directory entry, for callers that want
// timestamps or the content-type identifier beyond the byte stream.
func (f *File) Entry() *DirectoryEntry {
	return f.entry
}

// Seek sets the read cursor. Per spec.md §6, there is no validation until
// the next Read: seeking past end-of-file is allowed, and simply yields a
// zero-length read.
func (f *File) Seek(pos uint64) {
	f.cursor = pos
}

// Read fills buf from the file's current cursor, advancing it by the
// number of bytes read, and returns 0 at EOF (no error), per spec.md §6.
func (f *File) Read(buf []byte) (int, error) {
	return f.ReadObserved(buf, nil)
}

// ReadObserved is Read with a per-sector-read observer installed for the
// duration of this call only (spec.md §5's "observer scoping"): it is a
// plain argument, not a field stashed on the File or FileSystem, so it
// can never leak into a later, unrelated Read.
func (f *File) ReadObserved(buf []byte, observer device.ReadObserver) (int, error) {
	if f.closed {
		return 0, badFs("read on closed file")
	}
	if f.cursor >= f.entry.FileSize {
		return 0, nil
	}
	n, err := readFile(f.fs.dev, f.fs.blockSize, f.entry, f.cursor, buf, observer)
	if err != nil {
		return n, err
	}
	f.cursor += uint64(n)
	if n < len(buf) {
		f.fs.log.WithFields(logrus.Fields{
			"requested": len(buf),
			"got":       n,
		}).Debug("short read: extent list exhausted before satisfying request")
	}
	return n, nil
}

// Close releases the file's reference to its mount. The device itself is
// borrowed and is never closed here (spec.md §5: "the driver never closes
// it").
func (f *File) Close() error {
	f.closed = true
	f.fs = nil
	f.entry = nil
	return nil
}
