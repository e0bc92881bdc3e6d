package esfs2

import (
	"github.com/sirupsen/logrus"

	"github.com/essencefs/esfs2/device"
)

// NodeKind classifies a child returned by Iterate.
type NodeKind int

const (
	KindUnknown NodeKind = iota
	KindFile
	KindDirectory
)

func nodeKindOf(nodeType uint8) NodeKind {
	switch nodeType {
	case nodeTypeDirectory:
		return KindDirectory
	case nodeTypeFile:
		return KindFile
	default:
		return KindUnknown
	}
}

// maxDirectorySize is the exclusive upper bound on the file_size a
// directory's own byte stream may declare, per spec.md's invariant "a
// directory's file_size is < 2^31".
const maxDirectorySize = 1 << 31

// IterateHook is called once per valid child slot found while walking a
// directory. Returning true stops iteration early (mirrors spec.md's "hook
// returns non-zero" convention). Each child is a freshly parsed
// DirectoryEntry owned by the hook; iterate does not use it after the hook
// returns, so the hook may keep it.
type IterateHook func(name string, kind NodeKind, child *DirectoryEntry) bool

// iterate walks dir's own byte stream in fixed 1024-byte slots (spec.md
// §4.6), reading each slot through readFile, and invokes hook for every
// slot that parses as a valid directory entry with a valid FILENAME
// attribute. Malformed slots — bad signature, missing or oversized
// filename — are silently skipped, never treated as an iteration error,
// per spec.md §7's "per-slot validation failures inside directory
// iteration are silent skips."
func iterate(dev device.Device, blockSize uint64, log *logrus.Logger, dir *DirectoryEntry, hook IterateHook) error {
	if !dir.IsDirectory() {
		return badFileType("not a directory")
	}
	if dir.FileSize >= maxDirectorySize {
		return badFs("directory too large")
	}

	var fpos uint64
	slot := make([]byte, direntrySize)
	for fpos < dir.FileSize {
		n, err := readFile(dev, blockSize, dir, fpos, slot, nil)
		if err != nil {
			return err
		}
		fpos += direntrySize
		if n < direntrySize {
			// Truncated read: nothing more to find in this directory.
			break
		}

		if !checkDirectoryEntry(slot) {
			log.WithField("offset", fpos-direntrySize).Debug("skipping directory slot with bad signature")
			continue
		}
		child := parseDirectoryEntry(slot)

		fnAttr, ok := findAttribute(child, attributeTypeFilename, filenameAttributeHeaderSize)
		if !ok {
			log.WithField("offset", fpos-direntrySize).Debug("skipping directory slot with no filename attribute")
			continue
		}
		length := uint16FromLE(fnAttr.payload()[0:2])
		if length > fnAttr.Size-uint16(filenameAttributeHeaderSize) {
			log.WithField("offset", fpos-direntrySize).Debug("skipping directory slot with oversized filename length")
			continue
		}

		kind := nodeKindOf(child.NodeType)

		nameBytes := fnAttr.payload()[4 : 4+length]
		name := string(nameBytes)

		if hook(name, kind, child) {
			return nil
		}
	}

	return nil
}

func uint16FromLE(b []byte) uint16 {
	return uint16(b[0]) | uint16(b[1])<<8
}
