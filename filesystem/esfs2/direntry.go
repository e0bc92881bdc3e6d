package esfs2

import (
	"encoding/binary"
	"time"

	"github.com/essencefs/esfs2/util/timestamp"
)

// DirectoryEntry is the parsed view of a 1024-byte on-disk directory entry
// record describing exactly one node: a file or a directory.
type DirectoryEntry struct {
	Identifier      UniqueID
	AttributeOffset uint16
	NodeType        uint8
	AttributeCount  uint8

	CreationTime     uint64 // microseconds since the Unix epoch
	AccessTime       uint64
	ModificationTime uint64

	FileSize uint64

	Parent      UniqueID
	ContentType UniqueID

	// raw holds the full 1024-byte record, including the attribute area,
	// so attribute.go can walk it without re-reading from the device.
	raw [direntrySize]byte
}

// IsDirectory reports whether this entry describes a directory node.
func (e *DirectoryEntry) IsDirectory() bool { return e.NodeType == nodeTypeDirectory }

// IsFile reports whether this entry describes a file node.
func (e *DirectoryEntry) IsFile() bool { return e.NodeType == nodeTypeFile }

// Created, Accessed, and Modified expose the entry's timestamps as
// time.Time, supplementing spec.md's Dir() hook (which only carries
// mtime_seconds) for callers that open a file directly and want richer
// metadata than the bare byte stream.
func (e *DirectoryEntry) Created() time.Time  { return timestamp.FromMicros(e.CreationTime) }
func (e *DirectoryEntry) Accessed() time.Time { return timestamp.FromMicros(e.AccessTime) }
func (e *DirectoryEntry) Modified() time.Time { return timestamp.FromMicros(e.ModificationTime) }

// checkDirectoryEntry validates the 8-byte "DirEntry" signature. It is the
// only structural check applied uniformly to every slot; every other field
// is validated by the code path that actually uses it (attribute walking,
// extent decoding), per spec.md's "every field comes from untrusted media"
// design note.
func checkDirectoryEntry(buf []byte) bool {
	return len(buf) >= 8 && string(buf[0:8]) == direntrySignature
}

// parseDirectoryEntry parses a 1024-byte directory entry record. The
// caller must have already validated its signature with
// checkDirectoryEntry; parseDirectoryEntry does not re-check it.
func parseDirectoryEntry(buf []byte) *DirectoryEntry {
	e := &DirectoryEntry{}
	copy(e.raw[:], buf[:direntrySize])
	e.Identifier = uniqueIDFromBytes(buf[8:24])
	e.AttributeOffset = binary.LittleEndian.Uint16(buf[28:30])
	e.NodeType = buf[30]
	e.AttributeCount = buf[31]
	e.CreationTime = binary.LittleEndian.Uint64(buf[32:40])
	e.AccessTime = binary.LittleEndian.Uint64(buf[40:48])
	e.ModificationTime = binary.LittleEndian.Uint64(buf[48:56])
	e.FileSize = binary.LittleEndian.Uint64(buf[56:64])
	e.Parent = uniqueIDFromBytes(buf[64:80])
	e.ContentType = uniqueIDFromBytes(buf[80:96])
	return e
}
