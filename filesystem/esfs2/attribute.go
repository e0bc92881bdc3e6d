package esfs2

import "encoding/binary"

// attribute is a typed, length-prefixed record inside a directory entry's
// attribute list. raw is the attribute's full in-place bytes (header
// included), sliced directly out of the owning DirectoryEntry's buffer —
// offset 0 of raw is the attribute's own start, the same frame the
// on-disk dataOffset field for DATA attributes is expressed in.
type attribute struct {
	Type   uint16
	Size   uint16
	Offset int // absolute offset within the owning DirectoryEntry.raw
	raw    []byte
}

// payload returns the attribute's bytes following the 4-byte {type, size}
// header. FILENAME attribute fields are expressed relative to this.
func (a attribute) payload() []byte {
	return a.raw[4:]
}

// findAttribute walks the attribute chain inside entry, starting at
// entry.AttributeOffset, returning the first attribute of the requested
// type whose declared size is >= minSize.
//
// Grounded in esfs.c's get_direntry_attribute: a misaligned offset, a
// declared size under the header's own length, or a size that would run
// the attribute past the end of the 1024-byte entry all terminate the
// walk by reporting "not found" rather than risking a read past the
// entry. Each accepted attribute's size is always >= 4, so the walk makes
// forward progress every iteration; it cannot loop forever even on a
// hostile size claim, because a size < 4 stops it immediately.
func findAttribute(entry *DirectoryEntry, attrType uint16, minSize int) (attribute, bool) {
	off := int(entry.AttributeOffset)
	for off+4 <= direntrySize {
		if off&7 != 0 {
			return attribute{}, false
		}
		size := int(binary.LittleEndian.Uint16(entry.raw[off+2 : off+4]))
		if size < 4 || off+size > direntrySize {
			return attribute{}, false
		}
		typ := binary.LittleEndian.Uint16(entry.raw[off : off+2])
		if typ == attrType && size >= minSize {
			return attribute{
				Type:   typ,
				Size:   uint16(size),
				Offset: off,
				raw:    entry.raw[off : off+size],
			}, true
		}
		off += size
	}
	return attribute{}, false
}
