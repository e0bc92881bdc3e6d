package esfs2

import (
	"encoding/binary"

	"github.com/essencefs/esfs2/device"
)

// blockSizeMask is the set of bits a valid block size is allowed to have:
// a multiple of 512, and no larger than 0x1FFFE00 bytes. Flagged in
// spec.md §9 as an unusual constraint worth double-checking against the
// file-system specification before enforcing further; preserved here
// exactly as the original driver enforces it.
const blockSizeMask uint64 = 0x1FF_FE00

// direntryRef locates a directory entry: sector block*(blockSize/512),
// byte offset_into_block within that block. offset_into_block may exceed
// 512 when block_size does; normalizeOffset below folds the excess into
// whole sectors before any device.ReadAt call, since device.Device.ReadAt
// requires offsetInSector < device.SectorSize.
type direntryRef struct {
	Block           uint64
	OffsetIntoBlock uint32
}

// Superblock is the parsed, validated view of an EssenceFS2 volume's
// 8192-byte superblock.
type Superblock struct {
	VolumeName string
	Mounted    bool

	RequiredReadVersion  uint16
	RequiredWriteVersion uint16

	BlockSize  uint64
	BlockCount uint64

	// BlocksUsed, BlocksPerGroup, GroupCount, BlocksPerGroupBlockBitmap,
	// and GDTFirstBlock are group-descriptor/bitmap bookkeeping fields:
	// present on disk, parsed and bounds-free (they're plain integers),
	// but never consulted by this read-only driver. Exposed for tooling
	// built on top of this package (e.g. an fsck-style inspector).
	BlocksUsed                uint64
	BlocksPerGroup            uint32
	GroupCount                uint64
	BlocksPerGroupBlockBitmap uint64
	GDTFirstBlock             uint64
	DirectoryEntriesPerBlock  uint64

	Identifier     UniqueID
	OSInstallation UniqueID
	NextIdentifier UniqueID

	// Kernel is recorded for the bootloader's convenience in the original
	// driver and never dereferenced here.
	Kernel direntryRef
	Root   direntryRef
}

// normalizeOffset folds a byte offset that may exceed one sector into
// additional whole sectors plus a remainder under device.SectorSize, since
// device.Device.ReadAt requires offsetInSector < device.SectorSize while
// on-disk offset_into_block fields are only bounded by block_size.
func normalizeOffset(sector uint64, offsetIntoBlock uint32) (uint64, uint32) {
	sector += uint64(offsetIntoBlock) / device.SectorSize
	return sector, uint32(uint64(offsetIntoBlock) % device.SectorSize)
}

func parseDirentryRef(b []byte) direntryRef {
	return direntryRef{
		Block:           binary.LittleEndian.Uint64(b[0:8]),
		OffsetIntoBlock: binary.LittleEndian.Uint32(b[8:12]),
	}
}

// parseSuperblock parses and validates an 8192-byte superblock image,
// implementing the checks of spec.md §4.2 (signature, required read
// version, block size, block count). It does not read the root directory
// entry; that is left to Mount, which needs the device to do so.
func parseSuperblock(buf []byte) (*Superblock, error) {
	if len(buf) < superblockSize {
		return nil, badFs("superblock short read: got %d bytes, want %d", len(buf), superblockSize)
	}
	if string(buf[0:16]) != signature {
		return nil, badFs("signature mismatch")
	}

	sb := &Superblock{}
	sb.VolumeName = trimZeroPadded(buf[16:48])
	sb.RequiredReadVersion = binary.LittleEndian.Uint16(buf[48:50])
	sb.RequiredWriteVersion = binary.LittleEndian.Uint16(buf[50:52])
	sb.Mounted = buf[56] != 0
	sb.BlockSize = binary.LittleEndian.Uint64(buf[64:72])
	sb.BlockCount = binary.LittleEndian.Uint64(buf[72:80])
	sb.BlocksUsed = binary.LittleEndian.Uint64(buf[80:88])
	sb.BlocksPerGroup = binary.LittleEndian.Uint32(buf[88:92])
	sb.GroupCount = binary.LittleEndian.Uint64(buf[96:104])
	sb.BlocksPerGroupBlockBitmap = binary.LittleEndian.Uint64(buf[104:112])
	sb.GDTFirstBlock = binary.LittleEndian.Uint64(buf[112:120])
	sb.DirectoryEntriesPerBlock = binary.LittleEndian.Uint64(buf[120:128])
	sb.Identifier = uniqueIDFromBytes(buf[136:152])
	sb.OSInstallation = uniqueIDFromBytes(buf[152:168])
	sb.NextIdentifier = uniqueIDFromBytes(buf[168:184])
	sb.Kernel = parseDirentryRef(buf[184:200])
	sb.Root = parseDirentryRef(buf[200:216])

	if sb.RequiredReadVersion > driverVersion {
		return nil, badFs("required read version %d exceeds driver version %d", sb.RequiredReadVersion, driverVersion)
	}
	if sb.BlockSize == 0 {
		return nil, badFs("block size is zero")
	}
	if sb.BlockSize&^blockSizeMask != 0 {
		return nil, badFs("block size %d is not a multiple of 512 within the allowed range", sb.BlockSize)
	}
	if sb.BlockCount == 0 {
		return nil, badFs("block count is zero")
	}

	return sb, nil
}

// trimZeroPadded converts a zero-padded (or fully-used) fixed-width field
// into a Go string, stopping at the first NUL.
func trimZeroPadded(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
