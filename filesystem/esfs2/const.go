// Package esfs2 implements a read-only driver for the EssenceFS2 on-disk
// file system: it mounts a block device, walks the directory tree rooted
// at the on-disk root entry, resolves paths, and streams file bytes on
// demand. Modeled on the sibling filesystem implementations in
// github.com/diskfs/go-diskfs (fat32, iso9660, ext4), but read-only and
// single-format.
package esfs2

const (
	// signature is the superblock's required 16-byte magic.
	signature = "!EssenceFS2-----"
	// direntrySignature is the required 8-byte magic of every directory
	// entry record.
	direntrySignature = "DirEntry"

	// driverVersion is the highest on-disk format version this driver
	// understands. Mount fails if the volume declares a required read
	// version greater than this.
	driverVersion = 10

	maxVolumeNameLength = 32

	nodeTypeFile      = 1
	nodeTypeDirectory = 2

	attributeTypeData     = 1
	attributeTypeFilename = 2

	indirectionDirect = 1
	indirectionL1     = 2

	superblockSize   = 8192
	superblockOffset = 16 * 512 // bytes, per spec: sector 16

	direntrySize       = 1024
	attributeAreaStart = 96

	// dataAttributeHeaderSize is the fixed portion of a DATA attribute:
	// type(2) + size(2) + indirection(1) + dataOffset(1) + count(2) +
	// unused(2*12).
	dataAttributeHeaderSize = 32

	// filenameAttributeHeaderSize is the fixed portion of a FILENAME
	// attribute: type(2) + size(2) + length(2) + unused(2).
	filenameAttributeHeaderSize = 8
)
