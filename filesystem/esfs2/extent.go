package esfs2

import (
	"encoding/binary"
	"errors"

	"github.com/essencefs/esfs2/device"
)

// readFile implements the extent decoder & byte-range reader (spec.md
// §4.5): it turns the byte range [pos, pos+len(out)) of node's logical
// data stream into zero or more sector-level device reads that fill out,
// returning the number of bytes actually placed in out.
//
// A short result (less than len(out)) is not itself an error: spec.md §7
// has callers detect EOF and extent-list truncation by comparing the
// returned length against what they asked for. Structural errors (a
// missing DATA attribute, a dataOffset beyond the attribute, or an
// indirection mode other than DIRECT/L1) report Kind BadFs; a device read
// that runs past the end of the device reports Kind OutOfRange, and any
// other device failure reports Kind IOError.
func readFile(dev device.Device, blockSize uint64, node *DirectoryEntry, pos uint64, out []byte, observer device.ReadObserver) (int, error) {
	want := len(out)
	if want == 0 {
		return 0, nil
	}

	attr, ok := findAttribute(node, attributeTypeData, dataAttributeHeaderSize)
	if !ok {
		return 0, badFs("extents are missing")
	}

	indirection := attr.raw[4]
	dataOffset := attr.raw[5]
	count := binary.LittleEndian.Uint16(attr.raw[6:8])

	if uint16(dataOffset) > attr.Size {
		return 0, badFs("data offset is too large")
	}

	if pos > node.FileSize {
		return 0, nil
	}
	if uint64(want) > node.FileSize-pos {
		want = int(node.FileSize - pos)
		out = out[:want]
	}
	if want == 0 {
		return 0, nil
	}

	switch indirection {
	case indirectionDirect:
		return readDirect(attr, dataOffset, count, pos, out)
	case indirectionL1:
		return readL1(dev, blockSize, attr, dataOffset, count, pos, out, observer)
	default:
		return 0, badFs("unknown redirection %d", indirection)
	}
}

// readDirect copies inline file bytes straight out of the DATA attribute.
//
// available is computed as max(count, size-dataOffset), preserving an
// open question from the original driver (spec.md §9): it arguably should
// be min(count, size-dataOffset), since count is meant to be the number of
// valid inline bytes and size-dataOffset is just how much room is left in
// the attribute record. The max() is what the source actually does, and
// is preserved rather than "corrected," per the process's instruction to
// follow the original on undecided points rather than guess.
func readDirect(attr attribute, dataOffset uint8, count uint16, pos uint64, out []byte) (int, error) {
	declared := uint32(attr.Size) - uint32(dataOffset)
	available := uint32(count)
	if declared > available {
		available = declared
	}
	if pos > uint64(available) {
		return 0, nil
	}
	toRead := uint64(available) - pos
	if toRead > uint64(len(out)) {
		toRead = uint64(len(out))
	}
	start := uint32(dataOffset) + uint32(pos)
	end := start + uint32(toRead)
	if end > uint32(len(attr.raw)) {
		// Declared size ran past what was actually sliced out of the
		// entry; clamp defensively rather than index out of range.
		end = uint32(len(attr.raw))
		if end < start {
			return 0, nil
		}
		toRead = uint64(end - start)
	}
	n := copy(out[:toRead], attr.raw[start:end])
	return n, nil
}

// readL1 decodes a DATA attribute's L1 extent list and issues the
// corresponding device reads.
//
// The extent cursor (extOff) is an offset from the attribute's own start
// and begins at dataOffset, as in the original driver, but the length it
// is checked against (dataSize = size - dataOffset) is measured from
// dataOffset. The two are in different frames, so an extent is rejected
// whenever its end lies past size - dataOffset, even though it fits inside
// the attribute; a DATA attribute sized just large enough for its extent
// list therefore reads back 0 bytes. This arithmetic is kept as the
// original driver has it, per spec.md §9's instruction that the encoding
// and its arithmetic be taken as given.
func readL1(dev device.Device, blockSize uint64, attr attribute, dataOffset uint8, count uint16, pos uint64, out []byte, observer device.ReadObserver) (int, error) {
	raw := attr.raw
	dataSize := uint32(attr.Size) - uint32(dataOffset)
	extOff := uint32(dataOffset)

	var (
		curPos      uint64
		curStart    uint64
		alreadyRead int
	)

	for extnum := 0; alreadyRead < len(out) && extnum < int(count); extnum++ {
		if extOff >= uint32(len(raw)) {
			return alreadyRead, nil
		}
		header := raw[extOff]
		extOff++
		startBytes := uint32(header&0x07) + 1
		countBytes := uint32((header>>3)&0x07) + 1

		if extOff+startBytes+countBytes > dataSize || extOff+startBytes+countBytes > uint32(len(raw)) {
			return alreadyRead, nil
		}

		var start uint64
		if raw[extOff]&0x80 != 0 {
			start = ^uint64(0)
		}
		for i := uint32(0); i < startBytes; i++ {
			start = (start << 8) | uint64(raw[extOff])
			extOff++
		}

		var runBlocks uint64
		for i := uint32(0); i < countBytes; i++ {
			runBlocks = (runBlocks << 8) | uint64(raw[extOff])
			extOff++
		}

		curStart += start // wraps on overflow, matching u64 arithmetic on disk
		runBytes := runBlocks * blockSize

		if curPos+runBytes < pos {
			curPos += runBytes
			continue
		}

		addOff := uint64(0)
		if curPos < pos {
			addOff = pos - curPos
		}
		toRead := uint64(len(out) - alreadyRead)
		if toRead > runBytes-addOff {
			toRead = runBytes - addOff
		}

		sector := curStart*(blockSize/device.SectorSize) + addOff/device.SectorSize
		offsetInSector := uint32(addOff % device.SectorSize)
		if err := dev.ReadAt(sector, offsetInSector, out[alreadyRead:alreadyRead+int(toRead)], observer); err != nil {
			if errors.Is(err, device.ErrOutOfRange) {
				return alreadyRead, &Error{Kind: OutOfRange, Message: "device read out of range", Err: err}
			}
			return alreadyRead, ioError(err)
		}

		alreadyRead += int(toRead)
		curPos += runBytes
	}

	return alreadyRead, nil
}
