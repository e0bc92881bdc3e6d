package esfs2

import (
	"testing"

	"github.com/essencefs/esfs2/device"
)

// buildDirListing writes a directory at dirBlock whose byte stream is the
// concatenation of the 1024-byte blocks the children were themselves
// written to. Since testBlockSize == direntrySize, each child occupies
// exactly one block, so the directory's DATA attribute is an L1 extent
// list addressing those blocks directly rather than a copy of their
// bytes.
func buildDirListing(img *testImage, dirBlock uint64, name string, childBlocks []uint64) {
	var runs [][2]uint64
	for _, b := range childBlocks {
		runs = append(runs, [2]uint64{b, 1})
	}
	img.addDirentry(dirBlock, direntryOpts{
		name:     name,
		nodeType: nodeTypeDirectory,
		fileSize: uint64(len(childBlocks)) * direntrySize,
		extents:  buildExtentRuns(runs),
	})
}

func TestIterateListsChildren(t *testing.T) {
	img := newTestImage(16, 1)
	fileBlock := img.allocBlocks(1)
	subdirBlock := img.allocBlocks(1)

	img.addDirentry(fileBlock, direntryOpts{name: "a.txt", nodeType: nodeTypeFile, fileSize: 1, inlineData: []byte("x")})
	img.addDirentry(subdirBlock, direntryOpts{name: "sub", nodeType: nodeTypeDirectory})
	buildDirListing(img, 1, "", []uint64{fileBlock, subdirBlock})

	dev, sb := mountTestImage(t, img)
	buf := img.buf[img.blockOffset(1) : img.blockOffset(1)+direntrySize]
	root := parseDirectoryEntry(buf)

	seen := map[string]NodeKind{}
	err := iterate(dev, sb.BlockSize, packageLogger, root, func(name string, kind NodeKind, child *DirectoryEntry) bool {
		seen[name] = kind
		return false
	})
	if err != nil {
		t.Fatalf("iterate: %v", err)
	}
	if seen["a.txt"] != KindFile {
		t.Errorf("a.txt should be a file, got %v", seen["a.txt"])
	}
	if seen["sub"] != KindDirectory {
		t.Errorf("sub should be a directory, got %v", seen["sub"])
	}
}

func TestIterateStopsEarly(t *testing.T) {
	img := newTestImage(16, 1)
	b1 := img.allocBlocks(1)
	b2 := img.allocBlocks(1)
	img.addDirentry(b1, direntryOpts{name: "first", nodeType: nodeTypeFile, fileSize: 1, inlineData: []byte("1")})
	img.addDirentry(b2, direntryOpts{name: "second", nodeType: nodeTypeFile, fileSize: 1, inlineData: []byte("2")})
	buildDirListing(img, 1, "", []uint64{b1, b2})

	dev, sb := mountTestImage(t, img)
	buf := img.buf[img.blockOffset(1) : img.blockOffset(1)+direntrySize]
	root := parseDirectoryEntry(buf)

	var visited []string
	_ = iterate(dev, sb.BlockSize, packageLogger, root, func(name string, kind NodeKind, child *DirectoryEntry) bool {
		visited = append(visited, name)
		return true
	})
	if len(visited) != 1 {
		t.Fatalf("expected iteration to stop after the first hit, visited %v", visited)
	}
}

func TestIterateSkipsMalformedSlot(t *testing.T) {
	img := newTestImage(16, 1)
	goodBlock := img.allocBlocks(1)
	junkBlock := img.allocBlocks(1)
	img.addDirentry(goodBlock, direntryOpts{name: "ok", nodeType: nodeTypeFile, fileSize: 1, inlineData: []byte("1")})
	// junkBlock is left zeroed: no "DirEntry" signature.

	buildDirListing(img, 1, "", []uint64{goodBlock, junkBlock})

	dev, sb := mountTestImage(t, img)
	buf := img.buf[img.blockOffset(1) : img.blockOffset(1)+direntrySize]
	root := parseDirectoryEntry(buf)

	var names []string
	err := iterate(dev, sb.BlockSize, packageLogger, root, func(name string, kind NodeKind, child *DirectoryEntry) bool {
		names = append(names, name)
		return false
	})
	if err != nil {
		t.Fatalf("iterate: %v", err)
	}
	if len(names) != 1 || names[0] != "ok" {
		t.Fatalf("expected only the well-formed slot to surface, got %v", names)
	}
}

func TestIterateRejectsNonDirectory(t *testing.T) {
	img := newTestImage(16, 1)
	img.addDirentry(1, direntryOpts{name: "", nodeType: nodeTypeFile, fileSize: 0})

	buf := img.buf[img.blockOffset(1) : img.blockOffset(1)+direntrySize]
	entry := parseDirectoryEntry(buf)

	var dev device.Device
	err := iterate(dev, testBlockSize, packageLogger, entry, func(string, NodeKind, *DirectoryEntry) bool { return false })
	if !IsKind(err, BadFileType) {
		t.Fatalf("got %v, want BadFileType", err)
	}
}
