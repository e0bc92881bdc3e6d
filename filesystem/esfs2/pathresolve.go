package esfs2

import (
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/essencefs/esfs2/device"
)

// resolvePath walks path (absolute, '/'-separated) starting from root,
// repeatedly calling iterate to descend one component at a time.
//
// spec.md lists the path-resolution helper among the driver's "external
// collaborators" — in the original GRUB source it is grub_fshelp_find_file,
// a shared helper used by every GRUB filesystem driver, not something
// esfs.c implements itself. No such shared library exists in this module's
// dependency corpus, so this function is esfs2's own copy of that
// collaborator, grounded in grub_fshelp_find_file's behavior: split on
// '/', skip empty components (so leading/trailing/doubled slashes are
// harmless), require the final component to match wantKind.
func resolvePath(dev device.Device, blockSize uint64, log *logrus.Logger, root *DirectoryEntry, path string, wantKind NodeKind) (*DirectoryEntry, error) {
	current := root
	components := strings.Split(path, "/")

	var nonEmpty []string
	for _, c := range components {
		if c != "" {
			nonEmpty = append(nonEmpty, c)
		}
	}

	if len(nonEmpty) == 0 {
		if wantKind != KindUnknown && nodeKindOf(current.NodeType) != wantKind {
			return nil, badFileType("root is not the requested node type")
		}
		return current, nil
	}

	for i, name := range nonEmpty {
		if !current.IsDirectory() {
			return nil, fileNotFound(path)
		}

		var found *DirectoryEntry
		err := iterate(dev, blockSize, log, current, func(candidateName string, kind NodeKind, child *DirectoryEntry) bool {
			if candidateName == name {
				found = child
				return true
			}
			return false
		})
		if err != nil {
			return nil, err
		}
		if found == nil {
			return nil, fileNotFound(path)
		}

		isLast := i == len(nonEmpty)-1
		if isLast && wantKind != KindUnknown && nodeKindOf(found.NodeType) != wantKind {
			return nil, badFileType(path)
		}
		current = found
	}

	return current, nil
}
