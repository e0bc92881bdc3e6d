//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris
// +build aix darwin dragonfly freebsd linux netbsd openbsd solaris

package device

import (
	"os"

	"golang.org/x/sys/unix"
	times "gopkg.in/djherbis/times.v1"
)

// blockDeviceSize asks the kernel for the size of a raw block device via
// BLKGETSIZE64. Grounded in disk/disk_unix.go's BLKRRPART ioctl pattern from
// the teacher: same Sys()-then-Fd()-then-IoctlGetInt shape, different
// request constant.
func blockDeviceSize(f *os.File) (int64, bool) {
	fd := f.Fd()
	size, err := unix.IoctlGetInt(int(fd), unix.BLKGETSIZE64)
	if err != nil {
		return 0, false
	}
	return int64(size), true
}

// birthTime returns the backing file's creation time, when the platform and
// filesystem support it, for a one-line diagnostic on mount. Image files
// produced by a volume builder carry a birth time worth surfacing; plain
// pipes or unsupported filesystems just omit the field.
func birthTime(fi os.FileInfo) (string, bool) {
	ts := times.Get(fi)
	if !ts.HasBirthTime() {
		return "", false
	}
	return ts.BirthTime().String(), true
}
