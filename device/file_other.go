//go:build !(aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris)
// +build !aix,!darwin,!dragonfly,!freebsd,!linux,!netbsd,!openbsd,!solaris

package device

import "os"

func blockDeviceSize(f *os.File) (int64, bool) {
	return 0, false
}

func birthTime(fi os.FileInfo) (string, bool) {
	return "", false
}
