package backend

import (
	"io"
	"io/fs"
	"os"
)

// SubStorage windows a Storage to the byte range [offset, offset+size).
// ReadAt and Seek translate positions into the underlying Storage's
// coordinates, so position 0 is offset in the underlying Storage. This lets
// a single backing image hold an EssenceFS2 volume that does not start at
// byte 0 (for example, one partition of a larger disk image).
//
// ReadAt does not stop at size: a read that runs past offset+size returns
// the underlying bytes beyond the window. Read continues from the
// underlying Storage's current position, and Stat reports the underlying
// Storage, not the window.
type SubStorage struct {
	underlying Storage
	offset     int64
	size       int64
}

// Sub returns a Storage windowed to [offset, offset+size) of u.
func Sub(u Storage, offset, size int64) Storage {
	return SubStorage{
		underlying: u,
		offset:     offset,
		size:       size,
	}
}

func (s SubStorage) Stat() (fs.FileInfo, error) {
	return s.underlying.Stat()
}

func (s SubStorage) Read(b []byte) (int, error) {
	return s.underlying.Read(b)
}

func (s SubStorage) Close() error {
	return s.underlying.Close()
}

func (s SubStorage) ReadAt(p []byte, off int64) (n int, err error) {
	return s.underlying.ReadAt(p, s.offset+off)
}

func (s SubStorage) Seek(offset int64, whence int) (int64, error) {
	var (
		pos int64
		err error
	)

	switch whence {
	case io.SeekStart:
		pos, err = s.underlying.Seek(offset+s.offset, io.SeekStart)
	case io.SeekCurrent:
		pos, err = s.underlying.Seek(offset, io.SeekCurrent)
	case io.SeekEnd:
		pos, err = s.underlying.Seek(s.offset+s.size+offset, io.SeekStart)
	default:
		return -1, ErrNotSuitable
	}

	if err != nil {
		return -1, err
	}

	return pos - s.offset, nil
}

func (s SubStorage) Sys() (*os.File, error) {
	return s.underlying.Sys()
}
