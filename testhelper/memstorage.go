// Package testhelper provides stand-ins for backend.Storage used to build
// synthetic EssenceFS2 images in tests without touching the filesystem.
package testhelper

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/essencefs/esfs2/backend"
)

// MemStorage is a backend.Storage backed by an in-memory byte slice. Tests
// build a whole volume image by writing fields into Bytes at their on-disk
// offsets, then wrap it in a MemStorage to mount it.
type MemStorage struct {
	Bytes  []byte
	offset int64
}

var _ backend.Storage = (*MemStorage)(nil)

// NewMemStorage returns a MemStorage of the given size, zero-filled.
func NewMemStorage(size int) *MemStorage {
	return &MemStorage{Bytes: make([]byte, size)}
}

func (m *MemStorage) Stat() (fs.FileInfo, error) {
	return memFileInfo{size: int64(len(m.Bytes))}, nil
}

func (m *MemStorage) Read(b []byte) (int, error) {
	n, err := m.ReadAt(b, m.offset)
	m.offset += int64(n)
	return n, err
}

func (m *MemStorage) ReadAt(b []byte, off int64) (int, error) {
	if off < 0 || off > int64(len(m.Bytes)) {
		return 0, errors.New("testhelper: read offset out of range")
	}
	n := copy(b, m.Bytes[off:])
	if n < len(b) {
		return n, io.EOF
	}
	return n, nil
}

func (m *MemStorage) Seek(offset int64, whence int) (int64, error) {
	var pos int64
	switch whence {
	case io.SeekStart:
		pos = offset
	case io.SeekCurrent:
		pos = m.offset + offset
	case io.SeekEnd:
		pos = int64(len(m.Bytes)) + offset
	default:
		return -1, backend.ErrNotSuitable
	}
	if pos < 0 {
		return -1, errors.New("testhelper: negative seek position")
	}
	m.offset = pos
	return pos, nil
}

func (m *MemStorage) Close() error {
	return nil
}

func (m *MemStorage) Sys() (*os.File, error) {
	return nil, backend.ErrNotSuitable
}

type memFileInfo struct {
	size int64
}

func (m memFileInfo) Name() string       { return "memstorage" }
func (m memFileInfo) Size() int64        { return m.size }
func (m memFileInfo) Mode() fs.FileMode  { return 0o400 }
func (m memFileInfo) ModTime() time.Time { return time.Time{} }
func (m memFileInfo) IsDir() bool        { return false }
func (m memFileInfo) Sys() any           { return nil }
