package xbase

import (
	"io"
	"os"
)

// ByteSource is the storage abstraction a Table (and a MemoStore) reads
// and writes through. The default implementation backs onto *os.File;
// callers needing a different backing store (an in-memory buffer, a
// network-mounted blob) can supply their own, per spec.md §3 "pluggable
// IO".
type ByteSource interface {
	io.ReaderAt
	io.WriterAt
	Len() (int64, error)
	Truncate(size int64) error
	Sync() error
	Close() error
	Lock(exclusive bool) error
	Unlock() error
}

// fileSource is the *os.File-backed ByteSource used by Open/Create
// unless a Config.Source (or, for the memo file, Config.MemoSource)
// override is supplied.
type fileSource struct {
	handle *os.File
}

// openFileSource opens name for read/write, creating it first if
// create is true.
func openFileSource(name string, create bool) (*fileSource, error) {
	flag := os.O_RDWR
	if create {
		flag |= os.O_CREATE | os.O_EXCL
	}
	handle, err := os.OpenFile(name, flag, 0644)
	if err != nil {
		return nil, newError("xbase-source-open-1", FileOpenError, err)
	}
	return &fileSource{handle: handle}, nil
}

func (f *fileSource) ReadAt(p []byte, off int64) (int, error) {
	return f.handle.ReadAt(p, off)
}

func (f *fileSource) WriteAt(p []byte, off int64) (int, error) {
	return f.handle.WriteAt(p, off)
}

func (f *fileSource) Len() (int64, error) {
	info, err := f.handle.Stat()
	if err != nil {
		return 0, newError("xbase-source-len-1", FileReadError, err)
	}
	return info.Size(), nil
}

func (f *fileSource) Truncate(size int64) error {
	if err := f.handle.Truncate(size); err != nil {
		return newError("xbase-source-truncate-1", FileWriteError, err)
	}
	return nil
}

func (f *fileSource) Sync() error {
	if err := f.handle.Sync(); err != nil {
		return newError("xbase-source-sync-1", FileWriteError, err)
	}
	return nil
}

func (f *fileSource) Close() error {
	if err := f.handle.Close(); err != nil {
		return newError("xbase-source-close-1", FileWriteError, err)
	}
	return nil
}

func (f *fileSource) Lock(exclusive bool) error {
	return lockFile(f.handle, exclusive)
}

func (f *fileSource) Unlock() error {
	return unlockFile(f.handle)
}
