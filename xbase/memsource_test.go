package xbase

import "io"

// memSource is a growable in-memory ByteSource, standing in for an
// *os.File across the end-to-end table tests so they can exercise the
// full Open/Create/Seek/Record/SetValue/AppendRecord/RemoveRecord path
// without touching the real filesystem. It mimics os.File's ReadAt/
// WriteAt contract: ReadAt returns io.EOF when fewer bytes than
// requested are available; WriteAt zero-extends the buffer as needed.
type memSource struct {
	buf []byte
}

func newMemSource() *memSource { return &memSource{} }

func (m *memSource) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= int64(len(m.buf)) {
		return 0, io.EOF
	}
	n := copy(p, m.buf[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *memSource) WriteAt(p []byte, off int64) (int, error) {
	end := off + int64(len(p))
	if end > int64(len(m.buf)) {
		grown := make([]byte, end)
		copy(grown, m.buf)
		m.buf = grown
	}
	copy(m.buf[off:end], p)
	return len(p), nil
}

func (m *memSource) Len() (int64, error) { return int64(len(m.buf)), nil }

func (m *memSource) Truncate(size int64) error {
	if size <= int64(len(m.buf)) {
		m.buf = m.buf[:size]
		return nil
	}
	grown := make([]byte, size)
	copy(grown, m.buf)
	m.buf = grown
	return nil
}

func (m *memSource) Sync() error { return nil }
func (m *memSource) Close() error { return nil }
func (m *memSource) Lock(exclusive bool) error { return nil }
func (m *memSource) Unlock() error { return nil }
