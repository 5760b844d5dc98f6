package msgbuilder

import (
	"bytes"
	"io"
)

// memSpool is the in-memory spoolFile Builder falls back to when no
// iox.Filer is configured: fine for the small test messages and CLI use
// this module targets, where spilling to disk buys nothing.
type memSpool struct {
	buf    bytes.Buffer
	off    int64
	closed bool
}

func (m *memSpool) Write(p []byte) (int, error) {
	if m.off < int64(m.buf.Len()) {
		// Writes after a Seek back to the start overwrite rather than
		// append, matching an io.ReadWriteSeeker's usual contract.
		data := m.buf.Bytes()
		n := copy(data[m.off:], p)
		m.off += int64(n)
		if n < len(p) {
			m.buf.Write(p[n:])
			m.off += int64(len(p) - n)
		}
		return len(p), nil
	}
	n, err := m.buf.Write(p)
	m.off += int64(n)
	return n, err
}

func (m *memSpool) Read(p []byte) (int, error) {
	data := m.buf.Bytes()
	if m.off >= int64(len(data)) {
		return 0, io.EOF
	}
	n := copy(p, data[m.off:])
	m.off += int64(n)
	return n, nil
}

func (m *memSpool) Seek(offset int64, whence int) (int64, error) {
	var base int64
	switch whence {
	case 0:
		base = 0
	case 1:
		base = m.off
	case 2:
		base = int64(m.buf.Len())
	}
	m.off = base + offset
	return m.off, nil
}

func (m *memSpool) Close() error {
	m.closed = true
	return nil
}
