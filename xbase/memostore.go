package xbase

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// MemoStore is the companion `.dbt`/`.fpt` file backing a table's Memo
// fields. Three dialects share the shape described in spec.md §4.3;
// they differ in block length, header byte order, and per-blob framing.
type MemoStore struct {
	source      ByteSource
	flavor      MemoFlavor
	blockLength uint16
	nextFree    uint32
}

const memoHeaderSize = 512

// openMemoStore reads the 512-byte memo-file header and derives the
// block length for flavor.
func openMemoStore(source ByteSource, flavor MemoFlavor) (*MemoStore, error) {
	header := make([]byte, memoHeaderSize)
	n, err := source.ReadAt(header, 0)
	if err != nil && n < 8 {
		return nil, newError("xbase-memostore-open-1", FileReadError, err)
	}
	byteOrder := memoByteOrder(flavor)
	nextFree := byteOrder.Uint32(header[:4])

	var blockLength uint16
	switch flavor {
	case MemoFoxPro:
		blockLength = binary.BigEndian.Uint16(header[6:8])
		if blockLength == 0 {
			blockLength = 1
		}
	default:
		blockLength = 512
	}

	return &MemoStore{
		source:      source,
		flavor:      flavor,
		blockLength: blockLength,
		nextFree:    nextFree,
	}, nil
}

// createMemoStore initializes a brand-new memo file: a 512-byte header
// whose next_free_block starts at 1 (block 0 is the header itself).
func createMemoStore(source ByteSource, flavor MemoFlavor, blockLength uint16) (*MemoStore, error) {
	if blockLength == 0 {
		blockLength = 512
	}
	store := &MemoStore{source: source, flavor: flavor, blockLength: blockLength, nextFree: 1}
	if err := store.writeHeader(); err != nil {
		return nil, err
	}
	return store, nil
}

func memoByteOrder(flavor MemoFlavor) binary.ByteOrder {
	if flavor == MemoDBaseIV {
		return binary.LittleEndian
	}
	return binary.BigEndian
}

func (m *MemoStore) writeHeader() error {
	header := make([]byte, memoHeaderSize)
	byteOrder := memoByteOrder(m.flavor)
	byteOrder.PutUint32(header[:4], m.nextFree)
	if m.flavor == MemoFoxPro {
		binary.BigEndian.PutUint16(header[6:8], m.blockLength)
	}
	if _, err := m.source.WriteAt(header, 0); err != nil {
		return newError("xbase-memostore-writeheader-1", FileWriteError, err)
	}
	return nil
}

// ReadBlob resolves block index to its decoded payload, per spec.md
// §4.3 "Read blob by index". isText reports whether the blob should be
// treated as codepage-decoded text rather than opaque bytes.
func (m *MemoStore) ReadBlob(index uint32) (payload []byte, isText bool, err error) {
	if index == 0 {
		return nil, false, newError("xbase-memostore-readblob-1", InvalidValue, fmt.Errorf("block index 0 is reserved for the header"))
	}
	position := int64(m.blockLength) * int64(index)
	switch m.flavor {
	case MemoDBaseIII:
		return m.readSentinelBlob(position)
	default:
		return m.readFramedBlob(position)
	}
}

func (m *MemoStore) readSentinelBlob(position int64) ([]byte, bool, error) {
	var out []byte
	buf := make([]byte, m.blockLength)
	for {
		n, err := m.source.ReadAt(buf, position)
		if n == 0 && err != nil {
			return nil, false, newError("xbase-memostore-readblob-2", FileReadError, err)
		}
		chunk := buf[:n]
		if i := bytes.Index(chunk, []byte{0x1A, 0x1A}); i >= 0 {
			out = append(out, chunk[:i]...)
			return out, true, nil
		}
		out = append(out, chunk...)
		position += int64(n)
		if err != nil {
			// Ran out of file before hitting the sentinel.
			return out, true, nil
		}
	}
}

func (m *MemoStore) readFramedBlob(position int64) ([]byte, bool, error) {
	byteOrder := memoByteOrder(m.flavor)
	head := make([]byte, 8)
	if _, err := m.source.ReadAt(head, position); err != nil {
		return nil, false, newError("xbase-memostore-readblob-3", FileReadError, err)
	}
	signature := byteOrder.Uint32(head[:4])
	length := byteOrder.Uint32(head[4:8])
	if length == 0 {
		return []byte{}, signature == 1, nil
	}
	payload := make([]byte, length)
	n, err := m.source.ReadAt(payload, position+8)
	if err != nil && n != int(length) {
		return payload[:n], signature == 1, newError("xbase-memostore-readblob-4", FileReadError, ErrIncomplete)
	}
	return payload, signature == 1, nil
}

// WriteBlob appends payload as a new blob and returns the block index
// at which it was written, per spec.md §4.3 "Write blob".
func (m *MemoStore) WriteBlob(payload []byte, isText bool) (uint32, error) {
	index := m.nextFree
	position := int64(m.blockLength) * int64(index)

	var frame []byte
	var payloadLength int
	switch m.flavor {
	case MemoDBaseIII:
		frame = append(append([]byte{}, payload...), 0x1A, 0x1A)
		payloadLength = len(frame)
	default:
		frame = make([]byte, 8+len(payload))
		signature := uint32(0)
		if isText {
			signature = 1
		}
		byteOrder := memoByteOrder(m.flavor)
		byteOrder.PutUint32(frame[:4], signature)
		byteOrder.PutUint32(frame[4:8], uint32(len(payload)))
		copy(frame[8:], payload)
		payloadLength = len(frame)
	}

	if _, err := m.source.WriteAt(frame, position); err != nil {
		return 0, newError("xbase-memostore-writeblob-1", FileWriteError, err)
	}

	blocksNeeded := payloadLength / int(m.blockLength)
	if payloadLength%int(m.blockLength) > 0 {
		blocksNeeded++
	}
	m.nextFree += uint32(blocksNeeded)
	// Only the next_free_block pointer is rewritten: with blocks shorter
	// than the 512-byte header, the blob just written can lie inside it.
	pointer := make([]byte, 4)
	memoByteOrder(m.flavor).PutUint32(pointer, m.nextFree)
	if _, err := m.source.WriteAt(pointer, 0); err != nil {
		return 0, newError("xbase-memostore-writeblob-2", FileWriteError, err)
	}
	return index, nil
}

// Close flushes and releases the underlying byte source.
func (m *MemoStore) Close() error {
	return m.source.Close()
}
