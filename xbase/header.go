package xbase

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"
)

// rawTableHeader is the 32-byte on-disk preamble, per spec.md §6
// "On-disk table header".
type rawTableHeader struct {
	VersionByte  byte
	Year         byte
	Month        byte
	Day          byte
	RecordCount  uint32
	HeaderLength uint16
	RecordLength uint16
	Reserved1    [17]byte
	CodepageByte byte
	Reserved2    [2]byte
}

// TableHeader is the derived, mostly-immutable view of a table's header,
// per spec.md §3 "TableHeader".
type TableHeader struct {
	VersionByte  byte
	LastUpdate   DateValue
	RecordCount  uint32
	HeaderLength uint16
	RecordLength uint16
	CodepageTag  CodepageTag
	HasDBC       bool
	MemoFlavor   MemoFlavor
	FieldCount   int
}

func yearFromByte(b byte) int {
	if b < yearPivot {
		return baseCentury20 + int(b)
	}
	return baseCentury19 + int(b)
}

func byteFromYear(year int) byte {
	if year >= baseCentury20 {
		return byte(year - baseCentury20)
	}
	return byte(year - baseCentury19)
}

// parseHeader decodes the 32-byte preamble and derives the field count
// from the header length, per spec.md §4.1 "Header parse algorithm".
func parseHeader(data []byte) (*TableHeader, error) {
	if len(data) < headerPreambleSize {
		return nil, newError("xbase-header-parse-1", FileReadError, fmt.Errorf("short header: %d bytes", len(data)))
	}
	var raw rawTableHeader
	if err := binary.Read(bytes.NewReader(data[:headerPreambleSize]), binary.LittleEndian, &raw); err != nil {
		return nil, newError("xbase-header-parse-2", FileReadError, err)
	}

	hasDBC, memo, ok := dialectOf(raw.VersionByte)
	if !ok {
		return nil, newError("xbase-header-parse-3", UnsupportedFile, fmt.Errorf("unrecognized version byte 0x%02x", raw.VersionByte))
	}

	descRegion := int(raw.HeaderLength) - headerPreambleSize - 1
	if hasDBC {
		descRegion -= dbcRegionSize
	}
	if descRegion < 0 || descRegion%fieldDescriptorByteSize != 0 {
		return nil, newError("xbase-header-parse-4", FileReadError, fmt.Errorf("inconsistent header length %d", raw.HeaderLength))
	}

	h := &TableHeader{
		VersionByte: raw.VersionByte,
		LastUpdate: DateValue{
			Year:  yearFromByte(raw.Year),
			Month: int(raw.Month),
			Day:   int(raw.Day),
			Valid: true,
		},
		RecordCount:  raw.RecordCount,
		HeaderLength: raw.HeaderLength,
		RecordLength: raw.RecordLength,
		CodepageTag:  tagForByte(raw.CodepageByte),
		HasDBC:       hasDBC,
		MemoFlavor:   memo,
		FieldCount:   descRegion / fieldDescriptorByteSize,
	}
	return h, nil
}

// encodeHeader serializes h back to its 32-byte on-disk form.
func encodeHeader(h *TableHeader) ([]byte, error) {
	cpByte, err := codepageByte(h.CodepageTag)
	if err != nil {
		// Only UnsupportedCodepage has no canonical byte. SetCodepage
		// never sets it, but a table opened with an unrecognized
		// codepage byte carries it; the header is then written with
		// codepage byte 0x00.
		cpByte = 0
	}
	raw := rawTableHeader{
		VersionByte:  h.VersionByte,
		Year:         byteFromYear(h.LastUpdate.Year),
		Month:        byte(h.LastUpdate.Month),
		Day:          byte(h.LastUpdate.Day),
		RecordCount:  h.RecordCount,
		HeaderLength: h.HeaderLength,
		RecordLength: h.RecordLength,
		CodepageByte: cpByte,
	}
	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, raw); err != nil {
		return nil, newError("xbase-header-encode-1", FileWriteError, err)
	}
	return buf.Bytes(), nil
}

// stampToday sets LastUpdate to the current date, per every mutating
// table operation's "stamps last_update" contract.
func (h *TableHeader) stampToday() {
	now := time.Now()
	h.LastUpdate = DateValue{Year: now.Year(), Month: int(now.Month()), Day: now.Day(), Valid: true}
}
