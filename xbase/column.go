package xbase

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// rawFieldDescriptor is the 32-byte on-disk layout of one field
// descriptor, per spec.md §6 "Field descriptor".
type rawFieldDescriptor struct {
	Name      [columnNameByteLength]byte
	Type      byte
	Reserved1 [4]byte
	Length    byte
	Precision byte
	Reserved2 [14]byte
}

// FieldDescriptor describes one column of a table: its value type,
// declared length and decimal precision, its byte offset within a
// record body, whether it is read-only, and its default value.
// Descriptors are immutable once a table is open (spec.md §3).
//
// ReadOnly is never derived from the file itself; a caller sets it on
// a descriptor to protect a column from local, unpersisted Record
// mutation: Record.SetValue/SetValueByName fail with InvalidValue and
// Record.ClearValues leaves the field untouched. It does not block
// Table.SetValue/SetRecord, which write straight to the file
// regardless.
type FieldDescriptor struct {
	Name      string
	Type      DataType
	Length    byte
	Precision byte
	Offset    uint16
	ReadOnly  bool
	Default   Value
}

func fieldName(raw [columnNameByteLength]byte, conv EncodingConverter) string {
	n := bytes.IndexByte(raw[:], 0)
	if n < 0 {
		n = len(raw)
	}
	decoded, err := conv.Decode(raw[:n])
	if err != nil {
		return string(raw[:n])
	}
	return string(decoded)
}

// parseFieldDescriptors reads fieldCount consecutive 32-byte descriptors
// from data (the header region starting right after the 32-byte
// preamble) and assigns sequential byte offsets, starting at 1, per the
// invariant in spec.md §3.
func parseFieldDescriptors(data []byte, fieldCount int, conv EncodingConverter) ([]*FieldDescriptor, error) {
	descriptors := make([]*FieldDescriptor, 0, fieldCount)
	offset := uint16(1)
	for i := 0; i < fieldCount; i++ {
		start := i * fieldDescriptorByteSize
		end := start + fieldDescriptorByteSize
		if end > len(data) {
			return nil, newError("xbase-column-parse-1", FileReadError, fmt.Errorf("truncated field descriptor %d", i))
		}
		var raw rawFieldDescriptor
		if err := binary.Read(bytes.NewReader(data[start:end]), binary.LittleEndian, &raw); err != nil {
			return nil, newError("xbase-column-parse-2", FileReadError, err)
		}
		dt := DataType(raw.Type)
		desc := &FieldDescriptor{
			Name:      fieldName(raw.Name, conv),
			Type:      dt,
			Length:    raw.Length,
			Precision: raw.Precision,
			Offset:    offset,
			Default:   defaultValueFor(dt, raw.Precision),
		}
		descriptors = append(descriptors, desc)
		offset += uint16(raw.Length)
	}
	return descriptors, nil
}

// encodeFieldDescriptor serializes a descriptor back to its 32-byte
// on-disk form, used when a new table/column is created.
func encodeFieldDescriptor(d *FieldDescriptor, conv EncodingConverter) ([]byte, error) {
	var raw rawFieldDescriptor
	nameBytes, err := conv.Encode([]byte(d.Name))
	if err != nil {
		return nil, newError("xbase-column-encode-1", InvalidValue, err)
	}
	if len(nameBytes) > columnNameByteLength-1 {
		nameBytes = nameBytes[:columnNameByteLength-1]
	}
	copy(raw.Name[:], nameBytes)
	raw.Type = byte(d.Type)
	raw.Length = d.Length
	raw.Precision = d.Precision

	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, raw); err != nil {
		return nil, newError("xbase-column-encode-2", InvalidValue, err)
	}
	return buf.Bytes(), nil
}

// AssignOffsets fills in sequential byte offsets (starting at 1) and
// declared-type defaults for a freshly built descriptor slice, the
// step parseFieldDescriptors performs automatically when reading an
// existing table. Callers constructing descriptors by hand for Create
// must call this before passing them in.
func AssignOffsets(descriptors []*FieldDescriptor) {
	offset := uint16(1)
	for _, d := range descriptors {
		d.Offset = offset
		d.Default = defaultValueFor(d.Type, d.Precision)
		offset += uint16(d.Length)
	}
}

// recordLength returns the total on-disk record body length (including
// the leading delete-flag byte) implied by descriptors, matching the
// invariant sum(length(field[i])) + 1 = record_length.
func recordLength(descriptors []*FieldDescriptor) uint16 {
	total := uint16(1)
	for _, d := range descriptors {
		total += uint16(d.Length)
	}
	return total
}

// defaultValueFor establishes the template default for a freshly
// described field, per spec.md §3 "default_value (typed; established
// from type)".
func defaultValueFor(t DataType, precision byte) Value {
	switch t {
	case Character:
		return NewText("")
	case Date:
		return EmptyDate()
	case DateTime:
		return Value{Kind: KindDateTime}
	case FloatingPoint:
		return NewFloat(0)
	case Number:
		if precision == 0 {
			return NewInt(0)
		}
		return NewFloat(0)
	case Logical:
		return Null()
	case Memo:
		return NewMemoText("")
	case Integer:
		return NewInt(0)
	default:
		return Invalid()
	}
}
