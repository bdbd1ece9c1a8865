package xbase

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// decodeField turns the raw, fixed-width bytes of one field within a
// record body into a typed Value, per spec.md §4.2. Memo fields consult
// memo (which may be nil if no companion memo file is open - decoding a
// memo pointer never requires the store, only resolving its contents
// does).
func decodeField(d *FieldDescriptor, raw []byte, conv EncodingConverter, memo *MemoStore) (Value, error) {
	if len(raw) != int(d.Length) {
		return Invalid(), newError("xbase-codec-decodefield-1", FileReadError, fmt.Errorf("field %s: %d bytes != declared length %d", d.Name, len(raw), d.Length))
	}
	switch d.Type {
	case Character:
		return decodeCharacter(raw, conv)
	case Date:
		return decodeDate(raw)
	case DateTime:
		return decodeDateTime(raw)
	case FloatingPoint, Number:
		return decodeNumeric(raw, d.Precision)
	case Logical:
		return decodeLogical(raw)
	case Integer:
		return decodeInteger(raw)
	case Memo:
		return decodeMemo(raw, conv, memo)
	default:
		return decodeUndefined(raw)
	}
}

// encodeField is the inverse of decodeField: it validates v is
// convertible to d's declared type and renders the fixed-width byte
// slice to be written at the field's offset.
func encodeField(d *FieldDescriptor, v Value, conv EncodingConverter, memo *MemoStore) ([]byte, error) {
	switch d.Type {
	case Character:
		return encodeCharacter(v, int(d.Length), conv)
	case Date:
		return encodeDate(v, int(d.Length))
	case DateTime:
		return encodeDateTime(v, int(d.Length))
	case FloatingPoint, Number:
		return encodeNumeric(v, int(d.Length), d.Precision)
	case Logical:
		return encodeLogical(v, int(d.Length))
	case Integer:
		return encodeInteger(v, int(d.Length))
	case Memo:
		return encodeMemo(v, int(d.Length), conv, memo)
	default:
		return encodeUndefined(int(d.Length)), nil
	}
}

// --- Character ---

func decodeCharacter(raw []byte, conv EncodingConverter) (Value, error) {
	decoded, err := conv.Decode(raw)
	if err != nil {
		return Invalid(), newError("xbase-codec-character-decode-1", InvalidValue, err)
	}
	return NewText(string(decoded)), nil
}

func encodeCharacter(v Value, length int, conv EncodingConverter) ([]byte, error) {
	s, ok := v.AsString()
	if !ok {
		return nil, newError("xbase-codec-character-encode-1", InvalidTypeError, ErrUnsupportedValue)
	}
	encoded, err := conv.Encode([]byte(s))
	if err != nil {
		return nil, newError("xbase-codec-character-encode-2", InvalidValue, err)
	}
	if len(encoded) > length {
		encoded = encoded[:length]
	}
	return appendSpaces(encoded, length), nil
}

// --- Date ---

func decodeDate(raw []byte) (Value, error) {
	if isAllSpaces(raw) {
		return EmptyDate(), nil
	}
	s := string(sanitizeEmptyBytes(raw))
	if len(s) != 8 {
		return EmptyDate(), nil
	}
	y, errY := strconv.Atoi(s[0:4])
	m, errM := strconv.Atoi(s[4:6])
	d, errD := strconv.Atoi(s[6:8])
	if errY != nil || errM != nil || errD != nil {
		return EmptyDate(), nil
	}
	return NewDate(DateValue{Year: y, Month: m, Day: d, Valid: true}), nil
}

func encodeDate(v Value, length int) ([]byte, error) {
	date, ok := v.AsDate()
	if !ok {
		return nil, newError("xbase-codec-date-encode-1", InvalidTypeError, ErrUnsupportedValue)
	}
	if !date.Valid {
		return appendSpaces(nil, length), nil
	}
	s := fmt.Sprintf("%04d%02d%02d", date.Year, date.Month, date.Day)
	if len(s) != length {
		return nil, newError("xbase-codec-date-encode-2", InvalidValue, fmt.Errorf("encoded date %q does not fit %d bytes", s, length))
	}
	return []byte(s), nil
}

// --- DateTime ---

func decodeDateTime(raw []byte) (Value, error) {
	switch len(raw) {
	case dateTimeTextLength:
		return decodeDateTimeText(raw)
	case dateTimeWireLength:
		return decodeDateTimeBinary(raw)
	default:
		return Invalid(), newError("xbase-codec-datetime-decode-1", UnsupportedFile, fmt.Errorf("unsupported DateTime field length %d", len(raw)))
	}
}

func decodeDateTimeText(raw []byte) (Value, error) {
	if isAllSpaces(raw) {
		return NewDateTime(time.Time{}), nil
	}
	s := string(sanitizeEmptyBytes(raw))
	if len(s) != 14 {
		return NewDateTime(time.Time{}), nil
	}
	t, err := time.Parse("20060102150405", s)
	if err != nil {
		return NewDateTime(time.Time{}), nil
	}
	return NewDateTime(t), nil
}

func decodeDateTimeBinary(raw []byte) (Value, error) {
	julDay := int32(binary.LittleEndian.Uint32(raw[:4]))
	msSinceMidnight := int32(binary.LittleEndian.Uint32(raw[4:]))
	if julDay == 0 {
		return NewDateTime(time.Time{}), nil
	}
	y, m, d := dateFromJulianDayNumber(int(julDay))
	if y < 0 || y > 9999 {
		return Invalid(), newError("xbase-codec-datetime-decode-2", InvalidValue, fmt.Errorf("julian day %d out of range", julDay))
	}
	seconds := int(msSinceMidnight) / 1000
	remainderMillis := int(msSinceMidnight) - seconds*1000
	t := time.Date(y, time.Month(m), d, 0, 0, seconds, remainderMillis*int(time.Millisecond), time.UTC)
	return NewDateTime(t), nil
}

func encodeDateTime(v Value, length int) ([]byte, error) {
	t, ok := v.AsTime()
	if !ok {
		return nil, newError("xbase-codec-datetime-encode-1", InvalidTypeError, ErrUnsupportedValue)
	}
	switch length {
	case dateTimeTextLength:
		if t.IsZero() {
			return appendSpaces(nil, length), nil
		}
		return []byte(t.Format("20060102150405")), nil
	case dateTimeWireLength:
		raw := make([]byte, dateTimeWireLength)
		if t.IsZero() {
			return raw, nil
		}
		julDay := julianDayNumber(t.Year(), int(t.Month()), t.Day())
		if julDay < 0 || julDay > int(^uint32(0)>>1) {
			return nil, newError("xbase-codec-datetime-encode-2", InvalidValue, fmt.Errorf("julian day %d out of range", julDay))
		}
		msSinceMidnight := t.Hour()*3600000 + t.Minute()*60000 + t.Second()*1000 + t.Nanosecond()/int(time.Millisecond)
		binary.LittleEndian.PutUint32(raw[:4], uint32(julDay))
		binary.LittleEndian.PutUint32(raw[4:], uint32(msSinceMidnight))
		return raw, nil
	default:
		return nil, newError("xbase-codec-datetime-encode-3", UnsupportedFile, fmt.Errorf("unsupported DateTime field length %d", length))
	}
}

// --- FloatingPoint / Number ---

func decodeNumeric(raw []byte, precision byte) (Value, error) {
	trimmed := sanitizeEmptyBytes(raw)
	if len(trimmed) == 0 {
		if precision == 0 {
			return NewInt(0), nil
		}
		return NewFloat(0), nil
	}
	if precision == 0 {
		i, err := strconv.ParseInt(string(trimmed), 10, 32)
		if err != nil {
			return Invalid(), newError("xbase-codec-numeric-decode-1", InvalidValue, err)
		}
		return NewInt(int32(i)), nil
	}
	f, err := strconv.ParseFloat(string(trimmed), 64)
	if err != nil {
		return Invalid(), newError("xbase-codec-numeric-decode-2", InvalidValue, err)
	}
	return NewFloat(f), nil
}

func encodeNumeric(v Value, length int, precision byte) ([]byte, error) {
	var text string
	switch v.Kind {
	case KindInt:
		text = strconv.FormatInt(int64(v.Int), 10)
	case KindFloat:
		text = strconv.FormatFloat(v.Float, 'f', int(precision), 64)
	default:
		return nil, newError("xbase-codec-numeric-encode-1", InvalidTypeError, ErrUnsupportedValue)
	}
	if len(text) > length {
		return nil, newError("xbase-codec-numeric-encode-2", InvalidValue, fmt.Errorf("encoded value %q does not fit %d bytes", text, length))
	}
	return prependSpaces([]byte(text), length), nil
}

// --- Logical ---

func decodeLogical(raw []byte) (Value, error) {
	if len(raw) != 1 {
		return Invalid(), newError("xbase-codec-logical-decode-1", FileReadError, fmt.Errorf("logical field must be 1 byte, got %d", len(raw)))
	}
	switch strings.ToUpper(string(raw))[0] {
	case 'T', 'Y':
		return NewBool(true), nil
	case 'F', 'N':
		return NewBool(false), nil
	case '?':
		return Null(), nil
	default:
		return Invalid(), nil
	}
}

func encodeLogical(v Value, length int) ([]byte, error) {
	switch v.Kind {
	case KindNull:
		return []byte("?"), nil
	case KindBool:
		if v.Bool {
			return []byte("T"), nil
		}
		return []byte("F"), nil
	default:
		return nil, newError("xbase-codec-logical-encode-1", InvalidTypeError, ErrUnsupportedValue)
	}
}

// --- Integer ---

func decodeInteger(raw []byte) (Value, error) {
	if len(raw) != 4 {
		return Invalid(), newError("xbase-codec-integer-decode-1", FileReadError, fmt.Errorf("integer field must be 4 bytes, got %d", len(raw)))
	}
	return NewInt(int32(binary.LittleEndian.Uint32(raw))), nil
}

func encodeInteger(v Value, length int) ([]byte, error) {
	i, ok := v.AsInt()
	if !ok {
		return nil, newError("xbase-codec-integer-encode-1", InvalidTypeError, ErrUnsupportedValue)
	}
	raw := make([]byte, length)
	binary.LittleEndian.PutUint32(raw, uint32(i))
	return raw, nil
}

// --- Memo ---

// decodeMemoPointer parses the in-record slot into a block index. It
// never touches the memo file itself.
func decodeMemoPointer(raw []byte) (index int64, hasMemo bool, err error) {
	switch len(raw) {
	case memoPointerASCIILen:
		trimmed := sanitizeEmptyBytes(raw)
		if len(trimmed) == 0 {
			return 0, false, nil
		}
		i, perr := strconv.ParseInt(string(trimmed), 10, 64)
		if perr != nil {
			return 0, false, newError("xbase-codec-memo-pointer-1", InvalidValue, perr)
		}
		return i, true, nil
	case memoPointerBinLen:
		block := binary.LittleEndian.Uint32(raw)
		if block == 0 {
			return 0, false, nil
		}
		return int64(block), true, nil
	default:
		return 0, false, newError("xbase-codec-memo-pointer-2", UnsupportedFile, fmt.Errorf("unsupported memo field length %d", len(raw)))
	}
}

func encodeMemoPointer(index int64, length int) ([]byte, error) {
	switch length {
	case memoPointerASCIILen:
		if index == 0 {
			return appendSpaces(nil, length), nil
		}
		s := strconv.FormatInt(index, 10)
		if len(s) > length {
			return nil, newError("xbase-codec-memo-pointer-3", InvalidValue, fmt.Errorf("memo index %d does not fit %d bytes", index, length))
		}
		return appendSpaces([]byte(s), length), nil
	case memoPointerBinLen:
		raw := make([]byte, length)
		binary.LittleEndian.PutUint32(raw, uint32(index))
		return raw, nil
	default:
		return nil, newError("xbase-codec-memo-pointer-4", UnsupportedFile, fmt.Errorf("unsupported memo field length %d", length))
	}
}

func decodeMemo(raw []byte, conv EncodingConverter, memo *MemoStore) (Value, error) {
	index, hasMemo, err := decodeMemoPointer(raw)
	if err != nil {
		return Invalid(), err
	}
	if !hasMemo {
		return NewMemoText(""), nil
	}
	if memo == nil {
		return Invalid(), newError("xbase-codec-memo-decode-1", UnsupportedFile, ErrNoMemoFile)
	}
	blob, isText, err := memo.ReadBlob(uint32(index))
	if err != nil {
		return Invalid(), err
	}
	if isText {
		decoded, derr := conv.Decode(blob)
		if derr != nil {
			return Invalid(), newError("xbase-codec-memo-decode-2", InvalidValue, derr)
		}
		return NewMemoText(string(decoded)), nil
	}
	return NewMemoBytes(blob), nil
}

func encodeMemo(v Value, length int, conv EncodingConverter, memo *MemoStore) ([]byte, error) {
	var payload []byte
	var isText bool
	switch v.Kind {
	case KindMemoText, KindText:
		encoded, err := conv.Encode([]byte(v.Text))
		if err != nil {
			return nil, newError("xbase-codec-memo-encode-1", InvalidValue, err)
		}
		payload, isText = encoded, true
	case KindMemoBytes:
		payload, isText = v.MemoBytes, false
	default:
		return nil, newError("xbase-codec-memo-encode-2", InvalidTypeError, ErrUnsupportedValue)
	}
	if len(payload) == 0 {
		return encodeMemoPointer(0, length)
	}
	if memo == nil {
		return nil, newError("xbase-codec-memo-encode-3", UnsupportedFile, ErrNoMemoFile)
	}
	index, err := memo.WriteBlob(payload, isText)
	if err != nil {
		return nil, err
	}
	return encodeMemoPointer(int64(index), length)
}

// --- Undefined ---

func decodeUndefined(raw []byte) (Value, error) {
	return Invalid(), nil
}

func encodeUndefined(length int) []byte {
	return appendSpaces(nil, length)
}
