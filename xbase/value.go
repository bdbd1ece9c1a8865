package xbase

import "time"

// ValueKind discriminates the tagged union Value holds.
type ValueKind int

const (
	KindInvalid ValueKind = iota
	KindNull
	KindText
	KindDate
	KindDateTime
	KindFloat
	KindInt
	KindBool
	KindMemoText
	KindMemoBytes
)

// DateValue is a bare calendar date with no time component, used by the
// Date field type. A zero-value DateValue with Valid false represents
// the empty date (spec.md §8: "        " decodes to an empty date).
type DateValue struct {
	Year, Month, Day int
	Valid            bool
}

func (d DateValue) Time() time.Time {
	if !d.Valid {
		return time.Time{}
	}
	return time.Date(d.Year, time.Month(d.Month), d.Day, 0, 0, 0, 0, time.UTC)
}

// Value is the tagged union every field decodes to and every field
// accepts for encoding. Exactly one of the typed fields below is
// meaningful, selected by Kind.
type Value struct {
	Kind ValueKind

	Text      string
	Date      DateValue
	DateTime  time.Time
	Float     float64
	Int       int32
	Bool      bool
	MemoBytes []byte
}

func Invalid() Value { return Value{Kind: KindInvalid} }
func Null() Value     { return Value{Kind: KindNull} }

func NewText(s string) Value { return Value{Kind: KindText, Text: s} }

func NewDate(d DateValue) Value { return Value{Kind: KindDate, Date: d} }

func EmptyDate() Value { return Value{Kind: KindDate, Date: DateValue{}} }

func NewDateTime(t time.Time) Value { return Value{Kind: KindDateTime, DateTime: t} }

func NewFloat(f float64) Value { return Value{Kind: KindFloat, Float: f} }

func NewInt(i int32) Value { return Value{Kind: KindInt, Int: i} }

func NewBool(b bool) Value { return Value{Kind: KindBool, Bool: b} }

func NewMemoText(s string) Value { return Value{Kind: KindMemoText, Text: s} }

func NewMemoBytes(b []byte) Value { return Value{Kind: KindMemoBytes, MemoBytes: b} }

// IsInvalid reports whether the value carries no usable data at all -
// distinct from Null, which is a deliberate "no value" (e.g. Logical
// "?").
func (v Value) IsInvalid() bool { return v.Kind == KindInvalid }

// IsNull reports whether the value is the deliberate null marker.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// AsString returns the textual representation of v, for Text and
// MemoText kinds.
func (v Value) AsString() (string, bool) {
	switch v.Kind {
	case KindText, KindMemoText:
		return v.Text, true
	default:
		return "", false
	}
}

// AsBytes returns the raw bytes for a MemoBytes value.
func (v Value) AsBytes() ([]byte, bool) {
	if v.Kind == KindMemoBytes {
		return v.MemoBytes, true
	}
	return nil, false
}

// AsFloat returns the float64 representation, for Float kind.
func (v Value) AsFloat() (float64, bool) {
	if v.Kind == KindFloat {
		return v.Float, true
	}
	return 0, false
}

// AsInt returns the int32 representation, for Int kind.
func (v Value) AsInt() (int32, bool) {
	if v.Kind == KindInt {
		return v.Int, true
	}
	return 0, false
}

// AsBool returns the boolean representation, for Bool kind.
func (v Value) AsBool() (bool, bool) {
	if v.Kind == KindBool {
		return v.Bool, true
	}
	return false, false
}

// AsDate returns the DateValue, for Date kind.
func (v Value) AsDate() (DateValue, bool) {
	if v.Kind == KindDate {
		return v.Date, true
	}
	return DateValue{}, false
}

// AsTime returns the time.Time representation, for DateTime kind.
func (v Value) AsTime() (time.Time, bool) {
	if v.Kind == KindDateTime {
		return v.DateTime, true
	}
	return time.Time{}, false
}

// Native returns v as a plain Go value suitable for json.Marshal or
// reflect-based struct population - the counterpart to valueFromNative,
// used by Record.ToNativeMap/ToJSON/ToStruct.
func (v Value) Native() interface{} {
	switch v.Kind {
	case KindText, KindMemoText:
		return v.Text
	case KindDate:
		if !v.Date.Valid {
			return nil
		}
		return v.Date.Time()
	case KindDateTime:
		return v.DateTime
	case KindFloat:
		return v.Float
	case KindInt:
		return v.Int
	case KindBool:
		return v.Bool
	case KindMemoBytes:
		return v.MemoBytes
	case KindNull:
		return nil
	default:
		return nil
	}
}

// valueFromNative converts a plain Go value (as produced by
// encoding/json unmarshaling into interface{}, or by reflecting over a
// struct field) into a Value matching d's declared type. It is the
// inverse of Native, used by Table.RowFromMap/RowFromStruct.
func valueFromNative(d *FieldDescriptor, raw interface{}) (Value, error) {
	if raw == nil {
		return d.Default, nil
	}
	switch d.Type {
	case Character:
		switch x := raw.(type) {
		case string:
			return NewText(x), nil
		default:
			return Invalid(), newError("xbase-value-fromnative-1", InvalidTypeError, ErrUnsupportedValue)
		}
	case Date:
		switch x := raw.(type) {
		case time.Time:
			return NewDate(DateValue{Year: x.Year(), Month: int(x.Month()), Day: x.Day(), Valid: true}), nil
		case string:
			if x == "" {
				return EmptyDate(), nil
			}
			t, err := time.Parse(time.RFC3339, x)
			if err != nil {
				return Invalid(), newError("xbase-value-fromnative-2", InvalidValue, err)
			}
			return NewDate(DateValue{Year: t.Year(), Month: int(t.Month()), Day: t.Day(), Valid: true}), nil
		default:
			return Invalid(), newError("xbase-value-fromnative-3", InvalidTypeError, ErrUnsupportedValue)
		}
	case DateTime:
		switch x := raw.(type) {
		case time.Time:
			return NewDateTime(x), nil
		case string:
			t, err := time.Parse(time.RFC3339, x)
			if err != nil {
				return Invalid(), newError("xbase-value-fromnative-4", InvalidValue, err)
			}
			return NewDateTime(t), nil
		default:
			return Invalid(), newError("xbase-value-fromnative-5", InvalidTypeError, ErrUnsupportedValue)
		}
	case FloatingPoint:
		f, ok := toFloat64(raw)
		if !ok {
			return Invalid(), newError("xbase-value-fromnative-6", InvalidTypeError, ErrUnsupportedValue)
		}
		return NewFloat(f), nil
	case Number:
		if d.Precision == 0 {
			i, ok := toFloat64(raw)
			if !ok {
				return Invalid(), newError("xbase-value-fromnative-7", InvalidTypeError, ErrUnsupportedValue)
			}
			return NewInt(int32(i)), nil
		}
		f, ok := toFloat64(raw)
		if !ok {
			return Invalid(), newError("xbase-value-fromnative-8", InvalidTypeError, ErrUnsupportedValue)
		}
		return NewFloat(f), nil
	case Logical:
		b, ok := raw.(bool)
		if !ok {
			return Invalid(), newError("xbase-value-fromnative-9", InvalidTypeError, ErrUnsupportedValue)
		}
		return NewBool(b), nil
	case Integer:
		i, ok := toFloat64(raw)
		if !ok {
			return Invalid(), newError("xbase-value-fromnative-10", InvalidTypeError, ErrUnsupportedValue)
		}
		return NewInt(int32(i)), nil
	case Memo:
		switch x := raw.(type) {
		case string:
			return NewMemoText(x), nil
		case []byte:
			return NewMemoBytes(x), nil
		default:
			return Invalid(), newError("xbase-value-fromnative-11", InvalidTypeError, ErrUnsupportedValue)
		}
	default:
		return Invalid(), nil
	}
}

func toFloat64(raw interface{}) (float64, bool) {
	switch x := raw.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	default:
		return 0, false
	}
}
