package xbase

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Record is a snapshot of one row: a sequence of typed values sharing
// the table's descriptor set, a deleted flag, and the record's index in
// the table (-1 for a synthetic/not-yet-placed record, e.g. the
// "template" record returned while the cursor is BeforeFirst).
//
// Records read from a table are owned, value-semantic snapshots -
// mutating a Record obtained from Table.Record does not retroactively
// alter the file (spec.md §3 "Lifecycles").
type Record struct {
	descriptors []*FieldDescriptor
	values      []Value
	index       int64
	deleted     bool
}

func newRecord(descriptors []*FieldDescriptor, values []Value, index int64, deleted bool) *Record {
	return &Record{descriptors: descriptors, values: values, index: index, deleted: deleted}
}

// newTemplateRecord builds the descriptors-and-defaults record returned
// while the cursor is BeforeFirst.
func newTemplateRecord(descriptors []*FieldDescriptor) *Record {
	values := make([]Value, len(descriptors))
	for i, d := range descriptors {
		values[i] = d.Default
	}
	return newRecord(descriptors, values, -1, false)
}

// Index returns the record's position in the table, or -1 for a
// synthetic record.
func (r *Record) Index() int64 { return r.index }

// Deleted reports whether the record is marked deleted.
func (r *Record) Deleted() bool { return r.deleted }

// SetDeleted is a pure flag manipulation; it does not write through to
// the table (spec.md §4.5).
func (r *Record) SetDeleted(deleted bool) { r.deleted = deleted }

// FieldCount returns the number of fields in the record.
func (r *Record) FieldCount() int { return len(r.descriptors) }

// Descriptor returns the field descriptor at position i.
func (r *Record) Descriptor(i int) (*FieldDescriptor, error) {
	if i < 0 || i >= len(r.descriptors) {
		return nil, newError("xbase-record-descriptor-1", InvalidIndexError, ErrInvalidPosition)
	}
	return r.descriptors[i], nil
}

// IndexOf returns the position of the field named name, matched
// case-insensitively, or -1 if no such field exists.
func (r *Record) IndexOf(name string) int {
	for i, d := range r.descriptors {
		if strings.EqualFold(d.Name, name) {
			return i
		}
	}
	return -1
}

// Value returns the value at field position i.
func (r *Record) Value(i int) (Value, error) {
	if i < 0 || i >= len(r.values) {
		return Invalid(), newError("xbase-record-value-1", InvalidIndexError, ErrInvalidPosition)
	}
	return r.values[i], nil
}

// ValueByName returns the value of the field named name.
func (r *Record) ValueByName(name string) (Value, error) {
	i := r.IndexOf(name)
	if i < 0 {
		return Invalid(), newError("xbase-record-valuebyname-1", InvalidIndexError, ErrInvalidPosition)
	}
	return r.values[i], nil
}

// setValue assigns a field value locally, without touching any backing
// file. Used internally by the table core after a successful on-disk
// write, and by callers building up a record before AppendRecord/
// SetRecord. Fails with InvalidValue if the field's descriptor marks it
// ReadOnly.
func (r *Record) setValue(i int, v Value) error {
	if i < 0 || i >= len(r.values) {
		return newError("xbase-record-setvalue-1", InvalidIndexError, ErrInvalidPosition)
	}
	if d := r.descriptors[i]; d.ReadOnly {
		return newError("xbase-record-setvalue-2", InvalidValue, fmt.Errorf("xbase: field %q is read-only", d.Name))
	}
	r.values[i] = v
	return nil
}

// SetValue assigns a field value locally, without touching any backing
// file. To persist the change call Table.SetRecord or Table.SetValue.
func (r *Record) SetValue(i int, v Value) error { return r.setValue(i, v) }

// SetValueByName is the by-name counterpart to SetValue.
func (r *Record) SetValueByName(name string, v Value) error {
	i := r.IndexOf(name)
	if i < 0 {
		return newError("xbase-record-setvaluebyname-1", InvalidIndexError, ErrInvalidPosition)
	}
	return r.setValue(i, v)
}

// ClearValues resets every field to its descriptor's declared default,
// without touching metadata. ReadOnly fields are left untouched.
func (r *Record) ClearValues() {
	for i, d := range r.descriptors {
		if d.ReadOnly {
			continue
		}
		r.values[i] = d.Default
	}
}

// Clone returns an independent copy of the record; mutating the clone
// never affects the original (copy-on-write semantics at the API
// boundary, spec.md §9).
func (r *Record) Clone() *Record {
	values := make([]Value, len(r.values))
	copy(values, r.values)
	return newRecord(r.descriptors, values, r.index, r.deleted)
}

// ToMap returns the record as a map keyed by field name, as declared.
func (r *Record) ToMap() map[string]Value {
	out := make(map[string]Value, len(r.descriptors))
	for i, d := range r.descriptors {
		out[d.Name] = r.values[i]
	}
	return out
}

// ToNativeMap returns the record as a map of plain Go values, keyed by
// field name, honoring mods: a non-nil entry renames the key to its
// ExternalKey (when set), runs Convert on the decoded value, and trims
// trailing/leading whitespace from string values when TrimSpaces is
// set (either on the modification or, for every field, when
// globalTrim is true). mods may be nil or shorter than the record's
// field count; a missing or nil entry leaves that field unmodified.
func (r *Record) ToNativeMap(mods []*Modification, globalTrim bool) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(r.descriptors))
	for i, d := range r.descriptors {
		v := r.values[i]
		key := d.Name
		trim := globalTrim
		var mod *Modification
		if i < len(mods) {
			mod = mods[i]
		}
		if mod != nil {
			if mod.ExternalKey != "" {
				key = mod.ExternalKey
			}
			if mod.TrimSpaces {
				trim = true
			}
		}
		native := v.Native()
		if mod != nil && mod.Convert != nil {
			converted, err := mod.Convert(v)
			if err != nil {
				return nil, newError("xbase-record-tonativemap-1", InvalidValue, err)
			}
			native = converted.Native()
		}
		if trim {
			if s, ok := native.(string); ok {
				native = strings.TrimSpace(s)
			}
		}
		out[key] = native
	}
	return out, nil
}

// ToJSON marshals the record via ToNativeMap.
func (r *Record) ToJSON(mods []*Modification, trimSpaces bool) ([]byte, error) {
	m, err := r.ToNativeMap(mods, trimSpaces)
	if err != nil {
		return nil, newError("xbase-record-tojson-1", InvalidValue, err)
	}
	out, err := json.Marshal(m)
	if err != nil {
		return nil, newError("xbase-record-tojson-2", InvalidValue, err)
	}
	return out, nil
}

// ToStruct marshals the record to JSON via ToJSON and unmarshals it
// into v, which must be a non-nil pointer. json.Unmarshal's normal
// field-name/tag matching rules apply.
func (r *Record) ToStruct(v interface{}, mods []*Modification, trimSpaces bool) error {
	data, err := r.ToJSON(mods, trimSpaces)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return newError("xbase-record-tostruct-1", InvalidValue, err)
	}
	return nil
}
