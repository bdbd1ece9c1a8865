package xbase

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
)

// BeforeFirst is the cursor's sentinel "no row selected yet" position.
const BeforeFirst int64 = -1

// Table is the open handle over a .dbf file (and, if the dialect calls
// for one, its companion memo file). It owns the cursor/buffering state
// machine described in spec.md §4.1: a single position plus a boolean
// flag recording whether the buffered Record mirrors on-disk contents
// at that position.
//
// A Table is not safe for concurrent use; callers serialize access
// externally (spec.md §5).
type Table struct {
	config      *Config
	source      ByteSource
	memo        *MemoStore
	header      *TableHeader
	descriptors []*FieldDescriptor
	conv        EncodingConverter

	cursor   int64
	buffered bool
	current  *Record

	mods []*Modification

	lastErr Kind
}

// testedVersions is every version byte dialectOf recognizes (spec.md
// §4.1's "recognized set"). A version byte failing this check has
// already been rejected by dialectOf/parseHeader with UnsupportedFile,
// so for any file that opens this far, Config.Untested is a no-op: it
// exists only for API parity with the teacher's narrower "known good"
// whitelist, not to narrow the spec's own success contract further.
var testedVersions = map[byte]bool{
	byte(FoxBase):         true,
	byte(FoxBasePlus):     true,
	byte(FoxBasePlus2):    true,
	byte(FoxPro):          true,
	byte(FoxProAutoincr):  true,
	byte(FoxBasePlusMemo): true,
	byte(DBaseIVMemo):     true,
	byte(DBaseIVMemoSQL):  true,
	byte(FoxPro2Memo):     true,
}

func validateTestedVersion(version byte, untested bool) error {
	if untested {
		return nil
	}
	if !testedVersions[version] {
		return newError("xbase-table-validateversion-1", UnsupportedFile, fmt.Errorf("untested file version 0x%02x", version))
	}
	return nil
}

// Open opens an existing table per spec.md §4.1 "open(path, mode)":
// parses the header and field descriptors, opens the companion memo
// file if the dialect declares one, and leaves the cursor BeforeFirst.
func Open(config *Config) (*Table, error) {
	if config == nil {
		return nil, newError("xbase-table-open-1", FileOpenError, fmt.Errorf("missing configuration"))
	}
	source := config.Source
	if source == nil {
		fs, err := openFileSource(config.Filename, false)
		if err != nil {
			return nil, err
		}
		source = fs
	}
	if config.Exclusive || config.WriteLock {
		if err := source.Lock(true); err != nil {
			_ = source.Close()
			return nil, err
		}
	}

	preamble := make([]byte, headerPreambleSize)
	if _, err := source.ReadAt(preamble, 0); err != nil {
		_ = source.Close()
		return nil, newError("xbase-table-open-2", FileReadError, err)
	}
	header, err := parseHeader(preamble)
	if err != nil {
		_ = source.Close()
		return nil, err
	}
	if err := validateTestedVersion(header.VersionByte, config.Untested); err != nil {
		_ = source.Close()
		return nil, err
	}

	conv, err := resolveConverter(config, header.CodepageTag)
	if err != nil {
		_ = source.Close()
		return nil, err
	}

	descRegion := int(header.HeaderLength) - headerPreambleSize - 1
	if header.HasDBC {
		descRegion -= dbcRegionSize
	}
	raw := make([]byte, descRegion)
	if _, err := source.ReadAt(raw, headerPreambleSize); err != nil {
		_ = source.Close()
		return nil, newError("xbase-table-open-3", FileReadError, err)
	}
	descriptors, err := parseFieldDescriptors(raw, header.FieldCount, conv)
	if err != nil {
		_ = source.Close()
		return nil, err
	}

	t := &Table{
		config:      config,
		source:      source,
		header:      header,
		descriptors: descriptors,
		conv:        conv,
		cursor:      BeforeFirst,
		buffered:    false,
		mods:        make([]*Modification, len(descriptors)),
	}

	if header.MemoFlavor != MemoNone && hasMemoField(descriptors) {
		if err := t.openMemo(false); err != nil {
			_ = source.Close()
			return nil, err
		}
	}
	debugf("xbase: opened %s (version 0x%02x, %d records, %d fields)", config.Filename, header.VersionByte, header.RecordCount, len(descriptors))
	return t, nil
}

func hasMemoField(descriptors []*FieldDescriptor) bool {
	for _, d := range descriptors {
		if d.Type == Memo {
			return true
		}
	}
	return false
}

func resolveConverter(config *Config, tag CodepageTag) (EncodingConverter, error) {
	if config.InterpretCodePage || config.Converter == nil {
		conv, err := converterForTag(tag)
		if err != nil {
			conv = &localeConverter{}
		}
		return conv, nil
	}
	if config.ValidateCodePage && config.Converter.Codepage() != tag {
		return nil, newError("xbase-table-resolveconverter-1", UnsupportedFile, fmt.Errorf("code page mark mismatch: %v != %v", tag, config.Converter.Codepage()))
	}
	return config.Converter, nil
}

func memoExtension(flavor MemoFlavor) string {
	if flavor == MemoFoxPro {
		return ".fpt"
	}
	return ".dbt"
}

// findSibling performs a case-insensitive scan of dir for a file whose
// name matches base+ext, per spec.md §6 "Memo file" selection rule.
func findSibling(path string) (string, error) {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", newError("xbase-table-findsibling-1", FileOpenError, err)
	}
	for _, e := range entries {
		if strings.EqualFold(e.Name(), base) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", newError("xbase-table-findsibling-2", UnsupportedFile, ErrNoMemoFile)
}

func (t *Table) openMemo(create bool) error {
	ext := memoExtension(t.header.MemoFlavor)
	path := strings.TrimSuffix(t.config.Filename, filepath.Ext(t.config.Filename)) + ext

	memoSource := t.config.MemoSource
	if memoSource == nil {
		if create {
			fs, err := openFileSource(path, true)
			if err != nil {
				return newError("xbase-table-openmemo-1", FileOpenError, err)
			}
			memoSource = fs
		} else {
			resolved, err := findSibling(path)
			if err != nil {
				return newError("xbase-table-openmemo-2", UnsupportedFile, ErrNoMemoFile)
			}
			fs, err := openFileSource(resolved, false)
			if err != nil {
				return newError("xbase-table-openmemo-3", FileOpenError, err)
			}
			memoSource = fs
		}
	}

	if create {
		store, err := createMemoStore(memoSource, t.header.MemoFlavor, 512)
		if err != nil {
			return err
		}
		t.memo = store
		return nil
	}
	store, err := openMemoStore(memoSource, t.header.MemoFlavor)
	if err != nil {
		return err
	}
	t.memo = store
	return nil
}

// Create initializes a brand-new table file (and, if fileType implies
// one, a companion memo file) from descriptors, then opens it
// positioned BeforeFirst with zero records.
func Create(config *Config, fileType FileType, descriptors []*FieldDescriptor, codepage CodepageTag) (*Table, error) {
	if config == nil || strings.TrimSpace(config.Filename) == "" {
		return nil, newError("xbase-table-create-1", FileOpenError, fmt.Errorf("missing filename"))
	}
	hasDBC, memoFlavor, ok := dialectOf(byte(fileType))
	if !ok {
		return nil, newError("xbase-table-create-2", UnsupportedFile, fmt.Errorf("unrecognized file type 0x%02x", fileType))
	}

	conv, err := converterForTag(codepage)
	if err != nil {
		return nil, newError("xbase-table-create-3", InvalidValue, err)
	}

	headerLength := headerPreambleSize + fieldDescriptorByteSize*len(descriptors) + 1
	if hasDBC {
		headerLength += dbcRegionSize
	}
	header := &TableHeader{
		VersionByte:  byte(fileType),
		RecordCount:  0,
		HeaderLength: uint16(headerLength),
		RecordLength: recordLength(descriptors),
		CodepageTag:  codepage,
		HasDBC:       hasDBC,
		MemoFlavor:   memoFlavor,
		FieldCount:   len(descriptors),
	}
	header.stampToday()

	source := config.Source
	if source == nil {
		fs, err := openFileSource(config.Filename, true)
		if err != nil {
			return nil, err
		}
		source = fs
	}

	t := &Table{
		config:      config,
		source:      source,
		header:      header,
		descriptors: descriptors,
		conv:        conv,
		cursor:      BeforeFirst,
		buffered:    false,
		mods:        make([]*Modification, len(descriptors)),
	}

	if err := t.writeHeaderAndDescriptors(); err != nil {
		_ = source.Close()
		return nil, err
	}
	if _, err := source.WriteAt([]byte{byte(markerEOF)}, int64(header.HeaderLength)); err != nil {
		_ = source.Close()
		return nil, newError("xbase-table-create-4", FileWriteError, err)
	}

	if memoFlavor != MemoNone && hasMemoField(descriptors) {
		if err := t.openMemo(true); err != nil {
			_ = source.Close()
			return nil, err
		}
	}
	debugf("xbase: created %s (version 0x%02x, %d fields)", config.Filename, header.VersionByte, len(descriptors))
	return t, nil
}

func (t *Table) writeHeaderAndDescriptors() error {
	raw, err := encodeHeader(t.header)
	if err != nil {
		return err
	}
	if _, err := t.source.WriteAt(raw, 0); err != nil {
		return newError("xbase-table-writeheader-1", FileWriteError, err)
	}
	offset := int64(headerPreambleSize)
	for _, d := range t.descriptors {
		encoded, err := encodeFieldDescriptor(d, t.conv)
		if err != nil {
			return err
		}
		if _, err := t.source.WriteAt(encoded, offset); err != nil {
			return newError("xbase-table-writeheader-2", FileWriteError, err)
		}
		offset += fieldDescriptorByteSize
	}
	if _, err := t.source.WriteAt([]byte{byte(markerColumnEnd)}, offset); err != nil {
		return newError("xbase-table-writeheader-3", FileWriteError, err)
	}
	return nil
}

// Close releases the table's file handle and (if present) its memo
// file handle. Both handles are closed even if closing one of them
// fails; the first such error is returned.
func (t *Table) Close() error {
	debugf("xbase: closing %s", t.config.Filename)
	var firstErr error
	if t.memo != nil {
		if err := t.memo.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if t.source != nil {
		if t.config.Exclusive || t.config.WriteLock {
			_ = t.source.Unlock()
		}
		if err := t.source.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Size returns the table's declared record count.
func (t *Table) Size() uint32 { return t.header.RecordCount }

// At returns the current cursor position, or BeforeFirst.
func (t *Table) At() int64 { return t.cursor }

// Descriptors returns the table's field descriptors, in declared
// order. The returned slice must not be mutated.
func (t *Table) Descriptors() []*FieldDescriptor { return t.descriptors }

// Err returns the Kind recorded by the most recent failing operation,
// or NoError.
func (t *Table) Err() Kind { return t.lastErr }

// LastUpdate returns the table's last-update date as stamped in the
// header.
func (t *Table) LastUpdate() DateValue { return t.header.LastUpdate }

// Codepage returns the table's active codepage tag.
func (t *Table) Codepage() CodepageTag { return t.header.CodepageTag }

func (t *Table) fail(kind Kind) {
	t.lastErr = kind
}

func (t *Table) checkWritable() error {
	if t.config.ReadOnly {
		t.fail(FileWriteError)
		return newError("xbase-table-checkwritable-1", FileWriteError, fmt.Errorf("table opened read-only"))
	}
	return nil
}

func (t *Table) clearErr() {
	t.lastErr = NoError
}

func clampCursor(i int64, size uint32) int64 {
	if i < 0 {
		return BeforeFirst
	}
	if size == 0 {
		return BeforeFirst
	}
	if i >= int64(size) {
		return int64(size) - 1
	}
	return i
}

// Seek clamps i into {BeforeFirst} ∪ [0, size()) and invalidates the
// record buffer if the position changed. Always returns true.
func (t *Table) Seek(i int64) bool {
	clamped := clampCursor(i, t.header.RecordCount)
	if clamped != t.cursor {
		t.buffered = false
	}
	t.cursor = clamped
	return true
}

// First seeks to row 0 (or BeforeFirst if the table is empty).
func (t *Table) First() bool {
	if t.header.RecordCount == 0 {
		t.Seek(BeforeFirst)
		return false
	}
	return t.Seek(0)
}

// Last seeks to the final row (or BeforeFirst if the table is empty).
func (t *Table) Last() bool {
	if t.header.RecordCount == 0 {
		t.Seek(BeforeFirst)
		return false
	}
	return t.Seek(int64(t.header.RecordCount) - 1)
}

// Next advances the cursor by one row. From BeforeFirst it moves to
// row 0. At the last row it returns false without moving.
func (t *Table) Next() bool {
	if t.cursor >= int64(t.header.RecordCount)-1 {
		return false
	}
	t.Seek(t.cursor + 1)
	return true
}

// Previous moves the cursor back by one row. At row 0 it returns
// false without moving. If the cursor sits past the last valid row
// (the table was truncated underneath it), Previous jumps to Last.
func (t *Table) Previous() bool {
	if t.cursor > int64(t.header.RecordCount)-1 {
		return t.Last()
	}
	if t.cursor <= 0 {
		return false
	}
	t.Seek(t.cursor - 1)
	return true
}

func (t *Table) recordPosition(i int64) int64 {
	return int64(t.header.HeaderLength) + int64(t.header.RecordLength)*i
}

// Record returns the current record, materializing it from the file
// if not already buffered. On BeforeFirst it returns the template
// record (descriptors with default values) without altering the
// buffered flag. On I/O error it records FileReadError and also
// returns the template.
func (t *Table) Record() *Record {
	t.clearErr()
	if t.cursor == BeforeFirst {
		return newTemplateRecord(t.descriptors)
	}
	if t.buffered && t.current != nil {
		return t.current
	}
	raw := make([]byte, t.header.RecordLength)
	if _, err := t.source.ReadAt(raw, t.recordPosition(t.cursor)); err != nil {
		t.fail(FileReadError)
		return newTemplateRecord(t.descriptors)
	}
	rec, err := t.decodeRecordBody(raw, t.cursor)
	if err != nil {
		t.fail(FileReadError)
		return newTemplateRecord(t.descriptors)
	}
	t.current = rec
	t.buffered = true
	return rec
}

func (t *Table) decodeRecordBody(raw []byte, index int64) (*Record, error) {
	deleted := raw[0] == byte(markerDeleted)
	values := make([]Value, len(t.descriptors))
	for i, d := range t.descriptors {
		fieldBytes := raw[d.Offset : int(d.Offset)+int(d.Length)]
		v, err := decodeField(d, fieldBytes, t.conv, t.memo)
		if err != nil {
			return nil, err
		}
		if d.Type == Character {
			if s, ok := v.AsString(); ok {
				s = strings.TrimRight(s, " ")
				if t.config.TrimSpaces {
					s = strings.TrimSpace(s)
				}
				v = NewText(s)
			}
		}
		values[i] = v
	}
	return newRecord(t.descriptors, values, index, deleted), nil
}

// Value returns the value of field i of the current record.
func (t *Table) Value(i int) (Value, error) {
	return t.Record().Value(i)
}

// ValueByName returns the value of the named field of the current
// record.
func (t *Table) ValueByName(name string) (Value, error) {
	return t.Record().ValueByName(name)
}

func (t *Table) descriptorAt(i int) (*FieldDescriptor, error) {
	if i < 0 || i >= len(t.descriptors) {
		return nil, newError("xbase-table-descriptorat-1", InvalidIndexError, ErrInvalidPosition)
	}
	return t.descriptors[i], nil
}

// SetValue encodes v into field i of the current record, writes it at
// its byte offset, updates the buffered record, and stamps
// last_update. Fails if the cursor is BeforeFirst, the index is out of
// range, or v is not convertible to the field's type. A descriptor's
// ReadOnly flag does not block this write; it only guards local Record
// mutation (Record.SetValue/SetValueByName/ClearValues).
func (t *Table) SetValue(i int, v Value) error {
	t.clearErr()
	if err := t.checkWritable(); err != nil {
		return err
	}
	if t.cursor == BeforeFirst {
		t.fail(InvalidIndexError)
		return newError("xbase-table-setvalue-1", InvalidIndexError, ErrInvalidPosition)
	}
	d, err := t.descriptorAt(i)
	if err != nil {
		t.fail(InvalidIndexError)
		return err
	}
	encoded, err := encodeField(d, v, t.conv, t.memo)
	if err != nil {
		if e, ok := err.(*Error); ok {
			t.fail(e.Kind())
		} else {
			t.fail(InvalidValue)
		}
		return err
	}
	pos := t.recordPosition(t.cursor) + int64(d.Offset)
	if _, err := t.source.WriteAt(encoded, pos); err != nil {
		t.fail(FileWriteError)
		return newError("xbase-table-setvalue-2", FileWriteError, err)
	}
	rec := t.Record()
	rec.values[i] = v
	t.buffered = true
	t.stampLastUpdate()
	return nil
}

// SetValueByName is the by-name counterpart to SetValue.
func (t *Table) SetValueByName(name string, v Value) error {
	i := -1
	for idx, d := range t.descriptors {
		if strings.EqualFold(d.Name, name) {
			i = idx
			break
		}
	}
	if i < 0 {
		t.fail(InvalidIndexError)
		return newError("xbase-table-setvaluebyname-1", InvalidIndexError, ErrInvalidPosition)
	}
	return t.SetValue(i, v)
}

// SetRecord applies every field of r to the current record via
// SetValue. If r is marked deleted, RemoveRecord is applied first.
// This is all-or-nothing only at the level of a single field write:
// on the first failure it returns that error, leaving earlier field
// writes already committed to disk (spec.md §9 "Partial-failure in
// set_record").
func (t *Table) SetRecord(r *Record) error {
	if r.Deleted() {
		if err := t.RemoveRecord(t.cursor); err != nil {
			return err
		}
	}
	for i := 0; i < r.FieldCount(); i++ {
		v, err := r.Value(i)
		if err != nil {
			return err
		}
		if err := t.SetValue(i, v); err != nil {
			return err
		}
	}
	return nil
}

// AppendRecord increments record_count, writes the end-of-file marker
// at the new tail, advances the cursor to the new row, and applies r's
// field values (or the template's cleared defaults if r is nil) via
// SetValue. If r is marked deleted, per spec.md §9 the newly appended
// row is marked deleted after its fields are written.
func (t *Table) AppendRecord(r *Record) (*Record, error) {
	t.clearErr()
	if err := t.checkWritable(); err != nil {
		return nil, err
	}
	newIndex := int64(t.header.RecordCount)
	t.header.RecordCount++
	if err := t.writeHeaderAndDescriptors(); err != nil {
		t.header.RecordCount--
		t.fail(FileWriteError)
		return nil, err
	}
	if _, err := t.source.WriteAt([]byte{byte(markerEOF)}, t.recordPosition(newIndex+1)); err != nil {
		t.fail(FileWriteError)
		return nil, newError("xbase-table-appendrecord-1", FileWriteError, err)
	}
	if _, err := t.source.WriteAt([]byte{byte(markerBlank)}, t.recordPosition(newIndex)); err != nil {
		t.fail(FileWriteError)
		return nil, newError("xbase-table-appendrecord-2", FileWriteError, err)
	}
	t.Seek(newIndex)
	t.buffered = true
	t.current = newTemplateRecord(t.descriptors)
	t.current.index = newIndex

	markDeleted := r != nil && r.Deleted()
	base := r
	if base == nil {
		base = newTemplateRecord(t.descriptors)
		base.ClearValues()
	}
	for i := 0; i < base.FieldCount(); i++ {
		v, err := base.Value(i)
		if err != nil {
			return nil, err
		}
		if err := t.SetValue(i, v); err != nil {
			return nil, err
		}
	}
	if markDeleted {
		if err := t.RemoveRecord(newIndex); err != nil {
			return nil, err
		}
	}
	debugf("xbase: appended record %d to %s", newIndex, t.config.Filename)
	return t.Record(), nil
}

// Append appends a fresh row cleared to the template's defaults.
func (t *Table) Append() (*Record, error) {
	return t.AppendRecord(nil)
}

// RemoveRecord marks record i deleted by writing the delete marker at
// byte 0 of its body. If i is the current cursor, the buffered record
// is marked deleted too. Stamps last_update.
func (t *Table) RemoveRecord(i int64) error {
	t.clearErr()
	if err := t.checkWritable(); err != nil {
		return err
	}
	if i < 0 || i >= int64(t.header.RecordCount) {
		t.fail(InvalidIndexError)
		return newError("xbase-table-removerecord-1", InvalidIndexError, ErrInvalidPosition)
	}
	if _, err := t.source.WriteAt([]byte{byte(markerDeleted)}, t.recordPosition(i)); err != nil {
		t.fail(FileWriteError)
		return newError("xbase-table-removerecord-2", FileWriteError, err)
	}
	if i == t.cursor && t.buffered && t.current != nil {
		t.current.SetDeleted(true)
	}
	t.stampLastUpdate()
	debugf("xbase: marked record %d deleted in %s", i, t.config.Filename)
	return nil
}

// SetCodepage writes the enumerated codepage byte at offset 29 and, on
// success, atomically switches the table's active codec.
func (t *Table) SetCodepage(tag CodepageTag) error {
	t.clearErr()
	if err := t.checkWritable(); err != nil {
		return err
	}
	conv, err := converterForTag(tag)
	if err != nil {
		t.fail(InvalidValue)
		return newError("xbase-table-setcodepage-1", InvalidValue, err)
	}
	b, err := codepageByte(tag)
	if err != nil {
		t.fail(InvalidValue)
		return newError("xbase-table-setcodepage-2", InvalidValue, err)
	}
	if _, err := t.source.WriteAt([]byte{b}, 29); err != nil {
		t.fail(FileWriteError)
		return newError("xbase-table-setcodepage-3", FileWriteError, err)
	}
	t.header.CodepageTag = tag
	t.conv = conv
	debugf("xbase: switched %s to codepage %v", t.config.Filename, tag)
	return nil
}

func (t *Table) stampLastUpdate() {
	t.header.stampToday()
	raw, err := encodeHeader(t.header)
	if err != nil {
		return
	}
	_, _ = t.source.WriteAt(raw, 0)
}

// Search scans every row for field i equal to value. When exactMatch
// is false, Character values compare as a case-insensitive prefix
// match; all other types always compare exactly.
func (t *Table) Search(i int, value Value, exactMatch bool) ([]*Record, error) {
	d, err := t.descriptorAt(i)
	if err != nil {
		return nil, err
	}
	savedCursor := t.cursor
	savedBuffered := t.buffered
	savedCurrent := t.current
	defer func() {
		t.cursor = savedCursor
		t.buffered = savedBuffered
		t.current = savedCurrent
	}()

	var out []*Record
	for idx := int64(0); idx < int64(t.header.RecordCount); idx++ {
		t.cursor = idx
		t.buffered = false
		rec := t.Record()
		v, err := rec.Value(i)
		if err != nil {
			continue
		}
		if valuesMatch(d.Type, v, value, exactMatch) {
			out = append(out, rec.Clone())
		}
	}
	return out, nil
}

func valuesMatch(t DataType, have, want Value, exactMatch bool) bool {
	if have.Kind != want.Kind {
		return false
	}
	if t == Character {
		hs, ok1 := have.AsString()
		ws, ok2 := want.AsString()
		if !ok1 || !ok2 {
			return false
		}
		if exactMatch {
			return hs == ws
		}
		return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(hs)), strings.ToUpper(strings.TrimSpace(ws)))
	}
	switch have.Kind {
	case KindInt:
		return have.Int == want.Int
	case KindFloat:
		return have.Float == want.Float
	case KindBool:
		return have.Bool == want.Bool
	case KindDate:
		return have.Date == want.Date
	case KindDateTime:
		return have.DateTime.Equal(want.DateTime)
	case KindText, KindMemoText:
		return have.Text == want.Text
	case KindNull, KindInvalid:
		return true
	default:
		return false
	}
}

// SetColumnModification installs (or, with a nil mod, clears) a
// Modification for field i, applied by RecordAsMap/RecordAsJSON/
// RecordAsStruct and by RowFromMap/RowFromStruct/RowFromJSON (which
// honor only its ExternalKey). It never alters the underlying
// FieldDescriptor.
func (t *Table) SetColumnModification(i int, mod *Modification) error {
	if i < 0 || i >= len(t.mods) {
		return newError("xbase-table-setcolumnmodification-1", InvalidIndexError, ErrInvalidPosition)
	}
	t.mods[i] = mod
	debugf("xbase: modification set for column %d of %s", i, t.config.Filename)
	return nil
}

// SetColumnModificationByName is the by-name counterpart to
// SetColumnModification.
func (t *Table) SetColumnModificationByName(name string, mod *Modification) error {
	for i, d := range t.descriptors {
		if strings.EqualFold(d.Name, name) {
			return t.SetColumnModification(i, mod)
		}
	}
	return newError("xbase-table-setcolumnmodificationbyname-1", InvalidIndexError, ErrInvalidPosition)
}

// ColumnModification returns the Modification installed for field i,
// or nil.
func (t *Table) ColumnModification(i int) *Modification {
	if i < 0 || i >= len(t.mods) {
		return nil
	}
	return t.mods[i]
}

// RecordAsMap returns r as a map of plain Go values honoring this
// table's installed column modifications.
func (t *Table) RecordAsMap(r *Record) (map[string]interface{}, error) {
	return r.ToNativeMap(t.mods, t.config.TrimSpaces)
}

// RecordAsJSON marshals r honoring this table's column modifications.
func (t *Table) RecordAsJSON(r *Record) ([]byte, error) {
	return r.ToJSON(t.mods, t.config.TrimSpaces)
}

// RecordAsStruct unmarshals r into v (a non-nil pointer) honoring this
// table's column modifications.
func (t *Table) RecordAsStruct(r *Record, v interface{}) error {
	return r.ToStruct(v, t.mods, t.config.TrimSpaces)
}

// RowFromMap builds a *Record from the table's template, resolving
// each field's value from m by its installed Modification's
// ExternalKey when one is set, otherwise by its declared name (a field
// with an ExternalKey is not looked up under its declared name). Only
// ExternalKey is honored here; Convert and TrimSpaces are not applied.
// Missing keys leave the field at its template default.
func (t *Table) RowFromMap(m map[string]interface{}) (*Record, error) {
	debugf("xbase: converting map to record for %s", t.config.Filename)
	rec := newTemplateRecord(t.descriptors)
	for i, d := range t.descriptors {
		key := d.Name
		if i < len(t.mods) && t.mods[i] != nil && t.mods[i].ExternalKey != "" {
			key = t.mods[i].ExternalKey
		}
		raw, ok := m[key]
		if !ok {
			continue
		}
		v, err := valueFromNative(d, raw)
		if err != nil {
			return nil, newError("xbase-table-rowfrommap-1", InvalidTypeError, err)
		}
		if err := rec.setValue(i, v); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

// RowFromJSON unmarshals data into a map and delegates to RowFromMap.
func (t *Table) RowFromJSON(data []byte) (*Record, error) {
	m := make(map[string]interface{})
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, newError("xbase-table-rowfromjson-1", InvalidValue, err)
	}
	return t.RowFromMap(m)
}

// RowFromStruct reflects over v's exported fields (a struct or pointer
// to struct), using each field's `dbase` tag as its key when present
// and the Go field name otherwise, and delegates to RowFromMap.
func (t *Table) RowFromStruct(v interface{}) (*Record, error) {
	debugf("xbase: converting struct to record for %s", t.config.Filename)
	rv := reflect.ValueOf(v)
	rt := reflect.TypeOf(v)
	if rt.Kind() == reflect.Ptr {
		rt = rt.Elem()
		rv = rv.Elem()
	}
	if rt.Kind() != reflect.Struct {
		return nil, newError("xbase-table-rowfromstruct-1", InvalidTypeError, fmt.Errorf("xbase: RowFromStruct requires a struct or pointer to struct"))
	}
	m := make(map[string]interface{}, rt.NumField())
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		key := field.Tag.Get("dbase")
		if key == "" {
			key = field.Name
		}
		m[key] = rv.Field(i).Interface()
	}
	return t.RowFromMap(m)
}
