package xbase

import (
	"testing"
	"time"
)

func newCharTableDescriptors() []*FieldDescriptor {
	descriptors := []*FieldDescriptor{
		{Name: "NAME", Type: Character, Length: 10},
	}
	AssignOffsets(descriptors)
	return descriptors
}

// TestSimpleDBaseIIIRead covers spec.md §8 scenario 1: a two-record
// dBASE III file with a single Character(10) column.
func TestSimpleDBaseIIIRead(t *testing.T) {
	source := newMemSource()
	descriptors := newCharTableDescriptors()
	table, err := Create(&Config{Filename: "mem.dbf", Source: source}, FoxBasePlus, descriptors, CodepageNotSet)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := table.Append(); err != nil {
		t.Fatalf("Append #1: %v", err)
	}
	if err := table.SetValue(0, NewText("ALICE")); err != nil {
		t.Fatalf("SetValue #1: %v", err)
	}
	if _, err := table.Append(); err != nil {
		t.Fatalf("Append #2: %v", err)
	}
	if err := table.SetValue(0, NewText("BOB")); err != nil {
		t.Fatalf("SetValue #2: %v", err)
	}
	if err := table.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(&Config{Filename: "mem.dbf", Source: source})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if reopened.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", reopened.Size())
	}
	if !reopened.Next() {
		t.Fatalf("Next() #1 = false, want true")
	}
	v, err := reopened.Value(0)
	if err != nil {
		t.Fatalf("Value(0) #1: %v", err)
	}
	if s, _ := v.AsString(); s != "ALICE" {
		t.Errorf("record 0 NAME = %q, want ALICE", s)
	}
	if !reopened.Next() {
		t.Fatalf("Next() #2 = false, want true")
	}
	v, err = reopened.Value(0)
	if err != nil {
		t.Fatalf("Value(0) #2: %v", err)
	}
	if s, _ := v.AsString(); s != "BOB" {
		t.Errorf("record 1 NAME = %q, want BOB", s)
	}
	if reopened.Next() {
		t.Errorf("Next() at last row should return false")
	}
}

// TestDeleteThenReopen covers spec.md §8 scenario 2.
func TestDeleteThenReopen(t *testing.T) {
	source := newMemSource()
	descriptors := newCharTableDescriptors()
	table, err := Create(&Config{Filename: "mem.dbf", Source: source}, FoxBasePlus, descriptors, CodepageNotSet)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := table.Append(); err != nil {
		t.Fatalf("Append #1: %v", err)
	}
	_ = table.SetValue(0, NewText("ALICE"))
	if _, err := table.Append(); err != nil {
		t.Fatalf("Append #2: %v", err)
	}
	_ = table.SetValue(0, NewText("BOB"))

	table.Seek(0)
	if err := table.RemoveRecord(table.At()); err != nil {
		t.Fatalf("RemoveRecord: %v", err)
	}
	if err := table.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(&Config{Filename: "mem.dbf", Source: source, ReadOnly: true})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	reopened.Seek(0)
	rec := reopened.Record()
	if !rec.Deleted() {
		t.Errorf("record 0 should be deleted after reopen")
	}
	if reopened.Size() != 2 {
		t.Errorf("Size() = %d, want 2 (delete does not shrink the table)", reopened.Size())
	}
}

// TestAppendPersistsAndWritesEOFMarker covers spec.md §8 scenario 3.
func TestAppendPersistsAndWritesEOFMarker(t *testing.T) {
	source := newMemSource()
	descriptors := newCharTableDescriptors()
	table, err := Create(&Config{Filename: "mem.dbf", Source: source}, FoxBasePlus, descriptors, CodepageNotSet)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for _, name := range []string{"ALICE", "BOB"} {
		if _, err := table.Append(); err != nil {
			t.Fatalf("Append %s: %v", name, err)
		}
		_ = table.SetValue(0, NewText(name))
	}
	if _, err := table.Append(); err != nil {
		t.Fatalf("Append #3: %v", err)
	}
	if err := table.SetValue(0, NewText("CARL")); err != nil {
		t.Fatalf("SetValue CARL: %v", err)
	}
	if err := table.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(&Config{Filename: "mem.dbf", Source: source})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if reopened.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", reopened.Size())
	}
	reopened.Seek(2)
	v, err := reopened.Value(0)
	if err != nil {
		t.Fatalf("Value(0): %v", err)
	}
	if s, _ := v.AsString(); s != "CARL" {
		t.Errorf("record 2 NAME = %q, want CARL", s)
	}

	const headerLength = headerPreambleSize + fieldDescriptorByteSize + 1
	const recordLen = 1 + 10
	eofPos := headerLength + 3*recordLen
	if source.buf[eofPos] != byte(markerEOF) {
		t.Errorf("byte at %d = 0x%02x, want 0x1A (EOF marker)", eofPos, source.buf[eofPos])
	}
}

// TestCodepageSwitchRoundTrip covers spec.md §8 scenario 4.
func TestCodepageSwitchRoundTrip(t *testing.T) {
	source := newMemSource()
	descriptors := newCharTableDescriptors()
	table, err := Create(&Config{Filename: "mem.dbf", Source: source}, FoxBasePlus, descriptors, Windows1251)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := table.SetCodepage(IBM866); err != nil {
		t.Fatalf("SetCodepage: %v", err)
	}
	if err := table.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(&Config{Filename: "mem.dbf", Source: source})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if reopened.Codepage() != IBM866 {
		t.Errorf("Codepage() = %v, want IBM866", reopened.Codepage())
	}
	if source.buf[29] != 0x26 {
		t.Errorf("codepage byte = 0x%02x, want canonical 0x26 for IBM866", source.buf[29])
	}
}

// TestDateTimeBinaryRoundTrip covers spec.md §8 scenario 5.
func TestTableDateTimeBinaryRoundTrip(t *testing.T) {
	source := newMemSource()
	descriptors := []*FieldDescriptor{
		{Name: "SEEN", Type: DateTime, Length: 8},
	}
	AssignOffsets(descriptors)
	table, err := Create(&Config{Filename: "mem.dbf", Source: source}, FoxBasePlus, descriptors, CodepageNotSet)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := table.Append(); err != nil {
		t.Fatalf("Append: %v", err)
	}
	want := time.Date(2024, time.March, 15, 12, 34, 56, 0, time.UTC)
	if err := table.SetValue(0, NewDateTime(want)); err != nil {
		t.Fatalf("SetValue: %v", err)
	}

	v, err := table.Value(0)
	if err != nil {
		t.Fatalf("Value(0): %v", err)
	}
	got, ok := v.AsTime()
	if !ok {
		t.Fatalf("Value(0) is not a DateTime")
	}
	if !got.Equal(want) {
		t.Errorf("round-tripped time = %v, want %v", got, want)
	}

	const headerLength = headerPreambleSize + fieldDescriptorByteSize + 1
	const recordLen = 1 + 8
	fieldPos := headerLength + 0*recordLen + 1
	julDay := int32(uint32(source.buf[fieldPos]) | uint32(source.buf[fieldPos+1])<<8 | uint32(source.buf[fieldPos+2])<<16 | uint32(source.buf[fieldPos+3])<<24)
	ms := int32(uint32(source.buf[fieldPos+4]) | uint32(source.buf[fieldPos+5])<<8 | uint32(source.buf[fieldPos+6])<<16 | uint32(source.buf[fieldPos+7])<<24)
	if julDay != 2460385 {
		t.Errorf("raw julian day = %d, want 2460385", julDay)
	}
	if ms != 45296000 {
		t.Errorf("raw ms-since-midnight = %d, want 45296000", ms)
	}
}

// TestMemoFieldRoundTrip exercises spec.md §8 scenario 6's shape (a
// Memo field backed by a companion memo store) using the dBASE III
// sentinel-delimited dialect.
func TestMemoFieldRoundTrip(t *testing.T) {
	dbfSource := newMemSource()
	memoSource := newMemSource()
	descriptors := []*FieldDescriptor{
		{Name: "NAME", Type: Character, Length: 10},
		{Name: "NOTE", Type: Memo, Length: 4},
	}
	AssignOffsets(descriptors)
	table, err := Create(&Config{Filename: "mem.dbf", Source: dbfSource, MemoSource: memoSource}, FoxBasePlusMemo, descriptors, CodepageNotSet)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := table.Append(); err != nil {
		t.Fatalf("Append: %v", err)
	}
	_ = table.SetValue(0, NewText("ALICE"))
	if err := table.SetValue(1, NewMemoText("hello memo world")); err != nil {
		t.Fatalf("SetValue memo: %v", err)
	}

	v, err := table.Value(1)
	if err != nil {
		t.Fatalf("Value(1): %v", err)
	}
	if s, _ := v.AsString(); s != "hello memo world" {
		t.Errorf("memo field round trip = %q, want %q", s, "hello memo world")
	}
}

// TestSeekClampsToValidRange covers spec.md §8 "Boundary behaviors".
func TestSeekClampsToValidRange(t *testing.T) {
	source := newMemSource()
	descriptors := newCharTableDescriptors()
	table, err := Create(&Config{Filename: "mem.dbf", Source: source}, FoxBasePlus, descriptors, CodepageNotSet)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	for i := 0; i < 3; i++ {
		if _, err := table.Append(); err != nil {
			t.Fatalf("Append %d: %v", i, err)
		}
	}
	table.Seek(-5)
	if table.At() != BeforeFirst {
		t.Errorf("Seek(-5) landed at %d, want BeforeFirst", table.At())
	}
	table.Seek(100)
	if table.At() != 2 {
		t.Errorf("Seek(100) landed at %d, want 2 (size-1)", table.At())
	}
}

// TestEmptyTableBoundaries covers spec.md §8 "Empty table" boundary.
func TestEmptyTableBoundaries(t *testing.T) {
	source := newMemSource()
	descriptors := newCharTableDescriptors()
	table, err := Create(&Config{Filename: "mem.dbf", Source: source}, FoxBasePlus, descriptors, CodepageNotSet)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if table.First() {
		t.Errorf("First() on empty table should return false")
	}
	if table.Next() {
		t.Errorf("Next() on empty table should return false")
	}
	rec := table.Record()
	if rec.Index() != -1 {
		t.Errorf("Record() on empty table at BeforeFirst should be the template (index -1)")
	}
}

// TestRowFromMapAndRecordAsMap covers the supplemented
// map/JSON/struct conversion helpers (SPEC_FULL.md supplemented
// feature 1).
func TestRowFromMapAndRecordAsMap(t *testing.T) {
	source := newMemSource()
	descriptors := newCharTableDescriptors()
	table, err := Create(&Config{Filename: "mem.dbf", Source: source}, FoxBasePlus, descriptors, CodepageNotSet)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	row, err := table.RowFromMap(map[string]interface{}{"NAME": "DANA"})
	if err != nil {
		t.Fatalf("RowFromMap: %v", err)
	}
	if _, err := table.AppendRecord(row); err != nil {
		t.Fatalf("AppendRecord: %v", err)
	}
	m, err := table.RecordAsMap(table.Record())
	if err != nil {
		t.Fatalf("RecordAsMap: %v", err)
	}
	if m["NAME"] != "DANA" {
		t.Errorf("RecordAsMap[NAME] = %v, want DANA", m["NAME"])
	}
}

// TestColumnModificationExternalKey covers the supplemented Modification
// feature (SPEC_FULL.md supplemented feature 2): a caller can rename a
// column at the conversion boundary without touching the descriptor.
func TestColumnModificationExternalKey(t *testing.T) {
	source := newMemSource()
	descriptors := newCharTableDescriptors()
	table, err := Create(&Config{Filename: "mem.dbf", Source: source}, FoxBasePlus, descriptors, CodepageNotSet)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := table.SetColumnModificationByName("NAME", &Modification{ExternalKey: "full_name"}); err != nil {
		t.Fatalf("SetColumnModificationByName: %v", err)
	}
	if _, err := table.Append(); err != nil {
		t.Fatalf("Append: %v", err)
	}
	_ = table.SetValue(0, NewText("ERIN"))

	m, err := table.RecordAsMap(table.Record())
	if err != nil {
		t.Fatalf("RecordAsMap: %v", err)
	}
	if _, ok := m["NAME"]; ok {
		t.Errorf("NAME key should have been renamed away by the modification")
	}
	if m["full_name"] != "ERIN" {
		t.Errorf("full_name = %v, want ERIN", m["full_name"])
	}

	row, err := table.RowFromMap(map[string]interface{}{"full_name": "FRANK"})
	if err != nil {
		t.Fatalf("RowFromMap: %v", err)
	}
	v, err := row.Value(0)
	if err != nil {
		t.Fatalf("Value(0): %v", err)
	}
	if s, _ := v.AsString(); s != "FRANK" {
		t.Errorf("RowFromMap via ExternalKey = %q, want FRANK", s)
	}
}
