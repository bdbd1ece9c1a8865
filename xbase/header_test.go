package xbase

import "testing"

func TestYearFromBytePivot(t *testing.T) {
	tests := []struct {
		raw  byte
		want int
	}{
		{0, 2000},
		{79, 2079},
		{80, 1980},
		{124, 2024},
		{99, 1999},
	}
	for _, tt := range tests {
		if got := yearFromByte(tt.raw); got != tt.want {
			t.Errorf("yearFromByte(%d) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestByteFromYearRoundTrip(t *testing.T) {
	for _, year := range []int{1980, 1999, 2000, 2024, 2079} {
		b := byteFromYear(year)
		if got := yearFromByte(b); got != year {
			t.Errorf("round trip failed for %d: got %d", year, got)
		}
	}
}

func buildRawHeader(t *testing.T, version byte, fieldCount int) []byte {
	t.Helper()
	headerLength := headerPreambleSize + fieldCount*fieldDescriptorByteSize + 1
	if hasDBC, _, _ := dialectOf(version); hasDBC {
		headerLength += dbcRegionSize
	}
	raw := rawTableHeader{
		VersionByte:  version,
		Year:         24,
		Month:        3,
		Day:          15,
		RecordCount:  2,
		HeaderLength: uint16(headerLength),
		RecordLength: 26,
		CodepageByte: 0x03,
	}
	h := &TableHeader{
		VersionByte:  raw.VersionByte,
		LastUpdate:   DateValue{Year: 2024, Month: 3, Day: 15, Valid: true},
		RecordCount:  raw.RecordCount,
		HeaderLength: raw.HeaderLength,
		RecordLength: raw.RecordLength,
		CodepageTag:  Windows1252,
	}
	encoded, err := encodeHeader(h)
	if err != nil {
		t.Fatalf("encodeHeader: %v", err)
	}
	return encoded
}

func TestHeaderRoundTrip(t *testing.T) {
	raw := buildRawHeader(t, byte(FoxBasePlus), 3)
	h, err := parseHeader(raw)
	if err != nil {
		t.Fatalf("parseHeader: %v", err)
	}
	if h.VersionByte != byte(FoxBasePlus) {
		t.Errorf("VersionByte = 0x%02x", h.VersionByte)
	}
	if h.LastUpdate.Year != 2024 || h.LastUpdate.Month != 3 || h.LastUpdate.Day != 15 {
		t.Errorf("LastUpdate = %+v", h.LastUpdate)
	}
	if h.RecordCount != 2 {
		t.Errorf("RecordCount = %d, want 2", h.RecordCount)
	}
	if h.FieldCount != 3 {
		t.Errorf("FieldCount = %d, want 3", h.FieldCount)
	}
	if h.HasDBC {
		t.Errorf("FoxBasePlus should not have a DBC region")
	}
	if h.MemoFlavor != MemoNone {
		t.Errorf("FoxBasePlus should have MemoNone, got %v", h.MemoFlavor)
	}
}

func TestHeaderDialectFoxPro(t *testing.T) {
	raw := buildRawHeader(t, byte(FoxPro), 2)
	h, err := parseHeader(raw)
	if err != nil {
		t.Fatalf("parseHeader: %v", err)
	}
	if !h.HasDBC {
		t.Errorf("FoxPro should carry a DBC region flag")
	}
	if h.MemoFlavor != MemoFoxPro {
		t.Errorf("MemoFlavor = %v, want MemoFoxPro", h.MemoFlavor)
	}
}

func TestHeaderDialectDBaseIVMemo(t *testing.T) {
	hasDBC, memo, ok := dialectOf(byte(DBaseIVMemo))
	if !ok {
		t.Fatalf("DBaseIVMemo should be a recognized version byte")
	}
	if hasDBC {
		t.Errorf("DBaseIVMemo should not carry a DBC region flag")
	}
	if memo != MemoDBaseIV {
		t.Errorf("memo flavor = %v, want MemoDBaseIV", memo)
	}
}

func TestHeaderDialectUnrecognized(t *testing.T) {
	_, _, ok := dialectOf(0xFF)
	if ok {
		t.Errorf("expected unrecognized version byte to be rejected")
	}
}

func TestParseHeaderRejectsUnrecognizedVersion(t *testing.T) {
	raw := buildRawHeader(t, 0xFF, 1)
	if _, err := parseHeader(raw); err == nil {
		t.Errorf("expected parseHeader to reject an unrecognized version byte")
	}
}

func TestParseHeaderShortData(t *testing.T) {
	if _, err := parseHeader([]byte{1, 2, 3}); err == nil {
		t.Errorf("expected parseHeader to reject short header data")
	}
}
