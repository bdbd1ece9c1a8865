// Package xbase reads and writes xBase-family table files (the .dbf
// format originating with dBASE and extended by FoxPro/Visual FoxPro).
//
// It provides random-access, cursor-style navigation over fixed-width
// binary records, typed value decoding and encoding, codepage-aware text
// translation, and optional companion memo-file support (.dbt / .fpt).
//
// The package only concerns itself with the binary format engine: the
// table header, field descriptors, the record cursor, the per-field
// codec and the memo-file block codec. It has no opinion on how a caller
// presents a table as a grid, a struct, or anything else - Record offers
// conversion helpers for that, but the engine itself only deals in bytes
// and typed values.
package xbase
