package xbase

// Config carries the options for opening or creating a table. Filename
// is mandatory unless Source is supplied directly. Every other field is
// optional and false/nil by default.
//
// If Converter and InterpretCodePage are both unset, Open tries to
// interpret the code page mark from the header itself.
type Config struct {
	Filename          string            // path to the .dbf file
	Converter         EncodingConverter // encoding converter to use for Character/Memo/name fields
	Exclusive         bool              // open (and require) an exclusive advisory lock
	Untested          bool              // no-op for any version byte spec.md §4.1 recognizes; kept for API parity with the teacher's narrower whitelist
	TrimSpaces        bool              // also trim leading spaces from decoded Character values (trailing pad spaces are always removed)
	ReadOnly          bool              // open without taking a write lock, rejecting mutation calls
	WriteLock         bool              // take an advisory write lock for the session
	ValidateCodePage  bool              // fail Open if the header's codepage byte disagrees with Converter
	InterpretCodePage bool              // derive Converter from the header's codepage byte, ignoring any supplied Converter
	Source            ByteSource        // override the default os.File-backed table source
	MemoSource        ByteSource        // override the default os.File-backed memo source
}

// Modification lets a caller rename or retype a column as it is
// surfaced through Row/ToMap conversions, without altering the
// underlying on-disk descriptor.
type Modification struct {
	TrimSpaces  bool
	Convert     func(Value) (Value, error)
	ExternalKey string
}
