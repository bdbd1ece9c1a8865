package xbase

import "errors"

// Kind enumerates the error taxonomy every public operation reports.
type Kind int

const (
	NoError Kind = iota
	FileOpenError
	FileReadError
	FileWriteError
	InvalidValue
	InvalidIndexError
	InvalidTypeError
	UnsupportedFile
)

func (k Kind) String() string {
	switch k {
	case NoError:
		return "NoError"
	case FileOpenError:
		return "FileOpenError"
	case FileReadError:
		return "FileReadError"
	case FileWriteError:
		return "FileWriteError"
	case InvalidValue:
		return "InvalidValue"
	case InvalidIndexError:
		return "InvalidIndexError"
	case InvalidTypeError:
		return "InvalidTypeError"
	case UnsupportedFile:
		return "UnsupportedFile"
	default:
		return "Unknown"
	}
}

// Sentinel errors, kept distinct from Kind so callers can still use
// errors.Is against a stable value instead of matching on Kind alone.
var (
	ErrEOF              = errors.New("xbase: end of file reached")
	ErrBOF              = errors.New("xbase: before first record")
	ErrIncomplete       = errors.New("xbase: short read or write")
	ErrNoMemoFile       = errors.New("xbase: memo file not open")
	ErrInvalidPosition  = errors.New("xbase: invalid record position")
	ErrInvalidEncoding  = errors.New("xbase: invalid or unsupported encoding")
	ErrUnsupportedValue = errors.New("xbase: value not convertible to field type")
)

// Error is the single error type returned from the package. It carries a
// dotted context identifying where it originated (handy when grepping
// logs) together with the taxonomy Kind and the underlying cause.
type Error struct {
	context string
	kind    Kind
	err     error
}

func newError(context string, kind Kind, err error) *Error {
	return &Error{context: context, kind: kind, err: err}
}

func (e *Error) Error() string {
	if e.err == nil {
		return e.context + ": " + e.kind.String()
	}
	return e.context + ": " + e.err.Error()
}

// Kind returns the taxonomy classification for this error.
func (e *Error) Kind() Kind { return e.kind }

// Context returns the dotted origin string, e.g. "xbase-table-open-3".
func (e *Error) Context() string { return e.context }

// Unwrap exposes the underlying cause for errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.err }
