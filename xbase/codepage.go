package xbase

import (
	"bytes"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/transform"
)

// CodepageTag is the enumerated, package-level identifier for a table's
// codepage mark. It is distinct from the raw on-disk byte (see §6 of the
// spec): several raw bytes can decode to the same tag, but each tag has
// exactly one canonical byte for writing.
type CodepageTag int

const (
	CodepageNotSet CodepageTag = iota
	IBM437
	IBM850
	Windows1252
	IBM866
	GB18030
	Windows1250
	Windows1251
	UnsupportedCodepage
)

func (c CodepageTag) String() string {
	switch c {
	case CodepageNotSet:
		return "CodepageNotSet"
	case IBM437:
		return "IBM437"
	case IBM850:
		return "IBM850"
	case Windows1252:
		return "Windows1252"
	case IBM866:
		return "IBM866"
	case GB18030:
		return "GB18030"
	case Windows1250:
		return "Windows1250"
	case Windows1251:
		return "Windows1251"
	default:
		return "UnsupportedCodepage"
	}
}

// EncodingConverter translates between the table's on-disk byte
// representation and UTF-8, for Character and text Memo fields.
type EncodingConverter interface {
	Decode(in []byte) ([]byte, error)
	Encode(in []byte) ([]byte, error)
	Codepage() CodepageTag
}

// charmapConverter backs every single-byte codepage (IBM437, IBM850,
// Windows125x, IBM866) with golang.org/x/text/encoding/charmap.
type charmapConverter struct {
	tag CodepageTag
	cm  *charmap.Charmap
}

func (c *charmapConverter) Codepage() CodepageTag { return c.tag }

func (c *charmapConverter) Decode(in []byte) ([]byte, error) {
	if utf8.Valid(in) {
		return in, nil
	}
	return transformBytes(c.cm.NewDecoder(), in)
}

func (c *charmapConverter) Encode(in []byte) ([]byte, error) {
	return transformBytes(c.cm.NewEncoder(), in)
}

// gb18030Converter backs the multi-byte GB18030 codepage entry (§6,
// raw byte 0x7A) with golang.org/x/text/encoding/simplifiedchinese.
type gb18030Converter struct{}

func (gb18030Converter) Codepage() CodepageTag { return GB18030 }

func (gb18030Converter) Decode(in []byte) ([]byte, error) {
	if utf8.Valid(in) {
		return in, nil
	}
	return transformBytes(simplifiedchinese.GB18030.NewDecoder(), in)
}

func (gb18030Converter) Encode(in []byte) ([]byte, error) {
	return transformBytes(simplifiedchinese.GB18030.NewEncoder(), in)
}

// localeConverter is the fallback "locale" translator used when the
// table's codepage byte does not match any tag this package knows how to
// canonicalize. It assumes the bytes are already a reasonable local
// representation (ASCII/UTF-8 compatible) and passes them through
// unchanged; this mirrors the "decode best-effort" requirement of §6.
type localeConverter struct{}

func (localeConverter) Codepage() CodepageTag { return UnsupportedCodepage }
func (localeConverter) Decode(in []byte) ([]byte, error) { return in, nil }
func (localeConverter) Encode(in []byte) ([]byte, error) { return in, nil }

func transformBytes(t transform.Transformer, in []byte) ([]byte, error) {
	r := transform.NewReader(bytes.NewReader(in), t)
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, newError("xbase-codepage-transform-1", InvalidValue, err)
	}
	return out, nil
}

// converterForTag returns the converter implementing the given tag, or
// an error if the tag cannot be written (UnsupportedCodepage has no
// canonical byte, per §6).
func converterForTag(tag CodepageTag) (EncodingConverter, error) {
	switch tag {
	case CodepageNotSet:
		return localeConverter{}, nil
	case IBM437:
		return &charmapConverter{tag: IBM437, cm: charmap.CodePage437}, nil
	case IBM850:
		return &charmapConverter{tag: IBM850, cm: charmap.CodePage850}, nil
	case Windows1252:
		return &charmapConverter{tag: Windows1252, cm: charmap.Windows1252}, nil
	case IBM866:
		return &charmapConverter{tag: IBM866, cm: charmap.CodePage866}, nil
	case GB18030:
		return gb18030Converter{}, nil
	case Windows1250:
		return &charmapConverter{tag: Windows1250, cm: charmap.Windows1250}, nil
	case Windows1251:
		return &charmapConverter{tag: Windows1251, cm: charmap.Windows1251}, nil
	default:
		return nil, newError("xbase-codepage-converterfortag-1", UnsupportedFile, ErrInvalidEncoding)
	}
}

// codepageByte returns the canonical on-disk byte for tag. Each tag maps
// to exactly one byte - there is no "last written byte wins" fallthrough
// here (see DESIGN.md for why the teacher's switch-fallthrough behavior
// was fixed rather than reproduced).
func codepageByte(tag CodepageTag) (byte, error) {
	switch tag {
	case CodepageNotSet:
		return 0x00, nil
	case IBM437:
		return 0x01, nil
	case IBM850:
		return 0x02, nil
	case Windows1252:
		return 0x03, nil
	case IBM866:
		return 0x26, nil
	case GB18030:
		return 0x7A, nil
	case Windows1250:
		return 0xC8, nil
	case Windows1251:
		return 0xC9, nil
	default:
		return 0, newError("xbase-codepage-codepagebyte-1", UnsupportedFile, ErrInvalidEncoding)
	}
}

// tagForByte decodes the raw header byte into a tag, best-effort: bytes
// with no known mapping still resolve, to UnsupportedCodepage, rather
// than failing the whole table open.
func tagForByte(b byte) CodepageTag {
	switch b {
	case 0x00:
		return CodepageNotSet
	case 0x01:
		return IBM437
	case 0x02:
		return IBM850
	case 0x03:
		return Windows1252
	case 0x26, 0x65:
		return IBM866
	case 0x7A:
		return GB18030
	case 0xC8:
		return Windows1250
	case 0xC9:
		return Windows1251
	default:
		return UnsupportedCodepage
	}
}

// converterForByte is the open-time convenience that interprets the raw
// header byte directly into a ready-to-use converter.
func converterForByte(b byte) EncodingConverter {
	tag := tagForByte(b)
	conv, err := converterForTag(tag)
	if err != nil {
		return localeConverter{}
	}
	return conv
}
