// Package encoding converts text resolved from layer records into UTF-8.
//
// Layer text is stored as zero-terminated byte runs in a client-specific
// code page. The decoder keeps those bytes as-is; callers pick a charset
// here once it is known for their data.
package encoding

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	xenc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// Charset names accepted by Lookup.
const (
	Raw         = "raw"
	UTF8        = "utf-8"
	ShiftJIS    = "shift_jis"
	EUCKR       = "euc-kr"
	Windows1252 = "windows-1252"
)

// ErrUnknownCharset is returned for a charset name Lookup does not know.
var ErrUnknownCharset = errors.New("unknown charset")

// Decoder converts raw record text to UTF-8.
type Decoder struct {
	name string
	enc  xenc.Encoding // nil for raw and utf-8
}

// Lookup returns the decoder for name. Names are case-insensitive and
// "" selects Raw.
func Lookup(name string) (*Decoder, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch n {
	case "", Raw:
		return &Decoder{name: Raw}, nil
	case UTF8, "utf8":
		return &Decoder{name: UTF8}, nil
	case ShiftJIS, "sjis", "shift-jis":
		return &Decoder{name: ShiftJIS, enc: japanese.ShiftJIS}, nil
	case EUCKR, "euckr":
		return &Decoder{name: EUCKR, enc: korean.EUCKR}, nil
	case Windows1252, "cp1252":
		return &Decoder{name: Windows1252, enc: charmap.Windows1252}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownCharset, name)
	}
}

// Name returns the canonical charset name.
func (d *Decoder) Name() string {
	return d.name
}

// Decode converts s. Raw returns s unchanged; UTF-8 replaces invalid
// sequences with U+FFFD.
func (d *Decoder) Decode(s string) (string, error) {
	switch {
	case d.name == Raw:
		return s, nil
	case d.enc == nil:
		return strings.ToValidUTF8(s, string(utf8.RuneError)), nil
	}

	out, _, err := transform.String(d.enc.NewDecoder(), s)
	if err != nil {
		return "", fmt.Errorf("decoding %s text: %w", d.name, err)
	}
	return out, nil
}

// DecodeOrRaw converts s and falls back to s if conversion fails.
func (d *Decoder) DecodeOrRaw(s string) string {
	out, err := d.Decode(s)
	if err != nil {
		return s
	}
	return out
}

// Encode converts UTF-8 text back to the charset, for building fixtures
// and lookups against raw record text.
func (d *Decoder) Encode(s string) ([]byte, error) {
	if d.enc == nil {
		return []byte(s), nil
	}
	out, _, err := transform.Bytes(d.enc.NewEncoder(), []byte(s))
	if err != nil {
		return nil, fmt.Errorf("encoding %s text: %w", d.name, err)
	}
	return out, nil
}

// Decode converts raw text from the named charset to UTF-8.
func Decode(charset, raw string) (string, error) {
	d, err := Lookup(charset)
	if err != nil {
		return "", err
	}
	return d.Decode(raw)
}

// TrimNull cuts data at its first zero byte.
func TrimNull(data []byte) []byte {
	if idx := bytes.IndexByte(data, 0); idx >= 0 {
		return data[:idx]
	}
	return data
}
