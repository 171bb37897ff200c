// Package nativetext decodes fixed-size, NUL-terminated text fields of
// native records into Go strings.
//
// Decoding is strict. Bytes that are not valid in the configured charset
// produce an error wrapping ErrDecodingFailed instead of replacement or
// empty text.
package nativetext

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

// ErrDecodingFailed is returned when a native text field cannot be decoded.
var ErrDecodingFailed = errors.New("native text decoding failed")

// ErrUnknownCharset is returned by NewDecoder for unsupported charset names.
var ErrUnknownCharset = errors.New("unknown charset")

// UTF8 is the canonical name of the default charset.
const UTF8 = "utf-8"

// CString returns b up to, not including, the first NUL byte.
// Without a NUL the whole slice is returned.
func CString(b []byte) []byte {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return b[:i]
	}
	return b
}

// Decoder converts native text to UTF-8 strings. The zero value decodes UTF-8.
type Decoder struct {
	charset string
	enc     encoding.Encoding
}

// NewDecoder returns a decoder for charset. Empty and "utf-8"/"utf8"
// select UTF-8; other names are looked up in the IANA registry.
func NewDecoder(charset string) (Decoder, error) {
	name := strings.ToLower(strings.TrimSpace(charset))
	if name == "" || name == UTF8 || name == "utf8" {
		return Decoder{}, nil
	}

	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil {
		return Decoder{}, fmt.Errorf("%w: %s", ErrUnknownCharset, charset)
	}
	if enc == nil {
		return Decoder{}, fmt.Errorf("%w: %s is not supported", ErrUnknownCharset, charset)
	}

	return Decoder{charset: name, enc: enc}, nil
}

// Charset returns the decoder's charset name.
func (d Decoder) Charset() string {
	if d.enc == nil {
		return UTF8
	}
	return d.charset
}

// Decode converts a NUL-terminated native field to a string.
func (d Decoder) Decode(field []byte) (string, error) {
	raw := CString(field)

	if d.enc == nil {
		if !utf8.Valid(raw) {
			return "", fmt.Errorf("%w: invalid %s in %q", ErrDecodingFailed, UTF8, raw)
		}
		return string(raw), nil
	}

	out, err := d.enc.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrDecodingFailed, d.charset, err)
	}
	// Legacy decoders substitute U+FFFD for unmappable bytes.
	if bytes.ContainsRune(out, utf8.RuneError) {
		return "", fmt.Errorf("%w: unmappable %s bytes in %q", ErrDecodingFailed, d.charset, raw)
	}
	return string(out), nil
}
