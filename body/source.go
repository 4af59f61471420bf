package body

import (
	"io"
	"strings"

	"github.com/advdv/bmsg/mediatype"
	"github.com/cockroachdb/errors"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// Source is the request body handed to a [Parser]. It exposes the raw bytes as
// well as text decoded from the request charset to UTF-8.
type Source struct {
	r       io.Reader
	typ     mediatype.MediaType
	charset string
}

// NewSource wraps r. The reader is never closed through the source.
func NewSource(r io.Reader, typ mediatype.MediaType, charset string) *Source {
	return &Source{r: struct{ io.Reader }{r}, typ: typ, charset: charset}
}

// Type returns the content type of the body.
func (s *Source) Type() mediatype.MediaType { return s.typ }

// Charset returns the charset the text of the body is encoded in.
func (s *Source) Charset() string { return s.charset }

// Bytes returns the raw body.
func (s *Source) Bytes() io.Reader { return s.r }

// Text returns the body decoded to UTF-8.
func (s *Source) Text() (io.Reader, error) { return DecodeText(s.r, s.charset) }

// Encoding looks up a charset by its WHATWG name or label.
func Encoding(charset string) (encoding.Encoding, error) {
	enc, err := htmlindex.Get(charset)
	if err != nil {
		return nil, errors.Wrapf(err, "unknown charset %q", charset)
	}

	return enc, nil
}

// DecodeText returns a reader that decodes r from charset to UTF-8.
func DecodeText(r io.Reader, charset string) (io.Reader, error) {
	if isUTF8(charset) {
		return r, nil
	}

	enc, err := Encoding(charset)
	if err != nil {
		return nil, err
	}

	return enc.NewDecoder().Reader(r), nil
}

// EncodeText returns a writer that encodes UTF-8 text written to it into
// charset. Close flushes any pending bytes but does not close w.
func EncodeText(w io.Writer, charset string) (io.WriteCloser, error) {
	if isUTF8(charset) {
		return nopCloser{w}, nil
	}

	enc, err := Encoding(charset)
	if err != nil {
		return nil, err
	}

	return transform.NewWriter(w, enc.NewEncoder()), nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func isUTF8(charset string) bool {
	return charset == "" || strings.EqualFold(charset, "utf-8") || strings.EqualFold(charset, "utf8")
}
