// Package body selects and runs the parsers and writers that translate request
// and response bodies to application values.
package body

import (
	"io"
	"reflect"

	"github.com/advdv/bmsg/mediatype"
	"github.com/cockroachdb/errors"
)

var (
	// ErrUnsupportedMediaType is returned when no parser accepts the request content type.
	ErrUnsupportedMediaType = errors.New("unsupported media type")
	// ErrNotAcceptable is returned when no writer produces a type the client accepts.
	ErrNotAcceptable = errors.New("not acceptable")
	// ErrDecode marks a body that could not be decoded by its parser.
	ErrDecode = errors.New("malformed body")
)

// Parser decodes request bodies of its declared media types.
type Parser interface {
	Types() []mediatype.MediaType
	CanParse(t reflect.Type) bool
	Parse(src *Source, target any) error
}

// Writer encodes values as one of its declared media types.
type Writer interface {
	Types() []mediatype.MediaType
	CanWrite(t reflect.Type) bool
	Write(w io.Writer, v any) error
}

// Codec is both a Parser and a Writer.
type Codec interface {
	Parser
	Writer
}

// ViewWriter renders a named view with a model.
type ViewWriter interface {
	RenderView(w io.Writer, name string, model any) error
}

// ViewWriterFunc implements ViewWriter with a function.
type ViewWriterFunc func(w io.Writer, name string, model any) error

// RenderView implements [ViewWriter].
func (f ViewWriterFunc) RenderView(w io.Writer, name string, model any) error {
	return f(w, name, model)
}

// decodeError marks err as a body decoding failure.
func decodeError(err error, format string, args ...any) error {
	return errors.Mark(errors.Wrapf(err, format, args...), ErrDecode)
}
