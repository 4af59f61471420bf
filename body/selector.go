package body

import (
	"io"
	"reflect"
	"strings"

	"github.com/advdv/bmsg/mediatype"
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// Selector picks parsers and writers by matching their declared media types
// against the negotiated types. Configure it during setup; selection is safe
// for concurrent use afterwards.
type Selector struct {
	parsers []Parser
	writers []Writer
}

// NewSelector returns an empty selector.
func NewSelector() *Selector {
	return &Selector{}
}

// Default returns a selector with the JSON, YAML, protobuf and text codecs
// registered, in that order.
func Default() *Selector {
	return NewSelector().With(JSON(), YAML(), Protobuf(), Text())
}

// With registers codecs as both parsers and writers.
func (s *Selector) With(codecs ...Codec) *Selector {
	for _, c := range codecs {
		s.parsers = append(s.parsers, c)
		s.writers = append(s.writers, c)
	}

	return s
}

// WithParsers registers parsers.
func (s *Selector) WithParsers(p ...Parser) *Selector {
	s.parsers = append(s.parsers, p...)
	return s
}

// WithWriters registers writers.
func (s *Selector) WithWriters(w ...Writer) *Selector {
	s.writers = append(s.writers, w...)
	return s
}

// ParserFor returns the parser for decoding a body of one of the acceptable
// types into t. The parser whose matching declared type is most specific wins,
// earlier registrations winning ties. It fails with [ErrUnsupportedMediaType]
// without touching any body.
func (s *Selector) ParserFor(t reflect.Type, acceptable []mediatype.MediaType) (Parser, error) {
	var (
		best     Parser
		bestSpec = -1
	)

	for _, p := range s.parsers {
		if !p.CanParse(t) {
			continue
		}

		if res, ok := mediatype.Match(p.Types(), acceptable); ok && res.Server.Specificity() > bestSpec {
			best, bestSpec = p, res.Server.Specificity()
		}
	}

	if best == nil {
		return nil, errors.Mark(
			errors.Newf("no parser for %v from %s", t, formatList(acceptable)),
			ErrUnsupportedMediaType)
	}

	return best, nil
}

// WriterFor returns a writer for v and the concrete media type it will produce.
// The accepted types are tried in order; for each, the writer with the most
// specific matching declared type wins, earlier registrations winning ties.
// When nothing matches the returned writer fails with [ErrNotAcceptable] once
// it is invoked, and the returned media type is the zero value.
func (s *Selector) WriterFor(v any, accepts []mediatype.MediaType) (Writer, mediatype.MediaType) {
	t := reflect.TypeOf(v)

	for _, accept := range accepts {
		var (
			best     Writer
			bestType mediatype.MediaType
		)

		for _, w := range s.writers {
			if !w.CanWrite(t) {
				continue
			}

			res, ok := mediatype.Match(w.Types(), []mediatype.MediaType{accept})
			if ok && (best == nil || res.Server.Specificity() > bestType.Specificity()) {
				best, bestType = w, res.Server
			}
		}

		if best != nil {
			return best, concrete(accept, bestType)
		}
	}

	return notAcceptable{t: t, accepts: accepts}, mediatype.MediaType{}
}

// concrete picks the media type to announce: the client entry if it names a
// concrete type, else the declared type of the writer.
func concrete(accept, declared mediatype.MediaType) mediatype.MediaType {
	switch {
	case !accept.IsWildcard():
		return accept.Bare()
	case !declared.IsWildcard():
		return declared.Bare()
	default:
		return mediatype.OctetStream
	}
}

type notAcceptable struct {
	t       reflect.Type
	accepts []mediatype.MediaType
}

func (notAcceptable) Types() []mediatype.MediaType { return nil }
func (notAcceptable) CanWrite(reflect.Type) bool   { return false }

func (n notAcceptable) Write(io.Writer, any) error {
	return errors.Mark(
		errors.Newf("no writer for %v producing %s", n.t, formatList(n.accepts)),
		ErrNotAcceptable)
}

func formatList(types []mediatype.MediaType) string {
	if len(types) == 0 {
		return "[]"
	}

	return "[" + strings.Join(lo.Map(types, func(mt mediatype.MediaType, _ int) string {
		return mt.String()
	}), ", ") + "]"
}
