// Package mediatype implements immutable media type values and the wildcard
// aware matching used for content negotiation.
package mediatype

import (
	"slices"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/net/http/httpguts"
)

// Param is a single media type parameter. Keys are lower case.
type Param struct {
	Key   string
	Value string
}

// MediaType is an immutable "type/subtype; key=value" value. Either side of the
// slash may be the "*" wildcard, but "*/subtype" is not a valid media type.
type MediaType struct {
	typ    string
	sub    string
	params []Param
}

// Well-known media types.
var (
	All         = New("*", "*")
	HTML        = New("text", "html")
	Plain       = New("text", "plain")
	JSON        = New("application", "json")
	YAML        = New("application", "yaml")
	Protobuf    = New("application", "x-protobuf")
	OctetStream = New("application", "octet-stream")
	Form        = New("application", "x-www-form-urlencoded")
	Multipart   = New("multipart", "form-data")
)

// New returns a media type. Type and subtype are lower cased.
func New(typ, sub string, params ...Param) MediaType {
	mt := MediaType{typ: strings.ToLower(typ), sub: strings.ToLower(sub)}
	for _, p := range params {
		mt = mt.WithParam(p.Key, p.Value)
	}

	return mt
}

// Type returns the primary type, e.g. "text".
func (m MediaType) Type() string { return m.typ }

// Subtype returns the subtype, e.g. "html".
func (m MediaType) Subtype() string { return m.sub }

// Name returns "type/subtype" without parameters.
func (m MediaType) Name() string { return m.typ + "/" + m.sub }

// IsZero reports whether m is the zero value.
func (m MediaType) IsZero() bool { return m.typ == "" }

// Params returns a copy of the parameters in their declared order.
func (m MediaType) Params() []Param { return slices.Clone(m.params) }

// Param returns the value of the parameter with the given key.
func (m MediaType) Param(key string) (string, bool) {
	key = strings.ToLower(key)
	for _, p := range m.params {
		if p.Key == key {
			return p.Value, true
		}
	}

	return "", false
}

// Charset returns the lower cased charset parameter, or the empty string.
func (m MediaType) Charset() string {
	cs, _ := m.Param("charset")
	return strings.ToLower(cs)
}

// WithParam returns a copy of m with the parameter set, replacing any existing value.
func (m MediaType) WithParam(key, value string) MediaType {
	key = strings.ToLower(key)
	params := slices.Clone(m.params)

	if idx := slices.IndexFunc(params, func(p Param) bool { return p.Key == key }); idx >= 0 {
		params[idx].Value = value
	} else {
		params = append(params, Param{Key: key, Value: value})
	}

	return MediaType{typ: m.typ, sub: m.sub, params: params}
}

// WithoutParam returns a copy of m without the parameter.
func (m MediaType) WithoutParam(key string) MediaType {
	key = strings.ToLower(key)

	return MediaType{typ: m.typ, sub: m.sub, params: slices.DeleteFunc(slices.Clone(m.params), func(p Param) bool {
		return p.Key == key
	})}
}

// Bare returns m without any parameters.
func (m MediaType) Bare() MediaType { return MediaType{typ: m.typ, sub: m.sub} }

// IsWildcard reports whether the type or the subtype is "*".
func (m MediaType) IsWildcard() bool { return m.typ == "*" || m.sub == "*" }

// Specificity ranks m for tie-breaking: 2 for a concrete type, 1 for "type/*"
// and 0 for "*/*".
func (m MediaType) Specificity() int {
	switch {
	case m.typ == "*":
		return 0
	case m.sub == "*":
		return 1
	default:
		return 2
	}
}

// Matches reports whether m and o are compatible: both the type and the subtype
// are equal or one of the two sides is a wildcard. Parameters are ignored.
func (m MediaType) Matches(o MediaType) bool {
	return (m.typ == "*" || o.typ == "*" || m.typ == o.typ) &&
		(m.sub == "*" || o.sub == "*" || m.sub == o.sub)
}

// Equal reports whether m and o have the same type, subtype and parameters.
func (m MediaType) Equal(o MediaType) bool {
	return m.typ == o.typ && m.sub == o.sub && slices.Equal(m.params, o.params)
}

// IsMultipart reports whether m is a multipart type.
func (m MediaType) IsMultipart() bool { return m.typ == "multipart" }

// IsTextual reports whether bodies of this type are character data that a
// charset applies to.
func (m MediaType) IsTextual() bool {
	if m.typ == "text" {
		return true
	}

	switch m.sub {
	case "json", "xml", "yaml", "x-yaml", "javascript", "x-www-form-urlencoded":
		return true
	}

	return strings.HasSuffix(m.sub, "+json") || strings.HasSuffix(m.sub, "+xml") || strings.HasSuffix(m.sub, "+yaml")
}

// String formats m as a header value.
func (m MediaType) String() string {
	if m.IsZero() {
		return ""
	}

	var b strings.Builder

	b.WriteString(m.typ)
	b.WriteByte('/')
	b.WriteString(m.sub)

	for _, p := range m.params {
		b.WriteString("; ")
		b.WriteString(p.Key)
		b.WriteByte('=')

		if isToken(p.Value) {
			b.WriteString(p.Value)
		} else {
			b.WriteString(strconv.Quote(p.Value))
		}
	}

	return b.String()
}

// MustParse is like Parse but panics on malformed input.
func MustParse(s string) MediaType {
	mt, err := Parse(s)
	if err != nil {
		panic("mediatype: " + err.Error())
	}

	return mt
}

// Parse parses a single media type. A bare "*" is read as "*/*".
func Parse(s string) (MediaType, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return MediaType{}, errors.New("empty media type")
	}

	head, rest, _ := strings.Cut(s, ";")

	head = strings.ToLower(strings.TrimSpace(head))
	if head == "*" {
		head = "*/*"
	}

	typ, sub, ok := strings.Cut(head, "/")
	if !ok || !isToken(typ) || !isToken(sub) {
		return MediaType{}, errors.Newf("malformed media type %q", s)
	}

	if typ == "*" && sub != "*" {
		return MediaType{}, errors.Newf("wildcard type with concrete subtype in %q", s)
	}

	params, err := parseParams(rest)
	if err != nil {
		return MediaType{}, errors.Wrapf(err, "malformed parameters in %q", s)
	}

	mt := MediaType{typ: typ, sub: sub}
	for _, p := range params {
		mt = mt.WithParam(p.Key, p.Value)
	}

	return mt, nil
}

// ParseList parses a comma separated list of media types, skipping empty elements.
func ParseList(s string) ([]MediaType, error) {
	var list []MediaType

	for _, elem := range splitList(s) {
		if strings.TrimSpace(elem) == "" {
			continue
		}

		mt, err := Parse(elem)
		if err != nil {
			return nil, err
		}

		list = append(list, mt)
	}

	return list, nil
}

// ParseAccept parses the values of one or more Accept headers. Entries are
// ordered by their "q" weight, highest first, keeping the order of the client
// among equal weights. Entries with q=0 are dropped and the "q" parameter is
// removed from the result.
func ParseAccept(values ...string) ([]MediaType, error) {
	type weighted struct {
		mt MediaType
		q  float64
	}

	var entries []weighted

	for _, v := range values {
		list, err := ParseList(v)
		if err != nil {
			return nil, err
		}

		for _, mt := range list {
			q := 1.0

			if qs, ok := mt.Param("q"); ok {
				if q, err = strconv.ParseFloat(qs, 64); err != nil || q < 0 || q > 1 {
					return nil, errors.Newf("invalid quality value %q for %s", qs, mt.Name())
				}
			}

			if q == 0 {
				continue
			}

			entries = append(entries, weighted{mt.WithoutParam("q"), q})
		}
	}

	slices.SortStableFunc(entries, func(a, b weighted) int {
		switch {
		case a.q > b.q:
			return -1
		case a.q < b.q:
			return 1
		default:
			return 0
		}
	})

	out := make([]MediaType, len(entries))
	for i, e := range entries {
		out[i] = e.mt
	}

	return out, nil
}

func parseParams(rest string) ([]Param, error) {
	var params []Param

	for {
		rest = strings.TrimLeft(rest, " \t")
		if rest == "" {
			return params, nil
		}

		if rest[0] == ';' {
			rest = rest[1:]
			continue
		}

		key, after, found := strings.Cut(rest, "=")
		if !found {
			return nil, errors.Newf("parameter %q without value", strings.TrimSpace(rest))
		}

		key = strings.ToLower(strings.TrimSpace(key))
		if !isToken(key) {
			return nil, errors.Newf("invalid parameter name %q", key)
		}

		rest = strings.TrimLeft(after, " \t")

		var val string

		if strings.HasPrefix(rest, `"`) {
			var err error
			if val, rest, err = consumeQuoted(rest); err != nil {
				return nil, err
			}
		} else {
			end := strings.IndexByte(rest, ';')
			if end < 0 {
				end = len(rest)
			}

			val, rest = strings.TrimSpace(rest[:end]), rest[end:]
			if !isToken(val) {
				return nil, errors.Newf("invalid value %q for parameter %q", val, key)
			}
		}

		params = append(params, Param{Key: key, Value: val})
	}
}

// consumeQuoted reads a quoted-string from the start of s and returns the
// unescaped value and what follows the closing quote.
func consumeQuoted(s string) (string, string, error) {
	var b strings.Builder

	for i := 1; i < len(s); i++ {
		switch c := s[i]; c {
		case '"':
			return b.String(), s[i+1:], nil
		case '\\':
			if i+1 >= len(s) {
				return "", "", errors.New("unterminated quoted string")
			}

			i++
			b.WriteByte(s[i])
		default:
			b.WriteByte(c)
		}
	}

	return "", "", errors.New("unterminated quoted string")
}

// splitList splits s on commas that are not inside a quoted string.
func splitList(s string) []string {
	var (
		parts  []string
		quoted bool
		start  int
	)

	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			if quoted {
				i++
			}
		case '"':
			quoted = !quoted
		case ',':
			if !quoted {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}

	return append(parts, s[start:])
}

func isToken(s string) bool {
	if s == "" {
		return false
	}

	for _, r := range s {
		if !httpguts.IsTokenRune(r) {
			return false
		}
	}

	return true
}
