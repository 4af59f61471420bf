// Package httppattern parses the route patterns accepted by http.ServeMux so they
// can be reversed into paths and inspected for their wildcard names.
package httppattern

import (
	"net/url"
	"strings"

	"github.com/cockroachdb/errors"
)

type segmentKind int

const (
	literal segmentKind = iota
	wildcard
	multi    // {name...}
	dollar   // {$}
	trailing // pattern ends in a slash
)

type segment struct {
	kind segmentKind
	s    string // literal text or wildcard name
}

// Pattern is a parsed ServeMux pattern such as "GET example.com/items/{id}".
type Pattern struct {
	str      string
	method   string
	host     string
	segments []segment
}

// ParsePattern parses s with the grammar of http.ServeMux: "[METHOD ][HOST]/[PATH]".
func ParsePattern(s string) (*Pattern, error) {
	if s == "" {
		return nil, errors.New("empty pattern")
	}

	pat := &Pattern{str: s}
	rest := s

	if method, after, found := strings.Cut(rest, " "); found {
		if method == "" || strings.ContainsAny(method, "/{}") {
			return nil, errors.Newf("invalid method %q in pattern %q", method, s)
		}

		pat.method, rest = method, strings.TrimLeft(after, " \t")
	}

	slash := strings.IndexByte(rest, '/')
	if slash < 0 {
		return nil, errors.Newf("host/path missing / in pattern %q", s)
	}

	pat.host, rest = rest[:slash], rest[slash+1:]

	seen := map[string]bool{}
	parts := strings.Split(rest, "/")

	for i, part := range parts {
		last := i == len(parts)-1

		if part == "" && last {
			pat.segments = append(pat.segments, segment{kind: trailing})
			continue
		}

		if !strings.HasPrefix(part, "{") {
			if strings.ContainsAny(part, "{}") {
				return nil, errors.Newf("bad wildcard segment %q in pattern %q", part, s)
			}

			pat.segments = append(pat.segments, segment{kind: literal, s: part})

			continue
		}

		if !strings.HasSuffix(part, "}") {
			return nil, errors.Newf("bad wildcard segment %q in pattern %q", part, s)
		}

		name := part[1 : len(part)-1]

		switch {
		case name == "$":
			if !last {
				return nil, errors.Newf("{$} not at end in pattern %q", s)
			}

			pat.segments = append(pat.segments, segment{kind: dollar})

			continue
		case strings.HasSuffix(name, "..."):
			if !last {
				return nil, errors.Newf("{...} wildcard not at end in pattern %q", s)
			}

			name = strings.TrimSuffix(name, "...")
			pat.segments = append(pat.segments, segment{kind: multi, s: name})
		default:
			pat.segments = append(pat.segments, segment{kind: wildcard, s: name})
		}

		if !isIdent(name) {
			return nil, errors.Newf("bad wildcard name %q in pattern %q", name, s)
		}

		if seen[name] {
			return nil, errors.Newf("duplicate wildcard name %q in pattern %q", name, s)
		}

		seen[name] = true
	}

	return pat, nil
}

// String returns the pattern as it was parsed.
func (p *Pattern) String() string { return p.str }

// Method returns the method of the pattern, empty if it matches any method.
func (p *Pattern) Method() string { return p.method }

// Host returns the host of the pattern, empty if it matches any host.
func (p *Pattern) Host() string { return p.host }

// Wildcards returns the wildcard names in the order they appear in the path.
func (p *Pattern) Wildcards() []string {
	var names []string

	for _, seg := range p.segments {
		if seg.kind == wildcard || seg.kind == multi {
			names = append(names, seg.s)
		}
	}

	return names
}

// Build substitutes vals for the wildcards of p, in order, and returns the path.
func Build(p *Pattern, vals ...string) (string, error) {
	var b strings.Builder

	idx := 0
	for _, seg := range p.segments {
		b.WriteByte('/')

		switch seg.kind {
		case literal:
			b.WriteString(seg.s)
		case wildcard, multi:
			if idx >= len(vals) {
				return "", errors.Newf("not enough values for pattern %q: got %d", p.str, len(vals))
			}

			if seg.kind == multi {
				b.WriteString(escapeSegments(vals[idx]))
			} else {
				b.WriteString(url.PathEscape(vals[idx]))
			}

			idx++
		case dollar, trailing:
		}
	}

	if idx < len(vals) {
		return "", errors.Newf("too many values for pattern %q: got %d, want %d", p.str, len(vals), idx)
	}

	return b.String(), nil
}

func escapeSegments(s string) string {
	parts := strings.Split(s, "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}

	return strings.Join(parts, "/")
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}

	for i, c := range s {
		switch {
		case c == '_', c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z':
		case c >= '0' && c <= '9' && i > 0:
		default:
			return false
		}
	}

	return true
}
