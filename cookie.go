package bmsg

import (
	"net/http"
	"strings"
)

// Cookie is an immutable cookie. Domain, path and comment are optional and
// stay absent unless set. A max age of -1 denotes a session cookie, 0 asks the
// client to delete it.
type Cookie struct {
	name, value string
	domain      *string
	path        *string
	comment     *string
	httpOnly    bool
	secure      bool
	maxAge      int
}

// CookieOption configures a cookie built by [NewCookie].
type CookieOption func(*Cookie)

// CookieDomain sets the domain attribute.
func CookieDomain(d string) CookieOption { return func(c *Cookie) { c.domain = &d } }

// CookiePath sets the path attribute.
func CookiePath(p string) CookieOption { return func(c *Cookie) { c.path = &p } }

// CookieComment sets the comment attribute.
func CookieComment(s string) CookieOption { return func(c *Cookie) { c.comment = &s } }

// CookieHTTPOnly sets the HttpOnly flag.
func CookieHTTPOnly() CookieOption { return func(c *Cookie) { c.httpOnly = true } }

// CookieSecure sets the Secure flag.
func CookieSecure() CookieOption { return func(c *Cookie) { c.secure = true } }

// CookieMaxAge sets the max age in seconds.
func CookieMaxAge(secs int) CookieOption { return func(c *Cookie) { c.maxAge = secs } }

// NewCookie builds a session cookie with the given options applied.
func NewCookie(name, value string, opts ...CookieOption) Cookie {
	c := Cookie{name: name, value: value, maxAge: -1}
	for _, o := range opts {
		o(&c)
	}

	return c
}

func (c Cookie) Name() string            { return c.name }
func (c Cookie) Value() string           { return c.value }
func (c Cookie) Domain() (string, bool)  { return optional(c.domain) }
func (c Cookie) Path() (string, bool)    { return optional(c.path) }
func (c Cookie) Comment() (string, bool) { return optional(c.comment) }
func (c Cookie) HTTPOnly() bool          { return c.httpOnly }
func (c Cookie) Secure() bool            { return c.secure }
func (c Cookie) MaxAge() int             { return c.maxAge }

// Equal reports whether both cookies carry the same attributes.
func (c Cookie) Equal(o Cookie) bool {
	return c.name == o.name && c.value == o.value &&
		eqOptional(c.domain, o.domain) && eqOptional(c.path, o.path) && eqOptional(c.comment, o.comment) &&
		c.httpOnly == o.httpOnly && c.secure == o.secure && c.maxAge == o.maxAge
}

// ToHTTP translates the cookie to net/http. The comment has no net/http
// counterpart, see [Cookie.String].
func (c Cookie) ToHTTP() *http.Cookie {
	hc := &http.Cookie{
		Name:     c.name,
		Value:    c.value,
		HttpOnly: c.httpOnly,
		Secure:   c.secure,
	}

	hc.Domain, _ = c.Domain()
	hc.Path, _ = c.Path()

	switch {
	case c.maxAge < 0:
		hc.MaxAge = 0
	case c.maxAge == 0:
		hc.MaxAge = -1
	default:
		hc.MaxAge = c.maxAge
	}

	return hc
}

var commentSanitizer = strings.NewReplacer(";", "", "\r", "", "\n", "")

// String serializes the cookie for use in a Set-Cookie header, including the
// comment attribute. It is empty when the name is invalid.
func (c Cookie) String() string {
	s := c.ToHTTP().String()
	if s == "" || c.comment == nil {
		return s
	}

	return s + "; Comment=" + commentSanitizer.Replace(*c.comment)
}

// CookieFromHTTP translates a cookie parsed by net/http. Empty domain and path
// stay absent and a Comment attribute is recovered from the unparsed ones.
func CookieFromHTTP(hc *http.Cookie) Cookie {
	c := Cookie{name: hc.Name, value: hc.Value, httpOnly: hc.HttpOnly, secure: hc.Secure}

	if hc.Domain != "" {
		c.domain = &hc.Domain
	}

	if hc.Path != "" {
		c.path = &hc.Path
	}

	for _, attr := range hc.Unparsed {
		k, v, _ := strings.Cut(attr, "=")
		if strings.EqualFold(strings.TrimSpace(k), "comment") {
			v = strings.TrimSpace(v)
			c.comment = &v
		}
	}

	switch {
	case hc.MaxAge == 0:
		c.maxAge = -1
	case hc.MaxAge < 0:
		c.maxAge = 0
	default:
		c.maxAge = hc.MaxAge
	}

	return c
}

func optional(p *string) (string, bool) {
	if p == nil {
		return "", false
	}

	return *p, true
}

func eqOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}
