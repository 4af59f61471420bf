package bmsg

import (
	"context"
	"io"
	"net"
	"net/http"
	"reflect"
	"slices"

	"github.com/advdv/bmsg/body"
	"github.com/advdv/bmsg/mediatype"
	"github.com/advdv/bmsg/param"
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
	"golang.org/x/text/language"
)

// Request is the view of an http request that handlers see. It is bound to a
// route once constructed; [Request.WithRoute] returns a rebound copy. A
// request is owned by a single handler invocation.
type Request struct {
	eng   *engine
	std   *http.Request
	route Route

	typ     mediatype.MediaType
	accept  []mediatype.MediaType
	charset string
	locale  language.Tag

	params    *param.Resolution
	shared    *exchange
	setCookie func(*http.Cookie)
}

// exchange is the state shared by all copies of a request: they read the
// same stream, upload the same parts and see the same session.
type exchange struct {
	consumed bool
	parts    *param.Parts

	session Session
	// looked records that the provider was asked for an existing session.
	looked bool
}

func newRequest(eng *engine, r *http.Request, setCookie func(*http.Cookie)) (*Request, error) {
	typ := mediatype.All

	if ct := r.Header.Get("Content-Type"); ct != "" {
		var err error
		if typ, err = mediatype.Parse(ct); err != nil {
			return nil, NewError(CodeBadRequest, errors.Wrap(err, "parse content type"))
		}
	}

	// Without a header anything is acceptable. A header refusing every type
	// leaves nothing.
	accept := []mediatype.MediaType{mediatype.All}

	if values := r.Header.Values("Accept"); len(values) > 0 {
		var err error
		if accept, err = mediatype.ParseAccept(values...); err != nil {
			return nil, NewError(CodeBadRequest, errors.Wrap(err, "parse accept"))
		}
	}

	charset := typ.Charset()
	if charset == "" {
		charset = eng.cfg.Charset
	}

	locale := eng.cfg.Locale
	if tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language")); err == nil && len(tags) > 0 {
		locale = tags[0]
	}

	req := &Request{
		eng:       eng,
		std:       r,
		typ:       typ,
		accept:    accept,
		charset:   charset,
		locale:    locale,
		shared:    &exchange{parts: param.NewParts()},
		setCookie: setCookie,
	}

	return req.bind(eng.cfg.Router.BindRoute(r)), nil
}

func (r *Request) bind(rt Route) *Request {
	r.route = rt
	r.params = r.eng.resolver.Bind(param.Input{
		Request: r.std,
		Vars: lo.Map(rt.Vars, func(v RouteVar, _ int) param.Var {
			return param.Var{Name: v.Name, Value: v.Value}
		}),
		Type:  r.typ,
		Parts: r.shared.parts,
	})

	return r
}

// WithRoute returns a copy of r bound to rt. Parameters are resolved again
// for the copy; the body, its uploads and the session stay shared.
func (r *Request) WithRoute(rt Route) *Request {
	r2 := *r
	return r2.bind(rt)
}

// WithContext returns a copy of r whose standard request carries ctx.
func (r *Request) WithContext(ctx context.Context) *Request {
	r2 := *r
	r2.std = r.std.WithContext(ctx)

	return &r2
}

func (r *Request) withStd(std *http.Request) *Request {
	r2 := *r
	r2.std = std

	return &r2
}

// Param returns the view of the named parameter. Path variables come first,
// then query and form values. It fails only when the form cannot be read.
func (r *Request) Param(name string) (*param.View, error) {
	return r.params.Lookup(name)
}

// Params returns the views of all parameters.
func (r *Request) Params() (*param.Set, error) {
	return r.params.All()
}

// Header returns the values of the named header as a view.
func (r *Request) Header(name string) *param.View {
	return param.NewView(http.CanonicalHeaderKey(name), r.std.Header.Values(name), mediatype.All, r.eng.cfg.Converters)
}

// Headers returns views of all headers, sorted by name.
func (r *Request) Headers() *param.Set {
	names := lo.Keys(r.std.Header)
	slices.Sort(names)

	return param.NewSet(lo.Map(names, func(name string, _ int) *param.View { return r.Header(name) })...)
}

// Cookie returns the named request cookie.
func (r *Request) Cookie(name string) (Cookie, bool) {
	hc, err := r.std.Cookie(name)
	if err != nil {
		return Cookie{}, false
	}

	return CookieFromHTTP(hc), true
}

// Cookies returns the request cookies in the order they were sent.
func (r *Request) Cookies() []Cookie {
	return lo.Map(r.std.Cookies(), func(hc *http.Cookie, _ int) Cookie { return CookieFromHTTP(hc) })
}

// Accepts returns the candidate the client prefers. Accept entries are tried
// by preference; the most specific candidate matching an entry wins, the
// earlier candidate on ties.
func (r *Request) Accepts(candidates ...mediatype.MediaType) (mediatype.MediaType, bool) {
	res, ok := mediatype.Match(candidates, r.accept)
	return res.Server, ok
}

// Body decodes the request body into target, which must be a pointer. The
// parser is picked by the content type before any byte is read, failing
// with [ErrUnsupportedMediaType]. The body can be read once.
func (r *Request) Body(target any) error {
	t := reflect.TypeOf(target)
	if t == nil || t.Kind() != reflect.Pointer || reflect.ValueOf(target).IsNil() {
		return errors.Newf("bmsg: body target must be a non-nil pointer, got %T", target)
	}

	p, err := r.eng.cfg.Bodies.ParserFor(t, []mediatype.MediaType{r.typ})
	if err != nil {
		return err
	}

	if r.shared.consumed {
		return ErrBodyConsumed
	}

	r.shared.consumed = true

	rc := r.std.Body
	if rc == nil {
		rc = http.NoBody
	}

	var rd io.Reader = rc
	if limit := r.eng.cfg.MaxBodyBytes; limit > 0 {
		rd = http.MaxBytesReader(nil, rc, limit)
	}

	return p.Parse(body.NewSource(rd, r.typ, r.charset), target)
}

// BodyAs decodes the request body into a new value of type T.
func BodyAs[T any](r *Request) (T, error) {
	var v T
	err := r.Body(&v)

	return v, err
}

// Session returns the session of the request, creating it if needed. The
// provider is asked once per request; later calls return the same session.
func (r *Request) Session(ctx context.Context) (Session, error) {
	if r.eng.cfg.Sessions == nil {
		return nil, ErrNoSessions
	}

	if r.shared.session != nil {
		return r.shared.session, nil
	}

	s, err := r.eng.cfg.Sessions.GetOrCreate(ctx, r.std, r.setCookie)
	if err != nil {
		return nil, err
	}

	r.shared.session = s

	return s, nil
}

// IfSession returns the session of the request if it has one.
func (r *Request) IfSession(ctx context.Context) (Session, bool, error) {
	if r.eng.cfg.Sessions == nil {
		return nil, false, ErrNoSessions
	}

	if r.shared.session != nil || r.shared.looked {
		return r.shared.session, r.shared.session != nil, nil
	}

	s, ok, err := r.eng.cfg.Sessions.GetIfExists(ctx, r.std)
	if err != nil {
		return nil, false, err
	}

	r.shared.looked = true

	if ok {
		r.shared.session = s
	}

	return s, ok, nil
}

func (r *Request) Path() string                  { return r.std.URL.Path }
func (r *Request) Method() string                { return r.std.Method }
func (r *Request) Route() Route                  { return r.route }
func (r *Request) Type() mediatype.MediaType     { return r.typ }
func (r *Request) Accept() []mediatype.MediaType { return slices.Clone(r.accept) }
func (r *Request) Charset() string               { return r.charset }
func (r *Request) Locale() language.Tag          { return r.locale }
func (r *Request) Length() int64                 { return r.std.ContentLength }
func (r *Request) Protocol() string              { return r.std.Proto }
func (r *Request) Secure() bool                  { return r.std.TLS != nil }
func (r *Request) Std() *http.Request            { return r.std }
func (r *Request) Context() context.Context      { return r.std.Context() }

// IP returns the address of the client without the port.
func (r *Request) IP() string {
	host, _, err := net.SplitHostPort(r.std.RemoteAddr)
	if err != nil {
		return r.std.RemoteAddr
	}

	return host
}

// Hostname returns the requested host without the port.
func (r *Request) Hostname() string {
	host, _, err := net.SplitHostPort(r.std.Host)
	if err != nil {
		return r.std.Host
	}

	return host
}
