package bmsg

import (
	"io"
	"net/http"
	"strconv"

	"github.com/advdv/bmsg/body"
	"github.com/advdv/bmsg/mediatype"
	"github.com/cockroachdb/errors"
	"golang.org/x/net/http/httpguts"
)

// State of a response.
type State int

const (
	// StateFresh is a response whose status and headers can still be changed.
	StateFresh State = iota
	// StateFramed is a response whose status and headers went to the client.
	StateFramed
	// StateWritten is a response whose body is being written.
	StateWritten
	// StateClosed is a response that was sent completely.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateFresh:
		return "fresh"
	case StateFramed:
		return "framed"
	case StateWritten:
		return "written"
	case StateClosed:
		return "closed"
	default:
		return "State(" + strconv.Itoa(int(s)) + ")"
	}
}

// Response writes the response of a single request. Status, type, charset and
// headers are kept pending until the first write frames them. Only one body
// can be sent.
type Response struct {
	eng *engine
	w   http.ResponseWriter
	req *Request

	status  int
	typ     mediatype.MediaType
	charset string
	header  http.Header
	state   State
}

func newResponse(eng *engine, w http.ResponseWriter) *Response {
	return &Response{eng: eng, w: w, header: http.Header{}}
}

// Status sets the status code.
func (r *Response) Status(code int) *Response {
	if r.framed("status") {
		return r
	}

	r.status = code

	return r
}

// Type sets the media type. A charset parameter of mt also sets the charset.
func (r *Response) Type(mt mediatype.MediaType) *Response {
	if r.framed("type") {
		return r
	}

	if cs := mt.Charset(); cs != "" {
		r.charset = cs
	}

	r.typ = mt.WithoutParam("charset")

	return r
}

// Charset sets the charset of text bodies.
func (r *Response) Charset(cs string) *Response {
	if r.framed("charset") {
		return r
	}

	r.charset = cs

	return r
}

// Header sets a response header, replacing existing values.
func (r *Response) Header(name, value string) error {
	if err := validHeader(name, value); err != nil {
		return err
	}

	if r.framed("header " + name) {
		return nil
	}

	r.header.Set(name, value)

	return nil
}

// AddHeader adds a value to a response header.
func (r *Response) AddHeader(name, value string) error {
	if err := validHeader(name, value); err != nil {
		return err
	}

	if r.framed("header " + name) {
		return nil
	}

	r.header.Add(name, value)

	return nil
}

// SetCookie adds a Set-Cookie header for c.
func (r *Response) SetCookie(c Cookie) error {
	s := c.String()
	if s == "" {
		return errors.Newf("bmsg: invalid cookie %q", c.Name())
	}

	if r.framed("cookie " + c.Name()) {
		return nil
	}

	r.header.Add("Set-Cookie", s)

	return nil
}

func (r *Response) addCookie(hc *http.Cookie) {
	if s := hc.String(); s != "" && !r.framed("cookie "+hc.Name) {
		r.header.Add("Set-Cookie", s)
	}
}

func validHeader(name, value string) error {
	if !httpguts.ValidHeaderFieldName(name) {
		return errors.Newf("bmsg: invalid header name %q", name)
	}

	if !httpguts.ValidHeaderFieldValue(value) {
		return errors.Newf("bmsg: invalid value for header %q", name)
	}

	return nil
}

// framed reports whether the response is framed, reporting the attempted
// mutation op if so.
func (r *Response) framed(op string) bool {
	if r.state == StateFresh {
		return false
	}

	if r.eng.cfg.Strict {
		panic("bmsg: " + op + " after the response was framed")
	}

	r.eng.logs.LogFramingViolation(op)

	return true
}

// Send writes v as the body. Strings are written as text in the response
// charset and byte slices and readers as they are. Nil sends no body. Other
// values are encoded by the writer negotiated against the request Accept
// header; if there is none the response becomes an empty 406 and
// [ErrNotAcceptable] is returned.
func (r *Response) Send(v any) error {
	if r.state != StateFresh {
		return errors.Wrapf(ErrResponseSent, "send %T", v)
	}

	switch v := v.(type) {
	case nil:
		r.frame(mediatype.MediaType{}, false)
		r.state = StateClosed

		return nil
	case string:
		return r.Text(func(w io.Writer) error {
			_, err := io.WriteString(w, v)
			return err
		})
	case []byte:
		return r.Bytes(func(w io.Writer) error {
			_, err := w.Write(v)
			return err
		})
	case io.Reader:
		return r.Bytes(func(w io.Writer) error {
			if c, ok := v.(io.Closer); ok {
				defer c.Close()
			}

			_, err := io.Copy(w, v)

			return err
		})
	default:
		return r.encode(v)
	}
}

// SendStatus sets the status code and sends v.
func (r *Response) SendStatus(code int, v any) error {
	if r.state != StateFresh {
		return errors.Wrapf(ErrResponseSent, "send %T", v)
	}

	return r.Status(code).Send(v)
}

// Text frames the response as text and calls fn with a writer that encodes to
// the response charset. The type defaults to the configured default type.
func (r *Response) Text(fn func(w io.Writer) error) error {
	if r.state != StateFresh {
		return errors.Wrap(ErrResponseSent, "write text")
	}

	tw, err := body.EncodeText(uncloseable{r.w}, r.responseCharset())
	if err != nil {
		return err
	}

	r.frame(r.eng.cfg.DefaultType, true)
	r.state = StateWritten

	if err := fn(uncloseable{tw}); err != nil {
		return err
	}

	if err := tw.Close(); err != nil {
		return errors.Wrap(err, "flush text")
	}

	r.state = StateClosed

	return nil
}

// Bytes frames the response as binary and calls fn with the body writer. The
// type defaults to application/octet-stream.
func (r *Response) Bytes(fn func(w io.Writer) error) error {
	if r.state != StateFresh {
		return errors.Wrap(ErrResponseSent, "write bytes")
	}

	r.frame(mediatype.OctetStream, false)
	r.state = StateWritten

	if err := fn(uncloseable{r.w}); err != nil {
		return err
	}

	r.state = StateClosed

	return nil
}

// Render renders the named view with model through the configured view writer
// and sends the result as text. Nothing is framed when rendering fails.
func (r *Response) Render(view string, model any) error {
	if r.state != StateFresh {
		return errors.Wrapf(ErrResponseSent, "render %q", view)
	}

	if r.eng.cfg.Views == nil {
		return errors.Newf("bmsg: no view writer configured to render %q", view)
	}

	buf := newLimitedBuffer(r.eng.cfg.BufferLimit)
	defer buf.free()

	tw, err := body.EncodeText(buf, r.responseCharset())
	if err != nil {
		return err
	}

	if err := r.eng.cfg.Views.RenderView(uncloseable{tw}, view, model); err != nil {
		return errors.Wrapf(err, "render %q", view)
	}

	if err := tw.Close(); err != nil {
		return errors.Wrapf(err, "render %q", view)
	}

	return r.sendBuffered(r.eng.cfg.DefaultType, true, buf.Bytes())
}

func (r *Response) encode(v any) error {
	accepts := r.accepts()
	w, mt := r.eng.cfg.Bodies.WriterFor(v, accepts)

	buf := newLimitedBuffer(r.eng.cfg.BufferLimit)
	defer buf.free()

	if err := w.Write(buf, v); err != nil {
		if errors.Is(err, ErrNotAcceptable) {
			r.fail(CodeNotAcceptable, "")
		}

		return err
	}

	r.typ = mt

	return r.sendBuffered(mt, false, buf.Bytes())
}

func (r *Response) sendBuffered(def mediatype.MediaType, text bool, data []byte) error {
	r.frame(def, text)
	r.state = StateWritten

	if _, err := r.w.Write(data); err != nil {
		return err
	}

	r.state = StateClosed

	return nil
}

// accepts returns what the writer may produce: the response type if it was
// set and the client accepts it, else the Accept list of the request.
func (r *Response) accepts() []mediatype.MediaType {
	accept := []mediatype.MediaType{mediatype.All}
	if r.req != nil {
		accept = r.req.accept
	}

	if r.typ.IsZero() {
		return accept
	}

	if mediatype.NewMatcher(accept...).Matches(r.typ) {
		return []mediatype.MediaType{r.typ}
	}

	return nil
}

func (r *Response) responseCharset() string {
	if r.charset != "" {
		return r.charset
	}

	return r.eng.cfg.Charset
}

// frame pushes status and headers to the client. Text bodies get the charset
// parameter.
func (r *Response) frame(def mediatype.MediaType, text bool) {
	h := r.w.Header()
	for k, v := range r.header {
		h[k] = v
	}

	typ := r.typ
	if typ.IsZero() {
		typ = def
	}

	if !typ.IsZero() {
		if text {
			typ = typ.WithParam("charset", r.responseCharset())
		}

		h.Set("Content-Type", typ.String())
	}

	r.w.WriteHeader(r.StatusCode())
	r.state = StateFramed
}

// fail replaces the pending response with an error response. Not acceptable
// responses have no body.
func (r *Response) fail(code Code, msg string) {
	r.header = http.Header{}
	r.state = StateClosed

	if code == CodeNotAcceptable {
		r.w.WriteHeader(int(code))
		return
	}

	http.Error(r.w, msg, int(code))
}

// finish frames a response the handler left untouched.
func (r *Response) finish() {
	if r.state == StateFresh {
		r.frame(mediatype.MediaType{}, false)
		r.state = StateClosed
	}
}

// serveStd lets a standard handler write the response. Pending headers are
// handed over first.
func (r *Response) serveStd(h http.Handler, req *http.Request) {
	if r.state != StateFresh {
		r.framed("serve " + req.URL.Path)
		return
	}

	for k, v := range r.header {
		r.w.Header()[k] = v
	}

	rec := &recordingWriter{ResponseWriter: r.w}
	h.ServeHTTP(rec, req)

	if rec.status != 0 {
		r.status, r.state = rec.status, StateClosed
	}
}

// Committed reports whether the status and headers went to the client.
func (r *Response) Committed() bool { return r.state != StateFresh }

// State returns the state of the response.
func (r *Response) State() State { return r.state }

// StatusCode returns the status that is or will be sent.
func (r *Response) StatusCode() int {
	if r.status == 0 {
		return http.StatusOK
	}

	return r.status
}

// recordingWriter remembers the status a standard handler wrote.
type recordingWriter struct {
	http.ResponseWriter
	status int
}

func (w *recordingWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}

	w.ResponseWriter.WriteHeader(code)
}

func (w *recordingWriter) Write(p []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}

	return w.ResponseWriter.Write(p)
}

func (w *recordingWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }
