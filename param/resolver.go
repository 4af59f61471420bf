package param

import (
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"slices"
	"strings"

	"github.com/advdv/bmsg/body"
	"github.com/advdv/bmsg/convert"
	"github.com/advdv/bmsg/mediatype"
	"github.com/cockroachdb/errors"
	"github.com/samber/lo"
)

// DefaultMaxMemory is the number of multipart bytes held in memory before
// parts are spooled to disk.
const DefaultMaxMemory = 32 << 20

// Config configures a [Resolver].
type Config struct {
	// Converters used by the views. Defaults to [convert.New].
	Converters *convert.Registry
	// Uploads provides the file parts of multipart requests. Without it no
	// parameter resolves to uploads.
	Uploads UploadStore
	// TempDir is the working directory handed to the upload store. Defaults to os.TempDir.
	TempDir string
	// MaxMemory bounds the multipart bytes kept in memory. Defaults to DefaultMaxMemory.
	MaxMemory int64
}

// Resolver builds parameter views for requests.
type Resolver struct {
	cfg Config
}

// NewResolver returns a resolver for cfg.
func NewResolver(cfg Config) *Resolver {
	if cfg.Converters == nil {
		cfg.Converters = convert.New()
	}

	if cfg.TempDir == "" {
		cfg.TempDir = os.TempDir()
	}

	if cfg.MaxMemory <= 0 {
		cfg.MaxMemory = DefaultMaxMemory
	}

	return &Resolver{cfg: cfg}
}

// Converters returns the converter registry of the resolver.
func (rs *Resolver) Converters() *convert.Registry { return rs.cfg.Converters }

// Var is a route variable bound by the router.
type Var struct {
	Name  string
	Value string
}

// Input is what a [Resolution] resolves parameters from.
type Input struct {
	Request *http.Request
	Vars    []Var
	Type    mediatype.MediaType
	// Parts is shared by the resolutions of one request. Bind creates it when nil.
	Parts *Parts
}

// Bind returns the resolution of in. It caches views and is not safe for
// concurrent use.
func (rs *Resolver) Bind(in Input) *Resolution {
	if in.Parts == nil {
		in.Parts = NewParts()
	}

	return &Resolution{rs: rs, in: in, cache: map[string]*View{}}
}

// Resolution resolves the parameters of a single request.
type Resolution struct {
	rs    *Resolver
	in    Input
	cache map[string]*View

	parsed    bool
	formErr   error
	query     url.Values
	queryKeys []string
}

// Lookup returns the view for name. Route variable values come first, then
// query and form values. Only a name without any of those resolves to the
// uploads of a multipart request. The view is computed once per name. When
// the form cannot be read, names with route or query values still resolve to
// those and other names fail with [body.ErrDecode].
func (res *Resolution) Lookup(name string) (*View, error) {
	if v, ok := res.cache[name]; ok {
		return v, nil
	}

	v, err := res.resolve(name)
	if err != nil {
		return nil, err
	}

	res.cache[name] = v

	return v, nil
}

// All returns the views for every route variable name followed by every query
// and form parameter name.
func (res *Resolution) All() (*Set, error) {
	res.parse()

	if res.formErr != nil {
		return nil, res.formErr
	}

	names := lo.Map(res.in.Vars, func(v Var, _ int) string { return v.Name })
	names = append(names, res.queryKeys...)

	formKeys := lo.Keys(res.in.Request.PostForm)
	slices.Sort(formKeys)
	names = lo.Uniq(append(names, formKeys...))

	views := make([]*View, 0, len(names))

	for _, name := range names {
		v, err := res.Lookup(name)
		if err != nil {
			return nil, err
		}

		views = append(views, v)
	}

	return NewSet(views...), nil
}

func (res *Resolution) resolve(name string) (*View, error) {
	res.parse()

	var values []string

	for _, v := range res.in.Vars {
		if v.Name == name {
			values = append(values, v.Value)
		}
	}

	values = append(values, res.query[name]...)
	conv := res.rs.cfg.Converters

	if res.formErr != nil {
		if len(values) == 0 {
			return nil, res.formErr
		}

		return NewView(name, values, mediatype.All, conv), nil
	}

	values = append(values, res.in.Request.PostForm[name]...)

	if len(values) == 0 && res.in.Type.IsMultipart() && res.rs.cfg.Uploads != nil {
		uploads, err := res.uploads(name)
		if err != nil {
			return nil, err
		}

		if len(uploads) > 0 {
			return NewUploadView(name, uploads, conv), nil
		}
	}

	return NewView(name, values, res.partType(name), conv), nil
}

// uploads returns the named file parts, asking the store once per request.
func (res *Resolution) uploads(name string) ([]Upload, error) {
	parts := res.in.Parts
	if uploads, ok := parts.uploads[name]; ok {
		return uploads, nil
	}

	uploads, err := res.rs.cfg.Uploads.Uploads(res.in.Request, name, res.rs.cfg.TempDir)
	if err != nil {
		return nil, errors.Wrapf(err, "read uploads of %q", name)
	}

	uploads = lo.Filter(uploads, func(u Upload, _ int) bool { return u.FileName != "" })
	parts.uploads[name] = uploads

	return uploads, nil
}

// partType is the content type of the first multipart part for name, "*/*"
// when unknown. File parts are consulted before value parts.
func (res *Resolution) partType(name string) mediatype.MediaType {
	form := res.in.Request.MultipartForm
	if !res.in.Type.IsMultipart() || form == nil {
		return mediatype.All
	}

	if len(form.File[name]) > 0 {
		if mt, err := mediatype.Parse(form.File[name][0].Header.Get("Content-Type")); err == nil {
			return mt
		}
	}

	if mt, ok := res.in.Parts.types[name]; ok {
		return mt
	}

	return mediatype.All
}

// parse reads the query and, for requests with a body, the form once.
func (res *Resolution) parse() {
	if res.parsed {
		return
	}

	res.parsed = true

	r := res.in.Request
	res.query, res.queryKeys = parseQuery(r.URL.RawQuery)

	var err error

	switch {
	case !hasBody(r):
	case res.in.Type.IsMultipart():
		err = res.parseMultipart(r)
	default:
		err = r.ParseForm()
	}

	if err != nil {
		res.formErr = errors.Mark(errors.Wrap(err, "parse request form"), body.ErrDecode)
	}
}

// parseMultipart parses the multipart form. The body is teed through a
// second reader that records the content types of value parts, which the
// parsed form does not keep.
func (res *Resolution) parseMultipart(r *http.Request) error {
	boundary, _ := res.in.Type.Param("boundary")
	if r.MultipartForm != nil || r.Body == nil || boundary == "" {
		return r.ParseMultipartForm(res.rs.cfg.MaxMemory)
	}

	pr, pw := io.Pipe()
	orig := r.Body
	r.Body = struct {
		io.Reader
		io.Closer
	}{io.TeeReader(orig, pw), orig}

	defer func() { r.Body = orig }()

	types := res.in.Parts.types
	done := make(chan struct{})

	go func() {
		defer close(done)
		defer io.Copy(io.Discard, pr) //nolint:errcheck

		mr := multipart.NewReader(pr, boundary)

		for {
			p, err := mr.NextPart()
			if err != nil {
				return
			}

			name := p.FormName()
			if _, seen := types[name]; seen || name == "" || p.FileName() != "" {
				continue
			}

			if mt, err := mediatype.Parse(p.Header.Get("Content-Type")); err == nil {
				types[name] = mt
			}
		}
	}()

	err := r.ParseMultipartForm(res.rs.cfg.MaxMemory)

	pw.Close()
	<-done

	return err
}

func hasBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	default:
		return false
	}
}

// parseQuery decodes a raw query keeping the order in which keys first
// appear. Pairs that fail to decode are skipped.
func parseQuery(raw string) (url.Values, []string) {
	values := url.Values{}

	var keys []string

	for pair := range strings.SplitSeq(raw, "&") {
		if pair == "" || strings.Contains(pair, ";") {
			continue
		}

		k, v, _ := strings.Cut(pair, "=")

		key, err := url.QueryUnescape(k)
		if err != nil {
			continue
		}

		val, err := url.QueryUnescape(v)
		if err != nil {
			continue
		}

		if _, seen := values[key]; !seen {
			keys = append(keys, key)
		}

		values[key] = append(values[key], val)
	}

	return values, keys
}
