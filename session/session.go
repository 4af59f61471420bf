// Package session implements server side sessions identified by a signed
// cookie. The session values live in a [Store]; the cookie only carries the
// session id and its HMAC-SHA256 signature.
package session

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"maps"
	"net/http"
	"strings"
	"sync"

	"github.com/advdv/bmsg"
	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// DefaultCookieName is the name of the session cookie unless configured otherwise.
const DefaultCookieName = "bmsg.sid"

// Store persists session values by session id.
type Store interface {
	// Load returns the values of the session id, false if it does not exist.
	Load(ctx context.Context, id string) (map[string]string, bool, error)
	// Save replaces the values of the session id.
	Save(ctx context.Context, id string, values map[string]string) error
}

// KeyFunc returns the key that signs session cookies. It is called for every
// request so keys can rotate.
type KeyFunc func(ctx context.Context) ([]byte, error)

// StaticKey returns a KeyFunc that always returns key.
func StaticKey(key []byte) KeyFunc {
	return func(context.Context) ([]byte, error) { return key, nil }
}

// Option configures a Provider.
type Option func(*Provider)

// WithCookie sets the name and attributes of the session cookie.
func WithCookie(name string, opts ...bmsg.CookieOption) Option {
	return func(p *Provider) {
		p.cookieName, p.cookieOpts = name, opts
	}
}

// Provider hands out sessions stored in a Store.
type Provider struct {
	store      Store
	keys       KeyFunc
	cookieName string
	cookieOpts []bmsg.CookieOption
}

// NewProvider creates a provider. The cookie defaults to an http-only session
// cookie on path "/".
func NewProvider(store Store, keys KeyFunc, opts ...Option) *Provider {
	p := &Provider{
		store:      store,
		keys:       keys,
		cookieName: DefaultCookieName,
		cookieOpts: []bmsg.CookieOption{bmsg.CookiePath("/"), bmsg.CookieHTTPOnly()},
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// GetIfExists implements [bmsg.SessionProvider]. Cookies with an invalid
// signature are treated as absent.
func (p *Provider) GetIfExists(ctx context.Context, r *http.Request) (bmsg.Session, bool, error) {
	hc, err := r.Cookie(p.cookieName)
	if err != nil {
		return nil, false, nil
	}

	key, err := p.keys(ctx)
	if err != nil {
		return nil, false, errors.Wrap(err, "session key")
	}

	id, ok := verify(key, hc.Value)
	if !ok {
		return nil, false, nil
	}

	values, found, err := p.store.Load(ctx, id)
	if err != nil {
		return nil, false, errors.Wrapf(err, "load session %q", id)
	}

	if !found {
		return nil, false, nil
	}

	if values == nil {
		values = map[string]string{}
	}

	return &session{id: id, values: values, store: p.store}, true, nil
}

// GetOrCreate implements [bmsg.SessionProvider]. A new session is saved right
// away and its cookie is handed to setCookie.
func (p *Provider) GetOrCreate(ctx context.Context, r *http.Request, setCookie func(*http.Cookie)) (bmsg.Session, error) {
	sess, ok, err := p.GetIfExists(ctx, r)
	if err != nil || ok {
		return sess, err
	}

	key, err := p.keys(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "session key")
	}

	s := &session{id: uuid.NewString(), values: map[string]string{}, store: p.store}
	if err := s.Save(ctx); err != nil {
		return nil, err
	}

	setCookie(bmsg.NewCookie(p.cookieName, sign(key, s.id), p.cookieOpts...).ToHTTP())

	return s, nil
}

func sign(key []byte, id string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(id))

	return id + "." + base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

func verify(key []byte, value string) (string, bool) {
	id, _, ok := strings.Cut(value, ".")
	if !ok || id == "" {
		return "", false
	}

	return id, hmac.Equal([]byte(sign(key, id)), []byte(value))
}

type session struct {
	id    string
	store Store

	mu     sync.Mutex
	values map[string]string
}

func (s *session) ID() string { return s.id }

func (s *session) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.values[key]

	return v, ok
}

func (s *session) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = value
}

func (s *session) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
}

func (s *session) Save(ctx context.Context) error {
	s.mu.Lock()
	values := maps.Clone(s.values)
	s.mu.Unlock()

	if err := s.store.Save(ctx, s.id, values); err != nil {
		return errors.Wrapf(err, "save session %q", s.id)
	}

	return nil
}

var _ bmsg.SessionProvider = &Provider{}
