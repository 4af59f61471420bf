package bapp

import (
	"context"
	"net/http"

	"github.com/carlmjohnson/requests"
	"github.com/cockroachdb/errors"
)

// Runtime provides access to app-scoped dependencies.
// Inject this into handler constructors via fx instead of pulling from context.
//
//	func NewHandlers(rt *bapp.Runtime[Env]) *Handlers {
//	    return &Handlers{rt: rt}
//	}
//
//	func (h *Handlers) GetItem(ctx context.Context, res *bmsg.Response, req *bmsg.Request) error {
//	    url, _ := h.rt.Reverse("get-item", id)
//	    // ...
//	}
type Runtime[E Environment] struct {
	env          E
	mux          *Mux
	secretReader SecretReader
	transport    http.RoundTripper
}

// RuntimeParams holds optional dependencies for Runtime.
type RuntimeParams struct {
	SecretReader SecretReader
	Transport    http.RoundTripper
}

// NewRuntime creates a new Runtime with the given dependencies.
func NewRuntime[E Environment](env E, mux *Mux, params RuntimeParams) *Runtime[E] {
	return &Runtime[E]{
		env:          env,
		mux:          mux,
		secretReader: params.SecretReader,
		transport:    params.Transport,
	}
}

// Env returns the environment configuration.
func (r *Runtime[E]) Env() E {
	return r.env
}

// Reverse returns the URL for a named route with the given parameters.
func (r *Runtime[E]) Reverse(name string, params ...string) (string, error) {
	return r.mux.Reverse(name, params...)
}

// Secret retrieves a secret value. With a jsonPath the secret is parsed as
// JSON and the value at the gjson path is returned.
func (r *Runtime[E]) Secret(ctx context.Context, secretID string, jsonPath ...string) (string, error) {
	if r.secretReader == nil {
		return "", errors.New("bapp: secret reader not configured")
	}

	if len(jsonPath) > 1 {
		return "", errors.New("bapp: Secret accepts at most one jsonPath argument")
	}

	var path string
	if len(jsonPath) == 1 {
		path = jsonPath[0]
	}

	return secretFromReader(ctx, r.secretReader, secretID, path)
}

// NewRequest returns a builder for a request to baseURL. Calls go through the
// traced transport, so the trace context of ctx is propagated:
//
//	var out Item
//	err := h.rt.NewRequest("https://api.example.com/items/1").ToJSON(&out).Fetch(ctx)
func (r *Runtime[E]) NewRequest(baseURL string) *requests.Builder {
	return newRequestBuilder(r.transport).BaseURL(baseURL)
}
