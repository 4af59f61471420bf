package bmsg

import (
	"context"
	"net/http"

	"github.com/cockroachdb/errors"
)

// ErrNoSessions is returned by the session operations of a request when no
// [SessionProvider] is configured.
var ErrNoSessions = errors.New("no session provider configured")

// Session is a server side session as seen by handlers.
type Session interface {
	ID() string
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(key string)
	Save(ctx context.Context) error
}

// SessionProvider looks up and creates the session of a request. Storing the
// sessions is up to the provider.
type SessionProvider interface {
	// GetOrCreate returns the session of r, creating one when it has none. A
	// provider that needs to hand out a cookie calls setCookie.
	GetOrCreate(ctx context.Context, r *http.Request, setCookie func(*http.Cookie)) (Session, error)
	// GetIfExists returns the session of r if it has one.
	GetIfExists(ctx context.Context, r *http.Request) (Session, bool, error)
}
