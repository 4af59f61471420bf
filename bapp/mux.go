package bapp

import (
	"context"
	"net/http"

	"github.com/advdv/bmsg"
	"github.com/advdv/bmsg/param"
	"github.com/advdv/bmsg/session"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Mux is an alias for bmsg.ServeMux.
type Mux = bmsg.ServeMux

// MuxParams holds the dependencies of the mux.
type MuxParams struct {
	fx.In

	Env      Environment
	Logger   *zap.Logger
	Uploads  param.UploadStore
	Sessions bmsg.SessionProvider `optional:"true"`
	Config   ServerConfig
}

// NewMux creates the mux with the message settings taken from the environment.
func NewMux(p MuxParams) *Mux {
	return bmsg.NewServeMuxWith(newConfig(p), NewBMSGLogger(p.Logger), http.NewServeMux(), bmsg.NewReverser())
}

func newConfig(p MuxParams) bmsg.Config {
	b := p.Env.base()

	return bmsg.Config{
		Charset:            b.Charset,
		BufferLimit:        b.BufferLimit,
		MaxBodyBytes:       b.MaxBodyBytes,
		TempDir:            b.TempDir,
		MaxMultipartMemory: b.MaxMultipartMemory,
		Strict:             b.StrictFraming,
		Uploads:            p.Uploads,
		Sessions:           p.Sessions,
		Views:              p.Config.Views,
		Bodies:             p.Config.Bodies,
	}
}

// SessionParams holds the dependencies of the session provider.
type SessionParams struct {
	fx.In

	Env          Environment
	SecretReader SecretReader
	Config       ServerConfig
}

// NewSessionProvider returns a provider whose cookies are signed with the key
// in BMSG_SESSION_SECRET_ID, or nil when that is not set. Sessions are kept
// in memory unless a store was configured with [WithSessionStore].
func NewSessionProvider(p SessionParams) (bmsg.SessionProvider, error) {
	b := p.Env.base()
	if b.SessionSecretID == "" {
		return nil, nil
	}

	keys := SecretKey(p.SecretReader, b.SessionSecretID, b.SessionSecretPath)

	ctx, cancel := context.WithTimeout(context.Background(), awsConfigTimeout)
	defer cancel()

	if _, err := keys(ctx); err != nil {
		return nil, err
	}

	store := p.Config.SessionStore
	if store == nil {
		store = session.NewMemoryStore()
	}

	return session.NewProvider(store, keys), nil
}
