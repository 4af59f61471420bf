// Package example implements example middleware in an outside package.
package example

import (
	"context"
	"log/slog"

	"github.com/advdv/bmsg"
)

// ctxKey type scopes middlware values.
type ctxKey string

// Middleware provides an example for middleware that adds a logger to the
// context. The logger carries the method and negotiated content type.
func Middleware(logs *slog.Logger) bmsg.Middleware {
	return func(n bmsg.Handler) bmsg.Handler {
		return bmsg.HandlerFunc(func(ctx context.Context, res *bmsg.Response, req *bmsg.Request) error {
			logs := logs.With(
				slog.String("method", req.Method()),
				slog.String("content_type", req.Type().String()))

			ctx = context.WithValue(ctx, ctxKey("slog"), logs)

			return n.ServeBMSG(ctx, res, req.WithContext(ctx))
		})
	}
}

func Log(ctx context.Context) *slog.Logger {
	v, _ := ctx.Value(ctxKey("slog")).(*slog.Logger)

	return v
}
