package bmsg_test

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/advdv/bmsg"
	"github.com/advdv/bmsg/internal/example"
	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/require"
)

func TestWrapWithoutMiddleware(t *testing.T) {
	h := bmsg.HandlerFunc(func(context.Context, *bmsg.Response, *bmsg.Request) error { return nil })
	require.Equal(t, fmt.Sprint(h), fmt.Sprint(bmsg.Wrap(h))) // compare addrs
}

func TestWrapOrder(t *testing.T) {
	var trace string

	inner := bmsg.HandlerFunc(func(ctx context.Context, _ *bmsg.Response, req *bmsg.Request) error {
		trace += fmt.Sprintf("inner %v", ctx.Value(ctxKey("foo")))

		require.Equal(t, ctx.Value(ctxKey("foo")), req.Context().Value(ctxKey("foo")))
		require.NotNil(t, example.Log(ctx))

		return errors.New("inner error")
	})

	mw := func(name string) bmsg.Middleware {
		return func(next bmsg.Handler) bmsg.Handler {
			return bmsg.HandlerFunc(func(ctx context.Context, res *bmsg.Response, req *bmsg.Request) error {
				trace += name + "("
				err := next.ServeBMSG(ctx, res, req)
				trace += ")" + name

				return errors.Wrap(err, name)
			})
		}
	}

	var logged bytes.Buffer

	var handlerErr error

	logs := slog.New(slog.NewTextHandler(&logged, nil))
	capture := func(next bmsg.Handler) bmsg.Handler {
		return bmsg.HandlerFunc(func(ctx context.Context, res *bmsg.Response, req *bmsg.Request) error {
			handlerErr = next.ServeBMSG(ctx, res, req)
			return handlerErr
		})
	}

	h := bmsg.Wrap(inner, capture, middleware1, mw("2"), mw("1"), example.Middleware(logs))

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)
	bmsg.ToStd(h, bmsg.Config{}, bmsg.NewTestLogger(t)).ServeHTTP(rec, req)

	require.Equal(t, "2(1(inner bar)1)2", trace)
	require.EqualError(t, handlerErr, "2: 1: inner error")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

// recoverer turns panics into errors.
func recoverer(next bmsg.Handler) bmsg.Handler {
	return bmsg.HandlerFunc(func(ctx context.Context, res *bmsg.Response, req *bmsg.Request) (err error) {
		defer func() {
			if e := recover(); e != nil {
				err = bmsg.NewError(bmsg.CodeServiceUnavailable, errors.Newf("recovered: %v", e))
			}
		}()

		return next.ServeBMSG(ctx, res, req)
	})
}

func TestRecoverBeforeFraming(t *testing.T) {
	h := bmsg.Wrap(bmsg.HandlerFunc(func(_ context.Context, res *bmsg.Response, _ *bmsg.Request) error {
		res.Status(http.StatusCreated)
		require.NoError(t, res.Header("X-Foo", "bar"))

		panic("some panic")
	}), recoverer)

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil)
	bmsg.ToStd(h, bmsg.Config{}, bmsg.NewTestLogger(t)).ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	require.Empty(t, rec.Header().Get("X-Foo"))
	require.Equal(t, "Service Unavailable: recovered: some panic\n", rec.Body.String())
}
