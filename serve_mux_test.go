package bmsg_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/advdv/bmsg"
	"github.com/stretchr/testify/require"
)

func newMux(t *testing.T) (*bmsg.ServeMux, *bmsg.TestLogger) {
	t.Helper()

	logs := bmsg.NewTestLogger(t)

	return bmsg.NewServeMuxWith(bmsg.Config{}, logs, http.NewServeMux(), bmsg.NewReverser()), logs
}

func serveBlogPost(ctx context.Context, res *bmsg.Response, req *bmsg.Request) error {
	slug, err := req.Param("slug")
	if err != nil {
		return err
	}

	return res.Send(fmt.Sprintf(`hello %v, %s`, ctx.Value(ctxKey("foo")), slug.StringOr("")))
}

func middleware1(next bmsg.Handler) bmsg.Handler {
	return bmsg.HandlerFunc(func(ctx context.Context, res *bmsg.Response, req *bmsg.Request) error {
		ctx = context.WithValue(ctx, ctxKey("foo"), "bar")
		return next.ServeBMSG(ctx, res, req.WithContext(ctx))
	})
}

func TestServeMux(t *testing.T) {
	mux, _ := newMux(t)
	mux.Use(middleware1)
	mux.HandleFunc("GET /blog/{slug}", serveBlogPost, "blog_post")

	loc, err := mux.Reverse("blog_post", "foo")
	require.NoError(t, err)
	require.Equal(t, `/blog/foo`, loc)

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/blog/111", nil)
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, `hello bar, 111`, rec.Body.String())
	require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestServeMuxPathBeforeQuery(t *testing.T) {
	mux, _ := newMux(t)
	mux.HandleFunc("GET /items/{id}", func(_ context.Context, res *bmsg.Response, req *bmsg.Request) error {
		id, err := req.Param("id")
		if err != nil {
			return err
		}

		return res.Send(fmt.Sprint(id.Strings()))
	})

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/items/7?id=8&id=9", nil)
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "[7 8 9]", rec.Body.String())
}

func TestHandleStd(t *testing.T) {
	mux, _ := newMux(t)
	mux.HandleStd("GET /std", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "std:%s", r.URL.Path)
	}))

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/std", nil)
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "std:/std", rec.Body.String())
}

func TestHandleStdErrorOwnership(t *testing.T) {
	mux, _ := newMux(t)
	mux.HandleStd("GET /teapot", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "custom error", http.StatusTeapot)
	}))

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/teapot", nil)
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusTeapot, rec.Code)
	require.Equal(t, "custom error\n", rec.Body.String())
}

func TestHandleStdSeesPendingHeaders(t *testing.T) {
	mux, _ := newMux(t)
	mux.Use(func(next bmsg.Handler) bmsg.Handler {
		return bmsg.HandlerFunc(func(ctx context.Context, res *bmsg.Response, req *bmsg.Request) error {
			if err := res.Header("X-Request-ID", "req-1"); err != nil {
				return err
			}

			return next.ServeBMSG(ctx, res, req)
		})
	})
	mux.HandleStd("GET /std", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/std", nil)
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Equal(t, "req-1", rec.Header().Get("X-Request-ID"))
}

func TestHandleStdMiddlewareApplied(t *testing.T) {
	mux, _ := newMux(t)
	mux.Use(middleware1)
	mux.HandleStd("GET /std", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, "val:%v", r.Context().Value(ctxKey("foo")))
	}))

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/std", nil)
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "val:bar", rec.Body.String())
}

func TestHandleStdNamed(t *testing.T) {
	mux, _ := newMux(t)
	mux.HandleStd("GET /metrics", http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "metrics")
	}), "metrics")

	loc, err := mux.Reverse("metrics")
	require.NoError(t, err)
	require.Equal(t, "/metrics", loc)

	rec, req := httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/metrics", nil)
	mux.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "metrics", rec.Body.String())
}

func TestUseAfterHandle(t *testing.T) {
	mux, _ := newMux(t)
	mux.HandleFunc("GET /blog/{slug}", serveBlogPost, "blog_post")
	require.PanicsWithValue(t, "bmsg: cannot call Use() after calling Handle", func() {
		mux.Use(middleware1)
	})
}
