package bapptest

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/advdv/bmsg"
)

// CallHandler serves req with handler using the default message settings and
// returns the recorded response. Errors the handler returns are answered the
// same way the mux answers them.
func CallHandler(tb testing.TB, handler bmsg.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	tb.Helper()

	rec := httptest.NewRecorder()
	bmsg.ToStd(handler, bmsg.DefaultConfig(), bmsg.NewTestLogger(tb)).ServeHTTP(rec, req)

	return rec
}
