package bmsg

import (
	"context"
	"net/http"
)

// Handler serves a request by writing to the response. A returned error
// that carries a code, see [CodeOf], becomes an error response if nothing was
// sent yet; other errors are logged and answered with a 500.
type Handler interface {
	ServeBMSG(ctx context.Context, res *Response, req *Request) error
}

// HandlerFunc allow casting a function to imple [Handler].
type HandlerFunc func(context.Context, *Response, *Request) error

// ServeBMSG implements the [Handler] interface.
func (f HandlerFunc) ServeBMSG(ctx context.Context, res *Response, req *Request) error {
	return f(ctx, res, req)
}

// ToStd converts a handler into a standard library http.Handler that reads
// requests and writes responses as configured by cfg.
func ToStd(h Handler, cfg Config, logs Logger) http.Handler {
	return newEngine(cfg, logs).toStd(h)
}

func (e *engine) toStd(h Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res := newResponse(e, w)

		req, err := newRequest(e, r, res.addCookie)
		if err == nil {
			res.req = req
			err = h.ServeBMSG(r.Context(), res, req)
		}

		if err != nil {
			e.handleError(res, err)
			return
		}

		res.finish()
	})
}

func (e *engine) handleError(res *Response, err error) {
	code := CodeOf(err)

	if res.Committed() {
		if code == CodeUnknown {
			e.logs.LogUnhandledServeError(err)
		}

		return
	}

	switch code {
	case CodeUnknown:
		e.logs.LogUnhandledServeError(err)

		// if all fails we don't want the client to end up with a white screen so
		// we render a 500 error with the standard text.
		res.fail(CodeInternalServerError, http.StatusText(http.StatusInternalServerError))
	default:
		res.fail(code, err.Error())
	}
}
