// Package bmsg provides an HTTP message abstraction on top of net/http: a
// request facade with typed parameter views, body conversion negotiated by
// media type, and a response writer that frames each response exactly once.
//
// # Overview
//
// Handlers receive a [*Response] and a [*Request] and return an error:
//
//	mux := bmsg.NewServeMux()
//	mux.HandleFunc("GET /items/{id}", func(ctx context.Context, res *bmsg.Response, req *bmsg.Request) error {
//	    id, err := req.Param("id")
//	    if err != nil {
//	        return err
//	    }
//
//	    n, err := id.Int()
//	    if err != nil {
//	        return err // answered with a 400
//	    }
//
//	    item, err := db.GetItem(ctx, n)
//	    if err != nil {
//	        return bmsg.NewError(bmsg.CodeNotFound, err)
//	    }
//
//	    return res.Send(item) // encoded as negotiated with the Accept header
//	}, "get-item")
//
// # Requests
//
// [Request.Param] returns a view over all values of a parameter. Path
// variables come first, then the query string in the order the client sent
// it, then urlencoded or multipart form fields. A name without any of those
// resolves to the file parts uploaded under it. Views convert on demand, see
// package param and package convert.
//
// [Request.Body] decodes the body into a value. The parser is selected by
// the request Content-Type before anything is read:
//
//	order, err := bmsg.BodyAs[Order](req)
//
// It fails with [ErrUnsupportedMediaType] when no parser can read the type,
// and with an error marked [ErrDecode] when the body is malformed.
//
// Negotiation helpers expose the parsed Content-Type, the Accept list sorted
// by weight, the charset and the locale:
//
//	if mt, ok := req.Accepts(mediatype.JSON, mediatype.HTML); ok { ... }
//
// # Responses
//
// A response moves through four states: fresh, framed, written and closed.
// Status, type, charset, headers and cookies may only change while it is
// fresh. Changes after that are ignored and reported to the [Logger], or
// panic when [Config.Strict] is set. Sending a second body fails with
// [ErrResponseSent].
//
// [Response.Send] picks how to write by the value: strings go out as text in
// the response charset, byte slices and readers as they are, and anything else
// through the writer negotiated against the Accept header. Encoded values are
// buffered up to [Config.BufferLimit] so a failing writer leaves the response
// fresh. When nothing can be produced the response becomes an empty 406.
//
// [Response.Text] and [Response.Bytes] stream instead. The writers they hand
// out cannot close the underlying stream.
//
// # Error Handling
//
// When a handler returns an error before anything was framed, the error
// becomes the response:
//
//   - [*Error] (created with [NewError]): uses the error's code and message
//   - errors marked by the body or param packages: 400, 406 or 415
//   - other errors: logged and converted to 500 Internal Server Error
//
// Errors returned after framing are logged when they carry no code.
//
// # Middleware
//
// [Middleware] wraps a [Handler]:
//
//	func timing(next bmsg.Handler) bmsg.Handler {
//	    return bmsg.HandlerFunc(func(ctx context.Context, res *bmsg.Response, req *bmsg.Request) error {
//	        start := time.Now()
//	        err := next.ServeBMSG(ctx, res, req)
//	        log.Printf("%s %s took %v", req.Method(), req.Path(), time.Since(start))
//	        return err
//	    })
//	}
//
//	mux.Use(timing)
//
// # Named Routes and URL Reversing
//
// Routes can be named for URL generation:
//
//	mux.HandleFunc("GET /users/{id}", getUser, "get-user")
//	url, err := mux.Reverse("get-user", "123") // "/users/123"
//
// # Other Routers
//
// [ToStd] turns a handler into an http.Handler for any router. The router
// reports its routes through a [RouteBinder]; package gorillaroute does so for
// gorilla/mux.
package bmsg
