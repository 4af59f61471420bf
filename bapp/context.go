package bapp

import (
	"context"

	"github.com/advdv/bmsg"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type ctxKey int

const ctxKeyRequestDep ctxKey = iota

// requestDep holds request-scoped dependencies available via context.
// App-scoped dependencies are accessed via Runtime instead.
type requestDep struct {
	logger *zap.Logger
}

// withRequestDep injects dependencies into the request context. The logger
// is annotated with the negotiated request details.
func withRequestDep(d *requestDep) bmsg.Middleware {
	return func(next bmsg.Handler) bmsg.Handler {
		return bmsg.HandlerFunc(func(ctx context.Context, res *bmsg.Response, req *bmsg.Request) error {
			rd := &requestDep{logger: d.logger.With(
				zap.String("method", req.Method()),
				zap.String("path", req.Path()),
				zap.String("content_type", req.Type().String()),
				zap.String("locale", req.Locale().String()),
			)}

			ctx = context.WithValue(ctx, ctxKeyRequestDep, rd)

			return next.ServeBMSG(ctx, res, req.WithContext(ctx))
		})
	}
}

// WithLogger returns a context that [Log] reads l from. The request middleware
// does this for served requests; use it when calling handlers directly.
func WithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKeyRequestDep, &requestDep{logger: l})
}

func requestDepFromContext(ctx context.Context) *requestDep {
	d, ok := ctx.Value(ctxKeyRequestDep).(*requestDep)
	if !ok {
		panic("bapp: requestDep not found in context; is the middleware configured?")
	}

	return d
}

// Log returns a trace-correlated zap logger from the context.
func Log(ctx context.Context) *zap.Logger {
	d := requestDepFromContext(ctx)
	return d.logger.With(traceFields(ctx)...)
}

// Span returns the current trace span from the context.
func Span(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// traceFields extracts trace_id and span_id from the context for log correlation.
func traceFields(ctx context.Context) []zap.Field {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return nil
	}

	return []zap.Field{
		zap.String("trace_id", sc.TraceID().String()),
		zap.String("span_id", sc.SpanID().String()),
	}
}
