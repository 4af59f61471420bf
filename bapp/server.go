package bapp

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/advdv/bmsg/body"
	"github.com/advdv/bmsg/session"
	"github.com/cockroachdb/errors"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ServerConfig holds optional configuration for the HTTP server and the mux.
type ServerConfig struct {
	HealthHandler func(http.ResponseWriter, *http.Request)
	Views         body.ViewWriter
	Bodies        *body.Selector
	SessionStore  session.Store
	SecretReader  SecretReader
}

// ServerParams holds the dependencies for creating an HTTP server.
type ServerParams struct {
	fx.In

	Env        Environment
	Mux        *Mux
	Logger     *zap.Logger
	Metrics    *Metrics
	TracerProv trace.TracerProvider
	Propagator propagation.TextMapPropagator
}

// NewServer creates an HTTP server with all middleware and routing configured.
func NewServer(params ServerParams, cfg ServerConfig) *http.Server {
	b := params.Env.base()

	params.Mux.Use(withRequestDep(&requestDep{logger: params.Logger}))
	params.Mux.Use(params.Metrics.Middleware())

	healthHandler := cfg.HealthHandler
	if healthHandler == nil {
		healthHandler = defaultHealthHandler
	}

	params.Mux.HandleStd(b.ReadinessCheckPath, http.HandlerFunc(healthHandler))
	params.Mux.HandleStd("GET "+b.MetricsPath, params.Metrics.Handler())

	// probes and scrapes are not traced
	handler := withTracing(params.TracerProv, params.Propagator, b.ServiceName,
		b.ReadinessCheckPath, b.MetricsPath)(params.Mux)

	readHeaderTimeout, readTimeout, writeTimeout, idleTimeout := serverTimeouts(b.ServerTimeout)

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", b.Port),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}

// serverTimeouts derives the server timeouts from the request timeout.
// Headers are expected within five seconds at most.
func serverTimeouts(timeout time.Duration) (readHeaderTimeout, readTimeout, writeTimeout, idleTimeout time.Duration) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return min(timeout, 5*time.Second), timeout, timeout, 2 * timeout
}

// startServerHook registers lifecycle hooks for the HTTP server.
func startServerHook(lc fx.Lifecycle, server *http.Server, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			logger.Info("starting server", zap.String("addr", server.Addr))

			go func() {
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("server error", zap.Error(err))
				}
			}()

			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("stopping server")
			return server.Shutdown(ctx)
		},
	})
}

func defaultHealthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}
