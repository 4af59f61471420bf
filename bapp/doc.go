// Package bapp provides a batteries-included application around [bmsg.ServeMux].
//
// # Overview
//
// bapp handles the boilerplate of running a bmsg service: environment parsing,
// structured logging, OpenTelemetry tracing, Prometheus metrics, AWS SDK
// clients, sessions and graceful shutdown. A complete application can be
// created in a single call:
//
//	bapp.NewApp[Env](func(m *bapp.Mux, h *Handlers) {
//	    m.HandleFunc("GET /items", h.ListItems)
//	    m.HandleFunc("GET /items/{id}", h.GetItem, "get-item")
//	},
//	    bapp.WithAWSClient(s3.NewFromConfig),
//	    bapp.WithFx(fx.Provide(NewHandlers)),
//	).Run()
//
// # Environment Configuration
//
// Define your environment by embedding [BaseEnvironment]:
//
//	type Env struct {
//	    bapp.BaseEnvironment
//	    CatalogTable string `env:"CATALOG_TABLE,required"`
//	}
//
// BaseEnvironment provides the following environment variables:
//
//	| Variable                   | Required | Default  | Description                                      |
//	|----------------------------|----------|----------|--------------------------------------------------|
//	| BMSG_SERVICE_NAME          | Yes      | -        | Service name for logging and tracing             |
//	| BMSG_PORT                  | No       | 8080     | Port the HTTP server listens on                  |
//	| BMSG_READINESS_CHECK_PATH  | No       | /healthz | Health check endpoint path                       |
//	| BMSG_METRICS_PATH          | No       | /metrics | Prometheus scrape path                           |
//	| BMSG_LOG_LEVEL             | No       | info     | Log level (debug, info, warn, error)             |
//	| BMSG_OTEL_EXPORTER         | No       | stdout   | Trace exporter: "stdout" or "none"               |
//	| BMSG_SERVER_TIMEOUT        | No       | 30s      | Read and write timeout of the server             |
//	| AWS_REGION                 | No       | -        | AWS region for the SDK clients                   |
//	| BMSG_CHARSET               | No       | utf-8    | Charset when a message names none                |
//	| BMSG_TEMP_DIR              | No       | -        | Working directory for uploads                    |
//	| BMSG_MAX_MULTIPART_MEMORY  | No       | 32 MiB   | Multipart bytes held in memory                   |
//	| BMSG_MAX_BODY_BYTES        | No       | -        | Request body limit, unlimited when unset         |
//	| BMSG_BUFFER_LIMIT          | No       | -1       | Encoded response limit, negative for unlimited   |
//	| BMSG_STRICT_FRAMING        | No       | false    | Panic on changes to a framed response            |
//	| BMSG_UPLOAD_BUCKET         | No       | -        | S3 bucket for uploads, local disk when unset     |
//	| BMSG_UPLOAD_PREFIX         | No       | uploads  | Key prefix for uploads in the bucket             |
//	| BMSG_SESSION_SECRET_ID     | No       | -        | Secret with the session signing key              |
//	| BMSG_SESSION_SECRET_PATH   | No       | -        | gjson path of the key inside that secret         |
//
// # Runtime
//
// [Runtime] provides access to app-scoped dependencies and should be injected
// into handler constructors via fx:
//
//	func (h *Handlers) GetItem(ctx context.Context, res *bmsg.Response, req *bmsg.Request) error {
//	    env := h.rt.Env()                      // typed environment
//	    url, _ := h.rt.Reverse("get-item", id) // URL generation
//	    // ...
//	}
//
// Request-scoped values come from the context: [Log] returns a logger that
// carries the request details and trace ids, [Span] the current span.
//
// # Secrets
//
// [Runtime.Secret] retrieves secrets from AWS Secrets Manager with caching.
//
//	// Raw string secret
//	apiKey, err := h.rt.Secret(ctx, "my-api-key-secret")
//
//	// JSON secret with a gjson path
//	password, err := h.rt.Secret(ctx, "my-db-secret", "database.password")
//
// # Sessions
//
// Setting BMSG_SESSION_SECRET_ID enables [bmsg.Request.Session]. Session ids
// are signed with the key held by that secret, which is read again on every
// request so it can be rotated. Values are kept in memory unless another
// store is set with [WithSessionStore].
//
// # Outbound HTTP
//
// [Runtime.NewRequest] builds requests with the traced transport:
//
//	var out Item
//	err := h.rt.NewRequest("https://api.example.com").Path("/items/1").ToJSON(&out).Fetch(ctx)
//
// # Testing
//
// Package bapptest builds the same graph with fxtest.
package bapp
