package bmsg

import (
	"github.com/advdv/bmsg/body"
	"github.com/advdv/bmsg/convert"
	"github.com/advdv/bmsg/mediatype"
	"github.com/advdv/bmsg/param"
	"github.com/advdv/bmsg/upload"
	"golang.org/x/text/language"
)

// Config configures how requests are read and responses are written. The zero
// value of each field selects its default.
type Config struct {
	// Charset used when the request or response does not name one. Defaults to utf-8.
	Charset string
	// Locale used when the request carries no usable Accept-Language. Defaults to English.
	Locale language.Tag
	// DefaultType of responses whose type is not set. Defaults to text/html.
	DefaultType mediatype.MediaType
	// BufferLimit bounds the bytes of a body encoded by a writer before it is
	// framed. Zero or negative means unlimited.
	BufferLimit int
	// MaxBodyBytes bounds the request body read by Body. Zero means unlimited.
	MaxBodyBytes int64
	// TempDir is the working directory handed to the upload store.
	TempDir string
	// MaxMultipartMemory bounds the multipart bytes held in memory.
	MaxMultipartMemory int64
	// Converters for parameters. Defaults to [convert.New].
	Converters *convert.Registry
	// Bodies selects body parsers and writers. Defaults to [body.Default].
	Bodies *body.Selector
	// Views renders named views. Render fails without one.
	Views body.ViewWriter
	// Uploads provides multipart file parts. Defaults to [upload.DiskStore].
	Uploads param.UploadStore
	// Sessions provides sessions. The session operations fail without one.
	Sessions SessionProvider
	// Router binds routes. Defaults to [StdRouteBinder].
	Router RouteBinder
	// Strict turns mutations of a framed response into panics instead of log lines.
	Strict bool
}

// DefaultConfig returns the configuration with all defaults filled in.
func DefaultConfig() Config {
	return Config{}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.Charset == "" {
		c.Charset = "utf-8"
	}

	if c.Locale == language.Und {
		c.Locale = language.English
	}

	if c.DefaultType.IsZero() {
		c.DefaultType = mediatype.HTML
	}

	if c.BufferLimit <= 0 {
		c.BufferLimit = -1
	}

	if c.MaxMultipartMemory <= 0 {
		c.MaxMultipartMemory = param.DefaultMaxMemory
	}

	if c.Converters == nil {
		c.Converters = convert.New()
	}

	if c.Bodies == nil {
		c.Bodies = body.Default()
	}

	if c.Uploads == nil {
		c.Uploads = upload.NewDiskStore(c.MaxMultipartMemory)
	}

	if c.Router == nil {
		c.Router = StdRouteBinder{}
	}

	return c
}

// engine holds what is shared by all requests served with one configuration.
type engine struct {
	cfg      Config
	resolver *param.Resolver
	logs     Logger
}

func newEngine(cfg Config, logs Logger) *engine {
	cfg = cfg.withDefaults()

	return &engine{
		cfg:  cfg,
		logs: logs,
		resolver: param.NewResolver(param.Config{
			Converters: cfg.Converters,
			Uploads:    cfg.Uploads,
			TempDir:    cfg.TempDir,
			MaxMemory:  cfg.MaxMultipartMemory,
		}),
	}
}
