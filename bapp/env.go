package bapp

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap/zapcore"
)

// Environment defines the interface that all environment configurations must implement.
// Embed BaseEnvironment in your struct to satisfy this interface.
type Environment interface {
	base() BaseEnvironment
}

// BaseEnvironment holds the variables every bmsg application reads.
// Embed this in your custom environment struct.
type BaseEnvironment struct {
	Port               int           `env:"BMSG_PORT" envDefault:"8080"`
	ServiceName        string        `env:"BMSG_SERVICE_NAME,required"`
	ReadinessCheckPath string        `env:"BMSG_READINESS_CHECK_PATH" envDefault:"/healthz"`
	MetricsPath        string        `env:"BMSG_METRICS_PATH" envDefault:"/metrics"`
	LogLevel           zapcore.Level `env:"BMSG_LOG_LEVEL" envDefault:"info"`
	// OtelExporter selects where spans go: "stdout" or "none".
	OtelExporter  string        `env:"BMSG_OTEL_EXPORTER" envDefault:"stdout"`
	ServerTimeout time.Duration `env:"BMSG_SERVER_TIMEOUT" envDefault:"30s"`
	AWSRegion     string        `env:"AWS_REGION"`

	Charset            string `env:"BMSG_CHARSET" envDefault:"utf-8"`
	TempDir            string `env:"BMSG_TEMP_DIR"`
	MaxMultipartMemory int64  `env:"BMSG_MAX_MULTIPART_MEMORY" envDefault:"33554432"`
	MaxBodyBytes       int64  `env:"BMSG_MAX_BODY_BYTES"`
	// BufferLimit bounds encoded response bodies, negative for no limit.
	BufferLimit   int  `env:"BMSG_BUFFER_LIMIT" envDefault:"-1"`
	StrictFraming bool `env:"BMSG_STRICT_FRAMING"`

	// UploadBucket switches multipart uploads to S3 when set.
	UploadBucket string `env:"BMSG_UPLOAD_BUCKET"`
	UploadPrefix string `env:"BMSG_UPLOAD_PREFIX" envDefault:"uploads"`
	// SessionSecretID names the Secrets Manager secret holding the session
	// signing key. Sessions are disabled without it.
	SessionSecretID   string `env:"BMSG_SESSION_SECRET_ID"`
	SessionSecretPath string `env:"BMSG_SESSION_SECRET_PATH"`
}

func (e BaseEnvironment) base() BaseEnvironment { return e }

var _ Environment = BaseEnvironment{}

// ParseEnv parses environment variables into the given Environment type.
func ParseEnv[E Environment]() func() (E, error) {
	return func() (e E, err error) {
		if err := env.Parse(&e); err != nil {
			return e, errors.Wrap(err, "failed to parse environment")
		}

		return e, nil
	}
}
