package bmsg

import (
	"log"
	"sync/atomic"
	"testing"
)

// Logger can be implemented to get informed about important states.
type Logger interface {
	LogUnhandledServeError(err error)
	LogFramingViolation(op string)
}

type stdLogger struct{ *log.Logger }

func (l stdLogger) LogUnhandledServeError(err error) {
	l.Logger.Printf("bmsg: unhandled server error: %s", err)
}

func (l stdLogger) LogFramingViolation(op string) {
	l.Logger.Printf("bmsg: %s ignored, response is already framed", op)
}

func NewStdLogger(l *log.Logger) Logger {
	return stdLogger{l}
}

type TestLogger struct {
	tb testing.TB

	NumLogUnhandledServeError int64
	NumLogFramingViolation    int64
}

func NewTestLogger(tb testing.TB) *TestLogger {
	return &TestLogger{tb: tb}
}

func (l *TestLogger) LogUnhandledServeError(err error) {
	atomic.AddInt64(&l.NumLogUnhandledServeError, 1)
	l.tb.Logf("bmsg: unhandled server error: %s", err)
}

func (l *TestLogger) LogFramingViolation(op string) {
	atomic.AddInt64(&l.NumLogFramingViolation, 1)
	l.tb.Logf("bmsg: %s ignored, response is already framed", op)
}

var _ Logger = &TestLogger{}
