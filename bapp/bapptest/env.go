package bapptest

import (
	"strconv"
	"testing"
)

// Env provides a chainable builder for setting [bapp.BaseEnvironment] env vars
// via t.Setenv. Create one with [SetBaseEnv].
type Env struct {
	t testing.TB
}

// SetBaseEnv sets the [bapp.BaseEnvironment] env vars to test defaults.
// Port is required because each test must use a unique port to avoid collisions.
//
// Defaults:
//   - BMSG_SERVICE_NAME: "test"
//   - BMSG_READINESS_CHECK_PATH: "/health"
//   - BMSG_OTEL_EXPORTER: "none"
//   - AWS_REGION: "us-east-1"
//   - AWS_ACCESS_KEY_ID: "test"
//   - AWS_SECRET_ACCESS_KEY: "test"
//
// Use the returned [Env] to override individual values:
//
//	bapptest.SetBaseEnv(t, 18085).ServiceName("orders").SessionSecret("session-key", "")
func SetBaseEnv(t testing.TB, port int) *Env {
	t.Helper()
	t.Setenv("BMSG_PORT", strconv.Itoa(port))
	t.Setenv("BMSG_SERVICE_NAME", "test")
	t.Setenv("BMSG_READINESS_CHECK_PATH", "/health")
	t.Setenv("BMSG_OTEL_EXPORTER", "none")
	t.Setenv("AWS_REGION", "us-east-1")
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")
	return &Env{t: t}
}

// ServiceName overrides BMSG_SERVICE_NAME.
func (e *Env) ServiceName(name string) *Env {
	e.t.Helper()
	e.t.Setenv("BMSG_SERVICE_NAME", name)
	return e
}

// ReadinessCheckPath overrides BMSG_READINESS_CHECK_PATH.
func (e *Env) ReadinessCheckPath(path string) *Env {
	e.t.Helper()
	e.t.Setenv("BMSG_READINESS_CHECK_PATH", path)
	return e
}

// AWSRegion overrides AWS_REGION.
func (e *Env) AWSRegion(region string) *Env {
	e.t.Helper()
	e.t.Setenv("AWS_REGION", region)
	return e
}

// BufferLimit overrides BMSG_BUFFER_LIMIT.
func (e *Env) BufferLimit(n int) *Env {
	e.t.Helper()
	e.t.Setenv("BMSG_BUFFER_LIMIT", strconv.Itoa(n))
	return e
}

// StrictFraming sets BMSG_STRICT_FRAMING.
func (e *Env) StrictFraming() *Env {
	e.t.Helper()
	e.t.Setenv("BMSG_STRICT_FRAMING", "true")
	return e
}

// SessionSecret sets BMSG_SESSION_SECRET_ID and BMSG_SESSION_SECRET_PATH,
// which enables sessions.
func (e *Env) SessionSecret(id, jsonPath string) *Env {
	e.t.Helper()
	e.t.Setenv("BMSG_SESSION_SECRET_ID", id)
	e.t.Setenv("BMSG_SESSION_SECRET_PATH", jsonPath)
	return e
}
