package bapp

import (
	"testing"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name  string
		level zapcore.Level
	}{
		{"info level", zapcore.InfoLevel},
		{"debug level", zapcore.DebugLevel},
		{"warn level", zapcore.WarnLevel},
		{"error level", zapcore.ErrorLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, err := NewLogger(BaseEnvironment{ServiceName: "test", LogLevel: tt.level})
			if err != nil {
				t.Fatalf("NewLogger() error = %v", err)
			}

			if !logger.Core().Enabled(tt.level) {
				t.Errorf("level %v not enabled", tt.level)
			}
			if tt.level > zapcore.DebugLevel && logger.Core().Enabled(tt.level-1) {
				t.Errorf("level below %v enabled", tt.level)
			}
		})
	}
}

func TestZapLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := NewBMSGLogger(zap.New(core))

	t.Run("unhandled serve error", func(t *testing.T) {
		logger.LogUnhandledServeError(errors.New("test serve error"))

		entries := logs.TakeAll()
		if len(entries) != 1 {
			t.Fatalf("expected 1 log entry, got %d", len(entries))
		}
		if entries[0].Message != "unhandled server error" {
			t.Errorf("unexpected message: %s", entries[0].Message)
		}
		if entries[0].LoggerName != "bmsg" {
			t.Errorf("unexpected logger name: %s", entries[0].LoggerName)
		}
		if entries[0].Level != zapcore.ErrorLevel {
			t.Errorf("unexpected level: %s", entries[0].Level)
		}
	})

	t.Run("framing violation", func(t *testing.T) {
		logger.LogFramingViolation("header X-Late")

		entries := logs.TakeAll()
		if len(entries) != 1 {
			t.Fatalf("expected 1 log entry, got %d", len(entries))
		}
		if entries[0].Message != "response already framed" {
			t.Errorf("unexpected message: %s", entries[0].Message)
		}
		if entries[0].Level != zapcore.WarnLevel {
			t.Errorf("unexpected level: %s", entries[0].Level)
		}
		if got := entries[0].ContextMap()["op"]; got != "header X-Late" {
			t.Errorf("unexpected op field: %v", got)
		}
	})
}
