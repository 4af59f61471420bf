package bapp

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestServerTimeouts(t *testing.T) {
	tests := []struct {
		name                          string
		timeout                       time.Duration
		readHeader, read, write, idle time.Duration
	}{
		{"default", 30 * time.Second, 5 * time.Second, 30 * time.Second, 30 * time.Second, 60 * time.Second},
		{"short", 2 * time.Second, 2 * time.Second, 2 * time.Second, 2 * time.Second, 4 * time.Second},
		{"zero falls back", 0, 5 * time.Second, 30 * time.Second, 30 * time.Second, 60 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rh, r, w, i := serverTimeouts(tt.timeout)
			if rh != tt.readHeader || r != tt.read || w != tt.write || i != tt.idle {
				t.Errorf("serverTimeouts(%v) = %v %v %v %v", tt.timeout, rh, r, w, i)
			}
		})
	}
}

func TestDefaultHealthHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	defaultHealthHandler(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}
