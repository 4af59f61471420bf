package bapp

import (
	"context"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
)

// mockSecretReader implements SecretReader for testing.
type mockSecretReader struct {
	secrets map[string]string
	err     error
	calls   int
}

func (m *mockSecretReader) GetSecretString(_ context.Context, secretID string) (string, error) {
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	secret, ok := m.secrets[secretID]
	if !ok {
		return "", errors.Errorf("secret %q not found", secretID)
	}
	return secret, nil
}

func TestRuntime_Secret(t *testing.T) {
	tests := []struct {
		name      string
		secrets   map[string]string
		readerErr error
		secretID  string
		jsonPath  []string
		want      string
		wantErr   string
	}{
		{
			name:     "read raw string secret",
			secrets:  map[string]string{"my-api-key": "secret-key-value"},
			secretID: "my-api-key",
			want:     "secret-key-value",
		},
		{
			name:     "read JSON secret with simple path",
			secrets:  map[string]string{"my-db-creds": `{"database": {"password": "secret123"}}`},
			secretID: "my-db-creds",
			jsonPath: []string{"database.password"},
			want:     "secret123",
		},
		{
			name:     "read JSON secret with nested array",
			secrets:  map[string]string{"my-config": `{"items": [{"name": "first"}, {"name": "second"}]}`},
			secretID: "my-config",
			jsonPath: []string{"items.1.name"},
			want:     "second",
		},
		{
			name:     "path not found in JSON secret",
			secrets:  map[string]string{"my-secret": `{"foo": "bar"}`},
			secretID: "my-secret",
			jsonPath: []string{"missing.path"},
			wantErr:  `secret path "missing.path" not found`,
		},
		{
			name:      "secret reader error",
			readerErr: errors.New("AWS error"),
			secretID:  "any-secret",
			wantErr:   "AWS error",
		},
		{
			name:     "too many jsonPath arguments",
			secrets:  map[string]string{"my-secret": `{"foo": "bar"}`},
			secretID: "my-secret",
			jsonPath: []string{"one", "two"},
			wantErr:  "at most one jsonPath argument",
		},
		{
			name:     "read numeric value from JSON as string",
			secrets:  map[string]string{"my-config": `{"port": 5432}`},
			secretID: "my-config",
			jsonPath: []string{"port"},
			want:     "5432",
		},
		{
			name:     "empty jsonPath returns raw secret",
			secrets:  map[string]string{"my-secret": `{"foo": "bar"}`},
			secretID: "my-secret",
			jsonPath: []string{""},
			want:     `{"foo": "bar"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := &mockSecretReader{secrets: tt.secrets, err: tt.readerErr}
			rt := &Runtime[BaseEnvironment]{secretReader: reader}

			got, err := rt.Secret(context.Background(), tt.secretID, tt.jsonPath...)
			if tt.wantErr != "" {
				if err == nil {
					t.Fatalf("expected error containing %q, got nil", tt.wantErr)
				}
				if !strings.Contains(err.Error(), tt.wantErr) {
					t.Errorf("expected error containing %q, got %q", tt.wantErr, err.Error())
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRuntime_SecretWithoutReader(t *testing.T) {
	rt := &Runtime[BaseEnvironment]{}

	_, err := rt.Secret(context.Background(), "any")
	if err == nil || err.Error() != "bapp: secret reader not configured" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSecretKey(t *testing.T) {
	reader := &mockSecretReader{secrets: map[string]string{
		"session": `{"current": "k1", "empty": ""}`,
	}}

	t.Run("reads the key on every call", func(t *testing.T) {
		keys := SecretKey(reader, "session", "current")

		for range 2 {
			key, err := keys(context.Background())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(key) != "k1" {
				t.Errorf("got key %q", key)
			}
		}

		if reader.calls != 2 {
			t.Errorf("expected 2 reads, got %d", reader.calls)
		}
	})

	t.Run("empty key", func(t *testing.T) {
		_, err := SecretKey(reader, "session", "empty")(context.Background())
		if err == nil || !strings.Contains(err.Error(), "is empty") {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("missing secret", func(t *testing.T) {
		if _, err := SecretKey(reader, "other", "")(context.Background()); err == nil {
			t.Fatal("expected error")
		}
	})
}
