package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	relayerrors "github.com/sirseerhq/survey-relay/internal/errors"
	"github.com/sirseerhq/survey-relay/internal/vibrent"
)

func TestMapErrorToExitCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{
			name:     "nil error",
			err:      nil,
			wantCode: 0,
		},
		{
			name:     "general error",
			err:      os.ErrClosed,
			wantCode: 1,
		},
		{
			name:     "invalid config",
			err:      relayerrors.ErrInvalidConfig,
			wantCode: 1,
		},
		{
			name:     "api request failure",
			err:      relayerrors.ErrAPIRequest,
			wantCode: 1,
		},
		{
			name:     "missing credentials",
			err:      relayerrors.ErrMissingCredentials,
			wantCode: 2,
		},
		{
			name:     "auth failure",
			err:      relayerrors.ErrAuthFailed,
			wantCode: 2,
		},
		{
			name:     "export not found",
			err:      relayerrors.ErrExportNotFound,
			wantCode: 2,
		},
		{
			name:     "network failure",
			err:      relayerrors.ErrNetworkFailure,
			wantCode: 3,
		},
		{
			name:     "wrapped auth failure",
			err:      fmt.Errorf("token request: %w", relayerrors.ErrAuthFailed),
			wantCode: 2,
		},
		{
			name:     "wrapped network failure",
			err:      fmt.Errorf("status check: %w", relayerrors.ErrNetworkFailure),
			wantCode: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapErrorToExitCode(tt.err)
			if got != tt.wantCode {
				t.Errorf("mapErrorToExitCode(%v) = %d, want %d", tt.err, got, tt.wantCode)
			}
		})
	}
}

// writeTestConfig writes a minimal valid config pointing at baseURL.
func writeTestConfig(t *testing.T, dir, baseURL string) string {
	t.Helper()

	content := fmt.Sprintf(`environment:
  default: test
  environments:
    test:
      base_url: %s
      token_url: %s/oauth/token
`, baseURL, baseURL)

	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing test config: %v", err)
	}
	return path
}

func TestRunExport_ConfigErrors(t *testing.T) {
	t.Run("missing config file", func(t *testing.T) {
		err := runExport(context.Background(), "/nonexistent/config.yaml", "", "")
		if err == nil {
			t.Fatal("runExport() error = nil, want error for missing config file")
		}
	})

	t.Run("no environments declared", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		if err := os.WriteFile(path, []byte("logging:\n  level: info\n"), 0o644); err != nil {
			t.Fatalf("writing config: %v", err)
		}

		err := runExport(context.Background(), path, "", "")
		if !errors.Is(err, relayerrors.ErrInvalidConfig) {
			t.Fatalf("runExport() error = %v, want ErrInvalidConfig", err)
		}
	})

	t.Run("unknown environment", func(t *testing.T) {
		path := writeTestConfig(t, t.TempDir(), "https://example.invalid")

		err := runExport(context.Background(), path, "production", "")
		if !errors.Is(err, relayerrors.ErrInvalidConfig) {
			t.Fatalf("runExport() error = %v, want ErrInvalidConfig", err)
		}
	})
}

func TestRunExport_MissingCredentials(t *testing.T) {
	t.Setenv("VIBRENT_CLIENT_ID", "")
	t.Setenv("VIBRENT_CLIENT_SECRET", "")

	path := writeTestConfig(t, t.TempDir(), "https://example.invalid")

	err := runExport(context.Background(), path, "", t.TempDir())
	if !errors.Is(err, relayerrors.ErrMissingCredentials) {
		t.Fatalf("runExport() error = %v, want ErrMissingCredentials", err)
	}
}

func TestRunSurveys_MockServer(t *testing.T) {
	t.Setenv("VIBRENT_CLIENT_ID", "test-client")
	t.Setenv("VIBRENT_CLIENT_SECRET", "test-secret")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/token":
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `{"access_token":"test-token","token_type":"bearer","expires_in":3600}`)
		case "/api/ext/forms":
			if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			fmt.Fprint(w, `[
				{"id": 1, "name": "baseline", "displayName": "Baseline", "platformFormId": 101},
				{"id": 2, "name": "followup", "displayName": "Follow-up", "platformFormId": 102}
			]`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	dir := t.TempDir()
	configPath := writeTestConfig(t, dir, server.URL)
	outputFile := filepath.Join(dir, "surveys.ndjson")

	if err := runSurveys(context.Background(), configPath, "", outputFile); err != nil {
		t.Fatalf("runSurveys() error = %v", err)
	}

	data, err := os.ReadFile(outputFile)
	if err != nil {
		t.Fatalf("reading output file: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d NDJSON lines, want 2", len(lines))
	}

	var first vibrent.Survey
	if err := json.Unmarshal([]byte(lines[0]), &first); err != nil {
		t.Fatalf("parsing first line: %v", err)
	}
	if first.PlatformFormID != 101 {
		t.Errorf("first survey platformFormId = %d, want 101", first.PlatformFormID)
	}
	if first.Name != "baseline" {
		t.Errorf("first survey name = %q, want baseline", first.Name)
	}
}

func TestRunSurveys_AuthFailure(t *testing.T) {
	t.Setenv("VIBRENT_CLIENT_ID", "bad-client")
	t.Setenv("VIBRENT_CLIENT_SECRET", "bad-secret")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"invalid_client"}`)
	}))
	defer server.Close()

	configPath := writeTestConfig(t, t.TempDir(), server.URL)

	err := runSurveys(context.Background(), configPath, "", "")
	if !errors.Is(err, relayerrors.ErrAuthFailed) {
		t.Fatalf("runSurveys() error = %v, want ErrAuthFailed", err)
	}
}
