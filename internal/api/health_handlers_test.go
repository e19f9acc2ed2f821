package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/onnwee/artistrank/internal/health"
	"github.com/onnwee/artistrank/internal/middleware"
)

// mockHealthChecker is a mock implementation of health.Checker for testing.
type mockHealthChecker struct {
	err   error
	delay time.Duration
}

func (m *mockHealthChecker) HealthCheck(ctx context.Context) error {
	if m.delay > 0 {
		select {
		case <-time.After(m.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return m.err
}

func decodeHealth(t *testing.T, w *httptest.ResponseRecorder) HealthResponse {
	t.Helper()
	var resp HealthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func TestHealth_Success(t *testing.T) {
	handlers := NewHealthHandlers(HealthHandlersConfig{})

	w := httptest.NewRecorder()
	handlers.Health(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}
	resp := decodeHealth(t, w)
	if resp.Status != "healthy" || resp.Checks["runtime"] != "ok" {
		t.Errorf("unexpected response %+v", resp)
	}
	if _, err := time.Parse(time.RFC3339, resp.Timestamp); err != nil {
		t.Errorf("timestamp is not valid RFC3339: %v", err)
	}
}

func TestHealthEndpoints_MethodNotAllowed(t *testing.T) {
	handlers := NewHealthHandlers(HealthHandlersConfig{})
	for name, h := range map[string]http.HandlerFunc{"health": handlers.Health, "ready": handlers.Ready} {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			h(w, httptest.NewRequest(http.MethodPost, "/"+name, nil))
			if w.Code != http.StatusMethodNotAllowed {
				t.Errorf("expected status 405, got %d", w.Code)
			}
		})
	}
}

func TestReady(t *testing.T) {
	tests := []struct {
		name       string
		checkers   map[string]health.Checker
		wantStatus int
		wantChecks map[string]string
	}{
		{
			name:       "no dependencies",
			checkers:   nil,
			wantStatus: http.StatusOK,
			wantChecks: map[string]string{},
		},
		{
			name: "all healthy",
			checkers: map[string]health.Checker{
				"artist_store": &mockHealthChecker{},
				"rate_limit":   &mockHealthChecker{},
			},
			wantStatus: http.StatusOK,
			wantChecks: map[string]string{"artist_store": "ok", "rate_limit": "ok"},
		},
		{
			name: "store down",
			checkers: map[string]health.Checker{
				"artist_store": &mockHealthChecker{err: errors.New("connection refused")},
				"rate_limit":   &mockHealthChecker{},
			},
			wantStatus: http.StatusServiceUnavailable,
			wantChecks: map[string]string{"artist_store": "error", "rate_limit": "ok"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlers := NewHealthHandlers(HealthHandlersConfig{Checkers: tt.checkers})

			w := httptest.NewRecorder()
			handlers.Ready(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			resp := decodeHealth(t, w)
			if len(resp.Checks) != len(tt.wantChecks) {
				t.Errorf("expected checks %v, got %v", tt.wantChecks, resp.Checks)
			}
			for name, want := range tt.wantChecks {
				if resp.Checks[name] != want {
					t.Errorf("check %s: expected %s, got %s", name, want, resp.Checks[name])
				}
			}
		})
	}
}

func TestReady_Timeout(t *testing.T) {
	handlers := NewHealthHandlers(HealthHandlersConfig{
		Checkers: map[string]health.Checker{"artist_store": &mockHealthChecker{delay: time.Second}},
		Timeout:  20 * time.Millisecond,
	})

	start := time.Now()
	w := httptest.NewRecorder()
	handlers.Ready(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected status 503, got %d", w.Code)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("readiness check ignored timeout, took %s", elapsed)
	}
}

func TestReady_UnhealthyBodyAndLoggedCode(t *testing.T) {
	handlers := NewHealthHandlers(HealthHandlersConfig{
		Checkers: map[string]health.Checker{"artist_store": &mockHealthChecker{err: errors.New("connection refused")}},
	})

	var logs bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logs, nil))
	handler := middleware.Logging(logger)(http.HandlerFunc(handlers.Ready))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", w.Code)
	}
	resp := decodeHealth(t, w)
	if resp.Status != "unhealthy" || resp.Checks["artist_store"] != "error" {
		t.Errorf("unexpected health body %+v", resp)
	}

	var entry map[string]any
	if err := json.Unmarshal(logs.Bytes(), &entry); err != nil {
		t.Fatalf("failed to decode log entry: %v", err)
	}
	if entry["error_code"] != ErrCodeUnavailable {
		t.Errorf("expected error_code %s, got %v", ErrCodeUnavailable, entry["error_code"])
	}
}
