package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewRouter(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})
	router := NewRouter(RouterConfig{
		Artists: NewArtistHandlers(fixtureService()),
		Health:  NewHealthHandlers(HealthHandlersConfig{}),
		Metrics: metrics,
	})

	tests := []struct {
		path       string
		wantStatus int
	}{
		{"/artists", http.StatusOK},
		{"/health", http.StatusOK},
		{"/ready", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/", http.StatusNotFound},
		{"/artists/123", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if w.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantStatus == http.StatusNotFound {
				if resp := decodeError(t, w.Body.Bytes()); resp.Error.Code != ErrCodeNotFound {
					t.Errorf("expected not_found envelope, got %s", resp.Error.Code)
				}
			}
		})
	}
}

func TestNewRouter_WithoutMetrics(t *testing.T) {
	router := NewRouter(RouterConfig{
		Artists: NewArtistHandlers(fixtureService()),
		Health:  NewHealthHandlers(HealthHandlersConfig{}),
	})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 without a metrics handler, got %d", w.Code)
	}
}
