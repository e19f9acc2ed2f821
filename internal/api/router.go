package api

import (
	"net/http"

	"github.com/onnwee/artistrank/internal/middleware"
)

// RouterConfig holds the handlers mounted by NewRouter.
type RouterConfig struct {
	Artists *ArtistHandlers
	Health  *HealthHandlers
	// Metrics serves /metrics when non-nil.
	Metrics http.Handler
}

// NewRouter registers the API routes. Unknown paths get the not_found envelope.
func NewRouter(cfg RouterConfig) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/artists", cfg.Artists.ListArtists)
	mux.HandleFunc("/health", cfg.Health.Health)
	mux.HandleFunc("/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		mux.Handle("/metrics", cfg.Metrics)
	}

	mux.HandleFunc("/", NotFound)
	return mux
}

// NotFound writes the not_found envelope.
func NotFound(w http.ResponseWriter, r *http.Request) {
	ctx := middleware.SetErrorCode(r.Context(), ErrCodeNotFound)
	WriteError(w, ctx, http.StatusNotFound, ErrCodeNotFound, "The requested resource was not found")
}
