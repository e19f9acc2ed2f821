package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/onnwee/artistrank/internal/discovery"
	"github.com/onnwee/artistrank/internal/middleware"
	"github.com/onnwee/artistrank/internal/ranking"
)

// Query parameter prefixes for GET /artists.
const (
	filterPrefix = "filter_"
	weightPrefix = "weight_"
	// rankingPrefix is an older spelling of weightPrefix.
	rankingPrefix = "ranking_"
)

// ArtistLister runs a ranked artist query. *discovery.Service implements it.
type ArtistLister interface {
	List(ctx context.Context, filters, weights map[string]string) ([]ranking.Result, error)
}

// ArtistHandlers serves the artist listing endpoint.
type ArtistHandlers struct {
	lister ArtistLister
}

// NewArtistHandlers creates handlers backed by lister.
func NewArtistHandlers(lister ArtistLister) *ArtistHandlers {
	return &ArtistHandlers{lister: lister}
}

// SplitQuery sorts query parameters into filter and weight maps keyed by
// the name after the prefix. Only the first value of a repeated parameter
// is used. Unprefixed parameters are ignored. weight_ wins over ranking_
// for the same name.
func SplitQuery(values url.Values) (filters, weights map[string]string) {
	filters = make(map[string]string)
	weights = make(map[string]string)
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}
		switch {
		case strings.HasPrefix(key, filterPrefix):
			filters[strings.TrimPrefix(key, filterPrefix)] = vals[0]
		case strings.HasPrefix(key, weightPrefix):
			weights[strings.TrimPrefix(key, weightPrefix)] = vals[0]
		}
	}
	for key, vals := range values {
		if len(vals) == 0 || !strings.HasPrefix(key, rankingPrefix) {
			continue
		}
		name := strings.TrimPrefix(key, rankingPrefix)
		if _, ok := weights[name]; !ok {
			weights[name] = vals[0]
		}
	}
	return filters, weights
}

// ListArtists handles GET /artists.
//
// Query parameters:
//   - filter_age=N or filter_age=min,max, filter_age_min, filter_age_max
//   - filter_location=lat,lon,radius_miles
//   - filter_rate_max, filter_gender
//   - weight_age, weight_distance, weight_rate (ranking_* accepted)
//
// Responds with a JSON array of ranked artists, best first.
func (h *ArtistHandlers) ListArtists(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeMethodNotAllowed)
		w.Header().Set("Allow", http.MethodGet)
		WriteError(w, ctx, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "Method not allowed")
		return
	}

	filters, weights := SplitQuery(r.URL.Query())

	results, err := h.lister.List(r.Context(), filters, weights)
	if err != nil {
		writeFailure(w, r, err)
		return
	}
	if results == nil {
		results = []ranking.Result{}
	}

	body, err := json.Marshal(results)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to encode artist list", "error", err)
		ctx := middleware.SetErrorCode(r.Context(), ErrCodeInternal)
		WriteError(w, ctx, http.StatusInternalServerError, ErrCodeInternal, "Failed to encode artist list")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(append(body, '\n')); err != nil {
		slog.ErrorContext(r.Context(), "failed to write artist list", "error", err)
	}
}

// writeFailure maps a discovery failure onto the error envelope.
func writeFailure(w http.ResponseWriter, r *http.Request, err error) {
	f := discovery.Classify(err)

	code := ErrCodeInternal
	message := "Internal server error"
	switch f.Kind {
	case discovery.KindParameter:
		code = ErrCodeValidation
		message = f.Message
	case discovery.KindResource:
		code = ErrCodeNotFound
		message = f.Message
	case discovery.KindSystem:
		message = f.Message
	}

	var perr *ranking.ParameterError
	if errors.As(err, &perr) {
		slog.DebugContext(r.Context(), "invalid artist query", "group", perr.Group, "name", perr.Name)
	}

	ctx := middleware.SetErrorCode(r.Context(), code)
	WriteError(w, ctx, StatusCodeMapping(code), code, message)
}
