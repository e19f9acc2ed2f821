package discovery

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/onnwee/artistrank/internal/artist"
	"github.com/onnwee/artistrank/internal/geo"
	"github.com/onnwee/artistrank/internal/ranking"
	"github.com/onnwee/artistrank/internal/tracing"
)

// Service lists ranked artists. It keeps no per-query state; every call
// reloads the artist set from the repository.
type Service struct {
	repo    artist.Repository
	engine  *ranking.Engine
	metrics *Metrics
}

// NewService creates a Service. metrics may be nil.
func NewService(repo artist.Repository, engine *ranking.Engine, metrics *Metrics) *Service {
	return &Service{repo: repo, engine: engine, metrics: metrics}
}

// List parses filters and weights, loads every artist and returns the
// survivors ordered by global rank. Either map may be nil. Every error
// returned is a *Failure.
func (s *Service) List(ctx context.Context, filters, weights map[string]string) (results []ranking.Result, err error) {
	start := time.Now()
	candidates := 0

	ctx, endSpan := tracing.StartSpan(ctx, "discovery.list",
		attribute.Int("filters", len(filters)),
		attribute.Int("weights", len(weights)),
	)
	defer func() {
		outcome := OutcomeSuccess
		if f := Classify(err); f != nil {
			outcome = string(f.Kind)
			err = f
		}
		s.metrics.observe(outcome, time.Since(start).Seconds(), candidates, len(results))
		endSpan(err)
	}()

	q, err := ranking.ParseQuery(filters, weights)
	if err != nil {
		slog.InfoContext(ctx, "rejected artist query", "error", err)
		return nil, err
	}
	if q.Location != nil {
		// Coarse cell only; exact coordinates stay out of traces.
		tracing.SetAttributes(ctx,
			attribute.String("query.area", q.Location.Centre().Geohash(geo.AreaPrecision)),
			attribute.Float64("query.radius_miles", q.Location.RadiusMiles),
		)
	}

	artists, err := s.repo.List(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load artists", "error", err)
		return nil, err
	}
	candidates = len(artists)

	results = s.engine.Rank(artists, q)

	tracing.SetAttributes(ctx,
		attribute.Int("candidates", candidates),
		attribute.Int("results", len(results)),
	)
	slog.DebugContext(ctx, "ranked artists",
		"candidates", candidates,
		"results", len(results),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return results, nil
}
