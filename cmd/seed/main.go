// Package main loads an artist dataset file into the Postgres or Redis
// artist store.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/onnwee/artistrank/internal/artist"
	"github.com/onnwee/artistrank/internal/config"
	"github.com/onnwee/artistrank/internal/middleware"
	"github.com/onnwee/artistrank/internal/stats"
)

// Seed targets.
const (
	targetPostgres = config.DataSourcePostgres
	targetRedis    = config.DataSourceRedis
)

func main() {
	help := flag.Bool("help", false, "display help message")
	configPath := flag.String("config", "", "path to an optional YAML config file")
	dataFile := flag.String("file", "", "dataset to load (defaults to DATA_FILE)")
	target := flag.String("target", targetPostgres, "store to seed: postgres or redis")
	flag.Parse()

	if *help {
		fmt.Println("Artist dataset seeder")
		fmt.Println()
		fmt.Println("Usage: seed [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	// Only connection settings are used; the API's data source checks do not apply.
	cfg, _ := config.Load(*configPath)
	if cfg == nil {
		slog.Error("failed to load config file", "path", *configPath)
		os.Exit(1)
	}
	logger := middleware.NewLogger(cfg.Env)
	slog.SetDefault(logger)

	path := *dataFile
	if path == "" {
		path = cfg.DataFile
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := run(ctx, cfg, *target, path)
	if st != nil {
		st.LogSummary(logger, *target)
	}
	if err != nil {
		logger.Error("seed failed", "error", err)
		os.Exit(1)
	}
	if st.Failed() > 0 {
		os.Exit(2)
	}
}

func run(ctx context.Context, cfg *config.Config, target, path string) (*stats.UpsertStats, error) {
	artists, err := artist.NewFileRepository(path).List(ctx)
	if err != nil {
		return nil, err
	}
	slog.Info("loaded dataset", "path", path, "artists", len(artists))

	st := stats.NewUpsertStats()
	switch target {
	case targetPostgres:
		if cfg.DatabaseURL == "" {
			return nil, config.ErrMissingDatabaseURL
		}
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()
		return st, seedRows(ctx, artist.NewPostgresRepository(db), artists, st)

	case targetRedis:
		if cfg.RedisURL == "" {
			return nil, config.ErrMissingRedisURL
		}
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		defer client.Close()
		return st, seedDocument(ctx, artist.NewRedisRepository(client, cfg.RedisKey), artists, st)

	default:
		return nil, fmt.Errorf("unsupported target %q: want postgres or redis", target)
	}
}

// upserter writes one artist at a time.
type upserter interface {
	Upsert(ctx context.Context, a artist.Artist) (inserted bool, err error)
}

// seedRows upserts artists one by one. Rejected records are logged and
// counted; the run stops only when ctx is cancelled.
func seedRows(ctx context.Context, u upserter, artists []artist.Artist, st *stats.UpsertStats) error {
	for _, a := range artists {
		if err := ctx.Err(); err != nil {
			return err
		}
		inserted, err := u.Upsert(ctx, a)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			st.RecordFailure()
			slog.Warn("failed to write artist", "uuid", a.UUID, "error", err)
			continue
		}
		st.Record(inserted)
	}
	return nil
}

// documentStore holds the whole dataset as one value.
type documentStore interface {
	List(ctx context.Context) ([]artist.Artist, error)
	Store(ctx context.Context, artists []artist.Artist) error
}

// seedDocument merges artists into the stored document by UUID, keeping
// the existing order and appending new artists. Counts are recorded only
// once the merged document is stored; a failed write counts every artist
// as failed.
func seedDocument(ctx context.Context, store documentStore, artists []artist.Artist, st *stats.UpsertStats) error {
	existing, err := store.List(ctx)
	if err != nil {
		return err
	}

	index := make(map[string]int, len(existing))
	for i, a := range existing {
		index[a.UUID] = i
	}

	merged := existing
	outcomes := make([]bool, 0, len(artists))
	for _, a := range artists {
		if i, ok := index[a.UUID]; ok {
			merged[i] = a
			outcomes = append(outcomes, false)
			continue
		}
		index[a.UUID] = len(merged)
		merged = append(merged, a)
		outcomes = append(outcomes, true)
	}

	if err := store.Store(ctx, merged); err != nil {
		for range outcomes {
			st.RecordFailure()
		}
		return err
	}
	for _, inserted := range outcomes {
		st.Record(inserted)
	}
	return nil
}
