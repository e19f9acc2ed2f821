package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/onnwee/artistrank/internal/artist"
	"github.com/onnwee/artistrank/internal/config"
	"github.com/onnwee/artistrank/internal/health"
)

// stores holds the artist repository, the optional shared Redis client and
// the readiness checks for both.
type stores struct {
	repo     artist.Repository
	redis    *redis.Client
	checkers map[string]health.Checker
	closers  []func() error
}

// Close releases every connection opened by openStores.
func (s *stores) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// openStores connects the configured artist data source. Redis is opened
// whenever REDIS_URL is set, since the rate limiter shares it.
func openStores(ctx context.Context, cfg *config.Config) (_ *stores, err error) {
	s := &stores{checkers: make(map[string]health.Checker)}
	defer func() {
		if err != nil {
			_ = s.Close()
		}
	}()

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse redis url: %w", err)
		}
		s.redis = redis.NewClient(opts)
		s.closers = append(s.closers, s.redis.Close)
		s.checkers["redis"] = health.NewRedisChecker(s.redis)
	}

	switch cfg.DataSource {
	case config.DataSourceFile:
		s.repo = artist.NewFileRepository(cfg.DataFile)
		s.checkers["artist_store"] = health.NewFileChecker(cfg.DataFile)

	case config.DataSourcePostgres:
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		s.closers = append(s.closers, db.Close)
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		s.repo = artist.NewPostgresRepository(db)
		s.checkers["artist_store"] = health.NewDBChecker(db)

	case config.DataSourceRedis:
		if s.redis == nil {
			return nil, config.ErrMissingRedisURL
		}
		s.repo = artist.NewRedisRepository(s.redis, cfg.RedisKey)
		s.checkers["artist_store"] = health.NewRedisKeyChecker(s.redis, cfg.RedisKey)

	case config.DataSourceS3:
		client, err := artist.NewS3Client(artist.S3Config{
			Bucket:          cfg.S3Bucket,
			Key:             cfg.S3Key,
			Endpoint:        cfg.S3Endpoint,
			Region:          cfg.S3Region,
			AccessKeyID:     cfg.S3AccessKeyID,
			SecretAccessKey: cfg.S3SecretAccessKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 client: %w", err)
		}
		repo, err := artist.NewS3Repository(client, cfg.S3Bucket, cfg.S3Key)
		if err != nil {
			return nil, err
		}
		s.repo = repo
		s.checkers["artist_store"] = health.NewS3Checker(client, cfg.S3Bucket, cfg.S3Key)

	default:
		return nil, fmt.Errorf("%w: %q", config.ErrInvalidDataSource, cfg.DataSource)
	}

	return s, nil
}
