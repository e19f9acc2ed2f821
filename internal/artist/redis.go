package artist

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/onnwee/artistrank/internal/tracing"
)

// DefaultRedisKey is the key holding the dataset document when none is configured.
const DefaultRedisKey = "artists:dataset"

// RedisRepository reads the dataset document stored under a single Redis key.
// The document is the same JSON shape the file repository reads.
type RedisRepository struct {
	client *redis.Client
	key    string
}

// NewRedisRepository creates a repository reading from key (DefaultRedisKey if empty).
func NewRedisRepository(client *redis.Client, key string) *RedisRepository {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisRepository{client: client, key: key}
}

// List fetches and decodes the dataset. A missing key yields an empty set.
func (r *RedisRepository) List(ctx context.Context) (artists []Artist, err error) {
	ctx, endSpan := tracing.StartSpan(ctx, "artist.redis.list")
	defer func() { endSpan(err) }()

	data, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []Artist{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read artists from redis key %s: %w", r.key, err)
	}

	artists, err = Decode(data, FormatJSON)
	if err != nil {
		return nil, fmt.Errorf("failed to load artists from redis key %s: %w", r.key, err)
	}
	return artists, nil
}

// Store replaces the dataset document with artists.
func (r *RedisRepository) Store(ctx context.Context, artists []Artist) error {
	data, err := Encode(artists, FormatJSON)
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("failed to write artists to redis key %s: %w", r.key, err)
	}
	return nil
}
