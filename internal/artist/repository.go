package artist

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/onnwee/artistrank/internal/tracing"
)

// InMemoryRepository is an in-memory implementation of Repository.
// Used for testing and development.
type InMemoryRepository struct {
	mu      sync.RWMutex
	artists []Artist
}

// NewInMemoryRepository creates a new in-memory repository seeded with artists.
func NewInMemoryRepository(artists ...Artist) *InMemoryRepository {
	r := &InMemoryRepository{}
	r.artists = append(r.artists, artists...)
	return r
}

// Insert appends an artist to the store.
func (r *InMemoryRepository) Insert(a Artist) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.artists = append(r.artists, a)
}

// List returns a copy of every stored artist in insertion order.
func (r *InMemoryRepository) List(_ context.Context) ([]Artist, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Artist, len(r.artists))
	copy(out, r.artists)
	return out, nil
}

// FileRepository reads a dataset document from disk on every List call, so
// edits to the file are visible to the next query without a restart.
type FileRepository struct {
	path   string
	format Format
}

// NewFileRepository creates a repository backed by the dataset file at path.
// The format is chosen from the file extension (.cbor or JSON otherwise).
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path:   path,
		format: FormatFromPath(path),
	}
}

// List reads and decodes the dataset file.
func (r *FileRepository) List(ctx context.Context) (artists []Artist, err error) {
	_, endSpan := tracing.StartSpan(ctx, "artist.file.list")
	defer func() { endSpan(err) }()

	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artist file %s: %w", r.path, err)
	}

	artists, err = Decode(data, r.format)
	if err != nil {
		return nil, fmt.Errorf("failed to load artist file %s: %w", r.path, err)
	}

	slog.DebugContext(ctx, "loaded artists from file", "path", r.path, "count", len(artists))
	return artists, nil
}
