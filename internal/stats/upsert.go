// Package stats counts the outcome of bulk artist writes.
package stats

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
)

// UpsertStats tracks inserted, updated and failed records.
// Safe for concurrent use.
type UpsertStats struct {
	inserted atomic.Int64
	updated  atomic.Int64
	failed   atomic.Int64
}

// NewUpsertStats creates a new UpsertStats instance.
func NewUpsertStats() *UpsertStats {
	return &UpsertStats{}
}

// Record counts one successful write.
func (s *UpsertStats) Record(inserted bool) {
	if inserted {
		s.inserted.Add(1)
		return
	}
	s.updated.Add(1)
}

// RecordFailure counts one record that could not be written.
func (s *UpsertStats) RecordFailure() {
	s.failed.Add(1)
}

// Inserted returns the number of new records.
func (s *UpsertStats) Inserted() int64 { return s.inserted.Load() }

// Updated returns the number of overwritten records.
func (s *UpsertStats) Updated() int64 { return s.updated.Load() }

// Failed returns the number of rejected records.
func (s *UpsertStats) Failed() int64 { return s.failed.Load() }

// Total returns every record seen, including failures.
func (s *UpsertStats) Total() int64 {
	return s.Inserted() + s.Updated() + s.Failed()
}

func (s *UpsertStats) String() string {
	return fmt.Sprintf("inserted=%d updated=%d failed=%d total=%d", s.Inserted(), s.Updated(), s.Failed(), s.Total())
}

// LogSummary logs the counters at INFO, or WARN when any record failed.
func (s *UpsertStats) LogSummary(logger *slog.Logger, target string) {
	level := slog.LevelInfo
	if s.Failed() > 0 {
		level = slog.LevelWarn
	}
	logger.Log(context.Background(), level, "seed complete",
		"target", target,
		"inserted", s.Inserted(),
		"updated", s.Updated(),
		"failed", s.Failed(),
		"total", s.Total(),
	)
}
