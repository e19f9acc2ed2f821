// Package health provides readiness checks for the artist data stores.
package health

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Checker reports whether a dependency can serve requests.
type Checker interface {
	HealthCheck(ctx context.Context) error
}

// Result is the outcome of one named check.
type Result struct {
	Name string
	Err  error
}

// RunAll runs every checker concurrently and returns the results sorted by
// name. A failing check does not cancel the others.
func RunAll(ctx context.Context, checkers map[string]Checker) []Result {
	var (
		mu      sync.Mutex
		results = make([]Result, 0, len(checkers))
		g       errgroup.Group
	)
	for name, c := range checkers {
		g.Go(func() error {
			err := c.HealthCheck(ctx)
			mu.Lock()
			results = append(results, Result{Name: name, Err: err})
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	return results
}
