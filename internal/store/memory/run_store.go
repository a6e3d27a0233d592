// Package memory provides in-memory store implementations for
// development and testing.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cividex/portalwatch/internal/portal"
)

// RunStore keeps scrape runs in memory.
type RunStore struct {
	mu   sync.RWMutex
	runs []portal.ScrapeRun
}

// NewRunStore constructs a RunStore.
func NewRunStore() *RunStore {
	return &RunStore{}
}

// LogRun appends a run, assigning an ID when missing.
func (s *RunStore) LogRun(_ context.Context, run portal.ScrapeRun) (portal.ScrapeRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	s.runs = append(s.runs, run)
	return run, nil
}

// RunsSince returns runs that started at or after the cutoff.
func (s *RunStore) RunsSince(_ context.Context, since time.Time) ([]portal.ScrapeRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []portal.ScrapeRun
	for _, r := range s.runs {
		if !r.StartedAt.Before(since) {
			out = append(out, r)
		}
	}
	return out, nil
}

// RecentFailures returns the newest failed runs, most recent first.
func (s *RunStore) RecentFailures(_ context.Context, limit int) ([]portal.ScrapeRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var failed []portal.ScrapeRun
	for _, r := range s.runs {
		if r.Status == portal.RunStatusFailed {
			failed = append(failed, r)
		}
	}
	sort.Slice(failed, func(i, j int) bool {
		return failed[i].StartedAt.After(failed[j].StartedAt)
	})
	if limit > 0 && len(failed) > limit {
		failed = failed[:limit]
	}
	return failed, nil
}
