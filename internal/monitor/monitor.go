// Package monitor computes run-history dashboards: overall success
// rates, per-source health, tier rollups and chronic-failure detection.
// Everything derives from the run store; the catalog supplies the
// source universe so sources and tiers with no runs still appear.
package monitor

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/cividex/portalwatch/internal/catalog"
	"github.com/cividex/portalwatch/internal/portal"
)

// Failure thresholds over the trailing 24 hours.
const (
	criticalFailures = 3
	warningFailures  = 1
)

// DefaultWindow is the dashboard lookback when none is given.
const DefaultWindow = 24 * time.Hour

// DefaultChronicMin is the failure floor for chronic detection.
const DefaultChronicMin = 3

// Level grades a source's recent failure history.
type Level string

// Health levels, worst first.
const (
	LevelCritical Level = "critical"
	LevelWarning  Level = "warning"
	LevelHealthy  Level = "healthy"
)

// Monitor answers dashboard queries over the run history.
type Monitor struct {
	catalog *catalog.Catalog
	runs    portal.RunStore
	clock   portal.Clock
	logger  *zap.Logger
}

// New constructs a Monitor.
func New(cat *catalog.Catalog, runs portal.RunStore, clock portal.Clock, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{catalog: cat, runs: runs, clock: clock, logger: logger}
}

// Stats aggregates the runs inside one lookback window.
type Stats struct {
	Window         time.Duration `json:"-"`
	WindowHours    float64       `json:"window_hours"`
	Total          int           `json:"total_runs"`
	Success        int           `json:"success"`
	Failed         int           `json:"failed"`
	Skipped        int           `json:"skipped"`
	SuccessRate    float64       `json:"success_rate"`
	RecordsNew     int           `json:"records_new"`
	RecordsUpdated int           `json:"records_updated"`
}

// Overall computes run totals for the window. A non-positive window
// falls back to the default 24 hours. The success rate divides by at
// least one so an idle window reads as rate zero, not an error.
func (m *Monitor) Overall(ctx context.Context, window time.Duration) (Stats, error) {
	if window <= 0 {
		window = DefaultWindow
	}
	runs, err := m.runs.RunsSince(ctx, m.clock.Now().Add(-window))
	if err != nil {
		return Stats{}, fmt.Errorf("load runs: %w", err)
	}
	s := Stats{Window: window, WindowHours: window.Hours()}
	for _, r := range runs {
		s.Total++
		switch r.Status {
		case portal.RunStatusSuccess:
			s.Success++
			s.RecordsNew += r.RecordsNew
			s.RecordsUpdated += r.RecordsUpdated
		case portal.RunStatusFailed:
			s.Failed++
		case portal.RunStatusSkipped:
			s.Skipped++
		}
	}
	s.SuccessRate = float64(s.Success) / float64(max(s.Total, 1))
	return s, nil
}

// SourceHealth is one source's recent-failure grade.
type SourceHealth struct {
	SourceCode string           `json:"source_code"`
	Name       string           `json:"name"`
	Tier       int              `json:"tier"`
	Level      Level            `json:"level"`
	Failures   int              `json:"failures_24h"`
	Successes  int              `json:"successes_24h"`
	LastRun    *time.Time       `json:"last_run,omitempty"`
	LastStatus portal.RunStatus `json:"last_status,omitempty"`
}

// Health grades every catalog source by its trailing-24h failures.
// Sources with no runs at all grade healthy. Results are ordered worst
// first, then by source code.
func (m *Monitor) Health(ctx context.Context) ([]SourceHealth, error) {
	runs, err := m.runs.RunsSince(ctx, m.clock.Now().Add(-DefaultWindow))
	if err != nil {
		return nil, fmt.Errorf("load runs: %w", err)
	}
	bySource := make(map[string]*SourceHealth)
	var out []SourceHealth
	for _, src := range m.catalog.All() {
		bySource[src.Code] = &SourceHealth{
			SourceCode: src.Code,
			Name:       src.Name,
			Tier:       src.Tier,
			Level:      LevelHealthy,
		}
	}
	for _, r := range runs {
		h, ok := bySource[r.SourceCode]
		if !ok {
			// Run for a source since removed from the catalog.
			continue
		}
		switch r.Status {
		case portal.RunStatusFailed:
			h.Failures++
		case portal.RunStatusSuccess:
			h.Successes++
		}
		if h.LastRun == nil || r.StartedAt.After(*h.LastRun) {
			started := r.StartedAt
			h.LastRun = &started
			h.LastStatus = r.Status
		}
	}
	for _, src := range m.catalog.All() {
		h := bySource[src.Code]
		switch {
		case h.Failures >= criticalFailures:
			h.Level = LevelCritical
		case h.Failures >= warningFailures:
			h.Level = LevelWarning
		}
		out = append(out, *h)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Level != out[j].Level {
			return levelRank(out[i].Level) < levelRank(out[j].Level)
		}
		return out[i].SourceCode < out[j].SourceCode
	})
	return out, nil
}

func levelRank(l Level) int {
	switch l {
	case LevelCritical:
		return 0
	case LevelWarning:
		return 1
	default:
		return 2
	}
}

// TierStats rolls one cadence tier up across the window.
type TierStats struct {
	Tier        int     `json:"tier"`
	Sources     int     `json:"sources"`
	Runs        int     `json:"runs"`
	Success     int     `json:"success"`
	Failed      int     `json:"failed"`
	Skipped     int     `json:"skipped"`
	SuccessRate float64 `json:"success_rate"`
}

// TierRollup aggregates runs per tier. Tiers with no runs in the
// window still appear with zero counts.
func (m *Monitor) TierRollup(ctx context.Context, window time.Duration) ([]TierStats, error) {
	if window <= 0 {
		window = DefaultWindow
	}
	runs, err := m.runs.RunsSince(ctx, m.clock.Now().Add(-window))
	if err != nil {
		return nil, fmt.Errorf("load runs: %w", err)
	}
	tierOf := make(map[string]int)
	byTier := make(map[int]*TierStats)
	for _, src := range m.catalog.All() {
		tierOf[src.Code] = src.Tier
		if _, ok := byTier[src.Tier]; !ok {
			byTier[src.Tier] = &TierStats{Tier: src.Tier}
		}
		byTier[src.Tier].Sources++
	}
	for _, r := range runs {
		tier, ok := tierOf[r.SourceCode]
		if !ok {
			continue
		}
		ts := byTier[tier]
		ts.Runs++
		switch r.Status {
		case portal.RunStatusSuccess:
			ts.Success++
		case portal.RunStatusFailed:
			ts.Failed++
		case portal.RunStatusSkipped:
			ts.Skipped++
		}
	}
	tiers := make([]int, 0, len(byTier))
	for tier := range byTier {
		tiers = append(tiers, tier)
	}
	sort.Ints(tiers)
	out := make([]TierStats, 0, len(tiers))
	for _, tier := range tiers {
		ts := byTier[tier]
		ts.SuccessRate = float64(ts.Success) / float64(max(ts.Runs, 1))
		out = append(out, *ts)
	}
	return out, nil
}

// ChronicFailure flags a source failing repeatedly with no success.
type ChronicFailure struct {
	SourceCode string `json:"source_code"`
	Name       string `json:"name"`
	Failures   int    `json:"failures"`
	LastError  string `json:"last_error,omitempty"`
}

// ChronicFailures lists sources with at least minFailures failed runs
// and no successful run inside the window. minFailures below 1 falls
// back to the default of 3.
func (m *Monitor) ChronicFailures(ctx context.Context, window time.Duration, minFailures int) ([]ChronicFailure, error) {
	if window <= 0 {
		window = DefaultWindow
	}
	if minFailures < 1 {
		minFailures = DefaultChronicMin
	}
	runs, err := m.runs.RunsSince(ctx, m.clock.Now().Add(-window))
	if err != nil {
		return nil, fmt.Errorf("load runs: %w", err)
	}
	type tally struct {
		failures  int
		successes int
		lastFail  time.Time
		lastError string
	}
	bySource := make(map[string]*tally)
	for _, r := range runs {
		t, ok := bySource[r.SourceCode]
		if !ok {
			t = &tally{}
			bySource[r.SourceCode] = t
		}
		switch r.Status {
		case portal.RunStatusFailed:
			t.failures++
			if r.StartedAt.After(t.lastFail) {
				t.lastFail = r.StartedAt
				if len(r.Errors) > 0 {
					t.lastError = r.Errors[len(r.Errors)-1]
				}
			}
		case portal.RunStatusSuccess:
			t.successes++
		}
	}
	var out []ChronicFailure
	for _, src := range m.catalog.All() {
		t, ok := bySource[src.Code]
		if !ok || t.successes > 0 || t.failures < minFailures {
			continue
		}
		out = append(out, ChronicFailure{
			SourceCode: src.Code,
			Name:       src.Name,
			Failures:   t.failures,
			LastError:  t.lastError,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Failures != out[j].Failures {
			return out[i].Failures > out[j].Failures
		}
		return out[i].SourceCode < out[j].SourceCode
	})
	return out, nil
}

// RecentErrors returns the most recent failed runs, newest first.
func (m *Monitor) RecentErrors(ctx context.Context, limit int) ([]portal.ScrapeRun, error) {
	if limit < 1 {
		limit = 20
	}
	runs, err := m.runs.RecentFailures(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("load failures: %w", err)
	}
	return runs, nil
}
