package scheduler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cividex/portalwatch/internal/catalog"
	"github.com/cividex/portalwatch/internal/portal"
	"github.com/cividex/portalwatch/internal/registry"
)

// adHocStagger spaces the dispatches of one ad-hoc request so a tier or
// region kickoff does not land on every portal at once.
const adHocStagger = 30 * time.Second

// defaultBackfillYears is the historical window used when a backfill
// request carries no explicit date range.
const defaultBackfillYears = 1

// Scheduler enqueues dispatches, both from the recurring calendar and
// from ad-hoc requests. The only request rejected at trigger time is
// one naming an unknown source; everything else is enqueued and
// resolved by the runner.
type Scheduler struct {
	catalog  *catalog.Catalog
	registry *registry.Registry
	queue    portal.Queue
	tracker  *Tracker
	ids      portal.IDGenerator
	clock    portal.Clock
	logger   *zap.Logger

	calendar []Entry
	nextDue  map[string]time.Time
}

// New constructs a Scheduler with the calendar built from the catalog.
func New(
	cat *catalog.Catalog,
	reg *registry.Registry,
	queue portal.Queue,
	tracker *Tracker,
	ids portal.IDGenerator,
	clock portal.Clock,
	logger *zap.Logger,
) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		catalog:  cat,
		registry: reg,
		queue:    queue,
		tracker:  tracker,
		ids:      ids,
		clock:    clock,
		logger:   logger,
		calendar: BuildCalendar(cat),
		nextDue:  make(map[string]time.Time),
	}
}

// Calendar returns the recurring entries derived from the catalog.
func (s *Scheduler) Calendar() []Entry {
	out := make([]Entry, len(s.calendar))
	copy(out, s.calendar)
	return out
}

// dispatch stamps, tracks and enqueues a single dispatch.
func (s *Scheduler) dispatch(ctx context.Context, d portal.Dispatch) (portal.Dispatch, error) {
	d.ID = s.ids.NewID()
	d.Enqueued = s.clock.Now()
	s.tracker.Track(d)
	if err := s.queue.Enqueue(ctx, d); err != nil {
		s.tracker.MarkDone(d.ID, StateCancelled, s.clock.Now(), nil)
		return portal.Dispatch{}, fmt.Errorf("enqueue dispatch for %s: %w", d.SourceCode, err)
	}
	s.logger.Debug("dispatch enqueued",
		zap.String("dispatch_id", d.ID),
		zap.String("source", d.SourceCode),
		zap.String("kind", string(d.Kind)),
		zap.String("mode", string(d.Mode)))
	return d, nil
}

// ScheduleSource enqueues one scrape for a single source. An unknown
// source code is rejected here; every other condition surfaces as a
// run outcome, not a scheduling error.
func (s *Scheduler) ScheduleSource(ctx context.Context, code string, mode portal.Mode, dr portal.DateRange) (portal.Dispatch, error) {
	if _, ok := s.catalog.ByCode(code); !ok {
		return portal.Dispatch{}, fmt.Errorf("unknown source %q", code)
	}
	return s.dispatch(ctx, portal.Dispatch{
		Kind:       portal.KindScrape,
		SourceCode: code,
		Mode:       mode,
		DateRange:  dr,
	})
}

// ScheduleTier enqueues scrapes for every active source in a tier,
// staggered 30 seconds apart.
func (s *Scheduler) ScheduleTier(ctx context.Context, tier int, mode portal.Mode) ([]portal.Dispatch, error) {
	if tier < catalog.MinTier || tier > catalog.MaxTier {
		return nil, fmt.Errorf("tier %d out of range", tier)
	}
	return s.scheduleAll(ctx, s.catalog.ByTier(tier), mode, portal.DateRange{})
}

// ScheduleRegion enqueues scrapes for every active source in a region,
// staggered 30 seconds apart.
func (s *Scheduler) ScheduleRegion(ctx context.Context, region catalog.Region, mode portal.Mode) ([]portal.Dispatch, error) {
	sources := s.catalog.ByRegion(region)
	if len(sources) == 0 {
		return nil, fmt.Errorf("unknown region %q", region)
	}
	return s.scheduleAll(ctx, sources, mode, portal.DateRange{})
}

// ScheduleBackfill enqueues historical scrapes for the named sources,
// or for every active source when codes is empty. A zero range covers
// the trailing year.
func (s *Scheduler) ScheduleBackfill(ctx context.Context, codes []string, dr portal.DateRange) ([]portal.Dispatch, error) {
	if dr.IsZero() {
		now := s.clock.Now()
		dr = portal.DateRange{Start: now.AddDate(-defaultBackfillYears, 0, 0), End: now}
	}
	var sources []catalog.Source
	if len(codes) == 0 {
		sources = s.catalog.All()
	} else {
		for _, code := range codes {
			src, ok := s.catalog.ByCode(code)
			if !ok {
				return nil, fmt.Errorf("unknown source %q", code)
			}
			sources = append(sources, src)
		}
	}
	return s.scheduleAll(ctx, sources, portal.ModeHistorical, dr)
}

// ScheduleMappingLearning enqueues a field-mapping learning pass over
// the source's latest raw batch.
func (s *Scheduler) ScheduleMappingLearning(ctx context.Context, code string) (portal.Dispatch, error) {
	if _, ok := s.catalog.ByCode(code); !ok {
		return portal.Dispatch{}, fmt.Errorf("unknown source %q", code)
	}
	return s.dispatch(ctx, portal.Dispatch{
		Kind:       portal.KindMappingLearn,
		SourceCode: code,
		Mode:       portal.ModeActive,
	})
}

func (s *Scheduler) scheduleAll(ctx context.Context, sources []catalog.Source, mode portal.Mode, dr portal.DateRange) ([]portal.Dispatch, error) {
	now := s.clock.Now()
	var out []portal.Dispatch
	for _, src := range sources {
		if src.Status != catalog.StatusActive {
			continue
		}
		d, err := s.dispatch(ctx, portal.Dispatch{
			Kind:       portal.KindScrape,
			SourceCode: src.Code,
			Mode:       mode,
			DateRange:  dr,
			NotBefore:  now.Add(time.Duration(len(out)) * adHocStagger),
		})
		if err != nil {
			return out, err
		}
		out = append(out, d)
	}
	return out, nil
}

// Cancel attempts to cancel a queued dispatch.
func (s *Scheduler) Cancel(id string) bool {
	return s.tracker.Cancel(id, s.clock.Now())
}

// Stats is a point-in-time view of scheduler and coverage state.
type Stats struct {
	Queued   int                    `json:"queued"`
	Active   int                    `json:"active"`
	Calendar int                    `json:"calendar_entries"`
	Coverage registry.CoverageStats `json:"coverage"`
}

// Stats reports queue depth, running work and adapter coverage.
func (s *Scheduler) Stats() Stats {
	counts := s.tracker.Counts()
	return Stats{
		Queued:   counts[StateQueued],
		Active:   counts[StateRunning],
		Calendar: len(s.calendar),
		Coverage: s.registry.Coverage(),
	}
}

// BeatOnce enqueues every calendar entry due at or before now and
// advances its next firing time. It returns the dispatches enqueued.
func (s *Scheduler) BeatOnce(ctx context.Context, now time.Time) []portal.Dispatch {
	var out []portal.Dispatch
	for _, e := range s.calendar {
		due, ok := s.nextDue[e.SourceCode]
		if !ok {
			s.nextDue[e.SourceCode] = e.Next(now)
			continue
		}
		if due.After(now) {
			continue
		}
		d, err := s.dispatch(ctx, portal.Dispatch{
			Kind:       portal.KindScrape,
			SourceCode: e.SourceCode,
			Mode:       portal.ModeActive,
		})
		if err != nil {
			s.logger.Error("calendar dispatch failed",
				zap.String("source", e.SourceCode), zap.Error(err))
		} else {
			out = append(out, d)
		}
		s.nextDue[e.SourceCode] = e.Next(now)
	}
	return out
}

// RunBeat drives the recurring calendar until the context finishes,
// checking for due entries once a minute.
func (s *Scheduler) RunBeat(ctx context.Context) {
	s.BeatOnce(ctx, s.clock.Now())
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	s.logger.Info("calendar beat started", zap.Int("entries", len(s.calendar)))
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("calendar beat stopped")
			return
		case <-ticker.C:
			if n := len(s.BeatOnce(ctx, s.clock.Now())); n > 0 {
				s.logger.Info("calendar dispatches enqueued", zap.Int("count", n))
			}
		}
	}
}
