// Package worker implements the dispatch consumption loop.
package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/cividex/portalwatch/internal/metrics"
	"github.com/cividex/portalwatch/internal/portal"
	"github.com/cividex/portalwatch/internal/runner"
	"github.com/cividex/portalwatch/internal/scheduler"
)

// mappingSampleLimit caps how many raw records feed one learning pass.
const mappingSampleLimit = 5

// Config controls Worker behavior.
type Config struct {
	// SoftTimeLimit logs a warning when a dispatch runs past it.
	SoftTimeLimit time.Duration
	// HardTimeLimit cancels the dispatch context outright.
	HardTimeLimit time.Duration
}

// Worker consumes dispatches and executes them through the task runner.
type Worker struct {
	queue   portal.Queue
	tracker *scheduler.Tracker
	runner  *runner.Runner
	mapper  portal.FieldMapper
	raw     portal.RawStore
	clock   portal.Clock
	cfg     Config
	logger  *zap.Logger
}

// New constructs a Worker.
func New(
	queue portal.Queue,
	tracker *scheduler.Tracker,
	run *runner.Runner,
	mapper portal.FieldMapper,
	raw portal.RawStore,
	clock portal.Clock,
	cfg Config,
	logger *zap.Logger,
) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.SoftTimeLimit <= 0 {
		cfg.SoftTimeLimit = 540 * time.Second
	}
	if cfg.HardTimeLimit <= 0 {
		cfg.HardTimeLimit = 600 * time.Second
	}
	return &Worker{
		queue:   queue,
		tracker: tracker,
		runner:  run,
		mapper:  mapper,
		raw:     raw,
		clock:   clock,
		cfg:     cfg,
		logger:  logger,
	}
}

// Run blocks, consuming dispatches until the context finishes.
func (w *Worker) Run(ctx context.Context) {
	for {
		d, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			w.logger.Error("queue dequeue failed", zap.Error(err))
			continue
		}
		w.logger.Debug("dequeued dispatch",
			zap.String("dispatch_id", d.ID),
			zap.String("source", d.SourceCode))
		w.process(ctx, d)
	}
}

func (w *Worker) process(ctx context.Context, d portal.Dispatch) {
	if !w.waitUntil(ctx, d.NotBefore) {
		return
	}
	// Claiming the dispatch also drops it if it was cancelled while
	// queued or waiting out its stagger offset.
	if !w.tracker.MarkRunning(d.ID, w.clock.Now()) {
		w.logger.Debug("dispatch dropped", zap.String("dispatch_id", d.ID))
		return
	}

	metrics.WorkerStarted()
	defer metrics.WorkerFinished()

	runCtx, cancel := context.WithTimeout(ctx, w.cfg.HardTimeLimit)
	defer cancel()
	soft := time.AfterFunc(w.cfg.SoftTimeLimit, func() {
		w.logger.Warn("dispatch exceeded soft time limit",
			zap.String("dispatch_id", d.ID),
			zap.String("source", d.SourceCode),
			zap.Duration("soft_limit", w.cfg.SoftTimeLimit))
	})
	defer soft.Stop()

	switch d.Kind {
	case portal.KindMappingLearn:
		w.learnMapping(runCtx, d)
	default:
		res := w.runner.Run(runCtx, d.SourceCode, d.Mode, d.DateRange)
		run := res.Run
		w.tracker.MarkDone(d.ID, stateFor(res.Outcome), w.clock.Now(), &run)
	}
}

// waitUntil blocks until the dispatch's stagger offset passes. It
// reports false when the context finished first.
func (w *Worker) waitUntil(ctx context.Context, notBefore time.Time) bool {
	delay := notBefore.Sub(w.clock.Now())
	if delay <= 0 {
		return true
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

func (w *Worker) learnMapping(ctx context.Context, d portal.Dispatch) {
	log := w.logger.With(
		zap.String("dispatch_id", d.ID),
		zap.String("source", d.SourceCode))

	batch, err := w.raw.LatestBatch(ctx, d.SourceCode)
	if err != nil {
		log.Error("latest raw batch lookup failed", zap.Error(err))
		w.tracker.MarkDone(d.ID, scheduler.StateFailed, w.clock.Now(), nil)
		return
	}
	if batch == nil || len(batch.Records) == 0 {
		log.Warn("no raw batch to learn from")
		w.tracker.MarkDone(d.ID, scheduler.StateSkipped, w.clock.Now(), nil)
		return
	}
	samples := batch.Records
	if len(samples) > mappingSampleLimit {
		samples = samples[:mappingSampleLimit]
	}
	mapped, err := w.mapper.LearnMapping(ctx, d.SourceCode, samples)
	if err != nil {
		log.Error("mapping learning failed", zap.Error(err))
		w.tracker.MarkDone(d.ID, scheduler.StateFailed, w.clock.Now(), nil)
		return
	}
	log.Info("mapping learned",
		zap.String("batch_id", batch.BatchID),
		zap.Int("fields_mapped", mapped))
	w.tracker.MarkDone(d.ID, scheduler.StateSuccess, w.clock.Now(), nil)
}

func stateFor(o runner.Outcome) scheduler.DispatchState {
	switch o {
	case runner.OutcomeSuccess:
		return scheduler.StateSuccess
	case runner.OutcomeSkipped:
		return scheduler.StateSkipped
	default:
		return scheduler.StateFailed
	}
}
