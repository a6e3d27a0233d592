// Package runner executes one (source, mode) unit of scrape work.
package runner

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/cividex/portalwatch/internal/catalog"
	"github.com/cividex/portalwatch/internal/metrics"
	"github.com/cividex/portalwatch/internal/portal"
	"github.com/cividex/portalwatch/internal/registry"
)

// Outcome is the tagged result of a run. Call sites handle all three.
type Outcome string

// Run outcomes.
const (
	OutcomeSuccess Outcome = "success"
	OutcomeSkipped Outcome = "skipped"
	OutcomeFailed  Outcome = "failed"
)

// Result is what Run hands back. Run never returns an error: every
// failure path is encoded here and in the logged ScrapeRun.
type Result struct {
	Outcome Outcome
	Reason  portal.FailureReason
	Run     portal.ScrapeRun
}

// Config controls runner behavior.
type Config struct {
	LeaseTTL time.Duration
}

// Runner resolves, health-gates, scrapes, persists and logs one unit of
// work without ever propagating an error to its caller.
type Runner struct {
	catalog     *catalog.Catalog
	registry    *registry.Registry
	runStore    portal.RunStore
	rawStore    portal.RawStore
	recordStore portal.RecordStore
	normalizer  portal.Normalizer
	notifier    portal.Notifier
	lease       portal.Lease
	clock       portal.Clock
	cfg         Config
	logger      *zap.Logger
}

// New constructs a Runner.
func New(
	cat *catalog.Catalog,
	reg *registry.Registry,
	runStore portal.RunStore,
	rawStore portal.RawStore,
	recordStore portal.RecordStore,
	normalizer portal.Normalizer,
	notifier portal.Notifier,
	lease portal.Lease,
	clock portal.Clock,
	cfg Config,
	logger *zap.Logger,
) *Runner {
	if cfg.LeaseTTL <= 0 {
		cfg.LeaseTTL = 15 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		catalog:     cat,
		registry:    reg,
		runStore:    runStore,
		rawStore:    rawStore,
		recordStore: recordStore,
		normalizer:  normalizer,
		notifier:    notifier,
		lease:       lease,
		clock:       clock,
		cfg:         cfg,
		logger:      logger,
	}
}

// Run executes one scrape for sourceCode in the given mode. The date
// range only applies to historical mode.
func (r *Runner) Run(ctx context.Context, sourceCode string, mode portal.Mode, dr portal.DateRange) (result Result) {
	started := r.clock.Now().UTC()
	run := portal.ScrapeRun{
		SourceCode: sourceCode,
		StartedAt:  started,
		Status:     portal.RunStatusPending,
		Mode:       mode,
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("run panicked",
				zap.String("source", sourceCode), zap.Any("panic", rec))
			result = r.finish(ctx, run, OutcomeFailed, portal.ReasonUnexpected,
				fmt.Sprintf("panic: %v", rec))
		}
	}()

	src, ok := r.catalog.ByCode(sourceCode)
	if !ok {
		return r.finish(ctx, run, OutcomeFailed, portal.ReasonUnknownSource,
			fmt.Sprintf("unknown source: %s", sourceCode))
	}

	adapter := r.registry.Resolve(sourceCode)
	if adapter == nil {
		return r.finish(ctx, run, OutcomeFailed, portal.ReasonNoAdapter,
			fmt.Sprintf("no adapter for source: %s", sourceCode))
	}

	acquired, err := r.lease.Acquire(ctx, sourceCode, mode, r.cfg.LeaseTTL)
	if err != nil {
		r.logger.Warn("lease acquire failed, proceeding without exclusion",
			zap.String("source", sourceCode), zap.Error(err))
	} else if !acquired {
		return r.finish(ctx, run, OutcomeSkipped, portal.ReasonOverlappingRun,
			fmt.Sprintf("another %s run holds the lease for %s", mode, sourceCode))
	} else {
		defer func() {
			if relErr := r.lease.Release(context.WithoutCancel(ctx), sourceCode, mode); relErr != nil {
				r.logger.Warn("lease release failed",
					zap.String("source", sourceCode), zap.Error(relErr))
			}
		}()
	}

	health := adapter.Health(ctx)
	if !health.Healthy {
		// An unhealthy portal is a deliberate skip, not a failure; it
		// must not feed failure-rate alerting.
		return r.finish(ctx, run, OutcomeSkipped, portal.ReasonUnhealthyPortal,
			fmt.Sprintf("portal unhealthy: %s", health.Message))
	}

	run.Status = portal.RunStatusRunning
	r.logger.Info("starting scrape",
		zap.String("source", sourceCode),
		zap.String("mode", string(mode)),
		zap.Int("tier", src.Tier))

	var raw []portal.RawRecord
	if mode == portal.ModeHistorical {
		raw, err = adapter.ScrapeHistorical(ctx, dr)
	} else {
		raw, err = adapter.ScrapeActive(ctx)
	}
	if err != nil {
		return r.finish(ctx, run, OutcomeFailed, portal.ReasonTransientFetch,
			fmt.Sprintf("scrape: %v", err))
	}
	run.RecordsScraped = len(raw)

	if len(raw) == 0 {
		return r.finish(ctx, run, OutcomeSuccess, "", "")
	}

	batchID, err := r.rawStore.StoreBatch(ctx, sourceCode, raw, map[string]any{
		"mode":                    string(mode),
		"portal_response_time_ms": health.ResponseTime.Milliseconds(),
	})
	if err != nil {
		return r.finish(ctx, run, OutcomeFailed, portal.ReasonPersistence,
			fmt.Sprintf("store raw batch: %v", err))
	}
	run.BatchID = batchID

	normalized, err := r.normalizer.Normalize(ctx, sourceCode, raw)
	if err != nil {
		return r.finish(ctx, run, OutcomeFailed, portal.ReasonUnexpected,
			fmt.Sprintf("normalize: %v", err))
	}
	run.RecordsProcessed = len(normalized)

	upsert, err := r.recordStore.UpsertBatch(ctx, normalized)
	if err != nil {
		return r.finish(ctx, run, OutcomeFailed, portal.ReasonPersistence,
			fmt.Sprintf("upsert batch: %v", err))
	}
	run.RecordsNew = upsert.New
	run.RecordsUpdated = upsert.Updated

	return r.finish(ctx, run, OutcomeSuccess, "", "")
}

// finish freezes the run, logs it, and fires the single-source alert for
// failures. Alert and store errors are logged, never escalated.
func (r *Runner) finish(ctx context.Context, run portal.ScrapeRun, outcome Outcome, reason portal.FailureReason, errText string) Result {
	now := r.clock.Now().UTC()
	run.CompletedAt = &now
	run.DurationSeconds = int64(now.Sub(run.StartedAt).Seconds())
	switch outcome {
	case OutcomeSuccess:
		run.Status = portal.RunStatusSuccess
	case OutcomeSkipped:
		run.Status = portal.RunStatusSkipped
	case OutcomeFailed:
		run.Status = portal.RunStatusFailed
	}
	if errText != "" {
		run.Errors = append(run.Errors, errText)
	}

	metrics.ObserveRun(string(run.Status), run.Mode, now.Sub(run.StartedAt))

	logged, err := r.runStore.LogRun(context.WithoutCancel(ctx), run)
	if err != nil {
		r.logger.Error("run log write failed",
			zap.String("source", run.SourceCode), zap.Error(err))
		logged = run
	}

	switch outcome {
	case OutcomeSuccess:
		r.logger.Info("scrape complete",
			zap.String("source", run.SourceCode),
			zap.String("mode", string(run.Mode)),
			zap.Int("new", run.RecordsNew),
			zap.Int("updated", run.RecordsUpdated),
			zap.Int64("duration_s", run.DurationSeconds))
	case OutcomeSkipped:
		r.logger.Info("scrape skipped",
			zap.String("source", run.SourceCode),
			zap.String("reason", string(reason)),
			zap.String("detail", errText))
	case OutcomeFailed:
		r.logger.Error("scrape failed",
			zap.String("source", run.SourceCode),
			zap.String("reason", string(reason)),
			zap.String("detail", errText))
		r.alertFailure(ctx, logged, reason, errText)
	}

	return Result{Outcome: outcome, Reason: reason, Run: logged}
}

func (r *Runner) alertFailure(ctx context.Context, run portal.ScrapeRun, reason portal.FailureReason, errText string) {
	if r.notifier == nil {
		return
	}
	subject := fmt.Sprintf("scrape failure: %s", run.SourceCode)
	body := fmt.Sprintf(
		"source: %s\nmode: %s\nreason: %s\nstarted: %s\nduration: %ds\nerror: %s\n",
		run.SourceCode, run.Mode, reason,
		run.StartedAt.Format(time.RFC3339), run.DurationSeconds, errText)
	if !r.notifier.Notify(context.WithoutCancel(ctx), "scrape_failure", subject, body) {
		r.logger.Warn("failure alert delivery failed", zap.String("source", run.SourceCode))
	}
}
