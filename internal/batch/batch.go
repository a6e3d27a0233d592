// Package batch runs groups of scrape tasks under a shared concurrency
// bound. All items in a batch are launched up front; a weighted semaphore
// keeps no more than the configured number in flight at once.
package batch

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/cividex/portalwatch/internal/metrics"
	"github.com/cividex/portalwatch/internal/portal"
	"github.com/cividex/portalwatch/internal/runner"
)

// Item is one unit of work in a batch.
type Item struct {
	SourceCode string
	Mode       portal.Mode
	DateRange  portal.DateRange
}

// ItemResult pairs an item with its run result.
type ItemResult struct {
	Item   Item
	Result runner.Result
}

// Summary aggregates a finished batch.
type Summary struct {
	BatchID string
	Total   int
	Success int
	Failed  int
	Skipped int
	New     int
	Updated int
	Results []ItemResult
}

// Runner executes batches against the task runner.
type Runner struct {
	runner   *runner.Runner
	notifier portal.Notifier
	logger   *zap.Logger
	ids      portal.IDGenerator
}

// NewRunner constructs a batch Runner.
func NewRunner(r *runner.Runner, notifier portal.Notifier, ids portal.IDGenerator, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{runner: r, notifier: notifier, ids: ids, logger: logger}
}

// Run executes every item with at most bound runs in flight and blocks
// until all complete. A failed item never prevents its siblings from
// running. bound values below 1 are treated as 1.
func (b *Runner) Run(ctx context.Context, items []Item, bound int) Summary {
	if bound < 1 {
		bound = 1
	}
	batchID := b.ids.NewID()
	b.logger.Info("batch started",
		zap.String("batch_id", batchID),
		zap.Int("items", len(items)),
		zap.Int("bound", bound))

	sem := semaphore.NewWeighted(int64(bound))
	results := make([]ItemResult, len(items))
	var wg sync.WaitGroup
	for i, item := range items {
		if err := sem.Acquire(ctx, 1); err != nil {
			results[i] = ItemResult{Item: item, Result: runner.Result{
				Outcome: runner.OutcomeSkipped,
				Reason:  "batch cancelled",
			}}
			continue
		}
		wg.Add(1)
		go func(i int, item Item) {
			defer wg.Done()
			defer sem.Release(1)
			metrics.WorkerStarted()
			defer metrics.WorkerFinished()
			res := b.runner.Run(ctx, item.SourceCode, item.Mode, item.DateRange)
			results[i] = ItemResult{Item: item, Result: res}
		}(i, item)
	}
	wg.Wait()

	summary := Summary{BatchID: batchID, Total: len(items), Results: results}
	for _, r := range results {
		switch r.Result.Outcome {
		case runner.OutcomeSuccess:
			summary.Success++
			summary.New += r.Result.Run.RecordsNew
			summary.Updated += r.Result.Run.RecordsUpdated
		case runner.OutcomeFailed:
			summary.Failed++
		case runner.OutcomeSkipped:
			summary.Skipped++
		}
	}

	b.logger.Info("batch finished",
		zap.String("batch_id", batchID),
		zap.Int("success", summary.Success),
		zap.Int("failed", summary.Failed),
		zap.Int("skipped", summary.Skipped))

	if summary.Failed > 0 && b.notifier != nil {
		subject := fmt.Sprintf("Batch %s completed with %d error(s)", batchID, summary.Failed)
		if !b.notifier.Notify(ctx, "batch_summary", subject, composeSummary(summary)) {
			b.logger.Warn("batch summary alert not delivered", zap.String("batch_id", batchID))
		}
	}
	return summary
}

// composeSummary renders the itemized batch report sent when a batch
// finishes with at least one error.
func composeSummary(s Summary) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Batch %s: %d total, %d success, %d failed, %d skipped\n",
		s.BatchID, s.Total, s.Success, s.Failed, s.Skipped)
	fmt.Fprintf(&sb, "Records: %d new, %d updated\n", s.New, s.Updated)

	var failed []ItemResult
	for _, r := range s.Results {
		if r.Result.Outcome == runner.OutcomeFailed {
			failed = append(failed, r)
		}
	}
	sort.Slice(failed, func(i, j int) bool {
		return failed[i].Item.SourceCode < failed[j].Item.SourceCode
	})
	if len(failed) > 0 {
		sb.WriteString("\nFailures:\n")
		for _, r := range failed {
			detail := string(r.Result.Reason)
			if len(r.Result.Run.Errors) > 0 {
				detail = r.Result.Run.Errors[len(r.Result.Run.Errors)-1]
			}
			fmt.Fprintf(&sb, "  %-24s %s\n", r.Item.SourceCode, detail)
		}
	}
	return sb.String()
}
