package batch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cividex/portalwatch/internal/alert"
	"github.com/cividex/portalwatch/internal/catalog"
	"github.com/cividex/portalwatch/internal/lease"
	"github.com/cividex/portalwatch/internal/normalize"
	"github.com/cividex/portalwatch/internal/portal"
	"github.com/cividex/portalwatch/internal/rawstore"
	"github.com/cividex/portalwatch/internal/registry"
	"github.com/cividex/portalwatch/internal/runner"
	smemory "github.com/cividex/portalwatch/internal/store/memory"
)

// gaugedAdapter tracks how many scrapes run at once.
type gaugedAdapter struct {
	inFlight  atomic.Int64
	peak      atomic.Int64
	scrapeErr error
}

func (a *gaugedAdapter) ScrapeActive(context.Context) ([]portal.RawRecord, error) {
	n := a.inFlight.Add(1)
	defer a.inFlight.Add(-1)
	for {
		p := a.peak.Load()
		if n <= p || a.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(20 * time.Millisecond)
	if a.scrapeErr != nil {
		return nil, a.scrapeErr
	}
	return []portal.RawRecord{{
		Data:      map[string]any{"application_number": "DA-1"},
		ScrapedAt: time.Now().UTC(),
	}}, nil
}

func (a *gaugedAdapter) ScrapeHistorical(ctx context.Context, _ portal.DateRange) ([]portal.RawRecord, error) {
	return a.ScrapeActive(ctx)
}

func (a *gaugedAdapter) Health(context.Context) portal.HealthStatus {
	return portal.HealthStatus{Healthy: true}
}

type staticIDs struct{}

func (staticIDs) NewID() string { return "batch-test" }

func batchSources(n int) []catalog.Source {
	out := make([]catalog.Source, n)
	for i := range out {
		out[i] = catalog.Source{
			Code:       string(rune('a'+i)) + "_council",
			Name:       "Council",
			Region:     catalog.RegionNSW,
			Tier:       3,
			PortalURL:  "https://example.gov.au",
			PortalType: catalog.PortalCustom,
			Status:     catalog.StatusActive,
		}
	}
	return out
}

func newBatchRunner(t *testing.T, sources []catalog.Source, adapter portal.Adapter) (*Runner, *alert.Recorder) {
	t.Helper()
	cat, err := catalog.New(sources)
	require.NoError(t, err)
	reg := registry.New(cat, zap.NewNop())
	reg.RegisterPortalType(catalog.PortalCustom, func(catalog.Source) (portal.Adapter, error) {
		return adapter, nil
	})
	notifier := alert.NewRecorder()
	r := runner.New(
		cat, reg, smemory.NewRunStore(), rawstore.NewMem(), smemory.NewRecordStore(),
		normalize.NewPassthrough(), notifier, lease.NewMemory(),
		sysClock{}, runner.Config{}, zap.NewNop(),
	)
	return NewRunner(r, notifier, staticIDs{}, zap.NewNop()), notifier
}

type sysClock struct{}

func (sysClock) Now() time.Time { return time.Now().UTC() }

func TestRunRespectsConcurrencyBound(t *testing.T) {
	t.Parallel()

	adapter := &gaugedAdapter{}
	sources := batchSources(8)
	b, _ := newBatchRunner(t, sources, adapter)

	var work []Item
	for _, src := range sources {
		work = append(work, Item{SourceCode: src.Code, Mode: portal.ModeActive})
	}

	summary := b.Run(context.Background(), work, 3)

	assert.Equal(t, 8, summary.Total)
	assert.Equal(t, 8, summary.Success)
	assert.LessOrEqual(t, adapter.peak.Load(), int64(3))
}

func TestRunFailureIsolation(t *testing.T) {
	t.Parallel()

	good := &gaugedAdapter{}
	bad := &gaugedAdapter{scrapeErr: errors.New("portal timeout")}
	sources := batchSources(3)

	cat, err := catalog.New(sources)
	require.NoError(t, err)
	reg := registry.New(cat, zap.NewNop())
	reg.RegisterPortalType(catalog.PortalCustom, func(catalog.Source) (portal.Adapter, error) {
		return good, nil
	})
	reg.Register(sources[1].Code, func(catalog.Source) (portal.Adapter, error) {
		return bad, nil
	})

	notifier := alert.NewRecorder()
	r := runner.New(
		cat, reg, smemory.NewRunStore(), rawstore.NewMem(), smemory.NewRecordStore(),
		normalize.NewPassthrough(), notifier, lease.NewMemory(),
		sysClock{}, runner.Config{}, zap.NewNop(),
	)
	b := NewRunner(r, notifier, staticIDs{}, zap.NewNop())

	var work []Item
	for _, src := range sources {
		work = append(work, Item{SourceCode: src.Code, Mode: portal.ModeActive})
	}
	summary := b.Run(context.Background(), work, 2)

	assert.Equal(t, 2, summary.Success)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, 2, summary.New)
}

func TestRunAlertsOnlyWhenErrorsPresent(t *testing.T) {
	t.Parallel()

	clean := &gaugedAdapter{}
	sources := batchSources(2)
	b, notifier := newBatchRunner(t, sources, clean)

	work := []Item{
		{SourceCode: sources[0].Code, Mode: portal.ModeActive},
		{SourceCode: sources[1].Code, Mode: portal.ModeActive},
	}
	summary := b.Run(context.Background(), work, 2)
	require.Zero(t, summary.Failed)
	assert.Empty(t, notifier.ByKind("batch_summary"))

	failing := &gaugedAdapter{scrapeErr: errors.New("boom")}
	b2, notifier2 := newBatchRunner(t, sources, failing)
	summary = b2.Run(context.Background(), work, 2)
	require.Equal(t, 2, summary.Failed)

	msgs := notifier2.ByKind("batch_summary")
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Body, "2 failed")
	assert.Contains(t, msgs[0].Body, "boom")
}

func TestRunCancelledContextSkipsRemaining(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	adapter := &gaugedAdapter{}
	sources := batchSources(3)
	b, _ := newBatchRunner(t, sources, adapter)

	var work []Item
	for _, src := range sources {
		work = append(work, Item{SourceCode: src.Code, Mode: portal.ModeActive})
	}
	summary := b.Run(ctx, work, 1)

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 3, summary.Skipped)
	for _, r := range summary.Results {
		assert.Equal(t, runner.OutcomeSkipped, r.Result.Outcome)
	}
}
