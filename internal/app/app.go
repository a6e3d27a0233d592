// Package app initializes and holds the long-lived application
// services, acting as the dependency injection container. It is built
// once at startup and handed to the commands that need it.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cividex/portalwatch/internal/adapters"
	"github.com/cividex/portalwatch/internal/alert"
	"github.com/cividex/portalwatch/internal/batch"
	"github.com/cividex/portalwatch/internal/catalog"
	"github.com/cividex/portalwatch/internal/clock/system"
	"github.com/cividex/portalwatch/internal/config"
	"github.com/cividex/portalwatch/internal/id/uuid"
	"github.com/cividex/portalwatch/internal/lease"
	"github.com/cividex/portalwatch/internal/logging"
	"github.com/cividex/portalwatch/internal/metrics"
	"github.com/cividex/portalwatch/internal/monitor"
	"github.com/cividex/portalwatch/internal/normalize"
	"github.com/cividex/portalwatch/internal/policy/ratelimit"
	"github.com/cividex/portalwatch/internal/portal"
	qmemory "github.com/cividex/portalwatch/internal/queue/memory"
	"github.com/cividex/portalwatch/internal/rawstore"
	"github.com/cividex/portalwatch/internal/registry"
	"github.com/cividex/portalwatch/internal/runner"
	"github.com/cividex/portalwatch/internal/scheduler"
	smemory "github.com/cividex/portalwatch/internal/store/memory"
	"github.com/cividex/portalwatch/internal/store/postgres"
	"github.com/cividex/portalwatch/internal/worker"
)

// App holds every shared service. Close releases them in reverse
// dependency order.
type App struct {
	Config    config.Config
	Logger    *zap.Logger
	Catalog   *catalog.Catalog
	Registry  *registry.Registry
	RunStore  portal.RunStore
	RawStore  portal.RawStore
	Records   portal.RecordStore
	Lease     portal.Lease
	Queue     *qmemory.Queue
	Tracker   *scheduler.Tracker
	Scheduler *scheduler.Scheduler
	Runner    *runner.Runner
	Batch     *batch.Runner
	Monitor   *monitor.Monitor
	Notifier  portal.Notifier
	Mapper    *normalize.AliasMapper
	Workers   []*worker.Worker

	closers []func()
}

// New builds the full service graph from configuration. It fails fast
// when a configured backend cannot be reached.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	metrics.Init()

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	a := &App{Config: cfg, Logger: logger}
	a.closers = append(a.closers, func() {
		_ = logger.Sync()
	})

	a.Catalog = catalog.Default()

	a.Registry = registry.New(a.Catalog, logger.Named("registry"))
	regions := a.Registry.Discover(adapters.Modules(adapters.Options{
		UserAgent:     cfg.Scrape.UserAgent,
		Timeout:       cfg.ScrapeTimeout(),
		MinRequestGap: cfg.RequestGap(),
		MaxRetries:    cfg.Scrape.MaxRetries,
		Limiter:       ratelimit.New(ratelimit.Config{MinGap: cfg.RequestGap()}),
	}))
	logger.Info("adapter discovery complete", zap.Int("regions", regions))

	switch cfg.Store.Provider {
	case "postgres":
		runStore, err := postgres.NewRunStore(ctx, postgres.RunStoreConfig{
			DSN:      cfg.Store.DSN,
			Table:    cfg.Store.RunsTable,
			MaxConns: int32(cfg.Store.MaxOpenConns),
		})
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init postgres run store: %w", err)
		}
		a.RunStore = runStore
		a.closers = append(a.closers, runStore.Close)
		logger.Info("using postgres run store", zap.String("table", cfg.Store.RunsTable))
	default:
		a.RunStore = smemory.NewRunStore()
		logger.Info("using in-memory run store")
	}
	// Record persistence stays in memory until the relational record
	// schema ships; runs are the durable audit trail.
	a.Records = smemory.NewRecordStore()

	raw, err := rawstore.NewFS(rawstore.Config{BaseDir: cfg.RawStore.BaseDir})
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("init raw store: %w", err)
	}
	a.RawStore = raw

	switch cfg.Lease.Provider {
	case "redis":
		rl, err := lease.NewRedis(ctx, cfg.Lease.Redis)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("init redis lease: %w", err)
		}
		a.Lease = rl
		a.closers = append(a.closers, func() {
			_ = rl.Close()
		})
		logger.Info("using redis run lease", zap.String("addr", cfg.Lease.Redis.Addr))
	default:
		a.Lease = lease.NewMemory()
		logger.Info("using in-memory run lease")
	}

	clk := system.New()
	ids := uuid.New()

	a.Notifier = alert.NewLogNotifier(logger.Named("alert"))
	a.Mapper = normalize.NewAliasMapper(logger.Named("mapper"))

	a.Runner = runner.New(
		a.Catalog,
		a.Registry,
		a.RunStore,
		a.RawStore,
		a.Records,
		normalize.NewMapped(a.Mapper),
		a.Notifier,
		a.Lease,
		clk,
		runner.Config{LeaseTTL: cfg.LeaseTTL()},
		logger.Named("runner"),
	)
	a.Batch = batch.NewRunner(a.Runner, a.Notifier, ids, logger.Named("batch"))

	a.Queue = qmemory.NewQueue(cfg.Worker.QueueDepth)
	a.closers = append(a.closers, a.Queue.Close)
	a.Tracker = scheduler.NewTracker()
	a.Scheduler = scheduler.New(a.Catalog, a.Registry, a.Queue, a.Tracker, ids, clk, logger.Named("scheduler"))
	a.Monitor = monitor.New(a.Catalog, a.RunStore, clk, logger.Named("monitor"))

	workerCfg := worker.Config{
		SoftTimeLimit: cfg.SoftLimit(),
		HardTimeLimit: cfg.HardLimit(),
	}
	for i := 0; i < cfg.Worker.Count; i++ {
		a.Workers = append(a.Workers, worker.New(
			a.Queue,
			a.Tracker,
			a.Runner,
			a.Mapper,
			a.RawStore,
			clk,
			workerCfg,
			logger.Named(fmt.Sprintf("worker-%d", i)),
		))
	}

	logger.Info("application services initialized",
		zap.Int("sources", a.Catalog.Len()),
		zap.Int("workers", len(a.Workers)))
	return a, nil
}

// Close releases all held resources in reverse initialization order.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
