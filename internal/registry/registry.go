// Package registry maps source codes to adapter instances.
package registry

import (
	"sync"

	"go.uber.org/zap"

	"github.com/cividex/portalwatch/internal/catalog"
	"github.com/cividex/portalwatch/internal/portal"
)

// Factory builds an adapter instance for one source. Instances hold
// per-connection state, so the registry builds them lazily and caches one
// per source code.
type Factory func(src catalog.Source) (portal.Adapter, error)

// Registry resolves a source code to an adapter. A direct registration
// for the source always beats a portal-type fallback; absence of both
// resolves to nil, which callers must handle.
type Registry struct {
	mu        sync.Mutex
	catalog   *catalog.Catalog
	direct    map[string]Factory
	byPortal  map[catalog.PortalType]Factory
	instances map[string]portal.Adapter
	logger    *zap.Logger
}

// New constructs an empty Registry over the given catalog.
func New(cat *catalog.Catalog, logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		catalog:   cat,
		direct:    make(map[string]Factory),
		byPortal:  make(map[catalog.PortalType]Factory),
		instances: make(map[string]portal.Adapter),
		logger:    logger,
	}
}

// Register installs a source-specific adapter factory.
func (r *Registry) Register(sourceCode string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.direct[sourceCode] = f
	r.logger.Debug("registered source adapter", zap.String("source", sourceCode))
}

// RegisterPortalType installs a shared fallback factory serving every
// source of the given portal type.
func (r *Registry) RegisterPortalType(pt catalog.PortalType, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byPortal[pt] = f
	r.logger.Debug("registered portal-type adapter", zap.String("portal_type", string(pt)))
}

// Resolve returns the adapter for a source, or nil when none is
// registered. Resolution order: cached instance, direct registration,
// portal-type fallback.
func (r *Registry) Resolve(sourceCode string) portal.Adapter {
	r.mu.Lock()
	defer r.mu.Unlock()

	if inst, ok := r.instances[sourceCode]; ok {
		return inst
	}

	src, ok := r.catalog.ByCode(sourceCode)
	if !ok {
		r.logger.Warn("resolve for unknown source", zap.String("source", sourceCode))
		return nil
	}

	factory, ok := r.direct[sourceCode]
	if !ok {
		factory, ok = r.byPortal[src.PortalType]
	}
	if !ok {
		return nil
	}

	inst, err := factory(src)
	if err != nil {
		r.logger.Error("adapter construction failed",
			zap.String("source", sourceCode), zap.Error(err))
		return nil
	}
	r.instances[sourceCode] = inst
	return inst
}

// Covered reports whether some registration serves the source, without
// instantiating anything.
func (r *Registry) Covered(sourceCode string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.direct[sourceCode]; ok {
		return true
	}
	src, ok := r.catalog.ByCode(sourceCode)
	if !ok {
		return false
	}
	_, ok = r.byPortal[src.PortalType]
	return ok
}

// PortalCoverage describes adapter coverage of one portal type.
type PortalCoverage struct {
	Sources    int
	HasAdapter bool
}

// CoverageStats summarizes registry coverage of the catalog.
type CoverageStats struct {
	TotalSources   int
	CoveredSources int
	ByPortalType   map[catalog.PortalType]PortalCoverage
}

// Coverage computes coverage stats over the catalog.
func (r *Registry) Coverage() CoverageStats {
	stats := CoverageStats{
		TotalSources: r.catalog.Len(),
		ByPortalType: make(map[catalog.PortalType]PortalCoverage),
	}
	for _, src := range r.catalog.All() {
		if r.Covered(src.Code) {
			stats.CoveredSources++
		}
		pc := stats.ByPortalType[src.PortalType]
		pc.Sources++
		r.mu.Lock()
		_, pc.HasAdapter = r.byPortal[src.PortalType]
		r.mu.Unlock()
		stats.ByPortalType[src.PortalType] = pc
	}
	return stats
}
