package registry

import (
	"go.uber.org/zap"

	"github.com/cividex/portalwatch/internal/catalog"
)

// RegionModule is a per-region bundle of adapter registrations. Regions
// register independently so one broken region cannot keep the others out
// of the registry.
type RegionModule struct {
	Region   catalog.Region
	Register func(r *Registry) error
}

// Discover runs every region module's registration, logging and skipping
// failures. It returns the number of regions that registered cleanly.
func (r *Registry) Discover(modules []RegionModule) int {
	registered := 0
	for _, m := range modules {
		if m.Register == nil {
			continue
		}
		if err := m.Register(r); err != nil {
			r.logger.Error("region registration failed",
				zap.String("region", string(m.Region)), zap.Error(err))
			continue
		}
		r.logger.Info("registered region adapters", zap.String("region", string(m.Region)))
		registered++
	}
	return registered
}
