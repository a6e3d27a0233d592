// Package adapters wires the shipped adapter registrations into the
// registry. Each region contributes its own registration func so a broken
// region is skipped without blocking the rest.
package adapters

import (
	"time"

	"github.com/cividex/portalwatch/internal/adapters/listing"
	"github.com/cividex/portalwatch/internal/catalog"
	"github.com/cividex/portalwatch/internal/policy/ratelimit"
	"github.com/cividex/portalwatch/internal/portal"
	"github.com/cividex/portalwatch/internal/registry"
)

// Options carries the runtime fetch settings shared by every shipped
// adapter. Selector presets stay per portal type.
type Options struct {
	UserAgent     string
	Timeout       time.Duration
	MinRequestGap time.Duration
	MaxRetries    int
	Limiter       *ratelimit.Limiter
}

// listingFactory adapts a listing config into a registry factory.
func listingFactory(cfg listing.Config) registry.Factory {
	return func(src catalog.Source) (portal.Adapter, error) {
		return listing.New(src, cfg), nil
	}
}

// Selector presets per portal type. Dedicated per-source adapters replace
// these where a portal needs more than a listing page.
var portalConfigs = map[catalog.PortalType]listing.Config{
	catalog.PortalEPathway: {
		Selectors: listing.Selectors{
			Row: "table.ContentPanel tr.ContentPanel, table.ContentPanel tr.AlternateContentPanel",
			Fields: map[string]string{
				"application_number": "td:nth-child(1)",
				"lodged_date":        "td:nth-child(2)",
				"address":            "td:nth-child(3)",
				"description":        "td:nth-child(4)",
			},
		},
		HistoricalQuery: "searchType=lodged",
	},
	catalog.PortalMasterview: {
		Selectors: listing.Selectors{
			Row: "div.result, table#searchresults tr.datarow",
			Fields: map[string]string{
				"application_number": ".appnumber, td:nth-child(1)",
				"address":            ".address, td:nth-child(2)",
				"description":        ".description, td:nth-child(3)",
				"status":             ".status, td:nth-child(4)",
			},
		},
		HistoricalQuery: "d=lodgement",
	},
	catalog.PortalATDIS: {
		Selectors: listing.Selectors{
			Row: "div.application-listing article, ul.atdis-list li",
			Fields: map[string]string{
				"application_number": ".da-number",
				"address":            ".da-address",
				"description":        ".da-description",
				"status":             ".da-status",
				"lodged_date":        ".da-lodged",
			},
		},
		HistoricalQuery: "scope=lodged",
	},
	catalog.PortalCivica: {
		Selectors: listing.Selectors{
			Row: "table.grid tr:not(.header)",
			Fields: map[string]string{
				"application_number": "td:nth-child(1)",
				"address":            "td:nth-child(2)",
				"description":        "td:nth-child(3)",
			},
		},
	},
}

// withOptions overlays the runtime fetch settings onto a preset.
func withOptions(cfg listing.Config, opts Options) listing.Config {
	cfg.UserAgent = opts.UserAgent
	cfg.Timeout = opts.Timeout
	cfg.MinRequestGap = opts.MinRequestGap
	cfg.MaxRetries = opts.MaxRetries
	cfg.Limiter = opts.Limiter
	return cfg
}

// registerPortals installs the listing fallback for each requested portal
// type that has a preset.
func registerPortals(r *registry.Registry, opts Options, types ...catalog.PortalType) error {
	for _, pt := range types {
		cfg, ok := portalConfigs[pt]
		if !ok {
			continue
		}
		r.RegisterPortalType(pt, listingFactory(withOptions(cfg, opts)))
	}
	return nil
}

// Modules returns the per-region registration bundles in discovery order.
func Modules(opts Options) []registry.RegionModule {
	region := func(reg catalog.Region, fn func(*registry.Registry, Options) error) registry.RegionModule {
		return registry.RegionModule{
			Region: reg,
			Register: func(r *registry.Registry) error {
				return fn(r, opts)
			},
		}
	}
	return []registry.RegionModule{
		region(catalog.RegionNSW, registerNSW),
		region(catalog.RegionVIC, registerVIC),
		region(catalog.RegionQLD, registerQLD),
		region(catalog.RegionSA, registerSA),
		region(catalog.RegionWA, registerWA),
		region(catalog.RegionTAS, registerTAS),
		region(catalog.RegionNT, registerNT),
	}
}

func registerNSW(r *registry.Registry, opts Options) error {
	return registerPortals(r, opts, catalog.PortalEPathway, catalog.PortalMasterview, catalog.PortalATDIS, catalog.PortalCivica)
}

func registerVIC(r *registry.Registry, opts Options) error {
	return registerPortals(r, opts, catalog.PortalEPathway, catalog.PortalCivica)
}

func registerQLD(r *registry.Registry, opts Options) error {
	return registerPortals(r, opts, catalog.PortalEPathway)
}

func registerSA(r *registry.Registry, opts Options) error {
	// PLAN_SA is a single statewide portal; the listing preset covers it
	// until the dedicated adapter lands.
	return registerPortals(r, opts, catalog.PortalCivica)
}

func registerWA(r *registry.Registry, opts Options) error {
	return registerPortals(r, opts, catalog.PortalCivica)
}

func registerTAS(r *registry.Registry, opts Options) error {
	return registerPortals(r, opts, catalog.PortalEPathway)
}

func registerNT(_ *registry.Registry, _ Options) error {
	// NT portals are still pending in the catalog; nothing to register yet.
	return nil
}
