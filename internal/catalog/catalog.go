// Package catalog is the static, read-only registry of known sources.
// It is loaded once at startup and never mutated at runtime.
package catalog

import (
	"fmt"
	"sort"
)

// Region groups sources by jurisdiction.
type Region string

// Known regions.
const (
	RegionNSW Region = "NSW"
	RegionVIC Region = "VIC"
	RegionQLD Region = "QLD"
	RegionSA  Region = "SA"
	RegionWA  Region = "WA"
	RegionTAS Region = "TAS"
	RegionNT  Region = "NT"
	RegionACT Region = "ACT"
)

// PortalType classifies sources sharing one underlying web system, so a
// single adapter can serve many sources.
type PortalType string

// Known portal types.
const (
	PortalEPlanningNSW PortalType = "eplanning_nsw"
	PortalSpearVIC     PortalType = "spear_vic"
	PortalDevelopmentI PortalType = "development_i_qld"
	PortalPlanSA       PortalType = "plan_sa"
	PortalPlanWA       PortalType = "plan_wa"
	PortalEPathway     PortalType = "epathway"
	PortalMasterview   PortalType = "masterview"
	PortalCivica       PortalType = "civica"
	PortalTechOne      PortalType = "technology_one"
	PortalATDIS        PortalType = "atdis"
	PortalCustom       PortalType = "custom"
)

// LifecycleStatus tracks whether a source's scraper is usable.
type LifecycleStatus string

// Lifecycle states.
const (
	StatusPending  LifecycleStatus = "pending"
	StatusActive   LifecycleStatus = "active"
	StatusBroken   LifecycleStatus = "broken"
	StatusDisabled LifecycleStatus = "disabled"
)

// MinTier and MaxTier bound the valid cadence tiers.
const (
	MinTier = 1
	MaxTier = 5
)

// Source describes one external data portal tracked by the system.
type Source struct {
	Code       string
	Name       string
	Region     Region
	Population int
	Tier       int
	PortalURL  string
	PortalType PortalType
	Status     LifecycleStatus
}

// Catalog holds the full source set with index structures for lookup.
// The slice ordering is stable and shared by every caller, which keeps
// stagger and batch arithmetic deterministic.
type Catalog struct {
	sources []Source
	byCode  map[string]Source
}

// New builds a Catalog from a source list. Duplicate or out-of-range
// entries are configuration errors.
func New(sources []Source) (*Catalog, error) {
	byCode := make(map[string]Source, len(sources))
	for _, s := range sources {
		if s.Code == "" {
			return nil, fmt.Errorf("source with empty code")
		}
		if _, dup := byCode[s.Code]; dup {
			return nil, fmt.Errorf("duplicate source code %q", s.Code)
		}
		if s.Tier < MinTier || s.Tier > MaxTier {
			return nil, fmt.Errorf("source %q: tier %d out of range", s.Code, s.Tier)
		}
		byCode[s.Code] = s
	}
	out := make([]Source, len(sources))
	copy(out, sources)
	return &Catalog{sources: out, byCode: byCode}, nil
}

// Default returns the built-in source set.
func Default() *Catalog {
	c, err := New(defaultSources)
	if err != nil {
		// The built-in set is validated by tests; a bad entry is a bug.
		panic(err)
	}
	return c
}

// ByCode looks up a source. The second return is false for unknown codes.
func (c *Catalog) ByCode(code string) (Source, bool) {
	s, ok := c.byCode[code]
	return s, ok
}

// All returns the sources in catalog order.
func (c *Catalog) All() []Source {
	out := make([]Source, len(c.sources))
	copy(out, c.sources)
	return out
}

// ByTier returns the sources in a tier, preserving catalog order.
func (c *Catalog) ByTier(tier int) []Source {
	var out []Source
	for _, s := range c.sources {
		if s.Tier == tier {
			out = append(out, s)
		}
	}
	return out
}

// ByRegion returns the sources in a region, preserving catalog order.
func (c *Catalog) ByRegion(region Region) []Source {
	var out []Source
	for _, s := range c.sources {
		if s.Region == region {
			out = append(out, s)
		}
	}
	return out
}

// Len reports the number of sources.
func (c *Catalog) Len() int {
	return len(c.sources)
}

// Tiers returns the distinct tiers present, ascending.
func (c *Catalog) Tiers() []int {
	seen := make(map[int]struct{})
	for _, s := range c.sources {
		seen[s.Tier] = struct{}{}
	}
	out := make([]int, 0, len(seen))
	for t := range seen {
		out = append(out, t)
	}
	sort.Ints(out)
	return out
}

// Regions returns the distinct regions present, sorted.
func (c *Catalog) Regions() []Region {
	seen := make(map[Region]struct{})
	for _, s := range c.sources {
		seen[s.Region] = struct{}{}
	}
	out := make([]Region, 0, len(seen))
	for r := range seen {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
