package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsBadSources(t *testing.T) {
	t.Parallel()

	base := Source{Name: "X", Region: RegionNSW, Tier: 1, PortalURL: "https://x.example", PortalType: PortalCustom, Status: StatusActive}

	empty := base
	_, err := New([]Source{empty})
	assert.ErrorContains(t, err, "empty code")

	a, b := base, base
	a.Code, b.Code = "same", "same"
	_, err = New([]Source{a, b})
	assert.ErrorContains(t, err, "duplicate")

	low := base
	low.Code, low.Tier = "low", 0
	_, err = New([]Source{low})
	assert.ErrorContains(t, err, "out of range")

	high := base
	high.Code, high.Tier = "high", 6
	_, err = New([]Source{high})
	assert.ErrorContains(t, err, "out of range")
}

func TestDefaultCatalogIsWellFormed(t *testing.T) {
	t.Parallel()

	cat := Default()
	require.NotZero(t, cat.Len())

	for _, src := range cat.All() {
		assert.NotEmpty(t, src.Code)
		assert.NotEmpty(t, src.Name)
		assert.NotEmpty(t, src.PortalURL)
		assert.NotEmpty(t, string(src.PortalType))
		assert.GreaterOrEqual(t, src.Tier, MinTier)
		assert.LessOrEqual(t, src.Tier, MaxTier)
	}
}

func TestTiersPartitionTheCatalog(t *testing.T) {
	t.Parallel()

	cat := Default()

	seen := make(map[string]int)
	for _, tier := range cat.Tiers() {
		for _, src := range cat.ByTier(tier) {
			assert.Equal(t, tier, src.Tier)
			seen[src.Code]++
		}
	}

	// Every source appears in exactly one tier.
	assert.Len(t, seen, cat.Len())
	for code, n := range seen {
		assert.Equal(t, 1, n, "source %s", code)
	}

	tiers := cat.Tiers()
	for i := 1; i < len(tiers); i++ {
		assert.Less(t, tiers[i-1], tiers[i])
	}
}

func TestByCode(t *testing.T) {
	t.Parallel()

	cat := Default()
	first := cat.All()[0]

	got, ok := cat.ByCode(first.Code)
	require.True(t, ok)
	assert.Equal(t, first, got)

	_, ok = cat.ByCode("no_such_council")
	assert.False(t, ok)
}

func TestByRegion(t *testing.T) {
	t.Parallel()

	cat := Default()

	total := 0
	for _, region := range cat.Regions() {
		sources := cat.ByRegion(region)
		assert.NotEmpty(t, sources)
		for _, src := range sources {
			assert.Equal(t, region, src.Region)
		}
		total += len(sources)
	}
	assert.Equal(t, cat.Len(), total)

	assert.Empty(t, cat.ByRegion(Region("atlantis")))
}
