package normalize

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cividex/portalwatch/internal/portal"
)

func TestLearnMappingMatchesAliases(t *testing.T) {
	t.Parallel()

	m := NewAliasMapper(nil)
	samples := []portal.RawRecord{{
		Data: map[string]any{
			"Council Reference": "DA-2026-001",
			"Site-Address":      "12 Beach Rd",
			"proposal":          "Carport",
			"DA Status":         "Lodged",
			"irrelevant_column": "x",
		},
	}}

	n, err := m.LearnMapping(context.Background(), "sandridge", samples)
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	mapping := m.Mapping("sandridge")
	require.NotNil(t, mapping)
	assert.Equal(t, "application_number", mapping["Council Reference"])
	assert.Equal(t, "address", mapping["Site-Address"])
	assert.Equal(t, "description", mapping["proposal"])
	assert.Equal(t, "status", mapping["DA Status"])
	assert.NotContains(t, mapping, "irrelevant_column")
}

func TestLearnMappingMergesKeysAcrossSamples(t *testing.T) {
	t.Parallel()

	m := NewAliasMapper(nil)
	samples := []portal.RawRecord{
		{Data: map[string]any{"app no": "1"}},
		{Data: map[string]any{"date lodged": "2026-01-05"}},
	}

	n, err := m.LearnMapping(context.Background(), "src", samples)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	mapping := m.Mapping("src")
	assert.Equal(t, "application_number", mapping["app no"])
	assert.Equal(t, "lodged_date", mapping["date lodged"])
}

func TestLearnMappingRejectsEmptySamples(t *testing.T) {
	t.Parallel()

	m := NewAliasMapper(nil)
	_, err := m.LearnMapping(context.Background(), "src", nil)
	assert.Error(t, err)
	assert.Nil(t, m.Mapping("src"))
}

func TestMappingReturnsCopy(t *testing.T) {
	t.Parallel()

	m := NewAliasMapper(nil)
	_, err := m.LearnMapping(context.Background(), "src", []portal.RawRecord{
		{Data: map[string]any{"reference": "R-1"}},
	})
	require.NoError(t, err)

	first := m.Mapping("src")
	first["reference"] = "tampered"
	assert.Equal(t, "application_number", m.Mapping("src")["reference"])
}

func TestMappedNormalizeRenamesFields(t *testing.T) {
	t.Parallel()

	m := NewAliasMapper(nil)
	_, err := m.LearnMapping(context.Background(), "src", []portal.RawRecord{
		{Data: map[string]any{"Council Reference": "DA-1", "Premises": "3 Low St"}},
	})
	require.NoError(t, err)

	scraped := time.Date(2026, 3, 10, 1, 0, 0, 0, time.UTC)
	records, err := NewMapped(m).Normalize(context.Background(), "src", []portal.RawRecord{{
		Data:      map[string]any{"Council Reference": "DA-9", "Premises": "9 Hill St", "extra": "kept"},
		SourceURL: "https://portal.example/da/9",
		ScrapedAt: scraped,
	}})
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, "DA-9", rec.ExternalID)
	assert.Equal(t, "DA-9", rec.Fields["application_number"])
	assert.Equal(t, "9 Hill St", rec.Fields["address"])
	assert.Equal(t, "kept", rec.Fields["extra"])
	assert.NotContains(t, rec.Fields, "Council Reference")
	assert.Equal(t, "https://portal.example/da/9", rec.SourceURL)
	assert.True(t, rec.ScrapedAt.Equal(scraped))
}

func TestMappedFallsBackToPassthrough(t *testing.T) {
	t.Parallel()

	m := NewAliasMapper(nil)
	records, err := NewMapped(m).Normalize(context.Background(), "unlearned", []portal.RawRecord{{
		Data: map[string]any{"application_number": "DA-3", "quirky_field": "v"},
	}})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "DA-3", records[0].ExternalID)
	assert.Equal(t, "v", records[0].Fields["quirky_field"])
}
