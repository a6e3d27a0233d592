package rawstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cividex/portalwatch/internal/portal"
)

func newFSStore(t *testing.T) *FSStore {
	t.Helper()
	s, err := NewFS(Config{BaseDir: t.TempDir()})
	require.NoError(t, err)
	return s
}

func sampleRecords() []portal.RawRecord {
	return []portal.RawRecord{
		{
			Data:      map[string]any{"application_number": "DA-2026-001", "address": "1 High St"},
			SourceURL: "https://portal.example/da/1",
			ScrapedAt: time.Date(2026, 3, 10, 4, 0, 0, 0, time.UTC),
		},
		{
			Data:      map[string]any{"application_number": "DA-2026-002"},
			ScrapedAt: time.Date(2026, 3, 10, 4, 0, 1, 0, time.UTC),
		},
	}
}

func TestNewFSRequiresBaseDir(t *testing.T) {
	t.Parallel()

	_, err := NewFS(Config{})
	assert.Error(t, err)
	_, err = NewFS(Config{BaseDir: "   "})
	assert.Error(t, err)
}

func TestBatchIDRoundTrip(t *testing.T) {
	t.Parallel()

	at := time.Date(2026, 3, 10, 4, 30, 15, 0, time.UTC)

	for _, code := range []string{"sydney", "inner_west", "port_phillip_bay"} {
		id := NewBatchID(code, at)
		gotCode, gotAt, err := ParseBatchID(id)
		require.NoError(t, err, id)
		assert.Equal(t, code, gotCode)
		assert.True(t, gotAt.Equal(at.Truncate(time.Second)), id)
	}

	_, _, err := ParseBatchID("junk")
	assert.Error(t, err)
	_, _, err = ParseBatchID("_20260310_043015_abcd1234")
	assert.Error(t, err)
	_, _, err = ParseBatchID("code_notadate_badtime_abcd1234")
	assert.Error(t, err)
}

func TestStoreAndGetBatch(t *testing.T) {
	t.Parallel()

	s := newFSStore(t)
	id, err := s.StoreBatch(context.Background(), "inner_west", sampleRecords(), map[string]any{"mode": "active"})
	require.NoError(t, err)

	batch, err := s.GetBatch(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, batch)
	assert.Equal(t, id, batch.BatchID)
	assert.Equal(t, "inner_west", batch.SourceCode)
	assert.Equal(t, 2, batch.Count)
	require.Len(t, batch.Records, 2)
	assert.Equal(t, "DA-2026-001", batch.Records[0].Data["application_number"])
	assert.Equal(t, "active", batch.Metadata["mode"])
	assert.NotEmpty(t, batch.Metadata["records_sha256"])
}

func TestGetBatchAbsentIsNil(t *testing.T) {
	t.Parallel()

	s := newFSStore(t)
	batch, err := s.GetBatch(context.Background(), NewBatchID("ghost", time.Now()))
	require.NoError(t, err)
	assert.Nil(t, batch)
}

func TestLatestBatchPicksNewest(t *testing.T) {
	t.Parallel()

	s := newFSStore(t)
	base := time.Date(2026, 3, 10, 4, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * time.Hour)
		s.now = func() time.Time { return at }
		_, err := s.StoreBatch(context.Background(), "sydney", sampleRecords(), nil)
		require.NoError(t, err)
	}

	latest, err := s.LatestBatch(context.Background(), "sydney")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.True(t, latest.ScrapedAt.Equal(base.Add(2*time.Hour)))

	none, err := s.LatestBatch(context.Background(), "unscraped")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestListBatchesOldestFirst(t *testing.T) {
	t.Parallel()

	s := newFSStore(t)
	base := time.Date(2026, 3, 9, 23, 0, 0, 0, time.UTC)
	var ids []string
	// Spans a midnight boundary, so batches land in two date directories.
	for i := 0; i < 3; i++ {
		at := base.Add(time.Duration(i) * time.Hour)
		s.now = func() time.Time { return at }
		id, err := s.StoreBatch(context.Background(), "sydney", sampleRecords(), nil)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	listed, err := s.ListBatches(context.Background(), "sydney")
	require.NoError(t, err)
	assert.Equal(t, ids, listed)
}
