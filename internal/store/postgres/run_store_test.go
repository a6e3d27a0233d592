package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cividex/portalwatch/internal/portal"
)

var runColumns = []string{
	"id", "source_id", "started_at", "completed_at", "status", "mode",
	"records_scraped", "records_processed", "records_new", "records_updated",
	"errors", "duration_seconds", "batch_id",
}

func TestNewRunStoreWithPoolValidatesTable(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	_, err = NewRunStoreWithPool(mock, "scrape_runs; DROP TABLE users")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid table name")

	_, err = NewRunStoreWithPool(nil, "scrape_runs")
	require.Error(t, err)

	store, err := NewRunStoreWithPool(mock, "")
	require.NoError(t, err)
	assert.Equal(t, "scrape_runs", store.table)
}

func TestLogRunInsertsRow(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewRunStoreWithPool(mock, "scrape_runs")
	require.NoError(t, err)

	started := time.Unix(1760000000, 0).UTC()
	completed := started.Add(90 * time.Second)
	batchID := "alpha_20260310T040000Z"

	run := portal.ScrapeRun{
		SourceCode:       "alpha",
		StartedAt:        started,
		CompletedAt:      &completed,
		Status:           portal.RunStatusSuccess,
		Mode:             portal.ModeActive,
		RecordsScraped:   12,
		RecordsProcessed: 12,
		RecordsNew:       3,
		RecordsUpdated:   9,
		DurationSeconds:  90,
		BatchID:          batchID,
	}

	mock.ExpectQuery("INSERT INTO scrape_runs").
		WithArgs(
			"alpha",
			started,
			&completed,
			"success",
			"active",
			12,
			12,
			3,
			9,
			[]byte(nil),
			int64(90),
			&batchID,
		).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("run-1"))

	logged, err := store.LogRun(context.Background(), run)
	require.NoError(t, err)
	assert.Equal(t, "run-1", logged.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLogRunMarshalsErrors(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewRunStoreWithPool(mock, "scrape_runs")
	require.NoError(t, err)

	run := portal.ScrapeRun{
		SourceCode: "alpha",
		Status:     portal.RunStatusFailed,
		Mode:       portal.ModeActive,
		Errors:     []string{"timeout", "connection reset"},
	}

	mock.ExpectQuery("INSERT INTO scrape_runs").
		WithArgs(
			"alpha",
			run.StartedAt,
			run.CompletedAt,
			"failed",
			"active",
			0, 0, 0, 0,
			[]byte(`["timeout","connection reset"]`),
			int64(0),
			(*string)(nil),
		).
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow("run-2"))

	_, err = store.LogRun(context.Background(), run)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRunsSinceScansRows(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewRunStoreWithPool(mock, "scrape_runs")
	require.NoError(t, err)

	since := time.Unix(1760000000, 0).UTC()
	batchID := "alpha_20260310T040000Z"
	done1 := since.Add(time.Hour + time.Minute)
	done2 := since.Add(2*time.Hour + time.Minute)

	mock.ExpectQuery("FROM scrape_runs").
		WithArgs(since).
		WillReturnRows(pgxmock.NewRows(runColumns).
			AddRow("run-1", "alpha", since.Add(time.Hour), &done1,
				"success", "active", 5, 5, 5, 0, []byte(nil), int64(60), &batchID).
			AddRow("run-2", "bravo", since.Add(2*time.Hour), &done2,
				"failed", "active", 0, 0, 0, 0, []byte(`["boom"]`), int64(60), (*string)(nil)))

	runs, err := store.RunsSince(context.Background(), since)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	assert.Equal(t, "alpha", runs[0].SourceCode)
	assert.Equal(t, portal.RunStatusSuccess, runs[0].Status)
	assert.Equal(t, batchID, runs[0].BatchID)

	assert.Equal(t, portal.RunStatusFailed, runs[1].Status)
	assert.Equal(t, []string{"boom"}, runs[1].Errors)
	assert.Empty(t, runs[1].BatchID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRecentFailuresQueriesWithLimit(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewRunStoreWithPool(mock, "scrape_runs")
	require.NoError(t, err)

	now := time.Unix(1760000000, 0).UTC()
	done := now.Add(time.Minute)
	mock.ExpectQuery("WHERE status = 'failed'").
		WithArgs(5).
		WillReturnRows(pgxmock.NewRows(runColumns).
			AddRow("run-9", "charlie", now, &done,
				"failed", "historical", 0, 0, 0, 0, []byte(`["selector drift"]`), int64(60), (*string)(nil)))

	runs, err := store.RecentFailures(context.Background(), 5)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "charlie", runs[0].SourceCode)
	assert.Equal(t, portal.ModeHistorical, runs[0].Mode)
	require.NoError(t, mock.ExpectationsWereMet())
}
