// Package postgres provides Postgres-backed persistence implementations.
package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cividex/portalwatch/internal/portal"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// RunStoreConfig controls the Postgres connection pool used for run rows.
type RunStoreConfig struct {
	DSN             string
	Table           string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type pgxIface interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// RunStore persists scrape runs into Postgres.
type RunStore struct {
	pool  pgxIface
	table string
}

// NewRunStore creates a Postgres-backed RunStore using the provided config.
func NewRunStore(ctx context.Context, cfg RunStoreConfig) (*RunStore, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("store.dsn is required")
	}
	table := cfg.Table
	if table == "" {
		table = "scrape_runs"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.MaxConnLifetime
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &RunStore{pool: pool, table: table}, nil
}

// NewRunStoreWithPool constructs a store from an existing pool (primarily
// for testing).
func NewRunStoreWithPool(pool pgxIface, table string) (*RunStore, error) {
	if pool == nil {
		return nil, fmt.Errorf("pool is required")
	}
	if table == "" {
		table = "scrape_runs"
	}
	if !validTableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &RunStore{pool: pool, table: table}, nil
}

// Close releases the underlying pool resources.
func (s *RunStore) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// LogRun inserts a run row and returns the run with its assigned ID.
func (s *RunStore) LogRun(ctx context.Context, run portal.ScrapeRun) (portal.ScrapeRun, error) {
	if s == nil || s.pool == nil {
		return run, fmt.Errorf("run store is not configured")
	}
	errorsJSON, err := marshalErrors(run.Errors)
	if err != nil {
		return run, err
	}
	query := fmt.Sprintf(`
INSERT INTO %s (
	source_id,
	started_at,
	completed_at,
	status,
	mode,
	records_scraped,
	records_processed,
	records_new,
	records_updated,
	errors,
	duration_seconds,
	batch_id
) VALUES (
	$1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12
) RETURNING id`, s.table)

	args := []any{
		run.SourceCode,
		run.StartedAt,
		run.CompletedAt,
		string(run.Status),
		string(run.Mode),
		run.RecordsScraped,
		run.RecordsProcessed,
		run.RecordsNew,
		run.RecordsUpdated,
		errorsJSON,
		run.DurationSeconds,
		nullableString(run.BatchID),
	}
	if err := s.pool.QueryRow(ctx, query, args...).Scan(&run.ID); err != nil {
		return run, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// RunsSince returns runs that started at or after the cutoff.
func (s *RunStore) RunsSince(ctx context.Context, since time.Time) ([]portal.ScrapeRun, error) {
	query := fmt.Sprintf(`
SELECT id, source_id, started_at, completed_at, status, mode,
	records_scraped, records_processed, records_new, records_updated,
	errors, duration_seconds, batch_id
FROM %s
WHERE started_at >= $1
ORDER BY started_at`, s.table)
	rows, err := s.pool.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

// RecentFailures returns the newest failed runs, most recent first.
func (s *RunStore) RecentFailures(ctx context.Context, limit int) ([]portal.ScrapeRun, error) {
	query := fmt.Sprintf(`
SELECT id, source_id, started_at, completed_at, status, mode,
	records_scraped, records_processed, records_new, records_updated,
	errors, duration_seconds, batch_id
FROM %s
WHERE status = 'failed'
ORDER BY started_at DESC
LIMIT $1`, s.table)
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query failures: %w", err)
	}
	defer rows.Close()
	return scanRuns(rows)
}

func scanRuns(rows pgx.Rows) ([]portal.ScrapeRun, error) {
	var out []portal.ScrapeRun
	for rows.Next() {
		var (
			run        portal.ScrapeRun
			status     string
			mode       string
			errorsJSON []byte
			batchID    *string
		)
		if err := rows.Scan(
			&run.ID,
			&run.SourceCode,
			&run.StartedAt,
			&run.CompletedAt,
			&status,
			&mode,
			&run.RecordsScraped,
			&run.RecordsProcessed,
			&run.RecordsNew,
			&run.RecordsUpdated,
			&errorsJSON,
			&run.DurationSeconds,
			&batchID,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		run.Status = portal.RunStatus(status)
		run.Mode = portal.Mode(mode)
		if len(errorsJSON) > 0 {
			if err := json.Unmarshal(errorsJSON, &run.Errors); err != nil {
				return nil, fmt.Errorf("decode run errors: %w", err)
			}
		}
		if batchID != nil {
			run.BatchID = *batchID
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}

func marshalErrors(errs []string) ([]byte, error) {
	if len(errs) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(errs)
	if err != nil {
		return nil, fmt.Errorf("marshal run errors: %w", err)
	}
	return data, nil
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
