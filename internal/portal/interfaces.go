package portal

import (
	"context"
	"time"
)

// Adapter is the capability contract for scraping one source. Adapter
// instances hold per-connection state (rate-limit timers, sessions) and
// are cached per source code by the registry.
type Adapter interface {
	// ScrapeActive fetches currently listed records.
	ScrapeActive(ctx context.Context) ([]RawRecord, error)
	// ScrapeHistorical fetches records in the given date range. A zero
	// range means a trailing one-year window ending now.
	ScrapeHistorical(ctx context.Context, dr DateRange) ([]RawRecord, error)
	// Health performs a pre-flight portal check.
	Health(ctx context.Context) HealthStatus
}

// SingleLookup is an optional capability for portals that support direct
// record lookup by external ID.
type SingleLookup interface {
	ScrapeOne(ctx context.Context, externalID string) (*RawRecord, error)
}

// RunStore persists scrape run audit records and serves the monitoring
// queries over them.
type RunStore interface {
	LogRun(ctx context.Context, run ScrapeRun) (ScrapeRun, error)
	RunsSince(ctx context.Context, since time.Time) ([]ScrapeRun, error)
	RecentFailures(ctx context.Context, limit int) ([]ScrapeRun, error)
}

// RecordStore upserts normalized records keyed by (source_code, external_id).
type RecordStore interface {
	UpsertBatch(ctx context.Context, records []NormalizedRecord) (UpsertResult, error)
}

// RawStore keeps raw record batches for audit, reprocessing and
// mapping-learning. Batches are content-addressed by source and timestamp.
type RawStore interface {
	StoreBatch(ctx context.Context, sourceCode string, records []RawRecord, metadata map[string]any) (string, error)
	GetBatch(ctx context.Context, batchID string) (*RawBatch, error)
	LatestBatch(ctx context.Context, sourceCode string) (*RawBatch, error)
}

// RawBatch is a stored batch of raw records plus its envelope.
type RawBatch struct {
	BatchID    string         `json:"batch_id"`
	SourceCode string         `json:"source_code"`
	ScrapedAt  time.Time      `json:"scraped_at"`
	Count      int            `json:"record_count"`
	Metadata   map[string]any `json:"metadata"`
	Records    []RawRecord    `json:"records"`
}

// Normalizer is the external field-mapping/normalization pipeline boundary.
type Normalizer interface {
	Normalize(ctx context.Context, sourceCode string, records []RawRecord) ([]NormalizedRecord, error)
}

// FieldMapper is the external mapping-learning boundary. LearnMapping is
// handed a handful of sample records from the latest raw batch.
type FieldMapper interface {
	LearnMapping(ctx context.Context, sourceCode string, samples []RawRecord) (fieldsMapped int, err error)
}

// Notifier is a fire-and-forget alert sink. A false return means delivery
// failed; callers log it and move on, never escalate.
type Notifier interface {
	Notify(ctx context.Context, kind string, subject string, body string) bool
}

// Queue provides enqueue/dequeue semantics for dispatches.
type Queue interface {
	Enqueue(ctx context.Context, d Dispatch) error
	Dequeue(ctx context.Context) (Dispatch, error)
}

// Lease grants at-most-one-concurrent-run per (source, mode). Acquire
// returns false when another run holds the lease.
type Lease interface {
	Acquire(ctx context.Context, sourceCode string, mode Mode, ttl time.Duration) (bool, error)
	Release(ctx context.Context, sourceCode string, mode Mode) error
}

// Clock returns the current time (useful for testing).
type Clock interface {
	Now() time.Time
}

// IDGenerator produces dispatch and batch IDs (UUIDs).
type IDGenerator interface {
	NewID() string
}
