// Package portal defines core types shared across subsystems.
package portal

import (
	"time"
)

// Mode selects which slice of a portal a scrape covers.
type Mode string

// Scrape modes persisted in run logs.
const (
	ModeActive     Mode = "active"
	ModeHistorical Mode = "historical"
)

// RunStatus represents the lifecycle state of a scrape run.
type RunStatus string

// Run status values persisted in the run store. Terminal statuses are
// success, failed and skipped; a run never leaves a terminal status.
const (
	RunStatusPending RunStatus = "pending"
	RunStatusRunning RunStatus = "running"
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
	RunStatusSkipped RunStatus = "skipped"
)

// IsTerminal reports whether the status is final.
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusSuccess || s == RunStatusFailed || s == RunStatusSkipped
}

// FailureReason classifies why a run failed or was skipped.
type FailureReason string

// Failure reasons recorded on runs. ReasonUnhealthyPortal accompanies a
// skipped run, not a failed one, and must not count toward failure alerting.
const (
	ReasonUnknownSource   FailureReason = "unknown_source"
	ReasonNoAdapter       FailureReason = "no_adapter"
	ReasonUnhealthyPortal FailureReason = "unhealthy_portal"
	ReasonOverlappingRun  FailureReason = "overlapping_run"
	ReasonTransientFetch  FailureReason = "transient_fetch_error"
	ReasonPersistence     FailureReason = "persistence_error"
	ReasonUnexpected      FailureReason = "unexpected_error"
)

// HealthStatus is the result of an adapter's pre-flight portal check.
// It is produced fresh on every check and only ever embedded transiently
// in a run's decision, never persisted on its own.
type HealthStatus struct {
	Healthy      bool
	Message      string
	ResponseTime time.Duration
	CheckedAt    time.Time
	ErrorType    string
}

// RawRecord is one record exactly as an adapter extracted it.
type RawRecord struct {
	Data      map[string]any
	SourceURL string
	ScrapedAt time.Time
}

// NormalizedRecord is a record after the normalization pipeline has run.
type NormalizedRecord struct {
	SourceCode string
	ExternalID string
	Fields     map[string]any
	SourceURL  string
	ScrapedAt  time.Time
}

// UpsertResult reports the outcome of persisting a normalized batch.
type UpsertResult struct {
	New     int
	Updated int
	Errors  int
}

// DateRange bounds a historical backfill. Zero values fall back to a
// trailing one-year window ending now.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// IsZero reports whether no bounds were supplied.
func (r DateRange) IsZero() bool {
	return r.Start.IsZero() && r.End.IsZero()
}

// ScrapeRun is the audit record for one scrape attempt. It is created when
// a runner begins work, mutated only by that runner, and append-only once
// CompletedAt is set.
type ScrapeRun struct {
	ID               string
	SourceCode       string
	StartedAt        time.Time
	CompletedAt      *time.Time
	Status           RunStatus
	Mode             Mode
	RecordsScraped   int
	RecordsProcessed int
	RecordsNew       int
	RecordsUpdated   int
	Errors           []string
	DurationSeconds  int64
	BatchID          string
}

// DispatchKind distinguishes what a dispatch asks a worker to do.
type DispatchKind string

// Dispatch kinds carried on the queue.
const (
	KindScrape       DispatchKind = "scrape"
	KindMappingLearn DispatchKind = "mapping_learn"
)

// Dispatch is one unit of work handed from the scheduler to a worker.
// It is ephemeral and consumed exactly once.
type Dispatch struct {
	ID         string
	Kind       DispatchKind
	SourceCode string
	Mode       Mode
	DateRange  DateRange
	NotBefore  time.Time
	BatchID    string
	Enqueued   time.Time
}
