package scheduler

import (
	"sort"
	"sync"
	"time"

	"github.com/cividex/portalwatch/internal/portal"
)

// DispatchState is the lifecycle of a tracked dispatch.
type DispatchState string

// Dispatch states.
const (
	StateQueued    DispatchState = "queued"
	StateRunning   DispatchState = "running"
	StateSuccess   DispatchState = "success"
	StateFailed    DispatchState = "failed"
	StateSkipped   DispatchState = "skipped"
	StateCancelled DispatchState = "cancelled"
)

// terminal reports whether no further transitions are possible.
func (s DispatchState) terminal() bool {
	switch s {
	case StateSuccess, StateFailed, StateSkipped, StateCancelled:
		return true
	}
	return false
}

// Record is the tracked status of one dispatch.
type Record struct {
	Dispatch    portal.Dispatch
	State       DispatchState
	StartedAt   time.Time
	CompletedAt time.Time
	Run         *portal.ScrapeRun
}

// maxRetained bounds how many terminal records the tracker keeps.
const maxRetained = 1024

// Tracker follows dispatches from enqueue to completion. Cancellation
// is best effort: a queued dispatch can be cancelled, a running one
// cannot.
type Tracker struct {
	mu       sync.Mutex
	records  map[string]*Record
	order    []string
	retained int
}

// NewTracker constructs an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{records: make(map[string]*Record)}
}

// Track registers a freshly enqueued dispatch.
func (t *Tracker) Track(d portal.Dispatch) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.records[d.ID] = &Record{Dispatch: d, State: StateQueued}
	t.order = append(t.order, d.ID)
}

// MarkRunning transitions a dispatch to running. It reports false when
// the dispatch was cancelled or is unknown, in which case the caller
// must drop the work.
func (t *Tracker) MarkRunning(id string, at time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[id]
	if !ok || rec.State != StateQueued {
		return false
	}
	rec.State = StateRunning
	rec.StartedAt = at
	return true
}

// MarkDone records the terminal state of a dispatch.
func (t *Tracker) MarkDone(id string, state DispatchState, at time.Time, run *portal.ScrapeRun) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[id]
	if !ok || rec.State.terminal() {
		return
	}
	rec.State = state
	rec.CompletedAt = at
	rec.Run = run
	t.retained++
	t.pruneLocked()
}

// Cancel attempts to cancel a queued dispatch. Running and finished
// dispatches are left alone.
func (t *Tracker) Cancel(id string, at time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[id]
	if !ok || rec.State != StateQueued {
		return false
	}
	rec.State = StateCancelled
	rec.CompletedAt = at
	t.retained++
	t.pruneLocked()
	return true
}

// Status returns the record for a dispatch ID.
func (t *Tracker) Status(id string) (Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.records[id]
	if !ok {
		return Record{}, false
	}
	return *rec, true
}

// Queued returns queued dispatches in enqueue order.
func (t *Tracker) Queued() []Record {
	return t.inState(StateQueued)
}

// Active returns running dispatches in enqueue order.
func (t *Tracker) Active() []Record {
	return t.inState(StateRunning)
}

func (t *Tracker) inState(state DispatchState) []Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	var out []Record
	for _, id := range t.order {
		if rec, ok := t.records[id]; ok && rec.State == state {
			out = append(out, *rec)
		}
	}
	return out
}

// Counts returns how many dispatches sit in each state.
func (t *Tracker) Counts() map[DispatchState]int {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make(map[DispatchState]int)
	for _, rec := range t.records {
		out[rec.State]++
	}
	return out
}

// pruneLocked evicts the oldest terminal records past the retention
// bound. Callers hold t.mu.
func (t *Tracker) pruneLocked() {
	if t.retained <= maxRetained {
		return
	}
	type aged struct {
		id   string
		done time.Time
	}
	var terminalIDs []aged
	for id, rec := range t.records {
		if rec.State.terminal() {
			terminalIDs = append(terminalIDs, aged{id: id, done: rec.CompletedAt})
		}
	}
	sort.Slice(terminalIDs, func(i, j int) bool {
		return terminalIDs[i].done.Before(terminalIDs[j].done)
	})
	for _, a := range terminalIDs[:len(terminalIDs)-maxRetained/2] {
		delete(t.records, a.id)
		t.retained--
	}
	kept := t.order[:0]
	for _, id := range t.order {
		if _, ok := t.records[id]; ok {
			kept = append(kept, id)
		}
	}
	t.order = kept
}
