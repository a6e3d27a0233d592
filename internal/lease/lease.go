// Package lease guards against overlapping runs of the same
// (source, mode). The cadence scheduler and a manual trigger can both
// enqueue work for one source; whichever run acquires the lease first
// proceeds and the other is skipped.
package lease

import (
	"context"
	"sync"
	"time"

	"github.com/cividex/portalwatch/internal/portal"
)

func key(sourceCode string, mode portal.Mode) string {
	return "scrape:lease:" + sourceCode + ":" + string(mode)
}

// Memory is a single-process lease for development and tests.
type Memory struct {
	mu   sync.Mutex
	held map[string]time.Time
	now  func() time.Time
}

// NewMemory constructs a Memory lease.
func NewMemory() *Memory {
	return &Memory{held: make(map[string]time.Time), now: time.Now}
}

// Acquire takes the lease unless another holder's TTL is still running.
func (m *Memory) Acquire(_ context.Context, sourceCode string, mode portal.Mode, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := key(sourceCode, mode)
	now := m.now()
	if expiry, ok := m.held[k]; ok && expiry.After(now) {
		return false, nil
	}
	m.held[k] = now.Add(ttl)
	return true, nil
}

// Release frees the lease.
func (m *Memory) Release(_ context.Context, sourceCode string, mode portal.Mode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.held, key(sourceCode, mode))
	return nil
}
