package rawstore

import (
	"context"
	"sync"
	"time"

	"github.com/cividex/portalwatch/internal/portal"
)

// MemStore is an in-memory raw store for development and tests.
type MemStore struct {
	mu      sync.RWMutex
	batches map[string]portal.RawBatch
	order   map[string][]string
	now     func() time.Time
}

// NewMem constructs a MemStore.
func NewMem() *MemStore {
	return &MemStore{
		batches: make(map[string]portal.RawBatch),
		order:   make(map[string][]string),
		now:     time.Now,
	}
}

// StoreBatch keeps the batch in memory and returns its ID.
func (s *MemStore) StoreBatch(_ context.Context, sourceCode string, records []portal.RawRecord, metadata map[string]any) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	batchID := NewBatchID(sourceCode, now)
	if metadata == nil {
		metadata = map[string]any{}
	}
	s.batches[batchID] = portal.RawBatch{
		BatchID:    batchID,
		SourceCode: sourceCode,
		ScrapedAt:  now,
		Count:      len(records),
		Metadata:   metadata,
		Records:    records,
	}
	s.order[sourceCode] = append(s.order[sourceCode], batchID)
	return batchID, nil
}

// GetBatch returns a stored batch, or nil when absent.
func (s *MemStore) GetBatch(_ context.Context, batchID string) (*portal.RawBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	batch, ok := s.batches[batchID]
	if !ok {
		return nil, nil
	}
	return &batch, nil
}

// LatestBatch returns the newest batch for a source, or nil.
func (s *MemStore) LatestBatch(_ context.Context, sourceCode string) (*portal.RawBatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := s.order[sourceCode]
	if len(ids) == 0 {
		return nil, nil
	}
	batch := s.batches[ids[len(ids)-1]]
	return &batch, nil
}
