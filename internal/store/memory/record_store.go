package memory

import (
	"context"
	"sync"

	"github.com/cividex/portalwatch/internal/portal"
)

type recordKey struct {
	source     string
	externalID string
}

// RecordStore keeps normalized records in memory, upserted by
// (source_code, external_id).
type RecordStore struct {
	mu      sync.Mutex
	records map[recordKey]portal.NormalizedRecord
}

// NewRecordStore constructs a RecordStore.
func NewRecordStore() *RecordStore {
	return &RecordStore{records: make(map[recordKey]portal.NormalizedRecord)}
}

// UpsertBatch inserts or replaces records and reports counts. Records
// without an external ID cannot be keyed and count as errors.
func (s *RecordStore) UpsertBatch(_ context.Context, records []portal.NormalizedRecord) (portal.UpsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var res portal.UpsertResult
	for _, r := range records {
		if r.ExternalID == "" {
			res.Errors++
			continue
		}
		key := recordKey{source: r.SourceCode, externalID: r.ExternalID}
		if _, exists := s.records[key]; exists {
			res.Updated++
		} else {
			res.New++
		}
		s.records[key] = r
	}
	return res, nil
}

// Len reports the number of stored records.
func (s *RecordStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}
