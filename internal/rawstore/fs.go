// Package rawstore keeps raw scraped batches for audit, reprocessing and
// mapping-learning. Batches are addressed by source code and timestamp.
package rawstore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/cividex/portalwatch/internal/hash/sha256"
	"github.com/cividex/portalwatch/internal/portal"
)

// Config captures parameters for the filesystem raw store.
type Config struct {
	BaseDir string `mapstructure:"base_dir"`
}

// FSStore writes raw batches to a date-partitioned directory tree:
// <base>/<source>/<yyyy>/<mm>/<dd>/<batch_id>.json.
type FSStore struct {
	baseDir string
	now     func() time.Time
}

// NewFS creates a filesystem-backed raw store.
func NewFS(cfg Config) (*FSStore, error) {
	if strings.TrimSpace(cfg.BaseDir) == "" {
		return nil, fmt.Errorf("base directory is required")
	}
	if err := os.MkdirAll(cfg.BaseDir, 0o750); err != nil {
		return nil, fmt.Errorf("create base directory: %w", err)
	}
	return &FSStore{baseDir: cfg.BaseDir, now: time.Now}, nil
}

// NewBatchID builds a batch ID of the form CODE_YYYYMMDD_HHMMSS_<8 hex>.
func NewBatchID(sourceCode string, at time.Time) string {
	return fmt.Sprintf("%s_%s_%s",
		sourceCode,
		at.UTC().Format("20060102_150405"),
		uuid.NewString()[:8])
}

// ParseBatchID recovers the source code and timestamp from a batch ID.
func ParseBatchID(batchID string) (sourceCode string, at time.Time, err error) {
	parts := strings.Split(batchID, "_")
	if len(parts) < 3 {
		return "", time.Time{}, fmt.Errorf("malformed batch id %q", batchID)
	}
	// The source code itself may contain underscores; the trailing three
	// segments are date, time and a random suffix.
	datePart := parts[len(parts)-3]
	timePart := parts[len(parts)-2]
	sourceCode = strings.Join(parts[:len(parts)-3], "_")
	at, err = time.Parse("20060102_150405", datePart+"_"+timePart)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("malformed batch id %q: %w", batchID, err)
	}
	if sourceCode == "" {
		return "", time.Time{}, fmt.Errorf("malformed batch id %q", batchID)
	}
	return sourceCode, at, nil
}

// StoreBatch writes a batch and returns its ID.
func (s *FSStore) StoreBatch(_ context.Context, sourceCode string, records []portal.RawRecord, metadata map[string]any) (string, error) {
	now := s.now().UTC()
	batchID := NewBatchID(sourceCode, now)
	if metadata == nil {
		metadata = map[string]any{}
	}
	if digest, err := recordsChecksum(records); err == nil {
		metadata["records_sha256"] = digest
	}
	batch := portal.RawBatch{
		BatchID:    batchID,
		SourceCode: sourceCode,
		ScrapedAt:  now,
		Count:      len(records),
		Metadata:   metadata,
		Records:    records,
	}
	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal batch: %w", err)
	}
	dir := s.batchDir(sourceCode, now)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create batch directory: %w", err)
	}
	path := filepath.Join(dir, batchID+".json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("write batch: %w", err)
	}
	return batchID, nil
}

// recordsChecksum digests the record payload so reprocessing can detect
// tampered or truncated batch files.
func recordsChecksum(records []portal.RawRecord) (string, error) {
	data, err := json.Marshal(records)
	if err != nil {
		return "", fmt.Errorf("marshal records: %w", err)
	}
	return sha256.New().Hash(data)
}

// GetBatch retrieves a batch by ID, or nil when absent.
func (s *FSStore) GetBatch(_ context.Context, batchID string) (*portal.RawBatch, error) {
	sourceCode, at, err := ParseBatchID(batchID)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(s.batchDir(sourceCode, at), batchID+".json")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read batch: %w", err)
	}
	var batch portal.RawBatch
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("decode batch %s: %w", batchID, err)
	}
	return &batch, nil
}

// LatestBatch returns the newest batch for a source, or nil when the
// source has none.
func (s *FSStore) LatestBatch(ctx context.Context, sourceCode string) (*portal.RawBatch, error) {
	ids, err := s.ListBatches(ctx, sourceCode)
	if err != nil || len(ids) == 0 {
		return nil, err
	}
	return s.GetBatch(ctx, ids[len(ids)-1])
}

// ListBatches returns the batch IDs for a source, oldest first.
func (s *FSStore) ListBatches(_ context.Context, sourceCode string) ([]string, error) {
	root := filepath.Join(s.baseDir, sourceCode)
	if _, err := os.Stat(root); os.IsNotExist(err) {
		return nil, nil
	}
	var ids []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(d.Name(), ".json") {
			return nil
		}
		ids = append(ids, strings.TrimSuffix(d.Name(), ".json"))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk batches: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *FSStore) batchDir(sourceCode string, at time.Time) string {
	return filepath.Join(s.baseDir, sourceCode, at.UTC().Format("2006/01/02"))
}
