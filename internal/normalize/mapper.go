package normalize

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/cividex/portalwatch/internal/portal"
)

// canonicalAliases maps each canonical field to the names portals are
// known to publish it under. Alias matching is case-insensitive and
// ignores spaces, dashes and underscores.
var canonicalAliases = map[string][]string{
	"application_number": {"application_number", "da_number", "app_no", "application_id", "reference", "ref_no", "council_reference"},
	"address":            {"address", "site_address", "property_address", "location", "premises"},
	"description":        {"description", "proposal", "development_description", "details", "nature_of_work"},
	"status":             {"status", "application_status", "da_status", "current_status"},
	"lodged_date":        {"lodged_date", "date_lodged", "submission_date", "date_received", "lodgement_date"},
	"decision_date":      {"decision_date", "date_determined", "determination_date", "decided_date"},
	"category":           {"category", "application_type", "da_type", "type_of_development"},
	"applicant":          {"applicant", "applicant_name", "submitted_by"},
}

// AliasMapper learns per-source field mappings by matching sampled raw
// record keys against the canonical alias table. Learned mappings live
// in memory and feed the Mapped normalizer.
type AliasMapper struct {
	mu       sync.RWMutex
	mappings map[string]map[string]string
	logger   *zap.Logger
}

// NewAliasMapper constructs an AliasMapper.
func NewAliasMapper(logger *zap.Logger) *AliasMapper {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AliasMapper{
		mappings: make(map[string]map[string]string),
		logger:   logger,
	}
}

// LearnMapping inspects the sample records and stores a portal-field to
// canonical-field mapping for the source. It returns how many canonical
// fields were mapped.
func (m *AliasMapper) LearnMapping(_ context.Context, sourceCode string, samples []portal.RawRecord) (int, error) {
	if len(samples) == 0 {
		return 0, fmt.Errorf("no samples for %s", sourceCode)
	}
	seen := make(map[string]struct{})
	for _, s := range samples {
		for key := range s.Data {
			seen[key] = struct{}{}
		}
	}
	mapping := make(map[string]string)
	for canonical, aliases := range canonicalAliases {
		for _, alias := range aliases {
			for key := range seen {
				if foldKey(key) == foldKey(alias) {
					mapping[key] = canonical
					break
				}
			}
			if _, done := mappingHasTarget(mapping, canonical); done {
				break
			}
		}
	}
	m.mu.Lock()
	m.mappings[sourceCode] = mapping
	m.mu.Unlock()
	m.logger.Info("field mapping learned",
		zap.String("source", sourceCode),
		zap.Int("fields_mapped", len(mapping)))
	return len(mapping), nil
}

// Mapping returns the learned mapping for a source, or nil.
func (m *AliasMapper) Mapping(sourceCode string) map[string]string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mapping, ok := m.mappings[sourceCode]
	if !ok {
		return nil
	}
	out := make(map[string]string, len(mapping))
	for k, v := range mapping {
		out[k] = v
	}
	return out
}

func mappingHasTarget(mapping map[string]string, canonical string) (string, bool) {
	for key, target := range mapping {
		if target == canonical {
			return key, true
		}
	}
	return "", false
}

func foldKey(key string) string {
	key = strings.ToLower(key)
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '_':
			return -1
		}
		return r
	}, key)
}

// Mapped is a normalizer that applies learned field mappings and falls
// back to passthrough behavior for sources with no mapping yet.
type Mapped struct {
	mapper      *AliasMapper
	passthrough *Passthrough
}

// NewMapped constructs a Mapped normalizer over a shared AliasMapper.
func NewMapped(mapper *AliasMapper) *Mapped {
	return &Mapped{mapper: mapper, passthrough: NewPassthrough()}
}

// Normalize renames mapped fields to their canonical names. Unmapped
// fields ride along untouched under their portal names.
func (n *Mapped) Normalize(ctx context.Context, sourceCode string, records []portal.RawRecord) ([]portal.NormalizedRecord, error) {
	mapping := n.mapper.Mapping(sourceCode)
	if len(mapping) == 0 {
		return n.passthrough.Normalize(ctx, sourceCode, records)
	}
	out := make([]portal.NormalizedRecord, 0, len(records))
	for _, r := range records {
		fields := make(map[string]any, len(r.Data))
		for key, value := range r.Data {
			if canonical, ok := mapping[key]; ok {
				fields[canonical] = value
			} else {
				fields[key] = value
			}
		}
		out = append(out, portal.NormalizedRecord{
			SourceCode: sourceCode,
			ExternalID: externalID(fields),
			Fields:     fields,
			SourceURL:  r.SourceURL,
			ScrapedAt:  r.ScrapedAt,
		})
	}
	return out, nil
}
