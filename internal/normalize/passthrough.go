// Package normalize holds the boundary to the field-mapping pipeline.
// The AI-assisted pipeline is an external service; Passthrough is what
// runs when no learned mapping applies, carrying raw fields through
// untouched so records are never dropped on the floor.
package normalize

import (
	"context"
	"fmt"

	"github.com/cividex/portalwatch/internal/portal"
)

// externalIDFields are tried in order when keying a record.
var externalIDFields = []string{"application_number", "da_number", "reference", "id"}

// Passthrough implements portal.Normalizer without field mapping.
type Passthrough struct{}

// NewPassthrough constructs a Passthrough normalizer.
func NewPassthrough() *Passthrough {
	return &Passthrough{}
}

// Normalize copies raw fields into normalized records, keyed by whichever
// identifier field the portal exposed. Records with no identifier still
// pass through; the record store counts them as errors at upsert time.
func (p *Passthrough) Normalize(_ context.Context, sourceCode string, records []portal.RawRecord) ([]portal.NormalizedRecord, error) {
	out := make([]portal.NormalizedRecord, 0, len(records))
	for _, r := range records {
		out = append(out, portal.NormalizedRecord{
			SourceCode: sourceCode,
			ExternalID: externalID(r.Data),
			Fields:     r.Data,
			SourceURL:  r.SourceURL,
			ScrapedAt:  r.ScrapedAt,
		})
	}
	return out, nil
}

func externalID(data map[string]any) string {
	for _, field := range externalIDFields {
		if v, ok := data[field]; ok {
			if s := fmt.Sprintf("%v", v); s != "" {
				return s
			}
		}
	}
	return ""
}
