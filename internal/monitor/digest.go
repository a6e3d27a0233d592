package monitor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cividex/portalwatch/internal/portal"
)

// Digest is the assembled daily report.
type Digest struct {
	GeneratedAt time.Time
	Overall     Stats
	Tiers       []TierStats
	Chronic     []ChronicFailure
	Errors      []portal.ScrapeRun
}

// BuildDigest assembles the daily report over the default window.
func (m *Monitor) BuildDigest(ctx context.Context) (Digest, error) {
	overall, err := m.Overall(ctx, DefaultWindow)
	if err != nil {
		return Digest{}, err
	}
	tiers, err := m.TierRollup(ctx, DefaultWindow)
	if err != nil {
		return Digest{}, err
	}
	chronic, err := m.ChronicFailures(ctx, DefaultWindow, DefaultChronicMin)
	if err != nil {
		return Digest{}, err
	}
	errsRuns, err := m.RecentErrors(ctx, 10)
	if err != nil {
		return Digest{}, err
	}
	return Digest{
		GeneratedAt: m.clock.Now(),
		Overall:     overall,
		Tiers:       tiers,
		Chronic:     chronic,
		Errors:      errsRuns,
	}, nil
}

// SendDigest builds the daily report and hands it to the notifier. The
// returned bool reports delivery; a delivery failure is logged, never
// escalated.
func (m *Monitor) SendDigest(ctx context.Context, notifier portal.Notifier) (bool, error) {
	d, err := m.BuildDigest(ctx)
	if err != nil {
		return false, err
	}
	subject := fmt.Sprintf("Daily scrape digest: %d runs, %.0f%% success",
		d.Overall.Total, d.Overall.SuccessRate*100)
	delivered := notifier.Notify(ctx, "digest", subject, d.Render())
	if !delivered {
		m.logger.Warn("digest delivery failed")
	}
	return delivered, nil
}

// Render produces the plain-text body of the digest.
func (d Digest) Render() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Scrape digest for the %.0fh ending %s\n\n",
		d.Overall.WindowHours, d.GeneratedAt.UTC().Format(time.RFC3339))
	fmt.Fprintf(&sb, "Runs: %d total, %d success, %d failed, %d skipped (%.1f%% success)\n",
		d.Overall.Total, d.Overall.Success, d.Overall.Failed, d.Overall.Skipped,
		d.Overall.SuccessRate*100)
	fmt.Fprintf(&sb, "Records: %d new, %d updated\n", d.Overall.RecordsNew, d.Overall.RecordsUpdated)

	sb.WriteString("\nBy tier:\n")
	for _, t := range d.Tiers {
		fmt.Fprintf(&sb, "  tier %d: %d sources, %d runs, %d failed (%.1f%% success)\n",
			t.Tier, t.Sources, t.Runs, t.Failed, t.SuccessRate*100)
	}

	if len(d.Chronic) > 0 {
		sb.WriteString("\nChronic failures:\n")
		for _, c := range d.Chronic {
			line := fmt.Sprintf("  %-24s %d failures", c.SourceCode, c.Failures)
			if c.LastError != "" {
				line += ": " + c.LastError
			}
			sb.WriteString(line + "\n")
		}
	}

	if len(d.Errors) > 0 {
		sb.WriteString("\nRecent errors:\n")
		for _, r := range d.Errors {
			detail := ""
			if len(r.Errors) > 0 {
				detail = r.Errors[len(r.Errors)-1]
			}
			fmt.Fprintf(&sb, "  %s %-24s %s\n",
				r.StartedAt.UTC().Format("2006-01-02 15:04"), r.SourceCode, detail)
		}
	}
	return sb.String()
}
