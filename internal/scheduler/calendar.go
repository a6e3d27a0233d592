// Package scheduler turns the source catalog into a recurring dispatch
// calendar and handles ad-hoc dispatch requests.
//
// Cadence is tiered. Tier 1 runs every six hours on the hour. Tier 2
// runs every twelve hours with each source offset to its own
// quarter-hour. Tiers 3 through 5 run once a day, spread across the
// clock. All offsets derive from the source's index within its tier in
// catalog order, so the calendar is deterministic for a given catalog.
package scheduler

import (
	"sort"
	"time"

	"github.com/cividex/portalwatch/internal/catalog"
)

// Slot is a recurring time-of-day pattern in UTC.
type Slot struct {
	Hours  []int
	Minute int
}

// Entry is one source's recurring calendar slot.
type Entry struct {
	SourceCode string
	Tier       int
	Slot       Slot
}

// slotForTier computes the cadence slot for the idx-th source of a
// tier. idx counts every source in the tier, not just active ones, so
// a source keeps its slot when a neighbor is disabled.
func slotForTier(tier, idx int) Slot {
	switch tier {
	case 1:
		return Slot{Hours: []int{0, 6, 12, 18}, Minute: 0}
	case 2:
		return Slot{Hours: []int{0, 12}, Minute: (idx * 15) % 60}
	default:
		return Slot{Hours: []int{idx % 24}, Minute: (idx * 3) % 60}
	}
}

// BuildCalendar produces the recurring entries for every active source
// in the catalog, ordered by tier then catalog order.
func BuildCalendar(cat *catalog.Catalog) []Entry {
	var entries []Entry
	tiers := cat.Tiers()
	sort.Ints(tiers)
	for _, tier := range tiers {
		for idx, src := range cat.ByTier(tier) {
			if src.Status != catalog.StatusActive {
				continue
			}
			entries = append(entries, Entry{
				SourceCode: src.Code,
				Tier:       tier,
				Slot:       slotForTier(tier, idx),
			})
		}
	}
	return entries
}

// Next returns the first firing time strictly after the given instant.
func (e Entry) Next(after time.Time) time.Time {
	after = after.UTC()
	day := time.Date(after.Year(), after.Month(), after.Day(), 0, 0, 0, 0, time.UTC)
	for d := 0; d < 2; d++ {
		for _, h := range e.Slot.Hours {
			candidate := day.AddDate(0, 0, d).Add(
				time.Duration(h)*time.Hour + time.Duration(e.Slot.Minute)*time.Minute)
			if candidate.After(after) {
				return candidate
			}
		}
	}
	// Hours always include at least one slot per day, so the two-day
	// scan above cannot fall through.
	return day.AddDate(0, 0, 1)
}
