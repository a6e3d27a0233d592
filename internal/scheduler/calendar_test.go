package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cividex/portalwatch/internal/catalog"
)

func TestSlotForTierCadence(t *testing.T) {
	t.Parallel()

	for idx := 0; idx < 10; idx++ {
		s := slotForTier(1, idx)
		assert.Equal(t, []int{0, 6, 12, 18}, s.Hours)
		assert.Equal(t, 0, s.Minute)
	}

	for idx := 0; idx < 10; idx++ {
		s := slotForTier(2, idx)
		assert.Equal(t, []int{0, 12}, s.Hours)
		assert.Contains(t, []int{0, 15, 30, 45}, s.Minute)
		assert.Equal(t, (idx*15)%60, s.Minute)
	}

	for _, tier := range []int{3, 4, 5} {
		for idx := 0; idx < 50; idx++ {
			s := slotForTier(tier, idx)
			require.Len(t, s.Hours, 1)
			assert.Equal(t, idx%24, s.Hours[0])
			assert.Equal(t, (idx*3)%60, s.Minute)
		}
	}
}

func TestBuildCalendarSkipsInactiveButKeepsSlots(t *testing.T) {
	t.Parallel()

	cat, err := catalog.New([]catalog.Source{
		{Code: "t3_a", Name: "A", Region: catalog.RegionNSW, Tier: 3, PortalURL: "https://a.example", PortalType: catalog.PortalCustom, Status: catalog.StatusActive},
		{Code: "t3_b", Name: "B", Region: catalog.RegionNSW, Tier: 3, PortalURL: "https://b.example", PortalType: catalog.PortalCustom, Status: catalog.StatusBroken},
		{Code: "t3_c", Name: "C", Region: catalog.RegionNSW, Tier: 3, PortalURL: "https://c.example", PortalType: catalog.PortalCustom, Status: catalog.StatusActive},
	})
	require.NoError(t, err)

	entries := BuildCalendar(cat)
	require.Len(t, entries, 2)
	assert.Equal(t, "t3_a", entries[0].SourceCode)
	assert.Equal(t, Slot{Hours: []int{0}, Minute: 0}, entries[0].Slot)
	// t3_c stays at index 2 even though t3_b is not scheduled.
	assert.Equal(t, "t3_c", entries[1].SourceCode)
	assert.Equal(t, Slot{Hours: []int{2}, Minute: 6}, entries[1].Slot)
}

func TestBuildCalendarIsDeterministic(t *testing.T) {
	t.Parallel()

	cat := catalog.Default()
	first := BuildCalendar(cat)
	second := BuildCalendar(cat)
	assert.Equal(t, first, second)
	assert.NotEmpty(t, first)
}

func TestEntryNext(t *testing.T) {
	t.Parallel()

	tier1 := Entry{SourceCode: "x", Tier: 1, Slot: Slot{Hours: []int{0, 6, 12, 18}, Minute: 0}}

	cases := []struct {
		name  string
		after time.Time
		want  time.Time
	}{
		{
			name:  "mid slot gap",
			after: time.Date(2026, 3, 10, 4, 30, 0, 0, time.UTC),
			want:  time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC),
		},
		{
			name:  "exactly on slot advances to next",
			after: time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC),
			want:  time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC),
		},
		{
			name:  "after last slot rolls to next day",
			after: time.Date(2026, 3, 10, 19, 0, 0, 0, time.UTC),
			want:  time.Date(2026, 3, 11, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got := tier1.Next(tc.after)
			if !got.Equal(tc.want) {
				t.Fatalf("Next(%v) = %v, want %v", tc.after, got, tc.want)
			}
		})
	}

	daily := Entry{SourceCode: "y", Tier: 4, Slot: Slot{Hours: []int{9}, Minute: 45}}
	got := daily.Next(time.Date(2026, 3, 10, 9, 45, 0, 0, time.UTC))
	want := time.Date(2026, 3, 11, 9, 45, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("daily Next = %v, want %v", got, want)
	}
}
