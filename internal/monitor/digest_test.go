package monitor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cividex/portalwatch/internal/alert"
	"github.com/cividex/portalwatch/internal/portal"
)

func TestBuildDigest(t *testing.T) {
	t.Parallel()

	m, store := newMonitor(t)
	seedRun(t, store, "alpha", portal.RunStatusSuccess, time.Hour)
	for i := 1; i <= 3; i++ {
		seedRun(t, store, "bravo", portal.RunStatusFailed, time.Duration(i)*time.Hour, "portal moved")
	}

	d, err := m.BuildDigest(context.Background())
	require.NoError(t, err)
	assert.True(t, d.GeneratedAt.Equal(monitorNow))
	assert.Equal(t, 4, d.Overall.Total)
	require.Len(t, d.Chronic, 1)
	assert.Equal(t, "bravo", d.Chronic[0].SourceCode)
	assert.Len(t, d.Errors, 3)
}

func TestDigestRenderSections(t *testing.T) {
	t.Parallel()

	m, store := newMonitor(t)
	seedRun(t, store, "alpha", portal.RunStatusSuccess, time.Hour)
	for i := 1; i <= 3; i++ {
		seedRun(t, store, "bravo", portal.RunStatusFailed, time.Duration(i)*time.Hour, "portal moved")
	}

	d, err := m.BuildDigest(context.Background())
	require.NoError(t, err)
	body := d.Render()

	assert.Contains(t, body, "Runs: 4 total, 1 success, 3 failed")
	assert.Contains(t, body, "By tier:")
	assert.Contains(t, body, "Chronic failures:")
	assert.Contains(t, body, "bravo")
	assert.Contains(t, body, "Recent errors:")
	assert.Contains(t, body, "portal moved")
}

func TestDigestRenderOmitsEmptySections(t *testing.T) {
	t.Parallel()

	m, _ := newMonitor(t)
	d, err := m.BuildDigest(context.Background())
	require.NoError(t, err)
	body := d.Render()

	assert.NotContains(t, body, "Chronic failures:")
	assert.NotContains(t, body, "Recent errors:")
	assert.Contains(t, body, "By tier:")
}

func TestSendDigestReportsDelivery(t *testing.T) {
	t.Parallel()

	m, store := newMonitor(t)
	seedRun(t, store, "alpha", portal.RunStatusSuccess, time.Hour)

	rec := alert.NewRecorder()
	delivered, err := m.SendDigest(context.Background(), rec)
	require.NoError(t, err)
	assert.True(t, delivered)

	msgs := rec.ByKind("digest")
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Subject, "1 runs, 100% success")

	failing := alert.NewRecorder()
	failing.Fail = true
	delivered, err = m.SendDigest(context.Background(), failing)
	require.NoError(t, err)
	assert.False(t, delivered)
}
