package lease

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cividex/portalwatch/internal/portal"
)

func TestMemoryAcquireExcludesSameSourceAndMode(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	ctx := context.Background()

	ok, err := m.Acquire(ctx, "alpha", portal.ModeActive, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.Acquire(ctx, "alpha", portal.ModeActive, time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	// A different mode or source is an independent lease.
	ok, err = m.Acquire(ctx, "alpha", portal.ModeHistorical, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.Acquire(ctx, "bravo", portal.ModeActive, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryReleaseFrees(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	ctx := context.Background()

	ok, err := m.Acquire(ctx, "alpha", portal.ModeActive, time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, m.Release(ctx, "alpha", portal.ModeActive))

	ok, err = m.Acquire(ctx, "alpha", portal.ModeActive, time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryExpiryFreesWithoutRelease(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	ctx := context.Background()
	now := time.Date(2026, 3, 10, 4, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	ok, err := m.Acquire(ctx, "alpha", portal.ModeActive, 15*time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	now = now.Add(14 * time.Minute)
	ok, err = m.Acquire(ctx, "alpha", portal.ModeActive, 15*time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	now = now.Add(2 * time.Minute)
	ok, err = m.Acquire(ctx, "alpha", portal.ModeActive, 15*time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
