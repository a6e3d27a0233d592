package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitSpacesRequestsToOneHost(t *testing.T) {
	t.Parallel()

	l := New(Config{MinGap: 30 * time.Millisecond})
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, l.Wait(ctx, "https://portal.example.gov.au/search"))
	}
	elapsed := time.Since(start)

	// First token is free; the next two each wait out the gap.
	assert.GreaterOrEqual(t, elapsed, 60*time.Millisecond)
}

func TestWaitSeparateHostsDoNotShareBuckets(t *testing.T) {
	t.Parallel()

	l := New(Config{MinGap: time.Second})
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, l.Wait(ctx, "https://a.example.gov.au/"))
	require.NoError(t, l.Wait(ctx, "https://b.example.gov.au/"))
	require.NoError(t, l.Wait(ctx, "https://c.example.gov.au/"))
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestWaitSharedAcrossPathsOfOneHost(t *testing.T) {
	t.Parallel()

	l := New(Config{MinGap: 40 * time.Millisecond})
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, l.Wait(ctx, "https://portal.example.gov.au/search"))
	require.NoError(t, l.Wait(ctx, "https://portal.example.gov.au/detail/123"))
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestWaitUnlimitedWithoutGap(t *testing.T) {
	t.Parallel()

	l := New(Config{})
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 100; i++ {
		require.NoError(t, l.Wait(ctx, "https://portal.example.gov.au/"))
	}
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestWaitHonorsContextCancel(t *testing.T) {
	t.Parallel()

	l := New(Config{MinGap: time.Hour})
	ctx := context.Background()
	require.NoError(t, l.Wait(ctx, "https://portal.example.gov.au/"))

	cancelled, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	err := l.Wait(cancelled, "https://portal.example.gov.au/")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit wait")
}

func TestWaitUnparseableURLStillLimits(t *testing.T) {
	t.Parallel()

	l := New(Config{MinGap: time.Millisecond})
	assert.NoError(t, l.Wait(context.Background(), "::not a url::"))
}
