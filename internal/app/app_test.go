// Package app_test contains unit tests for the app package.
package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cividex/portalwatch/internal/app"
	"github.com/cividex/portalwatch/internal/config"
	"github.com/cividex/portalwatch/internal/lease"
	smemory "github.com/cividex/portalwatch/internal/store/memory"
)

// testConfig returns the default configuration with every external
// backend switched to its in-process implementation and raw batches
// pointed at a throwaway directory.
func testConfig(t *testing.T) config.Config {
	t.Helper()
	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Store.Provider = "memory"
	cfg.Lease.Provider = "memory"
	cfg.RawStore.BaseDir = t.TempDir()
	return cfg
}

func TestNewApp_Success(t *testing.T) {
	cfg := testConfig(t)

	a, err := app.New(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, a)
	defer a.Close()

	assert.NotNil(t, a.Logger)
	assert.IsType(t, &smemory.RunStore{}, a.RunStore)
	assert.IsType(t, &lease.Memory{}, a.Lease)
	assert.NotNil(t, a.RawStore)
	assert.NotNil(t, a.Scheduler)
	assert.NotNil(t, a.Monitor)
	assert.NotNil(t, a.Batch)
	assert.Len(t, a.Workers, cfg.Worker.Count)
}

func TestNewApp_DiscoversAdapters(t *testing.T) {
	cfg := testConfig(t)

	a, err := app.New(context.Background(), cfg)
	require.NoError(t, err)
	defer a.Close()

	stats := a.Registry.Coverage()
	assert.Equal(t, a.Catalog.Len(), stats.TotalSources)
	assert.Greater(t, stats.CoveredSources, 0)
}

func TestAppClose_Idempotent(t *testing.T) {
	cfg := testConfig(t)

	a, err := app.New(context.Background(), cfg)
	require.NoError(t, err)

	a.Close()
	// A second Close must be a no-op.
	a.Close()
}
