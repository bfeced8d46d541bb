package loop

import (
	"context"
	"github.com/openziti/surfpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"testing"
)

func newTestPool(t *testing.T, n int) *surfpool.SurfacePool {
	pool := surfpool.NewSurfacePool("loop-test", nil)
	handles := make([]surfpool.SurfaceId, n)
	for i := range handles {
		handles[i] = surfpool.SurfaceId(100 + i)
	}
	require.NoError(t, pool.Initialize(handles, nil))
	return pool
}

func testConfig(units, skipEvery int) *Config {
	cfg := NewDefaultConfig()
	cfg.Units = units
	cfg.SkipEvery = skipEvery
	cfg.DecodeMs = 0
	cfg.RenderMs = 0
	cfg.ReportMs = 0
	return cfg
}

func TestRunReturnsEveryFrame(t *testing.T) {
	pool := newTestPool(t, 4)

	stats, err := Run(context.Background(), pool, testConfig(50, 5))
	require.NoError(t, err)

	assert.Equal(t, int64(50), stats.Displayed)
	assert.Equal(t, int64(10), stats.Skipped)
	assert.Equal(t, int64(40), stats.Decoded+stats.Dropped)
	assert.True(t, stats.HighWaterMark >= 1)
	assert.True(t, stats.HighWaterMark <= 3)

	ps := pool.Stats()
	assert.Equal(t, 4, ps.Free)
	assert.Equal(t, 0, ps.InUse)
	assert.NoError(t, pool.Deinitialize())
}

func TestRunSmallPoolFallsBackToSkippedFrames(t *testing.T) {
	pool := newTestPool(t, 2)
	cfg := testConfig(20, 0)
	cfg.MaxRetries = 0
	cfg.BackoffMs = 0

	stats, err := Run(context.Background(), pool, cfg)
	require.NoError(t, err)
	assert.Equal(t, int64(20), stats.Displayed)
	assert.Equal(t, int64(20), stats.Decoded+stats.Dropped)
	assert.Equal(t, 1, stats.HighWaterMark)

	assert.Equal(t, 2, pool.Stats().Free)
	assert.NoError(t, pool.Deinitialize())
}

func TestRunCancelled(t *testing.T) {
	pool := newTestPool(t, 4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, pool, testConfig(1000, 0))
	if err != nil {
		assert.Equal(t, context.Canceled, err)
	}
	assert.Equal(t, 4, pool.Stats().Free)
	assert.NoError(t, pool.Deinitialize())
}

func TestDecoderRestartsDisplayOrder(t *testing.T) {
	pool := newTestPool(t, 4)
	d := NewDecoder(pool, testConfig(3, 0), make(chan *surfpool.Frame, 3), &Stats{})

	f0, err := d.decode(context.Background(), 0)
	require.NoError(t, err)
	f1, err := d.decode(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, f0.Discontinuity())
	assert.Equal(t, uint32(0), f0.DisplayOrder())
	assert.Equal(t, uint32(1), f1.DisplayOrder())
	f0.Unref()
	f1.Unref()

	f2, err := d.decode(context.Background(), 0)
	require.NoError(t, err)
	assert.True(t, f2.Discontinuity())
	assert.Equal(t, uint32(0), f2.DisplayOrder())
	f2.Unref()
	d.releaseLast()

	assert.Equal(t, 4, pool.Stats().Free)
	assert.NoError(t, pool.Deinitialize())
}

func TestRunUninitializedPool(t *testing.T) {
	pool := surfpool.NewSurfacePool("", nil)
	_, err := Run(context.Background(), pool, testConfig(10, 0))
	assert.Error(t, err)
}

func TestConfigLoad(t *testing.T) {
	cfg := NewDefaultConfig()
	err := cfg.Load(map[string]interface{}{"units": 12, "skip_every": 3})
	assert.NoError(t, err)
	assert.Equal(t, 12, cfg.Units)
	assert.Equal(t, 3, cfg.SkipEvery)

	err = cfg.Load(map[string]interface{}{"units": 0})
	assert.Error(t, err)
}

func TestFrameTypeFor(t *testing.T) {
	assert.Equal(t, surfpool.FrameTypeI, frameTypeFor(0, 12))
	assert.Equal(t, surfpool.FrameTypeB, frameTypeFor(1, 12))
	assert.Equal(t, surfpool.FrameTypeP, frameTypeFor(3, 12))
	assert.Equal(t, surfpool.FrameTypeI, frameTypeFor(12, 12))
}
