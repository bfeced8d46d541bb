package surfpool

import (
	"bytes"
	"github.com/openziti/surfpool/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
)

func TestNewInstrument(t *testing.T) {
	i, err := NewInstrument("", nil)
	assert.NoError(t, err)
	assert.IsType(t, &nilInstrument{}, i)

	i, err = NewInstrument("trace", map[string]interface{}{"frames": true})
	assert.NoError(t, err)
	assert.True(t, i.(*traceInstrument).config.Frames)

	_, err = NewInstrument("trace", map[string]interface{}{"frames": "yes"})
	assert.Error(t, err)

	_, err = NewInstrument("bogus", nil)
	assert.Error(t, err)
}

func TestTraceInstrument(t *testing.T) {
	i, err := NewTraceInstrument(map[string]interface{}{"frames": true})
	require.NoError(t, err)
	out := new(bytes.Buffer)
	i.(*traceInstrument).out = out

	p := NewSurfacePool("traced", i)
	require.NoError(t, p.Initialize(testHandles(3), nil))
	f, err := p.Get()
	require.NoError(t, err)
	skipped, err := NewSkippedFrame(f)
	require.NoError(t, err)
	f.Unref()
	skipped.Unref()
	require.NoError(t, p.Deinitialize())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 6)
	assert.Contains(t, lines[0], "INIT")
	assert.Contains(t, lines[0], "capacity 3")
	assert.Contains(t, lines[1], "HWM")
	assert.Contains(t, lines[2], "GET")
	assert.Contains(t, lines[2], "#100")
	assert.Contains(t, lines[3], "SKIP_RELEASE")
	assert.Contains(t, lines[4], "PUT")
	assert.Contains(t, lines[5], "DEINIT")
}

func TestTraceInstrumentQuiet(t *testing.T) {
	i, err := NewTraceInstrument(map[string]interface{}{"lifecycle": false, "errors": false})
	require.NoError(t, err)
	out := new(bytes.Buffer)
	i.(*traceInstrument).out = out

	p := NewSurfacePool("quiet", i)
	require.NoError(t, p.Initialize(testHandles(3), nil))
	_ = p.Put(NewFrame())
	f, err := p.Get()
	require.NoError(t, err)
	f.Unref()
	assert.Equal(t, "", out.String())
}

func TestMetricsInstrument(t *testing.T) {
	root := t.TempDir()
	i, err := NewMetricsInstrument(map[string]interface{}{
		"path":        root,
		"snapshot_ms": 60000,
		"enabled":     true,
		"ctrl":        false,
	})
	require.NoError(t, err)
	mi := i.(*MetricsInstrument)

	p := NewSurfacePool("metered", mi)
	require.NoError(t, p.Initialize(testHandles(3), nil))
	a, err := p.Get()
	require.NoError(t, err)
	b, err := p.Get()
	require.NoError(t, err)
	_, err = p.Get()
	require.Error(t, err)
	skipped, err := NewSkippedFrame(a)
	require.NoError(t, err)
	a.Unref()
	skipped.Unref()
	b.Unref()
	_ = p.Put(NewFrame())

	ii := mi.instances[0]
	assert.Equal(t, int64(2), atomic.LoadInt64(&ii.acquiredAccum))
	assert.Equal(t, int64(2), atomic.LoadInt64(&ii.returnedAccum))
	assert.Equal(t, int64(1), atomic.LoadInt64(&ii.exhaustedAccum))
	assert.Equal(t, int64(1), atomic.LoadInt64(&ii.skipCascadesAccum))
	assert.Equal(t, int64(1), atomic.LoadInt64(&ii.integrityErrorsAccum))
	assert.Equal(t, int64(3), atomic.LoadInt64(&ii.freeVal))
	assert.Equal(t, int64(0), atomic.LoadInt64(&ii.inUseVal))
	assert.Equal(t, int64(2), atomic.LoadInt64(&ii.highWaterMarkVal))

	ii.snapshot()
	require.NoError(t, mi.WriteAllSamples())

	dirs, err := util.DiscoverMetrics(root, MetricsId)
	require.NoError(t, err)
	require.Len(t, dirs, 1)
	assert.Equal(t, "metered", dirs[0].Id.Values["pool"])
	data, err := util.ReadSamples(filepath.Join(dirs[0].Path, "acquired.csv"))
	require.NoError(t, err)
	require.Len(t, data, 1)
	for _, v := range data {
		assert.Equal(t, int64(2), v)
	}

	require.NoError(t, p.Close())
	assert.True(t, ii.isClosed())
	mi.clean()
	assert.Len(t, mi.instances, 0)
}

func TestMetricsInstrumentDisabled(t *testing.T) {
	i, err := NewMetricsInstrument(map[string]interface{}{"path": t.TempDir(), "ctrl": false})
	require.NoError(t, err)
	mi := i.(*MetricsInstrument)
	assert.False(t, mi.Enabled())

	p := NewSurfacePool("", mi)
	require.NoError(t, p.Initialize(testHandles(3), nil))
	f, err := p.Get()
	require.NoError(t, err)
	f.Unref()

	ii := mi.instances[0]
	assert.Equal(t, int64(0), atomic.LoadInt64(&ii.acquiredAccum))
	assert.Equal(t, int64(3), atomic.LoadInt64(&ii.freeVal))
	require.NoError(t, p.Close())
}

func TestMetricsInstrumentInvalidConfig(t *testing.T) {
	_, err := NewMetricsInstrument(map[string]interface{}{"snapshot_ms": 0, "ctrl": false})
	assert.Error(t, err)
}
