package surfpool

import (
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io/ioutil"
	"path/filepath"
	"testing"
)

func writeProfile(t *testing.T, data string) string {
	path := filepath.Join(t.TempDir(), "profile.yml")
	require.NoError(t, ioutil.WriteFile(path, []byte(data), 0600))
	return path
}

func TestLoadProfile(t *testing.T) {
	path := writeProfile(t, `
profile_version: 1
id: decode0
surfaces: 4
surface_base: 64
instrument: trace
instrument_config:
  frames: true
loop:
  units: 20
`)
	p, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, "decode0", p.Id)
	assert.Equal(t, 4, p.Surfaces)
	assert.Equal(t, uint32(64), p.SurfaceBase)
	assert.Equal(t, "trace", p.Instrument)
	assert.Equal(t, true, p.InstrumentConfig["frames"])
	assert.Equal(t, 20, p.Loop["units"])
	assert.Equal(t, []SurfaceId{64, 65, 66, 67}, p.Handles())

	pool, err := p.NewPool()
	require.NoError(t, err)
	assert.Equal(t, "decode0", pool.Id())
	require.NoError(t, pool.Initialize(p.Handles(), nil))
	assert.Equal(t, 4, pool.Stats().Capacity)
	assert.Contains(t, p.Dump(), "surface_base")
}

func TestLoadProfileVersion(t *testing.T) {
	_, err := LoadProfile(writeProfile(t, "surfaces: 4\n"))
	assert.Error(t, err)

	_, err = LoadProfile(writeProfile(t, "profile_version: 2\n"))
	assert.Error(t, err)

	_, err = LoadProfile(writeProfile(t, "profile_version: one\n"))
	assert.Error(t, err)
}

func TestLoadProfileInvalid(t *testing.T) {
	_, err := LoadProfile(writeProfile(t, "profile_version: 1\nsurfaces: -1\n"))
	assert.Error(t, err)

	_, err = LoadProfile(writeProfile(t, "profile_version: 1\nsurfaces: 2\nsurface_base: 4294967294\n"))
	assert.Error(t, err)

	_, err = LoadProfile(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestBaselineProfile(t *testing.T) {
	p := NewBaselineProfile()
	assert.Len(t, p.Handles(), 8)
	assert.Equal(t, SurfaceId(0x1000), p.Handles()[0])

	pool, err := p.NewPool()
	require.NoError(t, err)
	assert.NotEqual(t, "", pool.Id())

	p.Instrument = "bogus"
	_, err = p.NewPool()
	assert.Error(t, err)
}
