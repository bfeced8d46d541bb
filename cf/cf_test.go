package cf

import (
	"github.com/stretchr/testify/assert"
	"strings"
	"testing"
)

type testConfig struct {
	Name      string                 `cf:"name"`
	Count     int                    `cf:"count"`
	Base      uint32                 `cf:"base"`
	Scale     float64                `cf:"scale"`
	Enabled   bool                   `cf:"enabled"`
	Surfaces  []int                  `cf:"surfaces"`
	Extra     map[string]interface{} `cf:"extra"`
	Untouched int
}

func TestLoad(t *testing.T) {
	c := &testConfig{Count: 3, Untouched: 7}
	data := map[string]interface{}{
		"name":     "pool",
		"count":    8,
		"base":     4096,
		"scale":    2,
		"enabled":  true,
		"surfaces": []interface{}{1, 2, 3},
		"extra":    map[string]interface{}{"path": "/tmp"},
	}
	err := Load(data, c)
	assert.NoError(t, err)
	assert.Equal(t, "pool", c.Name)
	assert.Equal(t, 8, c.Count)
	assert.Equal(t, uint32(4096), c.Base)
	assert.Equal(t, 2.0, c.Scale)
	assert.True(t, c.Enabled)
	assert.Equal(t, []int{1, 2, 3}, c.Surfaces)
	assert.Equal(t, "/tmp", c.Extra["path"])
	assert.Equal(t, 7, c.Untouched)
}

func TestLoadTypeMismatch(t *testing.T) {
	c := &testConfig{}
	err := Load(map[string]interface{}{"count": "eight"}, c)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "count")

	err = Load(map[string]interface{}{"base": -1}, c)
	assert.Error(t, err)

	err = Load(map[string]interface{}{"surfaces": []interface{}{1, "two"}}, c)
	assert.Error(t, err)
}

func TestLoadNotPointer(t *testing.T) {
	err := Load(map[string]interface{}{}, testConfig{})
	assert.Error(t, err)
}

func TestDump(t *testing.T) {
	c := &testConfig{Name: "pool", Count: 4, Extra: map[string]interface{}{"b": 2, "a": 1}}
	out := Dump("testConfig", c)
	assert.True(t, strings.HasPrefix(out, "testConfig {\n"))
	assert.Contains(t, out, "name")
	assert.Contains(t, out, "{a: 1, b: 2}")
	assert.True(t, strings.HasSuffix(out, "}\n"))
}

func TestLoadInterfaceKeyedMap(t *testing.T) {
	c := &testConfig{}
	data := map[string]interface{}{
		"extra": map[interface{}]interface{}{
			"path":   "/tmp",
			1:        "one",
			"nested": map[interface{}]interface{}{"a": []interface{}{map[interface{}]interface{}{"b": 2}}},
		},
	}
	err := Load(data, c)
	assert.NoError(t, err)
	assert.Equal(t, "/tmp", c.Extra["path"])
	assert.Equal(t, "one", c.Extra["1"])
	nested, ok := c.Extra["nested"].(map[string]interface{})
	assert.True(t, ok)
	list := nested["a"].([]interface{})
	assert.Equal(t, map[string]interface{}{"b": 2}, list[0])
}

func TestMapIToMapS(t *testing.T) {
	out := MapIToMapS(map[interface{}]interface{}{"x": 1, true: "t"})
	assert.Equal(t, map[string]interface{}{"x": 1, "true": "t"}, out)
}
