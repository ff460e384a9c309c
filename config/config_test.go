package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStringFoundAndAbsent(t *testing.T) {
	c := Config{"name": "blosc"}
	v, found, err := c.GetString("name")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "blosc", v)

	_, found, err = c.GetString("missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestGetStringWrongType(t *testing.T) {
	c := Config{"name": 42}
	_, found, err := c.GetString("name")
	assert.True(t, found)
	assert.Error(t, err)
}

func TestGetIntAcceptsNumericKinds(t *testing.T) {
	c := Config{"a": 1, "b": int64(2), "c": float64(3)}
	for key, want := range map[string]int{"a": 1, "b": 2, "c": 3} {
		v, found, err := c.GetInt(key)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, want, v)
	}
}

func TestGetBoolFoundAndAbsent(t *testing.T) {
	c := Config{"directed": true}
	v, found, err := c.GetBool("directed")
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, v)

	_, found, err = c.GetBool("missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestLoadDefaultsFallsBackWhenFileAbsent(t *testing.T) {
	d, err := LoadDefaults(filepath.Join(t.TempDir(), "does-not-exist.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultDefaults(), d)
}

func TestLoadDefaultsReadsTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "geff.toml")
	require.NoError(t, os.WriteFile(path, []byte("chunk_size = 500\nversion = \"0.4.0\"\ncompression = \"snappy\"\n"), 0o644))

	d, err := LoadDefaults(path)
	require.NoError(t, err)
	assert.Equal(t, 500, d.ChunkSize)
	assert.Equal(t, "0.4.0", d.Version)
	assert.Equal(t, "snappy", d.Compression)
}
