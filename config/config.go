// Package config provides a Config map with typed getters, plus the
// library's built-in write defaults and a loader for an optional TOML
// defaults file. geff's public operations take geff.WriteOptions, which
// draws its defaults from Defaults; they do not take a Config.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is a map of keyword to arbitrary value with typed getters for
// passing optional settings without module-level singletons.
type Config map[string]interface{}

// GetString returns a string setting, or found=false if absent.
func (c Config) GetString(key string) (value string, found bool, err error) {
	v, ok := c[key]
	if !ok {
		return "", false, nil
	}
	value, ok = v.(string)
	if !ok {
		return "", true, fmt.Errorf("config key %q is not a string (%v)", key, v)
	}
	return value, true, nil
}

// GetInt returns an int setting, or found=false if absent.
func (c Config) GetInt(key string) (value int, found bool, err error) {
	v, ok := c[key]
	if !ok {
		return 0, false, nil
	}
	switch n := v.(type) {
	case int:
		return n, true, nil
	case int64:
		return int(n), true, nil
	case float64:
		return int(n), true, nil
	default:
		return 0, true, fmt.Errorf("config key %q is not an int (%v)", key, v)
	}
}

// GetBool returns a bool setting, or found=false if absent.
func (c Config) GetBool(key string) (value bool, found bool, err error) {
	v, ok := c[key]
	if !ok {
		return false, false, nil
	}
	value, ok = v.(bool)
	if !ok {
		return false, true, fmt.Errorf("config key %q is not a bool (%v)", key, v)
	}
	return value, true, nil
}

// Defaults holds the library-wide default settings a caller may override
// per call.  These are plain values threaded explicitly through the
// orchestrator, not globals consulted implicitly by codecs.
type Defaults struct {
	ChunkSize   int    `toml:"chunk_size"`
	Version     string `toml:"version"`
	Compression string `toml:"compression"`
}

// DefaultDefaults are the library's built-in defaults absent any config file.
func DefaultDefaults() Defaults {
	return Defaults{
		ChunkSize:   1000,
		Version:     "0.3.0",
		Compression: "blosc",
	}
}

// LoadDefaults reads TOML-formatted defaults from path, falling back
// silently to DefaultDefaults() if the file does not exist.
func LoadDefaults(path string) (Defaults, error) {
	d := DefaultDefaults()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return d, nil
	}
	if _, err := toml.DecodeFile(path, &d); err != nil {
		return Defaults{}, fmt.Errorf("loading geff defaults from %q: %w", path, err)
	}
	return d, nil
}
