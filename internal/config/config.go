// Package config resolves the small amount of ambient configuration
// cmd/ngarchive needs: which encoder to use by default, where the
// bbolt-backed snapshot store lives, and which library versions to stamp
// into a fresh archive header. Grounded on
// golang.org/x/pkgsite/internal/config/serverconfig's shape — a YAML
// load path plus GetEnv/GetEnvInt fallback helpers — which is the only
// repo in the retrieval pack that loads structured config from a file.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"netgen.dev/ngcore/libversion"
)

// Encoding names the wire codec a Config selects.
type Encoding string

const (
	Binary Encoding = "binary"
	Text   Encoding = "text"
)

// Config is the top-level shape of ngarchive.yaml.
type Config struct {
	// DefaultEncoding picks wire/binary or wire/text when a command line
	// flag doesn't override it.
	DefaultEncoding Encoding `yaml:"default_encoding"`
	// StashPath is the bbolt database file internal/stash opens.
	StashPath string `yaml:"stash_path"`
	// Versions seeds the process-wide libversion table at startup, so a
	// freshly built binary stamps a known version tuple into every
	// archive header it writes without every call site having to call
	// libversion.Set directly.
	Versions map[string]string `yaml:"versions"`
}

// Default returns the configuration ngarchive uses when no config file
// is present.
func Default() *Config {
	return &Config{
		DefaultEncoding: Binary,
		StashPath:       "ngarchive.stash",
		Versions: map[string]string{
			"ngcore": "1.0.0",
		},
	}
}

// Load reads and parses a YAML config file at path, filling in any field
// left zero with Default's value.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if cfg.DefaultEncoding == "" {
		cfg.DefaultEncoding = Binary
	}
	if cfg.StashPath == "" {
		cfg.StashPath = "ngarchive.stash"
	}
	return cfg, nil
}

// ApplyVersions calls libversion.Set for every entry in cfg.Versions,
// parsing each "major.minor.patch" string. Intended to be called once
// from main before any archive is opened.
func (cfg *Config) ApplyVersions() error {
	for name, s := range cfg.Versions {
		v, err := libversion.Parse(s)
		if err != nil {
			return fmt.Errorf("config: version %q for %q: %w", s, name, err)
		}
		libversion.Set(name, v)
	}
	return nil
}

// GetEnv looks up key in the environment, returning fallback if unset —
// the same shape as serverconfig.GetEnv.
func GetEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

// GetEnvInt is GetEnv's integer-parsing counterpart.
func GetEnvInt(key string, fallback int) (int, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("config: bad integer %q for %s: %w", v, key, err)
	}
	return n, nil
}
