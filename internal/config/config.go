// Package config provides TOML configuration file loading for cmdserver
// clients. The configuration file lives at ~/.hgcs/config.toml by
// default, but callers may point Load at another path. CLI flags or
// programmatic overrides always take precedence over file values since
// Load never reaches into the process environment or flag set itself.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config is the on-disk shape of a cmdserver client's defaults. Field
// names use Go camelCase internally but map to snake_case in TOML via
// struct tags.
type Config struct {
	// HgPath is the `hg` executable to launch. Default: "hg" (resolved
	// against PATH).
	HgPath string `toml:"hg_path"`

	// Encoding, if non-empty, is propagated to the child as HGENCODING.
	// Default: "" (let the server pick its own).
	Encoding string `toml:"encoding"`

	// PoolSize is the number of idle sessions per repository a session
	// pool keeps (see pool.Options.MaxIdlePerRepo). Default: 4.
	PoolSize int `toml:"pool_size"`

	// BackoffInitialMs is the first retry delay, in milliseconds, when a
	// pool acquisition's launch or handshake fails. Default: 100.
	BackoffInitialMs int `toml:"backoff_initial_ms"`

	// BackoffMaxMs caps the retry delay growth. Default: 5000.
	BackoffMaxMs int `toml:"backoff_max_ms"`

	// SpawnsPerSecond throttles how fast the pool may launch new `hg`
	// processes. Default: 5.
	SpawnsPerSecond float64 `toml:"spawns_per_second"`

	// Configs are extra `--config key=value` overrides applied to every
	// session this client opens, e.g. {"ui.username": "bot"}.
	Configs map[string]string `toml:"configs"`
}

// DefaultConfigPath returns ~/.hgcs/config.toml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".hgcs", "config.toml"), nil
}

// WithDefaults returns a copy of cfg with zero-valued fields filled in
// from the package defaults.
func (cfg Config) WithDefaults() Config {
	if cfg.HgPath == "" {
		cfg.HgPath = DefaultHgPath
	}
	if cfg.PoolSize == 0 {
		cfg.PoolSize = DefaultPoolSize
	}
	if cfg.BackoffInitialMs == 0 {
		cfg.BackoffInitialMs = DefaultBackoffInitialMs
	}
	if cfg.BackoffMaxMs == 0 {
		cfg.BackoffMaxMs = DefaultBackoffMaxMs
	}
	if cfg.SpawnsPerSecond == 0 {
		cfg.SpawnsPerSecond = DefaultSpawnsPerSecond
	}
	return cfg
}

// Load reads a TOML config file from the given path and returns a Config
// with defaults applied.
//
//   - If path is empty, Load tries the default location but returns an
//     empty (default-filled) Config without error if that file is absent,
//     so a client can start with zero configuration on disk.
//   - If path is explicit, a missing file is an error: the caller asked
//     for it by name.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			applied := cfg.WithDefaults()
			return &applied, nil
		}
		if _, err := os.Stat(defaultPath); os.IsNotExist(err) {
			applied := cfg.WithDefaults()
			return &applied, nil
		}
		path = defaultPath
	} else if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	applied := cfg.WithDefaults()
	return &applied, nil
}
