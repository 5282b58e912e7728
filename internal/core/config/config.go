package config

import (
	"time"
)

// FileName is the configuration file looked up when no path is given.
const FileName = "dts2as.toml"

type Config struct {
	Version int `toml:"version"`
	// Baseline is the standard-library declaration file parsed first and
	// marked external. Optional.
	Baseline string   `toml:"baseline"`
	Inputs   []string `toml:"inputs"`
	Output   Output   `toml:"output"`
	Exclude  Exclude  `toml:"exclude"`
	Watch    Watch    `toml:"watch"`
	Emit     Emit     `toml:"emit"`
}

type Output struct {
	Dir       string `toml:"dir"`
	Extension string `toml:"extension"`
}

// Exclude holds glob patterns matched against directory and file names
// during input discovery.
type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
	// MaxRunsPerMinute throttles regeneration under a burst of changes.
	MaxRunsPerMinute int `toml:"max_runs_per_minute"`
}

type Emit struct {
	Workers int `toml:"workers"`
}

// DefaultConfig returns a configuration with every default applied and no
// inputs.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}
