package config

import (
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	normalize(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if strings.TrimSpace(cfg.Output.Dir) == "" {
		cfg.Output.Dir = "generated/src"
	}
	if strings.TrimSpace(cfg.Output.Extension) == "" {
		cfg.Output.Extension = ".as"
	}
	if len(cfg.Exclude.Dirs) == 0 {
		cfg.Exclude.Dirs = []string{".git", "node_modules"}
	}
	// Default debounce if not set.
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.MaxRunsPerMinute <= 0 {
		cfg.Watch.MaxRunsPerMinute = 30
	}
	if cfg.Emit.Workers <= 0 {
		cfg.Emit.Workers = runtime.NumCPU()
	}
}

func normalize(cfg *Config) {
	cfg.Baseline = strings.TrimSpace(cfg.Baseline)
	inputs := cfg.Inputs[:0]
	for _, in := range cfg.Inputs {
		if in = strings.TrimSpace(in); in != "" {
			inputs = append(inputs, in)
		}
	}
	cfg.Inputs = inputs
	cfg.Output.Dir = strings.TrimSpace(cfg.Output.Dir)
	cfg.Output.Extension = strings.TrimSpace(cfg.Output.Extension)
	if !strings.HasPrefix(cfg.Output.Extension, ".") {
		cfg.Output.Extension = "." + cfg.Output.Extension
	}
}
