package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolvePaths makes the baseline, inputs and output directory absolute,
// relative to base (normally the directory holding the config file).
func ResolvePaths(cfg *Config, base string) error {
	if strings.TrimSpace(base) == "" {
		return fmt.Errorf("base directory must not be empty")
	}
	if cfg.Baseline != "" {
		cfg.Baseline = ResolveRelative(base, cfg.Baseline)
	}
	for i, in := range cfg.Inputs {
		cfg.Inputs[i] = ResolveRelative(base, in)
	}
	cfg.Output.Dir = ResolveRelative(base, cfg.Output.Dir)
	return nil
}

func ResolveRelative(base, value string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

// Find returns the config file in dir or any of its parents.
func Find(dir string) (string, bool) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for {
		candidate := filepath.Join(abs, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(abs)
		if parent == abs {
			return "", false
		}
		abs = parent
	}
}
