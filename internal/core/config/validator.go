package config

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

// Validate checks a loaded or flag-assembled configuration.
func Validate(cfg *Config) error {
	if err := validateVersion(cfg); err != nil {
		return err
	}
	if err := validateInputs(cfg); err != nil {
		return err
	}
	if err := validateOutput(cfg); err != nil {
		return err
	}
	if err := validateExclude(cfg); err != nil {
		return err
	}
	return validateWatch(cfg)
}

func validateVersion(cfg *Config) error {
	if cfg.Version < 1 {
		return fmt.Errorf("version must be >= 1, got %d", cfg.Version)
	}
	if cfg.Version > 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateInputs(cfg *Config) error {
	for i, in := range cfg.Inputs {
		if in == cfg.Baseline && in != "" {
			return fmt.Errorf("inputs[%d] %q is also the baseline", i, in)
		}
	}
	return nil
}

func validateOutput(cfg *Config) error {
	if strings.TrimSpace(cfg.Output.Dir) == "" {
		return fmt.Errorf("output.dir must not be empty")
	}
	ext := strings.TrimSpace(cfg.Output.Extension)
	if ext == "" || ext == "." || strings.ContainsAny(ext, `/\`) {
		return fmt.Errorf("output.extension %q is not a file extension", cfg.Output.Extension)
	}
	if cfg.Emit.Workers < 0 {
		return fmt.Errorf("emit.workers must be >= 0, got %d", cfg.Emit.Workers)
	}
	return nil
}

func validateExclude(cfg *Config) error {
	for i, pattern := range cfg.Exclude.Dirs {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("exclude.dirs[%d] invalid glob %q: %w", i, pattern, err)
		}
	}
	for i, pattern := range cfg.Exclude.Files {
		if _, err := glob.Compile(pattern); err != nil {
			return fmt.Errorf("exclude.files[%d] invalid glob %q: %w", i, pattern, err)
		}
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	return nil
}
