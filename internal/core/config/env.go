package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: DTS2AS_[SECTION]_[KEY] (e.g., DTS2AS_OUTPUT_DIR).
func ApplyEnvOverrides(cfg *Config) {
	setEnvString(&cfg.Baseline, "DTS2AS_BASELINE")
	setEnvList(&cfg.Inputs, "DTS2AS_INPUTS")

	// Output
	setEnvString(&cfg.Output.Dir, "DTS2AS_OUTPUT_DIR")
	setEnvString(&cfg.Output.Extension, "DTS2AS_OUTPUT_EXTENSION")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, "DTS2AS_WATCH_DEBOUNCE")
	setEnvInt(&cfg.Watch.MaxRunsPerMinute, "DTS2AS_WATCH_MAX_RUNS_PER_MINUTE")

	setEnvInt(&cfg.Emit.Workers, "DTS2AS_EMIT_WORKERS")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Info("applying env override", "key", key, "value", val)
		*target = val
	}
}

// setEnvList reads a comma-separated list.
func setEnvList(target *[]string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		var out []string
		for _, item := range strings.Split(val, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
		slog.Info("applying env override", "key", key, "value", val)
		*target = out
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Info("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Info("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
