package app

import (
	"context"
	"dts2as/internal/core/watcher"
	"path/filepath"
)

// StartWatcher re-runs generation whenever a watched declaration file
// changes. Runs are serialised by the watcher; a change to the baseline
// forces it to be parsed again.
func (a *App) StartWatcher(ctx context.Context) error {
	cfg := a.CurrentConfig()
	w, err := watcher.NewWatcher(
		cfg.Watch.Debounce,
		cfg.Exclude.Dirs,
		cfg.Exclude.Files,
		func(paths []string) { a.HandleChanges(ctx, paths) },
	)
	if err != nil {
		return err
	}
	w.SetSuffixFilters(a.Parser.SupportedSuffixes())
	w.SetRateLimit(cfg.Watch.MaxRunsPerMinute)

	roots := append([]string(nil), cfg.Inputs...)
	if cfg.Baseline != "" {
		roots = append(roots, cfg.Baseline)
	}
	if err := w.Watch(roots); err != nil {
		w.Close()
		return err
	}
	a.activeWatcher = w
	go func() {
		<-ctx.Done()
		w.Close()
	}()
	return nil
}

// HandleChanges runs one generation for a batch of changed paths.
func (a *App) HandleChanges(ctx context.Context, paths []string) {
	if ctx.Err() != nil {
		return
	}
	baseline := a.CurrentConfig().Baseline
	for _, path := range paths {
		if baseline != "" && filepath.Clean(path) == filepath.Clean(baseline) {
			a.invalidateBaseline()
			break
		}
	}
	a.logger.Info("changes detected", "files", len(paths))

	result, err := a.Run(ctx)

	a.runMu.Lock()
	handler := a.onRun
	a.runMu.Unlock()
	if handler != nil {
		handler(result, err)
	}
}

// StopWatcher closes the active watcher, if any.
func (a *App) StopWatcher() error {
	if a.activeWatcher == nil {
		return nil
	}
	err := a.activeWatcher.Close()
	a.activeWatcher = nil
	return err
}
