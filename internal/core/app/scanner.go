package app

import (
	"dts2as/internal/core/config"
	"dts2as/internal/engine/resolver"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/gobwas/glob"
)

func compileExcludes(cfg *config.Config) (dirs, files []glob.Glob, err error) {
	dirs, err = compileGlobs(cfg.Exclude.Dirs, "exclude dir")
	if err != nil {
		return nil, nil, err
	}
	files, err = compileGlobs(cfg.Exclude.Files, "exclude file")
	if err != nil {
		return nil, nil, err
	}
	return dirs, files, nil
}

func compileGlobs(patterns []string, label string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s pattern %q: %w", label, p, err)
		}
		out = append(out, g)
	}
	return out, nil
}

// Discover expands the configured inputs into an ordered list of
// declaration files. Files named directly are kept in configuration order
// whatever their suffix; directories are walked in lexical order and only
// contribute supported, non-excluded files. The baseline is never an input.
func (a *App) Discover() ([]string, error) {
	a.cfgMu.RLock()
	cfg, excludeDirs, excludeFiles := a.Config, a.excludeDirs, a.excludeFiles
	a.cfgMu.RUnlock()

	var files []string
	seen := make(map[string]bool)
	add := func(path string) {
		clean := filepath.Clean(path)
		if seen[clean] || (cfg.Baseline != "" && clean == filepath.Clean(cfg.Baseline)) {
			return
		}
		seen[clean] = true
		files = append(files, clean)
	}

	for _, root := range cfg.Inputs {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(root)
			continue
		}

		var found []string
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			base := filepath.Base(path)
			if d.IsDir() {
				if path != root && matchAny(excludeDirs, base) {
					return filepath.SkipDir
				}
				return nil
			}
			if !a.Parser.Supports(path) || matchAny(excludeFiles, base) {
				return nil
			}
			found = append(found, path)
			return nil
		})
		if err != nil {
			return nil, err
		}
		sort.Strings(found)
		for _, path := range found {
			add(path)
		}
	}
	return files, nil
}

func matchAny(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

func readSources(paths []string) ([]resolver.Source, error) {
	sources := make([]resolver.Source, 0, len(paths))
	for _, path := range paths {
		text, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		sources = append(sources, resolver.Source{Path: path, Text: text})
	}
	return sources, nil
}
