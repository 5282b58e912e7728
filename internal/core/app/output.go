package app

import (
	"dts2as/internal/core/errors"
	"dts2as/internal/engine/emitter"
	"dts2as/internal/shared/util"
	"path/filepath"
)

// OutputPath maps a unit to <dir>/<package as directories>/<short><ext>.
func OutputPath(dir, ext string, unit emitter.Unit) string {
	return filepath.Join(dir, util.PackageDir(unit.PackageName), unit.ShortName+ext)
}

// Write stores every unit under the configured output directory and
// returns the written paths in unit order.
func (a *App) Write(units []emitter.Unit) ([]string, error) {
	cfg := a.CurrentConfig()
	written := make([]string, 0, len(units))
	for _, unit := range units {
		path := OutputPath(cfg.Output.Dir, cfg.Output.Extension, unit)
		if err := util.WriteStringWithDirs(path, unit.Text, 0o644); err != nil {
			return written, errors.AddContext(
				errors.Wrap(err, errors.CodeInternal, "write unit"),
				errors.CtxPath, path,
			)
		}
		a.logger.Debug("unit written", "path", path)
		written = append(written, path)
	}
	return written, nil
}
