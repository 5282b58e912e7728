package app

import (
	"context"
	"dts2as/internal/core/config"
	"dts2as/internal/core/watcher"
	"dts2as/internal/engine/emitter"
	"dts2as/internal/engine/model"
	"dts2as/internal/engine/parser"
	"dts2as/internal/engine/resolver"
	"dts2as/internal/shared/observability"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/gobwas/glob"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Result summarises one generation run.
type Result struct {
	RunID string
	// Inputs are the declaration files resolved, in order.
	Inputs []string
	Units  []emitter.Unit
	// Written holds the output paths, empty for dry runs.
	Written  []string
	Duration time.Duration
}

type App struct {
	// Config is swapped by UpdateConfig; read it through CurrentConfig
	// outside a run.
	Config *config.Config
	Parser *parser.Parser
	// DryRun renders units without writing them.
	DryRun bool

	logger *slog.Logger

	// cfgMu guards Config and the compiled excludes.
	cfgMu        sync.RWMutex
	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob

	baselineMu   sync.Mutex
	baseline     *resolver.Program
	baselinePath string

	// running serialises runs and configuration swaps.
	running       sync.Mutex
	runMu         sync.Mutex
	onRun         func(*Result, error)
	activeWatcher *watcher.Watcher
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	loader, err := parser.NewGrammarLoader()
	if err != nil {
		return nil, err
	}

	dirs, files, err := compileExcludes(cfg)
	if err != nil {
		return nil, err
	}
	return &App{
		Config:       cfg,
		Parser:       parser.NewParser(loader),
		logger:       logger,
		excludeDirs:  dirs,
		excludeFiles: files,
	}, nil
}

// CurrentConfig returns the configuration in effect. Callers must not
// modify it.
func (a *App) CurrentConfig() *config.Config {
	a.cfgMu.RLock()
	defer a.cfgMu.RUnlock()
	return a.Config
}

// SetRunHandler registers a callback invoked after every watch-triggered run.
func (a *App) SetRunHandler(handler func(*Result, error)) {
	a.runMu.Lock()
	defer a.runMu.Unlock()
	a.onRun = handler
}

// UpdateConfig swaps in a reloaded configuration before the next run. An
// active watcher keeps the roots it was started with.
func (a *App) UpdateConfig(cfg *config.Config) error {
	if err := config.Validate(cfg); err != nil {
		return err
	}
	dirs, files, err := compileExcludes(cfg)
	if err != nil {
		return err
	}
	a.running.Lock()
	defer a.running.Unlock()

	a.cfgMu.Lock()
	prev := a.Config
	a.Config, a.excludeDirs, a.excludeFiles = cfg, dirs, files
	a.cfgMu.Unlock()

	if prev.Baseline != cfg.Baseline {
		a.invalidateBaseline()
	}
	a.logger.Info("configuration updated", "inputs", len(cfg.Inputs), "output", cfg.Output.Dir)
	return nil
}

// Run discovers the configured inputs, resolves them on top of the baseline,
// renders every non-external definition and writes the units.
func (a *App) Run(ctx context.Context) (*Result, error) {
	a.running.Lock()
	defer a.running.Unlock()

	runID := uuid.NewString()
	ctx, span := observability.Tracer.Start(ctx, "app.Run", trace.WithAttributes(
		attribute.String("run_id", runID),
		attribute.Bool("dry_run", a.DryRun),
	))
	defer span.End()

	start := time.Now()
	cfg := a.CurrentConfig()
	logger := a.logger.With("run_id", runID)
	logger.Info("generation started", "inputs", len(cfg.Inputs), "baseline", cfg.Baseline)

	files, err := a.Discover()
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	sources, err := readSources(files)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	units, world, err := a.generate(ctx, logger, sources)
	if err != nil {
		span.RecordError(err)
		logger.Error("generation failed", "error", err)
		return nil, err
	}
	recordDefinitions(world)

	result := &Result{RunID: runID, Inputs: files, Units: units}
	if !a.DryRun {
		written, err := a.Write(units)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		result.Written = written
	}
	result.Duration = time.Since(start)
	span.SetAttributes(attribute.Int("units", len(units)))
	logger.Info("generation finished",
		"files", len(files),
		"units", len(units),
		"written", len(result.Written),
		"duration", result.Duration,
	)
	return result, nil
}

// Generate runs the pipeline over explicit (path, text) pairs, seeded with
// the baseline when one is configured. Nothing is written.
func (a *App) Generate(ctx context.Context, sources []resolver.Source) ([]emitter.Unit, *model.World, error) {
	return a.generate(ctx, a.logger, sources)
}

func (a *App) generate(ctx context.Context, logger *slog.Logger, sources []resolver.Source) ([]emitter.Unit, *model.World, error) {
	prog, err := a.program(ctx)
	if err != nil {
		return nil, nil, err
	}
	r := resolver.New(a.Parser, logger)
	if err := r.ResolveAll(ctx, prog, sources); err != nil {
		return nil, nil, err
	}
	units, err := emitter.New(prog.World).EmitAll(ctx, a.CurrentConfig().Emit.Workers)
	if err != nil {
		return nil, nil, err
	}
	return units, prog.World, nil
}

// program returns a fresh Program, cloned from the resolved baseline when
// one is configured. The baseline is parsed once per path.
func (a *App) program(ctx context.Context) (*resolver.Program, error) {
	path := a.CurrentConfig().Baseline
	if path == "" {
		return resolver.NewProgram(), nil
	}

	a.baselineMu.Lock()
	defer a.baselineMu.Unlock()
	if a.baseline == nil || a.baselinePath != path {
		text, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		prog := resolver.NewProgram()
		src := resolver.Source{Path: path, Text: text, External: true}
		if err := resolver.New(a.Parser, a.logger).ResolveAll(ctx, prog, []resolver.Source{src}); err != nil {
			return nil, err
		}
		a.baseline = prog
		a.baselinePath = path
		a.logger.Info("baseline loaded", "path", path, "definitions", prog.World.Len())
	}
	return a.baseline.Clone(), nil
}

// invalidateBaseline forces the next run to parse the baseline again.
func (a *App) invalidateBaseline() {
	a.baselineMu.Lock()
	defer a.baselineMu.Unlock()
	a.baseline = nil
}

func recordDefinitions(world *model.World) {
	counts := map[model.Kind]int{}
	for _, def := range world.Definitions() {
		counts[def.Kind()]++
	}
	for _, kind := range []model.Kind{model.KindClass, model.KindInterface, model.KindFunction, model.KindVariable} {
		observability.DefinitionsTotal.WithLabelValues(kind.String()).Set(float64(counts[kind]))
	}
}
