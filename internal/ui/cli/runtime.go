package cli

import (
	"context"
	coreapp "dts2as/internal/core/app"
	"dts2as/internal/core/config"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

// Run executes the command line and returns the process exit code.
func Run(args []string) int {
	return run(args, os.Stdout, os.Stderr)
}

func run(args []string, stdout, stderr io.Writer) int {
	var opts cliOptions
	root := newRootCommand(&opts, stdout, stderr, runGenerate, runDoctor)
	root.SetArgs(args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, errDegraded) {
			return 1
		}
		fmt.Fprintln(stderr, "error:", err)
		return 1
	}
	return 0
}

var errDegraded = errors.New("health check degraded")

func runGenerate(cmd *cobra.Command, opts *cliOptions) error {
	logger := configureLogging(cmd.ErrOrStderr(), opts.verbose)

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("detect working directory: %w", err)
	}
	cfg, cfgPath, err := loadConfig(opts, cwd)
	if err != nil {
		return err
	}
	if len(cfg.Inputs) == 0 {
		return fmt.Errorf("no inputs: pass files or directories, or list them in %s", config.FileName)
	}

	a, err := coreapp.New(cfg, logger)
	if err != nil {
		return err
	}
	a.DryRun = opts.dryRun

	ctx := cmd.Context()
	result, err := a.Run(ctx)
	if err != nil {
		return err
	}
	printResult(cmd.OutOrStdout(), cfg, result, opts.dryRun)

	if !opts.watch {
		return nil
	}
	return watch(ctx, cmd.OutOrStdout(), a, cfgPath, opts, logger)
}

func watch(ctx context.Context, out io.Writer, a *coreapp.App, cfgPath string, opts *cliOptions, logger *slog.Logger) error {
	a.SetRunHandler(func(result *coreapp.Result, err error) {
		if err != nil {
			logger.Error("regeneration failed", "error", err)
			return
		}
		printResult(out, a.CurrentConfig(), result, opts.dryRun)
	})
	if err := a.StartWatcher(ctx); err != nil {
		return err
	}
	defer a.StopWatcher()

	if cfgPath != "" {
		cw := config.NewWatcher(cfgPath, logger, func(cfg *config.Config) {
			if err := applyFlags(cfg, opts, mustGetwd()); err != nil {
				logger.Error("reloaded configuration rejected", "error", err)
				return
			}
			if err := a.UpdateConfig(cfg); err != nil {
				logger.Error("reloaded configuration rejected", "error", err)
			}
		})
		if err := cw.Start(ctx); err != nil {
			return err
		}
		defer cw.Stop()
	}

	if opts.metricsAddr != "" {
		server := NewObservabilityServer(opts.metricsAddr, coreapp.NewHealthService(a))
		if err := server.Start(ctx); err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Stop(shutdownCtx)
		}()
	}

	logger.Info("watching for changes", "inputs", a.CurrentConfig().Inputs)
	<-ctx.Done()
	return nil
}

func runDoctor(cmd *cobra.Command, opts *cliOptions) error {
	logger := configureLogging(cmd.ErrOrStderr(), opts.verbose)

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("detect working directory: %w", err)
	}
	cfg, cfgPath, err := loadConfig(opts, cwd)
	if err != nil {
		return err
	}
	a, err := coreapp.New(cfg, logger)
	if err != nil {
		return err
	}

	status := coreapp.NewHealthService(a).Check(cmd.Context())
	out := cmd.OutOrStdout()
	if cfgPath == "" {
		cfgPath = "(none)"
	}
	fmt.Fprintf(out, "config: %s\n", cfgPath)
	names := make([]string, 0, len(status.Components))
	for name := range status.Components {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(out, "%s: %s\n", name, status.Components[name])
	}
	fmt.Fprintf(out, "status: %s\n", status.Status)
	if status.Status != "up" {
		return errDegraded
	}
	return nil
}

// loadConfig reads the explicit --config file, else the nearest
// dts2as.toml, else the defaults. File paths are relative to the config
// file; flag paths are relative to cwd and win over both.
func loadConfig(opts *cliOptions, cwd string) (*config.Config, string, error) {
	path := opts.configPath
	if path == "" {
		if found, ok := config.Find(cwd); ok {
			path = found
		}
	}

	var cfg *config.Config
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, "", fmt.Errorf("load config %s: %w", path, err)
		}
		path = config.ResolveRelative(cwd, path)
		if err := config.ResolvePaths(loaded, filepath.Dir(path)); err != nil {
			return nil, "", err
		}
		cfg = loaded
	} else {
		cfg = config.DefaultConfig()
		if err := config.ResolvePaths(cfg, cwd); err != nil {
			return nil, "", err
		}
	}

	if err := applyFlags(cfg, opts, cwd); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func applyFlags(cfg *config.Config, opts *cliOptions, cwd string) error {
	config.ApplyEnvOverrides(cfg)
	if len(opts.args) > 0 {
		cfg.Inputs = make([]string, len(opts.args))
		for i, arg := range opts.args {
			cfg.Inputs[i] = config.ResolveRelative(cwd, arg)
		}
	}
	if opts.baseline != "" {
		cfg.Baseline = config.ResolveRelative(cwd, opts.baseline)
	}
	if opts.outDir != "" {
		cfg.Output.Dir = config.ResolveRelative(cwd, opts.outDir)
	}
	cfg.Exclude.Files = append(cfg.Exclude.Files, opts.excludes...)
	if opts.workers > 0 {
		cfg.Emit.Workers = opts.workers
	}
	return config.Validate(cfg)
}

func printResult(out io.Writer, cfg *config.Config, result *coreapp.Result, dryRun bool) {
	if dryRun {
		for _, unit := range result.Units {
			fmt.Fprintln(out, coreapp.OutputPath(cfg.Output.Dir, cfg.Output.Extension, unit))
		}
		return
	}
	fmt.Fprintf(out, "generated %d units from %d files into %s (%s)\n",
		len(result.Written), len(result.Inputs), cfg.Output.Dir, result.Duration.Round(time.Millisecond))
}

func configureLogging(w io.Writer, verbose bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
	return logger
}

func mustGetwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}
