package cli

import (
	"dts2as/internal/shared/version"
	"io"

	"github.com/spf13/cobra"
)

type cliOptions struct {
	configPath  string
	baseline    string
	outDir      string
	excludes    []string
	workers     int
	watch       bool
	dryRun      bool
	verbose     bool
	metricsAddr string
	args        []string
}

// newRootCommand builds the command tree. run receives the parsed options
// for the default generate action and for doctor.
func newRootCommand(opts *cliOptions, stdout, stderr io.Writer, generate, doctor func(*cobra.Command, *cliOptions) error) *cobra.Command {
	root := &cobra.Command{
		Use:   "dts2as [flags] [inputs...]",
		Short: "Generate ActionScript 3 stubs from TypeScript declaration files",
		Long: `dts2as reads TypeScript declaration files (.d.ts) and writes one ActionScript 3
source file per package-level class, interface, function and variable.

Inputs are files or directories; they default to the inputs listed in dts2as.toml.
A baseline declaration file (for example lib.d.ts) is parsed first and used for
type resolution only; nothing it declares is written.`,
		Version:       version.Info(),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.args = args
			return generate(cmd, opts)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetVersionTemplate("dts2as version {{.Version}}\n")

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "Path to config file (default: nearest dts2as.toml)")
	flags.StringVar(&opts.baseline, "baseline", "", "Baseline declaration file, resolved but never emitted")
	flags.StringVarP(&opts.outDir, "out", "o", "", "Output directory")
	flags.StringSliceVar(&opts.excludes, "exclude", nil, "Glob patterns of file names to skip (repeatable)")
	flags.IntVar(&opts.workers, "workers", 0, "Emitter worker count (default: config or CPU count)")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")

	root.Flags().BoolVarP(&opts.watch, "watch", "w", false, "Regenerate when inputs change")
	root.Flags().BoolVar(&opts.dryRun, "dry-run", false, "List the files that would be written without writing them")
	root.Flags().StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve /metrics and /health on this address in watch mode")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("dts2as version %s\n", version.Info())
		},
	})
	root.AddCommand(&cobra.Command{
		Use:   "doctor [inputs...]",
		Short: "Check configuration, baseline and inputs without generating",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.args = args
			return doctor(cmd, opts)
		},
	})
	return root
}
