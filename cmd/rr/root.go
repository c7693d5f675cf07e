package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/bethropolis/rr/internal/app"
	"github.com/bethropolis/rr/internal/config"
	"github.com/bethropolis/rr/internal/logger"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"
)

// Exit codes
const (
	exitOK          = 0
	exitError       = 1
	exitInterrupted = 130
)

// run parses args, performs the run and returns the process exit code
func run(args []string) int {
	return execute(context.Background(), args, os.Stdout, os.Stderr)
}

func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.FromEnv()
	if err != nil {
		logger.New(stderr, false, false).Error("%v", err)
		return exitError
	}

	cmd := newRootCmd(cfg, stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		log := logger.New(stderr, false, cfg.UseColors).WithFormat(cfg.LogFormat)
		log.SetLevel(cfg.LogLevel)
		log.Error("%v", err)
		return exitCode(err)
	}
	return exitOK
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, app.ErrInterrupted):
		return exitInterrupted
	default:
		return exitError
	}
}

func newRootCmd(cfg *config.Config, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rr -p PATTERN -r REPLACEMENT [flags]",
		Short: "Regex search and replace across a directory tree",
		Long: `rr replaces every match of a regular expression in the files under a
directory. Files are selected by extension, hidden-file policy and
.rr_ignore rules read from the working directory, the target directory and
the home directory. Binary files are skipped and every write is atomic.

Defaults can also be set with RR_* environment variables, e.g. RR_DIR,
RR_EXTENSIONS or RR_WORKERS.`,
		Version:       config.Version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRoot(cmd.Context(), cfg, stdout, stderr)
		},
	}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.StringVarP(&cfg.Pattern, "pattern", "p", cfg.Pattern, "Regular expression to search for")
	flags.StringVarP(&cfg.Replacement, "replacement", "r", cfg.Replacement, "Replacement text; $1, ${name} insert capture groups")
	flags.StringVarP(&cfg.RootDir, "dir", "d", cfg.RootDir, "Directory to process")
	flags.StringSliceVarP(&cfg.Extensions, "extensions", "e", cfg.Extensions, "Only process files with these extensions (comma-separated, e.g. 'txt,rs')")
	flags.BoolVarP(&cfg.DryRun, "dry-run", "n", cfg.DryRun, "Show what would change without writing")
	flags.BoolVarP(&cfg.Verbose, "verbose", "v", cfg.Verbose, "List every file in the summary")
	flags.BoolVar(&cfg.IncludeHidden, "include-hidden", cfg.IncludeHidden, "Include hidden files and directories")

	flags.IntVar(&cfg.Workers, "workers", cfg.Workers, "Number of concurrent workers (0 = number of CPU cores)")
	flags.Int64Var(&cfg.MaxFileSizeMB, "max-size", cfg.MaxFileSizeMB, "Skip files larger than this many MB (0 = no limit)")
	flags.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Maximum execution time (e.g. '30s', '5m')")
	flags.StringVar(&cfg.Engine, "engine", cfg.Engine, "Regular expression engine: re2 or regexp2 (look-around, back-references)")
	flags.BoolVar(&cfg.ShowDiff, "diff", cfg.ShowDiff, "Show a unified diff for every modified file (implies --verbose)")
	flags.BoolVar(&cfg.RespectGitignore, "gitignore", cfg.RespectGitignore, "Also honour .gitignore files in the target tree")
	noDefaults := flags.Bool("no-default-ignores", !cfg.DefaultIgnores, "Do not skip .git, .svn, target and node_modules")
	flags.StringSliceVar(&cfg.CustomIgnore, "ignore", cfg.CustomIgnore, "Extra ignore patterns (comma-separated, .rr_ignore syntax)")

	flags.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level: debug, info, warn, error, none")
	flags.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format: text or json")
	flags.BoolVar(&cfg.NoColor, "no-color", cfg.NoColor, "Disable color output")
	flags.StringVar(&cfg.OutputFormat, "format", cfg.OutputFormat, "Summary format: text, json or yaml")

	_ = cmd.MarkFlagRequired("pattern")
	_ = cmd.MarkFlagRequired("replacement")

	cmd.PreRun = func(*cobra.Command, []string) {
		cfg.DefaultIgnores = !*noDefaults
		if cfg.ShowDiff {
			cfg.Verbose = true
		}
	}

	return cmd
}

func runRoot(ctx context.Context, cfg *config.Config, stdout, stderr io.Writer) error {
	cfg.Resolve()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	return app.New(cfg, stdout, stderr).Run(ctx)
}
