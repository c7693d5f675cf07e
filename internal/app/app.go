// Package app drives a whole run: selection, processing and reporting
package app

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/bethropolis/rr/internal/config"
	"github.com/bethropolis/rr/internal/logger"
	"github.com/bethropolis/rr/internal/printer"
	"github.com/bethropolis/rr/internal/processor"
	"github.com/bethropolis/rr/internal/setup"
	"github.com/bethropolis/rr/internal/summary"
	"github.com/bethropolis/rr/internal/walker"
	"github.com/fatih/color"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sync/errgroup"
)

// ErrInterrupted is returned when a run was cancelled before it finished
var ErrInterrupted = errors.Base("run interrupted")

// App encapsulates the main application functionality
type App struct {
	cfg    *config.Config
	log    *logger.Logger
	Output io.Writer
}

// New creates a new App printing its report to out and logging to errOut
func New(cfg *config.Config, out, errOut io.Writer) *App {
	// Configure color globally
	color.NoColor = !cfg.UseColors

	log := logger.New(errOut, false, cfg.UseColors).WithFormat(cfg.LogFormat)
	if cfg.LogLevel != "" {
		log.SetLevel(cfg.LogLevel)
	}

	return &App{
		cfg:    cfg,
		log:    log,
		Output: out,
	}
}

// Run executes the run and prints its summary. Errors wrapping
// config.ErrConfig, pattern.ErrInvalidPattern or ignore.ErrIgnoreFile mean
// nothing was touched; ErrInterrupted comes after a partial summary was
// printed.
func (a *App) Run(ctx context.Context) error {
	s, err := Run(ctx, a.cfg, a.log)
	if s == nil {
		return err
	}

	p := printer.New().
		WithOutput(a.Output).
		WithColors(a.cfg.OutputColors).
		WithFormat(a.cfg.OutputFormat).
		WithVerbose(a.cfg.Verbose)
	if printErr := p.PrintSummary(s); printErr != nil {
		return errors.Errorf("printing summary: %w", printErr)
	}

	if err != nil {
		return err
	}
	if s.Interrupted {
		return errors.Errorf("%w after %s", ErrInterrupted, s.Duration.Round(time.Millisecond))
	}
	return nil
}

// Run performs one search-and-replace pass over cfg.RootDir.
//
// The pattern is compiled and the ignore rules loaded before any file is
// looked at, so an error from either leaves the tree untouched and no
// summary is returned. Per-file problems never stop the run: they are
// recorded in the summary. When ctx is cancelled no further files are
// started and the partial summary is returned marked as interrupted.
func Run(ctx context.Context, cfg *config.Config, log *logger.Logger) (*summary.Summary, error) {
	if log == nil {
		log = logger.New(io.Discard, false, false).WithLevel(logger.LevelNone)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	proc, err := setup.ConfigureProcessor(cfg, log)
	if err != nil {
		return nil, err
	}
	rules, walkOptions, err := setup.ConfigureWalker(cfg, log)
	if err != nil {
		return nil, err
	}

	workers := max(cfg.Workers, 1)
	log.Debug("Scanning directory %s with %d workers (dry run: %v)", cfg.RootDir, workers, cfg.DryRun)

	collector := summary.NewCollector(cfg.DryRun, cfg.Verbose)
	candidates := make(chan walker.Candidate, workers*2)
	results := make(chan processor.Outcome, workers*2)

	// single consumer: the collector is only touched here
	var collected sync.WaitGroup
	collected.Add(1)
	go func() {
		defer collected.Done()
		zl := log.Zerolog()
		for o := range results {
			switch o.Kind {
			case processor.KindFailed:
				log.Warn("Failed to process %s: %v", o.Path, o.Err)
			default:
				zl.Debug().
					Str("path", o.Path).
					Stringer("outcome", o.Kind).
					Int("replacements", o.Replacements).
					Str("reason", string(o.Reason)).
					Bool("written", o.Written).
					Msg("processed")
			}
			collector.Add(o)
		}
	}()

	g, gctx := errgroup.WithContext(ctx)

	var skipped []walker.SkippedItem
	g.Go(func() error {
		defer close(candidates)
		var walkErr error
		skipped, walkErr = walker.Walk(gctx, cfg.RootDir, rules, func(c walker.Candidate) error {
			select {
			case candidates <- c:
				return nil
			case <-gctx.Done():
				return gctx.Err()
			}
		}, walkOptions...)
		return walkErr
	})

	for i := 0; i < workers; i++ {
		g.Go(func() error {
			for c := range candidates {
				if gctx.Err() != nil {
					// drain without starting new files
					continue
				}
				results <- proc.Process(c)
			}
			return nil
		})
	}

	waitErr := g.Wait()
	close(results)
	collected.Wait()

	for _, item := range skipped {
		collector.AddSkipped(item)
	}

	interrupted := ctx.Err() != nil
	s := collector.Finish(interrupted)

	if waitErr != nil && !interrupted {
		return s, errors.Errorf("walking %s: %w", cfg.RootDir, waitErr)
	}
	if interrupted {
		log.Warn("Run interrupted: %v", ctx.Err())
	}
	log.Debug("Run complete in %v.", s.Duration.Round(time.Millisecond))
	return s, nil
}
