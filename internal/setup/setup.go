// Package setup turns a validated configuration into the components of a run
package setup

import (
	"strings"

	"github.com/bethropolis/rr/internal/config"
	"github.com/bethropolis/rr/internal/ignore"
	"github.com/bethropolis/rr/internal/pattern"
	"github.com/bethropolis/rr/internal/processor"
	"github.com/bethropolis/rr/internal/utils"
	"github.com/bethropolis/rr/internal/walker"
	"gitlab.com/tozd/go/errors"
)

// ConfigureWalker loads the ignore rules and builds the walker options for cfg
func ConfigureWalker(cfg *config.Config, log utils.Logger) (*ignore.RuleSet, []walker.Option, error) {
	log = utils.OrNoop(log)

	if len(cfg.CustomIgnore) > 0 {
		log.Debug("Using custom ignore patterns: %v", cfg.CustomIgnore)
	}

	rules, err := ignore.Load(
		ignore.DefaultSources(cfg.WorkDir, cfg.RootDir, cfg.HomeDir),
		ignore.WithRoot(cfg.RootDir),
		ignore.WithDefaults(cfg.DefaultIgnores),
		ignore.WithGitignore(cfg.RespectGitignore),
		ignore.WithCustomRules(cfg.CustomIgnore),
		ignore.WithLogger(log),
	)
	if err != nil {
		return nil, nil, errors.Errorf("error initializing ignore rules: %w", err)
	}
	log.Debug("Loaded %d ignore rules from %s", rules.Len(), strings.Join(rules.Sources(), ", "))

	walkOptions := []walker.Option{
		walker.WithLogger(log),
		walker.WithIncludeHidden(cfg.IncludeHidden),
	}

	if len(cfg.Extensions) > 0 {
		log.Debug("Filtering enabled. Only including extensions: %s", strings.Join(cfg.Extensions, ", "))
		walkOptions = append(walkOptions, walker.WithExtensions(cfg.Extensions))
	} else {
		log.Debug("No extension filtering (including all file types).")
	}

	if cfg.IncludeHidden {
		log.Debug("Including hidden files/directories.")
	} else {
		log.Debug("Ignoring hidden files/directories (starting with '.').")
	}

	return rules, walkOptions, nil
}

// MatchPreviewLimit is how many matches per file a verbose dry run lists
const MatchPreviewLimit = 20

// ConfigureProcessor compiles the pattern and builds the file processor for cfg
func ConfigureProcessor(cfg *config.Config, log utils.Logger) (*processor.Processor, error) {
	log = utils.OrNoop(log)

	p, err := pattern.Compile(cfg.Pattern, cfg.Replacement, pattern.WithEngine(cfg.Engine))
	if err != nil {
		return nil, err
	}
	log.Debug("Compiled pattern %q with the %s engine", p.String(), cfg.Engine)

	opts := []processor.Option{
		processor.WithLogger(log),
		processor.WithDryRun(cfg.DryRun),
		processor.WithDiff(cfg.ShowDiff),
	}
	if cfg.Verbose && cfg.DryRun {
		opts = append(opts, processor.WithMatchPreview(MatchPreviewLimit))
	}
	if cfg.MaxFileSizeMB > 0 {
		log.Debug("Ignoring files larger than %d MB.", cfg.MaxFileSizeMB)
		opts = append(opts, processor.WithMaxFileSize(cfg.MaxFileSizeBytes()))
	}

	return processor.New(p, opts...), nil
}
