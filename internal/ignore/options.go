package ignore

import "github.com/bethropolis/rr/internal/utils"

// Option configures Load
type Option func(*RuleSet)

// WithRoot sets the directory paths are relative to. Absolute paths passed
// to IsExcluded are made relative to it.
func WithRoot(dir string) Option {
	return func(rs *RuleSet) {
		rs.rootDir = dir
	}
}

// WithGitignore enables .gitignore files found under the root directory
func WithGitignore(enabled bool) Option {
	return func(rs *RuleSet) {
		rs.useGitignore = enabled
	}
}

// WithDefaults toggles DefaultPatterns (enabled by default)
func WithDefaults(enabled bool) Option {
	return func(rs *RuleSet) {
		rs.useDefaults = enabled
	}
}

// WithCustomRules adds extra patterns, e.g. from the command line
func WithCustomRules(patterns []string) Option {
	return func(rs *RuleSet) {
		rs.customPatterns = patterns
	}
}

func WithLogger(logger utils.Logger) Option {
	return func(rs *RuleSet) {
		if logger != nil {
			rs.logger = logger
		}
	}
}
