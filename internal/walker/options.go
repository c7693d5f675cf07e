package walker

import (
	"strings"

	"github.com/bethropolis/rr/internal/utils"
)

// WalkOptions configures the behavior of the Walk function
type WalkOptions struct {
	Logger        utils.Logger
	ExtensionMap  map[string]struct{} // nil: every extension passes
	IncludeHidden bool
}

// defaultOptions returns the default walk options
func defaultOptions() WalkOptions {
	return WalkOptions{
		Logger:        utils.NoopLogger{},
		ExtensionMap:  nil,
		IncludeHidden: false,
	}
}

// Option is a functional option for configuring WalkOptions
type Option func(*WalkOptions)

// WithLogger sets a custom logger for the walker
func WithLogger(logger utils.Logger) Option {
	return func(opts *WalkOptions) {
		opts.Logger = utils.OrNoop(logger)
	}
}

// WithExtensions restricts candidates to these extensions. Comparison is
// case-sensitive; a leading dot is ignored. An empty list disables the filter.
func WithExtensions(extensions []string) Option {
	return func(opts *WalkOptions) {
		if len(extensions) == 0 {
			opts.ExtensionMap = nil
			return
		}
		extMap := make(map[string]struct{}, len(extensions))
		for _, ext := range extensions {
			extMap[strings.TrimPrefix(ext, ".")] = struct{}{}
		}
		opts.ExtensionMap = extMap
	}
}

// WithIncludeHidden makes dot-prefixed files and directories eligible
func WithIncludeHidden(enabled bool) Option {
	return func(opts *WalkOptions) {
		opts.IncludeHidden = enabled
	}
}
