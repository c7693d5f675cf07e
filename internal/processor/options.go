package processor

import "github.com/bethropolis/rr/internal/utils"

// Option configures a Processor
type Option func(*Processor)

// WithDryRun computes outcomes without writing
func WithDryRun(enabled bool) Option {
	return func(p *Processor) {
		p.dryRun = enabled
	}
}

// WithMaxFileSize skips files larger than maxBytes; 0 means no limit
func WithMaxFileSize(maxBytes int64) Option {
	return func(p *Processor) {
		p.maxFileSize = maxBytes
	}
}

// WithDiff attaches a unified diff to Modified outcomes
func WithDiff(enabled bool) Option {
	return func(p *Processor) {
		p.showDiff = enabled
	}
}

// WithMatchPreview attaches up to limit matches and their replacements to
// Modified outcomes
func WithMatchPreview(limit int) Option {
	return func(p *Processor) {
		p.preview = limit
	}
}

func WithLogger(logger utils.Logger) Option {
	return func(p *Processor) {
		p.logger = utils.OrNoop(logger)
	}
}
