// Package processor applies a pattern to one file at a time.
//
// Processing a file is read, classify, substitute, then (unless dry run)
// write the result back atomically: the new content goes to a temporary file
// in the same directory which is renamed over the original. The original is
// never modified in place, so a failure at any step leaves it untouched.
package processor

import (
	"os"

	"github.com/bethropolis/rr/internal/pattern"
	"github.com/bethropolis/rr/internal/utils"
	"github.com/bethropolis/rr/internal/walker"
	"gitlab.com/tozd/go/errors"
)

// Processor runs one pattern over candidates. It holds no per-file state and
// may be shared by concurrent workers.
type Processor struct {
	pattern     pattern.Pattern
	dryRun      bool
	maxFileSize int64
	showDiff    bool
	preview     int
	logger      utils.Logger

	// rename moves the temporary file over the original
	rename func(oldpath, newpath string) error
}

// New creates a Processor for p
func New(p pattern.Pattern, opts ...Option) *Processor {
	proc := &Processor{
		pattern: p,
		logger:  utils.NoopLogger{},
		rename:  os.Rename,
	}
	for _, opt := range opts {
		opt(proc)
	}
	return proc
}

// Process handles a single candidate. Dry runs go through exactly the same
// steps as real runs and stop just before writing.
func (p *Processor) Process(c walker.Candidate) Outcome {
	rel := c.RelPath
	if rel == "" {
		rel = c.Path
	}

	info, err := os.Lstat(c.Path)
	if err != nil {
		return Failed(rel, errors.Errorf("stat %s: %w", rel, err))
	}
	if !info.Mode().IsRegular() {
		return Skipped(rel, walker.ReasonNotRegular)
	}
	if p.maxFileSize > 0 && info.Size() > p.maxFileSize {
		p.logger.Debug("processor: %s exceeds size limit (%d > %d bytes)", rel, info.Size(), p.maxFileSize)
		return Skipped(rel, walker.ReasonSizeLimit)
	}

	raw, err := os.ReadFile(c.Path)
	if err != nil {
		return Failed(rel, errors.Errorf("reading %s: %w", rel, err))
	}

	text, enc, ok := decode(raw)
	if !ok {
		p.logger.Debug("processor: %s looks binary, skipped", rel)
		return Skipped(rel, walker.ReasonBinary)
	}

	newText, count, err := p.pattern.Apply(text)
	if err != nil {
		return Failed(rel, errors.Errorf("matching %s: %w", rel, err))
	}
	if count == 0 {
		return Unchanged(rel)
	}

	out := Modified(rel, count)
	out.Encoding = enc
	if p.showDiff {
		out.Diff = unifiedDiff(rel, text, newText)
	}
	if p.preview > 0 {
		out.Matches, err = p.pattern.Matches(text, p.preview)
		if err != nil {
			return Failed(rel, errors.Errorf("matching %s: %w", rel, err))
		}
	}

	if p.dryRun {
		return out
	}
	if newText == text {
		// every match was replaced by identical text
		return out
	}

	data, err := encode(newText, enc)
	if err != nil {
		return Failed(rel, errors.Errorf("%s: %w", rel, err))
	}
	if err := p.writeAtomic(c.Path, data, info.Mode().Perm()); err != nil {
		return Failed(rel, errors.Errorf("writing %s: %w", rel, err))
	}
	out.Written = true
	p.logger.Debug("processor: %s rewritten (%d replacements)", rel, count)
	return out
}
