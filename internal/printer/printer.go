// Package printer handles output formatting and display
package printer

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bethropolis/rr/internal/processor"
	"github.com/bethropolis/rr/internal/summary"
	"github.com/fatih/color"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"
)

// Output formats
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Printer writes a run summary in the configured format
type Printer struct {
	output    io.Writer
	useColors bool
	format    string
	verbose   bool
}

// New creates a new Printer with default settings
func New() *Printer {
	return &Printer{
		output:    os.Stdout,
		useColors: true,
		format:    FormatText,
	}
}

// WithOutput sets the output destination
func (p *Printer) WithOutput(w io.Writer) *Printer {
	p.output = w
	return p
}

// WithColors enables or disables colored output
func (p *Printer) WithColors(enabled bool) *Printer {
	p.useColors = enabled
	return p
}

// WithFormat selects text, json or yaml output
func (p *Printer) WithFormat(format string) *Printer {
	if format != "" {
		p.format = format
	}
	return p
}

// WithVerbose lists every file in text output
func (p *Printer) WithVerbose(enabled bool) *Printer {
	p.verbose = enabled
	return p
}

// PrintSummary renders s
func (p *Printer) PrintSummary(s *summary.Summary) error {
	switch p.format {
	case FormatJSON:
		enc := json.NewEncoder(p.output)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			return errors.Errorf("encoding json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(p.output)
		enc.SetIndent(2)
		if err := enc.Encode(s); err != nil {
			return errors.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	case FormatText, "":
		return p.printText(s)
	default:
		return errors.Errorf("unknown output format %q", p.format)
	}
}

type styles struct {
	heading  *color.Color
	modified *color.Color
	skipped  *color.Color
	failed   *color.Color
	faint    *color.Color
	path     *color.Color
}

func (p *Printer) styles() *styles {
	s := &styles{
		heading:  color.New(color.Bold),
		modified: color.New(color.FgGreen),
		skipped:  color.New(color.FgYellow),
		failed:   color.New(color.FgRed),
		faint:    color.New(color.Faint),
		path:     color.New(color.FgCyan),
	}
	for _, c := range []*color.Color{s.heading, s.modified, s.skipped, s.failed, s.faint, s.path} {
		if p.useColors {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return s
}

func (p *Printer) printText(s *summary.Summary) error {
	st := p.styles()
	w := &errWriter{w: p.output}

	if p.verbose && len(s.Records) > 0 {
		for _, r := range s.Records {
			p.printRecord(w, st, r, s.DryRun)
		}
		w.printf("\n")
	}

	if len(s.Failures) > 0 {
		w.printf("%s\n", st.heading.Sprintf("Failures (%d):", len(s.Failures)))
		for _, f := range s.Failures {
			w.printf("  %s %s: %s\n", st.failed.Sprint("✗"), st.path.Sprint(f.Path), f.Error)
		}
		w.printf("\n")
	}

	w.printf("Total files processed: %d\n", s.Scanned)
	w.printf("Files modified: %s\n", st.modified.Sprint(s.Modified))
	w.printf("Replacements: %d\n", s.Replacements)
	w.printf("Files unchanged: %d\n", s.Unchanged)
	if total := s.SkippedTotal(); total > 0 {
		parts := make([]string, 0, len(s.Skipped))
		for _, reason := range s.SkippedReasons() {
			parts = append(parts, fmt.Sprintf("%s: %d", reason, s.Skipped[reason]))
		}
		w.printf("Files skipped: %s (%s)\n", st.skipped.Sprint(total), strings.Join(parts, ", "))
	}
	if s.PrunedDirs > 0 {
		w.printf("Directories skipped: %d\n", s.PrunedDirs)
	}
	if s.Failed > 0 {
		w.printf("Files failed: %s\n", st.failed.Sprint(s.Failed))
	}
	w.printf("%s\n", st.faint.Sprintf("Completed in %v", s.Duration.Round(time.Millisecond)))

	if s.DryRun {
		w.printf("%s\n", st.skipped.Sprint("(Dry run - no files were actually modified)"))
	}
	if s.Interrupted {
		w.printf("%s\n", st.failed.Sprint("(Interrupted - the summary is partial)"))
	}
	return w.err
}

func (p *Printer) printRecord(w *errWriter, st *styles, r summary.Record, dryRun bool) {
	switch r.Outcome {
	case processor.KindModified:
		count := fmt.Sprintf("%d replacements", r.Replacements)
		if dryRun {
			count = fmt.Sprintf("would replace %d", r.Replacements)
		}
		w.printf("%s %s (%s)\n", st.modified.Sprint("✓"), st.path.Sprint(r.Path), count)
		for _, m := range r.Matches {
			w.printf("    %s -> %s\n", st.failed.Sprintf("%q", m.Match), st.modified.Sprintf("%q", m.With))
		}
		if more := r.Replacements - len(r.Matches); len(r.Matches) > 0 && more > 0 {
			w.printf("    %s\n", st.faint.Sprintf("... and %d more", more))
		}
		if r.Diff != "" {
			w.printf("%s", colorDiff(st, r.Diff))
		}
	case processor.KindUnchanged:
		w.printf("%s %s\n", st.faint.Sprint("-"), st.faint.Sprint(r.Path))
	case processor.KindSkipped:
		kind := "file"
		if r.IsDir {
			kind = "dir"
		}
		w.printf("%s %s %s\n", st.skipped.Sprint("⟳"), r.Path, st.faint.Sprintf("[skipped %s: %s]", kind, r.Reason))
	case processor.KindFailed:
		w.printf("%s %s\n", st.failed.Sprint("✗"), st.path.Sprint(r.Path))
	}
}

func colorDiff(st *styles, diff string) string {
	var b strings.Builder
	for _, line := range strings.SplitAfter(diff, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			b.WriteString(st.heading.Sprint(line))
		case strings.HasPrefix(line, "+"):
			b.WriteString(st.modified.Sprint(line))
		case strings.HasPrefix(line, "-"):
			b.WriteString(st.failed.Sprint(line))
		case strings.HasPrefix(line, "@@"):
			b.WriteString(st.path.Sprint(line))
		default:
			b.WriteString(line)
		}
	}
	return b.String()
}

// errWriter keeps the first write error and drops later writes
type errWriter struct {
	w   io.Writer
	err error
}

func (e *errWriter) printf(format string, args ...any) {
	if e.err != nil {
		return
	}
	_, e.err = fmt.Fprintf(e.w, format, args...)
}
