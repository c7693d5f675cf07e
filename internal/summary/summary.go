// Package summary aggregates per-file outcomes into the result of a run
package summary

import (
	"sort"
	"time"

	"github.com/bethropolis/rr/internal/pattern"
	"github.com/bethropolis/rr/internal/processor"
	"github.com/bethropolis/rr/internal/walker"
)

// Failure is a file that could not be processed
type Failure struct {
	Path  string `json:"path" yaml:"path"`
	Error string `json:"error" yaml:"error"`
}

// Record is the per-file line kept in verbose mode
type Record struct {
	Path         string                `json:"path" yaml:"path"`
	Outcome      processor.Kind        `json:"outcome" yaml:"outcome"`
	Replacements int                   `json:"replacements,omitempty" yaml:"replacements,omitempty"`
	Reason       walker.SkippedReason  `json:"reason,omitempty" yaml:"reason,omitempty"`
	IsDir        bool                  `json:"is_dir,omitempty" yaml:"is_dir,omitempty"`
	Diff         string                `json:"diff,omitempty" yaml:"diff,omitempty"`
	Matches      []pattern.Replacement `json:"matches,omitempty" yaml:"matches,omitempty"`
}

// Summary is the aggregated result of a run. Counts do not depend on the
// order in which files were visited.
type Summary struct {
	Scanned      int                          `json:"scanned" yaml:"scanned"`
	Modified     int                          `json:"modified" yaml:"modified"`
	Unchanged    int                          `json:"unchanged" yaml:"unchanged"`
	Failed       int                          `json:"failed" yaml:"failed"`
	Skipped      map[walker.SkippedReason]int `json:"skipped" yaml:"skipped"`
	Replacements int                          `json:"replacements" yaml:"replacements"`
	PrunedDirs   int                          `json:"pruned_dirs" yaml:"pruned_dirs"`
	Failures     []Failure                    `json:"failures,omitempty" yaml:"failures,omitempty"`
	Records      []Record                     `json:"records,omitempty" yaml:"records,omitempty"`
	DryRun       bool                         `json:"dry_run" yaml:"dry_run"`
	Interrupted  bool                         `json:"interrupted,omitempty" yaml:"interrupted,omitempty"`
	Duration     time.Duration                `json:"duration_ns" yaml:"duration"`
}

// SkippedTotal is the number of files skipped for any reason
func (s *Summary) SkippedTotal() int {
	total := 0
	for _, n := range s.Skipped {
		total += n
	}
	return total
}

// SkippedReasons returns the reasons present in Skipped, sorted by name
func (s *Summary) SkippedReasons() []walker.SkippedReason {
	reasons := make([]walker.SkippedReason, 0, len(s.Skipped))
	for r := range s.Skipped {
		reasons = append(reasons, r)
	}
	sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })
	return reasons
}

// Collector folds outcomes into a Summary. It is not safe for concurrent
// use; a run feeds it from a single goroutine.
type Collector struct {
	summary Summary
	verbose bool
	start   time.Time
}

// NewCollector starts a summary. In verbose mode every outcome is also kept
// as a Record.
func NewCollector(dryRun, verbose bool) *Collector {
	return &Collector{
		summary: Summary{
			Skipped: make(map[walker.SkippedReason]int),
			DryRun:  dryRun,
		},
		verbose: verbose,
		start:   time.Now(),
	}
}

// Add folds the outcome of one processed candidate
func (c *Collector) Add(o processor.Outcome) {
	s := &c.summary
	s.Scanned++

	switch o.Kind {
	case processor.KindModified:
		s.Modified++
		s.Replacements += o.Replacements
	case processor.KindUnchanged:
		s.Unchanged++
	case processor.KindSkipped:
		s.Skipped[o.Reason]++
	case processor.KindFailed:
		s.Failed++
		msg := "unknown error"
		if o.Err != nil {
			msg = o.Err.Error()
		}
		s.Failures = append(s.Failures, Failure{Path: o.Path, Error: msg})
	}

	if c.verbose {
		s.Records = append(s.Records, Record{
			Path:         o.Path,
			Outcome:      o.Kind,
			Replacements: o.Replacements,
			Reason:       o.Reason,
			Diff:         o.Diff,
			Matches:      o.Matches,
		})
	}
}

// AddSkipped folds an entry the selector left out. Skipped directories are
// counted as pruned rather than as skipped files.
func (c *Collector) AddSkipped(item walker.SkippedItem) {
	s := &c.summary
	if item.IsDir {
		s.PrunedDirs++
	} else {
		s.Skipped[item.Reason]++
	}

	if c.verbose {
		s.Records = append(s.Records, Record{
			Path:    item.Path,
			Outcome: processor.KindSkipped,
			Reason:  item.Reason,
			IsDir:   item.IsDir,
		})
	}
}

// Finish stamps the duration, sorts failures and records by path and
// returns the summary.
func (c *Collector) Finish(interrupted bool) *Summary {
	s := c.summary
	s.Interrupted = interrupted
	s.Duration = time.Since(c.start)

	sort.SliceStable(s.Failures, func(i, j int) bool {
		return s.Failures[i].Path < s.Failures[j].Path
	})
	sort.SliceStable(s.Records, func(i, j int) bool {
		return s.Records[i].Path < s.Records[j].Path
	})
	return &s
}
