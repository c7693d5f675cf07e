package processor

import (
	"github.com/bethropolis/rr/internal/pattern"
	"github.com/bethropolis/rr/internal/walker"
)

// Kind is the variant of an Outcome
type Kind int

const (
	KindUnchanged Kind = iota
	KindModified
	KindSkipped
	KindFailed
)

func (k Kind) String() string {
	switch k {
	case KindUnchanged:
		return "unchanged"
	case KindModified:
		return "modified"
	case KindSkipped:
		return "skipped"
	case KindFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MarshalText makes Kind render by name in JSON and YAML reports
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Outcome is the result of processing one candidate
type Outcome struct {
	Path         string                // relative path of the file
	Kind         Kind
	Replacements int                   // matches replaced (Modified only)
	Reason       walker.SkippedReason  // Skipped only
	Err          error                 // Failed only
	Encoding     Encoding              // detected text encoding
	Diff         string                // unified diff, when enabled
	Matches      []pattern.Replacement // first matches, when previewing
	Written      bool                  // the new content reached the disk
}

// Unchanged reports a file the pattern did not match
func Unchanged(path string) Outcome {
	return Outcome{Path: path, Kind: KindUnchanged}
}

// Modified reports a file with replacements matches
func Modified(path string, replacements int) Outcome {
	return Outcome{Path: path, Kind: KindModified, Replacements: replacements}
}

// Skipped reports a file left alone for reason
func Skipped(path string, reason walker.SkippedReason) Outcome {
	return Outcome{Path: path, Kind: KindSkipped, Reason: reason}
}

// Failed reports a file whose processing stopped with err
func Failed(path string, err error) Outcome {
	return Outcome{Path: path, Kind: KindFailed, Err: err}
}
