// Package pattern compiles the search expression and performs substitution.
//
// Two engines are available. The default, EngineRE2, is Go's regexp package:
// linear time, no back-references. EngineRegexp2 uses github.com/dlclark/regexp2
// for look-around and back-references, guarded by a match timeout.
//
// Both expand replacement templates the same way: $1, ${1}, $name and
// ${name} insert the text captured by that group ("" if the group did not
// take part in the match) and $$ inserts a literal dollar sign. A name is
// the longest run of letters, digits and underscores, so $1x refers to a
// group called "1x". A regexp2 match that times out fails the whole Apply
// with ErrMatch.
package pattern

import (
	"strings"
	"time"

	"gitlab.com/tozd/go/errors"
)

// Engine names accepted by WithEngine
const (
	EngineRE2     = "re2"
	EngineRegexp2 = "regexp2"
)

// DefaultTimeout bounds a single regexp2 match
const DefaultTimeout = 5 * time.Second

var (
	// ErrInvalidPattern is returned by Compile for a malformed expression
	ErrInvalidPattern = errors.Base("invalid pattern")
	// ErrMatch is returned when matching could not complete, such as a
	// regexp2 match running past its timeout
	ErrMatch = errors.Base("match failed")
)

// Replacement is one substitution: the matched text and what replaces it
type Replacement struct {
	Match string `json:"match" yaml:"match"`
	With  string `json:"with" yaml:"with"`
}

// Pattern is a compiled expression bound to its replacement template.
// Implementations are safe for concurrent use.
type Pattern interface {
	// Apply replaces every non-overlapping match, scanning left to right,
	// and returns the new content with the number of matches. On error the
	// content is returned unchanged with a count of zero.
	Apply(content string) (string, int, error)
	// Matches lists at most limit of the substitutions Apply would make
	Matches(content string, limit int) ([]Replacement, error)
	// String returns the source expression
	String() string
}

// engine reports each match as byte offsets into content together with the
// expanded replacement. Returning false from visit stops the scan.
type engine interface {
	scan(content string, visit func(start, end int, with string) bool) error
	String() string
}

type compiled struct {
	engine
}

func (c compiled) Apply(content string) (string, int, error) {
	var b strings.Builder
	last, n := 0, 0
	err := c.scan(content, func(start, end int, with string) bool {
		if n == 0 {
			b.Grow(len(content))
		}
		b.WriteString(content[last:start])
		b.WriteString(with)
		last = end
		n++
		return true
	})
	if err != nil {
		return content, 0, err
	}
	if n == 0 {
		return content, 0, nil
	}
	b.WriteString(content[last:])
	return b.String(), n, nil
}

func (c compiled) Matches(content string, limit int) ([]Replacement, error) {
	if limit <= 0 {
		return nil, nil
	}
	var out []Replacement
	err := c.scan(content, func(start, end int, with string) bool {
		out = append(out, Replacement{Match: content[start:end], With: with})
		return len(out) < limit
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type config struct {
	engine  string
	timeout time.Duration
}

// Option configures Compile
type Option func(*config)

// WithEngine selects the regular expression engine
func WithEngine(engine string) Option {
	return func(c *config) {
		c.engine = strings.ToLower(strings.TrimSpace(engine))
	}
}

// WithTimeout sets the per-match timeout of the regexp2 engine
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// Compile parses expr with the selected engine and binds replacement to it
func Compile(expr, replacement string, opts ...Option) (Pattern, error) {
	cfg := config{engine: EngineRE2, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&cfg)
	}

	var (
		e   engine
		err error
	)
	switch cfg.engine {
	case "", EngineRE2:
		e, err = compileRE2(expr, replacement)
	case EngineRegexp2:
		e, err = compileRegexp2(expr, replacement, cfg.timeout)
	default:
		err = errors.Errorf("%w: unknown engine %q", ErrInvalidPattern, cfg.engine)
	}
	if err != nil {
		return nil, err
	}
	return compiled{engine: e}, nil
}
