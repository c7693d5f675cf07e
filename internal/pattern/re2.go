package pattern

import (
	"regexp"

	"gitlab.com/tozd/go/errors"
)

type re2Pattern struct {
	re          *regexp.Regexp
	replacement string
}

func compileRE2(expr, replacement string) (*re2Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, errors.Errorf("%w: %s", ErrInvalidPattern, err.Error())
	}
	return &re2Pattern{re: re, replacement: replacement}, nil
}

// scan never fails: RE2 matching is linear and has no timeout
func (p *re2Pattern) scan(content string, visit func(start, end int, with string) bool) error {
	buf := make([]byte, 0, len(p.replacement))
	for _, m := range p.re.FindAllStringSubmatchIndex(content, -1) {
		buf = p.re.ExpandString(buf[:0], p.replacement, content, m)
		if !visit(m[0], m[1], string(buf)) {
			break
		}
	}
	return nil
}

func (p *re2Pattern) String() string {
	return p.re.String()
}
