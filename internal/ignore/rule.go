package ignore

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// compileRule turns one ignore line into a rule. Blank lines and comments
// return ok == false.
func compileRule(line, source string, lineNo int) (rule, bool, error) {
	p := strings.TrimSpace(line)
	if p == "" || strings.HasPrefix(p, "#") {
		return rule{}, false, nil
	}

	r := rule{raw: p, source: source, line: lineNo}
	if strings.HasSuffix(p, "/") {
		r.dirOnly = true
		p = strings.TrimRight(p, "/")
	}
	if strings.HasPrefix(p, "/") {
		r.anchored = true
		p = strings.TrimLeft(p, "/")
	}
	if strings.Contains(p, "/") {
		r.anchored = true
	}

	if p == "" || !doublestar.ValidatePattern(p) {
		return rule{}, false, errors.Errorf("%s:%d: invalid pattern %q", source, lineNo, r.raw)
	}
	r.pattern = p
	return r, true, nil
}

// match reports whether a single slash-separated relative path matches.
// Ancestors are handled by the caller.
func (r rule) match(rel string, isDir bool) bool {
	if r.dirOnly && !isDir {
		return false
	}
	target := rel
	if !r.anchored {
		target = path.Base(rel)
	}
	ok, err := doublestar.Match(r.pattern, target)
	return err == nil && ok
}

func (r rule) String() string {
	return fmt.Sprintf("%s:%d:%s", r.source, r.line, r.raw)
}
