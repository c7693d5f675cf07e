package pattern

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/dlclark/regexp2"
	"gitlab.com/tozd/go/errors"
)

type regexp2Pattern struct {
	re          *regexp2.Regexp
	replacement string
}

func compileRegexp2(expr, replacement string, timeout time.Duration) (*regexp2Pattern, error) {
	re, err := regexp2.Compile(expr, regexp2.None)
	if err != nil {
		return nil, errors.Errorf("%w: %s", ErrInvalidPattern, err.Error())
	}
	re.MatchTimeout = timeout
	return &regexp2Pattern{re: re, replacement: replacement}, nil
}

// scan walks the matches itself instead of calling regexp2's Replace, which
// uses .NET substitution rules and reports a timeout as an empty result.
func (p *regexp2Pattern) scan(content string, visit func(start, end int, with string) bool) error {
	m, err := p.re.FindStringMatch(content)
	if err != nil {
		return errors.Errorf("%w: %s", ErrMatch, err.Error())
	}
	if m == nil {
		return nil
	}

	// regexp2 positions count runes
	offsets := runeOffsets(content)
	var b strings.Builder
	for m != nil {
		b.Reset()
		expand(&b, p.replacement, m)
		if !visit(offsets[m.Index], offsets[m.Index+m.Length], b.String()) {
			return nil
		}
		m, err = p.re.FindNextMatch(m)
		if err != nil {
			return errors.Errorf("%w: %s", ErrMatch, err.Error())
		}
	}
	return nil
}

func (p *regexp2Pattern) String() string {
	return p.re.String()
}

// runeOffsets maps rune index i to its byte offset; the final entry is len(s)
func runeOffsets(s string) []int {
	offsets := make([]int, 0, utf8.RuneCountInString(s)+1)
	for i := range s {
		offsets = append(offsets, i)
	}
	return append(offsets, len(s))
}

// expand follows the template rules of regexp.Regexp.Expand
func expand(b *strings.Builder, template string, m *regexp2.Match) {
	for len(template) > 0 {
		i := strings.IndexByte(template, '$')
		if i < 0 {
			b.WriteString(template)
			return
		}
		b.WriteString(template[:i])
		template = template[i:]
		if len(template) > 1 && template[1] == '$' {
			b.WriteByte('$')
			template = template[2:]
			continue
		}
		name, num, rest, ok := extract(template)
		if !ok {
			// malformed, keep the dollar as text
			b.WriteByte('$')
			template = template[1:]
			continue
		}
		template = rest

		var g *regexp2.Group
		if num >= 0 {
			g = m.GroupByNumber(num)
		} else {
			g = m.GroupByName(name)
		}
		if g != nil && len(g.Captures) > 0 {
			b.WriteString(g.String())
		}
	}
}

// extract parses $name or ${name} at the start of str. num is the group
// number, or -1 when name is not a plain decimal.
func extract(str string) (name string, num int, rest string, ok bool) {
	if len(str) < 2 || str[0] != '$' {
		return "", 0, "", false
	}
	brace := false
	if str[1] == '{' {
		brace = true
		str = str[2:]
	} else {
		str = str[1:]
	}

	i := 0
	for i < len(str) {
		r, size := utf8.DecodeRuneInString(str[i:])
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			break
		}
		i += size
	}
	if i == 0 {
		return "", 0, "", false
	}
	name = str[:i]
	if brace {
		if i >= len(str) || str[i] != '}' {
			return "", 0, "", false
		}
		i++
	}

	num = 0
	for j := 0; j < len(name); j++ {
		if name[j] < '0' || name[j] > '9' || num >= 1e8 {
			num = -1
			break
		}
		num = num*10 + int(name[j]-'0')
	}
	if name[0] == '0' && len(name) > 1 {
		num = -1
	}
	return name, num, str[i:], true
}
