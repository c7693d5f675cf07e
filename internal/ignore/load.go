package ignore

import (
	"io/fs"
	"os"
	"strings"

	"github.com/bethropolis/rr/internal/utils"
	gitignore "github.com/denormal/go-gitignore"
	"gitlab.com/tozd/go/errors"
)

// ErrIgnoreFile is returned when an ignore source exists but cannot be used
var ErrIgnoreFile = errors.Base("invalid ignore file")

// Load reads every source and merges their rules into one RuleSet.
// A source that does not exist is skipped; one that exists but cannot be
// read, or that contains an invalid pattern, fails the whole load.
func Load(sources []Source, opts ...Option) (*RuleSet, error) {
	rs := &RuleSet{
		useDefaults: true,
		logger:      utils.NoopLogger{},
	}
	for _, opt := range opts {
		opt(rs)
	}

	if rs.useDefaults {
		if err := rs.addLines(SourceBuiltin, DefaultPatterns); err != nil {
			return nil, err
		}
	}

	for _, src := range sources {
		content, err := os.ReadFile(src.Path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				rs.logger.Debug("ignore.Load: no %s ignore file at %s", src.Name, src.Path)
				continue
			}
			return nil, errors.Errorf("%w: reading %s: %s", ErrIgnoreFile, src.Path, err.Error())
		}
		rs.logger.Debug("ignore.Load: loading %s ignore file %s", src.Name, src.Path)
		if err := rs.addLines(src.Path, splitLines(string(content))); err != nil {
			return nil, err
		}
	}

	if len(rs.customPatterns) > 0 {
		if err := rs.addLines(SourceCLI, rs.customPatterns); err != nil {
			return nil, err
		}
	}

	if rs.useGitignore {
		if err := rs.initGitignore(); err != nil {
			return nil, err
		}
	}

	rs.logger.Debug("ignore.Load: %d rules from %d sources", len(rs.rules), len(rs.sources))
	return rs, nil
}

func (rs *RuleSet) addLines(source string, lines []string) error {
	added := 0
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "!") {
			rs.logger.Warn("ignore: %s:%d: negation is not supported, line skipped: %q", source, i+1, trimmed)
			continue
		}
		r, ok, err := compileRule(trimmed, source, i+1)
		if err != nil {
			return errors.Errorf("%w: %s", ErrIgnoreFile, err.Error())
		}
		if !ok {
			continue
		}
		rs.rules = append(rs.rules, r)
		added++
	}
	rs.sources = append(rs.sources, source)
	rs.logger.Debug("ignore: %d patterns from %s", added, source)
	return nil
}

// initGitignore loads the .gitignore files of the root directory tree
func (rs *RuleSet) initGitignore() error {
	if rs.rootDir == "" {
		return errors.Errorf("%w: .gitignore support needs a root directory", ErrIgnoreFile)
	}

	repoMatcher, repoErr := gitignore.NewRepository(rs.rootDir)
	if repoErr != nil {
		if repoMatcher != nil {
			return errors.Errorf("%w: loading .gitignore files: %s", ErrIgnoreFile, repoErr.Error())
		}
		rs.logger.Warn("ignore: no .gitignore rules loaded for %s: %v", rs.rootDir, repoErr)
		repoMatcher = gitignore.New(strings.NewReader(""), rs.rootDir, nil)
	}
	rs.repoIgnore = repoMatcher
	rs.sources = append(rs.sources, ".gitignore")
	return nil
}

func splitLines(content string) []string {
	lines := strings.Split(content, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// Sources lists the sources that contributed to the set, in load order
func (rs *RuleSet) Sources() []string {
	if rs == nil {
		return nil
	}
	return append([]string(nil), rs.sources...)
}

// Len is the number of compiled rules, not counting .gitignore files
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.rules)
}
