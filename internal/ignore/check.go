package ignore

import (
	"path"
	"path/filepath"
	"strings"
)

// IsExcluded reports whether a path is excluded by any rule. The path may be
// relative to the root directory or absolute. The path itself and every one of
// its ancestor directories are tested, so "build/" also excludes
// "build/out/app.bin". A nil RuleSet excludes nothing.
func (rs *RuleSet) IsExcluded(p string, isDir bool) bool {
	if rs == nil {
		return false
	}
	rel := rs.normalize(p)
	if rel == "" || rel == "." {
		return false // never exclude the root itself
	}

	if rs.matchOne(rel, isDir) {
		return true
	}
	for dir := path.Dir(rel); dir != "." && dir != "/"; dir = path.Dir(dir) {
		if rs.matchOne(dir, true) {
			return true
		}
	}
	return false
}

// Explain returns the rule that excludes rel itself (ancestors are not
// consulted), or "" when none does. Used for verbose logging.
func (rs *RuleSet) Explain(p string, isDir bool) string {
	if rs == nil {
		return ""
	}
	rel := rs.normalize(p)
	for _, r := range rs.rules {
		if r.match(rel, isDir) {
			return r.String()
		}
	}
	if rs.gitignored(rel, isDir) {
		return ".gitignore"
	}
	return ""
}

func (rs *RuleSet) matchOne(rel string, isDir bool) bool {
	for _, r := range rs.rules {
		if r.match(rel, isDir) {
			rs.logger.Debug("ignore.IsExcluded: %q matched %s", rel, r)
			return true
		}
	}
	return rs.gitignored(rel, isDir)
}

func (rs *RuleSet) gitignored(rel string, isDir bool) (ignored bool) {
	if rs.repoIgnore == nil {
		return false
	}

	// the gitignore repository caches parsed files internally
	rs.repoMu.Lock()
	defer rs.repoMu.Unlock()

	defer func() {
		if r := recover(); r != nil {
			rs.logger.Error("ignore: recovered from gitignore panic for %q: %v", rel, r)
			ignored = false
		}
	}()

	m := rs.repoIgnore.Relative(rel, isDir)
	return m != nil && m.Ignore()
}

func (rs *RuleSet) normalize(p string) string {
	if filepath.IsAbs(p) && rs.rootDir != "" {
		if rel, err := filepath.Rel(rs.rootDir, p); err == nil && !strings.HasPrefix(rel, "..") {
			p = rel
		}
	}
	p = filepath.ToSlash(p)
	p = strings.TrimPrefix(p, "./")
	return strings.Trim(p, "/")
}
