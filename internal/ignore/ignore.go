// Package ignore decides which paths are excluded from a run.
//
// Rules come from gitignore-style ".rr_ignore" files read from up to three
// fixed locations (the working directory, the target directory and the home
// directory), plus built-in defaults and patterns given on the command line.
// Every source is unioned: a path matching any rule from any source is
// excluded. Negation ("!pattern") is not supported.
//
// Optionally the .gitignore files of the target tree can be honoured as well;
// that part is delegated to github.com/denormal/go-gitignore.
package ignore

import (
	"path/filepath"
)

// FileName is the name of the ignore file looked up in each location
const FileName = ".rr_ignore"

// Source names used in logs and error messages
const (
	SourceBuiltin = "builtin"
	SourceCLI     = "command line"
)

// DefaultPatterns are always excluded unless defaults are disabled
var DefaultPatterns = []string{
	".git/",
	".svn/",
	"target/",
	"node_modules/",
}

// Source is one ignore file location
type Source struct {
	Name string // human readable label, e.g. "home"
	Path string // path of the ignore file
}

// DefaultSources returns the ignore files consulted for a run: the working
// directory, the target directory when it differs from the working directory,
// and the home directory. Empty directories are left out and the same file is
// never listed twice.
func DefaultSources(workDir, rootDir, homeDir string) []Source {
	candidates := []Source{
		{Name: "working directory", Path: workDir},
		{Name: "target directory", Path: rootDir},
		{Name: "home", Path: homeDir},
	}

	seen := make(map[string]struct{}, len(candidates))
	sources := make([]Source, 0, len(candidates))
	for _, c := range candidates {
		if c.Path == "" {
			continue
		}
		file := filepath.Join(c.Path, FileName)
		key := file
		if abs, err := filepath.Abs(file); err == nil {
			key = abs
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		sources = append(sources, Source{Name: c.Name, Path: file})
	}
	return sources
}
