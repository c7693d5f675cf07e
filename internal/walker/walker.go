// Package walker selects the files a run will process
package walker

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bethropolis/rr/internal/ignore"
	"gitlab.com/tozd/go/errors"
)

// Walk traverses the tree under rootDir depth first and hands every file
// that passes the hidden, ignore and extension filters to visit, as it is
// found. Directories that are hidden or ignored are pruned. Symbolic links
// are never followed. The walk is a single pass; call Walk again to restart.
//
// It returns the skipped items and the first error that stopped the walk:
// a cancelled context, an error from visit, or an unusable root.
func Walk(ctx context.Context, rootDir string, rules *ignore.RuleSet, visit VisitFunc, opts ...Option) ([]SkippedItem, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	log := options.Logger

	absRootDir, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, errors.Errorf("walker: failed to get absolute path for %q: %w", rootDir, err)
	}

	tracker := NewSkippedTracker(64)

	log.Debug("walker.Walk started. Root: %s, hidden: %v, extensions: %d",
		absRootDir, options.IncludeHidden, len(options.ExtensionMap))

	walkErr := filepath.WalkDir(absRootDir, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		isDir := d != nil && d.IsDir()

		relativePath, relErr := filepath.Rel(absRootDir, p)
		if relErr != nil {
			log.Error("walker: path calculation failed for %q: %v", p, relErr)
			tracker.Track(p, ReasonWalkError, isDir)
			return nil
		}
		relativePath = filepath.ToSlash(relativePath)

		if err != nil {
			if p == absRootDir {
				return err
			}
			reason := ReasonWalkError
			if os.IsPermission(err) {
				reason = ReasonPermError
			}
			log.Warn("walker: cannot read %q: %v", relativePath, err)
			tracker.Track(relativePath, reason, isDir)
			if isDir {
				return filepath.SkipDir
			}
			return nil
		}

		if p == absRootDir {
			return nil
		}

		if !options.IncludeHidden && isHidden(relativePath) {
			log.Debug("walker: skipping hidden %q", relativePath)
			tracker.Track(relativePath, ReasonHidden, isDir)
			return skip(isDir)
		}

		if rules.IsExcluded(relativePath, isDir) {
			log.Debug("walker: %q excluded by ignore rules (%s)", relativePath, rules.Explain(relativePath, isDir))
			tracker.Track(relativePath, ReasonIgnoredRule, isDir)
			return skip(isDir)
		}

		if isDir {
			return nil
		}

		if !d.Type().IsRegular() {
			log.Debug("walker: %q is not a regular file (%s)", relativePath, d.Type())
			tracker.Track(relativePath, ReasonNotRegular, false)
			return nil
		}

		ext := extension(relativePath)
		if options.ExtensionMap != nil {
			if _, allowed := options.ExtensionMap[ext]; !allowed {
				tracker.Track(relativePath, ReasonFilteredExtension, false)
				return nil
			}
		}

		return visit(Candidate{Path: p, RelPath: relativePath, Ext: ext})
	})

	return tracker.Items(), walkErr
}

func skip(isDir bool) error {
	if isDir {
		return filepath.SkipDir
	}
	return nil
}

// isHidden reports whether any segment of a slash path starts with a dot
func isHidden(rel string) bool {
	for _, seg := range strings.Split(rel, "/") {
		if seg != "." && seg != ".." && strings.HasPrefix(seg, ".") {
			return true
		}
	}
	return false
}

// extension returns the extension of the base name without its dot.
// ".bashrc" has no extension.
func extension(rel string) string {
	base := path.Base(rel)
	ext := path.Ext(base)
	if ext == base {
		return ""
	}
	return strings.TrimPrefix(ext, ".")
}
