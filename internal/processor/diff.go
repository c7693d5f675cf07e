package processor

import (
	"github.com/pmezard/go-difflib/difflib"
)

// unifiedDiff renders the change to one file with three lines of context
func unifiedDiff(rel, before, after string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: "a/" + rel,
		ToFile:   "b/" + rel,
		Context:  3,
	})
	if err != nil {
		return ""
	}
	return diff
}
