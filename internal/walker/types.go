// Package walker selects the files a run will process
package walker

import (
	"sync"
)

// Candidate is a file that passed every selection filter
type Candidate struct {
	Path    string // absolute path
	RelPath string // slash-separated path relative to the root
	Ext     string // extension without the leading dot, "" if none
}

// VisitFunc receives each candidate as soon as it is found. Returning an
// error stops the walk.
type VisitFunc func(c Candidate) error

// SkippedReason clarifies why a file/directory was not processed.
type SkippedReason string

const (
	ReasonHidden            SkippedReason = "hidden"
	ReasonIgnoredRule       SkippedReason = "ignored"
	ReasonFilteredExtension SkippedReason = "extension"
	ReasonNotRegular        SkippedReason = "not a regular file"
	ReasonPermError         SkippedReason = "permission denied"
	ReasonWalkError         SkippedReason = "walk error"

	// set by the file processor after selection
	ReasonBinary    SkippedReason = "binary"
	ReasonSizeLimit SkippedReason = "size limit"
)

// SkippedItem holds information about a skipped path.
type SkippedItem struct {
	Path   string        `json:"path" yaml:"path"`
	Reason SkippedReason `json:"reason" yaml:"reason"`
	IsDir  bool          `json:"is_dir" yaml:"is_dir"`
}

// SkippedTracker collects skipped items; safe for concurrent use
type SkippedTracker struct {
	items []SkippedItem
	mutex sync.Mutex
}

// NewSkippedTracker creates a new SkippedTracker
func NewSkippedTracker(capacity int) *SkippedTracker {
	return &SkippedTracker{
		items: make([]SkippedItem, 0, capacity),
	}
}

// Track adds a skipped item to the tracker
func (st *SkippedTracker) Track(path string, reason SkippedReason, isDir bool) {
	st.mutex.Lock()
	defer st.mutex.Unlock()
	st.items = append(st.items, SkippedItem{Path: path, Reason: reason, IsDir: isDir})
}

// Items returns a copy of the tracked skipped items
func (st *SkippedTracker) Items() []SkippedItem {
	st.mutex.Lock()
	defer st.mutex.Unlock()
	return append([]SkippedItem(nil), st.items...)
}
