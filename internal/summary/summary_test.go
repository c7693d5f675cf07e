package summary

import (
	"testing"

	"github.com/bethropolis/rr/internal/processor"
	"github.com/bethropolis/rr/internal/walker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
)

func outcomes() []processor.Outcome {
	return []processor.Outcome{
		processor.Modified("b.txt", 2),
		processor.Unchanged("a.txt"),
		processor.Skipped("img.png", walker.ReasonBinary),
		processor.Failed("z.txt", errors.New("permission denied")),
		processor.Modified("c.txt", 3),
		processor.Failed("m.txt", errors.New("disk full")),
	}
}

func TestCollectorCounts(t *testing.T) {
	c := NewCollector(false, false)
	for _, o := range outcomes() {
		c.Add(o)
	}
	c.AddSkipped(walker.SkippedItem{Path: "notes.md", Reason: walker.ReasonFilteredExtension})
	c.AddSkipped(walker.SkippedItem{Path: ".git", Reason: walker.ReasonHidden, IsDir: true})

	s := c.Finish(false)

	assert.Equal(t, 6, s.Scanned)
	assert.Equal(t, 2, s.Modified)
	assert.Equal(t, 1, s.Unchanged)
	assert.Equal(t, 2, s.Failed)
	assert.Equal(t, 5, s.Replacements)
	assert.Equal(t, 1, s.PrunedDirs)
	assert.Equal(t, map[walker.SkippedReason]int{
		walker.ReasonBinary:            1,
		walker.ReasonFilteredExtension: 1,
	}, s.Skipped)
	assert.Equal(t, 2, s.SkippedTotal())
	assert.Equal(t, []walker.SkippedReason{walker.ReasonBinary, walker.ReasonFilteredExtension}, s.SkippedReasons())
	assert.Empty(t, s.Records, "records are only kept in verbose mode")
	assert.False(t, s.Interrupted)
}

func TestFailuresSortedByPath(t *testing.T) {
	c := NewCollector(false, false)
	for _, o := range outcomes() {
		c.Add(o)
	}
	s := c.Finish(false)

	require.Len(t, s.Failures, 2)
	assert.Equal(t, Failure{Path: "m.txt", Error: "disk full"}, s.Failures[0])
	assert.Equal(t, Failure{Path: "z.txt", Error: "permission denied"}, s.Failures[1])
}

func TestOrderIndependent(t *testing.T) {
	forward := NewCollector(true, true)
	backward := NewCollector(true, true)
	list := outcomes()
	for i := range list {
		forward.Add(list[i])
		backward.Add(list[len(list)-1-i])
	}

	a, b := forward.Finish(false), backward.Finish(false)
	a.Duration, b.Duration = 0, 0
	assert.Equal(t, a, b)
}

func TestVerboseRecords(t *testing.T) {
	c := NewCollector(true, true)
	c.Add(processor.Modified("b.txt", 2))
	c.Add(processor.Unchanged("a.txt"))
	c.AddSkipped(walker.SkippedItem{Path: "build", Reason: walker.ReasonIgnoredRule, IsDir: true})

	s := c.Finish(true)

	assert.True(t, s.DryRun)
	assert.True(t, s.Interrupted)
	require.Len(t, s.Records, 3)
	assert.Equal(t, Record{Path: "a.txt", Outcome: processor.KindUnchanged}, s.Records[0])
	assert.Equal(t, Record{Path: "b.txt", Outcome: processor.KindModified, Replacements: 2}, s.Records[1])
	assert.Equal(t, Record{Path: "build", Outcome: processor.KindSkipped, Reason: walker.ReasonIgnoredRule, IsDir: true}, s.Records[2])
}

func TestFailedWithoutError(t *testing.T) {
	c := NewCollector(false, false)
	c.Add(processor.Outcome{Path: "x", Kind: processor.KindFailed})
	s := c.Finish(false)
	require.Len(t, s.Failures, 1)
	assert.Equal(t, "unknown error", s.Failures[0].Error)
}
