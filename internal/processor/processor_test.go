package processor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/bethropolis/rr/internal/pattern"
	"github.com/bethropolis/rr/internal/walker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"
	"golang.org/x/text/encoding/unicode"
)

func writeFile(t *testing.T, dir, name string, content []byte) walker.Candidate {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, content, 0o644))
	return walker.Candidate{Path: p, RelPath: name, Ext: filepath.Ext(name)}
}

func newProcessor(t *testing.T, expr, repl string, opts ...Option) *Processor {
	t.Helper()
	p, err := pattern.Compile(expr, repl)
	require.NoError(t, err)
	return New(p, opts...)
}

func readString(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func dirEntries(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestProcessScenarios(t *testing.T) {
	tests := []struct {
		name  string
		expr  string
		repl  string
		input string
		want  string
		count int
	}{
		{"literal", "111", "222", "Hello 111 World 111", "Hello 222 World 222", 2},
		{"digits", `\d+`, "NUM", "abc123def456ghi789", "abcNUMdefNUMghiNUM", 3},
		{"capture group", `fn (\w+)\(`, "function $1(", "fn hello(", "function hello(", 1},
		{"backslashes", "111", "JohnDoe", `C:\Users\111\Documents`, `C:\Users\JohnDoe\Documents`, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			c := writeFile(t, dir, "test.txt", []byte(tt.input))

			out := newProcessor(t, tt.expr, tt.repl).Process(c)

			require.NoError(t, out.Err)
			assert.Equal(t, KindModified, out.Kind)
			assert.Equal(t, tt.count, out.Replacements)
			assert.True(t, out.Written)
			assert.Equal(t, tt.want, readString(t, c.Path))
			assert.Equal(t, []string{"test.txt"}, dirEntries(t, dir), "no temporary files left behind")
		})
	}
}

func TestProcessUnchanged(t *testing.T) {
	dir := t.TempDir()
	c := writeFile(t, dir, "test.txt", []byte("Hello World"))
	before, err := os.Stat(c.Path)
	require.NoError(t, err)

	out := newProcessor(t, `\d+`, "X").Process(c)

	assert.Equal(t, KindUnchanged, out.Kind)
	assert.Zero(t, out.Replacements)
	after, err := os.Stat(c.Path)
	require.NoError(t, err)
	assert.Equal(t, before.ModTime(), after.ModTime())
	assert.True(t, os.SameFile(before, after), "file was not replaced")
}

func TestProcessEmptyFile(t *testing.T) {
	dir := t.TempDir()
	c := writeFile(t, dir, "empty.txt", nil)

	out := newProcessor(t, "111", "222").Process(c)
	assert.Equal(t, KindUnchanged, out.Kind)
	assert.Equal(t, "", readString(t, c.Path))
}

func TestProcessDryRunNeverWrites(t *testing.T) {
	dir := t.TempDir()
	original := "111 222 333 111"
	c := writeFile(t, dir, "preserve.txt", []byte(original))

	out := newProcessor(t, "111", "999", WithDryRun(true)).Process(c)

	assert.Equal(t, KindModified, out.Kind)
	assert.Equal(t, 2, out.Replacements)
	assert.False(t, out.Written)
	assert.Equal(t, original, readString(t, c.Path))
	assert.Equal(t, []string{"preserve.txt"}, dirEntries(t, dir))
}

func TestProcessBinaryIsSkipped(t *testing.T) {
	dir := t.TempDir()
	content := []byte{0, 1, 2, 3, 255, 254, 253, '1', '1', '1'}
	c := writeFile(t, dir, "binary.bin", content)

	out := newProcessor(t, "111", "222").Process(c)

	assert.Equal(t, KindSkipped, out.Kind)
	assert.Equal(t, walker.ReasonBinary, out.Reason)
	after, err := os.ReadFile(c.Path)
	require.NoError(t, err)
	assert.Equal(t, content, after)
}

func TestProcessInvalidUTF8IsSkipped(t *testing.T) {
	dir := t.TempDir()
	c := writeFile(t, dir, "latin1.txt", []byte("caf\xe9 111"))

	out := newProcessor(t, "111", "222").Process(c)
	assert.Equal(t, KindSkipped, out.Kind)
	assert.Equal(t, walker.ReasonBinary, out.Reason)
}

func TestProcessSizeLimit(t *testing.T) {
	dir := t.TempDir()
	c := writeFile(t, dir, "big.txt", []byte("111 111 111 111"))

	out := newProcessor(t, "111", "222", WithMaxFileSize(4)).Process(c)
	assert.Equal(t, KindSkipped, out.Kind)
	assert.Equal(t, walker.ReasonSizeLimit, out.Reason)
	assert.Equal(t, "111 111 111 111", readString(t, c.Path))
}

func TestProcessMissingFileFails(t *testing.T) {
	out := newProcessor(t, "a", "b").Process(walker.Candidate{
		Path:    filepath.Join(t.TempDir(), "gone.txt"),
		RelPath: "gone.txt",
	})
	assert.Equal(t, KindFailed, out.Kind)
	assert.True(t, errors.Is(out.Err, os.ErrNotExist))
}

func TestProcessMatchTimeoutFails(t *testing.T) {
	dir := t.TempDir()
	original := "b " + strings.Repeat("a", 40) + "!"
	c := writeFile(t, dir, "slow.txt", []byte(original))

	p, err := pattern.Compile(`b|(a+)+$`, "X",
		pattern.WithEngine(pattern.EngineRegexp2),
		pattern.WithTimeout(50*time.Millisecond),
	)
	require.NoError(t, err)

	for _, dryRun := range []bool{false, true} {
		out := New(p, WithDryRun(dryRun)).Process(c)

		assert.Equal(t, KindFailed, out.Kind)
		assert.True(t, errors.Is(out.Err, pattern.ErrMatch))
		assert.Contains(t, out.Err.Error(), "slow.txt")
		assert.False(t, out.Written)
		assert.Equal(t, original, readString(t, c.Path), "file is byte-identical")
		assert.Equal(t, []string{"slow.txt"}, dirEntries(t, dir))
	}
}

func TestProcessRegexp2NamedGroups(t *testing.T) {
	dir := t.TempDir()
	c := writeFile(t, dir, "kv.txt", []byte("a=1\nb=2\n"))

	p, err := pattern.Compile(`(?<key>\w+)=(?<val>\w+)`, "$val=$key", pattern.WithEngine(pattern.EngineRegexp2))
	require.NoError(t, err)

	out := New(p).Process(c)
	require.NoError(t, out.Err)
	assert.Equal(t, KindModified, out.Kind)
	assert.Equal(t, "1=a\n2=b\n", readString(t, c.Path))
}

func TestProcessMatchPreview(t *testing.T) {
	dir := t.TempDir()
	c := writeFile(t, dir, "test.txt", []byte("111 111 111"))

	out := newProcessor(t, "111", "222", WithDryRun(true), WithMatchPreview(2)).Process(c)

	assert.Equal(t, KindModified, out.Kind)
	assert.Equal(t, 3, out.Replacements)
	assert.Equal(t, []pattern.Replacement{{Match: "111", With: "222"}, {Match: "111", With: "222"}}, out.Matches)

	out = newProcessor(t, "111", "222", WithDryRun(true)).Process(c)
	assert.Nil(t, out.Matches, "no preview unless asked for")
}

func TestProcessRenameFailureLeavesOriginal(t *testing.T) {
	dir := t.TempDir()
	c := writeFile(t, dir, "test.txt", []byte("Hello 111"))

	proc := newProcessor(t, "111", "222")
	var tmpSeen string
	proc.rename = func(oldpath, newpath string) error {
		tmpSeen = oldpath
		_, err := os.Stat(oldpath)
		require.NoError(t, err, "temporary file exists before rename")
		return errors.New("simulated rename failure")
	}

	out := proc.Process(c)

	assert.Equal(t, KindFailed, out.Kind)
	assert.Contains(t, out.Err.Error(), "simulated rename failure")
	assert.Equal(t, "Hello 111", readString(t, c.Path))
	assert.NotEmpty(t, tmpSeen)
	assert.Equal(t, dir, filepath.Dir(tmpSeen), "temporary file lives next to the original")
	_, err := os.Stat(tmpSeen)
	assert.True(t, errors.Is(err, os.ErrNotExist), "temporary file removed")
	assert.Equal(t, []string{"test.txt"}, dirEntries(t, dir))
}

func TestProcessUnwritableDirectoryFails(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("permissions are not enforced for root")
	}
	dir := t.TempDir()
	c := writeFile(t, dir, "test.txt", []byte("111"))
	require.NoError(t, os.Chmod(dir, 0o555))
	t.Cleanup(func() { _ = os.Chmod(dir, 0o755) })

	out := newProcessor(t, "111", "222").Process(c)

	assert.Equal(t, KindFailed, out.Kind)
	assert.Equal(t, "111", readString(t, c.Path))
}

func TestProcessPreservesMode(t *testing.T) {
	dir := t.TempDir()
	c := writeFile(t, dir, "run.sh", []byte("echo 111\n"))
	require.NoError(t, os.Chmod(c.Path, 0o750))

	out := newProcessor(t, "111", "222").Process(c)
	require.Equal(t, KindModified, out.Kind)

	info, err := os.Stat(c.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o750), info.Mode().Perm())
}

func TestProcessIdenticalReplacementSkipsWrite(t *testing.T) {
	dir := t.TempDir()
	c := writeFile(t, dir, "same.txt", []byte("abc abc"))
	before, err := os.Stat(c.Path)
	require.NoError(t, err)

	out := newProcessor(t, "abc", "abc").Process(c)

	assert.Equal(t, KindModified, out.Kind)
	assert.Equal(t, 2, out.Replacements)
	assert.False(t, out.Written)
	after, err := os.Stat(c.Path)
	require.NoError(t, err)
	assert.True(t, os.SameFile(before, after))
}

func TestProcessUTF8BOM(t *testing.T) {
	dir := t.TempDir()
	c := writeFile(t, dir, "bom.txt", append([]byte{0xEF, 0xBB, 0xBF}, "x 111"...))

	out := newProcessor(t, "111", "222").Process(c)

	require.Equal(t, KindModified, out.Kind)
	assert.Equal(t, EncodingUTF8BOM, out.Encoding)
	assert.Equal(t, "\xEF\xBB\xBFx 222", readString(t, c.Path))
}

func TestProcessUTF16RoundTrip(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	raw, err := enc.Bytes([]byte("name = 111\r\n"))
	require.NoError(t, err)

	dir := t.TempDir()
	c := writeFile(t, dir, "utf16.txt", raw)

	out := newProcessor(t, "111", "222").Process(c)
	require.Equal(t, KindModified, out.Kind, "outcome: %+v", out)
	assert.Equal(t, EncodingUTF16LE, out.Encoding)

	written, err := os.ReadFile(c.Path)
	require.NoError(t, err)
	want, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().Bytes([]byte("name = 222\r\n"))
	require.NoError(t, err)
	assert.Equal(t, want, written)
}

func TestProcessDiff(t *testing.T) {
	dir := t.TempDir()
	c := writeFile(t, dir, "a.txt", []byte("one\ntwo 111\nthree\n"))

	out := newProcessor(t, "111", "222", WithDiff(true), WithDryRun(true)).Process(c)

	require.Equal(t, KindModified, out.Kind)
	assert.Contains(t, out.Diff, "--- a/a.txt")
	assert.Contains(t, out.Diff, "+++ b/a.txt")
	assert.Contains(t, out.Diff, "-two 111")
	assert.Contains(t, out.Diff, "+two 222")
}

func TestProcessSymlinkSkipped(t *testing.T) {
	dir := t.TempDir()
	target := writeFile(t, dir, "real.txt", []byte("111"))
	link := filepath.Join(dir, "link.txt")
	if err := os.Symlink(target.Path, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	out := newProcessor(t, "111", "222").Process(walker.Candidate{Path: link, RelPath: "link.txt"})
	assert.Equal(t, KindSkipped, out.Kind)
	assert.Equal(t, walker.ReasonNotRegular, out.Reason)
	assert.Equal(t, "111", readString(t, target.Path))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "modified", KindModified.String())
	text, err := KindFailed.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "failed", string(text))
	assert.Equal(t, "unknown", Kind(42).String())
}
