package gitignore

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch_BasicPatterns(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		path    string
		isDir   bool
		want    bool
	}{
		{"exact file", "secret.txt", "secret.txt", false, true},
		{"exact file nested", "secret.txt", "sub/secret.txt", false, true},
		{"no match", "secret.txt", "public.txt", false, false},
		{"star extension", "*.log", "debug.log", false, true},
		{"star extension nested", "*.log", "logs/debug.log", false, true},
		{"star does not cross slash", "a*.go", "a/b.go", false, false},
		{"question mark", "file?.txt", "file1.txt", false, true},
		{"question mark no match", "file?.txt", "file12.txt", false, false},
		{"char class", "file[0-9].txt", "file7.txt", false, true},
		{"anchored", "/build", "build", true, true},
		{"anchored not nested", "/build", "sub/build", true, false},
		{"internal slash anchors", "doc/frotz", "doc/frotz", true, true},
		{"internal slash not nested", "doc/frotz", "a/doc/frotz", true, false},
		{"double star prefix", "**/logs", "a/b/logs", true, true},
		{"double star middle", "a/**/b", "a/x/y/b", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New()
			m.AddPattern(tt.pattern)
			assert.Equal(t, tt.want, m.Match(tt.path, tt.isDir))
		})
	}
}

func TestMatch_DirOnlyPattern(t *testing.T) {
	m := New()
	m.AddPattern("temp/")

	assert.True(t, m.Match("temp", true))
	assert.False(t, m.Match("temp", false), "dir-only pattern must not match a file")
	assert.True(t, m.Match("temp/file.go", false), "files inside the directory match")
	assert.True(t, m.Match("a/temp/file.go", false))
}

func TestMatch_Negation(t *testing.T) {
	m := New()
	m.AddPattern("*.log")
	m.AddPattern("!important.log")

	assert.True(t, m.Match("debug.log", false))
	assert.False(t, m.Match("important.log", false))
}

func TestMatch_NegationOrderMatters(t *testing.T) {
	m := New()
	m.AddPattern("!important.log")
	m.AddPattern("*.log")

	// The later exclusion wins over the earlier re-include.
	assert.True(t, m.Match("important.log", false))
}

func TestMatch_CommentsAndBlanksIgnored(t *testing.T) {
	m := New()
	m.AddPattern("# a comment")
	m.AddPattern("")
	m.AddPattern("   ")

	assert.False(t, m.Match("# a comment", false))
}

func TestMatch_EscapedSpecials(t *testing.T) {
	m := New()
	m.AddPattern(`\#notacomment`)
	m.AddPattern(`\!notanegation`)

	assert.True(t, m.Match("#notacomment", false))
	assert.True(t, m.Match("!notanegation", false))
}

func TestMatch_BaseScoping(t *testing.T) {
	m := New()
	m.AddPatternWithBase("*.tmp", "sub")

	assert.True(t, m.Match("sub/x.tmp", false))
	assert.False(t, m.Match("x.tmp", false), "scoped rule must not apply outside base")
	assert.False(t, m.Match("other/x.tmp", false))
}

func TestAddFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".gitignore")
	content := "# build output\ndist/\n*.log\n!keep.log\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	m := New()
	require.NoError(t, m.AddFromFile(path, ""))

	assert.True(t, m.Match("dist/bundle.js", false))
	assert.True(t, m.Match("run.log", false))
	assert.False(t, m.Match("keep.log", false))
}

func TestAddFromFile_Missing(t *testing.T) {
	m := New()
	err := m.AddFromFile(filepath.Join(t.TempDir(), "nope"), "")
	assert.Error(t, err)
}
