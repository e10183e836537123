package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scerrors "github.com/codescout/codescout/internal/errors"
	"github.com/codescout/codescout/internal/store"
)

func newIndexedEngine(t *testing.T, files map[string]string) *Engine {
	t.Helper()
	root := t.TempDir()
	st := store.New(root, store.Options{})
	require.NoError(t, st.Initialize())

	ctx := context.Background()
	for rel, content := range files {
		path := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		st.IndexFile(ctx, path)
	}
	return New(st, nil)
}

// Searching for an identifier unique to one chunk ranks it first.
func TestSearch_UniqueIdentifierRanksFirst(t *testing.T) {
	e := newIndexedEngine(t, map[string]string{
		"auth.go":  "func validateCredentials(user string) bool {\n\treturn true\n}\n",
		"other.go": "func formatOutput(rows []string) string {\n\treturn \"\"\n}\n",
	})

	results, err := e.Search("validateCredentials", 1)

	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "validateCredentials", results[0].Chunk.Signature)
	assert.Greater(t, results[0].Score, 0.0)
}

func TestSearch_TopKZeroFails(t *testing.T) {
	e := newIndexedEngine(t, nil)

	_, err := e.Search("anything", 0)
	require.Error(t, err)
	assert.True(t, scerrors.HasCode(err, scerrors.ErrCodeInvalidInput))

	_, err = e.Search("anything", -3)
	assert.Error(t, err)
}

// Query tokenization matches index tokenization, so case differences and
// punctuation in the query still hit.
func TestSearch_QueryNormalization(t *testing.T) {
	e := newIndexedEngine(t, map[string]string{
		"svc.go": "func rebuildIndex() {\n\treturn\n}\n",
	})

	for _, q := range []string{"rebuildIndex", "REBUILDINDEX", "rebuildIndex()", "call: rebuildindex!"} {
		results, err := e.Search(q, 5)
		require.NoError(t, err)
		require.NotEmpty(t, results, "query %q", q)
		assert.Equal(t, "rebuildIndex", results[0].Chunk.Signature)
	}
}

// Length normalization ranks a small dense chunk over a large chunk with
// the same single match.
func TestSearch_DenseChunkOutranksLarge(t *testing.T) {
	large := "func process() {\n"
	for i := 0; i < 30; i++ {
		large += "\tvariableNumber" + string(rune('a'+i%26)) + " := computeSomething(inputValueHere)\n"
	}
	large += "}\n"

	e := newIndexedEngine(t, map[string]string{
		"small.go": "func process() {}\n",
		"large.go": large,
	})

	results, err := e.Search("process", 2)

	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "small.go", results[0].Chunk.RelativePath)
	assert.Greater(t, results[0].Score, results[1].Score)
}

// Scores are not summed across query keywords; the max single score wins.
func TestSearch_MaxNotSumAcrossKeywords(t *testing.T) {
	e := newIndexedEngine(t, map[string]string{
		"multi.go": "func alphaToken() {\n\tbetaToken()\n}\n",
	})

	single, err := e.Search("alphatoken", 5)
	require.NoError(t, err)
	require.Len(t, single, 1)

	double, err := e.Search("alphatoken betatoken", 5)
	require.NoError(t, err)
	require.Len(t, double, 1)

	// Two of the chunk's keywords now match, so the score grows linearly
	// with matches, not with how many keyword lookups reached the chunk.
	assert.InDelta(t, single[0].Score*2, double[0].Score, 1e-9)
}

func TestSearch_DeterministicTieBreak(t *testing.T) {
	e := newIndexedEngine(t, map[string]string{
		"bbb.go": "func duplicated() {}\n",
		"aaa.go": "func duplicated() {}\n",
	})

	for i := 0; i < 3; i++ {
		results, err := e.Search("duplicated", 5)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "aaa.go", results[0].Chunk.RelativePath)
		assert.Equal(t, "bbb.go", results[1].Chunk.RelativePath)
	}
}

func TestSearch_NoMatches(t *testing.T) {
	e := newIndexedEngine(t, map[string]string{
		"a.go": "func something() {}\n",
	})

	results, err := e.Search("nonexistentidentifier", 5)
	require.NoError(t, err)
	assert.Empty(t, results)

	// Queries with no extractable keywords (all tokens too short).
	results, err = e.Search("a b c", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_TopKLimits(t *testing.T) {
	files := make(map[string]string)
	for _, name := range []string{"a", "b", "c", "d", "e", "f"} {
		files[name+".go"] = "func shared" + name + "() {\n\tsharedtoken()\n}\n"
	}
	e := newIndexedEngine(t, files)

	results, err := e.Search("sharedtoken", 3)
	require.NoError(t, err)
	assert.Len(t, results, 3)

	results, err = e.Search("sharedtoken", 100)
	require.NoError(t, err)
	assert.Len(t, results, 6)
}
