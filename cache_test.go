package notemaster

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestionCacheWriteAndLoad(t *testing.T) {
	dir := t.TempDir()
	questions := []Question{
		{Text: "What is ATP?", Answer: "The cell's energy currency."},
		{Text: "Where is it made?", Answer: "In the mitochondria."},
	}

	require.NoError(t, WriteQuestionCache(dir, "Biology", questions))

	loaded, err := LoadCachedQuestions(dir, "Biology")
	require.NoError(t, err)
	assert.Equal(t, questions, loaded)
}

func TestQuestionCacheOverwrites(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteQuestionCache(dir, "Biology", []Question{{Text: "old", Answer: "old"}}))
	require.NoError(t, WriteQuestionCache(dir, "Biology", []Question{{Text: "new", Answer: "new"}}))

	loaded, err := LoadCachedQuestions(dir, "Biology")
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, "new", loaded[0].Text)
}

func TestQuestionCacheMissingFileIsEmpty(t *testing.T) {
	loaded, err := LoadCachedQuestions(t.TempDir(), "never generated")
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestQuestionCacheTitleWithSeparator(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteQuestionCache(dir, "Unit 1/Intro", []Question{{Text: "q", Answer: "a"}}))

	// The file lands inside the cache directory, not a subdirectory.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, filepath.Base(entries[0].Name()), entries[0].Name())

	loaded, err := LoadCachedQuestions(dir, "Unit 1/Intro")
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}

func TestQuestionCacheCorruptFileErrors(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Biology.json"), []byte("not json"), 0644))

	_, err := LoadCachedQuestions(dir, "Biology")
	assert.Error(t, err)
}
