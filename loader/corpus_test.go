package loader

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// corpusFixture writes three distinct score files and returns their paths in
// deliberately unsorted submission order.
func corpusFixture(t *testing.T) []string {
	t.Helper()
	dir := t.TempDir()
	c := writeScoreFile(t, dir, "c_piece.json", []NoteEvent{{Onset: 0, Duration: 2, Pitch: 60}})
	a := writeScoreFile(t, dir, "a_piece.json", []NoteEvent{{Onset: 0, Duration: 2, Pitch: 64}})
	b := writeScoreFile(t, dir, "b_piece.json", []NoteEvent{{Onset: 0, Duration: 2, Pitch: 67}})
	return []string{c, a, b}
}

func TestLoadCorpusSequential(t *testing.T) {
	paths := corpusFixture(t)
	l := New(DefaultConfig())

	tensor, ordered, err := l.LoadCorpus(context.Background(), paths, 3, nil)
	require.NoError(t, err)
	require.Len(t, tensor, 3)
	require.Len(t, ordered, 3)

	// Default sort key is the identity on the path string.
	assert.Contains(t, ordered[0], "a_piece")
	assert.Contains(t, ordered[1], "b_piece")
	assert.Contains(t, ordered[2], "c_piece")

	for i, pcd := range tensor {
		assert.Len(t, pcd, 6, "scape %d must have k entries", i)
		for _, entry := range pcd {
			assert.Len(t, entry, 12)
		}
	}
}

func TestLoadCorpusParallelMatchesSequential(t *testing.T) {
	paths := corpusFixture(t)
	l := New(DefaultConfig())

	sequential, seqPaths, err := l.LoadCorpus(context.Background(), paths, 4,
		&CorpusConfig{Parallel: false})
	require.NoError(t, err)

	parallel, parPaths, err := l.LoadCorpus(context.Background(), paths, 4,
		&CorpusConfig{Parallel: true, Workers: 2})
	require.NoError(t, err)

	assert.Equal(t, seqPaths, parPaths, "path ordering must not depend on execution mode")
	assert.Equal(t, sequential, parallel, "tensors must not depend on execution mode")
}

func TestLoadCorpusCustomSortKey(t *testing.T) {
	paths := corpusFixture(t)
	keys := map[string]string{paths[0]: "1", paths[1]: "3", paths[2]: "2"}

	l := New(DefaultConfig())
	for _, parallel := range []bool{false, true} {
		_, ordered, err := l.LoadCorpus(context.Background(), paths, 2, &CorpusConfig{
			Parallel: parallel,
			SortKey:  func(p string) string { return keys[p] },
		})
		require.NoError(t, err)
		assert.Contains(t, ordered[0], "c_piece", "parallel=%v", parallel)
		assert.Contains(t, ordered[1], "b_piece", "parallel=%v", parallel)
		assert.Contains(t, ordered[2], "a_piece", "parallel=%v", parallel)
	}
}

func TestLoadCorpusProgress(t *testing.T) {
	paths := corpusFixture(t)
	l := New(DefaultConfig())

	var mu sync.Mutex
	var counts []int
	var totals []int
	progress := func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		counts = append(counts, done)
		totals = append(totals, total)
	}

	_, _, err := l.LoadCorpus(context.Background(), paths, 2,
		&CorpusConfig{Progress: progress})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, counts, "sequential progress counts completed files in order")

	counts = nil
	_, _, err = l.LoadCorpus(context.Background(), paths, 2,
		&CorpusConfig{Parallel: true, Progress: progress})
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 2, 3}, counts, "parallel progress reaches the total exactly once per file")

	for _, total := range totals {
		assert.Equal(t, len(paths), total)
	}
}

func TestLoadCorpusAbortsOnFirstFailure(t *testing.T) {
	paths := corpusFixture(t)
	paths = append(paths, "/does/not/exist.json")

	l := New(DefaultConfig())
	for _, parallel := range []bool{false, true} {
		tensor, ordered, err := l.LoadCorpus(context.Background(), paths, 2,
			&CorpusConfig{Parallel: parallel})
		assert.ErrorIs(t, err, ErrFileNotFound, "parallel=%v", parallel)
		assert.Nil(t, tensor, "parallel=%v", parallel)
		assert.Nil(t, ordered, "parallel=%v", parallel)
	}
}

func TestLoadCorpusEmpty(t *testing.T) {
	l := New(DefaultConfig())
	tensor, ordered, err := l.LoadCorpus(context.Background(), nil, 2, nil)
	require.NoError(t, err)
	assert.Empty(t, tensor)
	assert.Empty(t, ordered)
}
