package loader

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/RyanBlaney/sonido-scape/logging"
)

// CorpusConfig controls corpus-level batch loading.
type CorpusConfig struct {
	// Parallel distributes per-file loads across a fixed-size worker pool.
	Parallel bool `json:"parallel"`

	// Workers caps the pool size; zero means runtime.NumCPU().
	Workers int `json:"workers"`

	// SortKey maps each file path to its sort key for the final ordering.
	// The default is the identity on the path string.
	SortKey func(filePath string) string `json:"-"`

	// Progress, if set, is called after each completed file-level load with
	// the running completion count.
	Progress func(done, total int) `json:"-"`
}

// DefaultCorpusConfig returns the default corpus configuration
func DefaultCorpusConfig() *CorpusConfig {
	return &CorpusConfig{
		Parallel: false,
	}
}

// fileScape tags a computed scape with its originating path. Worker
// completion order carries no meaning; identity travels with the result.
type fileScape struct {
	filePath string
	scape    [][]float64
}

// LoadCorpus loads every file at resolution n and stacks the per-file scapes
// into a (files, k, 12) tensor, paired with the file paths in matching order.
// The final ordering is determined solely by SortKey applied to the paths, so
// sequential and parallel runs over the same inputs return identical results.
//
// A failure on any single file aborts the whole load.
func (l *Loader) LoadCorpus(ctx context.Context, filePaths []string, n int, cfg *CorpusConfig) ([][][]float64, []string, error) {
	if cfg == nil {
		cfg = DefaultCorpusConfig()
	}
	sortKey := cfg.SortKey
	if sortKey == nil {
		sortKey = func(filePath string) string { return filePath }
	}

	logger := l.logger.WithFields(logging.Fields{
		"function": "LoadCorpus",
		"files":    len(filePaths),
		"parallel": cfg.Parallel,
	})
	logger.Debug("Starting corpus load")

	results := make([]fileScape, len(filePaths))
	var err error
	if cfg.Parallel {
		err = l.loadParallel(ctx, filePaths, n, cfg, results)
	} else {
		err = l.loadSequential(ctx, filePaths, n, cfg, results)
	}
	if err != nil {
		return nil, nil, err
	}

	// Execution order and result order are decoupled: results are re-sorted
	// by the sort key regardless of how they were produced.
	sort.SliceStable(results, func(i, j int) bool {
		return sortKey(results[i].filePath) < sortKey(results[j].filePath)
	})

	tensor := make([][][]float64, len(results))
	orderedPaths := make([]string, len(results))
	for i, r := range results {
		tensor[i] = r.scape
		orderedPaths[i] = r.filePath
	}

	logger.Debug("Corpus load completed")
	return tensor, orderedPaths, nil
}

func (l *Loader) loadSequential(ctx context.Context, filePaths []string, n int, cfg *CorpusConfig, results []fileScape) error {
	for i, filePath := range filePaths {
		pcd, err := l.Load(ctx, filePath, n)
		if err != nil {
			return fmt.Errorf("loading %s: %w", filePath, err)
		}
		results[i] = fileScape{filePath: filePath, scape: pcd}
		if cfg.Progress != nil {
			cfg.Progress(i+1, len(filePaths))
		}
	}
	return nil
}

func (l *Loader) loadParallel(ctx context.Context, filePaths []string, n int, cfg *CorpusConfig, results []fileScape) error {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var done atomic.Int64
	for i, filePath := range filePaths {
		i, filePath := i, filePath
		g.Go(func() error {
			pcd, err := l.Load(ctx, filePath, n)
			if err != nil {
				return fmt.Errorf("loading %s: %w", filePath, err)
			}
			results[i] = fileScape{filePath: filePath, scape: pcd}
			if cfg.Progress != nil {
				cfg.Progress(int(done.Add(1)), len(filePaths))
			}
			return nil
		})
	}
	return g.Wait()
}
