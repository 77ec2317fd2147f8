package coupling

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"github.com/RyanBlaney/sonido-triad/algorithms/common"
	"github.com/RyanBlaney/sonido-triad/logging"
	"golang.org/x/sync/semaphore"
)

// FileError records a file the batch could not analyze
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// BatchResult holds the records of one batch in input order. Failed files are
// listed in Failures and have no record.
type BatchResult struct {
	RunID    string       `json:"run_id"`
	Results  []*Result    `json:"results"`
	Failures []*FileError `json:"-"`
}

// AnalyzeFiles analyzes paths with at most BatchWorkers files in flight. A
// failing file is logged and skipped; the batch only fails when ctx is done.
func (a *Analyzer) AnalyzeFiles(ctx context.Context, paths []string) (*BatchResult, error) {
	logger := a.logger.WithFields(logging.Fields{
		"function": "AnalyzeFiles",
		"files":    len(paths),
	})

	workers := a.config.BatchWorkers
	if workers <= 0 {
		workers = 1
	}
	sem := semaphore.NewWeighted(int64(workers))

	results := make([]*Result, len(paths))
	failures := make([]*FileError, len(paths))

	var wg sync.WaitGroup
	for i, path := range paths {
		if err := sem.Acquire(ctx, 1); err != nil {
			wg.Wait()
			return nil, err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer sem.Release(1)

			res, err := a.AnalyzeFile(ctx, path)
			if err != nil {
				logger.Error(err, "Failed to analyze file", logging.Fields{"file": path})
				failures[i] = &FileError{Path: path, Err: err}
				return
			}
			results[i] = res
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	batch := &BatchResult{RunID: a.runID}
	for i := range paths {
		if results[i] != nil {
			batch.Results = append(batch.Results, results[i])
		}
		if failures[i] != nil {
			batch.Failures = append(batch.Failures, failures[i])
		}
	}

	logger.Info("Batch completed", logging.Fields{
		"analyzed": len(batch.Results),
		"failed":   len(batch.Failures),
	})
	return batch, nil
}

// AnalyzeGlob expands pattern and analyzes the matches in lexical order
func (a *Analyzer) AnalyzeGlob(ctx context.Context, pattern string) (*BatchResult, error) {
	paths, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("bad glob %q: %w", pattern, err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files match %q: %w", pattern, common.ErrInvalidParameter)
	}
	sort.Strings(paths)
	return a.AnalyzeFiles(ctx, paths)
}
