// Package fileproc provides concurrent file processing utilities.
package fileproc

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/sourcegraph/conc/pool"
)

// DefaultWorkerMultiplier is the multiplier applied to NumCPU for worker count.
const DefaultWorkerMultiplier = 2

// ProcessingError represents an error that occurred while processing a file.
type ProcessingError struct {
	Path string
	Err  error
}

func (e *ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *ProcessingError) Unwrap() error {
	return e.Err
}

// ProgressFunc is called after each file is processed, successfully or not.
type ProgressFunc func()

// Result pairs a file with the value computed for it.
type Result[T any] struct {
	Path  string
	Value T
}

type options struct {
	workers    int
	onProgress ProgressFunc
}

// Option configures Map.
type Option func(*options)

// WithWorkers bounds concurrency. Values <= 0 use 2x NumCPU.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.workers = n
	}
}

// WithProgress registers a callback invoked once per file.
func WithProgress(fn ProgressFunc) Option {
	return func(o *options) {
		o.onProgress = fn
	}
}

// Map runs fn over files on a bounded worker pool and returns the successful
// results sorted by path. Failed files do not stop the batch; their errors are
// returned together as a *multierror.Error of *ProcessingError, also sorted
// by path. Files not yet started when ctx is cancelled fail with ctx.Err().
func Map[T any](ctx context.Context, files []string, fn func(ctx context.Context, path string) (T, error), opts ...Option) ([]Result[T], error) {
	if len(files) == 0 {
		return nil, nil
	}

	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.workers <= 0 {
		o.workers = runtime.NumCPU() * DefaultWorkerMultiplier
	}

	var (
		mu      sync.Mutex
		results = make([]Result[T], 0, len(files))
		errs    []*ProcessingError
	)

	p := pool.New().WithMaxGoroutines(o.workers).WithContext(ctx)
	for _, path := range files {
		p.Go(func(ctx context.Context) error {
			if o.onProgress != nil {
				defer o.onProgress()
			}

			var (
				value T
				err   = ctx.Err()
			)
			if err == nil {
				value, err = fn(ctx, path)
			}

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, &ProcessingError{Path: path, Err: err})
				return nil
			}
			results = append(results, Result[T]{Path: path, Value: value})
			return nil
		})
	}
	_ = p.Wait() // workers never return errors; failures are collected above

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	if len(errs) == 0 {
		return results, nil
	}

	sort.Slice(errs, func(i, j int) bool { return errs[i].Path < errs[j].Path })
	var merr *multierror.Error
	for _, e := range errs {
		merr = multierror.Append(merr, e)
	}
	return results, merr
}

// Values strips paths from results.
func Values[T any](results []Result[T]) []T {
	out := make([]T, len(results))
	for i, r := range results {
		out[i] = r.Value
	}
	return out
}
