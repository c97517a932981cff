package fileproc

import (
	"context"

	"github.com/panbanda/reviewer/pkg/source"
)

// MapSource is Map for callers that work on file text. Each file is read from
// src and normalized with source.Text before fn sees it; read failures are
// collected like any other per-file error.
func MapSource[T any](ctx context.Context, files []string, src source.ContentSource, fn func(ctx context.Context, path, text string) (T, error), opts ...Option) ([]Result[T], error) {
	return Map(ctx, files, func(ctx context.Context, path string) (T, error) {
		text, err := source.Text(src, path)
		if err != nil {
			var zero T
			return zero, err
		}
		return fn(ctx, path, text)
	}, opts...)
}
