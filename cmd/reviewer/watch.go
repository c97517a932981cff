package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/reviewer/internal/output"
	"github.com/panbanda/reviewer/internal/service/analysis"
	"github.com/panbanda/reviewer/pkg/watch"
)

func watchCmd() *cli.Command {
	return &cli.Command{
		Name:      "watch",
		Usage:     "Watch for file changes and re-review them",
		ArgsUsage: "[path]",
		Flags: append(selectionFlags(),
			&cli.DurationFlag{
				Name:  "debounce",
				Value: watch.DefaultDebounce,
				Usage: "How long a file must stay unchanged before it is reviewed",
			},
		),
		Action: runWatchCmd,
	}
}

// reviewChanged returns a watch callback that reviews each settled batch of
// files together and prints their findings with formatter.
func reviewChanged(ctx context.Context, svc *analysis.Service, opts analysis.Options, formatter *output.Formatter) watch.Callback {
	return func(paths []string) {
		batch, err := svc.AnalyzeFiles(ctx, paths, opts)
		if err != nil {
			formatter.Error("review of %d file(s) failed: %v", len(paths), err)
			return
		}
		for _, e := range batch.Errors {
			formatter.Warning("%s: %s", e.File, e.Error)
		}
		for _, f := range batch.Files {
			if err := formatter.Output(&output.FileView{Report: f}); err != nil {
				formatter.Error("%s: %v", f.File, err)
			}
		}
	}
}

func runWatchCmd(c *cli.Context) error {
	cfg, err := loadedConfig(c)
	if err != nil {
		return err
	}
	opts, err := selectionOptions(c)
	if err != nil {
		return err
	}

	absPath, err := filepath.Abs(getPaths(c)[0])
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	watcher, err := watch.NewWatcher(absPath, cfg, c.Duration("debounce"))
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Stop()

	resultCache, err := openCache(c, cfg)
	if err != nil {
		return err
	}
	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	ctx, stop := signalContext()
	defer stop()

	svc := analysis.New(analysis.WithConfig(cfg), analysis.WithCache(resultCache))
	watcher.SetCallback(reviewChanged(ctx, svc, opts, formatter))

	color.Cyan("Watching %s (Ctrl+C to stop)", absPath)
	err = watcher.Start(ctx)
	if errors.Is(err, context.Canceled) {
		fmt.Println("\nStopping watch...")
		return nil
	}
	return err
}
