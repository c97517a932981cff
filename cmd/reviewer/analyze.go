package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/reviewer/internal/progress"
	"github.com/panbanda/reviewer/internal/service/analysis"
	scannerSvc "github.com/panbanda/reviewer/internal/service/scanner"
	"github.com/panbanda/reviewer/pkg/config"
	"github.com/panbanda/reviewer/pkg/models"
	"github.com/panbanda/reviewer/pkg/report"
)

func selectionFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "depth",
			Aliases: []string{"d"},
			Usage:   "Analysis depth: quick, standard, deep",
		},
		&cli.StringSliceFlag{
			Name:    "module",
			Aliases: []string{"m"},
			Usage:   "Run only this module (repeatable): security, bugs, performance, style, maintainability",
		},
	}
}

func analyzeCmd() *cli.Command {
	return &cli.Command{
		Name:      "analyze",
		Aliases:   []string{"a"},
		Usage:     "Review source files and directories",
		ArgsUsage: "[path...]",
		Flags: append(selectionFlags(),
			&cli.BoolFlag{
				Name:  "changed",
				Usage: "Only review files git reports as changed or untracked",
			},
			&cli.StringFlag{
				Name:  "since",
				Usage: "With --changed, also include files changed since this revision",
			},
			&cli.StringFlag{
				Name:  "fail-on",
				Usage: "Exit with status 2 when a finding at or above this severity exists",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Number of files analyzed in parallel (default: CPU count)",
			},
		),
		Action: runAnalyzeCmd,
	}
}

// selectionOptions reads --depth and --module into analysis options.
func selectionOptions(c *cli.Context) (analysis.Options, error) {
	var opts analysis.Options
	if d := c.String("depth"); d != "" {
		depth, err := models.ParseDepth(d)
		if err != nil {
			return opts, err
		}
		opts.Depth = depth
	}
	opts.Modules = c.StringSlice("module")
	return opts, nil
}

// failThreshold returns the --fail-on severity, falling back to the config.
// ok is false when failing is disabled.
func failThreshold(c *cli.Context, cfg *config.Config) (sev models.Severity, ok bool, err error) {
	s := c.String("fail-on")
	if s == "" {
		s = cfg.Analysis.FailOn
	}
	if s == "" {
		return "", false, nil
	}
	sev, err = models.ParseSeverity(s)
	if err != nil {
		return "", false, err
	}
	return sev, true, nil
}

// signalContext is cancelled on Ctrl+C or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runAnalyzeCmd(c *cli.Context) error {
	paths := getPaths(c)
	cfg, err := loadedConfig(c)
	if err != nil {
		return err
	}

	opts, err := selectionOptions(c)
	if err != nil {
		return err
	}
	failOn, failEnabled, err := failThreshold(c, cfg)
	if err != nil {
		return err
	}

	scanner := scannerSvc.New(scannerSvc.WithConfig(cfg))
	var scanResult *scannerSvc.ScanResult
	if c.Bool("changed") {
		scanResult, err = scanner.ScanChanged(paths, c.String("since"))
	} else {
		scanResult, err = scanner.ScanPaths(paths)
	}
	if err != nil {
		return err
	}

	if len(scanResult.Files) == 0 {
		color.Yellow("No source files found")
		return nil
	}

	resultCache, err := openCache(c, cfg)
	if err != nil {
		return err
	}

	svcOpts := []analysis.Option{analysis.WithConfig(cfg), analysis.WithCache(resultCache)}
	if n := c.Int("workers"); n > 0 {
		svcOpts = append(svcOpts, analysis.WithWorkers(n))
	}
	svc := analysis.New(svcOpts...)

	ctx, stop := signalContext()
	defer stop()

	tracker := progress.ForStderr("Reviewing...", len(scanResult.Files), false)
	opts.OnProgress = tracker.Tick
	batch, err := svc.AnalyzeFiles(ctx, scanResult.Files, opts)
	if err != nil {
		tracker.FinishError(err)
		return err
	}
	tracker.FinishSuccess()

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if err := formatter.Output(batch); err != nil {
		return err
	}

	return checkFailOn(batch, failOn, failEnabled)
}

// checkFailOn turns findings at or above the threshold into exit status 2.
func checkFailOn(batch *report.Batch, failOn models.Severity, enabled bool) error {
	if !enabled {
		return nil
	}
	if n := batch.CountAtLeast(failOn); n > 0 {
		return cli.Exit(fmt.Sprintf("%d finding(s) at or above %s", n, failOn), 2)
	}
	return nil
}
