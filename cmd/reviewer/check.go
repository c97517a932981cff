package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/reviewer/internal/output"
	"github.com/panbanda/reviewer/internal/service/analysis"
	"github.com/panbanda/reviewer/pkg/language"
	"github.com/panbanda/reviewer/pkg/source"
)

// stdinName labels a buffer read from standard input.
const stdinName = "<stdin>"

func checkCmd() *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Review a single buffer from a file or standard input",
		Description: `Reads one buffer and reviews it. The language comes from --language,
then from the --file extension, and defaults to Swift.

Examples:
  reviewer check --file Sources/App.swift
  cat snippet.js | reviewer check --language JavaScript
  pbpaste | reviewer check -f json`,
		Flags: append(selectionFlags(),
			&cli.StringFlag{
				Name:  "file",
				Usage: "Read the buffer from this file instead of standard input",
			},
			&cli.StringFlag{
				Name:    "language",
				Aliases: []string{"l"},
				Usage:   "Language label, e.g. Swift, JavaScript, Python",
			},
			&cli.StringFlag{
				Name:  "fail-on",
				Usage: "Exit with status 2 when a finding at or above this severity exists",
			},
		),
		Action: runCheckCmd,
	}
}

// readBuffer returns the name and normalized text of the buffer to check.
func readBuffer(path string, stdin io.Reader) (string, string, error) {
	var src source.ContentSource
	name := path
	if path == "" {
		name = stdinName
		mem, err := source.NewReader(name, stdin)
		if err != nil {
			return "", "", err
		}
		src = mem
	} else {
		src = source.NewFilesystem()
	}

	text, err := source.Text(src, name)
	if err != nil {
		return "", "", err
	}
	return name, text, nil
}

// bufferLanguage resolves the language label for a checked buffer.
func bufferLanguage(explicit, name string) string {
	if label := strings.TrimSpace(explicit); label != "" {
		return label
	}
	if name == stdinName {
		return language.Detect("")
	}
	return language.Detect(name)
}

func runCheckCmd(c *cli.Context) error {
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

	name, text, err := readBuffer(c.String("file"), os.Stdin)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	svc := analysis.New(analysis.WithConfig(cfg))
	result, err := svc.AnalyzeCode(ctx, text, bufferLanguage(c.String("language"), name), opts)
	if err != nil {
		return err
	}

	formatter, err := newFormatter(c, cfg)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if err := formatter.Output(output.NewFileView(name, result)); err != nil {
		return err
	}

	if failEnabled && result.MaxSeverity().AtLeast(failOn) && len(result.Issues) > 0 {
		return cli.Exit(fmt.Sprintf("findings at or above %s", failOn), 2)
	}
	return nil
}
