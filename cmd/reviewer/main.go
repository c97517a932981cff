package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/reviewer/internal/cache"
	"github.com/panbanda/reviewer/internal/logging"
	"github.com/panbanda/reviewer/internal/output"
	"github.com/panbanda/reviewer/pkg/config"
)

var (
	version = "dev"
	commit  = "none"    //nolint:unused // set via ldflags at build time
	date    = "unknown" //nolint:unused // set via ldflags at build time
)

// configKey is the App.Metadata key caching the loaded *config.LoadResult.
const configKey = "config"

// getPaths returns paths from positional args, defaulting to ["."]
func getPaths(c *cli.Context) []string {
	if c.Args().Len() > 0 {
		return c.Args().Slice()
	}
	return []string{"."}
}

func newApp() *cli.App {
	var verbosity int

	return &cli.App{
		Name:     "reviewer",
		Usage:    "Heuristic code review for security, bugs, performance and style",
		Version:  version,
		Metadata: make(map[string]interface{}),
		Description: `Reviewer scans source files with lightweight text rules and reports
insecure storage, script injection sinks, unfinished work markers,
main-thread blocking calls, long lines and missing documentation.

Each file gets a score from 10 down to 0 based on its findings.`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to config file (TOML, YAML, or JSON)",
				EnvVars: []string{"REVIEWER_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, markdown, toon, yaml",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write output to file",
			},
			&cli.BoolFlag{
				Name:  "no-cache",
				Usage: "Disable caching",
			},
			&cli.BoolFlag{
				Name:  "no-color",
				Usage: "Disable colored output",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable verbose logging (repeat for debug)",
				Count: &verbosity,
			},
		},
		// main decides the exit status; the default handler would exit mid-Run.
		ExitErrHandler: func(*cli.Context, error) {},
		Before: func(c *cli.Context) error {
			logging.InitLogging(verbosity)
			return nil
		},
		Commands: []*cli.Command{
			analyzeCmd(),
			checkCmd(),
			languageCmd(),
			watchCmd(),
			configCmd(),
			cacheCmd(),
			mcpCmd(),
		},
	}
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		if exitErr, ok := err.(cli.ExitCoder); ok {
			if msg := exitErr.Error(); msg != "" {
				color.Red("%s", msg)
			}
			os.Exit(exitErr.ExitCode())
		}
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

// loadResult loads the --config file, or the first config file found in the
// working directory, once per run.
func loadResult(c *cli.Context) (*config.LoadResult, error) {
	if r, ok := c.App.Metadata[configKey].(*config.LoadResult); ok {
		return r, nil
	}

	var opts []config.LoadOption
	if path := c.String("config"); path != "" {
		opts = append(opts, config.WithPath(path))
	}
	result, err := config.LoadConfig(opts...)
	if err != nil {
		return nil, err
	}
	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]interface{})
	}
	c.App.Metadata[configKey] = result
	return result, nil
}

func loadedConfig(c *cli.Context) (*config.Config, error) {
	r, err := loadResult(c)
	if err != nil {
		return nil, err
	}
	return r.Config, nil
}

// outputFormat picks --format, then the --output extension, then the
// configured format.
func outputFormat(c *cli.Context, cfg *config.Config) output.Format {
	if f := c.String("format"); f != "" {
		return output.ParseFormat(f)
	}
	if f, ok := output.FormatFromPath(c.String("output")); ok {
		return f
	}
	return output.ParseFormat(cfg.Output.Format)
}

func newFormatter(c *cli.Context, cfg *config.Config) (*output.Formatter, error) {
	colored := cfg.Output.Color && !c.Bool("no-color")
	return output.NewFormatter(outputFormat(c, cfg), c.String("output"), colored)
}

// openCache returns the result cache, disabled by --no-cache or config.
func openCache(c *cli.Context, cfg *config.Config) (*cache.Cache, error) {
	enabled := cfg.Cache.Enabled && !c.Bool("no-cache")
	ch, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, enabled, cache.Fingerprint(cfg, version))
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}
	return ch, nil
}
