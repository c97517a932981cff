package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/pelletier/go-toml"
	"github.com/urfave/cli/v2"

	"github.com/panbanda/reviewer/pkg/config"
)

func configCmd() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Configuration management commands",
		Subcommands: []*cli.Command{
			{
				Name:      "validate",
				Usage:     "Validate a configuration file",
				ArgsUsage: "[file]",
				Description: `Validates a reviewer configuration file against the schema and for
invalid values. Unknown keys are reported, unlike a normal load which
ignores them.

Examples:
  reviewer config validate                  # Validates default config locations
  reviewer config validate reviewer.toml    # Validates specific file
  reviewer -c .reviewer/reviewer.yaml config validate`,
				Action: runConfigValidateCmd,
			},
			{
				Name:  "show",
				Usage: "Show the effective configuration",
				Description: `Shows the merged configuration from defaults and config file as TOML.

Examples:
  reviewer config show
  reviewer -c reviewer.toml config show`,
				Action: runConfigShowCmd,
			},
			{
				Name:  "init",
				Usage: "Write a default configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "path",
						Value: "reviewer.toml",
						Usage: "Config file to create",
					},
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing config file",
					},
				},
				Action: runConfigInitCmd,
			},
			{
				Name:   "schema",
				Usage:  "Print the JSON schema for configuration files",
				Action: runConfigSchemaCmd,
			},
		},
	}
}

// configPath picks the file to validate: an argument, then --config, then
// the first config file found in the working directory.
func configPath(c *cli.Context) string {
	if c.Args().Len() > 0 {
		return c.Args().First()
	}
	if path := c.String("config"); path != "" {
		return path
	}
	return config.FindConfigFile(".")
}

func runConfigValidateCmd(c *cli.Context) error {
	path := configPath(c)
	if path == "" {
		color.Yellow("No config file found. Default configuration is valid.")
		return nil
	}

	if err := config.ValidateFile(path); err != nil {
		color.Red("Configuration validation failed:")
		fmt.Printf("  - %s\n", err)
		return cli.Exit("", 1)
	}

	color.Green("Configuration valid: %s", path)
	return nil
}

func runConfigShowCmd(c *cli.Context) error {
	result, err := loadResult(c)
	if err != nil {
		return err
	}

	if result.Source != "" {
		fmt.Printf("# Configuration from: %s\n\n", result.Source)
	} else {
		fmt.Println("# Default configuration (no config file found)")
	}

	content, err := toml.Marshal(result.Config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Print(string(content))
	return nil
}

func runConfigInitCmd(c *cli.Context) error {
	path := c.String("path")

	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fmt.Errorf("config file %q already exists (use --force to overwrite)", path)
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %q: %w", dir, err)
		}
	}

	content, err := generateDefaultConfig()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	color.Green("Created %s", path)
	fmt.Println("Edit this file to customize review settings.")
	return nil
}

func runConfigSchemaCmd(c *cli.Context) error {
	return writeSchema(os.Stdout)
}

func writeSchema(w io.Writer) error {
	_, err := w.Write(config.Schema())
	return err
}

func generateDefaultConfig() (string, error) {
	content, err := toml.Marshal(config.DefaultConfig())
	if err != nil {
		return "", fmt.Errorf("failed to marshal config to TOML: %w", err)
	}

	var buf strings.Builder
	buf.WriteString("# Reviewer configuration\n")
	buf.WriteString("# Documentation: https://github.com/panbanda/reviewer\n\n")
	buf.Write(content)
	return buf.String(), nil
}
