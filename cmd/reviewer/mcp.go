package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/reviewer/internal/mcpserver"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes the review rules
as tools that LLMs can invoke.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "reviewer": {
        "command": "reviewer",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - analyze_code      Review a single code buffer
  - analyze_files     Review files and directories
  - detect_language   Map paths to language labels`,
		Action: runMCPCmd,
		Subcommands: []*cli.Command{
			{
				Name:   "manifest",
				Usage:  "Print the MCP registry server.json manifest",
				Action: runMCPManifestCmd,
			},
		},
	}
}

func runMCPCmd(c *cli.Context) error {
	cfg, err := loadedConfig(c)
	if err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	return mcpserver.NewServer(version, cfg).Run(ctx)
}

func runMCPManifestCmd(c *cli.Context) error {
	data, err := mcpserver.GenerateManifest(version)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer, string(data))
	return err
}
