// Package mcpserver exposes the review engine as Model Context Protocol tools.
package mcpserver

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/reviewer/internal/service/analysis"
	"github.com/panbanda/reviewer/pkg/config"
)

// Server wraps the MCP server and registers the review tools.
type Server struct {
	server   *mcp.Server
	config   *config.Config
	analysis *analysis.Service
}

// NewServer creates a new MCP server with all tools and prompts registered.
// A nil cfg uses the defaults.
func NewServer(version string, cfg *config.Config) *Server {
	if version == "" {
		version = "dev"
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "reviewer",
			Version: version,
		},
		nil,
	)

	s := &Server{
		server:   server,
		config:   cfg,
		analysis: analysis.New(analysis.WithConfig(cfg)),
	}
	s.registerTools()
	s.registerPrompts()
	return s
}

// Run starts the MCP server over stdio transport.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_code",
		Description: describeAnalyzeCode(),
	}, s.handleAnalyzeCode)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "analyze_files",
		Description: describeAnalyzeFiles(),
	}, s.handleAnalyzeFiles)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "detect_language",
		Description: describeDetectLanguage(),
	}, s.handleDetectLanguage)
}
