package mcpserver

import (
	"bytes"
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/panbanda/reviewer/internal/output"
	"github.com/panbanda/reviewer/internal/service/analysis"
	scannerSvc "github.com/panbanda/reviewer/internal/service/scanner"
	"github.com/panbanda/reviewer/pkg/language"
	"github.com/panbanda/reviewer/pkg/models"
)

// SelectionInput chooses which rule modules run.
type SelectionInput struct {
	Depth   string   `json:"depth,omitempty" jsonschema:"Analysis depth: quick, standard (default) or deep."`
	Modules []string `json:"modules,omitempty" jsonschema:"Run only these modules: security, bugs, performance, style, maintainability. Overrides depth."`
	Format  string   `json:"format,omitempty" jsonschema:"Output format: toon (default), json, yaml or markdown."`
}

// AnalyzeCodeInput is the input of analyze_code.
type AnalyzeCodeInput struct {
	SelectionInput
	Code     string `json:"code" jsonschema:"Source text to review."`
	Language string `json:"language,omitempty" jsonschema:"Language label such as Swift, JavaScript or Python. Defaults to Swift."`
}

// AnalyzeFilesInput is the input of analyze_files.
type AnalyzeFilesInput struct {
	SelectionInput
	Paths []string `json:"paths,omitempty" jsonschema:"Files or directories to review. Defaults to the current directory."`
}

// DetectLanguageInput is the input of detect_language.
type DetectLanguageInput struct {
	Paths []string `json:"paths" jsonschema:"File paths, file URLs or extensions."`
}

// LanguageInfo is one detect_language result.
type LanguageInfo struct {
	Path      string `json:"path" toon:"path" yaml:"path"`
	Language  string `json:"language" toon:"language" yaml:"language"`
	Supported bool   `json:"supported" toon:"supported" yaml:"supported"`
}

func getPaths(paths []string) []string {
	if len(paths) == 0 {
		return []string{"."}
	}
	return paths
}

func getFormat(s string) output.Format {
	if strings.TrimSpace(s) == "" {
		return output.FormatTOON
	}
	f := output.ParseFormat(s)
	if f == output.FormatText {
		return output.FormatTOON
	}
	return f
}

func (in SelectionInput) options() analysis.Options {
	return analysis.Options{Depth: models.Depth(in.Depth), Modules: in.Modules}
}

func formatOutput(data any, format output.Format) (string, error) {
	var buf bytes.Buffer
	if err := output.NewWriter(format, &buf, false).Output(data); err != nil {
		return "", err
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}

func toolResult(data any, format output.Format) (*mcp.CallToolResult, any, error) {
	text, err := formatOutput(data, format)
	if err != nil {
		return nil, nil, err
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}, nil, nil
}

func toolError(msg string) (*mcp.CallToolResult, any, error) {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: "Error: " + msg},
		},
		IsError: true,
	}, nil, nil
}

func (s *Server) handleAnalyzeCode(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeCodeInput) (*mcp.CallToolResult, any, error) {
	result, err := s.analysis.AnalyzeCode(ctx, input.Code, input.Language, input.options())
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(output.NewFileView("<buffer>", result), getFormat(input.Format))
}

func (s *Server) handleAnalyzeFiles(ctx context.Context, req *mcp.CallToolRequest, input AnalyzeFilesInput) (*mcp.CallToolResult, any, error) {
	scanner := scannerSvc.New(scannerSvc.WithConfig(s.config))
	scanResult, err := scanner.ScanPaths(getPaths(input.Paths))
	if err != nil {
		return toolError(err.Error())
	}
	if len(scanResult.Files) == 0 {
		return toolError("no source files found")
	}

	batch, err := s.analysis.AnalyzeFiles(ctx, scanResult.Files, input.options())
	if err != nil {
		return toolError(err.Error())
	}
	return toolResult(batch, getFormat(input.Format))
}

func (s *Server) handleDetectLanguage(ctx context.Context, req *mcp.CallToolRequest, input DetectLanguageInput) (*mcp.CallToolResult, any, error) {
	if len(input.Paths) == 0 {
		return toolError("paths is required")
	}
	infos := make([]LanguageInfo, len(input.Paths))
	for i, p := range input.Paths {
		infos[i] = LanguageInfo{Path: p, Language: language.Detect(p), Supported: language.Known(p)}
	}
	return toolResult(map[string]any{"languages": infos}, output.FormatTOON)
}
