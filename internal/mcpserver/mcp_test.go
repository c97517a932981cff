package mcpserver

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panbanda/reviewer/internal/output"
	"github.com/panbanda/reviewer/pkg/config"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Cache.Enabled = false
	return NewServer("1.0.0-test", cfg)
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, res)
	require.Len(t, res.Content, 1)
	text, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok, "content should be text")
	return text.Text
}

func TestServerCreation(t *testing.T) {
	s := NewServer("", nil)
	require.NotNil(t, s.server)
	assert.NotNil(t, s.config)
	assert.NotNil(t, s.analysis)
}

func TestToolDescriptions(t *testing.T) {
	descriptions := map[string]func() string{
		"analyze_code":    describeAnalyzeCode,
		"analyze_files":   describeAnalyzeFiles,
		"detect_language": describeDetectLanguage,
	}
	for name, fn := range descriptions {
		t.Run(name, func(t *testing.T) {
			desc := fn()
			for _, section := range []string{"USE WHEN:", "INTERPRETING RESULTS:", "METRICS RETURNED:"} {
				assert.Contains(t, desc, section)
			}
		})
	}
}

func TestGetPaths(t *testing.T) {
	assert.Equal(t, []string{"."}, getPaths(nil))
	assert.Equal(t, []string{"."}, getPaths([]string{}))
	assert.Equal(t, []string{"/a", "/b"}, getPaths([]string{"/a", "/b"}))
}

func TestGetFormat(t *testing.T) {
	tests := []struct {
		input string
		want  output.Format
	}{
		{"", output.FormatTOON},
		{"toon", output.FormatTOON},
		{"text", output.FormatTOON},
		{"json", output.FormatJSON},
		{"md", output.FormatMarkdown},
		{"yaml", output.FormatYAML},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, getFormat(tt.input))
		})
	}
}

func TestHandleAnalyzeCode(t *testing.T) {
	s := newTestServer(t)

	res, _, err := s.handleAnalyzeCode(context.Background(), nil, AnalyzeCodeInput{
		SelectionInput: SelectionInput{Format: "json"},
		Code:           "const a = 1\neval(a)",
		Language:       "JavaScript",
	})
	require.NoError(t, err)
	assert.False(t, res.IsError)

	var got struct {
		File   string `json:"file"`
		Issues []struct {
			Description string `json:"description"`
			Line        *int   `json:"line"`
		} `json:"issues"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &got))
	assert.Equal(t, "<buffer>", got.File)
	require.Len(t, got.Issues, 1)
	assert.Equal(t, "Use of eval() detected - security risk", got.Issues[0].Description)
	assert.Nil(t, got.Issues[0].Line)
}

func TestHandleAnalyzeCodeDefaultsToTOON(t *testing.T) {
	s := newTestServer(t)

	res, _, err := s.handleAnalyzeCode(context.Background(), nil, AnalyzeCodeInput{Code: "// FIXME later\n"})
	require.NoError(t, err)
	text := resultText(t, res)
	assert.Contains(t, text, "Swift")
	assert.Contains(t, text, "TODO/FIXME")
	assert.False(t, strings.HasPrefix(text, "{"), "toon, not json")
}

func TestHandleAnalyzeCodeErrors(t *testing.T) {
	s := newTestServer(t)

	res, _, err := s.handleAnalyzeCode(context.Background(), nil, AnalyzeCodeInput{
		SelectionInput: SelectionInput{Modules: []string{"lint"}},
		Code:           "x",
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "unknown analysis module")

	res, _, err = s.handleAnalyzeCode(context.Background(), nil, AnalyzeCodeInput{
		SelectionInput: SelectionInput{Depth: "extreme"},
		Code:           "x",
	})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleAnalyzeFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("el.innerHTML = x\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clean.py"), []byte("x = 1\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("eval(\n"), 0o644))

	s := newTestServer(t)
	res, _, err := s.handleAnalyzeFiles(context.Background(), nil, AnalyzeFilesInput{
		SelectionInput: SelectionInput{Format: "json", Modules: []string{"security"}},
		Paths:          []string{dir},
	})
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	var got struct {
		Files []struct {
			File   string            `json:"file"`
			Issues []json.RawMessage `json:"issues"`
		} `json:"files"`
		Stats struct {
			Files           int `json:"files"`
			FilesWithIssues int `json:"files_with_issues"`
		} `json:"stats"`
	}
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &got))
	assert.Equal(t, 2, got.Stats.Files)
	assert.Equal(t, 1, got.Stats.FilesWithIssues)
	require.Len(t, got.Files, 2)
	assert.Equal(t, filepath.Join(dir, "app.js"), got.Files[0].File)
	assert.Len(t, got.Files[0].Issues, 1)
}

func TestHandleAnalyzeFilesNoSources(t *testing.T) {
	s := newTestServer(t)

	res, _, err := s.handleAnalyzeFiles(context.Background(), nil, AnalyzeFilesInput{Paths: []string{t.TempDir()}})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Equal(t, "Error: no source files found", resultText(t, res))

	res, _, err = s.handleAnalyzeFiles(context.Background(), nil, AnalyzeFilesInput{Paths: []string{filepath.Join(t.TempDir(), "missing")}})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestHandleDetectLanguage(t *testing.T) {
	s := newTestServer(t)

	res, _, err := s.handleDetectLanguage(context.Background(), nil, DetectLanguageInput{Paths: []string{"a.ts", "README"}})
	require.NoError(t, err)
	text := resultText(t, res)
	assert.Contains(t, text, "JavaScript")
	assert.Contains(t, text, "Swift")

	res, _, err = s.handleDetectLanguage(context.Background(), nil, DetectLanguageInput{})
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestParseFrontmatter(t *testing.T) {
	meta, body := parseFrontmatter([]byte("---\ndescription: Audit things\narguments:\n  - name: root\n    required: true\n---\nAudit {{root}}.\n"))
	assert.Equal(t, "Audit things", meta.Description)
	require.Len(t, meta.Arguments, 1)
	assert.Equal(t, "root", meta.Arguments[0].Name)
	assert.True(t, meta.Arguments[0].Required)
	assert.Equal(t, "Audit {{root}}.\n", body)

	meta, body = parseFrontmatter([]byte("no header"))
	assert.Empty(t, meta.Description)
	assert.Equal(t, "no header", body)

	meta, body = parseFrontmatter([]byte("---\ndescription: open\nnever closed"))
	assert.Empty(t, meta.Description)
	assert.Equal(t, "---\ndescription: open\nnever closed", body)

	meta, body = parseFrontmatter([]byte("---\n: [bad\n---\nbody\n"))
	assert.Empty(t, meta.Description)
	assert.Equal(t, "---\n: [bad\n---\nbody\n", body)
}

func TestLoadPrompts(t *testing.T) {
	prompts, err := loadPrompts()
	require.NoError(t, err)
	require.NotEmpty(t, prompts)

	names := make(map[string]bool)
	for _, p := range prompts {
		names[p.name] = true
		assert.NotEmpty(t, p.meta.Description, p.name)
		assert.Contains(t, p.body, "analyze_files", p.name)
		for _, a := range p.meta.Arguments {
			assert.Contains(t, p.body, "{{"+a.Name+"}}", "%s declares unused argument %s", p.name, a.Name)
		}
	}
	assert.True(t, names["review-changes"])
	assert.True(t, names["security-audit"])
}

func TestPromptRender(t *testing.T) {
	p := reviewPrompt{
		name: "review",
		meta: promptFrontmatter{Arguments: []promptArgument{{Name: "paths"}, {Name: "fail_on"}}},
		body: "Review {{paths}} and block on {{fail_on}}.",
	}

	assert.Equal(t, "Review a.swift and block on high.", p.render(map[string]string{"paths": "a.swift"}))
	assert.Equal(t, "Review a.swift and block on low.", p.render(map[string]string{"paths": " a.swift ", "fail_on": "low"}))
	assert.Equal(t, "Review  and block on high.", p.render(nil))
}

func TestPromptHandler(t *testing.T) {
	p := reviewPrompt{
		name: "audit",
		meta: promptFrontmatter{Description: "Audit", Arguments: []promptArgument{{Name: "root"}}},
		body: "Audit {{root}}.",
	}

	res, err := p.handler()(context.Background(), &mcp.GetPromptRequest{
		Params: &mcp.GetPromptParams{Name: "audit", Arguments: map[string]string{"root": "src"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Audit", res.Description)
	require.Len(t, res.Messages, 1)
	text, ok := res.Messages[0].Content.(*mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "Audit src.", text.Text)

	res, err = p.handler()(context.Background(), &mcp.GetPromptRequest{})
	require.NoError(t, err)
	text, ok = res.Messages[0].Content.(*mcp.TextContent)
	require.True(t, ok)
	assert.Equal(t, "Audit the repository root.", text.Text)
}

func TestGenerateManifest(t *testing.T) {
	data, err := GenerateManifest("")
	require.NoError(t, err)

	var m Manifest
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "0.0.0", m.Version)
	assert.Equal(t, "io.github.panbanda/reviewer", m.Name)
	require.Len(t, m.Packages, 1)
	pkg := m.Packages[0]
	assert.Equal(t, "ghcr.io/panbanda/reviewer:0.0.0", pkg.Identifier)
	assert.Equal(t, "stdio", pkg.Transport.Type)
	require.Len(t, pkg.EnvironmentVariables, 1)
	assert.Equal(t, "REVIEWER_CONFIG", pkg.EnvironmentVariables[0].Name)
	assert.False(t, pkg.EnvironmentVariables[0].IsRequired)

	data, err = GenerateManifest("v1.2.3")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &m))
	assert.Equal(t, "1.2.3", m.Version)
	assert.Equal(t, "ghcr.io/panbanda/reviewer:1.2.3", m.Packages[0].Identifier)
}
