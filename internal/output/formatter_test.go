package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/panbanda/reviewer/pkg/models"
)

func sampleResult() *models.AnalysisResult {
	issues := []models.Issue{
		models.NewLineIssue(models.SeverityHigh, models.CategorySecurity, 3, "Sensitive data stored in UserDefaults at line 3 - use Keychain instead"),
		models.NewIssue(models.SeverityHigh, models.CategorySecurity, "Use of eval() detected - security risk"),
	}
	return &models.AnalysisResult{
		Language: "JavaScript",
		Depth:    models.DepthStandard,
		Issues:   issues,
		Summary:  models.Summarize(issues, 4),
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		input string
		want  Format
	}{
		{"text", FormatText},
		{"TEXT", FormatText},
		{"json", FormatJSON},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"toon", FormatTOON},
		{"yaml", FormatYAML},
		{"yml", FormatYAML},
		{"", FormatText},
		{"invalid", FormatText},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := ParseFormat(tt.input); got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewFormatterWithFile(t *testing.T) {
	outputPath := filepath.Join(t.TempDir(), "output.txt")

	f, err := NewFormatter(FormatJSON, outputPath, true)
	require.NoError(t, err)
	assert.False(t, f.Colored(), "colored should be false when writing to file")
	assert.Equal(t, FormatJSON, f.Format())

	require.NoError(t, f.Output(map[string]int{"count": 1}))
	require.NoError(t, f.Close())

	content, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	assert.JSONEq(t, `{"count":1}`, string(content))
}

func TestNewFormatterInvalidPath(t *testing.T) {
	_, err := NewFormatter(FormatText, "/nonexistent/directory/file.txt", false)
	assert.Error(t, err)
}

func TestFileViewJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(FormatJSON, &buf, false).Output(NewFileView("app.js", sampleResult())))

	var got struct {
		File     string            `json:"file"`
		Language string            `json:"language"`
		Issues   []json.RawMessage `json:"issues"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "app.js", got.File)
	assert.Equal(t, "JavaScript", got.Language)
	require.Len(t, got.Issues, 2)
	assert.JSONEq(t, `{"description":"Sensitive data stored in UserDefaults at line 3 - use Keychain instead","severity":"high","category":"security","line":3}`, string(got.Issues[0]))
	assert.JSONEq(t, `{"description":"Use of eval() detected - security risk","severity":"high","category":"security","line":null}`, string(got.Issues[1]))
}

func TestFileViewYAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(FormatYAML, &buf, false).Output(NewFileView("app.js", sampleResult())))

	assert.Contains(t, buf.String(), "line: null")

	var got map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "app.js", got["file"])
	assert.Len(t, got["issues"], 2)
}

func TestFileViewTOON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(FormatTOON, &buf, false).Output(NewFileView("app.js", sampleResult())))

	out := buf.String()
	assert.Contains(t, out, "app.js")
	assert.Contains(t, out, "eval() detected")
	assert.Contains(t, out, "description")
}

func TestFileViewText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(FormatText, &buf, false).Output(NewFileView("app.js", sampleResult())))

	out := buf.String()
	assert.Contains(t, out, "app.js (JavaScript)")
	assert.Contains(t, out, "Use of eval() detected - security risk")
	assert.Contains(t, strings.ToLower(out), "2 issues")

	lines := strings.Split(out, "\n")
	var evalRow, secretRow int
	for i, l := range lines {
		if strings.Contains(l, "eval()") {
			evalRow = i
		}
		if strings.Contains(l, "UserDefaults") {
			secretRow = i
		}
	}
	assert.Less(t, secretRow, evalRow, "rows keep issue order")
}

func TestFileViewNoIssues(t *testing.T) {
	result := &models.AnalysisResult{Language: "Swift", Summary: models.Summarize(nil, 1)}

	var buf bytes.Buffer
	require.NoError(t, NewWriter(FormatText, &buf, false).Output(NewFileView("a.swift", result)))
	assert.Equal(t, "a.swift (Swift): no issues\n", buf.String())

	buf.Reset()
	require.NoError(t, NewWriter(FormatMarkdown, &buf, false).Output(NewFileView("a.swift", result)))
	assert.Contains(t, buf.String(), "No issues found.")
}

func TestFileViewMarkdown(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewWriter(FormatMarkdown, &buf, false).Output(NewFileView("app.js", sampleResult())))

	out := buf.String()
	assert.Contains(t, out, "## app.js (JavaScript)")
	assert.Contains(t, out, "| Line | Severity | Category | Description |")
	assert.Contains(t, out, "| - | high | security | Use of eval() detected - security risk |")
	assert.Contains(t, out, "Score: 8.0 / 10")
}

func TestTableRenderMarkdownEscapesPipes(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable("", []string{"A"}, [][]string{{"x | y"}}, nil, nil)
	require.NoError(t, table.RenderMarkdown(&buf))
	assert.Contains(t, buf.String(), `| x \| y |`)
}

func TestTableRenderMarkdownAlignsNumbers(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable("", []string{"File", "Issues", "Score"},
		[][]string{{"a.js", "2", "8.5"}, {"b.js", "", "10.0"}, {"c.js", "0", "n/a"}},
		nil, nil)
	require.NoError(t, table.RenderMarkdown(&buf))
	assert.Contains(t, buf.String(), "| --- | ---: | --- |")
}

func TestTableRenderMarkdownFlattensNewlines(t *testing.T) {
	var buf bytes.Buffer
	table := NewTable("", []string{"A"}, [][]string{{"first\nsecond"}}, nil, nil)
	require.NoError(t, table.RenderMarkdown(&buf))
	assert.Contains(t, buf.String(), "| first second |")
}

func TestNumericColumns(t *testing.T) {
	assert.Equal(t, []bool{false, true, false},
		numericColumns([]string{"Name", "Count", "Empty"}, [][]string{{"a", "1"}, {"b", " 2 ", ""}}))
	assert.Equal(t, []bool{false}, numericColumns([]string{"A"}, nil))
}

func TestTableRenderData(t *testing.T) {
	table := NewTable("T", []string{"Name", "Count"}, [][]string{{"a", "1"}, {"b"}}, nil, nil)
	assert.Equal(t, []map[string]string{
		{"Name": "a", "Count": "1"},
		{"Name": "b"},
	}, table.RenderData())

	table.Data = map[string]int{"x": 1}
	assert.Equal(t, map[string]int{"x": 1}, table.RenderData())
}

func TestReportRender(t *testing.T) {
	report := &Report{
		Title: "Review",
		Sections: []Renderable{
			NewTable("First", []string{"A"}, [][]string{{"1"}}, nil, nil),
			NewFileView("a.js", sampleResult()),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, report.RenderText(&buf, false))
	assert.True(t, strings.HasPrefix(buf.String(), "Review\n======\n"))
	assert.Contains(t, buf.String(), "a.js (JavaScript)")

	buf.Reset()
	require.NoError(t, report.RenderMarkdown(&buf))
	assert.True(t, strings.HasPrefix(buf.String(), "# Review\n\n## First"))

	data, ok := report.RenderData().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Review", data["title"])
	assert.Len(t, data["sections"], 2)
}

func TestFormatterOutputRaw(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{FormatJSON, "\"enabled\": true"},
		{FormatText, "\"enabled\": true"},
		{FormatMarkdown, "```json\n"},
		{FormatYAML, "enabled: true"},
		{FormatTOON, "enabled"},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, NewWriter(tt.format, &buf, false).Output(map[string]bool{"enabled": true}))
			assert.Contains(t, buf.String(), tt.want)
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path string
		want Format
		ok   bool
	}{
		{"out.json", FormatJSON, true},
		{"REPORT.MD", FormatMarkdown, true},
		{"a/b.markdown", FormatMarkdown, true},
		{"x.toon", FormatTOON, true},
		{"x.yml", FormatYAML, true},
		{"x.yaml", FormatYAML, true},
		{"x.txt", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := FormatFromPath(tt.path)
		assert.Equal(t, tt.ok, ok, tt.path)
		assert.Equal(t, tt.want, got, tt.path)
	}
}

func TestFormatterMessages(t *testing.T) {
	var buf bytes.Buffer
	f := NewWriter(FormatText, &buf, false)

	f.Success("done %d", 3)
	f.Warning("skipped %s", "a.bin")
	f.Error("failed")

	assert.Equal(t, "done 3\nWARNING: skipped a.bin\nERROR: failed\n", buf.String())
}

func TestSeverityColorKeepsText(t *testing.T) {
	for _, sev := range models.Severities {
		assert.Contains(t, SeverityColor(sev, "msg"), "msg")
	}
	assert.Equal(t, "msg", SeverityColor(models.Severity("other"), "msg"))
}
