package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/panbanda/reviewer/pkg/models"
)

var issueHeaders = []string{"Line", "Severity", "Category", "Description"}

// FileView renders the findings for a single file or buffer.
type FileView struct {
	Report models.FileReport
}

var _ Renderable = (*FileView)(nil)

// NewFileView wraps an analysis result for the named file.
func NewFileView(file string, result *models.AnalysisResult) *FileView {
	return &FileView{Report: models.NewFileReport(file, result)}
}

func (v *FileView) RenderData() any {
	return v.Report
}

func (v *FileView) RenderText(w io.Writer, colored bool) error {
	title := fmt.Sprintf("%s (%s)", v.Report.File, v.Report.Language)
	if len(v.Report.Issues) == 0 {
		fmt.Fprintf(w, "%s: no issues\n", title)
		return nil
	}
	t := NewTable(title, issueHeaders, IssueRows(v.Report.Issues, colored), summaryFooter(v.Report.Summary), nil)
	return t.RenderText(w, colored)
}

func (v *FileView) RenderMarkdown(w io.Writer) error {
	title := fmt.Sprintf("%s (%s)", v.Report.File, v.Report.Language)
	if len(v.Report.Issues) == 0 {
		fmt.Fprintf(w, "## %s\n\nNo issues found.\n\n", title)
		return nil
	}
	t := NewTable(title, issueHeaders, IssueRows(v.Report.Issues, false), nil, nil)
	if err := t.RenderMarkdown(w); err != nil {
		return err
	}
	fmt.Fprintf(w, "Score: %.1f / %.0f\n\n", v.Report.Summary.Score, models.MaxScore)
	return nil
}

// IssueRows converts issues to table rows in their reported order.
func IssueRows(issues []models.Issue, colored bool) [][]string {
	rows := make([][]string, len(issues))
	for i, issue := range issues {
		sev := string(issue.Severity)
		if colored {
			sev = SeverityColor(issue.Severity, sev)
		}
		rows[i] = []string{issue.Location(), sev, string(issue.Category), issue.Description}
	}
	return rows
}

func summaryFooter(s models.Summary) []string {
	return []string{
		"",
		strconv.Itoa(s.Total) + " issues",
		strconv.Itoa(s.FlaggedLines) + " lines flagged",
		fmt.Sprintf("score %.1f", s.Score),
	}
}
