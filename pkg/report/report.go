// Package report aggregates per-file analysis results into a batch report.
package report

import (
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"github.com/panbanda/reviewer/internal/output"
	"github.com/panbanda/reviewer/pkg/models"
)

// Stats describes how issues are distributed across the analyzed files.
type Stats struct {
	Files           int     `json:"files" toon:"files" yaml:"files"`
	FilesWithIssues int     `json:"files_with_issues" toon:"files_with_issues" yaml:"files_with_issues"`
	MeanIssues      float64 `json:"mean_issues" toon:"mean_issues" yaml:"mean_issues"`
	StdDevIssues    float64 `json:"stddev_issues" toon:"stddev_issues" yaml:"stddev_issues"`
	MedianIssues    float64 `json:"median_issues" toon:"median_issues" yaml:"median_issues"`
	MeanScore       float64 `json:"mean_score" toon:"mean_score" yaml:"mean_score"`
}

// FileError records a file that could not be analyzed.
type FileError struct {
	File  string `json:"file" toon:"file" yaml:"file"`
	Error string `json:"error" toon:"error" yaml:"error"`
}

// Batch is the result of analyzing a set of files.
type Batch struct {
	Files   []models.FileReport `json:"files" toon:"files" yaml:"files"`
	Summary models.Summary      `json:"summary" toon:"summary" yaml:"summary"`
	Stats   Stats               `json:"stats" toon:"stats" yaml:"stats"`
	Errors  []FileError         `json:"errors,omitempty" toon:"errors,omitempty" yaml:"errors,omitempty"`
}

var _ output.Renderable = (*Batch)(nil)

// New builds a batch from per-file reports. Files are ordered by path.
func New(files []models.FileReport) *Batch {
	sorted := make([]models.FileReport, len(files))
	copy(sorted, files)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].File < sorted[j].File })

	b := &Batch{Files: sorted, Summary: models.NewSummary()}
	for _, f := range sorted {
		b.Summary.Merge(f.Summary)
	}
	b.Stats = computeStats(sorted)
	return b
}

// AddError records a file that was skipped.
func (b *Batch) AddError(file string, err error) {
	b.Errors = append(b.Errors, FileError{File: file, Error: err.Error()})
	sort.Slice(b.Errors, func(i, j int) bool { return b.Errors[i].File < b.Errors[j].File })
}

func computeStats(files []models.FileReport) Stats {
	s := Stats{Files: len(files)}
	if len(files) == 0 {
		return s
	}

	counts := make([]float64, len(files))
	scores := make([]float64, len(files))
	for i, f := range files {
		counts[i] = float64(len(f.Issues))
		scores[i] = f.Summary.Score
		if len(f.Issues) > 0 {
			s.FilesWithIssues++
		}
	}

	s.MeanIssues, s.StdDevIssues = stat.MeanStdDev(counts, nil)
	if len(files) < 2 || math.IsNaN(s.StdDevIssues) {
		s.StdDevIssues = 0
	}
	s.MeanScore = stat.Mean(scores, nil)

	sort.Float64s(counts)
	s.MedianIssues = stat.Quantile(0.5, stat.Empirical, counts, nil)
	return s
}

// CountAtLeast returns how many issues are at or above sev.
func (b *Batch) CountAtLeast(sev models.Severity) int {
	n := 0
	for _, f := range b.Files {
		for _, issue := range f.Issues {
			if issue.Severity.AtLeast(sev) {
				n++
			}
		}
	}
	return n
}

// RenderData implements output.Renderable.
func (b *Batch) RenderData() any {
	return b
}

// RenderText implements output.Renderable. Only files with findings are listed.
func (b *Batch) RenderText(w io.Writer, colored bool) error {
	return b.document(colored).RenderText(w, colored)
}

// RenderMarkdown implements output.Renderable.
func (b *Batch) RenderMarkdown(w io.Writer) error {
	return b.document(false).RenderMarkdown(w)
}

func (b *Batch) document(colored bool) *output.Report {
	doc := &output.Report{Title: "Code Review"}
	for _, f := range b.Files {
		if len(f.Issues) == 0 {
			continue
		}
		title := fmt.Sprintf("%s (%s)", f.File, f.Language)
		doc.Sections = append(doc.Sections, output.NewTable(title,
			[]string{"Line", "Severity", "Category", "Description"},
			output.IssueRows(f.Issues, colored), nil, nil))
	}
	if len(b.Errors) > 0 {
		rows := make([][]string, len(b.Errors))
		for i, e := range b.Errors {
			rows[i] = []string{e.File, e.Error}
		}
		doc.Sections = append(doc.Sections, output.NewTable("Skipped", []string{"File", "Reason"}, rows, nil, nil))
	}
	doc.Sections = append(doc.Sections, b.summaryTable())
	return doc
}

func (b *Batch) summaryTable() *output.Table {
	rows := [][]string{
		{"Files analyzed", strconv.Itoa(b.Stats.Files)},
		{"Files with issues", strconv.Itoa(b.Stats.FilesWithIssues)},
		{"Total issues", strconv.Itoa(b.Summary.Total)},
	}
	for i := len(models.Severities) - 1; i >= 0; i-- {
		sev := models.Severities[i]
		if n := b.Summary.BySeverity[string(sev)]; n > 0 {
			rows = append(rows, []string{"  " + string(sev), strconv.Itoa(n)})
		}
	}
	rows = append(rows,
		[]string{"Issues per file", fmt.Sprintf("%.2f ± %.2f (median %.1f)", b.Stats.MeanIssues, b.Stats.StdDevIssues, b.Stats.MedianIssues)},
		[]string{"Score", fmt.Sprintf("%.1f / %.0f", b.Summary.Score, models.MaxScore)},
	)
	return output.NewTable("Summary", []string{"Metric", "Value"}, rows, nil, nil)
}
