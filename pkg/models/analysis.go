package models

import (
	"fmt"
	"math"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"
)

// Depth controls which rule modules run for a request.
type Depth string

const (
	DepthQuick    Depth = "quick"    // security + bugs
	DepthStandard Depth = "standard" // security, bugs, performance, style
	DepthDeep     Depth = "deep"     // standard + maintainability
)

// ParseDepth converts a case-insensitive name into a Depth. Empty input yields DepthStandard.
func ParseDepth(s string) (Depth, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DepthStandard, nil
	case "quick", "fast":
		return DepthQuick, nil
	case "standard", "default", "comprehensive":
		return DepthStandard, nil
	case "deep", "full":
		return DepthDeep, nil
	default:
		return "", fmt.Errorf("unknown analysis depth %q (want quick, standard or deep)", s)
	}
}

// MaxScore is the quality score of a buffer with no findings.
const MaxScore = 10.0

// Summary provides aggregate counts for a set of issues.
type Summary struct {
	Total        int            `json:"total" toon:"total" yaml:"total"`
	BySeverity   map[string]int `json:"by_severity" toon:"by_severity" yaml:"by_severity"`
	ByCategory   map[string]int `json:"by_category" toon:"by_category" yaml:"by_category"`
	Lines        int            `json:"lines" toon:"lines" yaml:"lines"`
	FlaggedLines int            `json:"flagged_lines" toon:"flagged_lines" yaml:"flagged_lines"`
	Score        float64        `json:"score" toon:"score" yaml:"score"`
}

// NewSummary creates an initialized summary.
func NewSummary() Summary {
	return Summary{
		BySeverity: make(map[string]int),
		ByCategory: make(map[string]int),
		Score:      MaxScore,
	}
}

// Summarize computes aggregate counts for issues found in a buffer of lineCount lines.
//
// The score starts at 10 and loses a full point for every high or critical
// finding and half a point for every medium or low one, floored at zero.
func Summarize(issues []Issue, lineCount int) Summary {
	s := NewSummary()
	s.Lines = lineCount

	flagged := roaring.New()
	penalty := 0.0
	for _, issue := range issues {
		s.Total++
		s.BySeverity[string(issue.Severity)]++
		s.ByCategory[string(issue.Category)]++
		if issue.Line != nil && *issue.Line > 0 {
			flagged.Add(uint32(*issue.Line))
		}
		if issue.Severity.AtLeast(SeverityHigh) {
			penalty += 1.0
		} else {
			penalty += 0.5
		}
	}
	s.FlaggedLines = int(flagged.GetCardinality())
	s.Score = math.Max(0, MaxScore-penalty)
	return s
}

// Merge folds other into s. Score becomes the line-weighted mean of both.
func (s *Summary) Merge(other Summary) {
	if s.BySeverity == nil {
		s.BySeverity = make(map[string]int)
	}
	if s.ByCategory == nil {
		s.ByCategory = make(map[string]int)
	}
	totalLines := s.Lines + other.Lines
	if totalLines > 0 {
		s.Score = (s.Score*float64(s.Lines) + other.Score*float64(other.Lines)) / float64(totalLines)
	}
	s.Total += other.Total
	s.Lines = totalLines
	s.FlaggedLines += other.FlaggedLines
	for k, v := range other.BySeverity {
		s.BySeverity[k] += v
	}
	for k, v := range other.ByCategory {
		s.ByCategory[k] += v
	}
}

// AnalysisResult is the ordered output of one analysis request.
type AnalysisResult struct {
	Language string  `json:"language" toon:"language" yaml:"language"`
	Depth    Depth   `json:"depth" toon:"depth" yaml:"depth"`
	Issues   []Issue `json:"issues" toon:"issues" yaml:"issues"`
	Summary  Summary `json:"summary" toon:"summary" yaml:"summary"`
}

// MaxSeverity returns the highest severity among the issues, or "" when there are none.
func (r *AnalysisResult) MaxSeverity() Severity {
	var highest Severity
	for _, issue := range r.Issues {
		if issue.Severity.Weight() > highest.Weight() {
			highest = issue.Severity
		}
	}
	return highest
}

// FileReport pairs an analysis result with the file it came from.
type FileReport struct {
	File     string  `json:"file" toon:"file" yaml:"file"`
	Language string  `json:"language" toon:"language" yaml:"language"`
	Issues   []Issue `json:"issues" toon:"issues" yaml:"issues"`
	Summary  Summary `json:"summary" toon:"summary" yaml:"summary"`
}

// NewFileReport builds a report for file from an analysis result.
func NewFileReport(file string, result *AnalysisResult) FileReport {
	return FileReport{
		File:     file,
		Language: result.Language,
		Issues:   result.Issues,
		Summary:  result.Summary,
	}
}
