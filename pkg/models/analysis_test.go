package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDepth(t *testing.T) {
	tests := []struct {
		in      string
		want    Depth
		wantErr bool
	}{
		{"", DepthStandard, false},
		{"quick", DepthQuick, false},
		{"Standard", DepthStandard, false},
		{"comprehensive", DepthStandard, false},
		{"DEEP", DepthDeep, false},
		{"extreme", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDepth(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil, 4)
	assert.Equal(t, 0, s.Total)
	assert.Equal(t, 4, s.Lines)
	assert.Equal(t, 0, s.FlaggedLines)
	assert.Equal(t, MaxScore, s.Score)
}

func TestSummarizeCounts(t *testing.T) {
	issues := []Issue{
		NewIssue(SeverityHigh, CategorySecurity, "eval"),
		NewIssue(SeverityMedium, CategoryBug, "todo"),
		NewLineIssue(SeverityLow, CategoryStyle, 2, "long"),
		NewLineIssue(SeverityLow, CategoryStyle, 2, "also line 2"),
		NewLineIssue(SeverityLow, CategoryStyle, 5, "long"),
	}
	s := Summarize(issues, 10)

	assert.Equal(t, 5, s.Total)
	assert.Equal(t, 1, s.BySeverity["high"])
	assert.Equal(t, 1, s.BySeverity["medium"])
	assert.Equal(t, 3, s.BySeverity["low"])
	assert.Equal(t, 3, s.ByCategory["style"])
	assert.Equal(t, 2, s.FlaggedLines, "line 2 is flagged twice but counted once")
	assert.InDelta(t, 10-1-0.5*4, s.Score, 1e-9)
}

func TestSummarizeScoreFloor(t *testing.T) {
	var issues []Issue
	for i := 0; i < 20; i++ {
		issues = append(issues, NewIssue(SeverityCritical, CategorySecurity, "x"))
	}
	assert.Equal(t, 0.0, Summarize(issues, 1).Score)
}

func TestSummaryMerge(t *testing.T) {
	a := Summarize([]Issue{NewIssue(SeverityHigh, CategorySecurity, "x")}, 10)
	b := Summarize(nil, 30)

	var total Summary
	total.Merge(a)
	total.Merge(b)

	assert.Equal(t, 1, total.Total)
	assert.Equal(t, 40, total.Lines)
	assert.Equal(t, 1, total.BySeverity["high"])
	assert.InDelta(t, (9.0*10+10.0*30)/40, total.Score, 1e-9)
}

func TestMaxSeverity(t *testing.T) {
	r := &AnalysisResult{}
	assert.Equal(t, Severity(""), r.MaxSeverity())

	r.Issues = []Issue{
		NewIssue(SeverityLow, CategoryStyle, "a"),
		NewIssue(SeverityHigh, CategorySecurity, "b"),
		NewIssue(SeverityMedium, CategoryBug, "c"),
	}
	assert.Equal(t, SeverityHigh, r.MaxSeverity())
}

func TestNewFileReport(t *testing.T) {
	result := &AnalysisResult{
		Language: "swift",
		Issues:   []Issue{NewIssue(SeverityMedium, CategoryBug, "todo")},
	}
	result.Summary = Summarize(result.Issues, 1)

	report := NewFileReport("a.swift", result)
	assert.Equal(t, "a.swift", report.File)
	assert.Equal(t, "swift", report.Language)
	assert.Len(t, report.Issues, 1)
	assert.Equal(t, 1, report.Summary.Total)
}
