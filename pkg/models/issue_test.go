package models

import (
	"encoding/json"
	"testing"

	toon "github.com/toon-format/toon-go"
)

func TestSeverityWeightOrdering(t *testing.T) {
	for i := 1; i < len(Severities); i++ {
		if Severities[i].Weight() <= Severities[i-1].Weight() {
			t.Errorf("%s weight %d should exceed %s weight %d",
				Severities[i], Severities[i].Weight(), Severities[i-1], Severities[i-1].Weight())
		}
	}
	if Severity("bogus").Weight() != 0 {
		t.Error("unknown severity should weigh 0")
	}
}

func TestParseSeverity(t *testing.T) {
	tests := []struct {
		in      string
		want    Severity
		wantErr bool
	}{
		{"low", SeverityLow, false},
		{"HIGH", SeverityHigh, false},
		{" Critical ", SeverityCritical, false},
		{"urgent", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		got, err := ParseSeverity(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSeverity(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSeverity(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestSeverityAtLeast(t *testing.T) {
	if !SeverityHigh.AtLeast(SeverityMedium) {
		t.Error("high should be at least medium")
	}
	if SeverityLow.AtLeast(SeverityMedium) {
		t.Error("low should not be at least medium")
	}
	if !SeverityCritical.AtLeast(SeverityCritical) {
		t.Error("critical should be at least critical")
	}
}

func TestCategoryValid(t *testing.T) {
	for _, c := range Categories {
		if !c.Valid() {
			t.Errorf("%s should be valid", c)
		}
	}
	if Category("lint").Valid() {
		t.Error("lint should not be a valid category")
	}
}

func TestIssueJSONLineNullWhenBufferWide(t *testing.T) {
	data, err := json.Marshal(NewIssue(SeverityMedium, CategoryBug, "Found TODO"))
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}
	want := `{"description":"Found TODO","severity":"medium","category":"bug","line":null}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}
}

func TestIssueJSONLineNumber(t *testing.T) {
	data, err := json.Marshal(NewLineIssue(SeverityLow, CategoryStyle, 7, "Line 7 too long"))
	if err != nil {
		t.Fatalf("json.Marshal failed: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("json.Unmarshal failed: %v", err)
	}
	if decoded["line"] != float64(7) {
		t.Errorf("line = %v, want 7", decoded["line"])
	}
}

func TestIssueLocation(t *testing.T) {
	if got := NewIssue(SeverityLow, CategoryStyle, "x").Location(); got != "-" {
		t.Errorf("Location() = %q, want -", got)
	}
	issue := NewLineIssue(SeverityLow, CategoryStyle, 12, "x")
	if got := issue.Location(); got != "12" {
		t.Errorf("Location() = %q, want 12", got)
	}
	if issue.LineNumber() != 12 || !issue.HasLine() {
		t.Errorf("LineNumber() = %d, HasLine() = %v", issue.LineNumber(), issue.HasLine())
	}
}

func TestResultSerializesToTOON(t *testing.T) {
	issues := []Issue{
		NewIssue(SeverityHigh, CategorySecurity, "Use of eval() detected - security risk"),
		NewLineIssue(SeverityLow, CategoryStyle, 3, "Line 3 exceeds 120 characters (130 characters)"),
	}
	result := AnalysisResult{
		Language: "javascript",
		Depth:    DepthStandard,
		Issues:   issues,
		Summary:  Summarize(issues, 3),
	}
	data, err := toon.Marshal(result)
	if err != nil {
		t.Fatalf("TOON marshal failed: %v", err)
	}
	if len(data) == 0 {
		t.Error("TOON output should not be empty")
	}
}
