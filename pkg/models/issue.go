package models

import (
	"fmt"
	"strings"
)

// Severity represents how risky a finding is.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Severities lists every severity in ascending order of risk.
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// Weight returns a numeric weight for ordering (low=1 .. critical=4).
func (s Severity) Weight() int {
	switch s {
	case SeverityCritical:
		return 4
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	default:
		return 0
	}
}

// AtLeast reports whether s is as severe as other or more.
func (s Severity) AtLeast(other Severity) bool {
	return s.Weight() >= other.Weight()
}

// Valid reports whether s is one of the known severities.
func (s Severity) Valid() bool {
	return s.Weight() > 0
}

// ParseSeverity converts a case-insensitive name into a Severity.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(strings.ToLower(strings.TrimSpace(s)))
	if !sev.Valid() {
		return "", fmt.Errorf("unknown severity %q (want low, medium, high or critical)", s)
	}
	return sev, nil
}

// Category represents the kind of problem a finding describes.
type Category string

const (
	CategoryBug             Category = "bug"
	CategorySecurity        Category = "security"
	CategoryPerformance     Category = "performance"
	CategoryStyle           Category = "style"
	CategoryMaintainability Category = "maintainability"
	CategoryGeneral         Category = "general"
)

// Categories lists every category.
var Categories = []Category{
	CategoryBug,
	CategorySecurity,
	CategoryPerformance,
	CategoryStyle,
	CategoryMaintainability,
	CategoryGeneral,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	switch c {
	case CategoryBug, CategorySecurity, CategoryPerformance,
		CategoryStyle, CategoryMaintainability, CategoryGeneral:
		return true
	}
	return false
}

// Issue is a single finding reported by a rule module.
// Line is nil for buffer-wide findings.
type Issue struct {
	Description string   `json:"description" toon:"description" yaml:"description"`
	Severity    Severity `json:"severity" toon:"severity" yaml:"severity"`
	Category    Category `json:"category" toon:"category" yaml:"category"`
	Line        *int     `json:"line" toon:"line" yaml:"line"`
}

// NewIssue creates a buffer-wide issue.
func NewIssue(sev Severity, cat Category, description string) Issue {
	return Issue{
		Description: description,
		Severity:    sev,
		Category:    cat,
	}
}

// NewLineIssue creates an issue attached to a 1-based line number.
func NewLineIssue(sev Severity, cat Category, line int, description string) Issue {
	issue := NewIssue(sev, cat, description)
	issue.Line = &line
	return issue
}

// HasLine reports whether the issue points at a specific line.
func (i Issue) HasLine() bool {
	return i.Line != nil
}

// LineNumber returns the line number, or 0 for buffer-wide issues.
func (i Issue) LineNumber() int {
	if i.Line == nil {
		return 0
	}
	return *i.Line
}

// Location formats the issue position for display.
func (i Issue) Location() string {
	if i.Line == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *i.Line)
}
