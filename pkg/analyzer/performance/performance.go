// Package performance flags common anti-patterns that waste work at runtime.
package performance

import (
	"strings"

	"github.com/panbanda/reviewer/pkg/analyzer"
	"github.com/panbanda/reviewer/pkg/language"
	"github.com/panbanda/reviewer/pkg/models"
)

// Rule is a co-occurrence trigger: it fires once per buffer when every token
// in AllOf appears somewhere in the code, regardless of proximity.
type Rule struct {
	ID          string
	AllOf       []string
	Families    language.Set
	Severity    models.Severity
	Description string
}

func (r Rule) matches(code string, f language.Family) bool {
	if !r.Families.Contains(f) || len(r.AllOf) == 0 {
		return false
	}
	for _, token := range r.AllOf {
		if !strings.Contains(code, token) {
			return false
		}
	}
	return true
}

// DefaultRules returns the built-in performance rules.
func DefaultRules() []Rule {
	return []Rule{
		{
			ID:          "foreach-push",
			AllOf:       []string{"forEach", "push"},
			Families:    language.NewSet(language.FamilyJavaScript),
			Severity:    models.SeverityLow,
			Description: "Consider using map() instead of forEach with push for better performance",
		},
		{
			ID:          "loop-string-concat",
			AllOf:       []string{"for ", "+= \""},
			Families:    language.NewSet(language.FamilyPython),
			Severity:    models.SeverityLow,
			Description: "Consider using str.join() instead of += string concatenation in loops",
		},
	}
}

// Analyzer runs the performance rules.
type Analyzer struct {
	rules []Rule
}

var _ analyzer.Module = (*Analyzer)(nil)

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithRule appends a custom rule.
func WithRule(r Rule) Option {
	return func(a *Analyzer) {
		a.rules = append(a.rules, r)
	}
}

// New creates a performance analyzer with the default rules.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{rules: DefaultRules()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name implements analyzer.Module.
func (a *Analyzer) Name() string {
	return analyzer.NamePerformance
}

// Applies implements analyzer.Module. A module applies when any of its rules does.
func (a *Analyzer) Applies(lang string) bool {
	f := language.Normalize(lang)
	for _, r := range a.rules {
		if r.Families.Contains(f) {
			return true
		}
	}
	return false
}

// Detect implements analyzer.Module.
func (a *Analyzer) Detect(code, lang string) []models.Issue {
	f := language.Normalize(lang)
	var issues []models.Issue
	for _, r := range a.rules {
		if r.matches(code, f) {
			issues = append(issues, models.NewIssue(r.Severity, models.CategoryPerformance, r.Description))
		}
	}
	return issues
}
