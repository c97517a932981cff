// Package maintainability flags whole-file size problems and leftover debug output.
package maintainability

import (
	"fmt"
	"strings"

	"github.com/panbanda/reviewer/pkg/analyzer"
	"github.com/panbanda/reviewer/pkg/language"
	"github.com/panbanda/reviewer/pkg/models"
)

// DefaultMaxLines is the largest file, in lines, that passes the size check.
const DefaultMaxLines = 500

const descPrint = "Consider using proper logging instead of print statements"

// printCalls maps a family to the calls treated as debug output.
var printCalls = map[language.Family][]string{
	language.FamilySwift:      {"print(", "debugPrint(", "NSLog("},
	language.FamilyPython:     {"print("},
	language.FamilyJavaScript: {"console.log("},
	language.FamilyGo:         {"fmt.Println(", "println("},
	language.FamilyRuby:       {"puts "},
	language.FamilyKotlin:     {"println("},
	language.FamilyJava:       {"System.out.println("},
}

// Analyzer runs the maintainability rules. It applies to every language.
type Analyzer struct {
	maxLines int
}

var _ analyzer.Module = (*Analyzer)(nil)

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithMaxLines sets the size threshold. Values <= 0 disable the size check.
func WithMaxLines(n int) Option {
	return func(a *Analyzer) {
		a.maxLines = n
	}
}

// New creates a maintainability analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{maxLines: DefaultMaxLines}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name implements analyzer.Module.
func (a *Analyzer) Name() string {
	return analyzer.NameMaintainability
}

// Applies implements analyzer.Module.
func (a *Analyzer) Applies(string) bool {
	return true
}

// Detect implements analyzer.Module.
func (a *Analyzer) Detect(code, lang string) []models.Issue {
	f := language.Normalize(lang)
	lines := analyzer.SplitLines(code)
	prefix := language.LineComment(f)

	var issues []models.Issue
	if calls := printCalls[f]; len(calls) > 0 {
		for i, line := range lines {
			if analyzer.IsLineComment(line, prefix) {
				continue
			}
			for _, call := range calls {
				if strings.Contains(line, call) {
					issues = append(issues, models.NewLineIssue(models.SeverityLow, models.CategoryMaintainability, i+1, descPrint))
					break
				}
			}
		}
	}
	if a.maxLines > 0 && len(lines) > a.maxLines {
		issues = append(issues, models.NewIssue(
			models.SeverityMedium,
			models.CategoryMaintainability,
			fmt.Sprintf("Large file detected (%d lines) - consider splitting into smaller modules", len(lines)),
		))
	}
	return issues
}
