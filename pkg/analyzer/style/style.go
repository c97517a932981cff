// Package style checks line length and documentation coverage.
package style

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/panbanda/reviewer/pkg/analyzer"
	"github.com/panbanda/reviewer/pkg/language"
	"github.com/panbanda/reviewer/pkg/models"
)

const (
	// DefaultMaxLineLength is the longest line, in characters, that passes.
	DefaultMaxLineLength = 120
	// DefaultDocLookback is how many lines above a declaration are searched for docs.
	DefaultDocLookback = 3

	descUndocumented = "Code contains functions without documentation comments"
)

// funcKeywords maps a family to the prefixes that open a function declaration.
var funcKeywords = map[language.Family][]string{
	language.FamilySwift:      {"func "},
	language.FamilyGo:         {"func "},
	language.FamilyJavaScript: {"function "},
	language.FamilyPython:     {"def "},
	language.FamilyRuby:       {"def "},
	language.FamilyKotlin:     {"fun "},
}

// declModifiers may precede the declaration keyword. Attributes such as
// @objc or @MainActor are skipped separately.
var declModifiers = map[string]bool{
	"private": true, "fileprivate": true, "public": true, "internal": true, "open": true,
	"static": true, "class": true, "final": true, "override": true, "mutating": true,
	"nonmutating": true, "convenience": true, "required": true, "dynamic": true,
	"nonisolated": true, "async": true, "export": true, "default": true,
	"suspend": true, "inline": true, "protected": true, "operator": true, "infix": true,
}

var (
	docMarkers     = []string{"///", "/**"}
	commentMarkers = []string{"//", "/*", "*", "#"}
)

// Analyzer runs the style checks. Each check has its own language gate.
type Analyzer struct {
	maxLineLength    int
	docLookback      int
	lineFamilies     language.Set
	docFamilies      language.Set
	reportAllMissing bool
}

var _ analyzer.Module = (*Analyzer)(nil)

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithMaxLineLength sets the longest accepted line. Values <= 0 are ignored.
func WithMaxLineLength(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.maxLineLength = n
		}
	}
}

// WithDocLookback sets the documentation look-back window. Values <= 0 are ignored.
func WithDocLookback(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.docLookback = n
		}
	}
}

// WithLineLengthFamilies sets the families the line-length check applies to.
func WithLineLengthFamilies(families ...language.Family) Option {
	return func(a *Analyzer) {
		a.lineFamilies = language.NewSet(families...)
	}
}

// WithDocumentationFamilies sets the families the documentation check applies to.
func WithDocumentationFamilies(families ...language.Family) Option {
	return func(a *Analyzer) {
		a.docFamilies = language.NewSet(families...)
	}
}

// WithReportAllUndocumented reports every undocumented function with its line
// instead of stopping at the first one.
func WithReportAllUndocumented() Option {
	return func(a *Analyzer) {
		a.reportAllMissing = true
	}
}

// New creates a style analyzer. Both checks default to Swift only.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		maxLineLength: DefaultMaxLineLength,
		docLookback:   DefaultDocLookback,
		lineFamilies:  language.NewSet(language.FamilySwift),
		docFamilies:   language.NewSet(language.FamilySwift),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name implements analyzer.Module.
func (a *Analyzer) Name() string {
	return analyzer.NameStyle
}

// Applies implements analyzer.Module.
func (a *Analyzer) Applies(lang string) bool {
	f := language.Normalize(lang)
	return a.lineFamilies.Contains(f) || a.docFamilies.Contains(f)
}

// Detect implements analyzer.Module.
func (a *Analyzer) Detect(code, lang string) []models.Issue {
	f := language.Normalize(lang)
	lines := analyzer.SplitLines(code)

	var issues []models.Issue
	if a.lineFamilies.Contains(f) {
		issues = append(issues, a.checkLineLength(lines)...)
	}
	if a.docFamilies.Contains(f) {
		issues = append(issues, a.checkDocumentation(lines, funcKeywords[f])...)
	}
	analyzer.SortByLine(issues)
	return issues
}

func (a *Analyzer) checkLineLength(lines []string) []models.Issue {
	var issues []models.Issue
	for i, line := range lines {
		n := utf8.RuneCountInString(line)
		if n <= a.maxLineLength {
			continue
		}
		issues = append(issues, models.NewLineIssue(
			models.SeverityLow,
			models.CategoryStyle,
			i+1,
			fmt.Sprintf("Line %d exceeds %d characters (%d characters)", i+1, a.maxLineLength, n),
		))
	}
	return issues
}

// checkDocumentation looks for function declarations with no doc comment in
// the look-back window. Blank lines and plain comments are skipped over; any
// other content ends the search. Unless reportAllMissing is set, the first
// undocumented function ends the scan with a single buffer-wide finding.
func (a *Analyzer) checkDocumentation(lines []string, keywords []string) []models.Issue {
	if len(keywords) == 0 {
		return nil
	}

	var issues []models.Issue
	for i, line := range lines {
		if !isDeclaration(line, keywords) {
			continue
		}
		if a.isDocumented(lines, i) {
			continue
		}
		if !a.reportAllMissing {
			return []models.Issue{models.NewIssue(models.SeverityLow, models.CategoryStyle, descUndocumented)}
		}
		issues = append(issues, models.NewLineIssue(
			models.SeverityLow,
			models.CategoryStyle,
			i+1,
			fmt.Sprintf("Function at line %d has no documentation comment", i+1),
		))
	}
	return issues
}

func (a *Analyzer) isDocumented(lines []string, idx int) bool {
	for j := idx - 1; j >= 0 && j >= idx-a.docLookback; j-- {
		prev := strings.TrimSpace(lines[j])
		switch {
		case hasAnyPrefix(prev, docMarkers):
			return true
		case prev == "" || hasAnyPrefix(prev, commentMarkers):
			continue
		case stripAttributes(prev) == "":
			// attribute lines belong to the declaration below them
			continue
		default:
			return false
		}
	}
	return false
}

// isDeclaration reports whether line opens a function once leading
// attributes and modifiers are dropped.
func isDeclaration(line string, keywords []string) bool {
	rest := stripAttributes(line)
	for {
		word, tail, _ := strings.Cut(rest, " ")
		if !declModifiers[word] {
			break
		}
		rest = stripAttributes(tail)
	}
	return hasAnyPrefix(rest, keywords)
}

// stripAttributes drops leading @attributes, including parenthesized
// arguments, and surrounding whitespace.
func stripAttributes(s string) string {
	for {
		s = strings.TrimSpace(s)
		if !strings.HasPrefix(s, "@") {
			return s
		}
		i := 1
		for i < len(s) && (isIdentByte(s[i]) || s[i] == '.') {
			i++
		}
		if i < len(s) && s[i] == '(' {
			depth := 0
			for ; i < len(s); i++ {
				if s[i] == '(' {
					depth++
				} else if s[i] == ')' {
					depth--
					if depth == 0 {
						i++
						break
					}
				}
			}
		}
		s = s[i:]
	}
}

func isIdentByte(c byte) bool {
	return c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
