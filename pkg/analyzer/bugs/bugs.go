// Package bugs reports code smells that usually hide unfinished or broken work.
package bugs

import (
	"strings"

	"github.com/panbanda/reviewer/pkg/analyzer"
	"github.com/panbanda/reviewer/pkg/models"
)

const descMarkers = "Found TODO/FIXME comments that should be addressed"

// DefaultMarkers are the literal tokens that signal unfinished work.
var DefaultMarkers = []string{"TODO", "FIXME"}

// Analyzer runs the bug/smell rules. It applies to every language.
type Analyzer struct {
	markers []string
}

var _ analyzer.Module = (*Analyzer)(nil)

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithMarkers replaces the marker tokens. Matching is case-sensitive.
func WithMarkers(markers ...string) Option {
	return func(a *Analyzer) {
		a.markers = markers
	}
}

// New creates a bug/smell analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{markers: DefaultMarkers}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name implements analyzer.Module.
func (a *Analyzer) Name() string {
	return analyzer.NameBugs
}

// Applies implements analyzer.Module.
func (a *Analyzer) Applies(string) bool {
	return true
}

// Detect reports a single finding when any marker occurs, however many times.
func (a *Analyzer) Detect(code, _ string) []models.Issue {
	for _, m := range a.markers {
		if m != "" && strings.Contains(code, m) {
			return []models.Issue{models.NewIssue(models.SeverityMedium, models.CategoryBug, descMarkers)}
		}
	}
	return nil
}
