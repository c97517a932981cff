// Package analyzer defines the contract shared by all rule modules.
package analyzer

import "github.com/panbanda/reviewer/pkg/models"

// Module is a self-contained heuristic scanner for one category of problem.
//
// Detect must be total: any buffer and any language label produce a result
// (possibly empty) and never panic. Modules hold no mutable state, so one
// instance may serve concurrent requests.
type Module interface {
	// Name identifies the module in configuration and output.
	Name() string

	// Applies is the language gate. The engine skips modules that return false.
	Applies(language string) bool

	// Detect scans code and returns findings, line-specific ones first in
	// ascending line order followed by buffer-wide ones.
	Detect(code string, language string) []models.Issue
}

// Module names in canonical execution order.
const (
	NameSecurity        = "security"
	NameBugs            = "bugs"
	NamePerformance     = "performance"
	NameStyle           = "style"
	NameMaintainability = "maintainability"
)

// Order lists module names in the order the engine concatenates their output.
var Order = []string{NameSecurity, NameBugs, NamePerformance, NameStyle, NameMaintainability}
