// Package language maps files to language labels and normalizes labels into families.
//
// Rule modules gate on a Family rather than the raw label a caller supplies, so
// "JavaScript", "js" and "typescript" all select the same rules.
package language

import (
	"net/url"
	"path/filepath"
	"strings"
)

// Labels returned by Detect.
const (
	LabelSwift      = "Swift"
	LabelPython     = "Python"
	LabelJavaScript = "JavaScript"
	LabelGo         = "Go"
	LabelRuby       = "Ruby"
	LabelJava       = "Java"
	LabelKotlin     = "Kotlin"
	LabelObjC       = "Objective-C"
)

// DefaultLabel is returned for absent or unrecognized input.
const DefaultLabel = LabelSwift

// Family is a canonical language family used by rule gates.
type Family string

const (
	FamilySwift      Family = "swift"
	FamilyJavaScript Family = "javascript"
	FamilyPython     Family = "python"
	FamilyGo         Family = "go"
	FamilyRuby       Family = "ruby"
	FamilyJava       Family = "java"
	FamilyKotlin     Family = "kotlin"
	FamilyObjC       Family = "objc"
	FamilyUnknown    Family = "unknown"
)

// String implements fmt.Stringer for toon serialization.
func (f Family) String() string {
	return string(f)
}

var extLabels = map[string]string{
	".swift": LabelSwift,
	".py":    LabelPython,
	".pyw":   LabelPython,
	".pyi":   LabelPython,
	".js":    LabelJavaScript,
	".mjs":   LabelJavaScript,
	".cjs":   LabelJavaScript,
	".jsx":   LabelJavaScript,
	".ts":    LabelJavaScript,
	".tsx":   LabelJavaScript,
	".go":    LabelGo,
	".rb":    LabelRuby,
	".java":  LabelJava,
	".kt":    LabelKotlin,
	".kts":   LabelKotlin,
	".m":     LabelObjC,
	".mm":    LabelObjC,
}

// Detect maps a file path, file URL or bare extension to a language label.
// It never fails: empty or unrecognized input yields DefaultLabel.
func Detect(ref string) string {
	if label, ok := lookup(ref); ok {
		return label
	}
	return DefaultLabel
}

// Known reports whether ref has an extension Detect recognizes.
func Known(ref string) bool {
	_, ok := lookup(ref)
	return ok
}

func lookup(ref string) (string, bool) {
	ext := extension(ref)
	if ext == "" {
		return "", false
	}
	label, ok := extLabels[ext]
	return label, ok
}

// extension extracts a lower-cased, dot-prefixed extension from ref.
func extension(ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}
	if strings.Contains(ref, "://") {
		if u, err := url.Parse(ref); err == nil {
			ref = u.Path
		}
	}
	if !strings.ContainsAny(ref, "./\\") {
		// Bare extension such as "swift".
		return "." + strings.ToLower(ref)
	}
	if strings.HasPrefix(ref, ".") && !strings.ContainsAny(ref[1:], "./\\") {
		return strings.ToLower(ref)
	}
	return strings.ToLower(filepath.Ext(ref))
}

var familyAliases = map[string]Family{
	"swift":       FamilySwift,
	"swiftui":     FamilySwift,
	"javascript":  FamilyJavaScript,
	"js":          FamilyJavaScript,
	"jsx":         FamilyJavaScript,
	"typescript":  FamilyJavaScript,
	"ts":          FamilyJavaScript,
	"tsx":         FamilyJavaScript,
	"node":        FamilyJavaScript,
	"ecmascript":  FamilyJavaScript,
	"python":      FamilyPython,
	"py":          FamilyPython,
	"python3":     FamilyPython,
	"go":          FamilyGo,
	"golang":      FamilyGo,
	"ruby":        FamilyRuby,
	"rb":          FamilyRuby,
	"java":        FamilyJava,
	"kotlin":      FamilyKotlin,
	"kt":          FamilyKotlin,
	"objective-c": FamilyObjC,
	"objc":        FamilyObjC,
	"objectivec":  FamilyObjC,
}

// Normalize maps a free-text language label onto its Family.
// Matching is case-insensitive; unknown labels yield FamilyUnknown.
func Normalize(label string) Family {
	key := strings.ToLower(strings.TrimSpace(label))
	if f, ok := familyAliases[key]; ok {
		return f
	}
	return FamilyUnknown
}

// ParseFamilies normalizes a list of labels, dropping unknown ones.
func ParseFamilies(labels []string) []Family {
	families := make([]Family, 0, len(labels))
	for _, l := range labels {
		if f := Normalize(l); f != FamilyUnknown {
			families = append(families, f)
		}
	}
	return families
}

// Set is an immutable set of families used as a rule gate.
type Set map[Family]struct{}

// NewSet builds a Set from families.
func NewSet(families ...Family) Set {
	s := make(Set, len(families))
	for _, f := range families {
		s[f] = struct{}{}
	}
	return s
}

// Contains reports whether f is in the set.
func (s Set) Contains(f Family) bool {
	_, ok := s[f]
	return ok
}

// LineComment returns the single-line comment prefix for a family.
func LineComment(f Family) string {
	switch f {
	case FamilyPython, FamilyRuby:
		return "#"
	default:
		return "//"
	}
}
