// Package security detects risky constructs such as eval, innerHTML writes and
// secrets persisted to plain key-value storage.
package security

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/panbanda/reviewer/pkg/analyzer"
	"github.com/panbanda/reviewer/pkg/language"
	"github.com/panbanda/reviewer/pkg/models"
)

const (
	descEval      = "Use of eval() detected - security risk"
	descInnerHTML = "Use of innerHTML detected - potential XSS risk"
)

// Analyzer runs the security rules.
type Analyzer struct {
	scriptFamilies  language.Set
	storageFamilies language.Set
}

// Compile-time check that Analyzer implements Module.
var _ analyzer.Module = (*Analyzer)(nil)

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithScriptFamilies sets the families the eval and innerHTML rules apply to.
// By default only JavaScript.
func WithScriptFamilies(families ...language.Family) Option {
	return func(a *Analyzer) {
		a.scriptFamilies = language.NewSet(families...)
	}
}

// WithStorageFamilies sets the families the secret-storage rule applies to.
// By default only Swift.
func WithStorageFamilies(families ...language.Family) Option {
	return func(a *Analyzer) {
		a.storageFamilies = language.NewSet(families...)
	}
}

// New creates a security analyzer with default options.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		scriptFamilies:  language.NewSet(language.FamilyJavaScript),
		storageFamilies: language.NewSet(language.FamilySwift),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name implements analyzer.Module.
func (a *Analyzer) Name() string {
	return analyzer.NameSecurity
}

// Applies implements analyzer.Module.
func (a *Analyzer) Applies(lang string) bool {
	f := language.Normalize(lang)
	return a.scriptFamilies.Contains(f) || a.storageFamilies.Contains(f)
}

// Detect implements analyzer.Module.
func (a *Analyzer) Detect(code, lang string) []models.Issue {
	f := language.Normalize(lang)
	commentPrefix := language.LineComment(f)

	var issues []models.Issue
	if a.storageFamilies.Contains(f) {
		issues = append(issues, detectSecretStorage(code, commentPrefix)...)
	}
	if a.scriptFamilies.Contains(f) {
		live := analyzer.StripLineComments(code, commentPrefix)
		if strings.Contains(live, "eval(") {
			issues = append(issues, models.NewIssue(models.SeverityHigh, models.CategorySecurity, descEval))
		}
		if strings.Contains(live, "innerHTML") {
			issues = append(issues, models.NewIssue(models.SeverityMedium, models.CategorySecurity, descInnerHTML))
		}
	}
	return issues
}

var (
	declPattern    = regexp.MustCompile(`^\s*(?:(?:private|fileprivate|public|internal|static)\s+)*(?:let|var)\s+([A-Za-z_][A-Za-z0-9_]*)`)
	persistPattern = regexp.MustCompile(`\.set\(\s*([A-Za-z_][A-Za-z0-9_.]*)?`)
	forKeyPattern  = regexp.MustCompile(`forKey:\s*"([^"]*)"`)
)

// secretNameWords mark an identifier as holding a secret.
var secretNameWords = []string{"password", "passwd", "secret", "token", "key"}

// secretKeyWords mark a storage key literal as naming a secret. Bare "key" is
// left out because nearly every storage key would match it.
var secretKeyWords = []string{"password", "passwd", "secret", "token", "apikey", "api_key", "credential"}

func containsAny(s string, words []string) bool {
	lower := strings.ToLower(s)
	for _, w := range words {
		if strings.Contains(lower, w) {
			return true
		}
	}
	return false
}

// detectSecretStorage flags key-value store writes of secret-looking values.
// The finding points at the write, not at the declaration of the secret.
func detectSecretStorage(code, commentPrefix string) []models.Issue {
	var issues []models.Issue
	declared := make(map[string]bool)

	for i, line := range analyzer.SplitLines(code) {
		line = analyzer.StripComment(line, commentPrefix)
		if strings.TrimSpace(line) == "" {
			continue
		}
		if m := declPattern.FindStringSubmatch(line); m != nil && containsAny(m[1], secretNameWords) {
			declared[m[1]] = true
		}
		if !isPersistenceCall(line) {
			continue
		}
		if storesSecret(line, declared) {
			lineNum := i + 1
			issues = append(issues, models.NewLineIssue(
				models.SeverityHigh,
				models.CategorySecurity,
				lineNum,
				fmt.Sprintf("Sensitive data stored in UserDefaults at line %d - use Keychain instead", lineNum),
			))
		}
	}
	return issues
}

func isPersistenceCall(line string) bool {
	if !strings.Contains(line, ".set(") {
		return false
	}
	return strings.Contains(line, "UserDefaults") || strings.Contains(line, "forKey:")
}

func storesSecret(line string, declared map[string]bool) bool {
	if m := persistPattern.FindStringSubmatch(line); m != nil && m[1] != "" {
		arg := m[1]
		if idx := strings.LastIndex(arg, "."); idx >= 0 {
			arg = arg[idx+1:]
		}
		if declared[arg] || containsAny(arg, secretNameWords) {
			return true
		}
	}
	if m := forKeyPattern.FindStringSubmatch(line); m != nil && containsAny(m[1], secretKeyWords) {
		return true
	}
	return false
}
