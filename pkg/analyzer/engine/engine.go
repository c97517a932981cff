// Package engine orchestrates the rule modules over a single source buffer.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/sourcegraph/conc/iter"

	"github.com/panbanda/reviewer/pkg/analyzer"
	"github.com/panbanda/reviewer/pkg/analyzer/bugs"
	"github.com/panbanda/reviewer/pkg/analyzer/maintainability"
	"github.com/panbanda/reviewer/pkg/analyzer/performance"
	"github.com/panbanda/reviewer/pkg/analyzer/security"
	"github.com/panbanda/reviewer/pkg/analyzer/style"
	"github.com/panbanda/reviewer/pkg/models"
)

const (
	// DefaultMaxBytes is the largest buffer analyzed by default.
	DefaultMaxBytes = 1 << 20
	// DefaultMaxLines is the largest line count analyzed by default.
	DefaultMaxLines = 100_000
)

// depthModules lists the built-in modules each depth runs. Deep runs every
// installed module.
var depthModules = map[models.Depth][]string{
	models.DepthQuick:    {analyzer.NameSecurity, analyzer.NameBugs},
	models.DepthStandard: {analyzer.NameSecurity, analyzer.NameBugs, analyzer.NamePerformance, analyzer.NameStyle},
}

// ErrUnknownModule is returned when a request names a module the engine lacks.
var ErrUnknownModule = errors.New("unknown analysis module")

// Request is one analysis request.
type Request struct {
	Code     string
	Language string
	// Depth selects a module set. Empty means the engine default.
	Depth models.Depth
	// Modules selects modules by name and overrides Depth when non-empty.
	Modules []string
}

// Engine runs rule modules and concatenates their findings in module order.
// It holds no per-request state and is safe for concurrent use.
type Engine struct {
	modules  map[string]analyzer.Module
	depth    models.Depth
	maxBytes int
	maxLines int
}

// Option is a functional option for configuring Engine.
type Option func(*Engine)

// WithModule installs m, replacing any module with the same name. Modules
// outside the built-in set run after it in name order, at deep depth or when
// selected by name.
func WithModule(m analyzer.Module) Option {
	return func(e *Engine) {
		e.modules[strings.ToLower(m.Name())] = m
	}
}

// WithDepth sets the depth used when a request does not specify one.
func WithDepth(d models.Depth) Option {
	return func(e *Engine) {
		e.depth = d
	}
}

// WithMaxBytes sets the buffer size ceiling. Values <= 0 disable it.
func WithMaxBytes(n int) Option {
	return func(e *Engine) {
		e.maxBytes = n
	}
}

// WithMaxLines sets the line count ceiling. Values <= 0 disable it.
func WithMaxLines(n int) Option {
	return func(e *Engine) {
		e.maxLines = n
	}
}

// New creates an engine with the default rule modules.
func New(opts ...Option) *Engine {
	e := &Engine{
		modules: map[string]analyzer.Module{
			analyzer.NameSecurity:        security.New(),
			analyzer.NameBugs:            bugs.New(),
			analyzer.NamePerformance:     performance.New(),
			analyzer.NameStyle:           style.New(),
			analyzer.NameMaintainability: maintainability.New(),
		},
		depth:    models.DepthStandard,
		maxBytes: DefaultMaxBytes,
		maxLines: DefaultMaxLines,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Analyze runs the selected modules over req.Code. The only failures are a
// cancelled context, an unknown module or depth, and an exceeded resource
// limit. Module output is concatenated in canonical module order.
func (e *Engine) Analyze(ctx context.Context, req Request) (*models.AnalysisResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := e.checkLimits(req.Code); err != nil {
		return nil, err
	}

	selected, depth, err := e.selectModules(req)
	if err != nil {
		return nil, err
	}

	active := make([]analyzer.Module, 0, len(selected))
	for _, m := range selected {
		if m.Applies(req.Language) {
			active = append(active, m)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	outputs := iter.Map(active, func(m *analyzer.Module) []models.Issue {
		return (*m).Detect(req.Code, req.Language)
	})

	issues := make([]models.Issue, 0)
	for _, out := range outputs {
		issues = append(issues, out...)
	}

	return &models.AnalysisResult{
		Language: req.Language,
		Depth:    depth,
		Issues:   issues,
		Summary:  models.Summarize(issues, analyzer.LineCount(req.Code)),
	}, nil
}

// Plan returns the names of the modules req selects, before language gating,
// and the depth it resolves to.
func (e *Engine) Plan(req Request) ([]string, models.Depth, error) {
	mods, depth, err := e.selectModules(req)
	if err != nil {
		return nil, "", err
	}
	names := make([]string, len(mods))
	for i, m := range mods {
		names[i] = m.Name()
	}
	return names, depth, nil
}

// selectModules resolves the module list for req in canonical order.
func (e *Engine) selectModules(req Request) ([]analyzer.Module, models.Depth, error) {
	depth := req.Depth
	if depth == "" {
		depth = e.depth
	}
	depth, err := models.ParseDepth(string(depth))
	if err != nil {
		return nil, "", err
	}

	names := depthModules[depth]
	if depth == models.DepthDeep {
		names = e.order()
	}
	if len(req.Modules) > 0 {
		wanted := make(map[string]bool, len(req.Modules))
		for _, n := range req.Modules {
			key := strings.ToLower(strings.TrimSpace(n))
			if _, ok := e.modules[key]; !ok {
				return nil, "", fmt.Errorf("%w: %q", ErrUnknownModule, n)
			}
			wanted[key] = true
		}
		names = nil
		for _, n := range e.order() {
			if wanted[n] {
				names = append(names, n)
			}
		}
	}

	mods := make([]analyzer.Module, 0, len(names))
	for _, n := range names {
		if m, ok := e.modules[n]; ok {
			mods = append(mods, m)
		}
	}
	return mods, depth, nil
}

// order lists installed module names: the built-in ones in canonical order,
// then any others sorted by name.
func (e *Engine) order() []string {
	names := make([]string, 0, len(e.modules))
	builtin := make(map[string]bool, len(analyzer.Order))
	for _, n := range analyzer.Order {
		builtin[n] = true
		if _, ok := e.modules[n]; ok {
			names = append(names, n)
		}
	}
	var extra []string
	for n := range e.modules {
		if !builtin[n] {
			extra = append(extra, n)
		}
	}
	sort.Strings(extra)
	return append(names, extra...)
}

func (e *Engine) checkLimits(code string) error {
	if e.maxBytes > 0 && len(code) > e.maxBytes {
		return &ResourceLimitError{Resource: ResourceBytes, Limit: e.maxBytes, Actual: len(code)}
	}
	if e.maxLines > 0 {
		// Count without allocating the split slice.
		if n := strings.Count(code, "\n") + 1; n > e.maxLines {
			return &ResourceLimitError{Resource: ResourceLines, Limit: e.maxLines, Actual: n}
		}
	}
	return nil
}

// Analyze runs the default engine at standard depth and returns only the issues.
// Oversized input yields nil.
func Analyze(code, language string) []models.Issue {
	result, err := defaultEngine.Analyze(context.Background(), Request{Code: code, Language: language})
	if err != nil {
		return nil
	}
	return result.Issues
}

var defaultEngine = New()
