package engine

import (
	"github.com/panbanda/reviewer/pkg/analyzer/bugs"
	"github.com/panbanda/reviewer/pkg/analyzer/maintainability"
	"github.com/panbanda/reviewer/pkg/analyzer/performance"
	"github.com/panbanda/reviewer/pkg/analyzer/security"
	"github.com/panbanda/reviewer/pkg/analyzer/style"
	"github.com/panbanda/reviewer/pkg/config"
	"github.com/panbanda/reviewer/pkg/language"
	"github.com/panbanda/reviewer/pkg/models"
)

// FromConfig translates cfg into engine options. Invalid values are expected
// to have been rejected by config.Validate; any that slip through fall back
// to module defaults.
func FromConfig(cfg *config.Config) []Option {
	if cfg == nil {
		return nil
	}

	var opts []Option
	if d, err := models.ParseDepth(cfg.Analysis.Depth); err == nil {
		opts = append(opts, WithDepth(d))
	}
	opts = append(opts,
		WithMaxBytes(cfg.Analysis.MaxBytes),
		WithMaxLines(cfg.Analysis.MaxLines),
	)

	var secOpts []security.Option
	if cfg.Security.ScriptLanguages != nil {
		secOpts = append(secOpts, security.WithScriptFamilies(language.ParseFamilies(cfg.Security.ScriptLanguages)...))
	}
	if cfg.Security.StorageLanguages != nil {
		secOpts = append(secOpts, security.WithStorageFamilies(language.ParseFamilies(cfg.Security.StorageLanguages)...))
	}

	var bugOpts []bugs.Option
	if len(cfg.Bugs.Markers) > 0 {
		bugOpts = append(bugOpts, bugs.WithMarkers(cfg.Bugs.Markers...))
	}

	styleOpts := []style.Option{
		style.WithMaxLineLength(cfg.Style.MaxLineLength),
		style.WithDocLookback(cfg.Style.DocLookback),
	}
	if cfg.Style.LineLengthLanguages != nil {
		styleOpts = append(styleOpts, style.WithLineLengthFamilies(language.ParseFamilies(cfg.Style.LineLengthLanguages)...))
	}
	if cfg.Style.DocumentationLanguages != nil {
		styleOpts = append(styleOpts, style.WithDocumentationFamilies(language.ParseFamilies(cfg.Style.DocumentationLanguages)...))
	}
	if cfg.Style.ReportAllUndocumented {
		styleOpts = append(styleOpts, style.WithReportAllUndocumented())
	}

	return append(opts,
		WithModule(security.New(secOpts...)),
		WithModule(bugs.New(bugOpts...)),
		WithModule(performance.New()),
		WithModule(style.New(styleOpts...)),
		WithModule(maintainability.New(maintainability.WithMaxLines(cfg.Maintainability.MaxLines))),
	)
}

// RequestFromConfig builds a request carrying the configured module selection.
func RequestFromConfig(cfg *config.Config, code, lang string) Request {
	req := Request{Code: code, Language: lang}
	if cfg != nil && len(cfg.Analysis.Modules) > 0 {
		req.Modules = cfg.Analysis.Modules
	}
	return req
}
