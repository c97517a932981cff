// Package analysis runs reviews over buffers and file sets, consulting the
// result cache and collecting per-file failures.
package analysis

import (
	"context"
	"errors"
	"strings"

	"github.com/hashicorp/go-multierror"
	logging "gopkg.in/op/go-logging.v1"

	"github.com/panbanda/reviewer/internal/cache"
	"github.com/panbanda/reviewer/internal/fileproc"
	"github.com/panbanda/reviewer/pkg/analyzer/engine"
	"github.com/panbanda/reviewer/pkg/config"
	"github.com/panbanda/reviewer/pkg/language"
	"github.com/panbanda/reviewer/pkg/models"
	"github.com/panbanda/reviewer/pkg/report"
	"github.com/panbanda/reviewer/pkg/source"
)

var log = logging.MustGetLogger("analysis")

// Service orchestrates code analysis operations.
type Service struct {
	config  *config.Config
	engine  *engine.Engine
	cache   *cache.Cache
	source  source.ContentSource
	workers int
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration. The engine is built from it unless
// WithEngine is also given.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithEngine sets the analysis engine.
func WithEngine(e *engine.Engine) Option {
	return func(s *Service) {
		s.engine = e
	}
}

// WithCache enables result caching.
func WithCache(c *cache.Cache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

// WithSource sets where file content is read from.
func WithSource(src source.ContentSource) Option {
	return func(s *Service) {
		s.source = src
	}
}

// WithWorkers bounds file-level concurrency.
func WithWorkers(n int) Option {
	return func(s *Service) {
		s.workers = n
	}
}

// New creates a new analysis service.
func New(opts ...Option) *Service {
	s := &Service{source: source.NewFilesystem()}
	for _, opt := range opts {
		opt(s)
	}
	if s.config == nil {
		s.config = config.DefaultConfig()
	}
	if s.engine == nil {
		s.engine = engine.New(engine.FromConfig(s.config)...)
	}
	return s
}

// Options selects what a request runs.
type Options struct {
	// Depth overrides the configured depth when set.
	Depth models.Depth
	// Modules overrides the configured module selection when non-empty.
	Modules []string
	// OnProgress is called once per file in AnalyzeFiles.
	OnProgress func()
}

func (s *Service) request(code, lang string, opts Options) engine.Request {
	req := engine.RequestFromConfig(s.config, code, lang)
	if opts.Depth != "" {
		req.Depth = opts.Depth
	}
	if len(opts.Modules) > 0 {
		req.Modules = opts.Modules
	}
	return req
}

// AnalyzeCode analyzes a single buffer. An empty lang falls back to the
// default language label.
func (s *Service) AnalyzeCode(ctx context.Context, code, lang string, opts Options) (*models.AnalysisResult, error) {
	if strings.TrimSpace(lang) == "" {
		lang = language.Detect("")
	}
	return s.engine.Analyze(ctx, s.request(code, lang, opts))
}

// AnalyzeFiles analyzes files concurrently, labelling each by its extension.
// Files that cannot be read or exceed the resource ceiling are recorded in
// the batch's Errors; only an invalid selection or cancellation fails the
// whole call.
func (s *Service) AnalyzeFiles(ctx context.Context, files []string, opts Options) (*report.Batch, error) {
	if _, _, err := s.engine.Plan(s.request("", "", opts)); err != nil {
		return nil, err
	}

	procOpts := []fileproc.Option{fileproc.WithWorkers(s.workers)}
	if opts.OnProgress != nil {
		procOpts = append(procOpts, fileproc.WithProgress(opts.OnProgress))
	}

	results, err := fileproc.MapSource(ctx, files, s.source, func(ctx context.Context, path, text string) (models.FileReport, error) {
		result, err := s.analyzeFile(ctx, path, text, opts)
		if err != nil {
			return models.FileReport{}, err
		}
		return models.NewFileReport(path, result), nil
	}, procOpts...)

	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}

	batch := report.New(fileproc.Values(results))
	if err != nil {
		var merr *multierror.Error
		if !errors.As(err, &merr) {
			return nil, err
		}
		for _, e := range merr.Errors {
			var perr *fileproc.ProcessingError
			if errors.As(e, &perr) {
				log.Warningf("skipping %s: %v", perr.Path, perr.Err)
				batch.AddError(perr.Path, perr.Err)
			}
		}
	}
	return batch, nil
}

func (s *Service) analyzeFile(ctx context.Context, path, text string, opts Options) (*models.AnalysisResult, error) {
	req := s.request(text, language.Detect(path), opts)
	key := cacheKey(req)

	if s.cache != nil {
		if cached, ok := s.cache.Get(path, key); ok {
			log.Debugf("cache hit: %s", path)
			return cached, nil
		}
	}

	result, err := s.engine.Analyze(ctx, req)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(path, key, result); err != nil {
			log.Warningf("cache write %s: %v", path, err)
		}
	}
	return result, nil
}

// cacheKey hashes the buffer together with the request's module selection.
func cacheKey(req engine.Request) string {
	var b strings.Builder
	b.WriteString(string(req.Depth))
	b.WriteByte(0)
	b.WriteString(strings.Join(req.Modules, ","))
	b.WriteByte(0)
	b.WriteString(req.Language)
	b.WriteByte(0)
	b.WriteString(req.Code)
	return cache.HashString(b.String())
}
