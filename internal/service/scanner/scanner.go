// Package scanner resolves command-line paths into the files a review covers.
package scanner

import (
	"path/filepath"

	"github.com/panbanda/reviewer/internal/scanner"
	"github.com/panbanda/reviewer/internal/vcs"
	"github.com/panbanda/reviewer/pkg/config"
)

// ScanResult contains the result of a file scan.
type ScanResult struct {
	Files          []string
	LanguageGroups map[string][]string
	RepoRoot       string
}

// Service provides file scanning functionality.
type Service struct {
	config *config.Config
	opener vcs.Opener
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithOpener sets the VCS opener.
func WithOpener(opener vcs.Opener) Option {
	return func(s *Service) {
		s.opener = opener
	}
}

// New creates a new scanner service.
func New(opts ...Option) *Service {
	s := &Service{opener: vcs.NewGitOpener()}
	for _, opt := range opts {
		opt(s)
	}
	if s.config == nil {
		s.config = config.LoadOrDefault()
	}
	return s
}

// ScanPaths expands files and directories into absolute source file paths.
func (s *Service) ScanPaths(paths []string) (*ScanResult, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	abs := make([]string, len(paths))
	for i, path := range paths {
		p, err := filepath.Abs(path)
		if err != nil {
			return nil, &PathError{Path: path, Err: err}
		}
		abs[i] = p
	}

	files, err := scanner.NewScanner(s.config).Scan(abs...)
	if err != nil {
		return nil, &ScanError{Path: paths[0], Err: err}
	}

	return &ScanResult{
		Files:          files,
		LanguageGroups: scanner.GroupByLanguage(files),
	}, nil
}

// ScanChanged is ScanPaths restricted to files git reports as modified,
// staged or untracked, plus files changed since the given revision.
func (s *Service) ScanChanged(paths []string, since string) (*ScanResult, error) {
	result, err := s.ScanPaths(paths)
	if err != nil {
		return nil, err
	}

	start := "."
	if len(paths) > 0 {
		start = paths[0]
	}
	absStart, err := filepath.Abs(start)
	if err != nil {
		return nil, &PathError{Path: start, Err: err}
	}

	repo, err := s.opener.Open(absStart)
	if err != nil {
		return nil, &GitError{Err: err}
	}
	changed, err := repo.ChangedFiles(vcs.ChangeOptions{Since: since, IncludeUntracked: true})
	if err != nil {
		return nil, &GitError{Err: err}
	}

	want := make(map[string]bool, len(changed))
	for _, f := range changed {
		want[f] = true
	}
	files := result.Files[:0]
	for _, f := range result.Files {
		if want[f] {
			files = append(files, f)
		}
	}

	return &ScanResult{
		Files:          files,
		LanguageGroups: scanner.GroupByLanguage(files),
		RepoRoot:       repo.Root(),
	}, nil
}

// PathError indicates an invalid path.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return "invalid path " + e.Path + ": " + e.Err.Error()
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// ScanError indicates a scanning failure.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return "failed to scan " + e.Path + ": " + e.Err.Error()
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// GitError indicates the path is not in a usable git repository.
type GitError struct {
	Err error
}

func (e *GitError) Error() string {
	return "not a git repository (or any parent): " + e.Err.Error()
}

func (e *GitError) Unwrap() error {
	return e.Err
}
