// Package scanner finds the source files a review should cover.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"gopkg.in/op/go-logging.v1"

	"github.com/panbanda/reviewer/pkg/config"
	"github.com/panbanda/reviewer/pkg/language"
)

var log = logging.MustGetLogger("scanner")

// Scanner finds source files with a recognized language extension, honouring
// the configured exclusions and, optionally, .gitignore files.
type Scanner struct {
	config   *config.Config
	matchers []gitignore.Matcher
	loaded   map[string]bool
}

// NewScanner creates a new file scanner.
func NewScanner(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Scanner{config: cfg, loaded: make(map[string]bool)}
}

// findGitRoot walks up from start looking for a .git directory.
// Returns "" when start is not inside a repository.
func findGitRoot(start string) string {
	dir, err := filepath.Abs(start)
	if err != nil {
		return ""
	}
	for {
		if info, err := os.Stat(filepath.Join(dir, ".git")); err == nil && info.IsDir() {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadExcludePatterns builds one matcher per root from the config patterns,
// the excluded directory names and every .gitignore under the repository.
func (s *Scanner) loadExcludePatterns(root string) {
	if s.loaded[root] {
		return
	}
	s.loaded[root] = true

	var patterns []gitignore.Pattern
	for _, pattern := range s.config.Exclude.Patterns {
		patterns = append(patterns, gitignore.ParsePattern(pattern, nil))
	}
	for _, dir := range s.config.Exclude.Dirs {
		patterns = append(patterns, gitignore.ParsePattern(strings.TrimSuffix(dir, "/")+"/", nil))
	}

	if s.config.Exclude.Gitignore {
		if gitRoot := findGitRoot(root); gitRoot != "" {
			gitPatterns, err := gitignore.ReadPatterns(osfs.New(gitRoot), nil)
			if err != nil {
				log.Warningf("reading .gitignore files under %s: %s", gitRoot, err)
			} else {
				patterns = append(patterns, gitPatterns...)
			}
		}
	}

	if len(patterns) > 0 {
		s.matchers = append(s.matchers, gitignore.NewMatcher(patterns))
	}
}

// isExcluded checks a root-relative path against every matcher.
func (s *Scanner) isExcluded(path string, isDir bool) bool {
	parts := strings.Split(filepath.ToSlash(path), "/")
	for _, m := range s.matchers {
		if m.Match(parts, isDir) {
			return true
		}
	}
	return false
}

// Scan expands paths into a sorted, de-duplicated list of source files.
// Directories are walked; files are checked individually.
func (s *Scanner) Scan(paths ...string) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	seen := make(map[string]bool)
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}

		var found []string
		if info.IsDir() {
			found, err = s.ScanDir(p)
			if err != nil {
				return nil, err
			}
		} else if ok, err := s.ScanFile(p); err != nil {
			return nil, err
		} else if ok {
			found = []string{p}
		}

		for _, f := range found {
			if !seen[f] {
				seen[f] = true
				files = append(files, f)
			}
		}
	}
	sort.Strings(files)
	return files, nil
}

// ScanDir recursively scans a directory for source files.
// Symlinks that resolve outside root are skipped.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	files := make([]string, 0, 256)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	absRoot, err = filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}

	s.loadExcludePatterns(root)

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Debugf("skipping %s: %s", path, err)
			return nil
		}

		relPath, _ := filepath.Rel(root, path)
		if relPath == "." {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil || !isWithinRoot(resolved, absRoot) {
				return nil
			}
		}

		if d.IsDir() {
			if s.isExcluded(relPath, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if !s.isExcluded(relPath, false) && language.Known(path) {
			files = append(files, path)
		}
		return nil
	})

	sort.Strings(files)
	return files, walkErr
}

// isWithinRoot reports whether path is root or lies beneath it.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)
	return absPath == root || strings.HasPrefix(absPath, root+string(filepath.Separator))
}

// ScanFile checks if a single file should be analyzed.
func (s *Scanner) ScanFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if info.IsDir() {
		return false, nil
	}

	// Match against the repository-relative path so excluded directories
	// apply to files named explicitly, not only to walked ones.
	base := filepath.Dir(path)
	if root := findGitRoot(base); root != "" {
		base = root
	}
	s.loadExcludePatterns(base)

	rel := filepath.Base(path)
	if absBase, err := filepath.Abs(base); err == nil {
		if absPath, err := filepath.Abs(path); err == nil {
			if r, err := filepath.Rel(absBase, absPath); err == nil {
				rel = r
			}
		}
	}
	if s.isExcluded(rel, false) {
		return false, nil
	}
	return language.Known(path), nil
}

// GroupByLanguage groups files by their detected language label.
func GroupByLanguage(files []string) map[string][]string {
	groups := make(map[string][]string)
	for _, f := range files {
		if language.Known(f) {
			label := language.Detect(f)
			groups[label] = append(groups[label], f)
		}
	}
	return groups
}
