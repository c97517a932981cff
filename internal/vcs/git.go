package vcs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// ErrNoCommits is returned for HEAD-relative queries on an empty repository.
var ErrNoCommits = errors.New("repository has no commits")

// GitOpener opens git repositories using go-git.
type GitOpener struct{}

var _ Opener = (*GitOpener)(nil)

// NewGitOpener creates a new GitOpener.
func NewGitOpener() *GitOpener {
	return &GitOpener{}
}

// Open opens the repository containing path, detecting .git in parent directories.
func (o *GitOpener) Open(path string) (Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, err
	}
	wt, err := repo.Worktree()
	if err != nil {
		return nil, err
	}
	root, err := filepath.Abs(wt.Filesystem.Root())
	if err != nil {
		return nil, err
	}
	return &gitRepository{repo: repo, wt: wt, root: root}, nil
}

// gitRepository wraps a go-git repository and its worktree.
type gitRepository struct {
	repo *git.Repository
	wt   *git.Worktree
	root string
}

func (r *gitRepository) Root() string {
	return r.root
}

func (r *gitRepository) Head() (string, error) {
	ref, err := r.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return "", ErrNoCommits
		}
		return "", err
	}
	return ref.Hash().String()[:7], nil
}

func (r *gitRepository) ChangedFiles(opts ChangeOptions) ([]string, error) {
	changed := make(map[string]bool)

	status, err := r.wt.Status()
	if err != nil {
		return nil, fmt.Errorf("worktree status: %w", err)
	}
	for path, s := range status {
		switch {
		case s.Staging == git.Deleted || s.Worktree == git.Deleted:
			continue
		case s.Worktree == git.Untracked:
			if opts.IncludeUntracked {
				changed[path] = true
			}
		case s.Staging != git.Unmodified || s.Worktree != git.Unmodified:
			changed[path] = true
		}
	}

	if opts.Since != "" {
		paths, err := r.changedSince(opts.Since)
		if err != nil {
			return nil, err
		}
		for _, p := range paths {
			changed[p] = true
		}
	}

	files := make([]string, 0, len(changed))
	for p := range changed {
		abs := filepath.Join(r.root, filepath.FromSlash(p))
		if _, err := os.Stat(abs); err == nil {
			files = append(files, abs)
		}
	}
	sort.Strings(files)
	return files, nil
}

// changedSince lists files added or modified between rev and HEAD.
func (r *gitRepository) changedSince(rev string) ([]string, error) {
	baseHash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", rev, err)
	}
	head, err := r.repo.Head()
	if err != nil {
		return nil, ErrNoCommits
	}

	baseTree, err := treeOf(r.repo, *baseHash)
	if err != nil {
		return nil, err
	}
	headTree, err := treeOf(r.repo, head.Hash())
	if err != nil {
		return nil, err
	}

	changes, err := object.DiffTree(baseTree, headTree)
	if err != nil {
		return nil, fmt.Errorf("diff %s..HEAD: %w", rev, err)
	}

	var paths []string
	for _, ch := range changes {
		if ch.To.Name != "" {
			paths = append(paths, ch.To.Name)
		}
	}
	return paths, nil
}

func treeOf(repo *git.Repository, hash plumbing.Hash) (*object.Tree, error) {
	commit, err := repo.CommitObject(hash)
	if err != nil {
		return nil, err
	}
	return commit.Tree()
}
