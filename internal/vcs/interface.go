// Package vcs answers the version control questions a review needs: where
// the repository root is and which files have changed.
package vcs

// Repository provides access to git repository state.
type Repository interface {
	// Root returns the absolute path of the working tree.
	Root() string
	// Head returns the abbreviated hash of the HEAD commit.
	Head() (string, error)
	// ChangedFiles returns absolute paths of files that differ from HEAD, and
	// optionally from another revision, sorted and without deletions.
	ChangedFiles(opts ChangeOptions) ([]string, error)
}

// ChangeOptions configures ChangedFiles.
type ChangeOptions struct {
	// Since adds files changed between this revision and HEAD.
	Since string
	// IncludeUntracked adds files git does not yet track.
	IncludeUntracked bool
}

// Opener opens git repositories.
type Opener interface {
	// Open opens the repository containing path, searching parent directories.
	Open(path string) (Repository, error)
}
