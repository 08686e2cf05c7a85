package gitobj

import (
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
)

// RevWalk wraps a libgit2 revision walker, used by a campaign to
// enumerate the commits between a (before, after) revision pair.
type RevWalk struct {
	walk *git2go.RevWalk
	repo *Repository
}

// NewRevWalk creates a revision walker over repo.
func NewRevWalk(repo *Repository) (*RevWalk, error) {
	walk, err := repo.repo.Walk()
	if err != nil {
		return nil, fmt.Errorf("create revwalk: %w", err)
	}

	return &RevWalk{walk: walk, repo: repo}, nil
}

// Push adds a commit to start walking from.
func (w *RevWalk) Push(hash Hash) error {
	if err := w.walk.Push(hash.ToOid()); err != nil {
		return fmt.Errorf("push to revwalk: %w", err)
	}

	return nil
}

// Hide excludes hash and its ancestors from the walk — used to stop
// enumeration at the "before" revision of a (before, after) pair.
func (w *RevWalk) Hide(hash Hash) error {
	if err := w.walk.Hide(hash.ToOid()); err != nil {
		return fmt.Errorf("hide in revwalk: %w", err)
	}

	return nil
}

// SortTopological orders commits so a parent is always visited before
// its children, the order the traversal engine's memoization benefits
// from most (ancestors populate memo entries their descendants reuse).
func (w *RevWalk) SortTopological() {
	w.walk.Sorting(git2go.SortTopological | git2go.SortReverse)
}

// Next returns the next commit hash in the walk, io.EOF-style
// termination signaled by git2go's iterator-exhausted error.
func (w *RevWalk) Next() (Hash, error) {
	oid := new(git2go.Oid)

	if err := w.walk.Next(oid); err != nil {
		return Hash{}, fmt.Errorf("revwalk next: %w", err)
	}

	return HashFromOid(oid), nil
}

// Free releases the walker resources.
func (w *RevWalk) Free() {
	if w.walk != nil {
		w.walk.Free()
		w.walk = nil
	}
}
