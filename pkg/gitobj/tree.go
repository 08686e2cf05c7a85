package gitobj

import (
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
)

// Tree wraps a libgit2 tree.
type Tree struct {
	tree *git2go.Tree
}

// Hash returns the tree hash.
func (t *Tree) Hash() Hash { return HashFromOid(t.tree.Id()) }

// EntryCount returns the number of entries directly under the tree.
func (t *Tree) EntryCount() uint64 { return t.tree.EntryCount() }

// EntryByIndex returns the tree entry at the given index, or nil if out
// of range.
func (t *Tree) EntryByIndex(i uint64) *TreeEntry {
	entry := t.tree.EntryByIndex(i)
	if entry == nil {
		return nil
	}

	return &TreeEntry{entry: entry}
}

// EntryByName returns the entry with the given name directly under this
// tree, or nil.
func (t *Tree) EntryByName(name string) *TreeEntry {
	entry := t.tree.EntryByName(name)
	if entry == nil {
		return nil
	}

	return &TreeEntry{entry: entry}
}

// EntryByPath resolves a slash-separated path relative to this tree.
func (t *Tree) EntryByPath(path string) (*TreeEntry, error) {
	entry, err := t.tree.EntryByPath(path)
	if err != nil {
		return nil, fmt.Errorf("entry by path %q: %w", path, err)
	}

	return &TreeEntry{entry: entry}, nil
}

// Entries returns all direct children of the tree, in libgit2's own
// (lexically sorted) order.
func (t *Tree) Entries() []*TreeEntry {
	n := t.EntryCount()
	out := make([]*TreeEntry, 0, n)

	for i := uint64(0); i < n; i++ {
		out = append(out, t.EntryByIndex(i))
	}

	return out
}

// Free releases the tree resources.
func (t *Tree) Free() {
	if t.tree != nil {
		t.tree.Free()
		t.tree = nil
	}
}

// Native returns the underlying libgit2 tree.
func (t *Tree) Native() *git2go.Tree { return t.tree }

// TreeEntry wraps a libgit2 tree entry.
type TreeEntry struct {
	entry *git2go.TreeEntry
}

// Name returns the entry's name within its parent tree.
func (e *TreeEntry) Name() string { return e.entry.Name }

// Hash returns the entry's object hash.
func (e *TreeEntry) Hash() Hash { return HashFromOid(e.entry.Id) }

// IsTree reports whether the entry is itself a tree (directory).
func (e *TreeEntry) IsTree() bool { return e.entry.Type == git2go.ObjectTree }

// IsBlob reports whether the entry is a blob (file).
func (e *TreeEntry) IsBlob() bool { return e.entry.Type == git2go.ObjectBlob }
