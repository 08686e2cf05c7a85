package ingest

import (
	"context"
	"fmt"

	"github.com/hyperast-go/hyperast/pkg/gitobj"
)

// GitTreeReader adapts a *gitobj.Repository to TreeReader, the
// concrete collaborator a campaign wires the engine to.
type GitTreeReader struct {
	repo *gitobj.Repository
}

// NewGitTreeReader wraps repo.
func NewGitTreeReader(repo *gitobj.Repository) *GitTreeReader {
	return &GitTreeReader{repo: repo}
}

// Entries lists hash's direct children, in libgit2's lexical order —
// the reordering rule in §4.4 is applied by the traversal engine
// itself, not by the reader.
func (r *GitTreeReader) Entries(hash gitobj.Hash) ([]DirEntry, error) {
	tree, err := r.repo.LookupTree(hash)
	if err != nil {
		return nil, fmt.Errorf("ingest: lookup tree %s: %w", hash, err)
	}
	defer tree.Free()

	entries := tree.Entries()
	out := make([]DirEntry, 0, len(entries))

	for _, e := range entries {
		out = append(out, DirEntry{Name: e.Name(), Hash: e.Hash(), IsTree: e.IsTree()})
	}

	return out, nil
}

// Blob returns the raw bytes of the blob named by hash.
func (r *GitTreeReader) Blob(hash gitobj.Hash) ([]byte, error) {
	blob, err := r.repo.LookupBlob(context.Background(), hash)
	if err != nil {
		return nil, fmt.Errorf("ingest: lookup blob %s: %w", hash, err)
	}
	defer blob.Free()

	// Contents() is only valid until Free — copy it out before releasing
	// the libgit2-owned buffer.
	raw := blob.Contents()
	out := make([]byte, len(raw))
	copy(out, raw)

	return out, nil
}
