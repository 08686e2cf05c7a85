package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/hyperast-go/hyperast/pkg/gitobj"
	"github.com/hyperast-go/hyperast/pkg/local"
)

// ErrNoCommitsInRange is returned when the (before, after) revision
// pair describes an empty range: after is not reachable from itself
// past before, or before equals after.
var ErrNoCommitsInRange = errors.New("ingest: no commits in range")

// Kind selects which of the engine's three entry points a campaign's
// commits are folded through — the project-kind distinction §4.4
// draws between Maven, plain Java, and C++ trees.
type Kind int

const (
	KindMaven Kind = iota
	KindJava
	KindCpp
)

// Campaign drives a revwalk-bounded multi-commit ingestion over a
// single Engine: the unit of work described by §6's "commits: Map<Oid,
// Commit>" output, identified by the correlation ID every log line of
// a run carries.
type Campaign struct {
	ID     string
	Engine *Engine
	Repo   *gitobj.Repository

	// DirPath is the module_path within each commit's tree the
	// traversal descends before classifying — the empty string folds
	// the whole repository root.
	DirPath string

	// Commits accumulates one entry per processed commit, keyed by its
	// hash, mirroring §6's in-memory output shape. A plain map, not an
	// LRU: every commit folded by a campaign is retained for its
	// lifetime so a caller can walk parent links afterward.
	Commits map[gitobj.Hash]Commit
}

// NewCampaign starts a campaign with a fresh correlation ID.
func NewCampaign(engine *Engine, repo *gitobj.Repository, dirPath string) *Campaign {
	return &Campaign{
		ID:      uuid.New().String(),
		Engine:  engine,
		Repo:    repo,
		DirPath: dirPath,
		Commits: make(map[gitobj.Hash]Commit),
	}
}

// Run walks every commit reachable from after but not from before
// (before may be the zero hash to mean "walk the whole history ending
// at after"), folding each one through kind's entry point in an order
// that maximizes memo reuse (parents before children, via
// SortTopological) and recording its MetaData and parent links into
// c.Commits.
func (c *Campaign) Run(ctx context.Context, kind Kind, before, after gitobj.Hash) error {
	logger := slog.Default().With("campaign_id", c.ID)

	walk, err := gitobj.NewRevWalk(c.Repo)
	if err != nil {
		return fmt.Errorf("ingest: campaign %s: %w", c.ID, err)
	}
	defer walk.Free()

	walk.SortTopological()

	if err := walk.Push(after); err != nil {
		return fmt.Errorf("ingest: campaign %s: %w", c.ID, err)
	}

	if !before.IsZero() {
		if err := walk.Hide(before); err != nil {
			return fmt.Errorf("ingest: campaign %s: %w", c.ID, err)
		}
	}

	processed := 0

	for {
		hash, err := walk.Next()
		if err != nil {
			break
		}

		if err := c.processCommit(ctx, kind, hash); err != nil {
			return fmt.Errorf("ingest: campaign %s: commit %s: %w", c.ID, hash, err)
		}

		processed++

		logger.DebugContext(ctx, "commit folded", "commit", hash.String())
	}

	if processed == 0 {
		return ErrNoCommitsInRange
	}

	logger.InfoContext(ctx, "campaign complete", "commits", processed)

	return nil
}

func (c *Campaign) processCommit(ctx context.Context, kind Kind, hash gitobj.Hash) error {
	commit, err := c.Repo.LookupCommit(ctx, hash)
	if err != nil {
		return err
	}
	defer commit.Free()

	tree, err := commit.Tree()
	if err != nil {
		return err
	}

	treeHash := tree.Hash()
	tree.Free()

	var l local.Local

	switch kind {
	case KindMaven:
		l, err = c.Engine.HandleMavenCommit(ctx, treeHash, c.DirPath)
	case KindJava:
		l, err = c.Engine.HandleJavaCommit(ctx, treeHash, c.DirPath)
	case KindCpp:
		l, err = c.Engine.HandleCppCommit(ctx, treeHash, c.DirPath)
	default:
		return fmt.Errorf("ingest: unknown campaign kind %d", kind)
	}

	if err != nil {
		return err
	}

	parents := make([]gitobj.Hash, commit.NumParents())
	for i := range parents {
		parents[i] = commit.ParentHash(i)
	}

	c.Commits[hash] = Commit{
		ASTRoot: l.Node,
		Parents: parents,
		MetaData: MetaData{
			Message: commit.Message(),
			Author:  commit.Author(),
		},
	}

	return nil
}
