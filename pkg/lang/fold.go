// Package lang adapts raw file bytes into a Local via a real
// tree-sitter parse, folding every CST node (not just file roots) into
// the shared content-addressed node store — the per-language "tree
// generator" the original treats as an external collaborator is, in
// this repository, implemented in-house on top of
// go-tree-sitter-bare and go-sitter-forest.
package lang

import (
	"context"
	"fmt"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/hyperast-go/hyperast/pkg/bloomtier"
	"github.com/hyperast-go/hyperast/pkg/store"
)

// errBadCST is wrapped around a parse that produced an ERROR node,
// surfaced only when PROPAGATE_ERROR_ON_BAD_CST_NODE is set.
type errBadCST struct {
	file string
}

func (e *errBadCST) Error() string {
	return fmt.Sprintf("lang: %s produced a CST with an ERROR node", e.file)
}

// folder walks a tree-sitter parse tree, content-addressing every node
// into the shared store. It is reused by every per-language handler —
// only the tree-sitter language and the declaration/reference walk
// differ between them.
type folder struct {
	nodes   *store.NodeStore
	labels  *store.LabelStore
	content []byte
	sawBad  bool
}

// fold recursively content-addresses n and its named children,
// returning the resulting NodeId. Leaves (zero named children) are
// labeled with their raw source text when non-empty — this covers
// identifiers and literals alike, matching how the teacher's own DSL
// node walk treats unmapped leaf tokens. Anonymous tokens (punctuation,
// keywords) are not folded as nodes of their own.
func (f *folder) fold(n sitter.Node) store.NodeId {
	kind := n.Type()
	if kind == "ERROR" {
		f.sawBad = true
	}

	namedCount := n.NamedChildCount()
	children := make([]store.NodeId, 0, namedCount)
	childStruct := make([]uint32, 0, namedCount)
	childSyntax := make([]uint32, 0, namedCount)

	var size, height uint32 = 1, 0

	for i := range namedCount {
		child := n.NamedChild(i)
		cid := f.fold(child)
		ref := f.nodes.Resolve(cid)

		children = append(children, cid)
		childStruct = append(childStruct, ref.Hashes().Structural)
		childSyntax = append(childSyntax, ref.Hashes().Syntax)

		size += ref.Metrics().Size
		if ref.Metrics().Height > height {
			height = ref.Metrics().Height
		}
	}

	height++

	var (
		label    store.LabelId
		hasLabel bool
	)

	if namedCount == 0 {
		text := f.content[n.StartByte():n.EndByte()]
		if len(text) > 0 {
			label = f.labels.GetOrInsert(string(text))
			hasLabel = true
		}
	}

	kindHash := store.Hash32([]byte(kind))

	var labelHash uint32
	if hasLabel {
		labelHash = store.Hash32([]byte(f.labels.Resolve(label)))
	}

	structuralHash := store.InnerNodeHash(kindHash, 0, size, store.SumChildHashes(childStruct))
	syntaxHash := store.InnerNodeHash(kindHash, labelHash, size, store.SumChildHashes(childSyntax))

	ins := f.nodes.PrepareInsertion(syntaxHash, func(candidate store.NodeId) bool {
		return sameNode(f.nodes, candidate, kind, label, hasLabel, children)
	})
	if id, ok := ins.Occupied(); ok {
		return id
	}

	return f.nodes.InsertAfterPrepare(ins, store.Node{
		Kind:     kind,
		Label:    label,
		HasLabel: hasLabel,
		Children: children,
		Metrics:  store.Metrics{Size: size, Height: height},
		Hashes:   store.Hashes{Structural: structuralHash, Syntax: syntaxHash},
		Bloom:    bloomtier.New(bloomtier.TierNone),
	})
}

func sameNode(nodes *store.NodeStore, candidate store.NodeId, kind string, label store.LabelId, hasLabel bool, children []store.NodeId) bool {
	ref := nodes.Resolve(candidate)
	if ref.Kind() != kind {
		return false
	}

	cl, chl := ref.Label()
	if chl != hasLabel || (hasLabel && cl != label) {
		return false
	}

	existing := ref.Children()
	if len(existing) != len(children) {
		return false
	}

	for i := range existing {
		if existing[i] != children[i] {
			return false
		}
	}

	return true
}

// parseTree runs a tree-sitter parse of content under lang, returning
// the root node and the tree (which the caller must Close).
func parseTree(ctx context.Context, tsLang *sitter.Language, content []byte) (sitter.Node, *sitter.Tree, error) {
	parser := sitter.NewParser()
	parser.SetLanguage(tsLang)

	tree, err := parser.ParseString(ctx, nil, content)
	if err != nil {
		return sitter.Node{}, nil, fmt.Errorf("tree-sitter parse: %w", err)
	}

	root := tree.RootNode()
	if root.IsNull() {
		tree.Close()

		return sitter.Node{}, nil, fmt.Errorf("tree-sitter parse: %w", errNoRootNode)
	}

	return root, tree, nil
}

func nodeText(n sitter.Node, content []byte) string {
	if n.IsNull() {
		return ""
	}

	return string(content[n.StartByte():n.EndByte()])
}

func sameSpan(a, b sitter.Node) bool {
	if a.IsNull() || b.IsNull() {
		return a.IsNull() == b.IsNull()
	}

	return a.StartByte() == b.StartByte() && a.EndByte() == b.EndByte()
}
