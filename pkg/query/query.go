// Package query implements the read-only navigation surface over a
// folded commit tree: looking up a child by name or type, walking
// Maven module boundaries, and the bloom-gated reference-to-
// declaration search. Every lookup here is a pure function of the
// shared node/label stores — nothing here mutates them, unlike
// pkg/ingest's fold.
package query

import "github.com/hyperast-go/hyperast/pkg/store"

// Stores bundles the node/label store pair a query is issued against —
// the same pairing pkg/ingest's Engine owns (Engine.Nodes/Engine.Labels),
// exposed separately here so a query can run against a retained commit
// root without needing the rest of an Engine.
type Stores struct {
	Nodes  *store.NodeStore
	Labels *store.LabelStore
}

// ChildByName returns the named child of d, if d has one and name was
// ever interned. A name that was never interned into the label store
// cannot label any child, so that case is reported as not-found rather
// than interning it on the caller's behalf — a query must never
// mutate the stores it reads.
func (s Stores) ChildByName(d store.NodeId, name string) (store.NodeId, bool) {
	id, _, ok := s.ChildByNameWithIndex(d, name)

	return id, ok
}

// ChildByNameWithIndex is ChildByName plus the child's index among d's
// children, for a caller that also needs its position (e.g. to resume
// a positional scan from there).
func (s Stores) ChildByNameWithIndex(d store.NodeId, name string) (store.NodeId, int, bool) {
	label, ok := s.Labels.Get(name)
	if !ok {
		return 0, -1, false
	}

	id, idx, found := s.Nodes.Resolve(d).ChildByLabel(label)

	return id, idx, found
}

// ChildByType returns the first child of d whose Kind equals kind, and
// its index. Only d's immediate children are scanned — finding a kind
// nested deeper is the caller's job via repeated descent, matching the
// original's own child_by_type scope.
func (s Stores) ChildByType(d store.NodeId, kind string) (store.NodeId, int, bool) {
	return s.Nodes.Resolve(d).ChildByKind(kind)
}
