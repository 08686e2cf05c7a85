package store

import "github.com/hyperast-go/hyperast/pkg/bloomtier"

// NodeId is an opaque handle into a NodeStore. The zero value never
// names a real node — valid ids start at 1.
type NodeId uint32

// Metrics accumulates monotonically as directories fold their children.
type Metrics struct {
	Size   uint32
	Height uint32
}

// Node is a single entry in the content-addressed store: a syntax-tree
// node (file-level CST node or folded directory) carrying its type tag,
// optional label, ordered children, the hash triple computed at insert
// time, and the inline reference bloom filter selected for it.
//
// ChildrenNames is populated only for directory-shaped nodes (where a
// child is looked up by name); CST nodes folded from a per-language
// parse leave it nil.
type Node struct {
	Kind          string
	Label         LabelId
	HasLabel      bool
	Children      []NodeId
	ChildrenNames []LabelId
	Metrics       Metrics
	Hashes        Hashes
	Bloom         bloomtier.Filter
}

// NodeStore is the append-only, hash-consed table of syntax-tree nodes.
// Two inserts describing the same (type, label, children) tuple always
// resolve to the same NodeId — enforced by bucketing candidates on their
// syntax hash and resolving collisions with a caller-supplied equality
// predicate.
type NodeStore struct {
	nodes   []Node
	buckets map[uint32][]NodeId
}

// NewNodeStore builds an empty node store.
func NewNodeStore() *NodeStore {
	return &NodeStore{buckets: make(map[uint32][]NodeId)}
}

// Insertion is the result of PrepareInsertion: either an existing node
// satisfying the equality predicate (Occupied), or a handle that
// InsertAfterPrepare must be called with to materialize a new node in
// the right hash bucket (Vacant).
type Insertion struct {
	hit  bool
	id   NodeId
	hash uint32
}

// Occupied reports whether the insertion already resolved to an
// existing node, and if so which one.
func (ins Insertion) Occupied() (NodeId, bool) { return ins.id, ins.hit }

// PrepareInsertion looks up the bucket for hash (the node's full syntax
// hash, per §4.4's fold step) and scans its candidates with eq. The
// first candidate eq accepts is returned as Occupied; if none match (or
// the bucket is empty), the returned Insertion is Vacant and must be
// passed to InsertAfterPrepare together with the node tuple.
func (s *NodeStore) PrepareInsertion(hash uint32, eq func(NodeId) bool) Insertion {
	for _, candidate := range s.buckets[hash] {
		if eq(candidate) {
			return Insertion{hit: true, id: candidate}
		}
	}

	return Insertion{hash: hash}
}

// InsertAfterPrepare appends n as a new node and records it in the
// bucket ins was prepared against. Panics if ins was Occupied — callers
// must check Occupied() first, since calling this on a hit would create
// a spurious duplicate and violate hash-consing.
func (s *NodeStore) InsertAfterPrepare(ins Insertion, n Node) NodeId {
	if ins.hit {
		panic("store: InsertAfterPrepare called on an occupied insertion")
	}

	id := NodeId(len(s.nodes) + 1)
	s.nodes = append(s.nodes, n)
	s.buckets[ins.hash] = append(s.buckets[ins.hash], id)

	return id
}

// Len returns the number of distinct nodes in the store.
func (s *NodeStore) Len() int { return len(s.nodes) }

// Resolve returns a read-only view over id. Panics on an id the store
// never issued.
func (s *NodeStore) Resolve(id NodeId) NodeRef {
	if id == 0 || int(id) > len(s.nodes) {
		panic("store: resolve of unknown NodeId")
	}

	return NodeRef{store: s, id: id}
}

// NodeRef is a read-only view over a stored node, exposing its
// attached facets (component queries, in the original's terms: type,
// label, children, metrics, hashes, bloom filter).
type NodeRef struct {
	store *NodeStore
	id    NodeId
}

func (r NodeRef) node() *Node { return &r.store.nodes[r.id-1] }

// ID returns the node's id within its store.
func (r NodeRef) ID() NodeId { return r.id }

// Kind returns the node's type tag.
func (r NodeRef) Kind() string { return r.node().Kind }

// Label returns the node's label, if any.
func (r NodeRef) Label() (LabelId, bool) {
	n := r.node()

	return n.Label, n.HasLabel
}

// Children returns the node's children, in fold order.
func (r NodeRef) Children() []NodeId { return r.node().Children }

// ChildrenNames returns the labels paired with Children for a
// directory-shaped node; nil for CST nodes.
func (r NodeRef) ChildrenNames() []LabelId { return r.node().ChildrenNames }

// Metrics returns the node's size/height.
func (r NodeRef) Metrics() Metrics { return r.node().Metrics }

// Hashes returns the node's hash triple.
func (r NodeRef) Hashes() Hashes { return r.node().Hashes }

// Bloom returns the node's inline reference bloom filter.
func (r NodeRef) Bloom() bloomtier.Filter { return r.node().Bloom }

// ChildByLabel returns the child with the given label and its index
// among Children, for a directory-shaped node.
func (r NodeRef) ChildByLabel(label LabelId) (NodeId, int, bool) {
	names := r.ChildrenNames()
	for i, n := range names {
		if n == label {
			return r.Children()[i], i, true
		}
	}

	return 0, -1, false
}

// ChildByKind linear-scans Children for the first one whose Kind
// matches, returning its id and index.
func (r NodeRef) ChildByKind(kind string) (NodeId, int, bool) {
	for i, c := range r.Children() {
		if r.store.Resolve(c).Kind() == kind {
			return c, i, true
		}
	}

	return 0, -1, false
}
