package query

import "github.com/hyperast-go/hyperast/pkg/store"

// declarationKinds are the CST node kinds a declaration search treats
// as type-level declarations worth resolving references against —
// the same scope-introducing kinds pkg/lang/java.go tracks during
// ingestion, narrowed to the type level (methods and constructors are
// left out: the original's print_references_to_declarations_aux only
// ever resolves Type::ClassDeclaration, and the qualification chain it
// builds for a nested member declaration is materially more involved
// than a flat name match affords at query time).
var declarationKinds = map[string]bool{
	"class_declaration":     true,
	"interface_declaration": true,
	"enum_declaration":      true,
	"record_declaration":    true,
}

// referenceKinds are the leaf CST kinds treated as a use of a name,
// mirroring pkg/lang/java.go's javaReferenceKinds.
var referenceKinds = map[string]bool{
	"identifier":      true,
	"type_identifier": true,
}

// Declaration is a type-level declaration rediscovered by walking the
// persisted CST, paired with its identifier child's resolved name.
type Declaration struct {
	Node store.NodeId
	Name string
}

// Declarations walks the subtree rooted at root and returns every
// declaration found, in pre-order. Unlike pkg/analysis.PartialAnalysis
// (an ephemeral per-ingestion accumulator that is merged and resolved
// away by the time a commit is folded), this re-derives the same
// information from the persisted tree itself, the way the original
// re-walks the stored CST with IterDeclarations rather than keeping the
// ingestion-time analysis around.
func Declarations(s Stores, root store.NodeId) []Declaration {
	var decls []Declaration

	stack := []store.NodeId{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		ref := s.Nodes.Resolve(id)
		if declarationKinds[ref.Kind()] {
			if name, ok := declarationName(s, ref); ok {
				decls = append(decls, Declaration{Node: id, Name: name})
			}
		}

		children := ref.Children()
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}

	return decls
}

// declarationName finds the identifier child directly under a
// declaration node and resolves its label — the query-time stand-in
// for the original's loop over get_children() looking for
// Type::Identifier, since a persisted Node carries no tree-sitter
// field name ("name") to look the child up by directly.
func declarationName(s Stores, ref store.NodeRef) (string, bool) {
	for _, c := range ref.Children() {
		cref := s.Nodes.Resolve(c)
		if !referenceKinds[cref.Kind()] {
			continue
		}

		if label, ok := cref.Label(); ok {
			return s.Labels.Resolve(label), true
		}
	}

	return "", false
}

// MatchedReference pairs a declaration with an identifier node found
// elsewhere in the search root that shares its name.
type MatchedReference struct {
	Declaration Declaration
	Node        store.NodeId
}

// FindReferencesToDeclarations is the query-time counterpart of
// print_references_to_declarations: for every declaration found under
// root, it searches the same root for identifier leaves sharing the
// declaration's name. Grounded on print_references_to_declarations
// driving IterMavenModules -> src/main/java and src/test/java ->
// print_references_to_declarations_aux; callers assemble that module
// loop themselves with MavenModules and SourceRoots and call this once
// per resolved source root.
func FindReferencesToDeclarations(s Stores, root store.NodeId) []MatchedReference {
	decls := Declarations(s, root)

	var matches []MatchedReference

	for _, d := range decls {
		for _, use := range findIdentifierUses(s, root, d.Name, d.Node) {
			if use == d.Node {
				continue
			}

			matches = append(matches, MatchedReference{Declaration: d, Node: use})
		}
	}

	return matches
}

// findIdentifierUses walks root for identifier/type_identifier leaves
// whose resolved text equals name, pruning any directory-shaped
// subtree whose bloom filter reports name as definitely absent. Every
// bloom tier is honored exactly as stored — a TierNone filter always
// prunes, a TierMuch one never does — rather than stopping the search
// at some fixed tier threshold, per the resolved "search all tiers"
// decision. Non-directory nodes (CST nodes, which always fold with a
// TierNone placeholder filter of their own) are never gated on their
// own Bloom — only a directory boundary's filter is a meaningful
// membership claim about the reference names anywhere in its fold.
// That filter holds only the names left unresolved at the directory's
// fold, so uses resolved to a declaration inside the directory are not
// in it: a directory containing decl is never pruned.
func findIdentifierUses(s Stores, root store.NodeId, name string, decl store.NodeId) []store.NodeId {
	var uses []store.NodeId

	needle := []byte(name)

	var contains func(id store.NodeId) bool

	contains = func(id store.NodeId) bool {
		if id == decl {
			return true
		}

		for _, c := range s.Nodes.Resolve(id).Children() {
			if contains(c) {
				return true
			}
		}

		return false
	}

	var walk func(id store.NodeId)

	walk = func(id store.NodeId) {
		ref := s.Nodes.Resolve(id)

		if isDirectoryKind(ref.Kind()) && !ref.Bloom().Test(needle) && !contains(id) {
			return
		}

		if referenceKinds[ref.Kind()] {
			if label, ok := ref.Label(); ok && s.Labels.Resolve(label) == name {
				uses = append(uses, id)
			}
		}

		for _, c := range ref.Children() {
			walk(c)
		}
	}

	walk(root)

	return uses
}
