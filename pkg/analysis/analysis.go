// Package analysis implements the partial-analysis accumulator: the
// per-subtree bag of unresolved reference paths and declarations that
// is merged at every directory boundary and resolved (against a
// module's own declarations) at a Maven module boundary or once it
// drops back under MAX_REFS.
//
// A "reference path" here is a dotted scope chain synthesized from a
// CST identifier node, playing the part the teacher's tree-sitter node
// roles (node.RoleDeclaration / node.RoleReference / node.RoleImport)
// play for declarations and usages — declaration- and
// reference-worthiness is decided in pkg/lang from the grammar's own
// node kinds (class/method declarations, identifier/type_identifier
// leaves), not from role names.
package analysis

// Declaration is a named entity discovered while folding a file's CST:
// a class, method, field, or similar binding.
type Declaration struct {
	// Path is the dotted qualified name, outermost-to-innermost
	// (package.Class.method).
	Path string
}

// Reference is an unresolved use of a name: the raw identifier text at
// the point of use, plus the enclosing-scope chain it was seen in (used
// to synthesize progressively qualified candidates at resolve time, per
// spec §4.5).
type Reference struct {
	Name          string
	EnclosingPath []string
}

// PartialAnalysis accumulates references and declarations for one
// subtree under construction. It is mutable, owned exclusively by the
// stack frame building it, until Acc merges it into a parent or Resolve
// consumes it at a boundary.
type PartialAnalysis struct {
	refs  []Reference
	decls []Declaration
}

// New returns an empty accumulator.
func New() *PartialAnalysis {
	return &PartialAnalysis{}
}

// AddDeclaration records a declaration discovered directly in this
// subtree.
func (a *PartialAnalysis) AddDeclaration(d Declaration) {
	a.decls = append(a.decls, d)
}

// AddReference records an unresolved reference discovered directly in
// this subtree.
func (a *PartialAnalysis) AddReference(r Reference) {
	a.refs = append(a.refs, r)
}

// RefsCount returns the number of unresolved references currently
// accumulated — the value the bloom tier and skipped_ana decisions are
// keyed on.
func (a *PartialAnalysis) RefsCount() int {
	if a == nil {
		return 0
	}

	return len(a.refs)
}

// Declarations returns the accumulated declarations.
func (a *PartialAnalysis) Declarations() []Declaration {
	if a == nil {
		return nil
	}

	return a.decls
}

// References returns the accumulated unresolved references.
func (a *PartialAnalysis) References() []Reference {
	if a == nil {
		return nil
	}

	return a.refs
}

// Acc merges child into a, the way a directory fold absorbs each
// child's partial analysis before folding the directory node itself.
// child is left unusable afterwards — callers must not reuse it.
func (a *PartialAnalysis) Acc(child *PartialAnalysis) {
	if child == nil {
		return
	}

	a.refs = append(a.refs, child.refs...)
	a.decls = append(a.decls, child.decls...)
}

// Resolve attempts to match every accumulated reference against the
// accumulated declarations (a reference resolves when its name, or one
// of its enclosing-qualified forms, equals a declaration's path).
// Resolved references are dropped from the accumulator; unresolved ones
// remain to be merged further up, exactly as the original's
// ana.resolve() narrows the reference set at a module boundary or once
// refs_count falls back under MAX_REFS.
func (a *PartialAnalysis) Resolve() {
	declared := make(map[string]struct{}, len(a.decls))
	for _, d := range a.decls {
		declared[d.Path] = struct{}{}
	}

	remaining := a.refs[:0]

	for _, r := range a.refs {
		if resolves(r, declared) {
			continue
		}

		remaining = append(remaining, r)
	}

	a.refs = remaining
}

// resolves reports whether r matches any declared path, searching the
// same candidate forms §4.5's reference-to-declaration convenience
// synthesizes: the bare name, then each enclosing-scope-qualified form
// from innermost to outermost.
func resolves(r Reference, declared map[string]struct{}) bool {
	if _, ok := declared[r.Name]; ok {
		return true
	}

	prefix := r.Name
	for i := len(r.EnclosingPath) - 1; i >= 0; i-- {
		prefix = r.EnclosingPath[i] + "." + prefix
		if _, ok := declared[prefix]; ok {
			return true
		}
	}

	return false
}
