package lang

import (
	"context"
	"strings"

	sitter "github.com/alexaandru/go-tree-sitter-bare"

	"github.com/hyperast-go/hyperast/pkg/analysis"
	"github.com/hyperast-go/hyperast/pkg/local"
	"github.com/hyperast-go/hyperast/pkg/store"
)

// javaDeclarationKinds are the CST node types that introduce a new
// named scope worth tracking as a Declaration path component. Method
// and constructor names are included because the maxRefs budget in
// §4.3 is meant to catch classes with many call sites, and qualifying
// references down to method scope keeps Resolve precise for the
// common "private helper used once nearby" case.
var javaDeclarationKinds = map[string]bool{
	"class_declaration":       true,
	"interface_declaration":   true,
	"enum_declaration":        true,
	"record_declaration":      true,
	"method_declaration":      true,
	"constructor_declaration": true,
}

// javaReferenceKinds are leaf kinds treated as a use of a name rather
// than its introduction.
var javaReferenceKinds = map[string]bool{
	"identifier":      true,
	"type_identifier": true,
}

// JavaHandler parses .java sources into a Local, folding the CST into
// the shared store and deriving a partial analysis of declared and
// referenced names from the Java grammar's class/method/identifier
// node kinds.
type JavaHandler struct {
	Nodes  *store.NodeStore
	Labels *store.LabelStore
}

// NewJavaHandler builds a handler sharing the given stores with the
// rest of the traversal.
func NewJavaHandler(nodes *store.NodeStore, labels *store.LabelStore) *JavaHandler {
	return &JavaHandler{Nodes: nodes, Labels: labels}
}

// Parse folds content (the bytes of a .java file) into the store and
// returns its Local. propagateOnBadCST mirrors
// PROPAGATE_ERROR_ON_BAD_CST_NODE: when true, a parse containing an
// ERROR node is returned as an error instead of best-effort folded.
func (h *JavaHandler) Parse(ctx context.Context, file string, content []byte, propagateOnBadCST bool) (local.Local, error) {
	javaLang, err := getLanguage("java")
	if err != nil {
		return local.Local{}, err
	}

	root, tree, err := parseTree(ctx, javaLang, content)
	if err != nil {
		return local.Local{}, err
	}
	defer tree.Close()

	f := &folder{nodes: h.Nodes, labels: h.Labels, content: content}
	rootID := f.fold(root)

	if f.sawBad && propagateOnBadCST {
		return local.Local{}, &errBadCST{file: file}
	}

	ana := analysis.New()
	walkJavaSemantics(root, nil, ana, content)
	ana.Resolve()

	ref := h.Nodes.Resolve(rootID)

	return local.Local{Node: rootID, Metrics: ref.Metrics(), Ana: ana}, nil
}

// walkJavaSemantics derives Declarations and References from the raw
// tree-sitter node, independent of the store fold. enclosing is the
// dotted scope chain (class, then nested class/method) accumulated so
// far down the CST from the compilation unit root.
func walkJavaSemantics(n sitter.Node, enclosing []string, ana *analysis.PartialAnalysis, content []byte) {
	kind := n.Type()

	if javaDeclarationKinds[kind] {
		nameNode := n.ChildByFieldName("name")
		name := nodeText(nameNode, content)

		scoped := enclosing
		if name != "" {
			scoped = append(append([]string{}, enclosing...), name)
			ana.AddDeclaration(analysis.Declaration{Path: strings.Join(scoped, ".")})
		}

		for i := range n.NamedChildCount() {
			child := n.NamedChild(i)
			if sameSpan(child, nameNode) {
				continue
			}

			walkJavaSemantics(child, scoped, ana, content)
		}

		return
	}

	if javaReferenceKinds[kind] {
		ana.AddReference(analysis.Reference{
			Name:          nodeText(n, content),
			EnclosingPath: append([]string{}, enclosing...),
		})

		return
	}

	for i := range n.NamedChildCount() {
		walkJavaSemantics(n.NamedChild(i), enclosing, ana, content)
	}
}
