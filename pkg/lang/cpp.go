package lang

import (
	"context"

	"github.com/hyperast-go/hyperast/pkg/local"
	"github.com/hyperast-go/hyperast/pkg/store"
)

// CppHandler parses .cpp/.h sources into a Local. The C++ branch never
// carried partial analysis in the original (CppAcc.Push ignores
// skippedAna — see pkg/acc/cpp.go), so this handler only folds
// structure and never populates Ana.
type CppHandler struct {
	Nodes  *store.NodeStore
	Labels *store.LabelStore
}

// NewCppHandler builds a handler sharing the given stores.
func NewCppHandler(nodes *store.NodeStore, labels *store.LabelStore) *CppHandler {
	return &CppHandler{Nodes: nodes, Labels: labels}
}

// Parse folds content into the store and returns its Local.
func (h *CppHandler) Parse(ctx context.Context, file string, content []byte, propagateOnBadCST bool) (local.Local, error) {
	cppLang, err := getLanguage("cpp")
	if err != nil {
		return local.Local{}, err
	}

	root, tree, err := parseTree(ctx, cppLang, content)
	if err != nil {
		return local.Local{}, err
	}
	defer tree.Close()

	f := &folder{nodes: h.Nodes, labels: h.Labels, content: content}
	rootID := f.fold(root)

	if f.sawBad && propagateOnBadCST {
		return local.Local{}, &errBadCST{file: file}
	}

	ref := h.Nodes.Resolve(rootID)

	return local.Local{Node: rootID, Metrics: ref.Metrics()}, nil
}
