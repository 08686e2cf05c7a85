package lang

import (
	"context"

	"github.com/hyperast-go/hyperast/pkg/local"
	"github.com/hyperast-go/hyperast/pkg/store"
)

// XMLHandler parses plain (non-POM) .xml sources into a Local. XML
// carries no declaration/reference vocabulary in this repository, so
// the result's Ana is always nil — the file still participates in
// hash-consing and in its parent directory's size/height fold.
type XMLHandler struct {
	Nodes  *store.NodeStore
	Labels *store.LabelStore
}

// NewXMLHandler builds a handler sharing the given stores.
func NewXMLHandler(nodes *store.NodeStore, labels *store.LabelStore) *XMLHandler {
	return &XMLHandler{Nodes: nodes, Labels: labels}
}

// Parse folds content into the store and returns its Local.
func (h *XMLHandler) Parse(ctx context.Context, content []byte) (local.Local, error) {
	xmlLang, err := getLanguage("xml")
	if err != nil {
		return local.Local{}, err
	}

	root, tree, err := parseTree(ctx, xmlLang, content)
	if err != nil {
		return local.Local{}, err
	}
	defer tree.Close()

	f := &folder{nodes: h.Nodes, labels: h.Labels, content: content}
	rootID := f.fold(root)
	ref := h.Nodes.Resolve(rootID)

	return local.Local{Node: rootID, Metrics: ref.Metrics()}, nil
}
