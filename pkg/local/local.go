// Package local holds the Local record: the handle a per-language file
// handler or a folded directory hands back to its parent frame — a node
// id paired with its metrics and (optionally) its still-open partial
// analysis.
package local

import (
	"github.com/hyperast-go/hyperast/pkg/analysis"
	"github.com/hyperast-go/hyperast/pkg/store"
)

// Local pairs a stored node with the metrics and partial analysis
// produced alongside it. Ana is nil for a Local that carries no
// reference/declaration surface (XML and POM files, C++ files and
// directories); a resolved analysis stays non-nil.
type Local struct {
	Node    store.NodeId
	Metrics store.Metrics
	Ana     *analysis.PartialAnalysis
}
