package acc

import (
	"github.com/hyperast-go/hyperast/pkg/analysis"
	"github.com/hyperast-go/hyperast/pkg/local"
	"github.com/hyperast-go/hyperast/pkg/store"
)

// JavaAcc accumulates a plain directory inside a Java source root: the
// common case once traversal has entered a `src/main/java`-style tree
// and is no longer looking for Maven structure.
type JavaAcc struct {
	base

	ana        *analysis.PartialAnalysis
	skippedAna bool
}

// NewJavaAcc starts an empty accumulator for the directory named name.
func NewJavaAcc(name string) *JavaAcc {
	return &JavaAcc{base: newBase(name), ana: analysis.New()}
}

// PushDir folds a child directory's or file's Local into this
// accumulator. childSkippedAna is the child's own skipped_ana flag (a
// folded file always passes false; a folded subdirectory passes its own
// accumulator's skippedAna). Once skippedAna becomes true for this
// directory — because a descendant already exceeded maxRefs, or because
// this child's own resolved reference count does — its partial analysis
// is no longer merged, exactly as §4.3 specifies ("analysis merge is
// suppressed when skipped_ana becomes true").
func (a *JavaAcc) PushDir(name string, nameID store.LabelId, l local.Local, childSkippedAna bool, maxRefs int) {
	a.push(name, nameID, l)

	crossedBudget := l.Ana != nil && l.Ana.RefsCount() >= maxRefs
	a.skippedAna = a.skippedAna || childSkippedAna || crossedBudget

	if !a.skippedAna && l.Ana != nil {
		a.ana.Acc(l.Ana)
	}
}

// Ana returns the accumulated (not yet resolved) partial analysis.
func (a *JavaAcc) Ana() *analysis.PartialAnalysis { return a.ana }

// SkippedAna reports whether analysis merging has been suppressed for
// this directory.
func (a *JavaAcc) SkippedAna() bool { return a.skippedAna }
