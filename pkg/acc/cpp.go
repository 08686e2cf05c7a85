package acc

import (
	"github.com/hyperast-go/hyperast/pkg/local"
	"github.com/hyperast-go/hyperast/pkg/store"
)

// CppAcc is the plain-directory accumulator for the C++ branch. It is a
// direct port of cpp.rs's CppAcc: its Push takes a skippedAna flag and
// never reads it — the C++ branch never propagated partial analysis the
// way the Java path does, and HyperAST-Go preserves that rather than
// guessing at the intended behavior (see DESIGN.md).
type CppAcc struct {
	base
}

// NewCppAcc starts an empty accumulator for the directory named name.
func NewCppAcc(name string) *CppAcc {
	return &CppAcc{base: newBase(name)}
}

// Push attaches a folded child. skippedAna is accepted, matching the
// original signature, and intentionally ignored.
func (a *CppAcc) Push(name string, nameID store.LabelId, l local.Local, skippedAna bool) {
	_ = skippedAna

	a.push(name, nameID, l)
}
