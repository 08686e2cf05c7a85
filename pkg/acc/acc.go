// Package acc implements the three directory accumulator flavors the
// traversal engine folds into: JavaAcc (a plain directory inside a Java
// source root), MavenModuleAcc (a Maven module, carrying pending
// sub-module/source-dir/test-dir path sets inherited from its parent),
// and CppAcc (the C++ analogue). All three share the push/fold contract
// described by the original's DirAcc sum type: push(name, child) +
// fold, modeled here as one Go type per variant rather than one tagged
// union, since Go has no pattern-matched enum variants to hang
// role-specific methods off.
package acc

import (
	"fmt"
	"strings"

	"github.com/hyperast-go/hyperast/pkg/local"
	"github.com/hyperast-go/hyperast/pkg/store"
)

// base holds the fields every accumulator flavor shares: the directory
// name, its children in fold order, cumulative metrics, and the
// duplicate-name guard the §4.3 invariant requires ("before push,
// assert the name is not already a child").
type base struct {
	name          string
	children      []store.NodeId
	childrenNames []store.LabelId
	metrics       store.Metrics
	seen          map[string]struct{}
}

func newBase(name string) base {
	return base{name: name, seen: make(map[string]struct{})}
}

func (b *base) assertUnique(name string) {
	if _, ok := b.seen[name]; ok {
		panic(fmt.Sprintf("acc: duplicate child name %q in directory %q", name, b.name))
	}

	b.seen[name] = struct{}{}
}

func (b *base) push(name string, nameID store.LabelId, l local.Local) {
	b.assertUnique(name)
	b.children = append(b.children, l.Node)
	b.childrenNames = append(b.childrenNames, nameID)
	b.metrics.Size += l.Metrics.Size

	if l.Metrics.Height >= b.metrics.Height {
		b.metrics.Height = l.Metrics.Height
	}
}

// Name returns the directory name.
func (b *base) Name() string { return b.name }

// Children returns the accumulated children, in push order.
func (b *base) Children() []store.NodeId { return b.children }

// ChildrenNames returns the labels paired with Children.
func (b *base) ChildrenNames() []store.LabelId { return b.childrenNames }

// Metrics returns the cumulative size/height before the +1 the
// directory's own fold adds for itself.
func (b *base) Metrics() store.Metrics { return b.metrics }

// Len returns the number of children accumulated so far.
func (b *base) Len() int { return len(b.children) }

// DrainFilterStrip removes every entry of set that has name as a prefix
// (or equals it), and returns the stripped remainders (the part of each
// matched entry after name — empty string for an exact match). This is
// a direct port of the original's drain_filter_strip, including its
// byte-prefix semantics: it does not check for a path-separator
// boundary after the matched prefix, so "mainX" strips against "main"
// into "X". That quirk is preserved rather than "fixed", since it is
// exact behavior (not an acknowledged gap) in the source this was
// distilled from.
func DrainFilterStrip(set []string, name string) (stripped, remaining []string) {
	for _, entry := range set {
		if strings.HasPrefix(entry, name) {
			stripped = append(stripped, entry[len(name):])
		} else {
			remaining = append(remaining, entry)
		}
	}

	return stripped, remaining
}
