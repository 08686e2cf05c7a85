package acc

import (
	"github.com/hyperast-go/hyperast/pkg/analysis"
	"github.com/hyperast-go/hyperast/pkg/local"
	"github.com/hyperast-go/hyperast/pkg/store"
)

// MavenModuleAcc accumulates a Maven module directory: a plain
// directory accumulator plus the three optional pending path sets that
// drive classification as traversal descends — nested sub-modules, main
// (`src/main/java`-style) source roots, and test source roots.
// DrainFilterStrip treats a nil set and an empty one alike (nothing
// matches); the difference is that a nil set is filled from the
// module's own pom.xml when that file is attached, while a non-nil one
// is kept as it is.
type MavenModuleAcc struct {
	base

	ana        *analysis.PartialAnalysis
	skippedAna bool

	SubModules []string
	MainDirs   []string
	TestDirs   []string
}

// NewMavenModuleAcc starts a module accumulator with no pending paths —
// the case where the module's own pom.xml has not been parsed yet (or
// carries none of these elements).
func NewMavenModuleAcc(name string) *MavenModuleAcc {
	return &MavenModuleAcc{base: newBase(name), ana: analysis.New()}
}

// WithContent seeds a module accumulator with pending paths inherited
// (and already stripped of this module's own path component) from an
// ancestor frame's DrainFilterStrip call.
func WithContent(name string, subModules, mainDirs, testDirs []string) *MavenModuleAcc {
	return &MavenModuleAcc{
		base:       newBase(name),
		ana:        analysis.New(),
		SubModules: subModules,
		MainDirs:   mainDirs,
		TestDirs:   testDirs,
	}
}

// PushSubmodule attaches a folded nested Maven module.
func (a *MavenModuleAcc) PushSubmodule(name string, nameID store.LabelId, l local.Local) {
	a.push(name, nameID, l)
}

// PushSourceDirectory attaches a folded `src/main/java`-style source
// root, folded as a JavaAcc subtree.
func (a *MavenModuleAcc) PushSourceDirectory(name string, nameID store.LabelId, l local.Local) {
	a.push(name, nameID, l)

	if l.Ana != nil {
		a.ana.Acc(l.Ana)
	}
}

// PushTestSourceDirectory attaches a folded test source root.
func (a *MavenModuleAcc) PushTestSourceDirectory(name string, nameID store.LabelId, l local.Local) {
	a.push(name, nameID, l)

	if l.Ana != nil {
		a.ana.Acc(l.Ana)
	}
}

// PushPom attaches the module's own parsed pom.xml file node.
func (a *MavenModuleAcc) PushPom(name string, nameID store.LabelId, l local.Local) {
	a.push(name, nameID, l)
}

// PushDir attaches a plain nested directory encountered while the
// module is still searching for its declared structure (neither a
// sub-module, source root, nor test root matched it). Its own
// skippedAna propagates the same way JavaAcc's does.
func (a *MavenModuleAcc) PushDir(name string, nameID store.LabelId, l local.Local, childSkippedAna bool) {
	a.push(name, nameID, l)

	a.skippedAna = a.skippedAna || childSkippedAna

	if !a.skippedAna && l.Ana != nil {
		a.ana.Acc(l.Ana)
	}
}

// Ana returns the accumulated partial analysis.
func (a *MavenModuleAcc) Ana() *analysis.PartialAnalysis { return a.ana }

// SkippedAna reports whether analysis merging has been suppressed.
// Maven module directories always fold to BloomMuch regardless of this
// flag (§3 of the full spec); it is retained here only for metadata
// parity with JavaAcc and for propagation to an ancestor JavaAcc should
// one ever contain a module (not exercised by the current traversal
// rules, which never nest a Maven module under a Java source root).
func (a *MavenModuleAcc) SkippedAna() bool { return a.skippedAna }
