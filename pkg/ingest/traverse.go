package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/hyperast-go/hyperast/pkg/acc"
	"github.com/hyperast-go/hyperast/pkg/analysis"
	"github.com/hyperast-go/hyperast/pkg/bloomtier"
	"github.com/hyperast-go/hyperast/pkg/gitobj"
	"github.com/hyperast-go/hyperast/pkg/lang"
	"github.com/hyperast-go/hyperast/pkg/local"
	"github.com/hyperast-go/hyperast/pkg/store"
)

// frameKind tags which directory accumulator a stack frame folds into.
type frameKind int

const (
	frameMaven frameKind = iota
	frameJava
	frameCpp
)

// childRole records how a folded frame must be attached to its parent
// once it completes — the distinct push_* method §4.3 exposes on
// MavenModuleAcc. Java and C++ frames always use roleGeneric, their
// accumulators having only one push method.
type childRole int

const (
	roleGeneric childRole = iota
	roleSourceDir
	roleTestDir
	roleSubmodule
)

// Directory node type tags. Only Maven vs. plain matters for
// hash-consing's equality predicate (§4.4 step 2); the C++ branch
// shares the plain tag with Java, per §1's "structure identical".
const (
	dirTypeMaven     = "maven_directory"
	dirTypeDirectory = "directory"
)

// MavenDirectoryKind and PlainDirectoryKind are the Node.Kind tags a
// folded directory carries — exported so pkg/query can recognize a
// directory-shaped node (one whose Bloom filter is meaningful to probe
// for pruning) without re-deriving the tag strings itself.
const (
	MavenDirectoryKind = dirTypeMaven
	PlainDirectoryKind = dirTypeDirectory
)

// stackFrame is one level of the explicit work-stack: a directory
// whose children are being folded, plus the accumulator collecting
// them.
type stackFrame struct {
	kind     frameKind
	name     string
	nameID   store.LabelId
	treeHash gitobj.Hash
	role     childRole

	descent      []string // remaining module_path components to match
	materialized bool
	remaining    []DirEntry // popped from the end

	maven *acc.MavenModuleAcc
	java  *acc.JavaAcc
	cpp   *acc.CppAcc
}

func (e *Engine) newFrame(kind frameKind, name string, treeHash gitobj.Hash, descent []string) *stackFrame {
	f := &stackFrame{kind: kind, name: name, treeHash: treeHash, descent: descent}
	if name != "" {
		f.nameID = e.Labels.GetOrInsert(name)
	}

	switch kind {
	case frameMaven:
		f.maven = acc.NewMavenModuleAcc(name)
	case frameJava:
		f.java = acc.NewJavaAcc(name)
	case frameCpp:
		f.cpp = acc.NewCppAcc(name)
	}

	return f
}

func (e *Engine) newMavenFrameWithContent(name string, treeHash gitobj.Hash, sub, main, test []string) *stackFrame {
	f := &stackFrame{kind: frameMaven, name: name, treeHash: treeHash}
	f.nameID = e.Labels.GetOrInsert(name)
	f.maven = acc.WithContent(name, sub, main, test)

	return f
}

// reorderChildren implements the child-ordering rule: if a blob named
// pom.xml is present, it is moved to position 0, then the whole vector
// is reversed so pom.xml pops first from the end of the slice;
// otherwise the vector is simply reversed.
func reorderChildren(entries []DirEntry) []DirEntry {
	out := make([]DirEntry, len(entries))
	copy(out, entries)

	pomIdx := -1

	for i, e := range out {
		if !e.IsTree && e.Name == "pom.xml" {
			pomIdx = i

			break
		}
	}

	if pomIdx > 0 {
		pom := out[pomIdx]
		copy(out[1:pomIdx+1], out[0:pomIdx])
		out[0] = pom
	}

	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}

	return out
}

// run drives the explicit-stack post-order traversal described by
// §4.4: descend the given path, then classify and fold every
// directory/file under it according to kind.
func (e *Engine) run(ctx context.Context, kind frameKind, root gitobj.Hash, descent []string) (local.Local, bool, error) {
	name := ""
	if len(descent) > 0 {
		name = descent[len(descent)-1]
	}

	stack := []*stackFrame{e.newFrame(kind, name, root, descent)}

	for len(stack) > 0 {
		frame := stack[len(stack)-1]

		if !frame.materialized {
			entries, err := e.Tree.Entries(frame.treeHash)
			if err != nil {
				return local.Local{}, false, err
			}

			if len(frame.descent) == 0 {
				entries = reorderChildren(entries)
			}

			frame.remaining = entries
			frame.materialized = true
		}

		if len(frame.remaining) == 0 {
			l, skipped, err := e.foldFrame(frame)
			if err != nil {
				return local.Local{}, false, err
			}

			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return l, skipped, nil
			}

			parent := stack[len(stack)-1]
			e.attach(parent, frame.name, frame.nameID, frame.role, l, skipped)

			continue
		}

		child := frame.remaining[len(frame.remaining)-1]
		frame.remaining = frame.remaining[:len(frame.remaining)-1]

		if len(frame.descent) > 0 {
			// A matching descent child replaces its parent on the stack,
			// so only the target subtree is folded and returned.
			if child.IsTree && child.Name == frame.descent[0] {
				frame.remaining = nil
				stack[len(stack)-1] = e.newFrame(frame.kind, child.Name, child.Hash, frame.descent[1:])
			}

			continue
		}

		if child.IsTree {
			pushed, err := e.classifyDir(frame, child)
			if err != nil {
				return local.Local{}, false, err
			}

			if pushed != nil {
				stack = append(stack, pushed)
			}

			continue
		}

		if err := e.classifyBlob(ctx, frame, child); err != nil {
			return local.Local{}, false, err
		}
	}

	panic("ingest: traversal loop exited without producing a result")
}

// attach routes a folded child's Local onto its parent accumulator,
// dispatching on the parent's kind and (for Maven parents) the role
// the child was pushed with.
func (e *Engine) attach(parent *stackFrame, name string, nameID store.LabelId, role childRole, l local.Local, skippedAna bool) {
	switch parent.kind {
	case frameJava:
		parent.java.PushDir(name, nameID, l, skippedAna, e.Config.MaxRefs)
	case frameCpp:
		parent.cpp.Push(name, nameID, l, skippedAna)
	case frameMaven:
		switch role {
		case roleSourceDir:
			parent.maven.PushSourceDirectory(name, nameID, l)
		case roleTestDir:
			parent.maven.PushTestSourceDirectory(name, nameID, l)
		case roleSubmodule:
			parent.maven.PushSubmodule(name, nameID, l)
		default:
			parent.maven.PushDir(name, nameID, l, skippedAna)
		}
	}
}

func (e *Engine) assertMemoLabel(nodeID store.NodeId, expectedName string) {
	ref := e.Nodes.Resolve(nodeID)

	lbl, has := ref.Label()
	if !has || e.Labels.Resolve(lbl) != expectedName {
		panic(fmt.Sprintf("ingest: memoized node label does not match child name %q", expectedName))
	}
}

// classifyDir routes a directory child: memo lookup, then (Maven only)
// pending-set classification. It returns a new frame to push, or nil
// if the child was resolved entirely from a memo hit.
func (e *Engine) classifyDir(frame *stackFrame, child DirEntry) (*stackFrame, error) {
	switch frame.kind {
	case frameJava:
		return e.classifyJavaDir(frame, child)
	case frameCpp:
		return e.classifyCppDir(frame, child)
	case frameMaven:
		return e.classifyMavenDir(frame, child)
	}

	return nil, nil
}

func (e *Engine) classifyJavaDir(frame *stackFrame, child DirEntry) (*stackFrame, error) {
	if entry, ok := e.memo.java[child.Hash]; ok {
		e.memo.hits.Add(1)
		e.assertMemoLabel(entry.Local.Node, child.Name)
		e.attach(frame, child.Name, e.Labels.GetOrInsert(child.Name), roleGeneric, entry.Local, entry.SkippedAna)

		return nil, nil
	}

	e.memo.misses.Add(1)

	return e.newFrame(frameJava, child.Name, child.Hash, nil), nil
}

func (e *Engine) classifyCppDir(frame *stackFrame, child DirEntry) (*stackFrame, error) {
	if entry, ok := e.memo.cpp[child.Hash]; ok {
		e.memo.hits.Add(1)
		e.assertMemoLabel(entry.Local.Node, child.Name)
		e.attach(frame, child.Name, e.Labels.GetOrInsert(child.Name), roleGeneric, entry.Local, entry.SkippedAna)

		return nil, nil
	}

	e.memo.misses.Add(1)

	return e.newFrame(frameCpp, child.Name, child.Hash, nil), nil
}

func (e *Engine) classifyMavenDir(frame *stackFrame, child DirEntry) (*stackFrame, error) {
	if entry, ok := e.memo.maven[child.Hash]; ok {
		e.memo.hits.Add(1)
		e.assertMemoLabel(entry.Local.Node, child.Name)
		frame.maven.PushDir(child.Name, e.Labels.GetOrInsert(child.Name), entry.Local, entry.SkippedAna)

		return nil, nil
	}

	e.memo.misses.Add(1)

	mainStripped, mainRemaining := acc.DrainFilterStrip(frame.maven.MainDirs, child.Name)
	testStripped, testRemaining := acc.DrainFilterStrip(frame.maven.TestDirs, child.Name)
	subStripped, subRemaining := acc.DrainFilterStrip(frame.maven.SubModules, child.Name)

	frame.maven.MainDirs = mainRemaining
	frame.maven.TestDirs = testRemaining
	frame.maven.SubModules = subRemaining

	mainExact, mainNested := splitExact(mainStripped)
	testExact, testNested := splitExact(testStripped)
	subExact, subNested := splitExact(subStripped)

	switch {
	case mainExact:
		f := e.newFrame(frameJava, child.Name, child.Hash, nil)
		f.role = roleSourceDir

		return f, nil
	case testExact:
		f := e.newFrame(frameJava, child.Name, child.Hash, nil)
		f.role = roleTestDir

		return f, nil
	case subExact:
		f := e.newMavenFrameWithContent(child.Name, child.Hash, subNested, mainNested, testNested)
		f.role = roleSubmodule

		return f, nil
	case len(mainNested) > 0 || len(testNested) > 0 || len(subNested) > 0:
		f := e.newMavenFrameWithContent(child.Name, child.Hash, subNested, mainNested, testNested)
		f.role = roleGeneric

		return f, nil
	default:
		f := e.newFrame(frameMaven, child.Name, child.Hash, nil)
		f.role = roleGeneric

		return f, nil
	}
}

func (e *Engine) classifyBlob(ctx context.Context, frame *stackFrame, child DirEntry) error {
	switch frame.kind {
	case frameMaven:
		if child.Name == "pom.xml" {
			return e.handlePomBlob(ctx, frame, child)
		}

		return nil
	case frameJava:
		return e.handleJavaBlob(ctx, frame, child)
	case frameCpp:
		return e.handleCppBlob(ctx, frame, child)
	}

	return nil
}

func (e *Engine) handlePomBlob(ctx context.Context, frame *stackFrame, child DirEntry) error {
	if info, ok := e.memo.pom[child.Hash]; ok {
		e.memo.hits.Add(1)
		e.assertMemoLabel(info.Local.Node, child.Name)
		e.attachPom(frame, child.Name, info)

		return nil
	}

	e.memo.misses.Add(1)

	content, err := e.Tree.Blob(child.Hash)
	if err != nil {
		return err
	}

	info, err := e.pom.Parse(ctx, content)
	if err != nil {
		return err
	}

	e.memo.pom[child.Hash] = info
	e.attachPom(frame, child.Name, info)

	return nil
}

func (e *Engine) attachPom(frame *stackFrame, name string, info lang.PomInfo) {
	nameID := e.Labels.GetOrInsert(name)
	frame.maven.PushPom(name, nameID, info.Local)

	if frame.maven.SubModules == nil {
		frame.maven.SubModules = info.SubModules
	}

	if frame.maven.MainDirs == nil {
		frame.maven.MainDirs = info.MainDirs
	}

	if frame.maven.TestDirs == nil {
		frame.maven.TestDirs = info.TestDirs
	}
}

func (e *Engine) handleJavaBlob(ctx context.Context, frame *stackFrame, child DirEntry) error {
	if !isHandledJavaModeFile(child.Name) {
		return nil
	}

	if entry, ok := e.memo.java[child.Hash]; ok {
		e.assertMemoLabel(entry.Local.Node, child.Name)
		frame.java.PushDir(child.Name, e.Labels.GetOrInsert(child.Name), entry.Local, entry.SkippedAna, e.Config.MaxRefs)

		return nil
	}

	content, err := e.Tree.Blob(child.Hash)
	if err != nil {
		return err
	}

	var l local.Local

	switch {
	case strings.HasSuffix(child.Name, ".java"):
		if !confirmedLanguage(child.Name, content, "Java") {
			return nil
		}

		l, err = e.java.Parse(ctx, child.Name, content, e.Config.PropagateErrorOnBadCST)
	default:
		l, err = e.xml.Parse(ctx, content)
	}

	if err != nil {
		return err
	}

	e.memo.java[child.Hash] = dirMemoEntry{Local: l, SkippedAna: false}
	frame.java.PushDir(child.Name, e.Labels.GetOrInsert(child.Name), l, false, e.Config.MaxRefs)

	return nil
}

func (e *Engine) handleCppBlob(ctx context.Context, frame *stackFrame, child DirEntry) error {
	if !isHandledCppModeFile(child.Name) {
		return nil
	}

	if entry, ok := e.memo.cpp[child.Hash]; ok {
		e.assertMemoLabel(entry.Local.Node, child.Name)
		frame.cpp.Push(child.Name, e.Labels.GetOrInsert(child.Name), entry.Local, entry.SkippedAna)

		return nil
	}

	content, err := e.Tree.Blob(child.Hash)
	if err != nil {
		return err
	}

	// Header extensions are ambiguous between C and C++ under
	// content-based sniffing, so only the unambiguous .cpp/.cc
	// extensions get the extra confirmation.
	if strings.HasSuffix(child.Name, ".cpp") || strings.HasSuffix(child.Name, ".cc") {
		if !confirmedLanguage(child.Name, content, "C++") {
			return nil
		}
	}

	l, err := e.cpp.Parse(ctx, child.Name, content, e.Config.PropagateErrorOnBadCST)
	if err != nil {
		return err
	}

	e.memo.cpp[child.Hash] = dirMemoEntry{Local: l, SkippedAna: false}
	frame.cpp.Push(child.Name, e.Labels.GetOrInsert(child.Name), l, false)

	return nil
}

// foldFrame folds a completed frame's accumulator into a directory
// node, memoizes it, and returns the resulting Local and whether
// analysis propagation was suppressed for it (§4.4 post-visit steps).
func (e *Engine) foldFrame(frame *stackFrame) (local.Local, bool, error) {
	switch frame.kind {
	case frameMaven:
		return e.foldMavenFrame(frame)
	case frameJava:
		return e.foldJavaFrame(frame)
	case frameCpp:
		return e.foldCppFrame(frame)
	}

	panic("ingest: unknown frame kind")
}

func (e *Engine) foldMavenFrame(frame *stackFrame) (local.Local, bool, error) {
	pending := make([]string, 0, len(frame.maven.SubModules)+len(frame.maven.MainDirs)+len(frame.maven.TestDirs))
	pending = append(pending, frame.maven.SubModules...)
	pending = append(pending, frame.maven.MainDirs...)
	pending = append(pending, frame.maven.TestDirs...)

	for _, entry := range pending {
		if strings.HasPrefix(entry, "..") {
			panic(fmt.Sprintf("ingest: unimplemented ..-relative pending path %q in module %q", entry, frame.name))
		}
	}

	frame.maven.Ana().Resolve()

	// Only a directory holding its own pom.xml is tagged as a module;
	// the directories a module's pending paths pass through (src,
	// src/main) fold with the plain directory tag.
	typeTag := dirTypeDirectory
	if pomID, ok := e.Labels.Get("pom.xml"); ok {
		for _, n := range frame.maven.ChildrenNames() {
			if n == pomID {
				typeTag = dirTypeMaven
			}
		}
	}

	id, metrics := e.foldDirectoryNode(typeTag, frame.nameID,
		frame.maven.Children(), frame.maven.ChildrenNames(), frame.maven.Metrics(),
		bloomtier.TierMuch, nil)

	l := local.Local{Node: id, Metrics: metrics, Ana: frame.maven.Ana()}
	e.memo.maven[frame.treeHash] = dirMemoEntry{Local: l, SkippedAna: false}

	return l, false, nil
}

func (e *Engine) foldJavaFrame(frame *stackFrame) (local.Local, bool, error) {
	ana := frame.java.Ana()
	skipped := frame.java.SkippedAna()

	tier := bloomtier.TierMuch

	var refs []analysis.Reference

	if !skipped {
		ana.Resolve()
		tier = bloomtier.SelectTier(ana.RefsCount(), false)
		refs = ana.References()
	}

	id, metrics := e.foldDirectoryNode(dirTypeDirectory, frame.nameID,
		frame.java.Children(), frame.java.ChildrenNames(), frame.java.Metrics(), tier, refs)

	l := local.Local{Node: id, Metrics: metrics, Ana: ana}
	e.memo.java[frame.treeHash] = dirMemoEntry{Local: l, SkippedAna: skipped}

	return l, skipped, nil
}

func (e *Engine) foldCppFrame(frame *stackFrame) (local.Local, bool, error) {
	id, metrics := e.foldDirectoryNode(dirTypeDirectory, frame.nameID,
		frame.cpp.Children(), frame.cpp.ChildrenNames(), frame.cpp.Metrics(),
		bloomtier.TierMuch, nil)

	l := local.Local{Node: id, Metrics: metrics}
	e.memo.cpp[frame.treeHash] = dirMemoEntry{Local: l, SkippedAna: false}

	return l, false, nil
}

// foldDirectoryNode implements §4.4's post-visit steps 1-3: compute the
// directory's syntax hash (name is never mixed into it — only into the
// equality predicate, via LabelId — so two same-shaped directories with
// different names still bucket together and are disambiguated by the
// label check), prepare-insert, and populate the bloom filter selected
// for tier from refs.
func (e *Engine) foldDirectoryNode(
	typeTag string,
	nameID store.LabelId,
	children []store.NodeId,
	childrenNames []store.LabelId,
	childMetrics store.Metrics,
	tier bloomtier.Tier,
	refs []analysis.Reference,
) (store.NodeId, store.Metrics) {
	size := childMetrics.Size + 1
	height := childMetrics.Height + 1

	childHashes := make([]uint32, 0, len(children))
	for _, c := range children {
		childHashes = append(childHashes, e.Nodes.Resolve(c).Hashes().Syntax)
	}

	typeHash := store.Hash32([]byte(typeTag))
	hsyntax := store.InnerNodeHash(typeHash, 0, size, store.SumChildHashes(childHashes))

	ins := e.Nodes.PrepareInsertion(hsyntax, func(candidate store.NodeId) bool {
		return e.sameDirectoryNode(candidate, typeTag, nameID, children)
	})
	if id, ok := ins.Occupied(); ok {
		return id, e.Nodes.Resolve(id).Metrics()
	}

	filter := bloomtier.New(tier)
	for _, r := range refs {
		filter.Add([]byte(r.Name))
	}

	metrics := store.Metrics{Size: size, Height: height}

	id := e.Nodes.InsertAfterPrepare(ins, store.Node{
		Kind:          typeTag,
		Label:         nameID,
		HasLabel:      true,
		Children:      children,
		ChildrenNames: childrenNames,
		Metrics:       metrics,
		Hashes:        store.Hashes{Structural: hsyntax, Syntax: hsyntax},
		Bloom:         filter,
	})

	return id, metrics
}

func (e *Engine) sameDirectoryNode(candidate store.NodeId, typeTag string, nameID store.LabelId, children []store.NodeId) bool {
	ref := e.Nodes.Resolve(candidate)
	if ref.Kind() != typeTag {
		return false
	}

	lbl, has := ref.Label()
	if !has || lbl != nameID {
		return false
	}

	existing := ref.Children()
	if len(existing) != len(children) {
		return false
	}

	for i := range existing {
		if existing[i] != children[i] {
			return false
		}
	}

	return true
}
