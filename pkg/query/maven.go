package query

import (
	"github.com/hyperast-go/hyperast/pkg/ingest"
	"github.com/hyperast-go/hyperast/pkg/store"
)

// isDirectoryKind reports whether kind names one of the two
// directory-shaped node tags pkg/ingest folds (Maven module or plain
// directory) rather than a per-language CST node — the only two kinds
// a query needs from pkg/ingest's vocabulary.
func isDirectoryKind(kind string) bool {
	return kind == ingest.MavenDirectoryKind || kind == ingest.PlainDirectoryKind
}

// MavenModules walks the subtree rooted at root and returns every
// Maven module directory found, root included if it is one itself —
// the query-time equivalent of the original's IterMavenModules, here a
// plain pre-order walk over the persisted tree rather than a stateful
// iterator, since the whole tree already lives in the node store.
func MavenModules(s Stores, root store.NodeId) []store.NodeId {
	var modules []store.NodeId

	stack := []store.NodeId{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		ref := s.Nodes.Resolve(id)
		if ref.Kind() == ingest.MavenDirectoryKind {
			modules = append(modules, id)
		}

		children := ref.Children()
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}

	return modules
}

// SourceRoots resolves a Maven module's conventional src/main/java and
// src/test/java directories, each reported present only if every path
// segment down to it actually exists — grounded on
// print_references_to_declarations's own child_by_name("src") ->
// child_by_name("main"/"test") -> child_by_name("java") chain.
func SourceRoots(s Stores, module store.NodeId) (mainJava, testJava store.NodeId, hasMain, hasTest bool) {
	src, ok := s.ChildByName(module, "src")
	if !ok {
		return 0, 0, false, false
	}

	if main, ok := s.ChildByName(src, "main"); ok {
		if java, ok := s.ChildByName(main, "java"); ok {
			mainJava, hasMain = java, true
		}
	}

	if test, ok := s.ChildByName(src, "test"); ok {
		if java, ok := s.ChildByName(test, "java"); ok {
			testJava, hasTest = java, true
		}
	}

	return mainJava, testJava, hasMain, hasTest
}
