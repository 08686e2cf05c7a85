package ingest_test

import (
	"context"
	"crypto/sha1"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperast-go/hyperast/pkg/gitobj"
	"github.com/hyperast-go/hyperast/pkg/ingest"
)

// fakeTree is an in-memory TreeReader: a tree hash maps to a fixed
// slice of entries, a blob hash maps to fixed content. Both are keyed
// by a hash derived from a caller-chosen seed string so tests can
// build trees declaratively without a real Git repository.
type fakeTree struct {
	dirs  map[gitobj.Hash][]ingest.DirEntry
	blobs map[gitobj.Hash][]byte
}

func newFakeTree() *fakeTree {
	return &fakeTree{
		dirs:  make(map[gitobj.Hash][]ingest.DirEntry),
		blobs: make(map[gitobj.Hash][]byte),
	}
}

func seedHash(seed string) gitobj.Hash {
	return sha1.Sum([]byte(seed))
}

func (f *fakeTree) addBlob(seed string, content []byte) gitobj.Hash {
	h := seedHash(seed)
	f.blobs[h] = content

	return h
}

func (f *fakeTree) addDir(seed string, entries []ingest.DirEntry) gitobj.Hash {
	h := seedHash(seed)
	f.dirs[h] = entries

	return h
}

func (f *fakeTree) Entries(hash gitobj.Hash) ([]ingest.DirEntry, error) {
	entries, ok := f.dirs[hash]
	if !ok {
		return nil, nil
	}

	out := make([]ingest.DirEntry, len(entries))
	copy(out, entries)

	return out, nil
}

func (f *fakeTree) Blob(hash gitobj.Hash) ([]byte, error) {
	return f.blobs[hash], nil
}

const javaSource = `class Greeter {
	void greet() {
		helper();
	}
}
`

const pomWithOneModule = `<project>
	<modules>
		<module>child</module>
	</modules>
</project>
`

func TestEngine_HandleMavenCommit_SinglePomAndModule(t *testing.T) {
	t.Parallel()

	tree := newFakeTree()

	javaBlob := tree.addBlob("Greeter.java", []byte(javaSource))
	srcMainJava := tree.addDir("src/main/java", []ingest.DirEntry{
		{Name: "Greeter.java", Hash: javaBlob, IsTree: false},
	})

	pomBlob := tree.addBlob("pom.xml", []byte(`<project></project>`))
	root := tree.addDir("root", []ingest.DirEntry{
		{Name: "pom.xml", Hash: pomBlob, IsTree: false},
		{Name: "src", Hash: tree.addDir("src", []ingest.DirEntry{
			{Name: "main", Hash: tree.addDir("src/main", []ingest.DirEntry{
				{Name: "java", Hash: srcMainJava, IsTree: true},
			}), IsTree: true},
		}), IsTree: true},
	})

	engine := ingest.NewEngine(tree, ingest.DefaultConfig())

	l, err := engine.HandleMavenCommit(context.Background(), root, "")
	require.NoError(t, err)
	assert.Positive(t, l.Metrics.Size)
	require.NotNil(t, l.Ana)
}

func TestEngine_HandleMavenCommit_MemoHitOnIdenticalTree(t *testing.T) {
	t.Parallel()

	tree := newFakeTree()

	pomBlob := tree.addBlob("pom.xml-v1", []byte(`<project></project>`))
	root := tree.addDir("root-v1", []ingest.DirEntry{
		{Name: "pom.xml", Hash: pomBlob, IsTree: false},
	})

	engine := ingest.NewEngine(tree, ingest.DefaultConfig())

	first, err := engine.HandleMavenCommit(context.Background(), root, "")
	require.NoError(t, err)

	second, err := engine.HandleMavenCommit(context.Background(), root, "")
	require.NoError(t, err)

	assert.Equal(t, first.Node, second.Node)
}

func TestEngine_HandleMavenCommit_SubModuleDescent(t *testing.T) {
	t.Parallel()

	tree := newFakeTree()

	childPom := tree.addBlob("child/pom.xml", []byte(`<project></project>`))
	childDir := tree.addDir("child", []ingest.DirEntry{
		{Name: "pom.xml", Hash: childPom, IsTree: false},
	})

	rootPom := tree.addBlob("root/pom.xml", []byte(pomWithOneModule))
	root := tree.addDir("root", []ingest.DirEntry{
		{Name: "pom.xml", Hash: rootPom, IsTree: false},
		{Name: "child", Hash: childDir, IsTree: true},
	})

	engine := ingest.NewEngine(tree, ingest.DefaultConfig())

	l, err := engine.HandleMavenCommit(context.Background(), root, "")
	require.NoError(t, err)
	assert.Positive(t, l.Metrics.Size)
}

func TestEngine_HandleJavaCommit_FastForwardsNestedDirs(t *testing.T) {
	t.Parallel()

	tree := newFakeTree()

	javaBlob := tree.addBlob("pkg/Foo.java", []byte(javaSource))
	nested := tree.addDir("pkg", []ingest.DirEntry{
		{Name: "Foo.java", Hash: javaBlob, IsTree: false},
	})
	root := tree.addDir("java-root", []ingest.DirEntry{
		{Name: "pkg", Hash: nested, IsTree: true},
	})

	engine := ingest.NewEngine(tree, ingest.DefaultConfig())

	l, err := engine.HandleJavaCommit(context.Background(), root, "")
	require.NoError(t, err)
	require.NotNil(t, l.Ana)
	assert.NotEmpty(t, l.Ana.Declarations())
}

func TestEngine_HandleCppCommit_FoldsSource(t *testing.T) {
	t.Parallel()

	tree := newFakeTree()

	cppBlob := tree.addBlob("main.cpp", []byte("int main() { return 0; }"))
	root := tree.addDir("cpp-root", []ingest.DirEntry{
		{Name: "main.cpp", Hash: cppBlob, IsTree: false},
	})

	engine := ingest.NewEngine(tree, ingest.DefaultConfig())

	l, err := engine.HandleCppCommit(context.Background(), root, "")
	require.NoError(t, err)
	assert.Positive(t, l.Metrics.Size)
	assert.Nil(t, l.Ana)
}

func TestEngine_HandleJavaCommit_DescendsDirPath(t *testing.T) {
	t.Parallel()

	tree := newFakeTree()

	javaBlob := tree.addBlob("sub/mod/Foo.java", []byte(javaSource))
	modDir := tree.addDir("sub/mod", []ingest.DirEntry{
		{Name: "Foo.java", Hash: javaBlob, IsTree: false},
	})
	subDir := tree.addDir("sub", []ingest.DirEntry{
		{Name: "mod", Hash: modDir, IsTree: true},
	})
	root := tree.addDir("descend-root", []ingest.DirEntry{
		{Name: "sub", Hash: subDir, IsTree: true},
		{Name: "unrelated", Hash: tree.addDir("unrelated", nil), IsTree: true},
	})

	engine := ingest.NewEngine(tree, ingest.DefaultConfig())

	l, err := engine.HandleJavaCommit(context.Background(), root, "sub/mod")
	require.NoError(t, err)
	require.NotNil(t, l.Ana)
	assert.NotEmpty(t, l.Ana.Declarations())
}
