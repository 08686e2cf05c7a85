package lang_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperast-go/hyperast/pkg/lang"
	"github.com/hyperast-go/hyperast/pkg/store"
)

func TestJavaHandler_ParseDeclaresClassAndMethod(t *testing.T) {
	t.Parallel()

	nodes := store.NewNodeStore()
	labels := store.NewLabelStore()
	h := lang.NewJavaHandler(nodes, labels)

	src := []byte(`class Foo {
	void bar() {
		baz();
	}
}
`)

	l, err := h.Parse(context.Background(), "Foo.java", src, false)
	require.NoError(t, err)
	require.NotNil(t, l.Ana)

	var paths []string
	for _, d := range l.Ana.Declarations() {
		paths = append(paths, d.Path)
	}

	assert.Contains(t, paths, "Foo")
	assert.Contains(t, paths, "Foo.bar")
}

func TestJavaHandler_IdenticalMethodsHashCons(t *testing.T) {
	t.Parallel()

	nodes := store.NewNodeStore()
	labels := store.NewLabelStore()
	h := lang.NewJavaHandler(nodes, labels)

	src := []byte(`class Foo {
	void a() { helper(); }
	void b() { helper(); }
}
`)

	l, err := h.Parse(context.Background(), "Foo.java", src, false)
	require.NoError(t, err)
	assert.Positive(t, l.Metrics.Size)

	// The two identical method bodies are stored once, so the store holds
	// fewer distinct nodes than the tree has.
	assert.Less(t, nodes.Len(), int(l.Metrics.Size))
}

func TestPomHandler_ExtractsModulesAndSourceDirs(t *testing.T) {
	t.Parallel()

	nodes := store.NewNodeStore()
	labels := store.NewLabelStore()
	h := lang.NewPomHandler(nodes, labels)

	src := []byte(`<project>
	<modules>
		<module>sub-a</module>
		<module>sub-b</module>
	</modules>
	<build>
		<sourceDirectory>src/main/custom</sourceDirectory>
	</build>
</project>
`)

	info, err := h.Parse(context.Background(), src)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"sub-a", "sub-b"}, info.SubModules)
	assert.Equal(t, []string{"src/main/custom"}, info.MainDirs)
	assert.Equal(t, []string{"src/test/java"}, info.TestDirs)
}

func TestPomHandler_DefaultsWithoutOverrides(t *testing.T) {
	t.Parallel()

	nodes := store.NewNodeStore()
	labels := store.NewLabelStore()
	h := lang.NewPomHandler(nodes, labels)

	info, err := h.Parse(context.Background(), []byte(`<project></project>`))
	require.NoError(t, err)

	assert.Empty(t, info.SubModules)
	assert.Equal(t, []string{"src/main/java"}, info.MainDirs)
	assert.Equal(t, []string{"src/test/java"}, info.TestDirs)
}

func TestCppHandler_ParsesSource(t *testing.T) {
	t.Parallel()

	nodes := store.NewNodeStore()
	labels := store.NewLabelStore()
	h := lang.NewCppHandler(nodes, labels)

	l, err := h.Parse(context.Background(), "a.cpp", []byte("int main() { return 0; }"), false)
	require.NoError(t, err)
	assert.Positive(t, l.Metrics.Size)
	assert.Nil(t, l.Ana)
}
