package analysis_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hyperast-go/hyperast/pkg/analysis"
)

func TestPartialAnalysis_AccMerges(t *testing.T) {
	t.Parallel()

	parent := analysis.New()
	parent.AddDeclaration(analysis.Declaration{Path: "pkg.Parent"})

	child := analysis.New()
	child.AddReference(analysis.Reference{Name: "Foo"})
	child.AddDeclaration(analysis.Declaration{Path: "pkg.Child"})

	parent.Acc(child)

	assert.Equal(t, 1, parent.RefsCount())
	assert.Len(t, parent.Declarations(), 2)
}

func TestPartialAnalysis_ResolveDropsMatchedRefs(t *testing.T) {
	t.Parallel()

	a := analysis.New()
	a.AddDeclaration(analysis.Declaration{Path: "com.example.Widget"})
	a.AddReference(analysis.Reference{Name: "Widget", EnclosingPath: []string{"com", "example"}})
	a.AddReference(analysis.Reference{Name: "Unresolvable"})

	a.Resolve()

	assert.Equal(t, 1, a.RefsCount())
	assert.Equal(t, "Unresolvable", a.References()[0].Name)
}

func TestPartialAnalysis_ResolveBareName(t *testing.T) {
	t.Parallel()

	a := analysis.New()
	a.AddDeclaration(analysis.Declaration{Path: "Widget"})
	a.AddReference(analysis.Reference{Name: "Widget"})

	a.Resolve()

	assert.Equal(t, 0, a.RefsCount())
}
