package lang

import (
	"context"
	"regexp"
	"strings"

	"github.com/hyperast-go/hyperast/pkg/local"
	"github.com/hyperast-go/hyperast/pkg/store"
)

// Maven's conventional source roots, used whenever a pom.xml does not
// override them with an explicit <sourceDirectory>/<testSourceDirectory>
// under <build>.
var (
	defaultMainDirs = []string{"src/main/java"}
	defaultTestDirs = []string{"src/test/java"}
)

// These scan raw pom.xml bytes for the handful of elements the module
// classifier needs. The tree-sitter XML grammar's node kinds are not
// stable enough across forest versions to hang this narrow, few-tags
// extraction on a CST walk, so it is done with regexp over the source
// text instead (see DESIGN.md) — the file is still folded into the
// node store through a real XMLHandler parse by Parse below.
var (
	moduleTagRe           = regexp.MustCompile(`(?s)<module>\s*(.*?)\s*</module>`)
	sourceDirectoryTagRe  = regexp.MustCompile(`(?s)<sourceDirectory>\s*(.*?)\s*</sourceDirectory>`)
	testSourceDirectoryRe = regexp.MustCompile(`(?s)<testSourceDirectory>\s*(.*?)\s*</testSourceDirectory>`)
)

// PomInfo is the result of parsing a pom.xml: its folded Local plus
// the pending path sets a MavenModuleAcc needs seeded from it.
type PomInfo struct {
	Local      local.Local
	SubModules []string
	MainDirs   []string
	TestDirs   []string
}

// PomHandler parses pom.xml sources.
type PomHandler struct {
	xml *XMLHandler
}

// NewPomHandler builds a handler sharing the given stores.
func NewPomHandler(nodes *store.NodeStore, labels *store.LabelStore) *PomHandler {
	return &PomHandler{xml: NewXMLHandler(nodes, labels)}
}

// Parse folds content into the store and extracts the module's
// declared sub-modules and any source directory overrides.
func (h *PomHandler) Parse(ctx context.Context, content []byte) (PomInfo, error) {
	l, err := h.xml.Parse(ctx, content)
	if err != nil {
		return PomInfo{}, err
	}

	text := string(content)

	var subModules []string

	for _, m := range moduleTagRe.FindAllStringSubmatch(text, -1) {
		mod := strings.TrimSpace(m[1])
		if mod != "" {
			subModules = append(subModules, mod)
		}
	}

	mainDirs := defaultMainDirs
	if m := sourceDirectoryTagRe.FindStringSubmatch(text); m != nil {
		if dir := strings.TrimSpace(m[1]); dir != "" {
			mainDirs = []string{dir}
		}
	}

	testDirs := defaultTestDirs
	if m := testSourceDirectoryRe.FindStringSubmatch(text); m != nil {
		if dir := strings.TrimSpace(m[1]); dir != "" {
			testDirs = []string{dir}
		}
	}

	return PomInfo{
		Local:      l,
		SubModules: subModules,
		MainDirs:   mainDirs,
		TestDirs:   testDirs,
	}, nil
}
