package lang

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	javalang "github.com/alexaandru/go-sitter-forest/java"
	xmllang "github.com/alexaandru/go-sitter-forest/xml"
	cpplang "github.com/alexaandru/go-sitter-forest/cpp"
	sitter "github.com/alexaandru/go-tree-sitter-bare"
)

var errNoRootNode = errors.New("parse produced no root node")

// languageFuncs mirrors the uast package's forest lookup table, pared
// down to the three grammars this repository actually ingests.
var languageFuncs = map[string]func() unsafe.Pointer{
	"java": javalang.GetLanguage,
	"xml":  xmllang.GetLanguage,
	"cpp":  cpplang.GetLanguage,
}

var languageCache sync.Map // string -> *sitter.Language

// getLanguage returns the cached, wrapped tree-sitter grammar for
// name, loading it from the forest table on first use.
func getLanguage(name string) (*sitter.Language, error) {
	if cached, ok := languageCache.Load(name); ok {
		lang, _ := cached.(*sitter.Language)

		return lang, nil
	}

	fn, ok := languageFuncs[name]
	if !ok {
		return nil, fmt.Errorf("lang: no grammar registered for %q", name)
	}

	lang := sitter.NewLanguage(fn())
	languageCache.Store(name, lang)

	return lang, nil
}
