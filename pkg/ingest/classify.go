package ingest

import (
	"strings"

	"github.com/src-d/enry/v2"
)

// splitExact separates DrainFilterStrip's stripped results into "this
// directory IS the declared role" (an exact match, empty remainder)
// and "the role is nested further below this directory" (a non-empty
// remainder, carried forward to seed the child frame's own pending
// sets). DrainFilterStrip itself preserves the original's byte-prefix
// quirk with no path-separator awareness, but a remainder here always
// begins with the "/" left over from stripping a directory component
// out of a slash-joined path (e.g. "src/main/java" strip "src" =
// "/main/java") — that leading separator is trimmed once, so the next
// nesting level's DrainFilterStrip("main", ...) call lines up against
// "main/java" rather than failing to match "/main/java".
func splitExact(stripped []string) (exact bool, nested []string) {
	for _, s := range stripped {
		if s == "" {
			exact = true
		} else {
			nested = append(nested, strings.TrimPrefix(s, "/"))
		}
	}

	return exact, nested
}

func isHandledJavaModeFile(name string) bool {
	return strings.HasSuffix(name, ".java") || strings.HasSuffix(name, ".xml")
}

func isHandledCppModeFile(name string) bool {
	switch {
	case strings.HasSuffix(name, ".cpp"), strings.HasSuffix(name, ".cc"),
		strings.HasSuffix(name, ".h"), strings.HasSuffix(name, ".hpp"):
		return true
	default:
		return false
	}
}

// confirmedLanguage reports whether content's sniffed language matches
// want, guarding against a misleadingly-named blob (e.g. a generated
// file checked in with a ".java" extension that is not actually Java)
// before the expensive tree-sitter parse runs. enry is content-based
// and does not care about the extension that got it here, so this is a
// real confirmation, not a restatement of isHandledJavaModeFile.
func confirmedLanguage(name string, content []byte, want string) bool {
	return enry.GetLanguage(name, content) == want
}
