// Package plugins contains the built-in document plugins: title rewriting,
// tag-list maintenance, and table-of-contents regeneration.
//
// Each plugin enumerates its command descriptors explicitly at construction;
// helper methods not listed there are internal and never caller-invokable.
package plugins

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/GRAYgoose124/mdboy/pkg/mdboy"
	"github.com/GRAYgoose124/mdboy/pkg/mdboy/document"
)

// Plugin kind identifiers.
const (
	KindTitle = "title"
	KindTag   = "tag"
	KindTOC   = "toc"
)

// Kinds returns the identifiers of every built-in plugin.
func Kinds() []string {
	return []string{KindTitle, KindTag, KindTOC}
}

// New constructs a built-in plugin by kind.
func New(kind string, io document.IO, handler slog.Handler) (mdboy.Plugin, error) {
	switch kind {
	case KindTitle:
		return NewTitle(io, handler), nil
	case KindTag:
		return NewTag(io, handler), nil
	case KindTOC:
		return NewTOC(io, handler), nil
	}
	return nil, fmt.Errorf("unknown plugin kind %q (have %v)", kind, Kinds())
}

// findTitle returns the index of the first top-level heading line (`# `)
// at or after the document's front matter, or -1 when there is none.
func findTitle(lines []string) int {
	for i := document.FrontMatterEnd(lines); i < len(lines); i++ {
		if isTitleLine(lines[i]) {
			return i
		}
	}
	return -1
}

func isTitleLine(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), "# ")
}
