package plugins

import (
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"

	"github.com/GRAYgoose124/mdboy/pkg/mdboy"
	"github.com/GRAYgoose124/mdboy/pkg/mdboy/document"
)

// tocHeading and tocTerminator delimit a table-of-contents block. Both are
// matched by exact line equality after whitespace trimming; a separator
// embedded mid-line does not terminate the block.
const (
	tocHeading    = "# Table of Contents"
	tocTerminator = "---"
)

// TOC regenerates a document's table of contents from its heading lines.
// Depth is the count of heading markers; entries render as `<indent>- <title>`
// with two spaces of indent per level below the top. An existing block is
// replaced in place, so regeneration is idempotent.
type TOC struct {
	io       document.IO
	logger   *slog.Logger
	maxDepth int
	commands map[string]mdboy.Command
}

// NewTOC creates the table-of-contents plugin with unlimited depth.
func NewTOC(io document.IO, handler slog.Handler) *TOC {
	t := &TOC{
		io:     io,
		logger: slog.New(handler).With(slog.String("plugin", KindTOC)),
	}
	t.commands = map[string]mdboy.Command{
		"set_depth": {
			Name:         "set_depth",
			RequiredArgs: []string{"depth"},
			Run: func(args []string) error {
				depth, err := strconv.Atoi(args[0])
				if err != nil || depth < 0 {
					return fmt.Errorf("depth must be a non-negative integer, got %q", args[0])
				}
				t.maxDepth = depth
				return nil
			},
		},
	}
	return t
}

// Kind implements mdboy.Plugin.
func (t *TOC) Kind() string { return KindTOC }

// Commands implements mdboy.Plugin.
func (t *TOC) Commands() map[string]mdboy.Command { return t.commands }

// Regenerate rebuilds the table of contents from the document's headings,
// removing any existing block first. The new block replaces the old one in
// place; a document without an existing block gets it inserted directly
// under the title (and its tag list, if present). When no headings remain
// outside an existing block, the block is removed rather than rebuilt empty;
// with neither headings nor a block the document is unmodified.
func (t *TOC) Regenerate(lines []string) ([]string, bool) {
	start, end := findTOC(lines)

	content := lines
	insertAt := -1
	if start >= 0 {
		content = slices.Concat(lines[:start], lines[end:])
		insertAt = start
	}

	entries := headingEntries(content, t.maxDepth)
	if len(entries) == 0 {
		if insertAt < 0 {
			return nil, false
		}
		// The only headings sat inside the old block. An empty table would be
		// noise, so the orphaned block is removed outright.
		return content, true
	}

	if insertAt < 0 {
		idx := findTitle(content)
		if idx < 0 {
			return nil, false
		}
		insertAt = idx + 1
		if _, hasList := parseTagList(content, insertAt); hasList {
			insertAt++
		}
	}

	block := make([]string, 0, len(entries)+2)
	block = append(block, tocHeading+"\n")
	for _, e := range entries {
		block = append(block, strings.Repeat("  ", e.depth-1)+"- "+e.title+"\n")
	}
	block = append(block, tocTerminator+"\n")

	out := make([]string, 0, len(content)+len(block))
	out = append(out, content[:insertAt]...)
	if insertAt > 0 {
		out[insertAt-1] = document.EnsureNewline(out[insertAt-1])
	}
	out = append(out, block...)
	out = append(out, content[insertAt:]...)

	if slices.Equal(out, lines) {
		return nil, false
	}
	return out, true
}

// Hook implements mdboy.Plugin.
func (t *TOC) Hook(path string) (bool, error) {
	lines, err := t.io.Read(path)
	if err != nil {
		return false, err
	}
	out, modified := t.Regenerate(lines)
	if !modified {
		return false, nil
	}
	if err := t.io.Write(path, out); err != nil {
		return false, err
	}
	t.logger.Debug("Regenerated table of contents", slog.String("path", path))
	return true, nil
}

type tocEntry struct {
	title string
	depth int
}

// headingEntries collects (title, depth) pairs from heading lines after any
// front matter, excluding the TOC heading itself. maxDepth of 0 means
// unlimited.
func headingEntries(lines []string, maxDepth int) []tocEntry {
	var entries []tocEntry
	for i := document.FrontMatterEnd(lines); i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == tocHeading {
			continue
		}
		depth := 0
		for depth < len(trimmed) && trimmed[depth] == '#' {
			depth++
		}
		if depth == 0 || depth >= len(trimmed) || trimmed[depth] != ' ' {
			continue
		}
		if maxDepth > 0 && depth > maxDepth {
			continue
		}
		entries = append(entries, tocEntry{title: strings.TrimSpace(trimmed[depth:]), depth: depth})
	}
	return entries
}

// findTOC locates an existing TOC block: the heading line through the first
// terminator line, exclusive of nothing (end is one past the terminator).
// An unterminated block extends to the next heading or end of file. Returns
// (-1, -1) when no block exists.
func findTOC(lines []string) (start, end int) {
	start = -1
	for i := document.FrontMatterEnd(lines); i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == tocHeading {
			start = i
			break
		}
	}
	if start < 0 {
		return -1, -1
	}
	for j := start + 1; j < len(lines); j++ {
		trimmed := strings.TrimSpace(lines[j])
		if trimmed == tocTerminator {
			return start, j + 1
		}
		if strings.HasPrefix(trimmed, "#") {
			return start, j
		}
	}
	return start, len(lines)
}
