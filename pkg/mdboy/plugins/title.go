package plugins

import (
	"log/slog"

	"github.com/GRAYgoose124/mdboy/pkg/mdboy"
	"github.com/GRAYgoose124/mdboy/pkg/mdboy/document"
)

// Title rewrites a document's top-level heading. The `set_title` command
// records the pending title; the hook then applies it to every scoped
// document, replacing the first `# ` line or inserting one at the top when
// the document has none.
type Title struct {
	io       document.IO
	logger   *slog.Logger
	pending  string
	commands map[string]mdboy.Command
}

// NewTitle creates the title plugin.
func NewTitle(io document.IO, handler slog.Handler) *Title {
	t := &Title{
		io:     io,
		logger: slog.New(handler).With(slog.String("plugin", KindTitle)),
	}
	t.commands = map[string]mdboy.Command{
		"set_title": {
			Name:         "set_title",
			RequiredArgs: []string{"title"},
			Run: func(args []string) error {
				t.pending = args[0]
				return nil
			},
		},
	}
	return t
}

// Kind implements mdboy.Plugin.
func (t *Title) Kind() string { return KindTitle }

// Commands implements mdboy.Plugin.
func (t *Title) Commands() map[string]mdboy.Command { return t.commands }

// SetTitle returns lines with the first top-level heading replaced by
// `# <title>`, inserting the heading after any front matter when the
// document has none. It reports whether the document changed.
func (t *Title) SetTitle(lines []string, title string) ([]string, bool) {
	heading := "# " + title + "\n"

	idx := findTitle(lines)
	if idx < 0 {
		at := document.FrontMatterEnd(lines)
		out := make([]string, 0, len(lines)+1)
		out = append(out, lines[:at]...)
		out = append(out, heading)
		out = append(out, lines[at:]...)
		return out, true
	}
	if lines[idx] == heading {
		return nil, false
	}
	out := make([]string, len(lines))
	copy(out, lines)
	out[idx] = heading
	return out, true
}

// Hook implements mdboy.Plugin. With no pending title it reports no
// modification and leaves the file untouched.
func (t *Title) Hook(path string) (bool, error) {
	if t.pending == "" {
		return false, nil
	}
	lines, err := t.io.Read(path)
	if err != nil {
		return false, err
	}
	out, modified := t.SetTitle(lines, t.pending)
	if !modified {
		return false, nil
	}
	if err := t.io.Write(path, out); err != nil {
		return false, err
	}
	t.logger.Debug("Rewrote title", slog.String("path", path), slog.String("title", t.pending))
	return true, nil
}
