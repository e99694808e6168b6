package plugins

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/GRAYgoose124/mdboy/pkg/mdboy"
	"github.com/GRAYgoose124/mdboy/pkg/mdboy/document"
)

// Tag maintains a bracketed tag list directly under a document's title:
//
//	# Readme
//	[#tag1, #tag2, #tag3]
//
// Commands adjust the plugin's tag set; the hook then inserts the list under
// the title of every scoped document, appending into an existing bracket
// line rather than creating a second one. Documents without a title line are
// left untouched.
type Tag struct {
	io       document.IO
	logger   *slog.Logger
	tags     []string
	commands map[string]mdboy.Command
}

// NewTag creates the tag plugin with an empty tag set.
func NewTag(io document.IO, handler slog.Handler) *Tag {
	t := &Tag{
		io:     io,
		logger: slog.New(handler).With(slog.String("plugin", KindTag)),
	}
	t.commands = map[string]mdboy.Command{
		"add_tag": {
			Name:         "add_tag",
			DependsOn:    []string{KindTitle},
			RequiredArgs: []string{"tag"},
			Run: func(args []string) error {
				t.add(args[0])
				return nil
			},
		},
		"add_tags": {
			Name:         "add_tags",
			DependsOn:    []string{KindTitle},
			RequiredArgs: []string{"tags"},
			Run: func(args []string) error {
				for _, tag := range splitTags(args) {
					t.add(tag)
				}
				return nil
			},
		},
		"remove_tag": {
			Name:         "remove_tag",
			RequiredArgs: []string{"tag"},
			Run: func(args []string) error {
				return t.remove(args[0])
			},
		},
		"remove_tags": {
			Name:         "remove_tags",
			RequiredArgs: []string{"tags"},
			Run: func(args []string) error {
				for _, tag := range splitTags(args) {
					if err := t.remove(tag); err != nil {
						return err
					}
				}
				return nil
			},
		},
	}
	return t
}

// Kind implements mdboy.Plugin.
func (t *Tag) Kind() string { return KindTag }

// Commands implements mdboy.Plugin.
func (t *Tag) Commands() map[string]mdboy.Command { return t.commands }

// Tags returns the plugin's current tag set in insertion order.
func (t *Tag) Tags() []string { return t.tags }

func (t *Tag) add(tag string) {
	if !slices.Contains(t.tags, tag) {
		t.tags = append(t.tags, tag)
	}
}

func (t *Tag) remove(tag string) error {
	i := slices.Index(t.tags, tag)
	if i < 0 {
		return fmt.Errorf("tag %q not present", tag)
	}
	t.tags = slices.Delete(t.tags, i, i+1)
	return nil
}

// AddTags returns lines with tags merged into the document's tag list. A
// document with no title line yields no modification. An existing bracket
// line directly under the title is extended in place; already-present tags
// are not duplicated.
func (t *Tag) AddTags(lines []string, tags []string) ([]string, bool) {
	idx := findTitle(lines)
	if idx < 0 {
		return nil, false
	}

	existing, hasList := parseTagList(lines, idx+1)
	merged := slices.Clone(existing)
	for _, tag := range tags {
		if !slices.Contains(merged, tag) {
			merged = append(merged, tag)
		}
	}
	if slices.Equal(merged, existing) {
		return nil, false
	}
	listLine := formatTagList(merged)

	out := make([]string, len(lines))
	copy(out, lines)
	if hasList {
		out[idx+1] = listLine
		return out, true
	}
	out[idx] = document.EnsureNewline(out[idx])
	out = slices.Insert(out, idx+1, listLine)
	return out, true
}

// Hook implements mdboy.Plugin. With no tags to add it reports no
// modification and leaves the file untouched.
func (t *Tag) Hook(path string) (bool, error) {
	if len(t.tags) == 0 {
		return false, nil
	}
	lines, err := t.io.Read(path)
	if err != nil {
		return false, err
	}
	out, modified := t.AddTags(lines, t.tags)
	if !modified {
		return false, nil
	}
	if err := t.io.Write(path, out); err != nil {
		return false, err
	}
	t.logger.Debug("Updated tag list", slog.String("path", path), slog.Any("tags", t.tags))
	return true, nil
}

// parseTagList reads the bracketed tag list at lines[idx], returning the
// bare tag names (without the # marker) and whether a list line was found.
func parseTagList(lines []string, idx int) ([]string, bool) {
	if idx >= len(lines) {
		return nil, false
	}
	trimmed := strings.TrimSpace(lines[idx])
	if !strings.HasPrefix(trimmed, "[") || !strings.HasSuffix(trimmed, "]") {
		return nil, false
	}
	body := strings.TrimSuffix(strings.TrimPrefix(trimmed, "["), "]")
	var tags []string
	for _, entry := range strings.Split(body, ",") {
		entry = strings.TrimPrefix(strings.TrimSpace(entry), "#")
		if entry != "" {
			tags = append(tags, entry)
		}
	}
	return tags, true
}

// formatTagList renders tags as a `[#a, #b]` line.
func formatTagList(tags []string) string {
	marked := make([]string, len(tags))
	for i, tag := range tags {
		marked[i] = "#" + tag
	}
	return "[" + strings.Join(marked, ", ") + "]\n"
}

// splitTags expands command arguments into individual tags: each argument
// may itself be a comma-separated list.
func splitTags(args []string) []string {
	var tags []string
	for _, arg := range args {
		for _, tag := range strings.Split(arg, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}
	return tags
}
