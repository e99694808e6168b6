// Package document provides line-oriented IO for Markdown documents:
// reading a file into lines (decoding non-UTF-8 input), writing lines back
// in place, and locating front matter so content scans can skip it.
//
// A document rewrite is read-modify-write and not atomic: a crash between
// read and write can lose data. This is an accepted limitation.
package document

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/GRAYgoose124/mdboy/pkg/mdboy/encoding"
)

// ErrBinary indicates a document was detected as binary and will not be
// line-processed.
var ErrBinary = errors.New("binary document")

// IO reads and writes documents as ordered lines. Each line keeps its
// trailing newline; only the final line may lack one.
type IO interface {
	Read(path string) ([]string, error)
	Write(path string, lines []string) error
}

// FileIO is the filesystem-backed IO implementation.
type FileIO struct {
	handler encoding.Handler
}

// NewFileIO creates a FileIO decoding input through handler. A nil handler
// assumes UTF-8 input and skips binary detection.
func NewFileIO(handler encoding.Handler) *FileIO {
	return &FileIO{handler: handler}
}

// Read implements the IO interface.
func (f *FileIO) Read(path string) ([]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if f.handler != nil {
		if f.handler.IsBinary(raw) {
			return nil, fmt.Errorf("%w: %s", ErrBinary, path)
		}
		decoded, name, _, decErr := f.handler.DetectAndDecode(raw)
		if decErr != nil {
			return nil, fmt.Errorf("failed to decode %s as %s: %w", path, name, decErr)
		}
		raw = decoded
	}
	return SplitLines(string(raw)), nil
}

// Write implements the IO interface, overwriting the file in place.
func (f *FileIO) Write(path string, lines []string) error {
	if err := os.WriteFile(path, []byte(strings.Join(lines, "")), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// dryRunIO reads normally and silently discards writes.
type dryRunIO struct {
	inner IO
}

// NewDryRun wraps an IO so that writes are dropped. Reads pass through.
func NewDryRun(inner IO) IO {
	return &dryRunIO{inner: inner}
}

func (d *dryRunIO) Read(path string) ([]string, error) { return d.inner.Read(path) }

func (d *dryRunIO) Write(path string, lines []string) error { return nil }

// SplitLines splits content into lines, each keeping its trailing newline.
// The final line may lack one. Empty content yields no lines.
func SplitLines(content string) []string {
	if content == "" {
		return nil
	}
	parts := strings.SplitAfter(content, "\n")
	if parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

// EnsureNewline returns line with a trailing newline appended if missing.
func EnsureNewline(line string) string {
	if strings.HasSuffix(line, "\n") {
		return line
	}
	return line + "\n"
}

// FrontMatterEnd returns the index of the first content line after any
// leading front matter block: a `---` fenced YAML block or a `+++` fenced
// TOML block starting on the first line. The block body must actually parse
// in its format; otherwise — or when no fence is present — the document is
// treated as having no front matter and 0 is returned.
func FrontMatterEnd(lines []string) int {
	if len(lines) < 2 {
		return 0
	}
	fence := strings.TrimSpace(lines[0])
	if fence != "---" && fence != "+++" {
		return 0
	}
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) != fence {
			continue
		}
		body := strings.Join(lines[1:i], "")
		if !frontMatterParses(fence, body) {
			return 0
		}
		return i + 1
	}
	return 0
}

func frontMatterParses(fence, body string) bool {
	switch fence {
	case "---":
		var v map[string]any
		return yaml.Unmarshal([]byte(body), &v) == nil
	case "+++":
		var v map[string]any
		return toml.Unmarshal([]byte(body), &v) == nil
	}
	return false
}
