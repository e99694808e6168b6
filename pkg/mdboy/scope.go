package mdboy

import (
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// commonKind keys the scope shared by every plugin. Plugin kinds are
// non-empty, so the empty string cannot collide.
const commonKind = ""

// FileScope maps each plugin to the set of documents it should process.
//
// Directories contribute matching documents found recursively at resolution
// time, not at registration time: scans are lazy and never cached, so a
// directory registered before it exists legitimately resolves to documents
// later.
type FileScope struct {
	logger    *slog.Logger
	root      string
	extension string
	dirs      map[string][]string
	files     map[string][]string
}

// NewFileScope creates a FileScope. Relative paths passed to AddDir/AddFile
// are resolved against root when it is non-empty. extension selects the
// documents matched by directory scans (DefaultExtension when empty).
func NewFileScope(root, extension string, handler slog.Handler) *FileScope {
	if extension == "" {
		extension = DefaultExtension
	}
	logger := slog.New(handler).With(slog.String("component", "fileScope"))
	return &FileScope{
		logger:    logger,
		root:      root,
		extension: extension,
		dirs:      make(map[string][]string),
		files:     make(map[string][]string),
	}
}

// Root returns the configured base path.
func (s *FileScope) Root() string { return s.root }

// AddDir registers a directory for a plugin, or for the common scope when p
// is nil. A path that is not currently a directory is a warning, not an
// error: it is still recorded and may match documents on a later resolution.
func (s *FileScope) AddDir(path string, p Plugin) {
	path = s.resolve(path)
	if info, err := os.Stat(path); err != nil || !info.IsDir() {
		s.logger.Warn("Not a directory, recording anyway", slog.String("path", path))
	}
	key := commonKind
	if p != nil {
		key = p.Kind()
	}
	s.dirs[key] = append(s.dirs[key], path)
}

// AddFile registers an explicit file for a plugin, or for the common scope
// when p is nil. A path that is not currently a regular file is a warning,
// not an error.
func (s *FileScope) AddFile(path string, p Plugin) {
	path = s.resolve(path)
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		s.logger.Warn("Not a file, recording anyway", slog.String("path", path))
	}
	key := commonKind
	if p != nil {
		key = p.Kind()
	}
	s.files[key] = append(s.files[key], path)
}

// FilesFor resolves the effective document set for a plugin: the deduplicated
// union of the plugin's directory matches, its explicit files, the common
// directory matches and the common explicit files. Results are sorted
// lexically so passes are deterministic regardless of filesystem iteration
// order. A plugin with no registrations simply contributes nothing.
func (s *FileScope) FilesFor(p Plugin) []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		out = append(out, path)
	}

	for _, key := range []string{p.Kind(), commonKind} {
		for _, dir := range s.dirs[key] {
			for _, match := range s.scan(dir) {
				add(match)
			}
		}
		for _, file := range s.files[key] {
			add(file)
		}
	}

	slices.Sort(out)
	return out
}

// AllDirs returns every registered directory across all scopes, deduplicated
// and sorted.
func (s *FileScope) AllDirs() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, dirs := range s.dirs {
		for _, d := range dirs {
			if _, ok := seen[d]; !ok {
				seen[d] = struct{}{}
				out = append(out, d)
			}
		}
	}
	slices.Sort(out)
	return out
}

// AllFiles returns every document currently reachable from any scope,
// deduplicated and sorted.
func (s *FileScope) AllFiles() []string {
	seen := make(map[string]struct{})
	var out []string
	add := func(path string) {
		if _, ok := seen[path]; !ok {
			seen[path] = struct{}{}
			out = append(out, path)
		}
	}
	for _, dirs := range s.dirs {
		for _, d := range dirs {
			for _, match := range s.scan(d) {
				add(match)
			}
		}
	}
	for _, files := range s.files {
		for _, f := range files {
			add(f)
		}
	}
	slices.Sort(out)
	return out
}

// scan walks dir recursively collecting documents with the configured
// extension. Walk errors are logged and the affected subtree skipped; a
// missing directory resolves to zero documents.
func (s *FileScope) scan(dir string) []string {
	var matches []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.logger.Warn("Scope scan error", slog.String("path", path), slog.Any("error", err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), s.extension) {
			matches = append(matches, path)
		}
		return nil
	})
	if err != nil {
		s.logger.Warn("Scope scan aborted", slog.String("dir", dir), slog.Any("error", err))
	}
	return matches
}

func (s *FileScope) resolve(path string) string {
	if s.root != "" && !filepath.IsAbs(path) {
		return filepath.Join(s.root, path)
	}
	return filepath.Clean(path)
}
