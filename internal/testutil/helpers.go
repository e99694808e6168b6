// Package testutil provides shared helpers for mdboy tests.
package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/GRAYgoose124/mdboy/pkg/mdboy"
)

// WriteTree creates a directory structure under root. Map keys are
// slash-separated relative paths; keys ending in "/" create directories,
// other keys create files with the given content.
func WriteTree(t *testing.T, root string, structure map[string]string) {
	t.Helper()
	for path, content := range structure {
		full := filepath.Join(root, filepath.FromSlash(path))
		if strings.HasSuffix(path, "/") {
			require.NoError(t, os.MkdirAll(full, 0o755))
			continue
		}
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

// StatusEvent is one recorded OnFileStatusUpdate call.
type StatusEvent struct {
	Plugin  string
	Path    string
	Status  mdboy.Status
	Message string
}

// RecordingHooks implements mdboy.Hooks and records every callback.
type RecordingHooks struct {
	Discovered []string
	Statuses   []StatusEvent
	Completed  bool
	Report     mdboy.Report
}

// OnFileDiscovered implements mdboy.Hooks.
func (h *RecordingHooks) OnFileDiscovered(plugin, path string) error {
	h.Discovered = append(h.Discovered, filepath.ToSlash(path))
	return nil
}

// OnFileStatusUpdate implements mdboy.Hooks.
func (h *RecordingHooks) OnFileStatusUpdate(plugin, path string, status mdboy.Status, message string, duration time.Duration) error {
	h.Statuses = append(h.Statuses, StatusEvent{
		Plugin:  plugin,
		Path:    filepath.ToSlash(path),
		Status:  status,
		Message: message,
	})
	return nil
}

// OnRunComplete implements mdboy.Hooks.
func (h *RecordingHooks) OnRunComplete(report mdboy.Report) error {
	h.Completed = true
	h.Report = report
	return nil
}
