package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GRAYgoose124/mdboy/internal/testutil"
	"github.com/GRAYgoose124/mdboy/pkg/mdboy"
)

func discardHandler() slog.Handler {
	return slog.NewTextHandler(io.Discard, nil)
}

func TestBuild_PluginsAndScopes(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"docs/a.md":   "# A\n",
		"shared/b.md": "# B\n",
	})

	manager, err := Build(mdboy.Options{
		Root:       root,
		Logger:     discardHandler(),
		EventHooks: &mdboy.NoOpHooks{},
		Plugins: []mdboy.PluginSpec{
			{Name: "tag", Dirs: []string{"docs"}},
			{Name: "title", Files: []string{"docs/a.md"}},
		},
		Common: mdboy.ScopeSpec{Dirs: []string{"shared"}},
	})
	require.NoError(t, err)

	require.Len(t, manager.Plugins(), 2)
	tag, ok := manager.Lookup("tag")
	require.True(t, ok)
	assert.Equal(t, []string{
		filepath.Join(root, "docs", "a.md"),
		filepath.Join(root, "shared", "b.md"),
	}, manager.Scope().FilesFor(tag))
}

func TestBuild_RejectsUnknownPlugin(t *testing.T) {
	_, err := Build(mdboy.Options{
		Logger:     discardHandler(),
		EventHooks: &mdboy.NoOpHooks{},
		Plugins:    []mdboy.PluginSpec{{Name: "ghost"}},
	})
	assert.ErrorIs(t, err, mdboy.ErrConfigValidation)
}

func TestRun_ScriptedEndToEnd(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"docs/a.md": "# A\n",
	})
	scriptPath := filepath.Join(root, "script.yaml")
	require.NoError(t, os.WriteFile(scriptPath, []byte(`
commands:
  - plugin: tag
    command: add_tag
    args: [x]
  - plugin: ghost
    command: nope
`), 0o644))

	logger := slog.New(discardHandler())
	err := Run(context.Background(), mdboy.Options{
		Root:       root,
		Logger:     discardHandler(),
		EventHooks: &mdboy.NoOpHooks{},
		ScriptPath: scriptPath,
		Plugins:    []mdboy.PluginSpec{{Name: "tag", Dirs: []string{"docs"}}},
	}, logger)
	require.NoError(t, err, "unknown script entries are logged, not fatal")

	content, err := os.ReadFile(filepath.Join(root, "docs", "a.md"))
	require.NoError(t, err)
	assert.Equal(t, "# A\n[#x]\n", string(content))
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{"docs/a.md": "# A\n"})
	scriptPath := filepath.Join(root, "script.yaml")
	require.NoError(t, os.WriteFile(scriptPath,
		[]byte("commands:\n  - plugin: tag\n    command: add_tag\n    args: [x]\n"), 0o644))

	logger := slog.New(discardHandler())
	err := Run(context.Background(), mdboy.Options{
		Root:       root,
		DryRun:     true,
		Logger:     discardHandler(),
		EventHooks: &mdboy.NoOpHooks{},
		ScriptPath: scriptPath,
		Plugins:    []mdboy.PluginSpec{{Name: "tag", Dirs: []string{"docs"}}},
	}, logger)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(root, "docs", "a.md"))
	require.NoError(t, err)
	assert.Equal(t, "# A\n", string(content))
}

func TestRun_BadScriptIsFatal(t *testing.T) {
	root := t.TempDir()
	scriptPath := filepath.Join(root, "script.yaml")
	require.NoError(t, os.WriteFile(scriptPath, []byte("not: a script\n"), 0o644))

	logger := slog.New(discardHandler())
	err := Run(context.Background(), mdboy.Options{
		Root:       root,
		Logger:     discardHandler(),
		EventHooks: &mdboy.NoOpHooks{},
		ScriptPath: scriptPath,
	}, logger)
	assert.Error(t, err)
}
