package mdboy_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GRAYgoose124/mdboy/internal/testutil"
	"github.com/GRAYgoose124/mdboy/pkg/mdboy"
	"github.com/GRAYgoose124/mdboy/pkg/mdboy/document"
	"github.com/GRAYgoose124/mdboy/pkg/mdboy/encoding"
	"github.com/GRAYgoose124/mdboy/pkg/mdboy/plugins"
)

type fakeGitClient struct {
	changed map[string]struct{}
	err     error
}

func (c *fakeGitClient) ChangedFiles(repoPath string) (map[string]struct{}, error) {
	return c.changed, c.err
}

func newTestManager(t *testing.T, opts mdboy.Options) *mdboy.Manager {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = discardHandler()
	}
	m, err := mdboy.NewManager(opts)
	require.NoError(t, err)
	return m
}

func TestNewManager_Validation(t *testing.T) {
	_, err := mdboy.NewManager(mdboy.Options{})
	assert.ErrorIs(t, err, mdboy.ErrConfigValidation)

	_, err = mdboy.NewManager(mdboy.Options{Logger: discardHandler(), DiffOnly: true})
	assert.ErrorIs(t, err, mdboy.ErrConfigValidation)
}

func TestManager_Run_CommandsThenHooks(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"docs/readme.md": "# Readme\n\nBody.\n",
	})

	recorder := &testutil.RecordingHooks{}
	m := newTestManager(t, mdboy.Options{Root: root, EventHooks: recorder})

	io := document.NewFileIO(encoding.NewCharsetHandler(""))
	tag := plugins.NewTag(io, discardHandler())
	m.AddPlugin(tag)
	m.AddDir("docs", tag)

	require.NoError(t, m.QueueCommand(tag, "add_tag", []string{"x"}))
	require.NoError(t, m.QueueCommand(tag, "add_tag", []string{"y"}))

	report, err := m.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"x", "y"}, tag.Tags(), "queued commands apply in FIFO order")
	assert.Equal(t, 2, report.Summary.CommandCount)
	assert.Equal(t, 0, report.Summary.CommandErrors)
	assert.Equal(t, 1, report.Summary.TotalFiles)
	assert.Equal(t, 1, report.Summary.ModifiedCount)

	content, err := os.ReadFile(filepath.Join(root, "docs", "readme.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Readme\n[#x, #y]\n\nBody.\n", string(content))

	assert.True(t, recorder.Completed)
	require.Len(t, recorder.Statuses, 1)
	assert.Equal(t, mdboy.StatusModified, recorder.Statuses[0].Status)
}

func TestManager_Run_ContinuesAfterDocumentFailure(t *testing.T) {
	root := t.TempDir()
	// bad.md is binary: the hook fails on it, good.md must still be mended.
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "docs", "bad.md"),
		[]byte{0x00, 0x01, 0x02, 0x00, 0x00, 0xff, 0xfe, 0x00}, 0o644))
	testutil.WriteTree(t, root, map[string]string{
		"docs/good.md": "# Good\n",
	})

	m := newTestManager(t, mdboy.Options{Root: root})
	io := document.NewFileIO(encoding.NewCharsetHandler(""))
	tag := plugins.NewTag(io, discardHandler())
	m.AddPlugin(tag)
	m.AddDir("docs", tag)
	require.NoError(t, m.QueueCommand(tag, "add_tag", []string{"ok"}))

	report, err := m.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Summary.ErrorCount)
	assert.Equal(t, 1, report.Summary.ModifiedCount)

	content, err := os.ReadFile(filepath.Join(root, "docs", "good.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Good\n[#ok]\n", string(content))
}

func TestManager_Run_PluginsInRegistrationOrder(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{"doc.md": "Body only.\n"})

	m := newTestManager(t, mdboy.Options{Root: root})
	io := document.NewFileIO(encoding.NewCharsetHandler(""))
	title := plugins.NewTitle(io, discardHandler())
	tag := plugins.NewTag(io, discardHandler())
	m.AddPlugins(title, tag)
	m.AddFile("doc.md", nil) // common scope reaches both plugins

	require.NoError(t, m.QueueCommand(title, "set_title", []string{"Doc"}))
	require.NoError(t, m.QueueCommand(tag, "add_tag", []string{"a"}))

	_, err := m.Run(context.Background())
	require.NoError(t, err)

	// Title ran first (registration order), so the tag pass found a heading.
	content, err := os.ReadFile(filepath.Join(root, "doc.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Doc\n[#a]\nBody only.\n", string(content))
}

func TestManager_Run_DiffOnlySkipsUnchanged(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{
		"docs/changed.md":   "# Changed\n",
		"docs/untouched.md": "# Untouched\n",
	})

	m := newTestManager(t, mdboy.Options{
		Root:     root,
		DiffOnly: true,
		GitClient: &fakeGitClient{changed: map[string]struct{}{
			"docs/changed.md": {},
		}},
	})
	io := document.NewFileIO(encoding.NewCharsetHandler(""))
	tag := plugins.NewTag(io, discardHandler())
	m.AddPlugin(tag)
	m.AddDir("docs", tag)
	require.NoError(t, m.QueueCommand(tag, "add_tag", []string{"x"}))

	report, err := m.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.Summary.ModifiedCount)
	assert.Equal(t, 1, report.Summary.SkippedCount)

	content, err := os.ReadFile(filepath.Join(root, "docs", "untouched.md"))
	require.NoError(t, err)
	assert.Equal(t, "# Untouched\n", string(content), "skipped file must stay untouched")
}

func TestManager_Run_DiffOnlyGitFailureIsFatal(t *testing.T) {
	m := newTestManager(t, mdboy.Options{
		Root:      t.TempDir(),
		DiffOnly:  true,
		GitClient: &fakeGitClient{err: assert.AnError},
	})
	_, err := m.Run(context.Background())
	assert.ErrorIs(t, err, mdboy.ErrGitOperation)
}

func TestManager_Execute_QueuesThenRuns(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{"doc.md": "# Doc\n"})

	m := newTestManager(t, mdboy.Options{Root: root})
	io := document.NewFileIO(encoding.NewCharsetHandler(""))
	tag := plugins.NewTag(io, discardHandler())
	m.AddPlugin(tag)
	m.AddFile("doc.md", tag)

	report, err := m.Execute(context.Background(), []mdboy.QueuedCommand{
		{Plugin: tag, Command: "add_tag", Args: []string{"x"}},
		{Plugin: newFakePlugin("ghost"), Command: "nope"}, // rejected, run continues
	})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Summary.CommandCount)
	assert.Equal(t, 1, report.Summary.ModifiedCount)
}

func TestManager_Run_CancelledContext(t *testing.T) {
	root := t.TempDir()
	testutil.WriteTree(t, root, map[string]string{"doc.md": "# Doc\n"})

	m := newTestManager(t, mdboy.Options{Root: root})
	io := document.NewFileIO(encoding.NewCharsetHandler(""))
	tag := plugins.NewTag(io, discardHandler())
	m.AddPlugin(tag)
	m.AddFile("doc.md", tag)
	require.NoError(t, m.QueueCommand(tag, "add_tag", []string{"x"}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReport_Rendering(t *testing.T) {
	report := mdboy.Report{}
	report.Summary.TotalFiles = 3
	report.Summary.ModifiedCount = 2
	report.Files = []mdboy.FileResult{
		{Plugin: "tag", Path: "a.md", Status: mdboy.StatusFailed, Error: "boom"},
	}

	text := report.Text()
	assert.Contains(t, text, "3 visited")
	assert.Contains(t, text, "boom")

	out, err := report.JSON()
	require.NoError(t, err)
	assert.Contains(t, out, `"totalFiles": 3`)
}
