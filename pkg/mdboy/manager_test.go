package mdboy_test

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GRAYgoose124/mdboy/pkg/mdboy"
)

// fakePlugin is a minimal mdboy.Plugin for manager and scope tests.
type fakePlugin struct {
	kind     string
	commands map[string]mdboy.Command
	hooked   []string
	modified bool
	hookErr  error
}

func newFakePlugin(kind string, commandNames ...string) *fakePlugin {
	p := &fakePlugin{kind: kind, commands: map[string]mdboy.Command{}}
	for _, name := range commandNames {
		p.commands[name] = mdboy.Command{Name: name, Run: func(args []string) error { return nil }}
	}
	return p
}

func (p *fakePlugin) Kind() string                      { return p.kind }
func (p *fakePlugin) Commands() map[string]mdboy.Command { return p.commands }
func (p *fakePlugin) Hook(path string) (bool, error) {
	p.hooked = append(p.hooked, path)
	return p.modified, p.hookErr
}

func discardHandler() slog.Handler {
	return slog.NewTextHandler(io.Discard, nil)
}

func TestPluginManager_RemovePlugin_ByFreshInstance(t *testing.T) {
	m := mdboy.NewPluginManager(discardHandler())
	m.AddPlugin(newFakePlugin("tag", "add_tag"))

	// Identity is by kind: a fresh instance of the same kind removes the
	// registered one.
	err := m.RemovePlugin(newFakePlugin("tag"))
	require.NoError(t, err)
	assert.Empty(t, m.Plugins())

	err = m.RemovePlugin(newFakePlugin("tag"))
	assert.ErrorIs(t, err, mdboy.ErrPluginNotFound)
}

func TestPluginManager_ValidCommands(t *testing.T) {
	m := mdboy.NewPluginManager(discardHandler())
	tag := newFakePlugin("tag", "add_tag", "remove_tag")
	title := newFakePlugin("title", "set_title")
	m.AddPlugins(tag, title)

	assert.ElementsMatch(t, []string{"add_tag", "remove_tag", "set_title"}, m.ValidCommands())

	// Shrinking the set must shrink the cached result.
	require.NoError(t, m.RemovePlugin(title))
	assert.ElementsMatch(t, []string{"add_tag", "remove_tag"}, m.ValidCommands())

	// Growing it back recomputes again.
	m.AddPlugin(newFakePlugin("toc", "set_depth"))
	assert.ElementsMatch(t, []string{"add_tag", "remove_tag", "set_depth"}, m.ValidCommands())
}

func TestPluginManager_ValidCommands_StableWhileUnchanged(t *testing.T) {
	m := mdboy.NewPluginManager(discardHandler())
	m.AddPlugin(newFakePlugin("tag", "add_tag"))

	first := m.ValidCommands()
	second := m.ValidCommands()
	assert.Equal(t, first, second)
}

func TestPluginManager_QueueCommand_Validation(t *testing.T) {
	m := mdboy.NewPluginManager(discardHandler())
	registered := newFakePlugin("tag", "add_tag")
	m.AddPlugin(registered)

	err := m.QueueCommand(newFakePlugin("ghost", "x"), "x", nil)
	assert.ErrorIs(t, err, mdboy.ErrPluginNotFound)
	assert.Empty(t, m.QueuedCommands())

	err = m.QueueCommand(registered, "no_such_command", nil)
	assert.ErrorIs(t, err, mdboy.ErrUnknownCommand)
	assert.Empty(t, m.QueuedCommands())

	require.NoError(t, m.QueueCommand(registered, "add_tag", []string{"x"}))
	assert.Len(t, m.QueuedCommands(), 1)
}

func TestPluginManager_QueueCommands_IndependentValidation(t *testing.T) {
	m := mdboy.NewPluginManager(discardHandler())
	registered := newFakePlugin("tag", "add_tag")
	m.AddPlugin(registered)

	err := m.QueueCommands([]mdboy.QueuedCommand{
		{Plugin: registered, Command: "add_tag", Args: []string{"x"}},
		{Plugin: newFakePlugin("ghost"), Command: "x"},
		{Plugin: registered, Command: "add_tag", Args: []string{"y"}},
	})
	assert.ErrorIs(t, err, mdboy.ErrPluginNotFound)
	assert.Len(t, m.QueuedCommands(), 2, "valid entries must still queue")
}

func TestPluginManager_RemoveQueuedCommand(t *testing.T) {
	m := mdboy.NewPluginManager(discardHandler())
	p := newFakePlugin("tag", "add_tag")
	m.AddPlugin(p)
	require.NoError(t, m.QueueCommand(p, "add_tag", []string{"x"}))
	require.NoError(t, m.QueueCommand(p, "add_tag", []string{"y"}))

	// Args must match exactly.
	err := m.RemoveQueuedCommand(p, "add_tag", []string{"z"})
	assert.ErrorIs(t, err, mdboy.ErrCommandNotQueued)

	require.NoError(t, m.RemoveQueuedCommand(p, "add_tag", []string{"x"}))
	queued := m.QueuedCommands()
	require.Len(t, queued, 1)
	assert.Equal(t, []string{"y"}, queued[0].Args)
}

func TestPluginManager_RunQueuedCommands_FIFO(t *testing.T) {
	m := mdboy.NewPluginManager(discardHandler())
	var applied []string
	p := &fakePlugin{kind: "tag", commands: map[string]mdboy.Command{
		"add_tag": {
			Name:         "add_tag",
			RequiredArgs: []string{"tag"},
			Run: func(args []string) error {
				applied = append(applied, args[0])
				return nil
			},
		},
	}}
	m.AddPlugin(p)

	require.NoError(t, m.QueueCommand(p, "add_tag", []string{"x"}))
	require.NoError(t, m.QueueCommand(p, "add_tag", []string{"y"}))

	results := m.RunQueuedCommands()
	assert.Equal(t, []string{"x", "y"}, applied, "commands must run in FIFO order")
	assert.Len(t, results, 2)
	assert.Empty(t, m.QueuedCommands(), "queue must be cleared after the pass")
}

func TestPluginManager_RunQueuedCommands_SkipsOnMissingArgs(t *testing.T) {
	m := mdboy.NewPluginManager(discardHandler())
	invoked := false
	var applied []string
	p := &fakePlugin{kind: "tag", commands: map[string]mdboy.Command{
		"add_tag": {
			Name:         "add_tag",
			RequiredArgs: []string{"tag"},
			Run: func(args []string) error {
				invoked = true
				if len(args) > 0 {
					applied = append(applied, args[0])
				}
				return nil
			},
		},
	}}
	m.AddPlugin(p)

	require.NoError(t, m.QueueCommand(p, "add_tag", nil)) // arity checked at run time
	require.NoError(t, m.QueueCommand(p, "add_tag", []string{"x"}))

	results := m.RunQueuedCommands()
	require.Len(t, results, 2)
	assert.True(t, results[0].Skipped)
	assert.Contains(t, results[0].Error, "missing required arguments")
	assert.Equal(t, []string{"x"}, applied, "later commands still run after a skip")
	assert.True(t, invoked)
	assert.Empty(t, m.QueuedCommands())
}

func TestPluginManager_RunQueuedCommands_ContinuesAfterFailure(t *testing.T) {
	m := mdboy.NewPluginManager(discardHandler())
	var applied []string
	p := &fakePlugin{kind: "tag", commands: map[string]mdboy.Command{
		"fail": {Name: "fail", Run: func(args []string) error {
			return errors.New("boom")
		}},
		"ok": {Name: "ok", Run: func(args []string) error {
			applied = append(applied, "ok")
			return nil
		}},
	}}
	m.AddPlugin(p)

	require.NoError(t, m.QueueCommand(p, "fail", nil))
	require.NoError(t, m.QueueCommand(p, "ok", nil))

	results := m.RunQueuedCommands()
	require.Len(t, results, 2)
	assert.Contains(t, results[0].Error, "boom")
	assert.Equal(t, []string{"ok"}, applied)
}

func TestPluginManager_Lookup(t *testing.T) {
	m := mdboy.NewPluginManager(discardHandler())
	p := newFakePlugin("tag", "add_tag")
	m.AddPlugin(p)

	got, ok := m.Lookup("tag")
	require.True(t, ok)
	assert.True(t, mdboy.SamePlugin(p, got))

	_, ok = m.Lookup("ghost")
	assert.False(t, ok)
}

func ExamplePluginManager() {
	m := mdboy.NewPluginManager(discardHandler())
	p := newFakePlugin("tag", "add_tag")
	m.AddPlugin(p)
	_ = m.QueueCommand(p, "add_tag", []string{"docs"})
	fmt.Println(len(m.QueuedCommands()))
	// Output: 1
}
