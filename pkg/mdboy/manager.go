package mdboy

import (
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"slices"
)

// PluginManager owns the set of registered plugins, validates and queues
// commands, and executes queued commands in FIFO order.
//
// Registration order is significant: sequential document passes visit plugins
// in the order they were added. The manager never destroys a plugin; removal
// only unregisters it.
type PluginManager struct {
	logger  *slog.Logger
	plugins []Plugin
	queue   []QueuedCommand

	// valid-command memoization over the aggregate identity of the plugin
	// set. The aggregate is the sum of per-kind hashes; collisions are a
	// theoretical risk accepted for this non-cryptographic use.
	validCommands []string
	lastAggregate uint64
	haveAggregate bool
}

// NewPluginManager creates an empty PluginManager logging through handler.
func NewPluginManager(handler slog.Handler) *PluginManager {
	logger := slog.New(handler).With(slog.String("component", "pluginManager"))
	return &PluginManager{logger: logger}
}

// AddPlugin registers a plugin. No duplicate-kind validation is performed;
// registering two instances of one kind is a caller error the manager cannot
// detect (see the Plugin identity contract).
func (m *PluginManager) AddPlugin(p Plugin) {
	m.plugins = append(m.plugins, p)
	m.logger.Debug("Registered plugin", slog.String("kind", p.Kind()))
}

// AddPlugins registers each plugin in order.
func (m *PluginManager) AddPlugins(ps ...Plugin) {
	for _, p := range ps {
		m.AddPlugin(p)
	}
}

// RemovePlugin unregisters the first plugin equal to p (by kind). It returns
// ErrPluginNotFound when no such plugin is registered.
func (m *PluginManager) RemovePlugin(p Plugin) error {
	for i, existing := range m.plugins {
		if SamePlugin(existing, p) {
			m.plugins = slices.Delete(m.plugins, i, i+1)
			m.logger.Debug("Removed plugin", slog.String("kind", p.Kind()))
			return nil
		}
	}
	m.logger.Error("Plugin is not in the manager", slog.String("kind", p.Kind()))
	return fmt.Errorf("%w: %s", ErrPluginNotFound, p.Kind())
}

// Plugins returns the registered plugins in registration order. The slice is
// shared; callers must not mutate it.
func (m *PluginManager) Plugins() []Plugin {
	return m.plugins
}

// Lookup returns the registered plugin with the given kind.
func (m *PluginManager) Lookup(kind string) (Plugin, bool) {
	for _, p := range m.plugins {
		if p.Kind() == kind {
			return p, true
		}
	}
	return nil, false
}

// ValidCommands returns every command name across all registered plugins.
// The slice is shared with the memoized copy; callers must not mutate it.
//
// The list is recomputed only when the aggregate identity of the plugin set
// changes from the last computation; it is rebuilt from scratch each time so
// that shrinking the set also shrinks the result.
func (m *PluginManager) ValidCommands() []string {
	aggregate := m.aggregateHash()
	if m.haveAggregate && aggregate == m.lastAggregate {
		return m.validCommands
	}

	m.validCommands = m.validCommands[:0]
	for _, p := range m.plugins {
		for name := range p.Commands() {
			m.validCommands = append(m.validCommands, name)
		}
	}
	slices.Sort(m.validCommands)
	m.lastAggregate = aggregate
	m.haveAggregate = true
	return m.validCommands
}

// QueueCommand validates that plugin is registered and that it declares the
// named command, then appends the invocation to the queue. Validation
// failures are logged and returned; the queue is left unchanged and the run
// is never aborted.
func (m *PluginManager) QueueCommand(p Plugin, name string, args []string) error {
	if _, ok := m.Lookup(p.Kind()); !ok {
		m.logger.Error("Plugin is not in the manager",
			slog.String("kind", p.Kind()), slog.String("command", name))
		return fmt.Errorf("%w: %s", ErrPluginNotFound, p.Kind())
	}
	if _, ok := p.Commands()[name]; !ok {
		m.logger.Error("Plugin has no such command",
			slog.String("kind", p.Kind()), slog.String("command", name))
		return fmt.Errorf("%w: %s.%s", ErrUnknownCommand, p.Kind(), name)
	}
	m.queue = append(m.queue, QueuedCommand{Plugin: p, Command: name, Args: args})
	return nil
}

// QueueCommands queues each entry, independently validated. Failures are
// joined into the returned error; valid entries are queued regardless.
func (m *PluginManager) QueueCommands(cmds []QueuedCommand) error {
	var errs []error
	for _, c := range cmds {
		if err := m.QueueCommand(c.Plugin, c.Command, c.Args); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// QueuedCommands returns the pending queue in FIFO order. The slice is
// shared; callers must not mutate it.
func (m *PluginManager) QueuedCommands() []QueuedCommand {
	return m.queue
}

// RemoveQueuedCommand removes the first queued entry exactly matching plugin,
// command name and argument list. It returns ErrCommandNotQueued when no
// entry matches.
func (m *PluginManager) RemoveQueuedCommand(p Plugin, name string, args []string) error {
	for i, c := range m.queue {
		if SamePlugin(c.Plugin, p) && c.Command == name && slices.Equal(c.Args, args) {
			m.queue = slices.Delete(m.queue, i, i+1)
			return nil
		}
	}
	m.logger.Error("No matching queued command",
		slog.String("kind", p.Kind()), slog.String("command", name))
	return fmt.Errorf("%w: %s.%s", ErrCommandNotQueued, p.Kind(), name)
}

// RunQueuedCommands executes every queued command strictly in FIFO order and
// then clears the queue, regardless of individual failures (at-most-once per
// entry, no partial retry).
//
// A command supplied fewer arguments than its descriptor requires is skipped
// and reported, never invoked with a short argument list. Declared DependsOn
// metadata is advisory: an unsatisfied dependency within the batch is logged
// as a warning but does not block or reorder execution.
func (m *PluginManager) RunQueuedCommands() []CommandResult {
	results := make([]CommandResult, 0, len(m.queue))
	ranKinds := make(map[string]bool)

	for _, qc := range m.queue {
		kind := qc.Plugin.Kind()
		result := CommandResult{Plugin: kind, Command: qc.Command, Args: qc.Args}

		cmd, ok := qc.Plugin.Commands()[qc.Command]
		if !ok {
			// Command disappeared between queue and run; report, don't crash.
			result.Skipped = true
			result.Error = fmt.Sprintf("%v: %s.%s", ErrUnknownCommand, kind, qc.Command)
			m.logger.Error("Queued command no longer exists",
				slog.String("kind", kind), slog.String("command", qc.Command))
			results = append(results, result)
			continue
		}

		if len(qc.Args) < len(cmd.RequiredArgs) {
			result.Skipped = true
			result.Error = fmt.Sprintf("%v: %s.%s requires %d argument(s), %d given",
				ErrMissingArgs, kind, qc.Command, len(cmd.RequiredArgs), len(qc.Args))
			m.logger.Error("Command skipped: missing required arguments",
				slog.String("kind", kind), slog.String("command", qc.Command),
				slog.Int("required", len(cmd.RequiredArgs)), slog.Int("given", len(qc.Args)))
			results = append(results, result)
			continue
		}

		for _, dep := range cmd.DependsOn {
			if !ranKinds[dep] {
				m.logger.Warn("Command dependency not satisfied earlier in this batch",
					slog.String("kind", kind), slog.String("command", qc.Command),
					slog.String("dependsOn", dep))
			}
		}

		if err := cmd.Run(qc.Args); err != nil {
			result.Error = fmt.Sprintf("%v: %v", ErrCommandFailed, err)
			m.logger.Error("Command failed",
				slog.String("kind", kind), slog.String("command", qc.Command),
				slog.Any("error", err))
		} else {
			m.logger.Debug("Ran command",
				slog.String("kind", kind), slog.String("command", qc.Command),
				slog.Any("args", qc.Args))
			ranKinds[kind] = true
		}
		results = append(results, result)
	}

	m.queue = m.queue[:0]
	return results
}

// aggregateHash sums the per-kind hashes of the registered plugins.
func (m *PluginManager) aggregateHash() uint64 {
	var sum uint64
	for _, p := range m.plugins {
		sum += kindHash(p.Kind())
	}
	return sum
}

func kindHash(kind string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(kind))
	return h.Sum64()
}
