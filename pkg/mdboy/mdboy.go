// Package mdboy implements a plugin-driven batch fixer for collections of
// Markdown documents. Plugins declare named commands with dependency and
// argument metadata; a manager validates and queues commands, executes them
// in FIFO order, and then runs every plugin's per-document hook over its
// resolved file scope.
//
// The package is deliberately line-oriented: it never builds a Markdown AST,
// and processing is sequential and single-threaded. Document rewrites are
// read-modify-write and not atomic.
package mdboy

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"
)

// Manager composes the PluginManager with a FileScope and orchestrates a full
// run: queued commands first, then each plugin's hook over its scoped files.
type Manager struct {
	*PluginManager

	opts   Options
	logger *slog.Logger
	scope  *FileScope
	hooks  Hooks
}

// NewManager validates opts and creates a Manager. Options.Logger is
// required; Options.EventHooks defaults to NoOpHooks. When DiffOnly is set a
// GitClient must be provided.
func NewManager(opts Options) (*Manager, error) {
	if opts.Logger == nil {
		return nil, fmt.Errorf("%w: Logger implementation (slog.Handler) cannot be nil", ErrConfigValidation)
	}
	if opts.EventHooks == nil {
		opts.EventHooks = &NoOpHooks{}
	}
	if opts.DiffOnly && opts.GitClient == nil {
		return nil, fmt.Errorf("%w: DiffOnly requires a GitClient", ErrConfigValidation)
	}

	logger := slog.New(opts.Logger).With(slog.String("component", "manager"))
	return &Manager{
		PluginManager: NewPluginManager(opts.Logger),
		opts:          opts,
		logger:        logger,
		scope:         NewFileScope(opts.Root, opts.Extension, opts.Logger),
		hooks:         opts.EventHooks,
	}, nil
}

// Scope returns the manager's file scope resolver.
func (m *Manager) Scope() *FileScope { return m.scope }

// AddDir registers a directory scope for a plugin (nil for the common scope).
func (m *Manager) AddDir(path string, p Plugin) { m.scope.AddDir(path, p) }

// AddFile registers an explicit file scope for a plugin (nil for the common scope).
func (m *Manager) AddFile(path string, p Plugin) { m.scope.AddFile(path, p) }

// Execute queues the given commands, then runs everything pending.
func (m *Manager) Execute(ctx context.Context, commands []QueuedCommand) (Report, error) {
	if len(commands) > 0 {
		// Invalid entries are reported per-entry and the rest still run.
		if err := m.QueueCommands(commands); err != nil {
			m.logger.Error("Some commands were rejected", slog.Any("error", err))
		}
	}
	return m.Run(ctx)
}

// Run executes all queued commands in FIFO order, then runs every registered
// plugin's hook over its resolved file scope, plugin-by-plugin in
// registration order, document-by-document in scope-resolution order.
//
// Per-command and per-document failures are recorded in the report and do not
// stop the run; there is no rollback. The only fatal errors are context
// cancellation and a failed changed-file lookup when diff filtering is on.
func (m *Manager) Run(ctx context.Context) (Report, error) {
	start := time.Now()
	report := Report{}

	report.Commands = m.RunQueuedCommands()
	for _, c := range report.Commands {
		report.Summary.CommandCount++
		if c.Error != "" {
			report.Summary.CommandErrors++
		}
	}

	changed, err := m.changedFiles()
	if err != nil {
		return report, err
	}

	for _, p := range m.Plugins() {
		files := m.scope.FilesFor(p)
		m.logger.Debug("Resolved plugin scope",
			slog.String("kind", p.Kind()), slog.Int("files", len(files)))

		for _, file := range files {
			if err := ctx.Err(); err != nil {
				return m.finish(report, start), err
			}
			if hookErr := m.hooks.OnFileDiscovered(p.Kind(), file); hookErr != nil {
				m.logger.Warn("OnFileDiscovered hook failed", slog.Any("error", hookErr))
			}
			result := m.runHook(p, file, changed)
			report.Files = append(report.Files, result)
			report.Summary.TotalFiles++
			switch result.Status {
			case StatusModified:
				report.Summary.ModifiedCount++
			case StatusUnchanged:
				report.Summary.UnchangedCount++
			case StatusSkipped:
				report.Summary.SkippedCount++
			case StatusFailed:
				report.Summary.ErrorCount++
			}
		}
	}

	report = m.finish(report, start)
	if err := m.hooks.OnRunComplete(report); err != nil {
		m.logger.Warn("OnRunComplete hook failed", slog.Any("error", err))
	}
	return report, nil
}

// runHook invokes one plugin hook on one document, translating the outcome
// into a FileResult and firing the status hook.
func (m *Manager) runHook(p Plugin, file string, changed map[string]struct{}) FileResult {
	start := time.Now()
	result := FileResult{Plugin: p.Kind(), Path: file}

	if changed != nil && !m.isChanged(file, changed) {
		result.Status = StatusSkipped
		m.notify(result, "not in git diff", time.Since(start))
		return result
	}

	modified, err := p.Hook(file)
	switch {
	case err != nil:
		result.Status = StatusFailed
		result.Error = err.Error()
		m.logger.Error("Plugin hook failed",
			slog.String("kind", p.Kind()), slog.String("path", file), slog.Any("error", err))
	case modified:
		result.Status = StatusModified
	default:
		result.Status = StatusUnchanged
	}
	result.DurationMs = time.Since(start).Milliseconds()
	m.notify(result, result.Error, time.Since(start))
	return result
}

func (m *Manager) notify(r FileResult, message string, d time.Duration) {
	if err := m.hooks.OnFileStatusUpdate(r.Plugin, r.Path, r.Status, message, d); err != nil {
		m.logger.Warn("OnFileStatusUpdate hook failed", slog.Any("error", err))
	}
}

// changedFiles returns the git-changed set when diff filtering is active,
// or nil when every scoped file should be visited.
func (m *Manager) changedFiles() (map[string]struct{}, error) {
	if !m.opts.DiffOnly {
		return nil, nil
	}
	repoPath := m.opts.Root
	if repoPath == "" {
		repoPath = "."
	}
	changed, err := m.opts.GitClient.ChangedFiles(repoPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGitOperation, err)
	}
	m.logger.Debug("Diff-only filter active", slog.Int("changedFiles", len(changed)))
	return changed, nil
}

// isChanged matches a scoped file against the repo-relative changed set.
func (m *Manager) isChanged(file string, changed map[string]struct{}) bool {
	repoPath := m.opts.Root
	if repoPath == "" {
		repoPath = "."
	}
	abs, err := filepath.Abs(file)
	if err != nil {
		return true // can't normalize, don't silently drop the file
	}
	absRepo, err := filepath.Abs(repoPath)
	if err != nil {
		return true
	}
	rel, err := filepath.Rel(absRepo, abs)
	if err != nil {
		return true
	}
	_, ok := changed[filepath.ToSlash(rel)]
	return ok
}

func (m *Manager) finish(report Report, start time.Time) Report {
	report.Summary.Root = m.opts.Root
	report.Summary.ProfileUsed = m.opts.ProfileName
	report.Summary.ConfigFilePath = m.opts.ConfigFilePath
	report.Summary.DryRun = m.opts.DryRun
	report.Summary.DurationSeconds = time.Since(start).Seconds()
	report.Summary.Timestamp = time.Now().UTC()
	return report
}
