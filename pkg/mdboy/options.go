package mdboy

import (
	"log/slog"
	"time"
)

// ScopeSpec names directories and files contributed to a scope via
// configuration. Paths may be relative to Options.Root.
type ScopeSpec struct {
	Dirs  []string `mapstructure:"dirs"`
	Files []string `mapstructure:"files"`
}

// PluginSpec enables a built-in plugin by name and attaches its
// plugin-specific scope.
type PluginSpec struct {
	Name  string   `mapstructure:"name"`
	Dirs  []string `mapstructure:"dirs"`
	Files []string `mapstructure:"files"`
}

// Hooks defines callbacks for status updates during a run. The manager is
// single-threaded, so implementations are invoked sequentially.
type Hooks interface {
	OnFileDiscovered(plugin, path string) error
	OnFileStatusUpdate(plugin, path string, status Status, message string, duration time.Duration) error
	OnRunComplete(report Report) error
}

// NoOpHooks provides a default, do-nothing implementation of the Hooks interface.
type NoOpHooks struct{}

// OnFileDiscovered implements the Hooks interface. It performs no action.
func (h *NoOpHooks) OnFileDiscovered(plugin, path string) error { return nil }

// OnFileStatusUpdate implements the Hooks interface. It performs no action.
func (h *NoOpHooks) OnFileStatusUpdate(plugin, path string, status Status, message string, duration time.Duration) error {
	return nil
}

// OnRunComplete implements the Hooks interface. It performs no action.
func (h *NoOpHooks) OnRunComplete(report Report) error { return nil }

// GitClient defines the Git interaction needed for diff-only filtering.
type GitClient interface {
	// ChangedFiles returns the set of repo-relative, slash-separated paths
	// with staged or unstaged modifications in the repository containing
	// repoPath. Untracked files are excluded.
	ChangedFiles(repoPath string) (map[string]struct{}, error)
}

// Options holds all configuration for a Manager.
type Options struct {
	// --- Core paths ---
	Root      string `mapstructure:"root"`      // Optional base for relative scope paths
	Extension string `mapstructure:"extension"` // Document extension for directory scans (default ".md")

	// --- Behavior & control ---
	ConfigFilePath string       `mapstructure:"-"`            // Path to the loaded config file (for reporting)
	ProfileName    string       `mapstructure:"-"`            // Name of the profile used (for reporting)
	Verbose        bool         `mapstructure:"verbose"`      // Enable debug logging
	DryRun         bool         `mapstructure:"dryRun"`       // Report would-be modifications without writing
	DiffOnly       bool         `mapstructure:"diffOnly"`     // Restrict hook passes to git-changed files
	OutputFormat   OutputFormat `mapstructure:"outputFormat"` // ("text", "json") for the final report
	Interactive    bool         `mapstructure:"-"`            // Start the interactive shell (set by --interactive)
	ScriptPath     string       `mapstructure:"-"`            // Command script to queue before running (set by --script)

	// --- Documents ---
	DefaultEncoding string `mapstructure:"defaultEncoding"` // Fallback charset when detection is uncertain

	// --- Plugins & scopes ---
	Plugins []PluginSpec `mapstructure:"plugins"` // Enabled plugins with their specific scopes
	Common  ScopeSpec    `mapstructure:"common"`  // Scope applied to every plugin

	// --- Injected dependencies ---
	EventHooks Hooks        `mapstructure:"-"` // Optional: status callback interface
	Logger     slog.Handler `mapstructure:"-"` // Required: logging backend
	GitClient  GitClient    `mapstructure:"-"` // Required when DiffOnly is set
}
