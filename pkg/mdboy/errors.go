package mdboy

import "errors"

// Exported error variables. Library users can check against these using
// errors.Is. None of them abort a whole run on their own: the manager reports
// and continues, matching its resilient-by-default contract.
var (
	// ErrPluginNotFound indicates an operation referenced a plugin kind that is
	// not registered with the manager. Returned by RemovePlugin and by
	// QueueCommand when the target plugin is absent.
	ErrPluginNotFound = errors.New("plugin not registered")

	// ErrUnknownCommand indicates a queue operation named a command that the
	// target plugin does not declare.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrCommandNotQueued indicates RemoveQueuedCommand found no queued entry
	// exactly matching the given plugin, command name and arguments.
	ErrCommandNotQueued = errors.New("command not queued")

	// ErrMissingArgs indicates a queued command was supplied fewer arguments
	// than its descriptor requires. The command is skipped, never invoked with
	// a short argument list.
	ErrMissingArgs = errors.New("missing required arguments")

	// ErrCommandFailed wraps an error returned by a command's Run function
	// during a queue pass.
	ErrCommandFailed = errors.New("command failed")

	// ErrConfigValidation indicates the provided Options failed validation
	// checks performed by NewManager. This is returned directly as a fatal
	// error, before any run starts.
	ErrConfigValidation = errors.New("invalid configuration options provided")

	// ErrGitOperation indicates a failure obtaining the changed-file set from
	// the GitClient while diff-only filtering is active. Returned as fatal
	// because the filter cannot be applied without it.
	ErrGitOperation = errors.New("git operation failed")
)
