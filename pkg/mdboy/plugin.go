package mdboy

// Plugin is the contract every document plugin implements.
//
// Identity is by kind: two instances reporting the same Kind() are considered
// the same plugin for registration, queue validation and scope lookups. The
// manager therefore cannot tell apart two differently configured instances of
// one kind; callers must register at most one instance per kind.
type Plugin interface {
	// Kind returns the plugin's stable identifier (e.g. "tag", "toc").
	Kind() string

	// Commands returns the plugin's command descriptors keyed by command name.
	// The registry is built explicitly at construction time; internal helper
	// methods that are not enumerated here are not caller-invokable.
	Commands() map[string]Command

	// Hook is the per-document pass: it reads the document at path, applies
	// the plugin's transform and writes the result back. It reports whether
	// the document was modified. Unexpected document structure (e.g. no title
	// line) is not an error: the hook returns (false, nil) and leaves the
	// file untouched.
	Hook(path string) (bool, error)
}

// Command describes a single caller-invokable operation on a plugin.
type Command struct {
	// Name is the command's identifier, unique within its plugin.
	Name string

	// DependsOn lists plugin kinds whose effects should have been applied
	// before this command. The metadata is advisory: the manager warns about
	// unsatisfied dependencies during a queue pass but never reorders or
	// blocks execution.
	DependsOn []string

	// RequiredArgs names the arguments the command needs. A queued invocation
	// supplying fewer arguments is skipped and reported.
	RequiredArgs []string

	// Run executes the command with the supplied arguments. Commands adjust
	// plugin state that the plugin's Hook consumes on its next document pass.
	Run func(args []string) error
}

// QueuedCommand is a deferred invocation request awaiting batch execution.
type QueuedCommand struct {
	Plugin  Plugin
	Command string
	Args    []string
}

// SamePlugin reports whether two plugins share an identity. Either side may
// be nil, which never matches.
func SamePlugin(a, b Plugin) bool {
	if a == nil || b == nil {
		return false
	}
	return a.Kind() == b.Kind()
}
