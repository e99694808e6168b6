// Package cli wires configuration into a runnable mdboy manager: plugin
// construction, scope registration, script queuing, and the run itself.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/GRAYgoose124/mdboy/internal/cli/git"
	"github.com/GRAYgoose124/mdboy/internal/cli/hooks"
	"github.com/GRAYgoose124/mdboy/internal/cli/script"
	"github.com/GRAYgoose124/mdboy/internal/cli/ui"
	"github.com/GRAYgoose124/mdboy/pkg/mdboy"
	"github.com/GRAYgoose124/mdboy/pkg/mdboy/document"
	"github.com/GRAYgoose124/mdboy/pkg/mdboy/encoding"
	"github.com/GRAYgoose124/mdboy/pkg/mdboy/plugins"
)

// Run builds a manager from opts and executes it (or hands it to the
// interactive shell). A panic escaping plugin code is caught here, logged,
// and surfaced with the valid-command list so the operator can retry; the
// core never takes the process down over one bad command.
func Run(ctx context.Context, opts mdboy.Options, logger *slog.Logger) (err error) {
	manager, buildErr := Build(opts)
	if buildErr != nil {
		return buildErr
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Error("Unexpected fault during run", slog.Any("panic", r))
			fmt.Fprintf(os.Stderr, "valid commands are: %s\n",
				strings.Join(manager.ValidCommands(), ", "))
			err = fmt.Errorf("unexpected fault: %v", r)
		}
	}()

	if opts.ScriptPath != "" {
		if err := queueScript(manager, opts.ScriptPath, logger); err != nil {
			return err
		}
	}

	if opts.Interactive {
		return ui.Run(ctx, manager)
	}

	report, err := manager.Run(ctx)
	if err != nil {
		return err
	}
	return printReport(report, opts.OutputFormat)
}

// Build constructs the manager: encoding-aware document IO (dry-run wrapped
// when requested), the enabled plugins with their scopes, the common scope,
// and default hooks and git client when none were injected.
func Build(opts mdboy.Options) (*mdboy.Manager, error) {
	handler := opts.Logger

	var io document.IO = document.NewFileIO(encoding.NewCharsetHandler(opts.DefaultEncoding))
	if opts.DryRun {
		io = document.NewDryRun(io)
	}

	if opts.DiffOnly && opts.GitClient == nil {
		opts.GitClient = git.NewGoGitClient(handler)
	}
	if opts.EventHooks == nil && !opts.Interactive {
		progress := term.IsTerminal(int(os.Stderr.Fd()))
		opts.EventHooks = hooks.New(handler, opts.Verbose, progress)
	}

	manager, err := mdboy.NewManager(opts)
	if err != nil {
		return nil, err
	}

	for _, spec := range opts.Plugins {
		p, err := plugins.New(spec.Name, io, handler)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", mdboy.ErrConfigValidation, err)
		}
		manager.AddPlugin(p)
		for _, dir := range spec.Dirs {
			manager.AddDir(dir, p)
		}
		for _, file := range spec.Files {
			manager.AddFile(file, p)
		}
	}
	for _, dir := range opts.Common.Dirs {
		manager.AddDir(dir, nil)
	}
	for _, file := range opts.Common.Files {
		manager.AddFile(file, nil)
	}
	return manager, nil
}

// queueScript loads a command script and queues each entry. Entries that
// fail validation are reported and skipped; the rest still run.
func queueScript(manager *mdboy.Manager, path string, logger *slog.Logger) error {
	entries, err := script.Load(path)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		p, ok := manager.Lookup(entry.Plugin)
		if !ok {
			logger.Error("Script references unregistered plugin",
				slog.String("plugin", entry.Plugin),
				slog.Any("validCommands", manager.ValidCommands()))
			continue
		}
		if err := manager.QueueCommand(p, entry.Command, entry.Args); err != nil {
			logger.Error("Script command rejected", slog.Any("error", err),
				slog.Any("validCommands", manager.ValidCommands()))
		}
	}
	return nil
}

func printReport(report mdboy.Report, format mdboy.OutputFormat) error {
	switch format {
	case mdboy.OutputFormatJSON:
		out, err := report.JSON()
		if err != nil {
			return err
		}
		fmt.Println(out)
	default:
		fmt.Print(report.Text())
	}
	return nil
}
