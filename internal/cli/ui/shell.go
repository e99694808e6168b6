// Package ui implements the interactive shell: a small bubbletea program
// where the operator queues plugin commands and triggers runs without
// restarting the process.
package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/GRAYgoose124/mdboy/pkg/mdboy"
)

var (
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	infoStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

const helpText = `commands:
  <plugin> <command> [args...]   queue a plugin command
  remove <plugin> <command> [args...]
  queued      show the pending queue
  commands    list valid commands
  run         execute queued commands and all plugin passes
  help        show this help
  quit        exit`

// Model is the bubbletea model for the interactive shell.
//
// The manager is single-threaded; bubbletea runs tea.Cmd functions on their
// own goroutines. running guards the window between dispatching "run" and
// receiving its runDoneMsg: queue-mutating input is rejected while set, so
// the manager is only ever touched from one goroutine at a time.
type Model struct {
	ctx     context.Context
	manager *mdboy.Manager
	input   textinput.Model
	history []string
	running bool
	done    bool
}

// runDoneMsg carries a finished run back into the update loop.
type runDoneMsg struct {
	report mdboy.Report
	err    error
}

// NewModel creates the shell model around a configured manager.
func NewModel(ctx context.Context, manager *mdboy.Manager) Model {
	input := textinput.New()
	input.Prompt = promptStyle.Render(">>> ")
	input.Placeholder = "help"
	input.Focus()
	return Model{
		ctx:     ctx,
		manager: manager,
		input:   input,
		history: []string{infoStyle.Render(helpText)},
	}
}

// Run starts the shell and blocks until the operator exits.
func Run(ctx context.Context, manager *mdboy.Manager) error {
	model := NewModel(ctx, manager)
	_, err := tea.NewProgram(&model, tea.WithContext(ctx)).Run()
	return err
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD:
			m.done = true
			return m, tea.Quit
		case tea.KeyEnter:
			line := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if line == "" {
				return m, nil
			}
			m.history = append(m.history, promptStyle.Render(">>> ")+line)
			return m.dispatch(line)
		}
	case runDoneMsg:
		m.running = false
		if msg.err != nil {
			m.echo(errorStyle.Render(fmt.Sprintf("run failed: %v", msg.err)))
		} else {
			m.echo(okStyle.Render(strings.TrimRight(msg.report.Text(), "\n")))
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	// Keep the transcript short; the shell is a control surface, not a pager.
	start := max(0, len(m.history)-20)
	for _, line := range m.history[start:] {
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString(m.input.View())
	b.WriteString("\n")
	return b.String()
}

// dispatch interprets one input line. While a run is in flight only
// read-only commands are allowed; anything touching the manager's queue or
// plugin state is rejected until the runDoneMsg arrives.
func (m *Model) dispatch(line string) (tea.Model, tea.Cmd) {
	fields := strings.Fields(line)
	if m.running {
		switch fields[0] {
		case "quit", "exit", "help":
		default:
			// Even reads race with the run goroutine (ValidCommands memoizes,
			// QueuedCommands shares the queue slice), so only commands that
			// never touch the manager pass through.
			m.echo(errorStyle.Render("a run is in progress; wait for it to finish"))
			return m, nil
		}
	}
	switch fields[0] {
	case "quit", "exit":
		m.done = true
		return m, tea.Quit
	case "help":
		m.echo(infoStyle.Render(helpText))
	case "commands":
		m.echo(infoStyle.Render("valid commands: " + strings.Join(m.manager.ValidCommands(), ", ")))
	case "queued":
		queued := m.manager.QueuedCommands()
		if len(queued) == 0 {
			m.echo(infoStyle.Render("queue is empty"))
			break
		}
		for i, qc := range queued {
			m.echo(infoStyle.Render(fmt.Sprintf("%d. %s %s %s",
				i+1, qc.Plugin.Kind(), qc.Command, strings.Join(qc.Args, " "))))
		}
	case "run":
		m.running = true
		manager := m.manager
		ctx := m.ctx
		return m, func() tea.Msg {
			report, err := manager.Run(ctx)
			return runDoneMsg{report: report, err: err}
		}
	case "remove":
		if len(fields) < 3 {
			m.echo(errorStyle.Render("usage: remove <plugin> <command> [args...]"))
			break
		}
		m.queueOp(fields[1], func(p mdboy.Plugin) error {
			return m.manager.RemoveQueuedCommand(p, fields[2], fields[3:])
		}, "removed")
	default:
		if len(fields) < 2 {
			m.echo(errorStyle.Render("usage: <plugin> <command> [args...]"))
			m.echo(infoStyle.Render("valid commands: " + strings.Join(m.manager.ValidCommands(), ", ")))
			break
		}
		m.queueOp(fields[0], func(p mdboy.Plugin) error {
			return m.manager.QueueCommand(p, fields[1], fields[2:])
		}, "queued")
	}
	return m, nil
}

// queueOp resolves a plugin by kind and applies op, surfacing the valid
// command list on failure so the operator can retry.
func (m *Model) queueOp(kind string, op func(mdboy.Plugin) error, verb string) {
	p, ok := m.manager.Lookup(kind)
	if !ok {
		m.echo(errorStyle.Render(fmt.Sprintf("no plugin %q registered", kind)))
		m.echo(infoStyle.Render("valid commands: " + strings.Join(m.manager.ValidCommands(), ", ")))
		return
	}
	if err := op(p); err != nil {
		m.echo(errorStyle.Render(err.Error()))
		m.echo(infoStyle.Render("valid commands: " + strings.Join(m.manager.ValidCommands(), ", ")))
		return
	}
	m.echo(okStyle.Render(verb))
}

func (m *Model) echo(line string) {
	m.history = append(m.history, line)
}
