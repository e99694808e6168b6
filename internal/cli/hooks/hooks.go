// Package hooks bridges mdboy run events to the CLI's output layer: a
// progress bar on interactive terminals and structured logs otherwise.
package hooks

import (
	"log/slog"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/GRAYgoose124/mdboy/pkg/mdboy"
)

// ProgressBar defines the interface needed to interact with the progress bar.
type ProgressBar interface {
	Add(num int) error
	Describe(description string)
	Close() error
}

// NoOpProgressBar provides a default null implementation.
type NoOpProgressBar struct{}

// Add implements ProgressBar.
func (n *NoOpProgressBar) Add(num int) error { return nil }

// Describe implements ProgressBar.
func (n *NoOpProgressBar) Describe(description string) {}

// Close implements ProgressBar.
func (n *NoOpProgressBar) Close() error { return nil }

// CLIHooks implements the mdboy.Hooks interface for plain (non-interactive)
// runs.
type CLIHooks struct {
	logger  *slog.Logger
	bar     ProgressBar
	verbose bool
}

// New creates CLIHooks. With progress enabled a spinner-style bar tracks
// document passes on stderr; verbose mode logs every status instead.
func New(handler slog.Handler, verbose, progress bool) *CLIHooks {
	logger := slog.New(handler).With(slog.String("component", "hooks"))
	var bar ProgressBar = &NoOpProgressBar{}
	if progress && !verbose {
		bar = progressbar.NewOptions(-1,
			progressbar.OptionSetDescription("mending"),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetElapsedTime(true),
		)
	}
	return &CLIHooks{logger: logger, bar: bar, verbose: verbose}
}

// OnFileDiscovered implements mdboy.Hooks.
func (h *CLIHooks) OnFileDiscovered(plugin, path string) error {
	if h.verbose {
		h.logger.Debug("Discovered document",
			slog.String("plugin", plugin), slog.String("path", path))
	}
	h.bar.Describe(path)
	return nil
}

// OnFileStatusUpdate implements mdboy.Hooks.
func (h *CLIHooks) OnFileStatusUpdate(plugin, path string, status mdboy.Status, message string, duration time.Duration) error {
	_ = h.bar.Add(1)
	switch status {
	case mdboy.StatusFailed:
		h.logger.Error("Document pass failed",
			slog.String("plugin", plugin), slog.String("path", path),
			slog.String("message", message))
	case mdboy.StatusModified:
		h.logger.Info("Document modified",
			slog.String("plugin", plugin), slog.String("path", path),
			slog.Duration("duration", duration))
	default:
		if h.verbose {
			h.logger.Debug("Document status",
				slog.String("plugin", plugin), slog.String("path", path),
				slog.String("status", string(status)))
		}
	}
	return nil
}

// OnRunComplete implements mdboy.Hooks.
func (h *CLIHooks) OnRunComplete(report mdboy.Report) error {
	_ = h.bar.Close()
	h.logger.Debug("Run complete",
		slog.Int("files", report.Summary.TotalFiles),
		slog.Int("modified", report.Summary.ModifiedCount),
		slog.Int("errors", report.Summary.ErrorCount))
	return nil
}
