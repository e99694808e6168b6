package mdboy

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Report summarizes the result of a single Manager run.
type Report struct {
	Summary  ReportSummary   `json:"summary"`
	Commands []CommandResult `json:"commands,omitempty"`
	Files    []FileResult    `json:"files,omitempty"`
}

// ReportSummary contains aggregated statistics for a run.
type ReportSummary struct {
	Root            string    `json:"root,omitempty"`
	ProfileUsed     string    `json:"profileUsed,omitempty"`
	ConfigFilePath  string    `json:"configFilePath,omitempty"`
	CommandCount    int       `json:"commandCount"`
	CommandErrors   int       `json:"commandErrors"`
	TotalFiles      int       `json:"totalFiles"`
	ModifiedCount   int       `json:"modifiedCount"`
	UnchangedCount  int       `json:"unchangedCount"`
	SkippedCount    int       `json:"skippedCount"`
	ErrorCount      int       `json:"errorCount"`
	DryRun          bool      `json:"dryRun"`
	DurationSeconds float64   `json:"durationSeconds"`
	Timestamp       time.Time `json:"timestamp"`
}

// CommandResult records the outcome of one queued command.
type CommandResult struct {
	Plugin  string   `json:"plugin"`
	Command string   `json:"command"`
	Args    []string `json:"args,omitempty"`
	Skipped bool     `json:"skipped,omitempty"`
	Error   string   `json:"error,omitempty"`
}

// FileResult records the outcome of one plugin hook pass over one document.
type FileResult struct {
	Plugin     string `json:"plugin"`
	Path       string `json:"path"`
	Status     Status `json:"status"`
	Error      string `json:"error,omitempty"`
	DurationMs int64  `json:"durationMs"`
}

// JSON renders the report as indented JSON.
func (r Report) JSON() (string, error) {
	out, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}
	return string(out), nil
}

// Text renders a human-readable summary of the report.
func (r Report) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "--- mdboy run summary ---\n")
	if r.Summary.Root != "" {
		fmt.Fprintf(&b, "Root:      %s\n", r.Summary.Root)
	}
	fmt.Fprintf(&b, "Commands:  %d run, %d failed/skipped\n", r.Summary.CommandCount, r.Summary.CommandErrors)
	fmt.Fprintf(&b, "Documents: %d visited, %d modified, %d unchanged, %d skipped, %d errors\n",
		r.Summary.TotalFiles, r.Summary.ModifiedCount, r.Summary.UnchangedCount,
		r.Summary.SkippedCount, r.Summary.ErrorCount)
	if r.Summary.DryRun {
		fmt.Fprintf(&b, "Dry run:   no files were written\n")
	}
	fmt.Fprintf(&b, "Duration:  %.2fs\n", r.Summary.DurationSeconds)
	for _, c := range r.Commands {
		if c.Error != "" {
			fmt.Fprintf(&b, "  command %s.%s: %s\n", c.Plugin, c.Command, c.Error)
		}
	}
	for _, f := range r.Files {
		if f.Status == StatusFailed {
			fmt.Fprintf(&b, "  %s (%s): %s\n", f.Path, f.Plugin, f.Error)
		}
	}
	return b.String()
}
