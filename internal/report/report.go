// Package report aggregates per-file outcomes into the run summary.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/fatih/color"
)

// Outcome is the terminal state of one processed file.
type Outcome string

const (
	// OutcomeWritten means content changed and passed all validations.
	OutcomeWritten Outcome = "written"
	// OutcomeNoop means no eligible sites, or all were skip-classified.
	OutcomeNoop Outcome = "no-op"
	// OutcomeError means an exception occurred during processing.
	OutcomeError Outcome = "error"
	// OutcomeRejected means corruption or syntax failure; the original
	// file was left untouched.
	OutcomeRejected Outcome = "rejected"
)

// FileResult is the outcome for one file.
type FileResult struct {
	Path         string  `json:"path"`
	Outcome      Outcome `json:"outcome"`
	Replacements int     `json:"replacements"`
	Skipped      int     `json:"skipped"`
	Declined     int     `json:"declined"`
	Detail       string  `json:"detail,omitempty"`
}

// Report is the full run summary, serializable for automation.
type Report struct {
	Files            []FileResult  `json:"files"`
	BatchSize        int           `json:"batchSize"`
	BatchForced      bool          `json:"batchForced"`
	TotalDiagnostics int           `json:"totalDiagnostics"`
	Replacements     int           `json:"replacements"`
	CheckpointFailed bool          `json:"checkpointFailed"`
	DryRun           bool          `json:"dryRun"`
	SnapshotHandle   string        `json:"snapshotHandle,omitempty"`
	Warnings         []string      `json:"warnings,omitempty"`
	Duration         time.Duration `json:"durationNs"`
}

// Add appends one file result and folds its counters into the totals.
func (r *Report) Add(fr FileResult) {
	r.Files = append(r.Files, fr)
	r.Replacements += fr.Replacements
}

func (r *Report) count(o Outcome) int {
	n := 0
	for _, f := range r.Files {
		if f.Outcome == o {
			n++
		}
	}
	return n
}

// Partial reports whether the run had partial failures: rejected or
// errored files, or a failed build checkpoint.
func (r *Report) Partial() bool {
	return r.CheckpointFailed || r.count(OutcomeError) > 0 || r.count(OutcomeRejected) > 0
}

// WriteJSON emits the machine-readable report.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// WriteText renders the human-oriented summary. Colors honor the global
// color mode configured by the CLI.
func (r *Report) WriteText(w io.Writer) {
	header := color.New(color.Bold)
	good := color.New(color.FgGreen)
	warn := color.New(color.FgYellow)
	bad := color.New(color.FgRed)

	mode := ""
	if r.DryRun {
		mode = " (dry run)"
	}
	header.Fprintf(w, "tsmend run%s: %d file(s), batch %d\n", mode, len(r.Files), r.BatchSize)

	files := make([]FileResult, len(r.Files))
	copy(files, r.Files)
	sort.SliceStable(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	for _, f := range files {
		line := fmt.Sprintf("  %-10s %s", f.Outcome, f.Path)
		switch f.Outcome {
		case OutcomeWritten:
			good.Fprintf(w, "%s (%d replaced", line, f.Replacements)
			if f.Skipped > 0 {
				good.Fprintf(w, ", %d preserved", f.Skipped)
			}
			good.Fprintln(w, ")")
		case OutcomeNoop:
			fmt.Fprintln(w, line)
		case OutcomeRejected:
			warn.Fprintf(w, "%s — %s\n", line, f.Detail)
		case OutcomeError:
			bad.Fprintf(w, "%s — %s\n", line, f.Detail)
		}
	}

	fmt.Fprintf(w, "totals: %d replaced, %d written, %d no-op, %d rejected, %d error\n",
		r.Replacements,
		r.count(OutcomeWritten), r.count(OutcomeNoop),
		r.count(OutcomeRejected), r.count(OutcomeError))

	for _, warning := range r.Warnings {
		warn.Fprintf(w, "warning: %s\n", warning)
	}
	if r.CheckpointFailed {
		bad.Fprintln(w, "build checkpoint FAILED — remaining files were not processed")
	}
	if r.SnapshotHandle != "" {
		fmt.Fprintf(w, "rollback: git stash apply %s\n", r.SnapshotHandle)
	}
	fmt.Fprintf(w, "elapsed: %s\n", r.Duration.Round(time.Millisecond))
}
