// Package engine drives one mending run: collect diagnostics, rank
// files, rewrite `any` sites under the safety gates, and fold the
// outcome back into the ledger.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"tsmend/internal/collect"
	"tsmend/internal/config"
	"tsmend/internal/gitsnap"
	"tsmend/internal/ledger"
	"tsmend/internal/report"
)

// ErrDirtyTree is returned when a mutating run is requested over
// uncommitted changes and --allow-dirty was not given.
var ErrDirtyTree = errors.New("working tree has uncommitted changes")

// errQuit propagates an interactive quit out of the file loop.
var errQuit = errors.New("run stopped by user")

// Options control one run. Zero value is a non-interactive mutating run
// with ledger-recommended batch sizing.
type Options struct {
	Root        string
	DryRun      bool
	Interactive bool
	AutoFix     bool

	// MaxFiles forces the batch size, bypassing the ledger
	// recommendation. 0 means "ask the ledger".
	MaxFiles int

	// CheckpointEvery overrides the configured checkpoint interval.
	CheckpointEvery int

	NoSnapshot bool
	AllowDirty bool

	// Confirm gates proposals in interactive mode. Required when
	// Interactive is set.
	Confirm Confirmer

	// Progress receives per-stage events; nil disables reporting.
	Progress ProgressSink

	Log io.Writer
}

// Engine wires the collector, classifier chain, and ledger together.
type Engine struct {
	cfg       config.Config
	led       *ledger.Ledger
	collector *collect.Collector
}

func New(cfg config.Config, led *ledger.Ledger, collector *collect.Collector) *Engine {
	return &Engine{cfg: cfg, led: led, collector: collector}
}

// Run executes the full pipeline and returns the run report. A non-nil
// error means the run could not proceed at all (dirty tree, missing
// tool); partial failures land in the report instead.
func (e *Engine) Run(ctx context.Context, opts Options) (*report.Report, error) {
	start := time.Now()
	rep := &report.Report{DryRun: opts.DryRun}
	log := opts.Log
	if log == nil {
		log = io.Discard
	}

	confirm := opts.Confirm
	if confirm == nil {
		if opts.Interactive {
			return nil, errors.New("interactive run without a confirmer")
		}
		if opts.DryRun {
			// dry run counts every applicable proposal
			confirm = acceptAll{}
		} else {
			confirm = autoConfirmer{}
		}
	}

	if !opts.DryRun {
		if err := e.prepareTree(ctx, opts, rep); err != nil {
			return nil, err
		}
	}

	emit(opts.Progress, Event{Stage: StageCollect, Status: StatusWorking})
	bag, warnings, err := e.collector.Collect(ctx, e.cfg.Safety.MaxDiagnostics)
	if err != nil {
		emit(opts.Progress, Event{Stage: StageCollect, Status: StatusError})
		return nil, fmt.Errorf("collect diagnostics: %w", err)
	}
	emit(opts.Progress, Event{Stage: StageCollect, Status: StatusDone})
	for _, w := range warnings {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("%s: %v", w.Tool, w.Err))
	}
	rep.TotalDiagnostics = bag.Len()

	byFile := bag.ByFile()
	ordered := orderFiles(byFile, e.cfg.Priority.DirWeights)

	batch := e.led.RecommendedBatchSize()
	if opts.MaxFiles > 0 {
		batch = opts.MaxFiles
		rep.BatchForced = true
	}
	if batch > len(ordered) {
		batch = len(ordered)
	}
	rep.BatchSize = batch
	e.led.RecordRunStart(batch)

	every := e.cfg.Safety.CheckpointEvery
	if opts.CheckpointEvery > 0 {
		every = opts.CheckpointEvery
	}

	for _, path := range ordered[:batch] {
		emit(opts.Progress, Event{File: path, Stage: StageRewrite, Status: StatusQueued})
	}

	stopped := false
	for i, path := range ordered[:batch] {
		// прерывание: дописываем ledger и выходим с частичным отчётом
		if ctx.Err() != nil {
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("interrupted: %v", ctx.Err()))
			stopped = true
			break
		}
		if i > 0 && every > 0 && i%every == 0 && !opts.DryRun {
			emit(opts.Progress, Event{Stage: StageCheckpoint, Status: StatusWorking})
			if !e.checkpoint(ctx, rep) {
				emit(opts.Progress, Event{Stage: StageCheckpoint, Status: StatusError})
				break
			}
			emit(opts.Progress, Event{Stage: StageCheckpoint, Status: StatusDone})
		}

		fmt.Fprintf(log, "processing %s (%d diagnostics)\n", path, len(byFile[path]))
		emit(opts.Progress, Event{File: path, Stage: StageRewrite, Status: StatusWorking})
		fr, perr := e.processFile(ctx, path, byFile[path], confirm, opts.DryRun)
		rep.Add(fr)
		emit(opts.Progress, Event{File: path, Stage: StageRewrite, Status: fileStatus(fr.Outcome)})
		if errors.Is(perr, errQuit) {
			stopped = true
			break
		}
		if fr.Outcome == report.OutcomeRejected {
			fmt.Fprintf(log, "rejected %s: %s\n", path, fr.Detail)
		}
	}

	// финальная проверка сборки после всех записей
	if !opts.DryRun && !stopped && rep.Replacements > 0 && !rep.CheckpointFailed {
		emit(opts.Progress, Event{Stage: StageCheckpoint, Status: StatusWorking})
		if e.checkpoint(ctx, rep) {
			emit(opts.Progress, Event{Stage: StageCheckpoint, Status: StatusDone})
		} else {
			emit(opts.Progress, Event{Stage: StageCheckpoint, Status: StatusError})
		}
	}

	rep.Duration = time.Since(start)
	if !opts.DryRun {
		e.finishRun(opts.Root, rep)
	}
	return rep, nil
}

// prepareTree enforces the clean-tree gate and takes the rollback
// snapshot before any file is touched.
func (e *Engine) prepareTree(ctx context.Context, opts Options, rep *report.Report) error {
	clean, err := gitsnap.Clean(ctx, opts.Root)
	if err != nil {
		if !opts.AllowDirty {
			return fmt.Errorf("git status check: %w (use --allow-dirty to proceed)", err)
		}
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("git unavailable, no snapshot: %v", err))
		return nil
	}
	if !clean && !opts.AllowDirty {
		return ErrDirtyTree
	}
	if opts.NoSnapshot {
		return nil
	}
	handle, err := gitsnap.Snapshot(ctx, opts.Root, "tsmend pre-run "+time.Now().Format(time.RFC3339))
	if err != nil {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("snapshot failed: %v", err))
		return nil
	}
	rep.SnapshotHandle = string(handle)
	return nil
}

func fileStatus(o report.Outcome) Status {
	switch o {
	case report.OutcomeError:
		return StatusError
	case report.OutcomeRejected:
		return StatusRejected
	default:
		return StatusDone
	}
}

// checkpoint re-runs the type checker. Returns false when the run must
// stop: the project no longer builds, or the checker itself failed.
// Files already written stay written; the snapshot is the way back.
func (e *Engine) checkpoint(ctx context.Context, rep *report.Report) bool {
	ok, err := e.collector.Checkpoint(ctx)
	if err != nil {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("checkpoint: %v", err))
		rep.CheckpointFailed = true
		e.led.RecordBuildFailure()
		return false
	}
	if !ok {
		rep.CheckpointFailed = true
		e.led.RecordBuildFailure()
		return false
	}
	return true
}

// finishRun folds the run into the ledger and the history archive.
// Persistence problems degrade to warnings: the rewrite already
// happened, losing stats must not fail the run.
func (e *Engine) finishRun(root string, rep *report.Report) {
	success := e.led.RunSuccessful()
	e.led.RecordRunComplete(success)
	if err := e.led.Save(); err != nil {
		rep.Warnings = append(rep.Warnings, err.Error())
	}

	if e.cfg.Safety.DisableRunHistory {
		return
	}
	hist, err := ledger.OpenHistory("tsmend", root)
	if err != nil {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("history: %v", err))
		return
	}
	files, errs, corruptions, replacements, _ := e.led.RunStats()
	entry := ledger.HistoryEntry{
		StartedAt:    time.Now().Add(-rep.Duration),
		BatchSize:    rep.BatchSize,
		Files:        files,
		Errors:       errs,
		Corruptions:  corruptions,
		Replacements: replacements,
		Success:      success,
	}
	if err := hist.Append(entry); err != nil {
		rep.Warnings = append(rep.Warnings, fmt.Sprintf("history: %v", err))
	}
}
