// Package ledger persists historical run outcomes and turns them into a
// bounded safety score that sizes future batches.
//
// The ledger is a single JSON file in the project root. It is loaded once
// at process start, mutated in memory during the run, and written back
// exactly once at completion. Concurrent runs against the same ledger
// file are not safe: there is no locking, last writer wins. That matches
// the tool's single-operator usage model and is a documented limitation,
// not a bug to engineer away.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"tsmend/internal/config"
)

// CategoryStat tracks success/attempt counts for one replacement reason
// or pattern.
type CategoryStat struct {
	Successes int `json:"successes"`
	Attempts  int `json:"attempts"`
}

// Metrics is the persisted ledger state.
type Metrics struct {
	TotalRuns          int     `json:"totalRuns"`
	SuccessfulRuns     int     `json:"successfulRuns"`
	FilesProcessed     int     `json:"filesProcessed"`
	ErrorsEncountered  int     `json:"errorsEncountered"`
	CorruptionDetected int     `json:"corruptionDetected"`
	BuildFailures      int     `json:"buildFailures"`
	AnysReplaced       int     `json:"anysReplaced"`
	AverageBatchSize   float64 `json:"averageBatchSize"`
	MaxSafeBatchSize   int     `json:"maxSafeBatchSize"`
	SafetyScore        float64 `json:"safetyScore"`

	ReplacementTypeSuccess map[string]*CategoryStat `json:"replacementTypeSuccess"`
	PatternEffectiveness   map[string]*CategoryStat `json:"patternEffectiveness"`
}

func newMetrics() Metrics {
	return Metrics{
		ReplacementTypeSuccess: make(map[string]*CategoryStat),
		PatternEffectiveness:   make(map[string]*CategoryStat),
	}
}

// Ledger wraps Metrics with per-run bookkeeping. It is an explicit value
// injected into the orchestrator, not an ambient singleton.
type Ledger struct {
	Metrics Metrics
	Path    string
	Safety  config.SafetyConfig

	// per-run counters, reset by RecordRunStart
	runBatchSize    int
	runFiles        int
	runErrors       int
	runCorruptions  int
	runReplacements int
	runSkipped      int
}

// Load reads the ledger for a project root, or returns a fresh one when
// the file is absent. I/O and decode problems are reported as a warning
// error alongside a usable default ledger: the ledger is an
// optimization, never a dependency.
func Load(root string, safety config.SafetyConfig) (*Ledger, error) {
	path := filepath.Join(root, safety.LedgerFile)
	l := &Ledger{
		Metrics: newMetrics(),
		Path:    path,
		Safety:  safety,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return l, nil
		}
		return l, fmt.Errorf("ledger: read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &l.Metrics); err != nil {
		l.Metrics = newMetrics()
		return l, fmt.Errorf("ledger: parse %s: %w", path, err)
	}
	if l.Metrics.ReplacementTypeSuccess == nil {
		l.Metrics.ReplacementTypeSuccess = make(map[string]*CategoryStat)
	}
	if l.Metrics.PatternEffectiveness == nil {
		l.Metrics.PatternEffectiveness = make(map[string]*CategoryStat)
	}
	return l, nil
}

// Save writes the ledger atomically: temp file in the same directory,
// then rename.
func (l *Ledger) Save() error {
	data, err := json.MarshalIndent(&l.Metrics, "", "  ")
	if err != nil {
		return fmt.Errorf("ledger: marshal: %w", err)
	}
	dir := filepath.Dir(l.Path)
	tmp, err := os.CreateTemp(dir, "tsmend-ledger-*")
	if err != nil {
		return fmt.Errorf("ledger: temp file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("ledger: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("ledger: close: %w", err)
	}
	if err := os.Rename(tmpName, l.Path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("ledger: rename: %w", err)
	}
	return nil
}

// RecordRunStart resets the per-run counters.
func (l *Ledger) RecordRunStart(batchSize int) {
	l.runBatchSize = batchSize
	l.runFiles = 0
	l.runErrors = 0
	l.runCorruptions = 0
	l.runReplacements = 0
	l.runSkipped = 0
}

func (l *Ledger) RecordFileProcessed() {
	l.runFiles++
	l.Metrics.FilesProcessed++
}

func (l *Ledger) RecordError(kind string) {
	l.runErrors++
	l.Metrics.ErrorsEncountered++
	stat := l.pattern(kind)
	stat.Attempts++
}

func (l *Ledger) RecordCorruption() {
	l.runCorruptions++
	l.Metrics.CorruptionDetected++
}

func (l *Ledger) RecordBuildFailure() {
	l.Metrics.BuildFailures++
}

// RecordReplacement counts one accepted substitution under its
// heuristic reason.
func (l *Ledger) RecordReplacement(reason string) {
	l.runReplacements++
	l.Metrics.AnysReplaced++
	stat := l.reason(reason)
	stat.Attempts++
	stat.Successes++
}

// RecordSkipped counts a protected-context skip. Deliberately excluded
// from attempt statistics: preserving an intentional pattern is not a
// failed rewrite.
func (l *Ledger) RecordSkipped(reason string) {
	l.runSkipped++
}

// RecordDeclined counts a proposal that was attempted but not applied:
// the user said no, or per-site validation discarded it.
func (l *Ledger) RecordDeclined(reason string) {
	stat := l.reason(reason)
	stat.Attempts++
}

func (l *Ledger) reason(key string) *CategoryStat {
	stat, ok := l.Metrics.ReplacementTypeSuccess[key]
	if !ok {
		stat = &CategoryStat{}
		l.Metrics.ReplacementTypeSuccess[key] = stat
	}
	return stat
}

func (l *Ledger) pattern(key string) *CategoryStat {
	stat, ok := l.Metrics.PatternEffectiveness[key]
	if !ok {
		stat = &CategoryStat{}
		l.Metrics.PatternEffectiveness[key] = stat
	}
	return stat
}

// RunSuccessful applies the "good enough progress" criterion: at least
// one accepted replacement, with per-batch error and corruption rates
// under the configured limits. Not a zero-defect bar.
func (l *Ledger) RunSuccessful() bool {
	if l.runReplacements == 0 {
		return false
	}
	if l.runFiles > 0 {
		errRate := float64(l.runErrors) / float64(l.runFiles)
		corRate := float64(l.runCorruptions) / float64(l.runFiles)
		if errRate >= l.Safety.ErrorRateLimit || corRate >= l.Safety.CorruptionLimit {
			return false
		}
	}
	return true
}

// RecordRunComplete folds the finished run into the historical counters
// and recomputes the stored safety score.
func (l *Ledger) RecordRunComplete(success bool) {
	l.Metrics.TotalRuns++
	if success {
		l.Metrics.SuccessfulRuns++
		if l.runBatchSize > l.Metrics.MaxSafeBatchSize {
			l.Metrics.MaxSafeBatchSize = l.runBatchSize
		}
	}
	// скользящее среднее по фактическим батчам
	n := float64(l.Metrics.TotalRuns)
	l.Metrics.AverageBatchSize += (float64(l.runBatchSize) - l.Metrics.AverageBatchSize) / n
	l.Metrics.SafetyScore = l.SafetyScore()
}

// RunStats exposes the per-run counters for reporting.
func (l *Ledger) RunStats() (files, errors, corruptions, replacements, skipped int) {
	return l.runFiles, l.runErrors, l.runCorruptions, l.runReplacements, l.runSkipped
}
