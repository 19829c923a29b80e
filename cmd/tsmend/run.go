package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"tsmend/internal/collect"
	"tsmend/internal/config"
	"tsmend/internal/engine"
	"tsmend/internal/ledger"
	"tsmend/internal/report"
	"tsmend/internal/ui"
)

var runCmd = &cobra.Command{
	Use:   "run [flags] [project-root]",
	Short: "Collect diagnostics and rewrite any annotations",
	Long:  "Run the checker and linter, rank the noisiest files, and rewrite explicit any annotations under per-site and whole-file validation.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runRun,
}

func init() {
	runCmd.Flags().Bool("dry-run", false, "report proposals without writing files")
	runCmd.Flags().Bool("interactive", false, "confirm every change (default on a terminal)")
	runCmd.Flags().Bool("auto-fix", false, "apply high-confidence changes without prompting")
	runCmd.Flags().Int("max-files", 0, "force the batch size instead of the ledger recommendation")
	runCmd.Flags().Int("checkpoint-every", 0, "override the build-checkpoint interval")
	runCmd.Flags().Bool("json", false, "emit the report as JSON")
	runCmd.Flags().Bool("silent", false, "alias for --quiet")
	runCmd.Flags().Bool("no-snapshot", false, "skip the git stash snapshot")
	runCmd.Flags().Bool("allow-dirty", false, "run over uncommitted changes")
}

func runRun(cmd *cobra.Command, args []string) error {
	if err := applyColorMode(cmd); err != nil {
		return err
	}

	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("resolve project root: %w", err)
	}

	cfg, manifest, err := config.LoadFor(root)
	if err != nil {
		return err
	}

	dryRun, _ := cmd.Flags().GetBool("dry-run")
	interactiveFlag, _ := cmd.Flags().GetBool("interactive")
	autoFix, _ := cmd.Flags().GetBool("auto-fix")
	maxFiles, _ := cmd.Flags().GetInt("max-files")
	checkpointEvery, _ := cmd.Flags().GetInt("checkpoint-every")
	jsonOut, _ := cmd.Flags().GetBool("json")
	noSnapshot, _ := cmd.Flags().GetBool("no-snapshot")
	allowDirty, _ := cmd.Flags().GetBool("allow-dirty")

	if interactiveFlag && autoFix {
		return fmt.Errorf("--interactive and --auto-fix are mutually exclusive")
	}

	quiet := beQuiet(cmd)
	if manifest != "" && !quiet && !jsonOut {
		fmt.Fprintf(os.Stderr, "using %s\n", manifest)
	}

	led, err := ledger.Load(root, cfg.Safety)
	if err != nil {
		// повреждённый ledger не блокирует запуск
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	eng := engine.New(cfg, led, collect.New(root, cfg.Tools))

	interactive := interactiveFlag || (!autoFix && !dryRun && isTerminal(os.Stdout))

	opts := engine.Options{
		Root:            root,
		DryRun:          dryRun,
		Interactive:     interactive,
		AutoFix:         autoFix,
		MaxFiles:        maxFiles,
		CheckpointEvery: checkpointEvery,
		NoSnapshot:      noSnapshot,
		AllowDirty:      allowDirty,
	}
	if interactive {
		opts.Confirm = ui.NewPrompt()
	}
	if !quiet && !jsonOut {
		opts.Log = os.Stderr
	} else {
		opts.Log = io.Discard
	}

	var rep *report.Report
	// Прогресс-TUI и интерактивные промпты не делят терминал.
	useTUI := !interactive && !quiet && !jsonOut && isTerminal(os.Stdout)
	if useTUI {
		opts.Log = io.Discard
		rep, err = runWithUI(cmd.Context(), eng, opts)
	} else {
		rep, err = eng.Run(cmd.Context(), opts)
	}
	if err != nil {
		return err
	}

	if jsonOut {
		if err := rep.WriteJSON(os.Stdout); err != nil {
			return err
		}
	} else {
		rep.WriteText(os.Stdout)
	}

	if rep.Partial() {
		return &exitError{code: 2, msg: "run completed with partial failures"}
	}
	return nil
}

type runOutcome struct {
	rep *report.Report
	err error
}

// runWithUI drives the engine under a Bubble Tea progress view.
func runWithUI(ctx context.Context, eng *engine.Engine, opts engine.Options) (*report.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan engine.Event, 256)
	outcomeCh := make(chan runOutcome, 1)

	go func() {
		optsCopy := opts
		optsCopy.Progress = engine.ChannelSink{Ch: events}
		rep, err := eng.Run(ctx, optsCopy)
		outcomeCh <- runOutcome{rep: rep, err: err}
		close(events)
	}()

	model := ui.NewProgressModel("tsmend run", events)
	program := tea.NewProgram(model, tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	// ctrl+c в raw-режиме закрывает только вью: останавливаем движок,
	// чтобы ledger дописался перед выходом
	cancel()
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.rep, uiErr
	}
	return outcome.rep, outcome.err
}
