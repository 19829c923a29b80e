package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tsmend/internal/config"
	"tsmend/internal/ledger"
)

var metricsCmd = &cobra.Command{
	Use:   "metrics [flags] [project-root]",
	Short: "Show the accumulated safety ledger",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runMetrics,
}

func init() {
	metricsCmd.Flags().Bool("json", false, "emit raw ledger JSON")
	metricsCmd.Flags().Bool("history", false, "include the per-run history archive")
}

func runMetrics(cmd *cobra.Command, args []string) error {
	if err := applyColorMode(cmd); err != nil {
		return err
	}

	root := "."
	if len(args) == 1 {
		root = args[0]
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return err
	}
	cfg, _, err := config.LoadFor(root)
	if err != nil {
		return err
	}
	led, err := ledger.Load(root, cfg.Safety)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}

	jsonOut, _ := cmd.Flags().GetBool("json")
	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(led.Metrics)
	}

	m := led.Metrics
	header := color.New(color.Bold)
	header.Printf("ledger for %s\n", root)
	fmt.Printf("  runs:        %d total, %d successful\n", m.TotalRuns, m.SuccessfulRuns)
	fmt.Printf("  files:       %d processed\n", m.FilesProcessed)
	fmt.Printf("  replaced:    %d any annotations\n", m.AnysReplaced)
	fmt.Printf("  errors:      %d, corruption: %d, build failures: %d\n",
		m.ErrorsEncountered, m.CorruptionDetected, m.BuildFailures)
	fmt.Printf("  batch:       avg %.1f, max safe %d\n", m.AverageBatchSize, m.MaxSafeBatchSize)
	fmt.Printf("  safety:      %.2f (next batch %d)\n", led.SafetyScore(), led.RecommendedBatchSize())

	if len(m.ReplacementTypeSuccess) > 0 {
		fmt.Println("  by heuristic:")
		reasons := make([]string, 0, len(m.ReplacementTypeSuccess))
		for reason := range m.ReplacementTypeSuccess {
			reasons = append(reasons, reason)
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			stat := m.ReplacementTypeSuccess[reason]
			fmt.Printf("    %-24s %d/%d\n", reason, stat.Successes, stat.Attempts)
		}
	}

	showHistory, _ := cmd.Flags().GetBool("history")
	if !showHistory {
		return nil
	}
	hist, err := ledger.OpenHistory("tsmend", root)
	if err != nil {
		return err
	}
	entries, err := hist.Read()
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("no archived runs")
		return nil
	}
	header.Println("history:")
	for _, e := range entries {
		verdict := "failed"
		if e.Success {
			verdict = "ok"
		}
		fmt.Printf("  %s  batch %-3d files %-3d replaced %-3d errors %-2d %s\n",
			e.StartedAt.Format("2006-01-02 15:04"), e.BatchSize, e.Files, e.Replacements, e.Errors, verdict)
	}
	return nil
}
