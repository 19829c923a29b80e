package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tsmend/internal/config"
	"tsmend/internal/ledger"
)

// minProceedScore is the verdict boundary: below it the ledger says the
// tool has been doing more harm than good and batches stay minimal.
const minProceedScore = 0.3

var safetyCmd = &cobra.Command{
	Use:   "safety [flags] [project-root]",
	Short: "Validate the safety score before a large run",
	Long:  "Recompute the safety score from the ledger and report whether an expanded batch is advisable. Exits 1 when the score is below the proceed threshold.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSafety,
}

func runSafety(cmd *cobra.Command, args []string) error {
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

	score := led.SafetyScore()
	batch := led.RecommendedBatchSize()

	fmt.Printf("safety score: %.2f\n", score)
	fmt.Printf("recommended batch: %d (min %d, max %d)\n", batch, cfg.Safety.MinBatch, cfg.Safety.MaxBatch)

	if led.Metrics.TotalRuns < 3 {
		color.New(color.FgYellow).Println("verdict: warming up, batches stay at the minimum")
		return nil
	}
	if score < minProceedScore {
		color.New(color.FgRed).Println("verdict: hold, recent runs caused too much damage")
		return &exitError{code: 1, msg: "safety score below proceed threshold"}
	}
	color.New(color.FgGreen).Println("verdict: ok to proceed")
	return nil
}
