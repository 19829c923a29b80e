package main

import (
	"fmt"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"tsmend/internal/gitsnap"
)

var statusCmd = &cobra.Command{
	Use:   "status [project-root]",
	Short: "Check that the working tree is clean enough for a run",
	Long:  "Run the same git cleanliness gate a mutating run applies. Exits 1 when the tree has uncommitted changes.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
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

	clean, err := gitsnap.Clean(cmd.Context(), root)
	if err != nil {
		return fmt.Errorf("git status check: %w", err)
	}
	if !clean {
		color.New(color.FgRed).Println("working tree is dirty; commit or stash before running")
		return &exitError{code: 1, msg: "working tree has uncommitted changes"}
	}
	color.New(color.FgGreen).Println("working tree is clean")
	return nil
}
