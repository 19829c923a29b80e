package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tsmend/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "tsmend",
	Short: "Safety-first TypeScript any mender",
	Long:  `tsmend rewrites explicit any annotations into safer types, validating every substitution and learning safe batch sizes from run history`,
}

// exitError carries a process exit code through cobra. Code 1 is a
// fatal or unsafe-precondition failure, code 2 a partial one.
type exitError struct {
	code int
	msg  string
}

func (e *exitError) Error() string { return e.msg }

func main() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Version
	rootCmd.SilenceUsage = true

	// Добавляем команды
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(metricsCmd)
	rootCmd.AddCommand(safetyCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		var ee *exitError
		if errors.As(err, &ee) {
			os.Exit(ee.code)
		}
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func applyColorMode(cmd *cobra.Command) error {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return err
	}
	switch strings.TrimSpace(strings.ToLower(mode)) {
	case "", "auto":
		// fatih/color auto-detects
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	default:
		return fmt.Errorf("invalid --color value %q (expected auto|on|off)", mode)
	}
	return nil
}

func beQuiet(cmd *cobra.Command) bool {
	// --silent объявляется per-command и эквивалентен --quiet
	if silent, err := cmd.Flags().GetBool("silent"); err == nil && silent {
		return true
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	return err == nil && quiet
}
