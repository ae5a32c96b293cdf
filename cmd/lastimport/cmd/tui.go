package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tormodhaugland/lastimport/internal/tui"
)

var tuiFile string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive last import screen",
	Long: `Opens the terminal screen for the most recent stock import.

Logs go to lastimport.log in the configured log directory so they do not
draw over the screen.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if err := os.MkdirAll(filepath.Dir(cfg.LogPath()), 0o755); err != nil {
			return fmt.Errorf("failed to create log dir: %w", err)
		}
		logFile, err := tea.LogToFile(cfg.LogPath(), "lastimport")
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer logFile.Close()

		logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug}))
		return tui.Run(cmd.Context(), cfg, newClient(cfg, tuiFile, logger), logger)
	},
}

func init() {
	tuiCmd.Flags().StringVar(&tuiFile, "file", "", "browse a snapshot exported with 'show --json' instead of the backend")
	rootCmd.AddCommand(tuiCmd)
}
