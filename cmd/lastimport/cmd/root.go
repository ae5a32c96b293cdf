package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"github.com/tormodhaugland/lastimport/internal/client"
	"github.com/tormodhaugland/lastimport/internal/config"
)

var (
	cfgFile string
	jsonOut bool
	noColor bool
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "lastimport",
	Short: "Inspect the most recent stock import",
	Long: `lastimport shows the most recent stock import: when it ran, the errors it
reported and the indicators captured for every stock. It can also ask the
backend to start a new import.

Running 'lastimport' without arguments launches the TUI.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			lipgloss.SetDefaultRenderer(lipgloss.NewRenderer(os.Stdout, termenv.WithProfile(termenv.Ascii)))
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		// Default behavior: launch TUI
		return tuiCmd.RunE(cmd, args)
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/lastimport/config.json)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log requests to stderr")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return cfg, nil
}

// newLogger writes text logs to w. Only warnings and errors are shown
// unless --verbose is set.
func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// newClient returns the snapshot source: the exported file when path is
// set, otherwise the configured backend.
func newClient(cfg *config.Config, path string, logger *slog.Logger) client.SnapshotClient {
	if path != "" {
		return client.FileClient{Path: path}
	}
	return client.NewHTTPClient(
		client.WithBaseURL(cfg.API.BaseURL),
		client.WithTimeout(cfg.API.Timeout.Duration),
		client.WithLogger(logger),
	)
}

func exitWithError(msg string, code int) {
	fmt.Fprintln(os.Stderr, msg)
	os.Exit(code)
}
