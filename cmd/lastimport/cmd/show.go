package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tormodhaugland/lastimport/internal/client"
	"github.com/tormodhaugland/lastimport/internal/report"
	"github.com/tormodhaugland/lastimport/internal/screen"
)

var (
	showPage       int
	showPageSize   int
	showFile       string
	showIndicators bool
	showStock      string
)

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the last import",
	Long: `Fetches the most recent import once and prints one page of its stocks.

With --json the whole snapshot is printed as JSON; the output can be read
back with --file.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if showPage < 1 {
			return fmt.Errorf("invalid page %d: pages start at 1", showPage)
		}

		logger := newLogger(os.Stderr)
		policy := screen.RetryPolicy{
			MaxRetries:      cfg.Fetch.MaxRetries,
			InitialInterval: cfg.Fetch.InitialInterval.Duration,
			MaxInterval:     cfg.Fetch.MaxInterval.Duration,
		}

		store := screen.NewSnapshotStore()
		snap, err := store.Load(cmd.Context(), newClient(cfg, showFile, logger), policy, logger)
		if err != nil {
			if errors.Is(err, client.ErrNotFound) {
				exitWithError("No import has run yet.", 2)
			}
			return fmt.Errorf("failed to fetch the last import: %w", err)
		}

		if jsonOut {
			return report.RenderJSON(os.Stdout, snap)
		}

		opts := report.Options{
			Color:      !noColor,
			Indicators: showIndicators,
		}

		if showStock != "" {
			st, ok := snap.FindStock(showStock)
			if !ok {
				return fmt.Errorf("stock not found in the last import: %s", showStock)
			}
			return report.RenderStock(os.Stdout, st, opts)
		}

		pager := screen.NewPager(cfg.Table.PageSize)
		if cmd.Flags().Changed("page-size") {
			pager.SetPageSize(showPageSize)
		}
		pager.SetSource(snap.Stocks)
		pager.SetPage(showPage - 1)

		return report.Render(os.Stdout, snap, pager.Rows(), report.PageInfo{
			Page:       pager.CurrentPage(),
			TotalPages: pager.TotalPages(),
			TotalRows:  pager.Len(),
		}, opts)
	},
}

func init() {
	showCmd.Flags().IntVarP(&showPage, "page", "p", 1, "page to print (1-based)")
	showCmd.Flags().IntVar(&showPageSize, "page-size", 0, "stocks per page (default from config)")
	showCmd.Flags().StringVar(&showFile, "file", "", "read a snapshot exported with --json instead of the backend")
	showCmd.Flags().BoolVarP(&showIndicators, "indicators", "i", false, "add a column per indicator")
	showCmd.Flags().StringVarP(&showStock, "stock", "s", "", "print every indicator of one stock")
	rootCmd.AddCommand(showCmd)
}
