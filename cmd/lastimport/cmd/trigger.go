package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tormodhaugland/lastimport/internal/notify"
	"github.com/tormodhaugland/lastimport/internal/screen"
	"github.com/tormodhaugland/lastimport/internal/tui"
)

var (
	triggerYes  bool
	triggerWait bool

	// confirmImport asks before anything is sent; only --yes skips it.
	confirmImport = tui.Confirm

	errImportNotTriggered = errors.New("import was not triggered")
)

var triggerCmd = &cobra.Command{
	Use:   "trigger",
	Short: "Force a new import",
	Long: `Asks the backend to start a new stock import. The import runs in the
background; check back later with 'lastimport show'.

By default the acknowledgement is printed before the request is sent, as
the interactive screen does. Use --wait to print it only once the backend
accepted the request.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		mode, err := screen.ParseAckMode(cfg.Reimport.AckMode)
		if err != nil {
			return err
		}
		if triggerWait {
			mode = screen.AckConfirmed
		}

		out := cmd.OutOrStdout()
		if !triggerYes {
			decision, err := confirmImport(fmt.Sprintf("Start a new import on %s?", cfg.API.BaseURL))
			if err != nil {
				return err
			}
			if decision != tui.DecisionYes {
				fmt.Fprintln(out, "Cancelled.")
				return nil
			}
		}

		var failed bool
		sink := notify.SinkFunc(func(n notify.Notification) {
			if n.Level == notify.LevelError {
				failed = true
			}
			printNotification(out, cmd.ErrOrStderr(), n)
		})

		logger := newLogger(os.Stderr)
		trig := screen.NewReimportTrigger(newClient(cfg, "", logger), sink,
			screen.WithAckMode(mode),
			screen.WithLauncher(screen.SyncLauncher),
			screen.WithTriggerTimeout(cfg.API.Timeout.Duration),
			screen.WithTriggerLogger(logger),
		)
		if trig.Mode() == screen.AckConfirmed && !jsonOut {
			fmt.Fprintln(out, "Waiting for the backend...")
		}
		trig.Trigger(cmd.Context())

		if failed {
			return errImportNotTriggered
		}
		return nil
	},
}

func printNotification(out, errOut io.Writer, n notify.Notification) {
	if n.Level == notify.LevelError {
		out = errOut
	}
	if jsonOut {
		enc := json.NewEncoder(out)
		_ = enc.Encode(map[string]string{"level": n.Level.String(), "message": n.Message})
		return
	}
	fmt.Fprintln(out, n.Message)
}

func init() {
	triggerCmd.Flags().BoolVarP(&triggerYes, "yes", "y", false, "skip the confirmation prompt (--json does not skip it)")
	triggerCmd.Flags().BoolVar(&triggerWait, "wait", false, "acknowledge only after the backend accepted the request")
	rootCmd.AddCommand(triggerCmd)
}
