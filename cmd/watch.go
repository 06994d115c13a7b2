package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kevwatch/kevwatch/notify"
	"github.com/kevwatch/kevwatch/watcher"
)

var watchInterval int

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run the KEV watcher daemon",
	Long: `Runs the sync cycle on a fixed interval and pushes alerts for newly
added KEVs to the configured webhooks. Stops cleanly on SIGINT/SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, err := openStore(ctx)
		if err != nil {
			return err
		}

		if !cmd.Flags().Changed("interval") {
			watchInterval = cfg.WatchIntervalSec
		}

		engine := newEngine(st)
		notifier := notify.NewNotifier(cfg.FetchTimeout(), logger)
		daemon := watcher.NewDaemon(engine, notifier, cfg.WebhookFile,
			time.Duration(watchInterval)*time.Second, logger)

		daemon.Run(ctx)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().IntVar(&watchInterval, "interval", 3600, "Seconds between sync cycles")
}
