// Package cmd implements the kevwatch command line interface.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kevwatch/kevwatch/catalog"
	"github.com/kevwatch/kevwatch/config"
	"github.com/kevwatch/kevwatch/database"
	"github.com/kevwatch/kevwatch/store"
	"github.com/kevwatch/kevwatch/watcher"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "kevwatch",
	Short: "Track the CISA Known Exploited Vulnerabilities catalog",
	Long: `kevwatch keeps a local database of the CISA Known Exploited
Vulnerabilities (KEV) catalog, detects newly added entries and pushes
alerts to configured webhooks.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		logger = InitLogger()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to YAML config file")
}

// InitLogger sets up the Zap Logger to log to the console in a human readable format
func InitLogger() *zap.Logger {
	prodConfig := zap.NewProductionConfig()
	prodConfig.Encoding = "console"
	prodConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	prodConfig.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	l, _ := prodConfig.Build()
	return l
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openStore connects to ArangoDB and wraps the connection in a Store.
func openStore(ctx context.Context) (store.Store, error) {
	conn, err := database.Connect(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}
	return store.NewArangoStore(conn, logger), nil
}

// newEngine wires the sync engine against the configured feed and store.
func newEngine(st store.Store) *watcher.Engine {
	fetcher := catalog.NewFetcher(cfg.FeedURL, cfg.FetchTimeout(), logger)
	return watcher.NewEngine(fetcher, st, cfg.SnapshotPath(), logger)
}
