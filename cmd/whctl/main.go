// Command whctl is a thin driver over pkg/storage: apply a batch of
// OpMutations from a file, print a report, or serve the metrics/health
// endpoints. It carries no business logic of its own — every subcommand
// marshals flags/file input into the core's own types and calls straight
// into pkg/storage.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/digitaiam/wh-ledger/pkg/config"
	"github.com/digitaiam/wh-ledger/pkg/log"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "whctl",
	Short:   "whctl - operate a wh-ledger inventory store",
	Version: Version,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"whctl version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	rootCmd.PersistentFlags().String("data-dir", "./data", "Ledger data directory")
	rootCmd.PersistentFlags().String("checkpoint-period", "monthly", "Checkpoint period: daily, weekly, monthly")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("log-json", false, "Output logs in JSON format")

	cobra.OnInitialize(initLogging)

	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(reportStorageCmd)
	rootCmd.AddCommand(balanceCmd)
	rootCmd.AddCommand(serveCmd)
}

func initLogging() {
	logLevel, _ := rootCmd.PersistentFlags().GetString("log-level")
	logJSON, _ := rootCmd.PersistentFlags().GetBool("log-json")

	log.Init(log.Config{
		Level:      log.Level(logLevel),
		JSONOutput: logJSON,
	})
}

func period(cmd *cobra.Command) (config.Period, error) {
	raw, _ := cmd.Flags().GetString("checkpoint-period")
	p := config.Period(raw)
	if !p.Valid() {
		return "", fmt.Errorf("invalid checkpoint-period %q (want daily, weekly or monthly)", raw)
	}
	return p, nil
}
