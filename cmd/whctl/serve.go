package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/digitaiam/wh-ledger/pkg/log"
	"github.com/digitaiam/wh-ledger/pkg/metrics"
	"github.com/digitaiam/wh-ledger/pkg/storage"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Open the ledger and serve /metrics, /health, /ready, /live",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		addr, _ := cmd.Flags().GetString("metrics-addr")
		p, err := period(cmd)
		if err != nil {
			return err
		}

		ledger, err := storage.Open(dataDir, p)
		if err != nil {
			return fmt.Errorf("failed to open ledger: %w", err)
		}
		defer ledger.Close()

		collector := metrics.NewCollector(dataDir + "/ledger.db")
		collector.Start()
		defer collector.Stop()

		metrics.SetVersion(Version)
		metrics.RegisterComponent("ledger", true, "open")

		errCh := make(chan error, 1)
		go func() {
			http.Handle("/metrics", metrics.Handler())
			http.Handle("/health", metrics.HealthHandler())
			http.Handle("/ready", metrics.ReadyHandler())
			http.Handle("/live", metrics.LivenessHandler())
			if err := http.ListenAndServe(addr, nil); err != nil {
				errCh <- fmt.Errorf("metrics server error: %w", err)
			}
		}()

		log.WithComponent("serve").Info().Str("addr", addr).Msg("metrics server listening")
		fmt.Printf("listening on http://%s (/metrics, /health, /ready, /live)\n", addr)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case <-sigCh:
			fmt.Println("\nshutting down...")
		case err := <-errCh:
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("metrics-addr", "127.0.0.1:9090", "Address to serve /metrics and health endpoints on")
}
