package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/digitaiam/wh-ledger/pkg/report"
	"github.com/digitaiam/wh-ledger/pkg/storage"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the report for a single (store, goods, batch) over [from, to)",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		p, err := period(cmd)
		if err != nil {
			return err
		}

		storeStr, _ := cmd.Flags().GetString("store")
		goodsStr, _ := cmd.Flags().GetString("goods")
		batchIDStr, _ := cmd.Flags().GetString("batch-id")
		batchDateStr, _ := cmd.Flags().GetString("batch-date")
		fromStr, _ := cmd.Flags().GetString("from")
		toStr, _ := cmd.Flags().GetString("to")

		store, err := parseUUID(storeStr)
		if err != nil {
			return fmt.Errorf("store: %w", err)
		}
		goods, err := parseUUID(goodsStr)
		if err != nil {
			return fmt.Errorf("goods: %w", err)
		}
		batch, err := parseBatch(batchSpec{ID: batchIDStr, Date: batchDateStr})
		if err != nil {
			return fmt.Errorf("batch: %w", err)
		}
		from, err := parseTime(fromStr)
		if err != nil {
			return fmt.Errorf("from: %w", err)
		}
		to, err := parseTime(toStr)
		if err != nil {
			return fmt.Errorf("to: %w", err)
		}

		ledger, err := storage.Open(dataDir, p)
		if err != nil {
			return fmt.Errorf("failed to open ledger: %w", err)
		}
		defer ledger.Close()

		line, err := ledger.GetReport(store, goods, batch, from, to)
		if err != nil {
			return err
		}
		printLine(line)
		return nil
	},
}

var reportStorageCmd = &cobra.Command{
	Use:   "report-storage",
	Short: "Print the report for every (goods, batch) in a store over [from, to)",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		p, err := period(cmd)
		if err != nil {
			return err
		}

		storeStr, _ := cmd.Flags().GetString("store")
		fromStr, _ := cmd.Flags().GetString("from")
		toStr, _ := cmd.Flags().GetString("to")

		store, err := parseUUID(storeStr)
		if err != nil {
			return fmt.Errorf("store: %w", err)
		}
		from, err := parseTime(fromStr)
		if err != nil {
			return fmt.Errorf("from: %w", err)
		}
		to, err := parseTime(toStr)
		if err != nil {
			return fmt.Errorf("to: %w", err)
		}

		ledger, err := storage.Open(dataDir, p)
		if err != nil {
			return fmt.Errorf("failed to open ledger: %w", err)
		}
		defer ledger.Close()

		lines, err := ledger.GetReportForStorage(store, from, to)
		if err != nil {
			return err
		}
		for _, line := range lines {
			printLine(line)
		}
		return nil
	},
}

var balanceCmd = &cobra.Command{
	Use:   "balance",
	Short: "Print the full store -> goods -> batch balance snapshot as of --at",
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		p, err := period(cmd)
		if err != nil {
			return err
		}
		atStr, _ := cmd.Flags().GetString("at")
		at, err := parseTime(atStr)
		if err != nil {
			return fmt.Errorf("at: %w", err)
		}

		ledger, err := storage.Open(dataDir, p)
		if err != nil {
			return fmt.Errorf("failed to open ledger: %w", err)
		}
		defer ledger.Close()

		balances, err := ledger.GetBalanceForAll(at)
		if err != nil {
			return err
		}
		for store, byGoods := range balances {
			for goods, byBatch := range byGoods {
				for batch, bal := range byBatch {
					fmt.Printf("store=%s goods=%s batch=%s/%s  qty=%v cost=%s\n",
						store, goods, batch.ID, batch.Date.Format("2006-01-02"),
						bal.Qty.Numbers, bal.Cost.Amount.String())
				}
			}
		}
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{reportCmd, reportStorageCmd} {
		cmd.Flags().String("store", "", "Store identifier")
		cmd.Flags().String("from", "", "Window start, RFC3339")
		cmd.Flags().String("to", "", "Window end, RFC3339")
	}
	reportCmd.Flags().String("goods", "", "Goods identifier")
	reportCmd.Flags().String("batch-id", "", "Batch identifier")
	reportCmd.Flags().String("batch-date", "", "Batch origin date, RFC3339")

	balanceCmd.Flags().String("at", "", "Instant to evaluate balances at, RFC3339")
}

func printLine(line report.Line) {
	fmt.Printf("store=%s goods=%s batch=%s/%s\n",
		line.Store, line.Goods, line.Batch.ID, line.Batch.Date.Format("2006-01-02"))
	fmt.Printf("  open:    qty=%v cost=%s\n", line.Open.Qty.Numbers, line.Open.Cost.Amount.String())
	fmt.Printf("  receive: qty=%v cost=%s\n", line.Receive.Qty.Numbers, line.Receive.Cost.Amount.String())
	fmt.Printf("  issue:   qty=%v cost=%s\n", line.Issue.Qty.Numbers, line.Issue.Cost.Amount.String())
	fmt.Printf("  close:   qty=%v cost=%s\n", line.Close.Qty.Numbers, line.Close.Cost.Amount.String())
}
