package main

import (
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/digitaiam/wh-ledger/pkg/log"
	"github.com/digitaiam/wh-ledger/pkg/storage"
	"github.com/digitaiam/wh-ledger/pkg/types"
)

// mutationFile is the on-disk (YAML or JSON; yaml.v3 parses both) shape of
// a batch of OpMutations. Identifiers, dates and amounts are plain strings
// so the file stays human-writable; parseMutation turns it into the core's
// own types.
type mutationFile struct {
	Mutations []mutationSpec `yaml:"mutations"`
}

type mutationSpec struct {
	ID            string    `yaml:"id"`
	Date          string    `yaml:"date"`
	Store         string    `yaml:"store"`
	TransferStore string    `yaml:"transferStore"`
	Goods         string    `yaml:"goods"`
	Batch         batchSpec `yaml:"batch"`
	Before        *opSpec   `yaml:"before"`
	After         *opSpec   `yaml:"after"`
	IsDependent   bool      `yaml:"isDependent"`
}

type batchSpec struct {
	ID   string `yaml:"id"`
	Date string `yaml:"date"`
}

type opSpec struct {
	Kind string       `yaml:"kind"` // receive, issue, transfer_issue, transfer_receive
	Qty  []numberSpec `yaml:"qty"`
	Cost string       `yaml:"cost"`
	Mode string       `yaml:"mode"` // manual, auto (issue only)
}

type numberSpec struct {
	Qty   string      `yaml:"qty"`
	Uom   string      `yaml:"uom"`
	Inner *numberSpec `yaml:"inner"`
}

var applyCmd = &cobra.Command{
	Use:   "apply FILE",
	Short: "Apply a batch of OpMutations from a YAML or JSON file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dataDir, _ := cmd.Flags().GetString("data-dir")
		p, err := period(cmd)
		if err != nil {
			return err
		}

		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read mutation file: %w", err)
		}

		var file mutationFile
		if err := yaml.Unmarshal(raw, &file); err != nil {
			return fmt.Errorf("failed to parse mutation file: %w", err)
		}

		mutations := make([]types.OpMutation, 0, len(file.Mutations))
		for i, m := range file.Mutations {
			parsed, err := parseMutation(m)
			if err != nil {
				return fmt.Errorf("mutation %d: %w", i, err)
			}
			mutations = append(mutations, parsed)
		}

		ledger, err := storage.Open(dataDir, p)
		if err != nil {
			return fmt.Errorf("failed to open ledger: %w", err)
		}
		defer ledger.Close()

		if err := ledger.Mutate(mutations); err != nil {
			return fmt.Errorf("mutate failed: %w", err)
		}

		log.WithComponent("apply").Info().Int("count", len(mutations)).Msg("mutations applied")
		fmt.Printf("applied %d mutation(s)\n", len(mutations))
		return nil
	},
}

func parseMutation(m mutationSpec) (types.OpMutation, error) {
	id, err := parseUUID(m.ID)
	if err != nil {
		return types.OpMutation{}, fmt.Errorf("id: %w", err)
	}
	date, err := parseTime(m.Date)
	if err != nil {
		return types.OpMutation{}, fmt.Errorf("date: %w", err)
	}
	store, err := parseUUID(m.Store)
	if err != nil {
		return types.OpMutation{}, fmt.Errorf("store: %w", err)
	}
	goods, err := parseUUID(m.Goods)
	if err != nil {
		return types.OpMutation{}, fmt.Errorf("goods: %w", err)
	}
	batch, err := parseBatch(m.Batch)
	if err != nil {
		return types.OpMutation{}, fmt.Errorf("batch: %w", err)
	}

	var transferStore *types.StoreID
	if m.TransferStore != "" {
		ts, err := parseUUID(m.TransferStore)
		if err != nil {
			return types.OpMutation{}, fmt.Errorf("transferStore: %w", err)
		}
		transferStore = &ts
	}

	before, err := parseOp(m.Before)
	if err != nil {
		return types.OpMutation{}, fmt.Errorf("before: %w", err)
	}
	after, err := parseOp(m.After)
	if err != nil {
		return types.OpMutation{}, fmt.Errorf("after: %w", err)
	}

	return types.OpMutation{
		ID: id, Date: date, Store: store, TransferStore: transferStore,
		Goods: goods, Batch: batch, Before: before, After: after, IsDependent: m.IsDependent,
	}, nil
}

func parseBatch(b batchSpec) (types.Batch, error) {
	if b.ID == "" {
		return types.NoBatch(), nil
	}
	id, err := parseUUID(b.ID)
	if err != nil {
		return types.Batch{}, err
	}
	date, err := parseTime(b.Date)
	if err != nil {
		return types.Batch{}, err
	}
	return types.Batch{ID: id, Date: date}, nil
}

func parseOp(s *opSpec) (*types.InternalOperation, error) {
	if s == nil {
		return nil, nil
	}
	qty, err := parseQty(s.Qty)
	if err != nil {
		return nil, fmt.Errorf("qty: %w", err)
	}
	cost, err := parseCost(s.Cost)
	if err != nil {
		return nil, fmt.Errorf("cost: %w", err)
	}

	var op types.InternalOperation
	switch s.Kind {
	case "receive":
		op = types.Receive(qty, cost)
	case "issue":
		mode := types.ModeManual
		if s.Mode == "auto" {
			mode = types.ModeAuto
		}
		op = types.Issue(qty, cost, mode)
	case "transfer_issue":
		op = types.TransferIssue(qty, cost)
	case "transfer_receive":
		op = types.TransferReceive(qty, cost)
	default:
		return nil, fmt.Errorf("unknown operation kind %q", s.Kind)
	}
	return &op, nil
}

func parseQty(numbers []numberSpec) (types.Qty, error) {
	leaves := make([]types.Number, 0, len(numbers))
	for _, n := range numbers {
		leaf, err := parseNumber(n)
		if err != nil {
			return types.Qty{}, err
		}
		leaves = append(leaves, leaf)
	}
	return types.NewQty(leaves), nil
}

func parseNumber(n numberSpec) (types.Number, error) {
	mag, err := decimal.NewFromString(n.Qty)
	if err != nil {
		return types.Number{}, fmt.Errorf("magnitude %q: %w", n.Qty, err)
	}
	uom, err := parseUUID(n.Uom)
	if err != nil {
		return types.Number{}, fmt.Errorf("uom: %w", err)
	}
	var inner *types.Number
	if n.Inner != nil {
		i, err := parseNumber(*n.Inner)
		if err != nil {
			return types.Number{}, err
		}
		inner = &i
	}
	return types.NewNumber(mag, uom, inner), nil
}

func parseCost(s string) (types.Cost, error) {
	if s == "" {
		return types.ZeroCost(), nil
	}
	amount, err := decimal.NewFromString(s)
	if err != nil {
		return types.Cost{}, fmt.Errorf("cost %q: %w", s, err)
	}
	return types.NewCost(amount), nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return types.UUIDNil, nil
	}
	return uuid.Parse(s)
}

func parseTime(s string) (time.Time, error) {
	if s == "" {
		return types.Epoch, nil
	}
	return time.Parse(time.RFC3339, s)
}
