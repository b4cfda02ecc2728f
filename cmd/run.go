package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/rebalance"
	"github.com/etnz/rebalance/renderer"
	"github.com/google/subcommands"
	"github.com/shopspring/decimal"
)

// runCmd holds the flags for the 'run' subcommand.
type runCmd struct {
	total    string
	minTrade string
	jsonOut  bool
}

func (*runCmd) Name() string     { return "run" }
func (*runCmd) Synopsis() string { return "compute target values for every asset of the portfolio" }
func (*runCmd) Usage() string {
	return `rebal run [-total <value>] [-min-trade <value>] [-json]

  Distributes the portfolio's total value over the allocation tree according
  to the configured weights, honoring buy/sell restrictions and the minimum
  trade volume. By default the total is the snapshot's market value.

Usage Examples:
# Rebalance the current holdings plus 10000 of fresh cash.
$ rebal -config portfolio.yaml -snapshot holdings.jsonl run -total 110000

`
}

func (c *runCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.total, "total", "", "Total value to distribute (defaults to the snapshot's market value)")
	f.StringVar(&c.minTrade, "min-trade", "", "Minimum trade volume (overrides the configuration)")
	f.BoolVar(&c.jsonOut, "json", false, "Print the resolved tree as JSON instead of a report")
}

func (c *runCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		return subcommands.ExitFailure
	}

	snap, err := DecodeSnapshot(cfg.Currency)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading snapshot: %v\n", err)
		return subcommands.ExitFailure
	}

	total := snap.TotalValue()
	if c.total != "" {
		if total, err = parseMoney(c.total, cfg.Currency); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing -total: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	minTrade, err := cfg.MinTrade()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	if c.minTrade != "" {
		if minTrade, err = parseMoney(c.minTrade, cfg.Currency); err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing -min-trade: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	p, err := rebalance.NewPortfolio(cfg, snap, total, minTrade)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building portfolio: %v\n", err)
		return subcommands.ExitFailure
	}

	if err := p.Rebalance(); err != nil {
		var rec *rebalance.ReconciliationError
		if errors.As(err, &rec) {
			// the tree is still worth showing: it carries the statuses
			// explaining where the debt comes from
			printMarkdown(renderer.PlanMarkdown(p))
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	if c.jsonOut {
		b, err := json.MarshalIndent(p, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding result: %v\n", err)
			return subcommands.ExitFailure
		}
		fmt.Println(string(b))
		return subcommands.ExitSuccess
	}

	printMarkdown(renderer.PlanMarkdown(p))
	return subcommands.ExitSuccess
}

// parseMoney parses a decimal value in the reporting currency.
func parseMoney(s, currency string) (rebalance.Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return rebalance.Money{}, fmt.Errorf("invalid value %q: %w", s, err)
	}
	return rebalance.M(d, currency), nil
}
