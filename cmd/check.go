package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/subcommands"
)

// checkCmd holds the flags for the 'check' subcommand.
type checkCmd struct{}

func (*checkCmd) Name() string     { return "check" }
func (*checkCmd) Synopsis() string { return "validate the allocation configuration" }
func (*checkCmd) Usage() string {
	return `rebal check

  Validates the allocation configuration file: weights must parse as
  percentages and sum to 100% on every level of the tree, and every symbol
  may only be allocated once.

`
}

func (*checkCmd) SetFlags(_ *flag.FlagSet) {}

func (c *checkCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}

	symbols := cfg.Symbols()
	fmt.Printf("Configuration %q is valid: %d symbols allocated.\n", *configFile, len(symbols))
	if len(symbols) > 0 {
		fmt.Printf("Symbols: %s\n", strings.Join(symbols, ", "))
	}
	return subcommands.ExitSuccess
}
