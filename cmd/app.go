// Package cmd implements the CLI application to rebalance a portfolio.
package cmd

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/rebalance"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&runCmd{}, "rebalancing")
	c.Register(&checkCmd{}, "rebalancing")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "portfolio.yaml", "Path to the allocation configuration file (YAML)")
var snapshotFile = flag.String("snapshot", "holdings.jsonl", "Path to the holdings snapshot file (JSONL format)")

// LoadConfig reads the allocation configuration from the app config path.
func LoadConfig() (*rebalance.Config, error) {
	return rebalance.LoadConfig(*configFile)
}

// DecodeSnapshot reads the holdings snapshot from the app snapshot path.
// A missing file yields an empty snapshot.
func DecodeSnapshot(currency string) (*rebalance.Snapshot, error) {
	f, err := os.Open(*snapshotFile)
	if os.IsNotExist(err) {
		log.Println("warning, snapshot does not exist, using an empty portfolio instead")
		return rebalance.NewSnapshot(currency), nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return rebalance.DecodeSnapshot(f)
}

// printMarkdown renders a markdown report to the terminal.
func printMarkdown(md string) {
	out, err := glamour.Render(md, "auto")
	if err != nil {
		// fall back to the raw markdown
		fmt.Println(md)
		return
	}
	fmt.Print(out)
}
