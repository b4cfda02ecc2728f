package rebalance

import "fmt"

// ConfigError reports an inconsistency in the allocation configuration:
// sibling weights not summing to 100%, or restriction bounds that contradict
// each other. It is detected eagerly, before any allocation pass runs.
type ConfigError struct {
	Node   string // full path of the offending node, "" for the portfolio itself
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Node == "" {
		return fmt.Sprintf("invalid allocation configuration: %s", e.Reason)
	}
	return fmt.Sprintf("invalid allocation configuration at %q: %s", e.Node, e.Reason)
}

// ReconciliationError reports an amount that no node in the tree can absorb:
// the restrictions make the requested total unreachable. The amount is the
// monetary value left unresolved, Node the subtree it originated from.
type ReconciliationError struct {
	Node   string
	Amount Money
}

func (e *ReconciliationError) Error() string {
	return fmt.Sprintf("cannot reconcile %q: %s cannot be absorbed by any asset", e.Node, e.Amount.Abs())
}
