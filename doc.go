// Package rebalance computes target values for a hierarchical asset
// allocation: groups of asset classes containing sub-groups or individual
// holdings, each with a target weight relative to its parent.
//
// The core functionalities include:
//   - Restriction bounds: a bottom-up pass deriving the feasible min/max
//     value of every node from its buy/sell restrictions.
//   - Target allocation: a top-down pass distributing a total portfolio
//     value across the tree according to the expected weights, honoring the
//     bounds and a minimum tradable volume.
//   - Debt resolution: when restrictions prevent a subtree from shrinking to
//     its fair share, the unresolvable amount ("debt") is isolated and
//     propagated to the parent instead of being silently dropped.
//   - Configuration and snapshot loading: the allocation tree is described in
//     a YAML file with percentage weights, and bound to a portfolio snapshot
//     (symbol, quantity, price) in a single reporting currency.
//
// All monetary arithmetic is exact decimal; there is no floating-point
// tolerance anywhere in the engine. A rebalancing run either resolves the
// whole tree or fails with a typed error carrying the unresolved amount and
// the subtree it originated from.
//
// This package serves as the foundational logic for the `rebal` command-line
// tool.
package rebalance
