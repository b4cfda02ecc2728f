package rebalance

import "fmt"

// Portfolio is one rebalancing request: the allocation tree, the total value
// to distribute over it, and the minimum tradable volume, all in a single
// reporting currency. The tree is exclusively owned by the caller for the
// duration of the run.
type Portfolio struct {
	Name           string
	Currency       string
	Assets         []*AssetNode
	TotalValue     Money
	MinTradeVolume Money
}

// NewPortfolio builds a rebalancing request from an allocation configuration
// and a holdings snapshot. Leaf nodes are bound to snapshot positions by
// symbol; symbols absent from the snapshot start as empty positions.
func NewPortfolio(cfg *Config, snap *Snapshot, total, minTradeVolume Money) (*Portfolio, error) {
	assets, err := cfg.tree(snap)
	if err != nil {
		return nil, err
	}
	return &Portfolio{
		Name:           cfg.Name,
		Currency:       cfg.Currency,
		Assets:         assets,
		TotalValue:     total,
		MinTradeVolume: minTradeVolume,
	}, nil
}

// CurrentValue returns the market value of the whole tree.
func (p *Portfolio) CurrentValue() Money {
	var total Money
	for _, n := range p.Assets {
		total = total.Add(n.CurrentValue)
	}
	return total
}

// Walk visits every node of the tree depth-first, parents before children,
// passing the full slash-separated path of each node.
func (p *Portfolio) Walk(fn func(path string, n *AssetNode)) {
	walk(p.Name, p.Assets, fn)
}

// Rebalance computes a target value for every node of the tree such that the
// total value is redistributed as closely as possible to the expected
// weights, within the restriction bounds and the minimum trade volume.
//
// It fails with a *ConfigError when the tree is inconsistent, and with a
// *ReconciliationError when the restrictions leave an amount that no node
// can absorb. The tree is mutated in place either way; on success every node
// carries a terminal status.
func (p *Portfolio) Rebalance() error {
	aggregateCurrentValues(p.Assets)
	calculateRestrictions(p.Assets)
	if err := validateNodes(p.Name, p.Assets); err != nil {
		return err
	}

	residuals := allocateTargets(p.Name, p.Assets, p.TotalValue, p.MinTradeVolume)

	mustShrink := false
	for _, r := range residuals {
		if r.amount.IsNegative() {
			mustShrink = true
			break
		}
	}
	if mustShrink {
		// Some subtree holds more than the restrictions let it sell down.
		// Re-run the distribution through the debt resolver.
		if debt := resolveDebt(p.Name, p.Assets, p.TotalValue, p.MinTradeVolume); !debt.IsZero() {
			return &ReconciliationError{Node: p.Name, Amount: debt}
		}
	} else if len(residuals) > 0 {
		r := residuals[0]
		return &ReconciliationError{Node: r.path, Amount: r.amount}
	}

	finalize(p.Assets)
	return nil
}

// aggregateCurrentValues sums leaf market values into their parent groups,
// bottom-up.
func aggregateCurrentValues(nodes []*AssetNode) Money {
	var total Money
	for _, n := range nodes {
		if g, ok := n.Asset.(Group); ok {
			n.CurrentValue = aggregateCurrentValues(g.Children)
		}
		total = total.Add(n.CurrentValue)
	}
	return total
}

// validateNodes checks the tree invariants that must hold before any
// allocation pass: sibling weights summing to one and consistent restriction
// bounds.
func validateNodes(path string, nodes []*AssetNode) error {
	if len(nodes) == 0 {
		return nil
	}
	var sum Weight
	for _, n := range nodes {
		if n.Weight.IsNegative() {
			return &ConfigError{Node: join(path, n.Name), Reason: "negative weight"}
		}
		sum = sum.Add(n.Weight)
	}
	if !sum.Equal(One()) {
		return &ConfigError{Node: path, Reason: fmt.Sprintf("asset weights sum to %s instead of 100%%", sum)}
	}
	for _, n := range nodes {
		nodePath := join(path, n.Name)
		if n.MaxValue != nil && n.MaxValue.LessThan(n.MinValue) {
			return &ConfigError{Node: nodePath, Reason: fmt.Sprintf(
				"min value %s exceeds max value %s", n.MinValue, *n.MaxValue)}
		}
		if g, ok := n.Asset.(Group); ok {
			if err := validateNodes(nodePath, g.Children); err != nil {
				return err
			}
		}
	}
	return nil
}

// finalize moves every node that the run did not pin to its terminal
// resolved state.
func finalize(nodes []*AssetNode) {
	walk("", nodes, func(_ string, n *AssetNode) {
		if n.Status != StatusUncorrectable {
			n.Status = StatusResolved
		}
	})
}

// MarshalJSON implements the json.Marshaler interface for Portfolio.
func (p *Portfolio) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("name", p.Name)
	w.Optional("currency", p.Currency)
	w.Append("totalValue", p.TotalValue)
	w.Append("minTradeVolume", p.MinTradeVolume)
	w.Append("assets", p.Assets)
	return w.MarshalJSON()
}
