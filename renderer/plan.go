// Package renderer turns resolved portfolios into markdown reports.
package renderer

import (
	"fmt"
	"strings"

	"github.com/etnz/rebalance"
)

// PlanMarkdown renders the resolved allocation tree to a markdown string:
// one row per node with its current value, target value and the trade the
// target implies.
func PlanMarkdown(p *rebalance.Portfolio) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Rebalancing %s\n\n", p.Name)
	fmt.Fprintf(&b, "Total value %s, minimum trade volume %s.\n\n", p.TotalValue, p.MinTradeVolume)

	fmt.Fprintln(&b, "| Asset | Weight | Current | Target | Trade | Status |")
	fmt.Fprintln(&b, "|:---|---:|---:|---:|---:|:---|")

	p.Walk(func(path string, n *rebalance.AssetNode) {
		name := indent(path, p.Name) + n.Name
		if n.IsLeaf() {
			if pos, ok := n.Asset.(rebalance.Position); ok && pos.Symbol != n.Name {
				name = fmt.Sprintf("%s (%s)", name, pos.Symbol)
			}
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %s |\n",
			name,
			n.Weight,
			n.CurrentValue,
			n.TargetValue,
			n.Trade().SignedString(),
			flags(n),
		)
	})

	fmt.Fprintf(&b, "| **Total** | | %s | %s | %s | |\n",
		p.CurrentValue(),
		p.TotalValue,
		p.TotalValue.Sub(p.CurrentValue()).SignedString(),
	)
	return b.String()
}

// indent returns a visual nesting prefix from the node's path depth.
func indent(path, root string) string {
	depth := strings.Count(strings.TrimPrefix(path, root+"/"), "/")
	return strings.Repeat("  ", depth)
}

func flags(n *rebalance.AssetNode) string {
	var parts []string
	if n.BuyBlocked {
		parts = append(parts, "buy blocked")
	}
	if n.SellBlocked {
		parts = append(parts, "sell blocked")
	}
	if n.Status != rebalance.StatusResolved {
		parts = append(parts, string(n.Status))
	}
	return strings.Join(parts, ", ")
}
