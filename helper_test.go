package rebalance

// USD is a helper for test to create usd money from const
func USD(v float64) Money { return M(v, "USD") }

// pct is a helper for test to create a weight from a percentage const
func pct(v float64) Weight { return W(v / 100) }

// stock builds a leaf node holding one unit of a stock priced at its
// current value.
func stock(name string, weight Weight, current float64) *AssetNode {
	return NewPosition(name, weight, Position{Symbol: name, Quantity: Q(1), Price: USD(current)})
}

// restricted builds a stock leaf with explicit restriction flags.
func restricted(name string, weight Weight, current float64, noBuy, noSell bool) *AssetNode {
	n := stock(name, weight, current)
	n.RestrictBuying = noBuy
	n.RestrictSelling = noSell
	return n
}

// portfolio builds a single-currency rebalancing request over the nodes.
func portfolio(total, minTrade float64, nodes ...*AssetNode) *Portfolio {
	return &Portfolio{
		Name:           "test",
		Currency:       "USD",
		Assets:         nodes,
		TotalValue:     USD(total),
		MinTradeVolume: USD(minTrade),
	}
}
