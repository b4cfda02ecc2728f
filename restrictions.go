package rebalance

// calculateRestrictions computes the feasible [min, max] value bounds of
// every node, bottom-up, from its buy/sell restrictions and writes them onto
// the nodes. It returns the aggregated bounds of the whole forest; a nil max
// means unbounded.
//
// A sell-restricted leaf cannot go below its current value, a buy-restricted
// leaf cannot go above it. A group is bounded by the sum of its children's
// bounds, and only has a max when every child has one.
func calculateRestrictions(nodes []*AssetNode) (Money, *Money) {
	var totalMin, totalMax Money
	allWithMax := true

	for _, n := range nodes {
		var min Money
		var max *Money

		switch a := n.Asset.(type) {
		case Group:
			min, max = calculateRestrictions(a.Children)
		case Position:
			if n.RestrictSelling {
				min = n.CurrentValue
			}
			if n.RestrictBuying {
				current := n.CurrentValue
				max = &current
			}
		}

		n.MinValue = min
		n.MaxValue = max

		totalMin = totalMin.Add(min)
		if max != nil {
			totalMax = totalMax.Add(*max)
		} else {
			allWithMax = false
		}
	}

	if !allWithMax {
		return totalMin, nil
	}
	return totalMin, &totalMax
}
