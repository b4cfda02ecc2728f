package rebalance

// resolveDebt shrinks the total value of the nodes to the given budget when
// some of them cannot sell down to their fair share, either because selling
// is restricted or because the sellable difference is below the minimum
// trade volume.
//
// It iterates to a fixed point over a partition of the nodes into
// correctable and uncorrectable: every pass recomputes each correctable
// node's fair share of the budget left by the uncorrectable ones, with
// weights renormalized accordingly. Nodes that cannot take their share are
// pinned and moved out of the correctable set: to their current value when
// they cannot sell, with the shortfall accumulating as debt, or to their max
// bound when they cannot buy, releasing the excess for the next pass to
// re-split over the others. A pass that changes nothing escalates to forced
// selling, which sells a position down to its current value minus the
// minimum trade volume even when the fair difference alone is too small to
// trade.
//
// The returned amount is the debt nobody in the subtree could absorb; zero
// means the budget was honored exactly.
func resolveDebt(path string, nodes []*AssetNode, budget, minTradeVolume Money) Money {
	if len(nodes) == 0 {
		return Money{}
	}

	correctable := make([]bool, len(nodes))
	for i := range correctable {
		correctable[i] = true
	}
	remaining := len(nodes)
	forceSelling := false

	// Each pass either converges, permanently shrinks the correctable set,
	// or escalates to forced selling.
	maxPasses := countNodes(nodes) + 4

	var debt Money
	for pass := 0; pass < maxPasses; pass++ {
		var uncorrectableWeight Weight
		var uncorrectableValue Money
		for i, n := range nodes {
			if !correctable[i] {
				uncorrectableWeight = uncorrectableWeight.Add(n.Weight)
				uncorrectableValue = uncorrectableValue.Add(n.TargetValue)
			}
		}

		correctableTotal := budget.Sub(uncorrectableValue)
		divider := One().Sub(uncorrectableWeight)
		debt = Money{}
		switch {
		case correctableTotal.IsNegative():
			debt = correctableTotal.Neg()
			correctableTotal = M(0, budget.Currency())
		case divider.IsZero() && !correctableTotal.IsZero():
			// Only zero-weight nodes are left; nothing can take the rest.
			debt = correctableTotal
			correctableTotal = M(0, budget.Currency())
		}

		shares := fairShares(nodes, correctable, correctableTotal, divider)

		changed := false
		pinned := false
		for i, n := range nodes {
			if !correctable[i] {
				continue
			}
			prev := n.TargetValue
			n.TargetValue = shares[i]
			n.Status = StatusCorrectable

			if n.MaxValue != nil && n.TargetValue.GreaterThan(*n.MaxValue) {
				// Pinned at the bound; the next pass re-splits the excess
				// over the nodes still correctable.
				n.TargetValue = *n.MaxValue
				n.BuyBlocked = true
				correctable[i] = false
				remaining--
				pinned = true
				n.Status = StatusUncorrectable
				if g, ok := n.Asset.(Group); ok {
					if d := resolveDebt(join(path, n.Name), g.Children, n.TargetValue, minTradeVolume); !d.IsZero() {
						n.TargetValue = n.TargetValue.Add(d)
						debt = debt.Add(d)
					}
				}
				changed = changed || !n.TargetValue.Equal(prev)
				continue
			}

			switch a := n.Asset.(type) {
			case Group:
				if d := resolveDebt(join(path, n.Name), a.Children, n.TargetValue, minTradeVolume); !d.IsZero() {
					correctable[i] = false
					remaining--
					pinned = true
					n.Status = StatusUncorrectable
					n.TargetValue = n.TargetValue.Add(d)
					debt = debt.Add(d)
				}
			case Position:
				if !n.CurrentValue.GreaterThan(n.TargetValue) {
					break
				}
				sellable := n.CurrentValue.Sub(n.TargetValue)
				switch {
				case n.RestrictSelling || n.CurrentValue.LessThan(minTradeVolume):
					// Pinned for good: selling is restricted, or the whole
					// position is below the tradable volume.
					n.TargetValue = n.CurrentValue
					n.SellBlocked = true
					debt = debt.Add(sellable)
					correctable[i] = false
					remaining--
					pinned = true
					n.Status = StatusUncorrectable
				case sellable.LessThan(minTradeVolume):
					if forceSelling {
						// A full minimum-volume sale, pinned so the next
						// pass re-invests the overshoot.
						n.TargetValue = n.CurrentValue.Sub(minTradeVolume)
						correctable[i] = false
						remaining--
						pinned = true
						n.Status = StatusUncorrectable
					} else {
						// Too small to trade; keep it around for a later
						// forced pass.
						n.TargetValue = n.CurrentValue
						debt = debt.Add(sellable)
					}
				}
			}
			changed = changed || !n.TargetValue.Equal(prev)
		}

		if pinned {
			// The released or recovered value changes every remaining
			// share; account for it before concluding anything.
			continue
		}
		if debt.IsZero() {
			return Money{}
		}
		if remaining == 0 {
			return debt
		}
		if !changed {
			if forceSelling {
				// A forced pass with no progress cannot recover more.
				return debt
			}
			forceSelling = true
		}
	}
	return debt
}

// fairShares splits the correctable total over the correctable nodes in
// proportion to their renormalized weights. The node with the largest weight
// takes the division remainder, so the shares always sum to the total
// exactly.
func fairShares(nodes []*AssetNode, correctable []bool, correctableTotal Money, divider Weight) []Money {
	shares := make([]Money, len(nodes))
	largest := -1
	for i, n := range nodes {
		if !correctable[i] {
			continue
		}
		shares[i] = M(0, correctableTotal.Currency())
		if largest < 0 || nodes[largest].Weight.LessThan(n.Weight) {
			largest = i
		}
	}
	if largest < 0 || divider.IsZero() {
		return shares
	}
	rest := correctableTotal
	for i, n := range nodes {
		if !correctable[i] || i == largest {
			continue
		}
		shares[i] = correctableTotal.MulWeight(n.Weight).DivWeight(divider)
		rest = rest.Sub(shares[i])
	}
	shares[largest] = rest
	return shares
}
