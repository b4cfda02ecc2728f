package rebalance

import "sort"

// residual is an amount that a subtree could not place anywhere: its
// children's targets do not add up to the subtree's own target by this
// amount. Residuals are reported upward, never dropped.
type residual struct {
	path   string
	amount Money
}

// allocateTargets distributes targetTotal over the nodes according to their
// expected weights, honoring the bounds computed by the restriction pass and
// the minimum trade volume, then recurses into each group with its resolved
// target as the new budget.
//
// The passes run in a fixed order: proportional targets, max clamp, min
// clamp, dust suppression, redistribution of the running balance, spillover,
// recursion. The returned residuals carry whatever balance the bounds made
// impossible to place.
func allocateTargets(path string, nodes []*AssetNode, targetTotal, minTradeVolume Money) []residual {
	for _, n := range nodes {
		n.TargetValue = targetTotal.MulWeight(n.Weight)
		n.BuyBlocked, n.SellBlocked = false, false
		n.Status = StatusPending
	}

	var balance Money

	// Clamp the assets with a max value limit first to release the excess.
	for _, n := range nodes {
		if n.MaxValue == nil {
			continue
		}
		if n.TargetValue.GreaterThan(*n.MaxValue) {
			balance = balance.Add(n.TargetValue.Sub(*n.MaxValue))
			n.TargetValue = *n.MaxValue
			n.BuyBlocked = true
			n.Status = StatusBuyBlocked
		}
	}

	// Then clamp the assets below their min value. The balance may go
	// negative here.
	for _, n := range nodes {
		if n.TargetValue.LessThan(n.MinValue) {
			balance = balance.Add(n.TargetValue.Sub(n.MinValue))
			n.TargetValue = n.MinValue
			n.SellBlocked = true
			n.Status = StatusSellBlocked
		}
	}

	// Suppress adjustments too small to trade.
	for _, n := range nodes {
		if n.Status != StatusPending {
			continue
		}
		diff := n.Trade()
		if !diff.IsZero() && diff.Abs().LessThan(minTradeVolume) {
			n.TargetValue = n.CurrentValue
			n.Status = StatusDust
			balance = balance.Add(diff)
		}
	}

	if !balance.IsZero() {
		balance = redistribute(nodes, balance, minTradeVolume)
	}
	if !balance.IsZero() {
		balance = spillover(nodes, balance)
	}

	var residuals []residual
	if !balance.IsZero() {
		residuals = append(residuals, residual{path: path, amount: balance})
	}

	for _, n := range nodes {
		if g, ok := n.Asset.(Group); ok {
			residuals = append(residuals,
				allocateTargets(join(path, n.Name), g.Children, n.TargetValue, minTradeVolume)...)
		}
	}
	return residuals
}

// redistribute applies the running balance to the children that are neither
// blocked nor dust-suppressed, smallest pending adjustment first to keep the
// number of forced trades low. Every applied adjustment stays tradable:
// a node's difference to current remains zero, a full sell, or at least the
// minimum trade volume. Returns the balance left.
func redistribute(nodes []*AssetNode, balance, minTradeVolume Money) Money {
	eligible := make([]int, 0, len(nodes))
	for i, n := range nodes {
		// Nodes already exactly at their current value are left alone here:
		// pushing balance into them would force a trade nothing asked for.
		// The spillover pass may still use them as a last resort.
		if n.Status == StatusPending && !n.Trade().IsZero() {
			eligible = append(eligible, i)
		}
	}
	// Ties keep the original sibling order.
	sort.SliceStable(eligible, func(a, b int) bool {
		return nodes[eligible[a]].Trade().Abs().LessThan(nodes[eligible[b]].Trade().Abs())
	})

	for _, i := range eligible {
		if balance.Abs().LessThan(minTradeVolume) {
			break
		}
		if balance.IsPositive() {
			balance = balance.Sub(grow(nodes[i], balance, minTradeVolume))
		} else {
			balance = balance.Add(shrink(nodes[i], balance.Neg(), minTradeVolume))
		}
	}
	return balance
}

// grow raises the node's target by up to amount, within its max value, and
// returns the portion actually applied.
func grow(n *AssetNode, amount, minTradeVolume Money) Money {
	if n.MaxValue != nil {
		amount = amount.Min(n.MaxValue.Sub(n.TargetValue))
	}
	if !amount.IsPositive() {
		return Money{}
	}
	diff := n.Trade()
	next := diff.Add(amount)
	switch {
	case next.IsNegative() && next.Neg().LessThan(minTradeVolume):
		// keep a minimal sell instead of one too small to execute
		amount = diff.Neg().Sub(minTradeVolume)
	case next.IsPositive() && next.LessThan(minTradeVolume):
		if !diff.IsNegative() {
			return Money{}
		}
		// close the sell entirely
		amount = diff.Neg()
	}
	if !amount.IsPositive() {
		return Money{}
	}
	n.TargetValue = n.TargetValue.Add(amount)
	return amount
}

// shrink lowers the node's target by up to amount, within its min value, and
// returns the portion actually applied. A zero-weight position whose whole
// value fits in the amount is liquidated rather than left with an
// untradable remainder.
func shrink(n *AssetNode, amount, minTradeVolume Money) Money {
	amount = amount.Min(n.TargetValue.Sub(n.MinValue))
	if !amount.IsPositive() {
		return Money{}
	}
	diff := n.Trade()
	next := diff.Sub(amount)
	switch {
	case next.IsPositive() && next.LessThan(minTradeVolume):
		// keep a minimal buy instead of one too small to execute
		amount = diff.Sub(minTradeVolume)
	case next.IsNegative() && next.Neg().LessThan(minTradeVolume):
		switch {
		case diff.IsPositive():
			// close the buy entirely
			amount = diff
		case n.Weight.IsZero() && n.MinValue.IsZero() && n.TargetValue.LessThanOrEqual(amount):
			amount = n.TargetValue
		default:
			return Money{}
		}
	}
	if !amount.IsPositive() {
		return Money{}
	}
	n.TargetValue = n.TargetValue.Sub(amount)
	return amount
}

// spillover forces exact conservation: the balance still remaining after
// redistribution is pushed into any child with bound headroom left, without
// the minimum trade volume restriction. Returns the balance left, nonzero
// only when no headroom exists anywhere among the nodes.
func spillover(nodes []*AssetNode, balance Money) Money {
	for _, n := range nodes {
		if balance.IsZero() {
			break
		}
		if balance.IsPositive() {
			if n.MaxValue == nil {
				n.TargetValue = n.TargetValue.Add(balance)
				return Money{}
			}
			if room := n.MaxValue.Sub(n.TargetValue); room.IsPositive() {
				v := room.Min(balance)
				n.TargetValue = n.TargetValue.Add(v)
				balance = balance.Sub(v)
			}
		} else {
			if room := n.TargetValue.Sub(n.MinValue); room.IsPositive() {
				v := room.Min(balance.Neg())
				n.TargetValue = n.TargetValue.Sub(v)
				balance = balance.Add(v)
			}
		}
	}
	return balance
}
