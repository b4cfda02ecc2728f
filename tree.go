package rebalance

// Status tracks the resolution state of a node across the allocation passes.
type Status string

const (
	// StatusPending is the initial state of every node in a run.
	StatusPending Status = "pending"
	// StatusBuyBlocked marks a node clamped down to its max value.
	StatusBuyBlocked Status = "buy-blocked"
	// StatusSellBlocked marks a node clamped up to its min value.
	StatusSellBlocked Status = "sell-blocked"
	// StatusDust marks a node whose adjustment was below the minimum trade
	// volume and was suppressed.
	StatusDust Status = "dust"
	// StatusCorrectable marks a node the debt resolver is still allowed to
	// shrink.
	StatusCorrectable Status = "correctable"
	// StatusResolved is the terminal state of a node whose target value is
	// within bounds and consistent with its parent.
	StatusResolved Status = "resolved"
	// StatusUncorrectable is the terminal state of a node pinned to its
	// current value, contributing to the parent's debt.
	StatusUncorrectable Status = "uncorrectable"
)

// Asset is the variant part of an AssetNode: either a Group of child nodes
// or a single Position in a tradable instrument. Traversals type-switch on
// the concrete type.
type Asset interface {
	isAsset()
}

// Group is a named collection of sub-nodes sharing the parent's budget.
type Group struct {
	Children []*AssetNode
}

func (Group) isAsset() {}

// Position is a single instrument holding: symbol, quantity and unit price.
type Position struct {
	Symbol   string
	Quantity Quantity
	Price    Money
}

func (Position) isAsset() {}

// Value returns the market value of the position.
func (p Position) Value() Money { return p.Price.Mul(p.Quantity) }

// AssetNode is one node of the allocation tree. The tree is built fresh for
// every rebalancing run, mutated in place by the restriction and allocation
// passes, and handed to the caller once resolved.
type AssetNode struct {
	Name   string
	Weight Weight

	RestrictBuying  bool
	RestrictSelling bool

	CurrentValue Money
	TargetValue  Money

	// Feasible bounds computed by the restriction pass. A nil MaxValue is
	// unbounded.
	MinValue Money
	MaxValue *Money

	BuyBlocked  bool
	SellBlocked bool
	Status      Status

	Asset Asset
}

// NewGroup creates a group node over the given children.
func NewGroup(name string, weight Weight, children ...*AssetNode) *AssetNode {
	return &AssetNode{
		Name:   name,
		Weight: weight,
		Status: StatusPending,
		Asset:  Group{Children: children},
	}
}

// NewPosition creates a leaf node holding a single instrument. Its current
// value is the position's market value.
func NewPosition(name string, weight Weight, pos Position) *AssetNode {
	return &AssetNode{
		Name:         name,
		Weight:       weight,
		CurrentValue: pos.Value(),
		Status:       StatusPending,
		Asset:        pos,
	}
}

// Children returns the node's children, or nil for a leaf.
func (n *AssetNode) Children() []*AssetNode {
	if g, ok := n.Asset.(Group); ok {
		return g.Children
	}
	return nil
}

// IsLeaf reports whether the node holds a single position.
func (n *AssetNode) IsLeaf() bool {
	_, ok := n.Asset.(Position)
	return ok
}

// Trade returns the value difference the target implies: positive to buy,
// negative to sell.
func (n *AssetNode) Trade() Money { return n.TargetValue.Sub(n.CurrentValue) }

// walk visits every node depth-first, parents before children, passing the
// full slash-separated path of each node.
func walk(path string, nodes []*AssetNode, fn func(path string, n *AssetNode)) {
	for _, n := range nodes {
		p := join(path, n.Name)
		fn(p, n)
		if g, ok := n.Asset.(Group); ok {
			walk(p, g.Children, fn)
		}
	}
}

func join(path, name string) string {
	if path == "" {
		return name
	}
	return path + "/" + name
}

// countNodes returns the number of nodes in the forest, groups included.
func countNodes(nodes []*AssetNode) int {
	count := 0
	for _, n := range nodes {
		count++
		if g, ok := n.Asset.(Group); ok {
			count += countNodes(g.Children)
		}
	}
	return count
}

// MarshalJSON implements the json.Marshaler interface for AssetNode.
func (n *AssetNode) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("name", n.Name)
	w.Append("weight", n.Weight.String())
	w.Append("current", n.CurrentValue)
	w.Append("target", n.TargetValue)
	w.Optional("buyBlocked", n.BuyBlocked)
	w.Optional("sellBlocked", n.SellBlocked)
	w.Append("status", n.Status)
	switch a := n.Asset.(type) {
	case Position:
		w.Optional("symbol", a.Symbol)
		w.Append("quantity", a.Quantity)
		w.Append("price", a.Price)
	case Group:
		w.Append("assets", a.Children)
	}
	return w.MarshalJSON()
}
