package renderer

import (
	"strings"
	"testing"

	"github.com/etnz/rebalance"
)

func TestPlanMarkdown(t *testing.T) {
	p := &rebalance.Portfolio{
		Name:     "retirement",
		Currency: "USD",
		Assets: []*rebalance.AssetNode{
			rebalance.NewGroup("Stocks", rebalance.W(0.6),
				rebalance.NewPosition("US Total Market", rebalance.W(1),
					rebalance.Position{Symbol: "VTI", Quantity: rebalance.Q(2), Price: rebalance.M(250, "USD")}),
			),
			rebalance.NewPosition("Gold", rebalance.W(0.4),
				rebalance.Position{Symbol: "GLD", Quantity: rebalance.Q(1), Price: rebalance.M(180, "USD")}),
		},
		TotalValue:     rebalance.M(1000, "USD"),
		MinTradeVolume: rebalance.M(1, "USD"),
	}
	if err := p.Rebalance(); err != nil {
		t.Fatalf("Rebalance() error = %v", err)
	}

	got := PlanMarkdown(p)

	for _, want := range []string{
		"# Rebalancing retirement",
		"| Asset | Weight | Current | Target | Trade | Status |",
		"| Stocks | 60% |",
		"|   US Total Market (VTI) | 100% |",
		"| Gold (GLD) | 40% |",
		"| **Total** |",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("PlanMarkdown() missing %q in:\n%s", want, got)
		}
	}
	// one header separator, one row per node, one total row
	if rows := strings.Count(got, "\n|"); rows != 6 {
		t.Errorf("PlanMarkdown() has %d table lines, want 6:\n%s", rows, got)
	}
}
