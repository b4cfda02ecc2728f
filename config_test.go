package rebalance

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

const sampleConfig = `
name: retirement
currency: USD
min_trade_volume: "10"
restrict_selling: true
assets:
  - name: Stocks
    weight: 60%
    assets:
      - name: US Total Market
        symbol: VTI
        weight: 70%
      - name: Europe
        symbol: VGK
        weight: 30%
        restrict_selling: false
  - name: Bonds
    weight: 30%
    symbol: BND
    restrict_buying: true
  - name: Gold
    weight: 10%
    symbol: GLD
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "portfolio.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Name != "retirement" || cfg.Currency != "USD" {
		t.Errorf("cfg = %q %q, want retirement USD", cfg.Name, cfg.Currency)
	}
	mtv, err := cfg.MinTrade()
	if err != nil {
		t.Fatalf("MinTrade() error = %v", err)
	}
	if !mtv.Equal(USD(10)) {
		t.Errorf("MinTrade() = %v, want %v", mtv, USD(10))
	}
	want := []string{"VTI", "VGK", "BND", "GLD"}
	if got := cfg.Symbols(); !reflect.DeepEqual(got, want) {
		t.Errorf("Symbols() = %v, want %v", got, want)
	}
}

func TestLoadConfig_InvalidFile(t *testing.T) {
	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("LoadConfig() on a missing file, want error")
	}
	if _, err := LoadConfig(writeConfig(t, "name: [")); err == nil {
		t.Error("LoadConfig() on broken yaml, want error")
	}
}

func TestConfigCheck(t *testing.T) {
	testCases := []struct {
		name   string
		config Config
	}{
		{
			name:   "no assets",
			config: Config{Name: "p"},
		},
		{
			name: "bad weight",
			config: Config{Name: "p", Assets: []AssetConfig{
				{Name: "A", Symbol: "A", Weight: "40"},
				{Name: "B", Symbol: "B", Weight: "60%"},
			}},
		},
		{
			name: "weights not summing to 100%",
			config: Config{Name: "p", Assets: []AssetConfig{
				{Name: "A", Symbol: "A", Weight: "40%"},
				{Name: "B", Symbol: "B", Weight: "40%"},
			}},
		},
		{
			name: "nested weights not summing to 100%",
			config: Config{Name: "p", Assets: []AssetConfig{
				{Name: "G", Weight: "100%", Assets: []AssetConfig{
					{Name: "A", Symbol: "A", Weight: "99%"},
				}},
			}},
		},
		{
			name: "symbol and nested assets on the same node",
			config: Config{Name: "p", Assets: []AssetConfig{
				{Name: "A", Symbol: "A", Weight: "100%", Assets: []AssetConfig{
					{Name: "B", Symbol: "B", Weight: "100%"},
				}},
			}},
		},
		{
			name: "neither symbol nor nested assets",
			config: Config{Name: "p", Assets: []AssetConfig{
				{Name: "A", Weight: "100%"},
			}},
		},
		{
			name: "duplicate symbol",
			config: Config{Name: "p", Assets: []AssetConfig{
				{Name: "A", Symbol: "VTI", Weight: "50%"},
				{Name: "B", Symbol: "VTI", Weight: "50%"},
			}},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.config.Check()
			var cfgErr *ConfigError
			if !errors.As(err, &cfgErr) {
				t.Errorf("Check() error = %v, want *ConfigError", err)
			}
		})
	}
}

func TestConfigTree(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, sampleConfig))
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	snap := NewSnapshot("USD",
		Holding{Symbol: "VTI", Quantity: Q(10), Price: USD(250)},
		Holding{Symbol: "BND", Quantity: Q(20), Price: USD(75)},
	)
	p, err := NewPortfolio(cfg, snap, snap.TotalValue(), USD(10))
	if err != nil {
		t.Fatalf("NewPortfolio() error = %v", err)
	}

	byPath := make(map[string]*AssetNode)
	p.Walk(func(path string, n *AssetNode) { byPath[path] = n })

	vti := byPath["retirement/Stocks/US Total Market"]
	if vti == nil {
		t.Fatal("VTI node not found in tree")
	}
	if !vti.CurrentValue.Equal(USD(2500)) {
		t.Errorf("VTI current = %v, want %v", vti.CurrentValue, USD(2500))
	}
	// restrict_selling is inherited from the portfolio level.
	if !vti.RestrictSelling {
		t.Error("VTI should inherit restrict_selling from the portfolio")
	}
	// and explicitly overridden on the Europe node.
	if vgk := byPath["retirement/Stocks/Europe"]; vgk.RestrictSelling {
		t.Error("VGK overrides restrict_selling to false")
	}
	bnd := byPath["retirement/Bonds"]
	if !bnd.RestrictBuying || !bnd.RestrictSelling {
		t.Error("BND should be both buy-restricted (own) and sell-restricted (inherited)")
	}
	// a symbol absent from the snapshot becomes an empty position.
	if gld := byPath["retirement/Gold"]; !gld.CurrentValue.IsZero() {
		t.Errorf("GLD current = %v, want zero", gld.CurrentValue)
	}
}

func TestConfigMinTrade(t *testing.T) {
	cfg := Config{Name: "p", Currency: "EUR"}
	mtv, err := cfg.MinTrade()
	if err != nil {
		t.Fatalf("MinTrade() error = %v", err)
	}
	if !mtv.IsZero() || mtv.Currency() != "EUR" {
		t.Errorf("MinTrade() = %v %s, want zero EUR", mtv, mtv.Currency())
	}
	cfg.MinTradeVolume = "abc"
	if _, err := cfg.MinTrade(); err == nil {
		t.Error("MinTrade() on a bad value, want error")
	}
}
