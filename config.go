package rebalance

import (
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// AssetConfig describes one node of the allocation tree: either a single
// instrument (symbol) or a named group of nested assets. Weights are
// percentage strings like "40%" and siblings must sum to 100%.
// Restriction flags are inherited from the parent when unset.
type AssetConfig struct {
	Name            string        `yaml:"name"`
	Symbol          string        `yaml:"symbol,omitempty"`
	Weight          string        `yaml:"weight"`
	RestrictBuying  *bool         `yaml:"restrict_buying,omitempty"`
	RestrictSelling *bool         `yaml:"restrict_selling,omitempty"`
	Assets          []AssetConfig `yaml:"assets,omitempty"`
}

// Config is the allocation configuration of one portfolio.
type Config struct {
	Name            string        `yaml:"name"`
	Currency        string        `yaml:"currency"`
	MinTradeVolume  string        `yaml:"min_trade_volume,omitempty"`
	RestrictBuying  *bool         `yaml:"restrict_buying,omitempty"`
	RestrictSelling *bool         `yaml:"restrict_selling,omitempty"`
	Assets          []AssetConfig `yaml:"assets"`
}

// LoadConfig reads and checks an allocation configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Check(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Check validates the configuration without a snapshot: every weight parses,
// sibling weights sum to 100% on every level, every node is either a symbol
// or a group, and no symbol appears twice.
func (c *Config) Check() error {
	seen := make(map[string]string)
	return checkAssets(c.Name, c.Assets, seen)
}

func checkAssets(path string, configs []AssetConfig, seen map[string]string) error {
	if len(configs) == 0 {
		return &ConfigError{Node: path, Reason: "no assets configured"}
	}
	var sum Weight
	for _, ac := range configs {
		nodePath := join(path, ac.Name)
		weight, err := ParseWeight(ac.Weight)
		if err != nil {
			return &ConfigError{Node: nodePath, Reason: err.Error()}
		}
		sum = sum.Add(weight)

		switch {
		case ac.Symbol != "" && len(ac.Assets) > 0:
			return &ConfigError{Node: nodePath, Reason: "has both a symbol and nested assets"}
		case ac.Symbol == "" && len(ac.Assets) == 0:
			return &ConfigError{Node: nodePath, Reason: "needs either a symbol or nested assets"}
		case ac.Symbol != "":
			if prev, ok := seen[ac.Symbol]; ok {
				return &ConfigError{Node: nodePath, Reason: fmt.Sprintf(
					"symbol %q is already allocated to %q", ac.Symbol, prev)}
			}
			seen[ac.Symbol] = nodePath
		default:
			if err := checkAssets(nodePath, ac.Assets, seen); err != nil {
				return err
			}
		}
	}
	if !sum.Equal(One()) {
		return &ConfigError{Node: path, Reason: fmt.Sprintf(
			"asset weights sum to %s instead of 100%%", sum)}
	}
	return nil
}

// Symbols returns every instrument symbol mentioned in the configuration, in
// tree order.
func (c *Config) Symbols() []string {
	var symbols []string
	var collect func(configs []AssetConfig)
	collect = func(configs []AssetConfig) {
		for _, ac := range configs {
			if ac.Symbol != "" {
				symbols = append(symbols, ac.Symbol)
			}
			collect(ac.Assets)
		}
	}
	collect(c.Assets)
	return symbols
}

// MinTrade returns the configured minimum trade volume in the reporting
// currency, zero when unset.
func (c *Config) MinTrade() (Money, error) {
	if c.MinTradeVolume == "" {
		return M(0, c.Currency), nil
	}
	d, err := decimal.NewFromString(c.MinTradeVolume)
	if err != nil {
		return Money{}, fmt.Errorf("invalid min_trade_volume %q: %w", c.MinTradeVolume, err)
	}
	return M(d, c.Currency), nil
}

// tree builds the allocation tree, binding leaves to snapshot positions by
// symbol. Symbols absent from the snapshot become empty positions.
func (c *Config) tree(snap *Snapshot) ([]*AssetNode, error) {
	return buildNodes(c.Name, c.Assets, snap, c.Currency, c.RestrictBuying, c.RestrictSelling)
}

func buildNodes(path string, configs []AssetConfig, snap *Snapshot, currency string, buying, selling *bool) ([]*AssetNode, error) {
	nodes := make([]*AssetNode, 0, len(configs))
	for _, ac := range configs {
		nodePath := join(path, ac.Name)
		weight, err := ParseWeight(ac.Weight)
		if err != nil {
			return nil, &ConfigError{Node: nodePath, Reason: err.Error()}
		}
		rb := inherit(ac.RestrictBuying, buying)
		rs := inherit(ac.RestrictSelling, selling)

		switch {
		case ac.Symbol != "" && len(ac.Assets) > 0:
			return nil, &ConfigError{Node: nodePath, Reason: "has both a symbol and nested assets"}
		case len(ac.Assets) > 0:
			children, err := buildNodes(nodePath, ac.Assets, snap, currency, rb, rs)
			if err != nil {
				return nil, err
			}
			nodes = append(nodes, NewGroup(ac.Name, weight, children...))
		case ac.Symbol != "":
			pos := Position{Symbol: ac.Symbol, Quantity: Q(0), Price: M(0, currency)}
			if h, ok := snap.Get(ac.Symbol); ok {
				pos.Quantity, pos.Price = h.Quantity, h.Price
			}
			n := NewPosition(ac.Name, weight, pos)
			n.RestrictBuying = rb != nil && *rb
			n.RestrictSelling = rs != nil && *rs
			nodes = append(nodes, n)
		default:
			return nil, &ConfigError{Node: nodePath, Reason: "needs either a symbol or nested assets"}
		}
	}
	return nodes, nil
}

func inherit(own, parent *bool) *bool {
	if own != nil {
		return own
	}
	return parent
}
