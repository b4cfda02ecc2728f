package rebalance

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
)

// Holding is a single tradable instrument position of a portfolio snapshot:
// symbol, quantity and unit price in the reporting currency.
type Holding struct {
	Symbol   string
	Quantity Quantity
	Price    Money
}

// Value returns the market value of the holding.
func (h Holding) Value() Money { return h.Price.Mul(h.Quantity) }

// Snapshot is the state of a portfolio at one point in time: the held
// positions, all valued in a single reporting currency. It is produced by
// statement-parsing and pricing collaborators and consumed here to seed the
// allocation tree.
type Snapshot struct {
	currency string
	holdings []Holding
	index    map[string]int
}

// NewSnapshot creates a snapshot over the given holdings. A repeated symbol
// replaces the earlier entry.
func NewSnapshot(currency string, holdings ...Holding) *Snapshot {
	s := &Snapshot{currency: currency, index: make(map[string]int)}
	for _, h := range holdings {
		if i, ok := s.index[h.Symbol]; ok {
			s.holdings[i] = h
			continue
		}
		s.add(h)
	}
	return s
}

func (s *Snapshot) add(h Holding) error {
	if _, ok := s.index[h.Symbol]; ok {
		return fmt.Errorf("symbol %q is already defined", h.Symbol)
	}
	s.index[h.Symbol] = len(s.holdings)
	s.holdings = append(s.holdings, h)
	return nil
}

// Currency returns the snapshot's reporting currency.
func (s *Snapshot) Currency() string { return s.currency }

// Get returns the holding for a symbol.
func (s *Snapshot) Get(symbol string) (Holding, bool) {
	i, ok := s.index[symbol]
	if !ok {
		return Holding{}, false
	}
	return s.holdings[i], true
}

// Holdings returns the snapshot's positions in their original order.
func (s *Snapshot) Holdings() []Holding {
	out := make([]Holding, len(s.holdings))
	copy(out, s.holdings)
	return out
}

// TotalValue returns the market value of all positions.
func (s *Snapshot) TotalValue() Money {
	total := M(0, s.currency)
	for _, h := range s.holdings {
		total = total.Add(h.Value())
	}
	return total
}

// DecodeSnapshot parses a snapshot from its JSONL form, one holding per
// line. All holdings must share one reporting currency.
func DecodeSnapshot(r io.Reader) (*Snapshot, error) {
	// to parse a json, we use a dedicated local struct with tag annotation.
	type jholding struct {
		Symbol   string          `json:"symbol"`
		Quantity decimal.Decimal `json:"quantity"`
		Price    decimal.Decimal `json:"price"`
		Currency string          `json:"currency"`
	}

	s := &Snapshot{index: make(map[string]int)}

	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		raw := strings.TrimSpace(scanner.Text())
		if raw == "" {
			continue
		}

		var jh jholding
		if err := json.Unmarshal([]byte(raw), &jh); err != nil {
			return nil, fmt.Errorf("format error on line %d %q: %w", line, raw, err)
		}
		if jh.Symbol == "" {
			return nil, fmt.Errorf("format error on line %d: missing symbol", line)
		}
		switch {
		case s.currency == "":
			s.currency = jh.Currency
		case jh.Currency != "" && jh.Currency != s.currency:
			return nil, fmt.Errorf("format error on line %d: currency %q differs from %q, snapshots are single-currency",
				line, jh.Currency, s.currency)
		}

		h := Holding{Symbol: jh.Symbol, Quantity: Q(jh.Quantity), Price: M(jh.Price, s.currency)}
		if err := s.add(h); err != nil {
			return nil, fmt.Errorf("format error on line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading snapshot: %w", err)
	}
	return s, nil
}

// EncodeSnapshot writes the snapshot in its JSONL form, one holding per
// line.
func EncodeSnapshot(w io.Writer, s *Snapshot) error {
	for _, h := range s.holdings {
		var jw jsonObjectWriter
		jw.Append("symbol", h.Symbol)
		jw.Append("quantity", h.Quantity)
		jw.Append("price", h.Price.value)
		jw.Optional("currency", s.currency)
		b, err := jw.MarshalJSON()
		if err != nil {
			return fmt.Errorf("failed to encode holding %q: %w", h.Symbol, err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", b); err != nil {
			return err
		}
	}
	return nil
}
