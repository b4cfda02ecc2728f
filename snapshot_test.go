package rebalance

import (
	"strings"
	"testing"
)

func TestDecodeSnapshot(t *testing.T) {
	in := `
{"symbol":"VTI","quantity":"10","price":"250","currency":"USD"}
{"symbol":"BND","quantity":"20.5","price":"75.20","currency":"USD"}

{"symbol":"GLD","quantity":"1","price":"180.11"}
`
	snap, err := DecodeSnapshot(strings.NewReader(in))
	if err != nil {
		t.Fatalf("DecodeSnapshot() error = %v", err)
	}
	if got := snap.Currency(); got != "USD" {
		t.Errorf("Currency() = %q, want %q", got, "USD")
	}
	if got := len(snap.Holdings()); got != 3 {
		t.Fatalf("len(Holdings()) = %d, want 3", got)
	}
	h, ok := snap.Get("BND")
	if !ok {
		t.Fatal("Get(BND) not found")
	}
	if !h.Value().Equal(USD(1541.60)) {
		t.Errorf("BND value = %v, want %v", h.Value(), USD(1541.60))
	}
	if !snap.TotalValue().Equal(USD(2500 + 1541.60 + 180.11)) {
		t.Errorf("TotalValue() = %v", snap.TotalValue())
	}
}

func TestDecodeSnapshot_Errors(t *testing.T) {
	testCases := []struct {
		name string
		in   string
	}{
		{
			name: "broken json",
			in:   `{"symbol":"VTI"`,
		},
		{
			name: "missing symbol",
			in:   `{"quantity":"10","price":"250"}`,
		},
		{
			name: "duplicate symbol",
			in: `{"symbol":"VTI","quantity":"10","price":"250"}
{"symbol":"VTI","quantity":"1","price":"250"}`,
		},
		{
			name: "mixed currencies",
			in: `{"symbol":"VTI","quantity":"10","price":"250","currency":"USD"}
{"symbol":"ASML","quantity":"1","price":"600","currency":"EUR"}`,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeSnapshot(strings.NewReader(tc.in)); err == nil {
				t.Error("DecodeSnapshot() = nil, want error")
			}
		})
	}
}

func TestEncodeSnapshot(t *testing.T) {
	snap := NewSnapshot("USD",
		Holding{Symbol: "VTI", Quantity: Q(10), Price: USD(250)},
		Holding{Symbol: "GLD", Quantity: Q(1.5), Price: USD(180.10)},
	)
	var sb strings.Builder
	if err := EncodeSnapshot(&sb, snap); err != nil {
		t.Fatalf("EncodeSnapshot() error = %v", err)
	}

	decoded, err := DecodeSnapshot(strings.NewReader(sb.String()))
	if err != nil {
		t.Fatalf("DecodeSnapshot() error = %v", err)
	}
	if got := decoded.Currency(); got != "USD" {
		t.Errorf("Currency() = %q, want %q", got, "USD")
	}
	for _, want := range snap.Holdings() {
		got, ok := decoded.Get(want.Symbol)
		if !ok {
			t.Errorf("Get(%s) not found after round trip", want.Symbol)
			continue
		}
		if !got.Quantity.Equal(want.Quantity) || !got.Price.Equal(want.Price) {
			t.Errorf("Get(%s) = %+v, want %+v", want.Symbol, got, want)
		}
	}
}

func TestNewSnapshot_RepeatedSymbolReplaces(t *testing.T) {
	snap := NewSnapshot("USD",
		Holding{Symbol: "VTI", Quantity: Q(10), Price: USD(250)},
		Holding{Symbol: "VTI", Quantity: Q(12), Price: USD(251)},
	)
	if got := len(snap.Holdings()); got != 1 {
		t.Fatalf("len(Holdings()) = %d, want 1", got)
	}
	h, _ := snap.Get("VTI")
	if !h.Quantity.Equal(Q(12)) {
		t.Errorf("quantity = %v, want 12", h.Quantity)
	}
}
