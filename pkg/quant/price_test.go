package quant

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestLimitPrice(t *testing.T) {
	cases := []struct {
		name    string
		bestAsk string
		want    string
	}{
		{"documented parity case", "50000.37", "45000.3"},
		{"round number", "100.0", "90"},
		{"sub-dollar", "0.5", "0.5"}, // 0.45 rounds to 0.5
		{"needs rounding up", "1234.5", "1111.1"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ask := decimal.RequireFromString(tc.bestAsk)
			got := LimitPrice(ask)
			if got.String() != tc.want {
				t.Errorf("LimitPrice(%s) = %s, want %s", tc.bestAsk, got, tc.want)
			}
		})
	}
}

func TestLimitPrice_Deterministic(t *testing.T) {
	ask := decimal.RequireFromString("50000.37")
	a := LimitPrice(ask)
	b := LimitPrice(ask)
	if !a.Equal(b) {
		t.Errorf("LimitPrice not deterministic: %s vs %s", a, b)
	}
}

func TestParsePrice(t *testing.T) {
	if _, err := ParsePrice("50000.37"); err != nil {
		t.Fatalf("valid price rejected: %v", err)
	}
	if _, err := ParsePrice("not-a-price"); err == nil {
		t.Fatal("expected error for malformed price")
	}
	if _, err := ParsePrice(""); err == nil {
		t.Fatal("expected error for empty price")
	}
}
