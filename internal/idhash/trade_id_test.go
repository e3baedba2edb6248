package idhash

import (
	"testing"
)

func TestComputeTradeID(t *testing.T) {
	tests := []struct {
		name      string
		mint      string
		signature string
		side      string
		wantLen   int // hash length should be 64
	}{
		{
			name:      "buy",
			mint:      "GAKDkX3myHqofbqHQ4wV7HkzwLgAv8quFHpAPvGeunNG",
			signature: "5VERv8NMvzbJMEkV8xnrLkEaWRtSz9CosKDYjCJjBRnbJLgp8uirBgmQpjKhoR4tjF3ZpRzrFmBV6UjKdiSZkQUW",
			side:      "BUY",
			wantLen:   64,
		},
		{
			name:      "sell",
			mint:      "GSBz2NUew8BoBXYTMWyuJ9Je2z1MyajrTrRZwd3HmVz2",
			signature: "sig-2",
			side:      "SELL",
			wantLen:   64,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTradeID(tt.mint, tt.signature, tt.side)

			if len(got) != tt.wantLen {
				t.Errorf("ComputeTradeID() length = %d, want %d", len(got), tt.wantLen)
			}

			// Same inputs should produce same output
			got2 := ComputeTradeID(tt.mint, tt.signature, tt.side)
			if got != got2 {
				t.Errorf("ComputeTradeID() not deterministic: %s != %s", got, got2)
			}
		})
	}
}

func TestComputeTradeID_DifferentInputs(t *testing.T) {
	base := ComputeTradeID("mint", "sig", "BUY")

	if base == ComputeTradeID("other_mint", "sig", "BUY") {
		t.Error("Different mint should produce different hash")
	}
	if base == ComputeTradeID("mint", "other_sig", "BUY") {
		t.Error("Different signature should produce different hash")
	}
	if base == ComputeTradeID("mint", "sig", "SELL") {
		t.Error("Different side should produce different hash")
	}
}

func TestValidMint(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"So11111111111111111111111111111111111111112", true},
		{"GAKDkX3myHqofbqHQ4wV7HkzwLgAv8quFHpAPvGeunNG", true},
		{"", false},
		{"not-base58-0OIl", false},
		{"abc", false}, // decodes, but too short
		{"GAKDkX3myHqofbqHQ4wV7HkzwLgAv8quFHpAPvGeunNGGAKD", false},
	}

	for _, tt := range tests {
		if got := ValidMint(tt.in); got != tt.want {
			t.Errorf("ValidMint(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
