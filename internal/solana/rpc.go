package solana

import "context"

// RPCClient defines the Solana RPC calls used by the market monitor.
type RPCClient interface {
	// GetHealth returns nil when the node reports itself healthy.
	GetHealth(ctx context.Context) error

	// GetSlot returns the current slot.
	GetSlot(ctx context.Context) (int64, error)

	// GetTokenSupply returns the total supply of an SPL token mint.
	GetTokenSupply(ctx context.Context, mint string) (*TokenSupply, error)
}

// TokenSupply is the supply of an SPL token mint.
type TokenSupply struct {
	Amount   string  // raw amount in base units
	Decimals int     // mint decimals
	UIAmount float64 // Amount scaled by Decimals
	Slot     int64   // context slot of the reading
}
