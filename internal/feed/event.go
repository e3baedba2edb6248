package feed

import (
	"encoding/json"
	"fmt"
)

// Transaction types carried by feed events.
const (
	TxCreate = "create"
	TxBuy    = "buy"
	TxSell   = "sell"
)

// Event is one message of the PumpPortal data stream.
// Create events carry coin metadata; buy and sell events carry a trade
// and the bonding curve state after it.
type Event struct {
	TxType          string  `json:"txType"`
	Mint            string  `json:"mint"`
	Signature       string  `json:"signature"`
	TraderPublicKey string  `json:"traderPublicKey"`
	TokenAmount     float64 `json:"tokenAmount"`
	SolAmount       float64 `json:"solAmount"`
	VSolInCurve     float64 `json:"vSolInBondingCurve"`
	VTokensInCurve  float64 `json:"vTokensInBondingCurve"`
	MarketCapSol    float64 `json:"marketCapSol"`
	InitialBuy      float64 `json:"initialBuy,omitempty"`
	Name            string  `json:"name,omitempty"`
	Symbol          string  `json:"symbol,omitempty"`
	URI             string  `json:"uri,omitempty"`
	Pool            string  `json:"pool,omitempty"`
}

// IsTrade reports whether the event is a buy or sell.
func (e *Event) IsTrade() bool {
	return e.TxType == TxBuy || e.TxType == TxSell
}

// Price returns the bonding curve spot price in SOL per token, or 0 when the
// curve is empty.
func (e *Event) Price() float64 {
	if e.VTokensInCurve <= 0 {
		return 0
	}
	return e.VSolInCurve / e.VTokensInCurve
}

// parseEvent decodes a stream message. Control messages such as
// subscription acknowledgements have no txType and yield (nil, nil).
func parseEvent(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, fmt.Errorf("decode event: %w", err)
	}
	if ev.TxType == "" {
		return nil, nil
	}
	return &ev, nil
}

// subscribeRequest is a PumpPortal subscription message.
type subscribeRequest struct {
	Method string   `json:"method"`
	Keys   []string `json:"keys,omitempty"`
}
