package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeTradeID computes a deterministic trade ID using SHA256.
// Formula: SHA256(mint|signature|side)
// Returns hex-encoded hash (64 characters).
//
// A single transaction signature may touch several coins, so the mint is part
// of the key. Re-delivery of the same feed event yields the same ID.
func ComputeTradeID(mint, signature, side string) string {
	data := fmt.Sprintf("%s|%s|%s", mint, signature, side)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
