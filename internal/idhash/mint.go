package idhash

import "github.com/mr-tron/base58"

// pubkeyLen is the decoded length of a Solana public key.
const pubkeyLen = 32

// ValidMint reports whether s is a base58-encoded 32-byte Solana address.
func ValidMint(s string) bool {
	if s == "" || len(s) > 44 {
		return false
	}
	decoded, err := base58.Decode(s)
	if err != nil {
		return false
	}
	return len(decoded) == pubkeyLen
}
