package format

import "unicode/utf8"

const (
	addressHead = 8
	addressTail = 4

	// MinTruncatedAddress is the shortest address that gets an ellipsis.
	// Shorter addresses are shown in full.
	MinTruncatedAddress = addressHead + addressTail
)

// TruncateAddress shortens an address to its first 8 and last 4 characters
// joined by "...". Addresses shorter than 12 characters are returned unchanged.
func TruncateAddress(addr string) string {
	if utf8.RuneCountInString(addr) < MinTruncatedAddress {
		return addr
	}
	r := []rune(addr)
	return string(r[:addressHead]) + "..." + string(r[len(r)-addressTail:])
}
