package ethereum

import (
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// IsValidAddress reports whether s is a 0x-prefixed 20-byte hex address
func IsValidAddress(s string) bool {
	if len(s) != 2+2*common.AddressLength {
		return false
	}
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return false
	}
	return common.IsHexAddress(s)
}

// NormalizeAddress returns the canonical lower-case form used as the storage key
func NormalizeAddress(s string) string {
	return strings.ToLower(common.HexToAddress(s).Hex())
}
