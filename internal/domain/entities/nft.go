package entities

import "strings"

// TokenStandard is the declared token standard of an NFT collection
type TokenStandard string

const (
	TokenStandardERC721  TokenStandard = "ERC721"
	TokenStandardERC1155 TokenStandard = "ERC1155"
)

// IsFungible reports whether large holdings are structurally normal for the standard.
// Unknown standards are treated as non-fungible.
func (s TokenStandard) IsFungible() bool {
	normalized := strings.ToUpper(strings.ReplaceAll(string(s), "-", ""))
	return TokenStandard(normalized) == TokenStandardERC1155
}

// NFTCollection is one collection in a wallet's NFT holdings snapshot
type NFTCollection struct {
	Name           string
	TokenStandard  TokenStandard
	CollectionSize int64
	FloorPrice7d   float64
	// Volume7d is nil when the marketplace does not report volume
	Volume7d     *float64
	HoldingCount int64
}
