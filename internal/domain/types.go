package domain

import (
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// TokenStandard identifies the ownership model of a tracked contract.
type TokenStandard string

const (
	// StandardERC721 represents single-ownership tokens: one holder per token ID
	StandardERC721 TokenStandard = "erc721"
	// StandardERC1155 represents fractional-supply tokens: many holders, each with a quantity
	StandardERC1155 TokenStandard = "erc1155"
)

// Valid checks if the standard is one the marketplace tracks
func (s TokenStandard) Valid() bool {
	return s == StandardERC721 || s == StandardERC1155
}

// SortKey identifies a bundle listing sort order
type SortKey string

const (
	SortByCreatedAt     SortKey = "createdAt"
	SortByPrice         SortKey = "price"
	SortByLastSalePrice SortKey = "lastSalePrice"
	SortByViewed        SortKey = "viewed"
	SortByListedAt      SortKey = "listedAt"
	SortBySoldAt        SortKey = "soldAt"
	SortBySaleEndsAt    SortKey = "saleEndsAt"
)

// Valid checks if the sort key is a supported bundle ordering
func (k SortKey) Valid() bool {
	switch k {
	case SortByCreatedAt, SortByPrice, SortByLastSalePrice, SortByViewed,
		SortByListedAt, SortBySoldAt, SortBySaleEndsAt:
		return true
	}
	return false
}

// UnlistedAt is the sentinel listing timestamp for bundles that have never been listed
var UnlistedAt = time.Unix(0, 0).UTC()

// BundleItemRequest is one requested bundle member: a token and the supply to commit
type BundleItemRequest struct {
	ContractAddress string
	TokenID         string
	Supply          int64
}

// SaleEvent is a normalized sale/transfer notification from the marketplace tracker.
// A sale reduces the seller's holdings, so matching bundle commitments must shrink too.
type SaleEvent struct {
	ContractAddress string `json:"contract_address"`
	TokenID         string `json:"token_id"`
	Quantity        int64  `json:"quantity"`
	Seller          string `json:"seller"`
}

// Normalize rewrites the event's addresses into canonical form
func (e *SaleEvent) Normalize() {
	e.ContractAddress = NormalizeAddress(e.ContractAddress)
	e.Seller = NormalizeAddress(e.Seller)
}

// Valid checks the event carries everything the mutator needs
func (e *SaleEvent) Valid() bool {
	return ValidAddress(e.ContractAddress) &&
		ValidAddress(e.Seller) &&
		e.TokenID != "" &&
		e.Quantity > 0
}

// ValidAddress checks if an address is a well-formed hex address
func ValidAddress(address string) bool {
	return common.IsHexAddress(address)
}

// NormalizeAddress normalizes a hex address to its canonical lowercase form.
// Every system boundary (request binding, JWT claims, queue decoding) calls
// this once so business logic never case-folds.
func NormalizeAddress(address string) string {
	if common.IsHexAddress(address) {
		return strings.ToLower(common.HexToAddress(address).Hex())
	}
	return strings.ToLower(address)
}

// NormalizeAddresses normalizes a list of addresses in place
func NormalizeAddresses(addresses []string) []string {
	for i, address := range addresses {
		addresses[i] = NormalizeAddress(address)
	}
	return addresses
}
