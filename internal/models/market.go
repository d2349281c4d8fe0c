package models

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// MarketItem represents a listed item as returned by the marketplace
// contract. The authoritative copy lives on-chain; instances here are
// read-only snapshots.
type MarketItem struct {
	TokenID *big.Int       `json:"token_id"`
	Seller  common.Address `json:"seller"`
	Owner   common.Address `json:"owner"`
	Price   *big.Int       `json:"price"`
	Sold    bool           `json:"sold"`
}

// NftMetadata represents the JSON document a token URI points at.
// Immutable once pinned; this layer only writes it during mint.
type NftMetadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// NftData is a MarketItem merged with its resolved metadata. An NftData
// only exists for items whose metadata fetch succeeded.
type NftData struct {
	MarketItem
	Metadata NftMetadata `json:"metadata"`
}

// MarketItemView is the display-ready form of an NftData returned by the
// listing endpoints: chain values as strings, locators rewritten to
// fetchable URLs.
type MarketItemView struct {
	TokenID      string      `json:"token_id"`
	Seller       string      `json:"seller"`
	Owner        string      `json:"owner"`
	PriceWei     string      `json:"price_wei"`
	PriceDisplay string      `json:"price_display"`
	Sold         bool        `json:"sold"`
	Metadata     NftMetadata `json:"metadata"`
	ImageURL     string      `json:"image_url"`
}

// MarketListResponse represents the response for the listing endpoints
type MarketListResponse struct {
	Items      []MarketItemView `json:"items"`
	TotalCount int              `json:"total_count"`
}

// ListingPriceResponse carries the contract's listing fee in both forms
type ListingPriceResponse struct {
	Wei     string `json:"wei"`
	Display string `json:"display"`
}
