package services

import (
	"context"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CocDap/marketplace-polkavm-frontend/internal/models"
)

func marketItem(id int64, seller, owner string, price int64, sold bool) models.MarketItem {
	return models.MarketItem{
		TokenID: big.NewInt(id),
		Seller:  common.HexToAddress(seller),
		Owner:   common.HexToAddress(owner),
		Price:   big.NewInt(price),
		Sold:    sold,
	}
}

func TestMarketplaceEmpty(t *testing.T) {
	gateway := &fakeGateway{}
	metadata := &fakeMetadata{}
	svc := NewMarketService(gateway, metadata, testLogger())

	collection, err := svc.Marketplace(context.Background())
	require.NoError(t, err)
	assert.Empty(t, collection)

	// No metadata work for an empty market
	assert.Zero(t, gateway.uriCalls)
	assert.Zero(t, metadata.calls)
}

func TestMarketplaceFiltersSoldAndKeepsOrder(t *testing.T) {
	gateway := &fakeGateway{
		items: []models.MarketItem{
			marketItem(1, "0xa1", "0x0", 100, false),
			marketItem(2, "0xa2", "0xb2", 200, true),
			marketItem(3, "0xa3", "0x0", 300, false),
		},
		uris: map[string]string{
			"1": "ipfs://one",
			"3": "ipfs://three",
		},
	}
	metadata := &fakeMetadata{docs: map[string]*models.NftMetadata{
		"ipfs://one":   {Name: "One", Image: "ipfs://img1"},
		"ipfs://three": {Name: "Three", Image: "ipfs://img3"},
	}}
	svc := NewMarketService(gateway, metadata, testLogger())

	collection, err := svc.Marketplace(context.Background())
	require.NoError(t, err)
	require.Len(t, collection, 2)

	assert.Equal(t, "One", collection[0].Metadata.Name)
	assert.Equal(t, "Three", collection[1].Metadata.Name)
	assert.Equal(t, int64(1), collection[0].TokenID.Int64())
	assert.Equal(t, int64(3), collection[1].TokenID.Int64())
}

func TestMarketplaceDropsUnresolvedMetadata(t *testing.T) {
	gateway := &fakeGateway{
		items: []models.MarketItem{
			marketItem(1, "0xa1", "0x0", 100, false),
			marketItem(2, "0xa2", "0x0", 200, false),
		},
		uris: map[string]string{
			"1": "ipfs://one",
			"2": "ipfs://broken",
		},
	}
	metadata := &fakeMetadata{docs: map[string]*models.NftMetadata{
		"ipfs://one": {Name: "One"},
		// ipfs://broken resolves to nothing
	}}
	svc := NewMarketService(gateway, metadata, testLogger())

	collection, err := svc.Marketplace(context.Background())
	require.NoError(t, err)
	require.Len(t, collection, 1)
	assert.Equal(t, "One", collection[0].Metadata.Name)
}

func TestOwnedPassesCallerAddress(t *testing.T) {
	owner := common.HexToAddress("0xabc")
	gateway := &fakeGateway{
		owned: []models.MarketItem{
			marketItem(5, "0xa1", "0xabc", 100, true),
		},
		uris: map[string]string{"5": "ipfs://five"},
	}
	metadata := &fakeMetadata{docs: map[string]*models.NftMetadata{
		"ipfs://five": {Name: "Five"},
	}}
	svc := NewMarketService(gateway, metadata, testLogger())

	collection, err := svc.Owned(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, collection, 1)
	assert.Equal(t, owner, gateway.lastCaller)

	// Owned items are not filtered by sold state
	assert.True(t, collection[0].Sold)
}

func TestMarketplaceGatewayError(t *testing.T) {
	gateway := &fakeGateway{itemsErr: assert.AnError}
	svc := NewMarketService(gateway, &fakeMetadata{}, testLogger())

	_, err := svc.Marketplace(context.Background())
	require.Error(t, err)
}
