package services

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/CocDap/marketplace-polkavm-frontend/internal/contract"
	"github.com/CocDap/marketplace-polkavm-frontend/internal/models"
)

// MetadataFetcher resolves a batch of token URIs into metadata
// documents, preserving input order with nil slots for failures
type MetadataFetcher interface {
	FetchBatch(ctx context.Context, uris []string) []*models.NftMetadata
}

// MarketService aggregates on-chain items with their resolved metadata
// into display-ready collections
type MarketService struct {
	gateway  contract.Gateway
	metadata MetadataFetcher
	logger   *zap.SugaredLogger
}

// NewMarketService creates a new MarketService
func NewMarketService(gateway contract.Gateway, metadata MetadataFetcher, logger *zap.SugaredLogger) *MarketService {
	return &MarketService{
		gateway:  gateway,
		metadata: metadata,
		logger:   logger,
	}
}

// Marketplace returns all unsold items with resolved metadata, in
// contract order. Items whose metadata cannot be resolved are dropped.
func (s *MarketService) Marketplace(ctx context.Context) ([]models.NftData, error) {
	items, err := s.gateway.FetchMarketItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch market items: %w", err)
	}

	listed := make([]models.MarketItem, 0, len(items))
	for _, item := range items {
		if !item.Sold {
			listed = append(listed, item)
		}
	}

	return s.aggregate(ctx, listed)
}

// Owned returns the items owned or sold by the given account, with
// resolved metadata
func (s *MarketService) Owned(ctx context.Context, owner common.Address) ([]models.NftData, error) {
	items, err := s.gateway.FetchMyNFTs(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("fetch owned items: %w", err)
	}
	return s.aggregate(ctx, items)
}

// aggregate joins items with their metadata by index. An empty item
// list short-circuits without issuing any URI or metadata fetches.
func (s *MarketService) aggregate(ctx context.Context, items []models.MarketItem) ([]models.NftData, error) {
	if len(items) == 0 {
		return []models.NftData{}, nil
	}

	ids := make([]*big.Int, len(items))
	for i, item := range items {
		ids[i] = item.TokenID
	}

	uris := s.gateway.TokenURIs(ctx, ids)
	metadatas := s.metadata.FetchBatch(ctx, uris)

	collection := make([]models.NftData, 0, len(items))
	for i, item := range items {
		if metadatas[i] == nil {
			s.logger.Debugw("dropping item with unresolved metadata", "tokenId", item.TokenID)
			continue
		}
		collection = append(collection, models.NftData{
			MarketItem: item,
			Metadata:   *metadatas[i],
		})
	}
	return collection, nil
}

// ListingPrice returns the contract's current listing fee
func (s *MarketService) ListingPrice(ctx context.Context) (*big.Int, error) {
	return s.gateway.GetListingPrice(ctx)
}

// Balance returns the native balance of an address
func (s *MarketService) Balance(ctx context.Context, addr common.Address) (*big.Int, error) {
	return s.gateway.BalanceAt(ctx, addr)
}
