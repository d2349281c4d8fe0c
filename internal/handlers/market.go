package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/CocDap/marketplace-polkavm-frontend/internal/ipfs"
	"github.com/CocDap/marketplace-polkavm-frontend/internal/models"
	"github.com/CocDap/marketplace-polkavm-frontend/internal/pricing"
	"github.com/CocDap/marketplace-polkavm-frontend/internal/services"
)

// GetMarketItems handles retrieving the marketplace listings
func GetMarketItems(marketService *services.MarketService, resolver *ipfs.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		collection, err := marketService.Marketplace(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}

		writeMarketList(w, collection, resolver)
	}
}

// GetOwnedItems handles retrieving the session account's items
func GetOwnedItems(marketService *services.MarketService, resolver *ipfs.Resolver) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := SessionFromContext(r.Context())

		collection, err := marketService.Owned(r.Context(), session.Address)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}

		writeMarketList(w, collection, resolver)
	}
}

// GetListingPrice handles retrieving the contract's listing fee
func GetListingPrice(marketService *services.MarketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fee, err := marketService.ListingPrice(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.ListingPriceResponse{
			Wei:     fee.String(),
			Display: pricing.Display(fee),
		})
	}
}

func writeMarketList(w http.ResponseWriter, collection []models.NftData, resolver *ipfs.Resolver) {
	items := make([]models.MarketItemView, 0, len(collection))
	for _, data := range collection {
		items = append(items, toMarketItemView(data, resolver))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(models.MarketListResponse{
		Items:      items,
		TotalCount: len(items),
	})
}

func toMarketItemView(data models.NftData, resolver *ipfs.Resolver) models.MarketItemView {
	return models.MarketItemView{
		TokenID:      data.TokenID.String(),
		Seller:       data.Seller.Hex(),
		Owner:        data.Owner.Hex(),
		PriceWei:     data.Price.String(),
		PriceDisplay: pricing.Display(data.Price),
		Sold:         data.Sold,
		Metadata:     data.Metadata,
		ImageURL:     resolver.Resolve(data.Metadata.Image),
	}
}
