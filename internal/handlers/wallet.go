package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/CocDap/marketplace-polkavm-frontend/internal/models"
	"github.com/CocDap/marketplace-polkavm-frontend/internal/pricing"
	"github.com/CocDap/marketplace-polkavm-frontend/internal/services"
)

// ConnectWallet handles connecting an external wallet account
func ConnectWallet(walletService *services.WalletService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.ConnectRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		token, err := walletService.ConnectExternal(req.Address)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(token)
	}
}

// CreateWallet handles creating the passphrase-protected local wallet
func CreateWallet(walletService *services.WalletService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.CreateWalletRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}

		session, err := walletService.CreateLocal(req.Passphrase)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(session)
	}
}

// DisconnectWallet handles forgetting the local wallet selection
func DisconnectWallet(walletService *services.WalletService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := walletService.DisconnectLocal(); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{
			"message": "Wallet disconnected",
		})
	}
}

// GetSession handles retrieving the resolved session state
func GetSession() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(SessionFromContext(r.Context()))
	}
}

// GetBalance handles retrieving the session account's native balance
func GetBalance(marketService *services.MarketService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := SessionFromContext(r.Context())

		balance, err := marketService.Balance(r.Context(), session.Address)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(models.BalanceResponse{
			Address: session.Address.Hex(),
			Wei:     balance.String(),
			Display: pricing.Display(balance),
		})
	}
}
