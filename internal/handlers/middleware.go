package handlers

import (
	"net/http"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/CocDap/marketplace-polkavm-frontend/internal/services"
)

// SessionMiddleware resolves the wallet session for every request. A
// bearer token, if present and valid, identifies an external account;
// the local keystore wallet takes precedence over it. Requests without
// either resolve as disconnected rather than being rejected, so the
// public browse endpoints stay reachable.
func SessionMiddleware(walletService *services.WalletService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var external *common.Address

			authHeader := r.Header.Get("Authorization")
			if authHeader != "" {
				parts := strings.Split(authHeader, " ")
				if len(parts) == 2 && parts[0] == "Bearer" {
					if addr, ok := walletService.VerifyToken(parts[1]); ok {
						external = &addr
					}
				}
			}

			session := walletService.Session(external)
			ctx := NewContextWithSession(r.Context(), session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireWallet rejects requests whose session resolved as disconnected
func RequireWallet(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !SessionFromContext(r.Context()).Connected() {
			http.Error(w, "A connected wallet is required", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}
