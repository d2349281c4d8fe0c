package handlers

import (
	"context"

	"github.com/CocDap/marketplace-polkavm-frontend/internal/models"
)

// Context keys
type contextKey string

const (
	// SessionKey is the key for the resolved wallet session in the context
	SessionKey contextKey = "walletSession"
)

// NewContextWithSession adds a wallet session to the context
func NewContextWithSession(ctx context.Context, session models.WalletSession) context.Context {
	return context.WithValue(ctx, SessionKey, session)
}

// SessionFromContext extracts the wallet session from the context. A
// request that never passed the session middleware resolves as
// disconnected.
func SessionFromContext(ctx context.Context) models.WalletSession {
	session, ok := ctx.Value(SessionKey).(models.WalletSession)
	if !ok {
		return models.WalletSession{Mode: models.WalletDisconnected}
	}
	return session
}
