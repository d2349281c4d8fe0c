package models

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// WalletMode identifies which kind of wallet backs the current session
type WalletMode string

const (
	WalletDisconnected WalletMode = "disconnected"
	WalletLocal        WalletMode = "local"
	WalletExternal     WalletMode = "external"
)

// WalletSession is the closed three-way session state resolved once per
// request: disconnected, local (passkey-style keystore wallet) or an
// externally connected account. The local wallet takes precedence when
// both exist.
type WalletSession struct {
	Mode    WalletMode     `json:"mode"`
	Address common.Address `json:"address"`
}

// Connected reports whether an account is available for the session
func (s WalletSession) Connected() bool {
	return s.Mode != WalletDisconnected
}

// AuthToken represents the session token response
type AuthToken struct {
	Token     string        `json:"token"`
	ExpiresAt time.Time     `json:"expires_at"`
	Session   WalletSession `json:"session"`
}

// ConnectRequest represents a request to connect an external wallet
type ConnectRequest struct {
	Address string `json:"address"`
}

// CreateWalletRequest represents a request to create the local wallet
type CreateWalletRequest struct {
	Passphrase string `json:"passphrase"`
}

// BalanceResponse carries the native balance of the session address
type BalanceResponse struct {
	Address string `json:"address"`
	Wei     string `json:"wei"`
	Display string `json:"display"`
}
