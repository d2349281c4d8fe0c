// Package wallet holds the signing side of the wallet session: a
// passphrase-protected keystore standing in for the passkey-derived
// local wallet, and the Signer abstraction write workflows run against.
package wallet

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

var (
	// ErrSignatureDenied means the signature request was refused; the
	// workflow settles as user-cancelled, not as a generic failure
	ErrSignatureDenied = errors.New("signature request denied")

	// ErrNoSigner means no key for the requested address is available
	// on this host
	ErrNoSigner = errors.New("no signer available for address")
)

// Signer signs transactions for one account
type Signer interface {
	// Address returns the account the signer acts for
	Address() common.Address

	// TransactOpts returns bind options whose Signer callback signs
	// with this account, or refuses with ErrSignatureDenied
	TransactOpts(ctx context.Context) (*bind.TransactOpts, error)
}

// Keystore wraps the encrypted key directory holding local wallet
// accounts
type Keystore struct {
	ks      *keystore.KeyStore
	chainID *big.Int
}

// NewKeystore opens (or creates) the key directory
func NewKeystore(dir string, chainID int64) *Keystore {
	return &Keystore{
		ks:      keystore.NewKeyStore(dir, keystore.StandardScryptN, keystore.StandardScryptP),
		chainID: big.NewInt(chainID),
	}
}

// Create generates a new passphrase-protected account
func (k *Keystore) Create(passphrase string) (common.Address, error) {
	account, err := k.ks.NewAccount(passphrase)
	if err != nil {
		return common.Address{}, fmt.Errorf("create account: %w", err)
	}
	return account.Address, nil
}

// Has reports whether a key for the address exists in the directory
func (k *Keystore) Has(addr common.Address) bool {
	return k.ks.HasAddress(addr)
}

// Signer returns a Signer for the address. The passphrase is checked
// lazily at signing time, so a wrong or withheld passphrase surfaces as
// ErrSignatureDenied before anything reaches the chain.
func (k *Keystore) Signer(addr common.Address, passphrase string) (Signer, error) {
	if !k.ks.HasAddress(addr) {
		return nil, ErrNoSigner
	}
	return &keystoreSigner{
		ks:         k.ks,
		account:    accounts.Account{Address: addr},
		passphrase: passphrase,
		chainID:    k.chainID,
	}, nil
}

type keystoreSigner struct {
	ks         *keystore.KeyStore
	account    accounts.Account
	passphrase string
	chainID    *big.Int
}

func (s *keystoreSigner) Address() common.Address {
	return s.account.Address
}

func (s *keystoreSigner) TransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	return &bind.TransactOpts{
		From:    s.account.Address,
		Context: ctx,
		Signer: func(addr common.Address, tx *types.Transaction) (*types.Transaction, error) {
			if addr != s.account.Address {
				return nil, bind.ErrNotAuthorized
			}
			signed, err := s.ks.SignTxWithPassphrase(s.account, s.passphrase, tx, s.chainID)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrSignatureDenied, err)
			}
			return signed, nil
		},
	}, nil
}
