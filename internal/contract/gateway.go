package contract

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/event"

	"github.com/CocDap/marketplace-polkavm-frontend/internal/models"
)

// Gateway is the typed read/write surface of the marketplace contract.
// Reads are side-effect free and may be re-issued freely; writes return
// a transaction that must be awaited separately with WaitMined.
type Gateway interface {
	// FetchMarketItems returns every item the contract tracks
	FetchMarketItems(ctx context.Context) ([]models.MarketItem, error)

	// FetchMyNFTs returns items owned or sold by the caller
	FetchMyNFTs(ctx context.Context, caller common.Address) ([]models.MarketItem, error)

	// TokenURI returns the metadata locator of one token
	TokenURI(ctx context.Context, tokenID *big.Int) (string, error)

	// TokenURIs resolves locators for a batch of tokens, best effort:
	// a failed read yields an empty string at that index
	TokenURIs(ctx context.Context, tokenIDs []*big.Int) []string

	// GetListingPrice returns the fee required to list or re-list
	GetListingPrice(ctx context.Context) (*big.Int, error)

	// BalanceAt returns the native balance of an address
	BalanceAt(ctx context.Context, addr common.Address) (*big.Int, error)

	// CreateToken mints and lists a new token; value must equal the listing fee
	CreateToken(opts *bind.TransactOpts, uri string, price, value *big.Int) (*types.Transaction, error)

	// Buy purchases a listed item; value must equal the item price
	Buy(opts *bind.TransactOpts, tokenID, value *big.Int) (*types.Transaction, error)

	// ResellToken relists a previously sold item; value must equal the listing fee
	ResellToken(opts *bind.TransactOpts, tokenID, price, value *big.Int) (*types.Transaction, error)

	// WaitMined blocks until the transaction is included and returns its receipt
	WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error)
}

// MarketplaceGateway is the ethclient-backed Gateway implementation
type MarketplaceGateway struct {
	client  *ethclient.Client
	address common.Address
	abi     abi.ABI
	bound   *bind.BoundContract
}

// marketItem mirrors the contract's MarketItem tuple for unpacking
type marketItem struct {
	TokenId *big.Int
	Seller  common.Address
	Owner   common.Address
	Price   *big.Int
	Sold    bool
}

// NewMarketplaceGateway dials the RPC endpoint and binds the contract
func NewMarketplaceGateway(rpcURL, contractAddr string) (*MarketplaceGateway, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}
	return NewMarketplaceGatewayWithClient(client, contractAddr)
}

// NewMarketplaceGatewayWithClient binds the contract on an existing client
func NewMarketplaceGatewayWithClient(client *ethclient.Client, contractAddr string) (*MarketplaceGateway, error) {
	parsed, err := abi.JSON(strings.NewReader(MarketplaceABI))
	if err != nil {
		return nil, fmt.Errorf("parse abi: %w", err)
	}
	address := common.HexToAddress(contractAddr)
	return &MarketplaceGateway{
		client:  client,
		address: address,
		abi:     parsed,
		bound:   bind.NewBoundContract(address, parsed, client, client, client),
	}, nil
}

// Address returns the bound contract address
func (g *MarketplaceGateway) Address() common.Address {
	return g.address
}

// call packs a view method, issues eth_call and returns the raw result
func (g *MarketplaceGateway) call(ctx context.Context, from *common.Address, method string, args ...interface{}) ([]byte, error) {
	data, err := g.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	msg := ethereum.CallMsg{
		To:   &g.address,
		Data: data,
	}
	if from != nil {
		msg.From = *from
	}

	result, err := g.client.CallContract(ctx, msg, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	return result, nil
}

// FetchMarketItems returns every item the contract tracks
func (g *MarketplaceGateway) FetchMarketItems(ctx context.Context) ([]models.MarketItem, error) {
	result, err := g.call(ctx, nil, "fetchMarketItems")
	if err != nil {
		return nil, err
	}
	return g.unpackItems("fetchMarketItems", result)
}

// FetchMyNFTs returns items owned or sold by the caller. The caller
// address is set as msg.sender of the view call.
func (g *MarketplaceGateway) FetchMyNFTs(ctx context.Context, caller common.Address) ([]models.MarketItem, error) {
	result, err := g.call(ctx, &caller, "fetchMyNFTs")
	if err != nil {
		return nil, err
	}
	return g.unpackItems("fetchMyNFTs", result)
}

func (g *MarketplaceGateway) unpackItems(method string, result []byte) ([]models.MarketItem, error) {
	var raw []marketItem
	if err := g.abi.UnpackIntoInterface(&raw, method, result); err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}

	items := make([]models.MarketItem, 0, len(raw))
	for _, it := range raw {
		items = append(items, models.MarketItem{
			TokenID: it.TokenId,
			Seller:  it.Seller,
			Owner:   it.Owner,
			Price:   it.Price,
			Sold:    it.Sold,
		})
	}
	return items, nil
}

// TokenURI returns the metadata locator of one token
func (g *MarketplaceGateway) TokenURI(ctx context.Context, tokenID *big.Int) (string, error) {
	result, err := g.call(ctx, nil, "tokenURI", tokenID)
	if err != nil {
		return "", err
	}

	var uri string
	if err := g.abi.UnpackIntoInterface(&uri, "tokenURI", result); err != nil {
		return "", fmt.Errorf("unpack tokenURI: %w", err)
	}
	return uri, nil
}

// TokenURIs resolves locators for a batch of tokens concurrently,
// preserving input order. A failed read yields an empty string at that
// index instead of aborting the batch.
func (g *MarketplaceGateway) TokenURIs(ctx context.Context, tokenIDs []*big.Int) []string {
	uris := make([]string, len(tokenIDs))

	var wg sync.WaitGroup
	for i, id := range tokenIDs {
		wg.Add(1)
		go func(i int, id *big.Int) {
			defer wg.Done()
			uri, err := g.TokenURI(ctx, id)
			if err != nil {
				return
			}
			uris[i] = uri
		}(i, id)
	}
	wg.Wait()

	return uris
}

// GetListingPrice returns the fee required to list or re-list an item
func (g *MarketplaceGateway) GetListingPrice(ctx context.Context) (*big.Int, error) {
	result, err := g.call(ctx, nil, "getListingPrice")
	if err != nil {
		return nil, err
	}

	var price *big.Int
	if err := g.abi.UnpackIntoInterface(&price, "getListingPrice", result); err != nil {
		return nil, fmt.Errorf("unpack getListingPrice: %w", err)
	}
	return price, nil
}

// BalanceAt returns the native balance of an address
func (g *MarketplaceGateway) BalanceAt(ctx context.Context, addr common.Address) (*big.Int, error) {
	return g.client.BalanceAt(ctx, addr, nil)
}

// CreateToken mints and lists a new token
func (g *MarketplaceGateway) CreateToken(opts *bind.TransactOpts, uri string, price, value *big.Int) (*types.Transaction, error) {
	return g.transact(opts, value, "createToken", uri, price)
}

// Buy purchases a listed item
func (g *MarketplaceGateway) Buy(opts *bind.TransactOpts, tokenID, value *big.Int) (*types.Transaction, error) {
	return g.transact(opts, value, "buy", tokenID)
}

// ResellToken relists a previously sold item at a new price
func (g *MarketplaceGateway) ResellToken(opts *bind.TransactOpts, tokenID, price, value *big.Int) (*types.Transaction, error) {
	return g.transact(opts, value, "resellToken", tokenID, price)
}

func (g *MarketplaceGateway) transact(opts *bind.TransactOpts, value *big.Int, method string, args ...interface{}) (*types.Transaction, error) {
	// Copy so the caller's opts are not mutated by the value assignment
	withValue := *opts
	withValue.Value = value
	return g.bound.Transact(&withValue, method, args...)
}

// WaitMined blocks until the transaction is included in a block
func (g *MarketplaceGateway) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	return bind.WaitMined(ctx, g.client, tx)
}

// SubscribeMarketEvents subscribes to every log the contract emits.
// Requires a WebSocket-capable client; used to push refresh hints to
// connected UIs.
func (g *MarketplaceGateway) SubscribeMarketEvents(ctx context.Context) (<-chan types.Log, event.Subscription, error) {
	logs := make(chan types.Log, 64)
	sub, err := g.client.SubscribeFilterLogs(ctx, ethereum.FilterQuery{
		Addresses: []common.Address{g.address},
	}, logs)
	if err != nil {
		return nil, nil, fmt.Errorf("subscribe logs: %w", err)
	}
	return logs, sub, nil
}
