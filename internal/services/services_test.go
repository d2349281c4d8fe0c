package services

import (
	"context"
	"io"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/CocDap/marketplace-polkavm-frontend/internal/models"
)

func testLogger() *zap.SugaredLogger {
	return zap.NewNop().Sugar()
}

// fakeGateway is an in-memory Gateway for service tests
type fakeGateway struct {
	mu sync.Mutex

	items      []models.MarketItem
	owned      []models.MarketItem
	uris       map[string]string
	listingFee *big.Int

	itemsErr error
	feeErr   error
	txErr    error
	waitErr  error
	reverted bool

	lastCaller common.Address
	uriCalls   int

	lastMethod string
	lastValue  *big.Int
	lastPrice  *big.Int
	lastURI    string
	txCount    int
}

func (f *fakeGateway) FetchMarketItems(ctx context.Context) ([]models.MarketItem, error) {
	if f.itemsErr != nil {
		return nil, f.itemsErr
	}
	return f.items, nil
}

func (f *fakeGateway) FetchMyNFTs(ctx context.Context, caller common.Address) ([]models.MarketItem, error) {
	f.lastCaller = caller
	if f.itemsErr != nil {
		return nil, f.itemsErr
	}
	return f.owned, nil
}

func (f *fakeGateway) TokenURI(ctx context.Context, tokenID *big.Int) (string, error) {
	return f.uris[tokenID.String()], nil
}

func (f *fakeGateway) TokenURIs(ctx context.Context, tokenIDs []*big.Int) []string {
	f.mu.Lock()
	f.uriCalls++
	f.mu.Unlock()

	uris := make([]string, len(tokenIDs))
	for i, id := range tokenIDs {
		uris[i] = f.uris[id.String()]
	}
	return uris
}

func (f *fakeGateway) GetListingPrice(ctx context.Context) (*big.Int, error) {
	if f.feeErr != nil {
		return nil, f.feeErr
	}
	return f.listingFee, nil
}

func (f *fakeGateway) BalanceAt(ctx context.Context, addr common.Address) (*big.Int, error) {
	return big.NewInt(0), nil
}

func (f *fakeGateway) CreateToken(opts *bind.TransactOpts, uri string, price, value *big.Int) (*types.Transaction, error) {
	return f.transact("createToken", uri, price, value)
}

func (f *fakeGateway) Buy(opts *bind.TransactOpts, tokenID, value *big.Int) (*types.Transaction, error) {
	return f.transact("buy", "", nil, value)
}

func (f *fakeGateway) ResellToken(opts *bind.TransactOpts, tokenID, price, value *big.Int) (*types.Transaction, error) {
	return f.transact("resellToken", "", price, value)
}

func (f *fakeGateway) transact(method, uri string, price, value *big.Int) (*types.Transaction, error) {
	f.lastMethod = method
	f.lastURI = uri
	f.lastPrice = price
	f.lastValue = value
	if f.txErr != nil {
		return nil, f.txErr
	}
	f.txCount++
	to := common.HexToAddress("0x1")
	return types.NewTx(&types.LegacyTx{
		Nonce:    uint64(f.txCount),
		To:       &to,
		Value:    value,
		Gas:      21000,
		GasPrice: big.NewInt(1),
	}), nil
}

func (f *fakeGateway) WaitMined(ctx context.Context, tx *types.Transaction) (*types.Receipt, error) {
	if f.waitErr != nil {
		return nil, f.waitErr
	}
	status := types.ReceiptStatusSuccessful
	if f.reverted {
		status = types.ReceiptStatusFailed
	}
	return &types.Receipt{Status: status, TxHash: tx.Hash()}, nil
}

// fakeMetadata serves canned metadata by URI
type fakeMetadata struct {
	docs  map[string]*models.NftMetadata
	calls int
}

func (f *fakeMetadata) FetchBatch(ctx context.Context, uris []string) []*models.NftMetadata {
	f.calls++
	out := make([]*models.NftMetadata, len(uris))
	for i, uri := range uris {
		out[i] = f.docs[uri]
	}
	return out
}

// fakePins records pin calls and returns fixed locators
type fakePins struct {
	unconfigured bool
	fileErr      error
	jsonErr      error
	fileURI      string
	jsonURI      string
	jsonPinned   interface{}
}

func (f *fakePins) Configured() bool { return !f.unconfigured }

func (f *fakePins) PinFile(ctx context.Context, name, filename string, content io.Reader) (string, error) {
	if f.fileErr != nil {
		return "", f.fileErr
	}
	return f.fileURI, nil
}

func (f *fakePins) PinJSON(ctx context.Context, name string, content interface{}) (string, error) {
	if f.jsonErr != nil {
		return "", f.jsonErr
	}
	f.jsonPinned = content
	return f.jsonURI, nil
}

// fakeRecorder collects settled results
type fakeRecorder struct {
	results []models.WorkflowResult
}

func (f *fakeRecorder) Record(result models.WorkflowResult) error {
	f.results = append(f.results, result)
	return nil
}

// fakeNotifier collects refresh hints
type fakeNotifier struct {
	reasons []string
}

func (f *fakeNotifier) BroadcastMarketUpdate(reason string) {
	f.reasons = append(f.reasons, reason)
}

// fakeSigner signs nothing but satisfies the workflow surface
type fakeSigner struct {
	addr common.Address
}

func (f fakeSigner) Address() common.Address { return f.addr }

func (f fakeSigner) TransactOpts(ctx context.Context) (*bind.TransactOpts, error) {
	return &bind.TransactOpts{From: f.addr, Context: ctx}, nil
}

// fakeSessions is an in-memory SessionStore
type fakeSessions struct {
	address string
	stored  bool
}

func (f *fakeSessions) SaveLocalAddress(address string) error {
	f.address = address
	f.stored = true
	return nil
}

func (f *fakeSessions) LocalAddress() (string, bool, error) {
	return f.address, f.stored, nil
}

func (f *fakeSessions) ClearLocalAddress() error {
	f.address = ""
	f.stored = false
	return nil
}
