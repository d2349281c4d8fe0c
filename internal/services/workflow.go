package services

import (
	"context"
	"errors"
	"io"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/CocDap/marketplace-polkavm-frontend/internal/contract"
	"github.com/CocDap/marketplace-polkavm-frontend/internal/models"
	"github.com/CocDap/marketplace-polkavm-frontend/internal/pricing"
	"github.com/CocDap/marketplace-polkavm-frontend/internal/wallet"
)

// PinClient uploads content to the pinning service and returns ipfs://
// locators
type PinClient interface {
	Configured() bool
	PinFile(ctx context.Context, name, filename string, content io.Reader) (string, error)
	PinJSON(ctx context.Context, name string, content interface{}) (string, error)
}

// ActivityRecorder persists settled workflow results
type ActivityRecorder interface {
	Record(result models.WorkflowResult) error
}

// RefreshNotifier pushes refresh hints to connected clients after a
// successful write
type RefreshNotifier interface {
	BroadcastMarketUpdate(reason string)
}

// WorkflowService runs the three state-changing operations. Every run
// settles into exactly one WorkflowResult; validation, upload and
// signing problems settle before any transaction is submitted.
type WorkflowService struct {
	gateway  contract.Gateway
	pins     PinClient
	activity ActivityRecorder
	notifier RefreshNotifier
	logger   *zap.SugaredLogger
}

// NewWorkflowService creates a new WorkflowService
func NewWorkflowService(gateway contract.Gateway, pins PinClient, activity ActivityRecorder, notifier RefreshNotifier, logger *zap.SugaredLogger) *WorkflowService {
	return &WorkflowService{
		gateway:  gateway,
		pins:     pins,
		activity: activity,
		notifier: notifier,
		logger:   logger,
	}
}

// Buy purchases a listed item. The payment amount is read from the
// item's current on-chain listing, never from client input.
func (s *WorkflowService) Buy(ctx context.Context, signer wallet.Signer, tokenID string) models.WorkflowResult {
	id, ok := parseTokenID(tokenID)
	if !ok {
		return s.settle(models.OpBuy, tokenID, models.WorkflowResult{
			Status:  models.StatusValidationError,
			Message: "invalid token id",
		})
	}

	items, err := s.gateway.FetchMarketItems(ctx)
	if err != nil {
		return s.settle(models.OpBuy, tokenID, models.WorkflowResult{
			Status:  models.StatusPreconditionError,
			Message: "marketplace unavailable: " + err.Error(),
		})
	}

	item := findItem(items, id)
	if item == nil {
		return s.settle(models.OpBuy, tokenID, models.WorkflowResult{
			Status:  models.StatusValidationError,
			Message: "item not found",
		})
	}
	if item.Sold {
		return s.settle(models.OpBuy, tokenID, models.WorkflowResult{
			Status:  models.StatusValidationError,
			Message: "item is no longer listed",
		})
	}
	if item.Seller == signer.Address() {
		return s.settle(models.OpBuy, tokenID, models.WorkflowResult{
			Status:  models.StatusValidationError,
			Message: "cannot buy your own listing",
		})
	}

	return s.submit(ctx, models.OpBuy, tokenID, signer, func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return s.gateway.Buy(opts, id, item.Price)
	})
}

// Mint uploads the image and metadata, then mints and lists the token.
// Nothing is pinned before validation passes, and nothing is submitted
// before both pins succeed.
func (s *WorkflowService) Mint(ctx context.Context, signer wallet.Signer, req models.MintRequest) models.WorkflowResult {
	if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Description) == "" {
		return s.settle(models.OpMint, "", models.WorkflowResult{
			Status:  models.StatusValidationError,
			Message: "name and description are required",
		})
	}
	priceWei, err := pricing.ParseAmount(req.Price)
	if err != nil {
		return s.settle(models.OpMint, "", models.WorkflowResult{
			Status:  models.StatusValidationError,
			Message: "invalid price: " + err.Error(),
		})
	}
	if req.Image == nil {
		return s.settle(models.OpMint, "", models.WorkflowResult{
			Status:  models.StatusValidationError,
			Message: "an image file is required",
		})
	}

	if !s.pins.Configured() {
		return s.settle(models.OpMint, "", models.WorkflowResult{
			Status:  models.StatusPreconditionError,
			Message: "pinning credentials are not configured",
		})
	}
	listingFee, err := s.gateway.GetListingPrice(ctx)
	if err != nil {
		return s.settle(models.OpMint, "", models.WorkflowResult{
			Status:  models.StatusPreconditionError,
			Message: "listing price unavailable: " + err.Error(),
		})
	}

	imageURI, err := s.pins.PinFile(ctx, req.Name, req.ImageName, req.Image)
	if err != nil {
		return s.settle(models.OpMint, "", models.WorkflowResult{
			Status:  models.StatusUploadFailed,
			Message: "image upload failed: " + err.Error(),
		})
	}
	tokenURI, err := s.pins.PinJSON(ctx, req.Name, models.NftMetadata{
		Name:        req.Name,
		Description: req.Description,
		Image:       imageURI,
	})
	if err != nil {
		return s.settle(models.OpMint, "", models.WorkflowResult{
			Status:  models.StatusUploadFailed,
			Message: "metadata upload failed: " + err.Error(),
		})
	}

	return s.submit(ctx, models.OpMint, "", signer, func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return s.gateway.CreateToken(opts, tokenURI, priceWei, listingFee)
	})
}

// Resell relists a previously purchased item at a new price. The caller
// must currently own the token; ownership is read from the chain, not
// trusted from the request.
func (s *WorkflowService) Resell(ctx context.Context, signer wallet.Signer, req models.ResellRequest) models.WorkflowResult {
	id, ok := parseTokenID(req.TokenID)
	if !ok {
		return s.settle(models.OpResell, req.TokenID, models.WorkflowResult{
			Status:  models.StatusValidationError,
			Message: "invalid token id",
		})
	}
	priceWei, err := pricing.ParseAmount(req.Price)
	if err != nil {
		return s.settle(models.OpResell, req.TokenID, models.WorkflowResult{
			Status:  models.StatusValidationError,
			Message: "invalid price: " + err.Error(),
		})
	}

	owned, err := s.gateway.FetchMyNFTs(ctx, signer.Address())
	if err != nil {
		return s.settle(models.OpResell, req.TokenID, models.WorkflowResult{
			Status:  models.StatusPreconditionError,
			Message: "marketplace unavailable: " + err.Error(),
		})
	}
	item := findItem(owned, id)
	if item == nil {
		return s.settle(models.OpResell, req.TokenID, models.WorkflowResult{
			Status:  models.StatusValidationError,
			Message: "token is not owned by this account",
		})
	}
	if !item.Sold {
		return s.settle(models.OpResell, req.TokenID, models.WorkflowResult{
			Status:  models.StatusValidationError,
			Message: "token is already listed",
		})
	}

	listingFee, err := s.gateway.GetListingPrice(ctx)
	if err != nil {
		return s.settle(models.OpResell, req.TokenID, models.WorkflowResult{
			Status:  models.StatusPreconditionError,
			Message: "listing price unavailable: " + err.Error(),
		})
	}

	return s.submit(ctx, models.OpResell, req.TokenID, signer, func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return s.gateway.ResellToken(opts, id, priceWei, listingFee)
	})
}

// submit signs, sends and awaits one write call, then settles the result
func (s *WorkflowService) submit(ctx context.Context, op models.WorkflowOp, tokenID string, signer wallet.Signer, send func(*bind.TransactOpts) (*types.Transaction, error)) models.WorkflowResult {
	opts, err := signer.TransactOpts(ctx)
	if err != nil {
		return s.settle(op, tokenID, models.WorkflowResult{
			Status:  models.StatusFailed,
			Message: "prepare transaction: " + err.Error(),
		})
	}

	tx, err := send(opts)
	if err != nil {
		if errors.Is(err, wallet.ErrSignatureDenied) {
			return s.settle(op, tokenID, models.WorkflowResult{
				Status:  models.StatusCancelled,
				Message: "signature request declined",
			})
		}
		return s.settle(op, tokenID, models.WorkflowResult{
			Status:  models.StatusFailed,
			Message: "submit transaction: " + err.Error(),
		})
	}

	receipt, err := s.gateway.WaitMined(ctx, tx)
	if err != nil {
		return s.settle(op, tokenID, models.WorkflowResult{
			Status:  models.StatusFailed,
			TxHash:  tx.Hash().Hex(),
			Message: "await confirmation: " + err.Error(),
		})
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return s.settle(op, tokenID, models.WorkflowResult{
			Status:  models.StatusReverted,
			TxHash:  tx.Hash().Hex(),
			Message: "transaction reverted on chain",
		})
	}

	return s.settle(op, tokenID, models.WorkflowResult{
		Status: models.StatusSuccess,
		TxHash: tx.Hash().Hex(),
	})
}

// settle stamps the result, records it and, on success, notifies
// connected clients that listings changed
func (s *WorkflowService) settle(op models.WorkflowOp, tokenID string, result models.WorkflowResult) models.WorkflowResult {
	result.ID = uuid.NewString()
	result.Op = op
	if result.TokenID == "" {
		result.TokenID = tokenID
	}
	result.SettledAt = time.Now().UTC()

	if err := s.activity.Record(result); err != nil {
		s.logger.Errorw("failed to record activity", "op", op, "error", err)
	}
	s.logger.Infow("workflow settled",
		"op", op, "status", result.Status, "tokenId", result.TokenID, "txHash", result.TxHash)

	if result.Status == models.StatusSuccess && s.notifier != nil {
		s.notifier.BroadcastMarketUpdate(string(op))
	}
	return result
}

func parseTokenID(raw string) (*big.Int, bool) {
	id, ok := new(big.Int).SetString(strings.TrimSpace(raw), 10)
	if !ok || id.Sign() <= 0 {
		return nil, false
	}
	return id, true
}

func findItem(items []models.MarketItem, tokenID *big.Int) *models.MarketItem {
	for i := range items {
		if items[i].TokenID != nil && items[i].TokenID.Cmp(tokenID) == 0 {
			return &items[i]
		}
	}
	return nil
}
