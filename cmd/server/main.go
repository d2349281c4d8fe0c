package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/CocDap/marketplace-polkavm-frontend/internal/config"
	"github.com/CocDap/marketplace-polkavm-frontend/internal/contract"
	"github.com/CocDap/marketplace-polkavm-frontend/internal/handlers"
	"github.com/CocDap/marketplace-polkavm-frontend/internal/ipfs"
	"github.com/CocDap/marketplace-polkavm-frontend/internal/services"
	"github.com/CocDap/marketplace-polkavm-frontend/internal/store"
	"github.com/CocDap/marketplace-polkavm-frontend/internal/wallet"
)

func main() {
	baseLogger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer baseLogger.Sync()
	logger := baseLogger.Sugar()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalw("failed to load configuration", "error", err)
	}

	db, err := store.NewDatabase(cfg.Store.Path)
	if err != nil {
		logger.Fatalw("failed to open store", "error", err)
	}
	defer db.Close()

	sessions := store.NewSessionRepository(db)
	activity := store.NewActivityRepository(db)

	gateway, err := contract.NewMarketplaceGateway(cfg.Chain.RPCURL, cfg.Chain.ContractAddress)
	if err != nil {
		logger.Fatalw("failed to bind marketplace contract", "error", err)
	}
	logger.Infow("marketplace contract bound",
		"address", cfg.Chain.ContractAddress, "chainId", cfg.Chain.ChainID)

	resolver := ipfs.NewResolver(cfg.IPFS.Gateway, logger)
	uploader := ipfs.NewUploader(cfg.Pinata)
	if !uploader.Configured() {
		logger.Warnw("pinata credential not configured, minting is disabled")
	}

	keystore := wallet.NewKeystore(cfg.Store.KeystoreDir, cfg.Chain.ChainID)

	hub := handlers.NewHub(logger)
	go hub.Run()

	marketService := services.NewMarketService(gateway, resolver, logger)
	walletService := services.NewWalletService(keystore, sessions, cfg.Auth, logger)
	workflowService := services.NewWorkflowService(gateway, uploader, activity, hub, logger)

	// Push refresh hints when the contract emits events, WS endpoint permitting
	if cfg.Chain.WSURL != "" {
		go watchChainEvents(cfg, hub, logger)
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
	}))
	r.Use(handlers.SessionMiddleware(walletService))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Get("/market/items", handlers.GetMarketItems(marketService, resolver))
		r.Get("/market/listing-price", handlers.GetListingPrice(marketService))
		r.Get("/activity", handlers.GetActivity(activity))

		r.Post("/wallet/connect", handlers.ConnectWallet(walletService))
		r.Post("/wallet/create", handlers.CreateWallet(walletService))
		r.Post("/wallet/disconnect", handlers.DisconnectWallet(walletService))
		r.Get("/wallet/session", handlers.GetSession())

		r.Group(func(r chi.Router) {
			r.Use(handlers.RequireWallet)

			r.Get("/market/owned", handlers.GetOwnedItems(marketService, resolver))
			r.Get("/wallet/balance", handlers.GetBalance(marketService))

			r.Post("/market/buy", handlers.BuyItem(workflowService, walletService))
			r.Post("/market/mint", handlers.MintItem(workflowService, walletService))
			r.Post("/market/resell", handlers.ResellItem(workflowService, walletService))
		})
	})

	r.Get("/ws", handlers.ServeWs(hub))

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Infow("server starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalw("server failed", "error", err)
		}
	}()

	<-stop
	logger.Infow("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorw("server shutdown failed", "error", err)
	}
}

// watchChainEvents subscribes to the contract's logs over WebSocket and
// turns each one into a refresh hint for connected clients. Subscription
// failures are logged and retried; a missing WS endpoint just means
// clients rely on their own refetching.
func watchChainEvents(cfg *config.Config, hub *handlers.Hub, logger *zap.SugaredLogger) {
	for {
		wsGateway, err := contract.NewMarketplaceGateway(cfg.Chain.WSURL, cfg.Chain.ContractAddress)
		if err != nil {
			logger.Warnw("event subscription dial failed", "error", err)
			time.Sleep(30 * time.Second)
			continue
		}

		logs, sub, err := wsGateway.SubscribeMarketEvents(context.Background())
		if err != nil {
			logger.Warnw("event subscription failed", "error", err)
			time.Sleep(30 * time.Second)
			continue
		}
		logger.Infow("subscribed to contract events")

	consume:
		for {
			select {
			case err := <-sub.Err():
				logger.Warnw("event subscription dropped", "error", err)
				break consume
			case ev := <-logs:
				hub.BroadcastMarketUpdate("chain_event")
				logger.Debugw("contract event", "block", ev.BlockNumber, "tx", ev.TxHash.Hex())
			}
		}
		sub.Unsubscribe()
		time.Sleep(5 * time.Second)
	}
}
