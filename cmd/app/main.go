package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tapline-games/tapline/internal/bootstrap"
	"github.com/tapline-games/tapline/internal/catalog"
	"github.com/tapline-games/tapline/internal/config"
	"github.com/tapline-games/tapline/internal/database"
	"github.com/tapline-games/tapline/internal/economy"
	"github.com/tapline-games/tapline/internal/event"
	"github.com/tapline-games/tapline/internal/handler"
	"github.com/tapline-games/tapline/internal/notification"
	"github.com/tapline-games/tapline/internal/player"
	"github.com/tapline-games/tapline/internal/presence"
	"github.com/tapline-games/tapline/internal/server"
	"github.com/tapline-games/tapline/internal/settlement"
	"github.com/tapline-games/tapline/internal/sse"

	"github.com/tapline-games/tapline/internal/combat"
	signalqueue "github.com/tapline-games/tapline/internal/signal"
)

// @title Tapline API
// @version 1.0
// @description Rules engine for the Tapline incremental game: economy, combat
// @description effects, presence bonuses, offline settlement and notifications.
// @BasePath /api/v1
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logFile, err := bootstrap.SetupLogger(cfg)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}
	defer logFile.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dbPool, err := database.NewPool(cfg.GetDBConnString(), database.DefaultMaxConnections, database.DefaultMaxIdleTime, database.DefaultMaxLifetime)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()

	handler.InitValidator()

	repos := bootstrap.InitializeRepositories(dbPool)
	eventBus := event.NewMemoryBus()

	// Catalog: seed from the local file, then keep syncing in the background.
	catalogStore := catalog.NewStore()
	catalogService := catalog.NewService(catalogStore, catalog.FileSource{Path: cfg.CatalogPath}, eventBus,
		catalog.Defaults{PriceMultiplier: cfg.PriceMultiplier, BaseClickValue: cfg.BaseClickValue})
	if err := bootstrap.SyncCatalog(ctx, catalogService); err != nil {
		slog.Error("Failed to load catalog", "error", err)
		os.Exit(1)
	}
	syncWorker := bootstrap.NewCatalogSyncWorker(catalogService, cfg.CatalogSyncInterval)
	syncWorker.Start(ctx)

	// Domain engines and services.
	economyEngine := economy.NewEngine()
	combatEngine := combat.NewEngine()
	settleCalc := settlement.NewCalculator(economyEngine)
	presenceService := presence.NewService(repos.Group)
	notifyService := notification.NewService(repos.Notification, eventBus)

	playerService := player.NewManager(player.Deps{
		Catalog:      catalogStore,
		Economy:      economyEngine,
		Combat:       combatEngine,
		Settle:       settleCalc,
		Presence:     presenceService,
		Notifier:     notifyService,
		Repo:         repos.Player,
		Bus:          eventBus,
		TickInterval: cfg.TickInterval,
		Now:          time.Now,
	})

	dispatcher := signalqueue.NewDispatcher(repos.Signal, playerService, cfg.SignalPollInterval)

	hub := sse.NewHub()
	hub.Start()
	bootstrap.RegisterEventHandlers(eventBus, hub, playerService)

	srv := server.NewServer(cfg.Port, cfg.APIKey, cfg.TrustedProxies, dbPool, playerService, presenceService, catalogService, catalogStore, dispatcher, hub)

	serverErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	case sig := <-quit:
		slog.Info("Shutdown signal received", "signal", sig)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	bootstrap.GracefulShutdown(shutdownCtx, bootstrap.ShutdownComponents{
		Server:            srv,
		PlayerService:     playerService,
		SignalDispatcher:  dispatcher,
		CatalogSyncWorker: syncWorker,
		Hub:               hub,
	})
}
