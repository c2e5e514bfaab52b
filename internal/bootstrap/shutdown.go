package bootstrap

import (
	"context"
	"log/slog"

	"github.com/tapline-games/tapline/internal/player"
	"github.com/tapline-games/tapline/internal/server"
	"github.com/tapline-games/tapline/internal/signal"
	"github.com/tapline-games/tapline/internal/sse"
)

// ShutdownComponents holds all components that need graceful shutdown.
type ShutdownComponents struct {
	Server            *server.Server
	PlayerService     player.Service
	SignalDispatcher  *signal.Dispatcher
	CatalogSyncWorker *CatalogSyncWorker
	Hub               *sse.Hub
}

// GracefulShutdown performs graceful shutdown of all application components.
// It shuts down in the correct order:
// 1. HTTP server (stop accepting new requests)
// 2. Signal dispatcher (stop draining the inbound queue)
// 3. Player service (each owner departs, persisting its departure stamp)
// 4. Background workers and the SSE hub
//
// Errors during shutdown are logged but do not stop the shutdown sequence.
func GracefulShutdown(ctx context.Context, components ShutdownComponents) {
	slog.Info(LogMsgShuttingDownServer)

	if err := components.Server.Stop(ctx); err != nil {
		slog.Error(LogMsgServerForcedShutdown, "error", err)
	}

	// Dispatcher stops before the players so no signal lands mid-shutdown;
	// queued signals stay durable and redeliver on the next boot.
	shutdownService(ctx, ServiceNameSignal, components.SignalDispatcher)
	shutdownService(ctx, ServiceNamePlayer, components.PlayerService)

	if components.CatalogSyncWorker != nil {
		if err := components.CatalogSyncWorker.Shutdown(ctx); err != nil {
			slog.Error("Catalog sync worker shutdown failed", "error", err)
		}
	}

	if components.Hub != nil {
		components.Hub.Stop()
	}

	slog.Info(LogMsgServerStopped)
}

// shutdownService is a helper that shuts down a service and logs any errors.
type shutdownableService interface {
	Shutdown(context.Context) error
}

func shutdownService(ctx context.Context, name string, service shutdownableService) {
	if err := service.Shutdown(ctx); err != nil {
		slog.Error(name+LogMsgServiceShutdownFailed, "error", err)
	}
}
