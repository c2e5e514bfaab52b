package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/tapline-games/tapline/internal/catalog"
)

// SyncCatalog performs the initial catalog load. A failure here is fatal:
// without a catalog generation the engines have nothing to price or unlock.
func SyncCatalog(ctx context.Context, svc catalog.Service) error {
	if err := svc.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to load initial catalog: %w", err)
	}

	snap := svc.Snapshot()
	slog.Info(LogMsgInitialCatalogLoad,
		"version", snap.Version,
		"items", len(snap.Items),
		"acts", len(snap.Acts))
	return nil
}

// CatalogSyncWorker periodically re-reads the catalog source and swaps in a
// new snapshot. Refresh failures keep the previous generation active.
type CatalogSyncWorker struct {
	svc      catalog.Service
	interval time.Duration
	stop     chan struct{}
	done     chan struct{}
}

// NewCatalogSyncWorker creates the periodic sync worker.
func NewCatalogSyncWorker(svc catalog.Service, interval time.Duration) *CatalogSyncWorker {
	return &CatalogSyncWorker{
		svc:      svc,
		interval: interval,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the worker goroutine.
func (w *CatalogSyncWorker) Start(ctx context.Context) {
	go func() {
		defer close(w.done)

		ticker := time.NewTicker(w.interval)
		defer ticker.Stop()

		slog.Info(LogMsgCatalogSyncStarted, "interval", w.interval)
		for {
			select {
			case <-w.stop:
				slog.Info(LogMsgCatalogSyncStopped)
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := w.svc.Refresh(ctx); err != nil {
					slog.Warn(LogMsgCatalogSyncFailed, "error", err)
				}
			}
		}
	}()
}

// Shutdown stops the worker and waits for its goroutine to exit.
func (w *CatalogSyncWorker) Shutdown(ctx context.Context) error {
	close(w.stop)
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
