package catalog

import (
	"context"
	"fmt"

	"github.com/tapline-games/tapline/internal/event"
	"github.com/tapline-games/tapline/internal/logger"
	"github.com/tapline-games/tapline/internal/metrics"
)

// Service owns the snapshot store and refreshes it from a Source. A failed
// refresh keeps the previous known-good generation.
type Service interface {
	Refresh(ctx context.Context) error
	Snapshot() *Snapshot
}

// Defaults are the deployment-local economy fallbacks, layered under the
// snapshot's own config: a value the snapshot sets wins, an omitted one takes
// the local fallback, and the package constants remain the last resort.
type Defaults struct {
	PriceMultiplier float64
	BaseClickValue  int64
}

type service struct {
	store  *Store
	source Source
	bus    event.Bus
	defs   Defaults
}

// NewService creates a catalog service over the given source
func NewService(store *Store, source Source, bus event.Bus, defs Defaults) Service {
	return &service{store: store, source: source, bus: bus, defs: defs}
}

func (s *service) Snapshot() *Snapshot {
	return s.store.Snapshot()
}

// Refresh pulls a snapshot from the source and swaps it in atomically. Every
// refresh is a full replacement; on any failure the old snapshot stays.
func (s *service) Refresh(ctx context.Context) error {
	log := logger.FromContext(ctx)

	data, err := s.source.Fetch(ctx)
	if err != nil {
		log.Warn(LogMsgSnapshotRejected, "error", err)
		return fmt.Errorf("catalog fetch failed: %w", err)
	}

	raw, err := Parse(data)
	if err != nil {
		log.Warn(LogMsgSnapshotRejected, "error", err)
		return err
	}
	s.applyDefaults(raw)

	snap, err := Build(ctx, raw)
	if err != nil {
		log.Warn(LogMsgSnapshotRejected, "error", err)
		return err
	}

	s.store.Swap(snap)
	metrics.CatalogRefreshes.Inc()
	log.Info(LogMsgSnapshotLoaded,
		"version", snap.Version,
		"items", len(snap.Items),
		"acts", len(snap.Acts),
		"rules", len(snap.Rules),
		"notifications", len(snap.Notices))

	if s.bus != nil {
		if err := s.bus.Publish(ctx, event.Event{
			Version: event.EventSchemaVersion,
			Type:    event.CatalogRefreshed,
			Payload: snap.Version,
		}); err != nil {
			log.Warn("Catalog refresh event publish failed", "error", err)
		}
	}

	return nil
}

// applyDefaults fills config values the snapshot omitted from the local
// fallbacks. Build still guards with the package constants afterwards.
func (s *service) applyDefaults(raw *RawSnapshot) {
	if raw.Config == nil {
		raw.Config = &GlobalConfig{}
	}
	if raw.Config.PriceMultiplier <= 1 && s.defs.PriceMultiplier > 1 {
		raw.Config.PriceMultiplier = s.defs.PriceMultiplier
	}
	if raw.Config.BaseClickValue <= 0 && s.defs.BaseClickValue > 0 {
		raw.Config.BaseClickValue = s.defs.BaseClickValue
	}
}
