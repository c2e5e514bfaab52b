package bootstrap

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapline-games/tapline/internal/catalog"
	"github.com/tapline-games/tapline/internal/combat"
	"github.com/tapline-games/tapline/internal/economy"
	"github.com/tapline-games/tapline/internal/event"
	"github.com/tapline-games/tapline/internal/notification"
	"github.com/tapline-games/tapline/internal/player"
	"github.com/tapline-games/tapline/internal/settlement"
	"github.com/tapline-games/tapline/internal/sse"
)

func buildSnapshot(t *testing.T, version string, notices []catalog.RawNotice) *catalog.Snapshot {
	t.Helper()
	snap, err := catalog.Build(context.Background(), &catalog.RawSnapshot{
		Version: version,
		Items: []catalog.RawItem{
			{Name: "kettle", Category: "production", BaseCost: 100, ProductionRate: 10},
		},
		Notices: notices,
	})
	require.NoError(t, err)
	return snap
}

func TestCatalogRefreshTriggersRuleEvaluation(t *testing.T) {
	ctx := context.Background()

	store := catalog.NewStore()
	store.Swap(buildSnapshot(t, "v1", nil))

	bus := event.NewMemoryBus()
	notices := notification.NewFakeRepository()

	econ := economy.NewEngine()
	players := player.NewManager(player.Deps{
		Catalog:      store,
		Economy:      econ,
		Combat:       combat.NewEngine(),
		Settle:       settlement.NewCalculator(econ),
		Notifier:     notification.NewService(notices, bus),
		Repo:         player.NewFakeRepository(),
		Bus:          bus,
		TickInterval: time.Hour,
	})
	t.Cleanup(func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = players.Shutdown(shutdownCtx)
	})

	hub := sse.NewHub()
	hub.Start()
	t.Cleanup(hub.Stop)

	RegisterEventHandlers(bus, hub, players)

	// A live owner, idle since its first click.
	_, err := players.Click(ctx, "alice")
	require.NoError(t, err)

	// Refresh swaps in a snapshot carrying a rule alice already satisfies.
	store.Swap(buildSnapshot(t, "v2", []catalog.RawNotice{
		{ID: "welcome", Title: "Welcome", Message: "Hello", ConditionType: "Direct"},
	}))
	require.NoError(t, bus.Publish(ctx, event.Event{
		Version: event.EventSchemaVersion,
		Type:    event.CatalogRefreshed,
		Payload: "v2",
	}))

	shown, err := notices.GetShown(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, shown["welcome"], "refresh evaluates rules for live owners")
}
