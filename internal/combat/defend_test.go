package combat

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapline-games/tapline/internal/catalog"
	"github.com/tapline-games/tapline/internal/domain"
)

func TestTryDefend(t *testing.T) {
	snap := combatSnapshot(t)
	engine := NewEngine()
	now := time.Now()

	t.Run("unknown item", func(t *testing.T) {
		st := domain.NewPlayerState("u1")
		_, err := engine.TryDefend(snap, st, "nonexistent", now)
		assert.ErrorIs(t, err, domain.ErrItemNotFound)
	})

	t.Run("attack item is not a defense", func(t *testing.T) {
		st := domain.NewPlayerState("u1")
		st.ItemLevels["spray"] = 1
		_, err := engine.TryDefend(snap, st, "spray", now)
		assert.ErrorIs(t, err, domain.ErrNotADefense)
	})

	t.Run("no stock held", func(t *testing.T) {
		st := domain.NewPlayerState("u1")
		_, err := engine.TryDefend(snap, st, "filter", now)
		assert.ErrorIs(t, err, domain.ErrNoStock)
	})

	t.Run("no active attacks consumes item with no target", func(t *testing.T) {
		st := domain.NewPlayerState("u1")
		st.ItemLevels["filter"] = 1

		res, err := engine.TryDefend(snap, st, "filter", now)
		require.NoError(t, err)
		assert.Equal(t, DefendNoTarget, res.Outcome)
		assert.Equal(t, 0, st.Level("filter"))
	})

	t.Run("neutralizes a matching attack", func(t *testing.T) {
		st := domain.NewPlayerState("u1")
		st.ItemLevels["filter"] = 2
		_, err := engine.ApplyEffect(snap, st, "effect_spray", time.Minute, "rival", "", now)
		require.NoError(t, err)

		res, err := engine.TryDefend(snap, st, "filter", now)
		require.NoError(t, err)
		assert.Equal(t, DefendNeutralized, res.Outcome)
		assert.Equal(t, "effect_spray", res.RemovedEffectID)
		assert.Empty(t, st.ActiveEffects)
		assert.Equal(t, 1, st.Level("filter"))
	})

	t.Run("wasted when active attacks do not match", func(t *testing.T) {
		st := domain.NewPlayerState("u1")
		st.ItemLevels["lock"] = 1
		_, err := engine.ApplyEffect(snap, st, "effect_spray", time.Minute, "rival", "", now)
		require.NoError(t, err)

		res, err := engine.TryDefend(snap, st, "lock", now)
		require.NoError(t, err)
		assert.Equal(t, DefendWasted, res.Outcome)
		assert.Len(t, st.ActiveEffects, 1, "unmatched attack must survive")
		assert.Equal(t, 0, st.Level("lock"), "item is spent even when wasted")
	})

	t.Run("removes at most one matching attack, earliest expiry first", func(t *testing.T) {
		// A snapshot where the filter counters both attack classes.
		wide, err := catalog.Build(context.Background(), &catalog.RawSnapshot{
			Version: "combat-wide",
			Items: []catalog.RawItem{
				{Name: "spray", Category: "attack", BaseCost: 8000, ProductionMultiplier: 0.5, EffectDurationSec: 300, EffectID: "effect_spray"},
				{Name: "clamp", Category: "attack", BaseCost: 30000, ProductionMultiplier: 0.25, EffectDurationSec: 180, EffectID: "effect_clamp"},
				{Name: "filter", Category: "defense", BaseCost: 6000, EffectID: "effect_filter"},
			},
			CombatRules: map[string][]string{
				"effect_spray": {"effect_filter"},
				"effect_clamp": {"effect_filter"},
			},
		})
		require.NoError(t, err)

		st := domain.NewPlayerState("u1")
		st.ItemLevels["filter"] = 1

		_, err = engine.ApplyEffect(wide, st, "effect_spray", 3*time.Minute, "a", "", now)
		require.NoError(t, err)
		_, err = engine.ApplyEffect(wide, st, "effect_clamp", time.Minute, "b", "", now)
		require.NoError(t, err)

		res, err := engine.TryDefend(wide, st, "filter", now)
		require.NoError(t, err)
		assert.Equal(t, DefendNeutralized, res.Outcome)
		assert.Equal(t, "effect_clamp", res.RemovedEffectID, "earliest-expiring match goes first")
		assert.Len(t, st.ActiveEffects, 1)
	})

	t.Run("expired attacks are not targets", func(t *testing.T) {
		st := domain.NewPlayerState("u1")
		st.ItemLevels["filter"] = 1
		_, err := engine.ApplyEffect(snap, st, "effect_spray", time.Minute, "rival", "", now)
		require.NoError(t, err)

		res, err := engine.TryDefend(snap, st, "filter", now.Add(2*time.Minute))
		require.NoError(t, err)
		assert.Equal(t, DefendNoTarget, res.Outcome)
	})
}
