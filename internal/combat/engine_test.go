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

func combatSnapshot(t *testing.T) *catalog.Snapshot {
	t.Helper()
	snap, err := catalog.Build(context.Background(), &catalog.RawSnapshot{
		Version: "combat-1",
		Items: []catalog.RawItem{
			{Name: "spray", Category: "attack", BaseCost: 8000, ProductionMultiplier: 0.5, ClickMultiplier: 0.5, EffectDurationSec: 300, EffectID: "effect_spray"},
			{Name: "clamp", Category: "attack", BaseCost: 30000, ProductionMultiplier: 0.25, EffectDurationSec: 180, EffectID: "effect_clamp"},
			{Name: "filter", Category: "defense", BaseCost: 6000, EffectID: "effect_filter"},
			{Name: "lock", Category: "defense", BaseCost: 22000, EffectID: "effect_lock"},
			{Name: "flight", Category: "gift", BaseCost: 1000, EffectID: "effect_flight"},
		},
		CombatRules: map[string][]string{
			"effect_spray": {"effect_filter"},
			"effect_clamp": {"effect_lock"},
		},
	})
	require.NoError(t, err)
	return snap
}

func TestApplyEffect(t *testing.T) {
	snap := combatSnapshot(t)
	engine := NewEngine()
	now := time.Now()

	t.Run("unknown effect id is rejected", func(t *testing.T) {
		st := domain.NewPlayerState("u1")
		_, err := engine.ApplyEffect(snap, st, "effect_bogus", time.Minute, "rival", "", now)
		assert.ErrorIs(t, err, domain.ErrUnknownEffect)
		assert.Empty(t, st.ActiveEffects)
	})

	t.Run("applies with explicit duration and item multipliers", func(t *testing.T) {
		st := domain.NewPlayerState("u1")
		eff, err := engine.ApplyEffect(snap, st, "effect_spray", 2*time.Minute, "rival", "Skunk Spray", now)
		require.NoError(t, err)

		assert.Equal(t, "effect_spray", eff.EffectID)
		assert.Equal(t, "rival", eff.SourceName)
		assert.Equal(t, "Skunk Spray", eff.Label)
		assert.Equal(t, now.Add(2*time.Minute), eff.Expiry)
		assert.Equal(t, 0.5, eff.ProductionMultiplier)
		assert.Len(t, st.ActiveEffects, 1)
	})

	t.Run("zero duration falls back to item duration", func(t *testing.T) {
		st := domain.NewPlayerState("u1")
		eff, err := engine.ApplyEffect(snap, st, "effect_spray", 0, "rival", "", now)
		require.NoError(t, err)
		assert.Equal(t, now.Add(300*time.Second), eff.Expiry)
		assert.Equal(t, "spray", eff.Label)
	})

	t.Run("repeat application refreshes instead of stacking", func(t *testing.T) {
		st := domain.NewPlayerState("u1")
		_, err := engine.ApplyEffect(snap, st, "effect_spray", time.Minute, "rival", "", now)
		require.NoError(t, err)

		later := now.Add(30 * time.Second)
		refreshed, err := engine.ApplyEffect(snap, st, "effect_spray", time.Minute, "rival", "", later)
		require.NoError(t, err)

		assert.Len(t, st.ActiveEffects, 1)
		assert.Equal(t, later.Add(time.Minute), refreshed.Expiry)
		assert.Equal(t, refreshed.Expiry, st.ActiveEffects["effect_spray"].Expiry)
	})

	t.Run("distinct effect ids coexist", func(t *testing.T) {
		st := domain.NewPlayerState("u1")
		_, err := engine.ApplyEffect(snap, st, "effect_spray", time.Minute, "a", "", now)
		require.NoError(t, err)
		_, err = engine.ApplyEffect(snap, st, "effect_clamp", time.Minute, "b", "", now)
		require.NoError(t, err)
		assert.Len(t, st.ActiveEffects, 2)
	})
}

func TestApplyGift(t *testing.T) {
	snap := combatSnapshot(t)
	engine := NewEngine()

	t.Run("credits the gift at level one", func(t *testing.T) {
		st := domain.NewPlayerState("u1")
		item, err := engine.ApplyGift(snap, st, "effect_flight")
		require.NoError(t, err)
		assert.Equal(t, "flight", item.Name)
		assert.Equal(t, 1, st.Level("flight"))
	})

	t.Run("redelivery stays at level one", func(t *testing.T) {
		st := domain.NewPlayerState("u1")
		_, err := engine.ApplyGift(snap, st, "effect_flight")
		require.NoError(t, err)
		item, err := engine.ApplyGift(snap, st, "effect_flight")
		require.NoError(t, err)
		assert.Equal(t, "flight", item.Name)
		assert.Equal(t, 1, st.Level("flight"))
	})

	t.Run("non gift effect id rejected", func(t *testing.T) {
		st := domain.NewPlayerState("u1")
		_, err := engine.ApplyGift(snap, st, "effect_spray")
		assert.ErrorIs(t, err, domain.ErrUnknownEffect)
	})
}
