package economy

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapline-games/tapline/internal/catalog"
	"github.com/tapline-games/tapline/internal/domain"
)

func testSnapshot(t testing.TB) *catalog.Snapshot {
	t.Helper()
	snap, err := catalog.Build(context.Background(), &catalog.RawSnapshot{
		Version: "test-1",
		Items: []catalog.RawItem{
			{Name: "kettle", Category: "production", Act: 1, BaseCost: 100, ProductionRate: 1.0},
			{Name: "fermenter", Category: "production", Act: 1, BaseCost: 750, ProductionRate: 6.0},
			{Name: "pump", Category: "click_tool", Act: 1, BaseCost: 50, ClickBonus: 1},
			{Name: "tap", Category: "click_tool", Act: 1, BaseCost: 400, ClickBonus: 5},
			{Name: "malt_contract", Category: "upgrade", Act: 1, BaseCost: 2500, ProductionMultiplier: 2.0, RequiredItem: "kettle", RequiredItemCount: 10},
			{Name: "taproom", Category: "production", Act: 2, BaseCost: 20000, ProductionRate: 90.0},
			{Name: "spray", Category: "attack", Act: 2, BaseCost: 8000, ProductionMultiplier: 0.5, ClickMultiplier: 0.5, EffectDurationSec: 300, EffectID: "effect_spray"},
			{Name: "filter", Category: "defense", Act: 2, BaseCost: 6000, EffectID: "effect_filter"},
			{Name: "flight", Category: "gift", Act: 1, BaseCost: 1000, EffectID: "effect_flight"},
		},
		Acts: []catalog.RawAct{
			{ID: 1, Title: "Garage"},
			{ID: 2, Title: "Taproom"},
		},
		CombatRules: map[string][]string{"effect_spray": {"effect_filter"}},
		Config:      &catalog.GlobalConfig{PriceMultiplier: 1.2, BaseClickValue: 1},
	})
	require.NoError(t, err)
	return snap
}

func TestProductionRate(t *testing.T) {
	snap := testSnapshot(t)
	engine := NewEngine()
	now := time.Now()

	t.Run("no items means zero rate", func(t *testing.T) {
		st := domain.NewPlayerState("u1")
		assert.Equal(t, 0.0, engine.ProductionRate(snap, st, Modifiers{}, now))
	})

	t.Run("sums count times rate per item", func(t *testing.T) {
		st := domain.NewPlayerState("u1")
		st.ItemLevels["kettle"] = 3
		st.ItemLevels["fermenter"] = 2
		assert.InDelta(t, 3*1.0+2*6.0, engine.ProductionRate(snap, st, Modifiers{}, now), 1e-9)
	})

	t.Run("upgrade multiplies only its required item", func(t *testing.T) {
		st := domain.NewPlayerState("u1")
		st.ItemLevels["kettle"] = 10
		st.ItemLevels["fermenter"] = 1
		st.ItemLevels["malt_contract"] = 1
		// kettle contribution doubled, fermenter untouched
		assert.InDelta(t, 10*1.0*2.0+6.0, engine.ProductionRate(snap, st, Modifiers{}, now), 1e-9)
	})

	t.Run("attack effect halves production until expiry", func(t *testing.T) {
		st := domain.NewPlayerState("u1")
		st.ItemLevels["kettle"] = 4
		st.ActiveEffects["effect_spray"] = domain.ActiveEffect{
			EffectID:             "effect_spray",
			Expiry:               now.Add(time.Minute),
			ProductionMultiplier: 0.5,
			ClickMultiplier:      0.5,
		}
		assert.InDelta(t, 2.0, engine.ProductionRate(snap, st, Modifiers{}, now), 1e-9)

		// Past expiry the effect must stop contributing.
		assert.InDelta(t, 4.0, engine.ProductionRate(snap, st, Modifiers{}, now.Add(2*time.Minute)), 1e-9)
	})

	t.Run("mute penalty scales to a tenth", func(t *testing.T) {
		st := domain.NewPlayerState("u1")
		st.ItemLevels["kettle"] = 10
		assert.InDelta(t, 1.0, engine.ProductionRate(snap, st, Modifiers{Muted: true}, now), 1e-9)
	})

	t.Run("group bonus compounds per member and doubles when full", func(t *testing.T) {
		st := domain.NewPlayerState("u1")
		st.ItemLevels["kettle"] = 10

		partial := engine.ProductionRate(snap, st, Modifiers{GroupMembers: 4}, now)
		assert.InDelta(t, 10*(1+0.05*4), partial, 1e-9)

		full := engine.ProductionRate(snap, st, Modifiers{GroupMembers: 4, FullGroupOnline: true}, now)
		assert.InDelta(t, partial*2, full, 1e-9)
	})
}

func TestClickPower(t *testing.T) {
	snap := testSnapshot(t)
	engine := NewEngine()
	now := time.Now()

	t.Run("base click with no tools", func(t *testing.T) {
		st := domain.NewPlayerState("u1")
		assert.Equal(t, int64(1), engine.ClickPower(snap, st, Modifiers{}, now))
	})

	t.Run("tools add count times bonus", func(t *testing.T) {
		st := domain.NewPlayerState("u1")
		st.ItemLevels["pump"] = 3
		st.ItemLevels["tap"] = 2
		assert.Equal(t, int64(1+3*1+2*5), engine.ClickPower(snap, st, Modifiers{}, now))
	})

	t.Run("truncated once after all multipliers", func(t *testing.T) {
		st := domain.NewPlayerState("u1")
		st.ItemLevels["pump"] = 4 // power 5
		st.ActiveEffects["effect_spray"] = domain.ActiveEffect{
			EffectID:        "effect_spray",
			Expiry:          now.Add(time.Minute),
			ClickMultiplier: 0.5,
		}
		// 5 * 0.5 * 0.1 = 0.25 -> truncates to 0, not round(round(2.5)*0.1)
		assert.Equal(t, int64(0), engine.ClickPower(snap, st, Modifiers{Muted: true}, now))

		// Without mute: 5 * 0.5 = 2.5 -> 2
		assert.Equal(t, int64(2), engine.ClickPower(snap, st, Modifiers{}, now))
	})
}

func TestActUnlocked(t *testing.T) {
	engine := NewEngine()

	buildActCatalog := func(t *testing.T, count int) *catalog.Snapshot {
		t.Helper()
		items := make([]catalog.RawItem, 0, count+1)
		for i := 0; i < count; i++ {
			items = append(items, catalog.RawItem{
				Name: fmt.Sprintf("gen_%d", i), Category: "production", Act: 1, BaseCost: 100, ProductionRate: 1,
			})
		}
		items = append(items, catalog.RawItem{Name: "taproom", Category: "production", Act: 2, BaseCost: 1000, ProductionRate: 10})
		snap, err := catalog.Build(context.Background(), &catalog.RawSnapshot{
			Version: "acts",
			Items:   items,
			Acts:    []catalog.RawAct{{ID: 1}, {ID: 2, UnlockThreshold: ptrFloat(0.9)}},
		})
		require.NoError(t, err)
		return snap
	}

	t.Run("act 1 always unlocked", func(t *testing.T) {
		snap := buildActCatalog(t, 10)
		st := domain.NewPlayerState("u1")
		assert.True(t, engine.ActUnlocked(snap, st, 1))
	})

	t.Run("nine of ten unlocks at 0.9", func(t *testing.T) {
		snap := buildActCatalog(t, 10)
		st := domain.NewPlayerState("u1")
		for i := 0; i < 9; i++ {
			st.ItemLevels[fmt.Sprintf("gen_%d", i)] = 1
		}
		assert.True(t, engine.ActUnlocked(snap, st, 2))
	})

	t.Run("eight of ten stays locked", func(t *testing.T) {
		snap := buildActCatalog(t, 10)
		st := domain.NewPlayerState("u1")
		for i := 0; i < 8; i++ {
			st.ItemLevels[fmt.Sprintf("gen_%d", i)] = 1
		}
		assert.False(t, engine.ActUnlocked(snap, st, 2))
	})

	t.Run("zero previous-act items means locked", func(t *testing.T) {
		snap, err := catalog.Build(context.Background(), &catalog.RawSnapshot{
			Version: "sparse",
			Items:   []catalog.RawItem{{Name: "taproom", Category: "production", Act: 2, BaseCost: 1000, ProductionRate: 10}},
			Acts:    []catalog.RawAct{{ID: 2}},
		})
		require.NoError(t, err)
		st := domain.NewPlayerState("u1")
		st.ItemLevels["taproom"] = 5
		assert.False(t, engine.ActUnlocked(snap, st, 2))
	})
}

func TestCurrentAct(t *testing.T) {
	snap := testSnapshot(t)
	engine := NewEngine()

	st := domain.NewPlayerState("u1")
	assert.Equal(t, 1, engine.CurrentAct(snap, st))

	// Own every act-1 Production and ClickTool item.
	for _, name := range []string{"kettle", "fermenter", "pump", "tap"} {
		st.ItemLevels[name] = 1
	}
	assert.Equal(t, 2, engine.CurrentAct(snap, st))
}

func ptrFloat(f float64) *float64 { return &f }
