package economy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tapline-games/tapline/internal/domain"
)

func TestPriceFor(t *testing.T) {
	snap := testSnapshot(t)
	engine := NewEngine()

	t.Run("level zero pays base cost", func(t *testing.T) {
		item, _ := snap.Item("kettle")
		assert.Equal(t, int64(100), engine.PriceFor(snap, item, 0))
	})

	t.Run("exponential growth rounds to nearest", func(t *testing.T) {
		item, _ := snap.Item("pump")
		// round(50 * 1.2^3) = round(86.4) = 86
		assert.Equal(t, int64(86), engine.PriceFor(snap, item, 3))
	})

	t.Run("click tools price dynamically too", func(t *testing.T) {
		item, _ := snap.Item("tap")
		// round(400 * 1.2) = 480
		assert.Equal(t, int64(480), engine.PriceFor(snap, item, 1))
	})

	t.Run("other categories stay flat at any level", func(t *testing.T) {
		item, _ := snap.Item("spray")
		assert.Equal(t, int64(8000), engine.PriceFor(snap, item, 0))
		assert.Equal(t, int64(8000), engine.PriceFor(snap, item, 7))

		upgrade, _ := snap.Item("malt_contract")
		assert.Equal(t, int64(2500), engine.PriceFor(snap, upgrade, 3))
	})

	t.Run("cached tier matches computed tier", func(t *testing.T) {
		item, _ := snap.Item("kettle")
		first := engine.PriceFor(snap, item, 5)
		second := engine.PriceFor(snap, item, 5)
		assert.Equal(t, first, second)
	})
}

func TestPriceMonotonic(t *testing.T) {
	snap := testSnapshot(t)
	engine := NewEngine()
	item, _ := snap.Item("kettle")

	prev := int64(0)
	for level := 0; level < 30; level++ {
		cost := engine.PriceFor(snap, item, level)
		assert.GreaterOrEqual(t, cost, prev, "price must never decrease with level")
		prev = cost
	}
}

func TestPurchaseKeepsBalanceNonNegative(t *testing.T) {
	snap := testSnapshot(t)
	engine := NewEngine()

	st := domain.NewPlayerState("u1")
	st.PrimaryCurrency = 500

	for i := 0; i < 10; i++ {
		engine.AttemptPurchase(snap, st, "kettle")
		assert.GreaterOrEqual(t, st.PrimaryCurrency, int64(0))
	}
}
