package player

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tapline-games/tapline/internal/catalog"
	"github.com/tapline-games/tapline/internal/combat"
	"github.com/tapline-games/tapline/internal/domain"
	"github.com/tapline-games/tapline/internal/economy"
	"github.com/tapline-games/tapline/internal/event"
	"github.com/tapline-games/tapline/internal/notification"
	"github.com/tapline-games/tapline/internal/settlement"
)

// fakeClock is a mutable time source shared between the test goroutine and
// the owner loop.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{t: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func playerSnapshot(t *testing.T, maintenance bool) *catalog.Snapshot {
	t.Helper()
	raw := &catalog.RawSnapshot{
		Version: "test",
		Items: []catalog.RawItem{
			{Name: "kettle", Category: "production", BaseCost: 100, ProductionRate: 10},
			{Name: "pump", Category: "click_tool", BaseCost: 50, ClickBonus: 4},
			{Name: "spray", Category: "attack", BaseCost: 500, EffectID: "effect_spray",
				ProductionMultiplier: 0.5, EffectDurationSec: 300},
			{Name: "filter", Category: "defense", BaseCost: 60, EffectID: "effect_filter"},
			{Name: "flight", Category: "gift", BaseCost: 150, EffectID: "effect_flight"},
		},
		CombatRules: map[string][]string{"effect_spray": {"effect_filter"}},
	}
	if maintenance {
		raw.Config = &catalog.GlobalConfig{Maintenance: true}
	}
	snap, err := catalog.Build(context.Background(), raw)
	require.NoError(t, err)
	return snap
}

type harness struct {
	store   *catalog.Store
	repo    *FakeRepository
	notices *notification.FakeRepository
	clock   *fakeClock
	bus     *event.MemoryBus
	svc     *Manager
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	store := catalog.NewStore()
	store.Swap(playerSnapshot(t, false))

	h := &harness{
		store:   store,
		repo:    NewFakeRepository(),
		notices: notification.NewFakeRepository(),
		clock:   newFakeClock(),
		bus:     event.NewMemoryBus(),
	}

	econ := economy.NewEngine()
	h.svc = NewManager(Deps{
		Catalog:  store,
		Economy:  econ,
		Combat:   combat.NewEngine(),
		Settle:   settlement.NewCalculator(econ),
		Notifier: notification.NewService(h.notices, h.bus),
		Repo:     h.repo,
		Bus:      h.bus,
		// Long enough that no tick fires during a test.
		TickInterval: time.Hour,
		Now:          h.clock.Now,
	})

	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = h.svc.Shutdown(ctx)
	})
	return h
}

func TestClick(t *testing.T) {
	ctx := context.Background()

	t.Run("first contact creates the player and credits base power", func(t *testing.T) {
		h := newHarness(t)

		gain, err := h.svc.Click(ctx, "alice")
		require.NoError(t, err)
		assert.Equal(t, int64(1), gain)

		st := h.repo.Persisted("alice")
		require.NotNil(t, st)
		assert.Equal(t, int64(1), st.PrimaryCurrency)
		assert.Equal(t, int64(1), st.LifetimeEarned)
	})

	t.Run("click tools add their bonus", func(t *testing.T) {
		h := newHarness(t)
		seed := domain.NewPlayerState("bob")
		seed.ItemLevels["pump"] = 2
		h.repo.Seed(seed)

		gain, err := h.svc.Click(ctx, "bob")
		require.NoError(t, err)
		assert.Equal(t, int64(9), gain)
	})

	t.Run("empty user id is rejected", func(t *testing.T) {
		h := newHarness(t)
		_, err := h.svc.Click(ctx, "")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestPurchase(t *testing.T) {
	ctx := context.Background()

	t.Run("success deducts and persists", func(t *testing.T) {
		h := newHarness(t)
		seed := domain.NewPlayerState("alice")
		seed.PrimaryCurrency = 1000
		h.repo.Seed(seed)

		result, err := h.svc.Purchase(ctx, "alice", "kettle")
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, int64(100), result.Cost)
		assert.Equal(t, 1, result.NewLevel)

		st := h.repo.Persisted("alice")
		assert.Equal(t, int64(900), st.PrimaryCurrency)
		assert.Equal(t, 1, st.ItemLevels["kettle"])
	})

	t.Run("rejection writes nothing", func(t *testing.T) {
		h := newHarness(t)
		seed := domain.NewPlayerState("bob")
		seed.PrimaryCurrency = 10
		h.repo.Seed(seed)

		before := h.repo.SaveCount()
		result, err := h.svc.Purchase(ctx, "bob", "kettle")
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, economy.ReasonInsufficientFunds, result.Reason)
		assert.Equal(t, before, h.repo.SaveCount())
	})

	t.Run("success announces a purchase event", func(t *testing.T) {
		h := newHarness(t)
		seed := domain.NewPlayerState("carol")
		seed.PrimaryCurrency = 1000
		h.repo.Seed(seed)

		var mu sync.Mutex
		var got event.PurchaseCompletedPayloadV1
		h.bus.Subscribe(event.PurchaseCompleted, func(_ context.Context, e event.Event) error {
			mu.Lock()
			defer mu.Unlock()
			got = e.Payload.(event.PurchaseCompletedPayloadV1)
			return nil
		})

		_, err := h.svc.Purchase(ctx, "carol", "kettle")
		require.NoError(t, err)

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, "carol", got.UserID)
		assert.Equal(t, "kettle", got.ItemName)
		assert.Equal(t, int64(100), got.Cost)
	})
}

func TestMaintenanceMode(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.store.Swap(playerSnapshot(t, true))

	seed := domain.NewPlayerState("alice")
	seed.PrimaryCurrency = 1000
	h.repo.Seed(seed)

	_, err := h.svc.Click(ctx, "alice")
	assert.ErrorIs(t, err, domain.ErrMaintenance)

	result, err := h.svc.Purchase(ctx, "alice", "kettle")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, economy.ReasonMaintenance, result.Reason)
	assert.Equal(t, int64(1000), h.repo.Persisted("alice").PrimaryCurrency)
}

func TestSaveFailureDropsMutation(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.repo.Seed(domain.NewPlayerState("alice"))

	h.repo.SetSaveErr(errors.New("disk gone"))
	_, err := h.svc.Click(ctx, "alice")
	assert.Error(t, err)

	h.repo.SetSaveErr(nil)
	view, err := h.svc.View(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(0), view.PrimaryCurrency, "dropped mutation must not survive in memory")
}

func TestResume(t *testing.T) {
	ctx := context.Background()

	t.Run("settles the absence once, then no-ops", func(t *testing.T) {
		h := newHarness(t)
		departed := h.clock.Now().Add(-10 * time.Minute)
		seed := domain.NewPlayerState("alice")
		seed.ItemLevels["kettle"] = 1
		seed.DepartedAt = &departed
		h.repo.Seed(seed)

		result, err := h.svc.Resume(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, result.Applied)
		assert.Equal(t, int64(6000), result.Credited)
		assert.Equal(t, 10*time.Minute, result.Elapsed)

		st := h.repo.Persisted("alice")
		assert.Nil(t, st.DepartedAt, "stamp consumed in the same write as the credit")
		assert.Equal(t, int64(6000), st.PrimaryCurrency)

		again, err := h.svc.Resume(ctx, "alice")
		require.NoError(t, err)
		assert.False(t, again.Applied)
		assert.Equal(t, int64(6000), h.repo.Persisted("alice").PrimaryCurrency)
	})

	t.Run("first launch has nothing to settle", func(t *testing.T) {
		h := newHarness(t)
		result, err := h.svc.Resume(ctx, "fresh")
		require.NoError(t, err)
		assert.False(t, result.Applied)
	})
}

func TestDepart(t *testing.T) {
	ctx := context.Background()

	t.Run("persists the departure stamp", func(t *testing.T) {
		h := newHarness(t)
		h.repo.Seed(domain.NewPlayerState("alice"))

		_, err := h.svc.Resume(ctx, "alice")
		require.NoError(t, err)

		h.clock.Advance(time.Minute)
		require.NoError(t, h.svc.Depart(ctx, "alice"))

		st := h.repo.Persisted("alice")
		require.NotNil(t, st.DepartedAt)
		assert.Equal(t, h.clock.Now(), *st.DepartedAt)
	})

	t.Run("without a live session it is a no-op", func(t *testing.T) {
		h := newHarness(t)
		h.repo.Seed(domain.NewPlayerState("bob"))

		before := h.repo.SaveCount()
		require.NoError(t, h.svc.Depart(ctx, "bob"))
		assert.Equal(t, before, h.repo.SaveCount())
		assert.Nil(t, h.repo.Persisted("bob").DepartedAt)
	})
}

func TestShutdownDepartsLiveSessions(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.repo.Seed(domain.NewPlayerState("alice"))

	_, err := h.svc.Resume(ctx, "alice")
	require.NoError(t, err)

	require.NoError(t, h.svc.Shutdown(ctx))
	st := h.repo.Persisted("alice")
	require.NotNil(t, st.DepartedAt)
}

func TestOwnerStopRejectsLaterCommands(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	o := NewOwner(domain.NewPlayerState("solo"), Deps{
		Catalog:      h.store,
		Economy:      economy.NewEngine(),
		Combat:       combat.NewEngine(),
		Settle:       settlement.NewCalculator(economy.NewEngine()),
		Notifier:     notification.NewService(h.notices, h.bus),
		Repo:         h.repo,
		TickInterval: time.Hour,
		Now:          h.clock.Now,
	})
	require.NoError(t, o.Stop(ctx))

	_, err := o.Click(ctx)
	assert.ErrorIs(t, err, ErrOwnerStopped)
}

func TestAttackAndDefendFlow(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	seed := domain.NewPlayerState("alice")
	seed.ItemLevels["kettle"] = 1
	seed.ItemLevels["filter"] = 1
	h.repo.Seed(seed)

	require.NoError(t, h.svc.ApplyAttack(ctx, "alice", "effect_spray", 5, "rival", "Skunk Spray"))

	view, err := h.svc.View(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, view.ActiveEffects, 1)
	assert.Equal(t, "effect_spray", view.ActiveEffects[0].EffectID)
	assert.Equal(t, "Skunk Spray", view.ActiveEffects[0].Label)
	assert.InDelta(t, 5.0, view.ProductionRate, 1e-9, "spray halves the kettle's 10/s")

	result, err := h.svc.Defend(ctx, "alice", "filter")
	require.NoError(t, err)
	assert.Equal(t, combat.DefendNeutralized, result.Outcome)
	assert.Equal(t, "effect_spray", result.RemovedEffectID)

	st := h.repo.Persisted("alice")
	assert.Empty(t, st.ActiveEffects)
	assert.Equal(t, 0, st.ItemLevels["filter"])
}

func TestApplyAttackUnknownEffectDropped(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.repo.Seed(domain.NewPlayerState("alice"))

	before := h.repo.SaveCount()
	// Acked without error so the transport does not redeliver forever.
	require.NoError(t, h.svc.ApplyAttack(ctx, "alice", "effect_bogus", 5, "rival", ""))
	assert.Equal(t, before, h.repo.SaveCount())
}

func TestApplyGift(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.repo.Seed(domain.NewPlayerState("alice"))

	require.NoError(t, h.svc.ApplyGift(ctx, "alice", "effect_flight", "pal"))
	st := h.repo.Persisted("alice")
	assert.Equal(t, 1, st.ItemLevels["flight"])

	owned, err := h.svc.OwnedConsumables(ctx, "alice", domain.CategoryGift)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, "flight", owned[0].Name)
}

func TestSetMuted(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.repo.Seed(domain.NewPlayerState("alice"))

	require.NoError(t, h.svc.SetMuted(ctx, "alice", true))
	assert.True(t, h.repo.Persisted("alice").Muted)

	// Setting the same value again writes nothing.
	before := h.repo.SaveCount()
	require.NoError(t, h.svc.SetMuted(ctx, "alice", true))
	assert.Equal(t, before, h.repo.SaveCount())
}

func TestSetGroup(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.repo.Seed(domain.NewPlayerState("alice"))

	require.NoError(t, h.svc.SetGroup(ctx, "alice", "grp-1"))
	assert.Equal(t, "grp-1", h.repo.Persisted("alice").GroupID)

	require.NoError(t, h.svc.SetGroup(ctx, "alice", ""))
	assert.Empty(t, h.repo.Persisted("alice").GroupID)
}

func TestHardReset(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	seed := domain.NewPlayerState("alice")
	seed.PrimaryCurrency = 5000
	seed.LifetimeEarned = 9000
	seed.ItemLevels["kettle"] = 3
	h.repo.Seed(seed)
	require.NoError(t, h.notices.MarkShown(ctx, "alice", "welcome"))

	require.NoError(t, h.svc.HardReset(ctx, "alice"))

	st := h.repo.Persisted("alice")
	assert.Zero(t, st.PrimaryCurrency)
	assert.Zero(t, st.LifetimeEarned)
	assert.Empty(t, st.ItemLevels)

	shown, err := h.notices.GetShown(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, shown, "shown-notification set re-arms on reset")
}

func TestViewDerivedFields(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	seed := domain.NewPlayerState("alice")
	seed.PrimaryCurrency = 250
	seed.LifetimeEarned = 600
	seed.ItemLevels["kettle"] = 2
	seed.ItemLevels["pump"] = 1
	h.repo.Seed(seed)

	view, err := h.svc.View(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", view.UserID)
	assert.Equal(t, int64(250), view.PrimaryCurrency)
	assert.Equal(t, int64(600), view.Score)
	assert.Equal(t, 1, view.CurrentAct)
	assert.InDelta(t, 20.0, view.ProductionRate, 1e-9)
	assert.Equal(t, int64(5), view.ClickPower)
}

func TestCatalogRefreshReevaluatesRules(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	// Spawn a live owner, then go idle.
	_, err := h.svc.Click(ctx, "alice")
	require.NoError(t, err)

	// The refreshed snapshot delivers a rule alice already satisfies.
	raw := &catalog.RawSnapshot{
		Version: "test-2",
		Items: []catalog.RawItem{
			{Name: "kettle", Category: "production", BaseCost: 100, ProductionRate: 10},
		},
		Notices: []catalog.RawNotice{
			{ID: "welcome", Title: "Welcome", Message: "Hello", ConditionType: "Direct"},
		},
	}
	next, err := catalog.Build(ctx, raw)
	require.NoError(t, err)
	h.store.Swap(next)

	shown, err := h.notices.GetShown(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, shown, "no mutation has run against the new snapshot yet")

	h.svc.ReevaluateNotifications(ctx)

	shown, err = h.notices.GetShown(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, shown["welcome"], "refresh-delivered rule fires without a mutation")
}
