package economy

import (
	"time"

	"github.com/tapline-games/tapline/internal/catalog"
	"github.com/tapline-games/tapline/internal/domain"
)

// Modifiers are the external multiplier inputs to rate computation: device
// mute state and the presence aggregator's group outputs.
type Modifiers struct {
	Muted           bool
	FullGroupOnline bool
	GroupMembers    int
}

// groupMultiplier folds the static per-member bonus with the live full-group
// doubling. Settlement passes FullGroupOnline=false, that bonus only applies
// to live ticking.
func (m Modifiers) groupMultiplier() float64 {
	mult := 1.0 + PerMemberBonus*float64(m.GroupMembers)
	if m.FullGroupOnline {
		mult *= FullGroupMultiplier
	}
	return mult
}

func (m Modifiers) mutePenalty() float64 {
	if m.Muted {
		return MutePenalty
	}
	return 1.0
}

// Engine computes production rates, click power, prices, act unlocks and
// purchase transitions over an immutable catalog snapshot and a player state.
// It holds no player state of its own; the player owner serializes calls.
type Engine struct {
	prices *priceCache
}

// NewEngine creates an economy engine
func NewEngine() *Engine {
	return &Engine{prices: newPriceCache(PriceCacheSize, PriceCacheTTL)}
}

// ProductionRate returns primary currency generated per second. Each owned
// Production item contributes count x rate, scaled by the multipliers of
// owned Upgrade items that require it; the sum is then scaled by unexpired
// attack effects, the mute penalty and the group multiplier.
func (e *Engine) ProductionRate(snap *catalog.Snapshot, st *domain.PlayerState, mods Modifiers, now time.Time) float64 {
	var sum float64
	for _, it := range snap.ItemsInCategory(domain.CategoryProduction) {
		count := st.Level(it.Name)
		if count == 0 {
			continue
		}
		contribution := float64(count) * it.ProductionRate
		for _, up := range snap.ItemsInCategory(domain.CategoryUpgrade) {
			if up.RequiredItem == it.Name && st.Level(up.Name) > 0 {
				contribution *= up.ProductionMultiplier
			}
		}
		sum += contribution
	}

	for _, eff := range st.CurrentEffects(now) {
		sum *= eff.ProductionMultiplier
	}

	return sum * mods.mutePenalty() * mods.groupMultiplier()
}

// ClickPower returns primary currency generated by one manual click. The
// computation stays in floating point across every multiplier layer and is
// truncated to an integer exactly once, here.
func (e *Engine) ClickPower(snap *catalog.Snapshot, st *domain.PlayerState, mods Modifiers, now time.Time) int64 {
	power := float64(snap.Config.BaseClickValue)
	for _, it := range snap.ItemsInCategory(domain.CategoryClickTool) {
		if count := st.Level(it.Name); count > 0 {
			power += float64(count) * float64(it.ClickBonus)
		}
	}

	for _, eff := range st.CurrentEffects(now) {
		power *= eff.ClickMultiplier
	}

	return int64(power * mods.mutePenalty())
}

// ActUnlocked reports whether an act is open for purchase. Act 1 is always
// unlocked; act N needs the owned fraction of act N-1 Production and
// ClickTool items to reach the act's threshold. Zero such items means locked,
// a misconfigured catalog must not produce a spurious unlock.
func (e *Engine) ActUnlocked(snap *catalog.Snapshot, st *domain.PlayerState, actID int) bool {
	if actID <= 1 {
		return true
	}

	prev := snap.ItemsInAct(actID - 1)
	if len(prev) == 0 {
		return false
	}

	owned := 0
	for _, it := range prev {
		if st.Level(it.Name) > 0 {
			owned++
		}
	}

	threshold := catalog.DefaultUnlockThreshold
	if meta, ok := snap.Act(actID); ok {
		threshold = meta.UnlockThreshold
	}

	return float64(owned)/float64(len(prev)) >= threshold
}

// CurrentAct returns the highest unlocked act id.
func (e *Engine) CurrentAct(snap *catalog.Snapshot, st *domain.PlayerState) int {
	current := 1
	for _, meta := range snap.Acts {
		if meta.ID > current && e.ActUnlocked(snap, st, meta.ID) {
			current = meta.ID
		}
	}
	return current
}
