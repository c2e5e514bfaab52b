package combat

import (
	"sort"
	"time"

	"github.com/tapline-games/tapline/internal/catalog"
	"github.com/tapline-games/tapline/internal/domain"
	"github.com/tapline-games/tapline/internal/metrics"
)

// DefendOutcome is the discriminated result of a defend attempt. The item is
// consumed on every outcome.
type DefendOutcome string

const (
	// DefendNeutralized: one matching attack effect was removed.
	DefendNeutralized DefendOutcome = "neutralized"
	// DefendNoTarget: no attacks were active at all.
	DefendNoTarget DefendOutcome = "no_target"
	// DefendWasted: attacks were active but none matched this defense.
	DefendWasted DefendOutcome = "wasted"
)

// DefendResult reports a defend resolution.
type DefendResult struct {
	Outcome         DefendOutcome `json:"outcome"`
	RemovedEffectID string        `json:"removed_effect_id,omitempty"`
}

// TryDefend consumes one unit of the named defense item and attempts to
// neutralize a matching active attack. It fails with ErrNotADefense if the
// item isn't a Defense with an effect id, ErrNoStock if none is held. The
// stock decrement is unconditional: the item is spent whether or not a match
// exists, and at most one matching attack is removed per call.
func (e *Engine) TryDefend(snap *catalog.Snapshot, st *domain.PlayerState, itemName string, now time.Time) (DefendResult, error) {
	item, ok := snap.Item(itemName)
	if !ok {
		return DefendResult{}, domain.ErrItemNotFound
	}
	if item.Category != domain.CategoryDefense || item.EffectID == "" {
		return DefendResult{}, domain.ErrNotADefense
	}
	if st.Level(item.Name) == 0 {
		return DefendResult{}, domain.ErrNoStock
	}

	st.ItemLevels[item.Name]--

	active := st.CurrentEffects(now)
	if len(active) == 0 {
		metrics.DefendOutcomes.WithLabelValues(string(DefendNoTarget)).Inc()
		return DefendResult{Outcome: DefendNoTarget}, nil
	}

	// Deterministic scan order: earliest expiry first.
	sort.Slice(active, func(i, j int) bool { return active[i].Expiry.Before(active[j].Expiry) })

	for _, attack := range active {
		if snap.Rules.Counters(item.EffectID, attack.EffectID) {
			delete(st.ActiveEffects, attack.EffectID)
			metrics.DefendOutcomes.WithLabelValues(string(DefendNeutralized)).Inc()
			return DefendResult{Outcome: DefendNeutralized, RemovedEffectID: attack.EffectID}, nil
		}
	}

	metrics.DefendOutcomes.WithLabelValues(string(DefendWasted)).Inc()
	return DefendResult{Outcome: DefendWasted}, nil
}
