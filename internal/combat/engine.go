package combat

import (
	"time"

	"github.com/tapline-games/tapline/internal/catalog"
	"github.com/tapline-games/tapline/internal/domain"
	"github.com/tapline-games/tapline/internal/metrics"
)

// Engine resolves attack effect application and defense matching over the
// catalog snapshot and a player state. Like the economy engine it is
// stateless; the player owner serializes calls.
type Engine struct{}

// NewEngine creates a combat engine
func NewEngine() *Engine {
	return &Engine{}
}

// ApplyEffect applies an inbound (or self-inflicted) attack effect. The
// effect id must resolve to a catalog item; an unknown id returns
// ErrUnknownEffect and the caller logs and drops the signal. Re-applying a
// live effect id overwrites the prior instance, so duplicate delivery of the
// same attack is idempotent rather than stacking.
func (e *Engine) ApplyEffect(snap *catalog.Snapshot, st *domain.PlayerState, effectID string, duration time.Duration, sourceName, label string, now time.Time) (domain.ActiveEffect, error) {
	item, ok := snap.ItemByEffectID(effectID)
	if !ok {
		return domain.ActiveEffect{}, domain.ErrUnknownEffect
	}

	if duration <= 0 {
		duration = time.Duration(item.EffectDurationSec) * time.Second
	}
	if label == "" {
		label = item.Name
	}

	eff := domain.ActiveEffect{
		EffectID:             effectID,
		SourceName:           sourceName,
		Label:                label,
		Expiry:               now.Add(duration),
		ProductionMultiplier: item.ProductionMultiplier,
		ClickMultiplier:      item.ClickMultiplier,
	}

	st.ActiveEffects[effectID] = eff
	metrics.EffectsApplied.WithLabelValues(effectID).Inc()
	return eff, nil
}

// ApplyGift credits a Gift-category item identified by its effect id to the
// recipient. Gifts are single-level; receiving one already held is a no-op
// that still reports the item so the sender can be thanked twice.
func (e *Engine) ApplyGift(snap *catalog.Snapshot, st *domain.PlayerState, giftEffectID string) (domain.Item, error) {
	item, ok := snap.ItemByEffectID(giftEffectID)
	if !ok || item.Category != domain.CategoryGift {
		return domain.Item{}, domain.ErrUnknownEffect
	}

	if st.Level(item.Name) == 0 {
		st.ItemLevels[item.Name] = 1
	}
	return item, nil
}
