package player

import (
	"context"

	"github.com/tapline-games/tapline/internal/domain"
)

// StateView is a read-only snapshot of a player for the API and the outbound
// social collaborator.
type StateView struct {
	UserID          string                `json:"user_id"`
	PrimaryCurrency int64                 `json:"primary_currency"`
	PremiumCurrency int64                 `json:"premium_currency"`
	Score           int64                 `json:"score"`
	CurrentAct      int                   `json:"current_act"`
	ProductionRate  float64               `json:"production_rate"`
	ClickPower      int64                 `json:"click_power"`
	ItemLevels      map[string]int        `json:"item_levels"`
	ActiveEffects   []domain.ActiveEffect `json:"active_effects"`
	GroupID         string                `json:"group_id,omitempty"`
	Muted           bool                  `json:"muted"`
}

// View computes the derived read model. Runs on the loop goroutine so it
// observes a consistent state between mutations.
func (o *Owner) View(ctx context.Context) (StateView, error) {
	var view StateView
	err := o.do(ctx, func(cctx context.Context) {
		snap := o.deps.Catalog.Snapshot()
		now := o.deps.Now()
		mods := o.modifiers(cctx)
		st := o.state.Clone()

		view = StateView{
			UserID:          st.UserID,
			PrimaryCurrency: st.PrimaryCurrency,
			PremiumCurrency: st.PremiumCurrency,
			Score:           st.LifetimeEarned,
			CurrentAct:      o.deps.Economy.CurrentAct(snap, st),
			ProductionRate:  o.deps.Economy.ProductionRate(snap, st, mods, now),
			ClickPower:      o.deps.Economy.ClickPower(snap, st, mods, now),
			ItemLevels:      st.ItemLevels,
			ActiveEffects:   st.CurrentEffects(now),
			GroupID:         st.GroupID,
			Muted:           st.Muted,
		}
	})
	return view, err
}

// OwnedConsumables lists held items of the given category, for the outbound
// social collaborator (owned attacks, owned gifts).
func (o *Owner) OwnedConsumables(ctx context.Context, category domain.Category) ([]domain.Item, error) {
	var out []domain.Item
	err := o.do(ctx, func(cctx context.Context) {
		snap := o.deps.Catalog.Snapshot()
		for _, it := range snap.ItemsInCategory(category) {
			if o.state.Level(it.Name) > 0 {
				out = append(out, it)
			}
		}
	})
	return out, err
}
