package domain

import "time"

// ActiveEffect is a time-bounded multiplier applied by an attack. At most one
// effect exists per EffectID; re-applying the same id overwrites the prior
// instance rather than stacking.
type ActiveEffect struct {
	EffectID             string    `json:"effect_id"`
	SourceName           string    `json:"source_name"`
	Label                string    `json:"label"`
	Expiry               time.Time `json:"expiry"`
	ProductionMultiplier float64   `json:"production_multiplier"`
	ClickMultiplier      float64   `json:"click_multiplier"`
}

// Current reports whether the effect is still live at the given instant.
// Expired effects must never contribute to multiplier computations.
func (e ActiveEffect) Current(now time.Time) bool {
	return e.Expiry.After(now)
}

// PlayerState is the mutable aggregate root of the rules engine. All
// mutations are serialized through a single owner; nothing outside the owner
// may write to it.
type PlayerState struct {
	UserID          string                  `json:"user_id"`
	PrimaryCurrency int64                   `json:"primary_currency"`
	PremiumCurrency int64                   `json:"premium_currency"`
	LifetimeEarned  int64                   `json:"lifetime_earned"`
	ItemLevels      map[string]int          `json:"item_levels"`
	ActiveEffects   map[string]ActiveEffect `json:"active_effects"`
	GroupID         string                  `json:"group_id,omitempty"`
	Muted           bool                    `json:"muted"`
	// DepartedAt is set when the tick owner stops and cleared atomically with
	// offline settlement so the credit can never replay.
	DepartedAt *time.Time `json:"departed_at,omitempty"`
}

// NewPlayerState returns the all-zero state created on first launch.
func NewPlayerState(userID string) *PlayerState {
	return &PlayerState{
		UserID:        userID,
		ItemLevels:    make(map[string]int),
		ActiveEffects: make(map[string]ActiveEffect),
	}
}

// Level returns the owned count for an item name; an absent key is 0.
func (s *PlayerState) Level(name string) int {
	return s.ItemLevels[name]
}

// Clone returns a deep copy. The mutation owner applies transitions to a
// clone and commits it only after the durable write succeeds.
func (s *PlayerState) Clone() *PlayerState {
	c := *s
	c.ItemLevels = make(map[string]int, len(s.ItemLevels))
	for k, v := range s.ItemLevels {
		c.ItemLevels[k] = v
	}
	c.ActiveEffects = make(map[string]ActiveEffect, len(s.ActiveEffects))
	for k, v := range s.ActiveEffects {
		c.ActiveEffects[k] = v
	}
	if s.DepartedAt != nil {
		t := *s.DepartedAt
		c.DepartedAt = &t
	}
	return &c
}

// Reset zeroes every field back to first-launch defaults, keeping the user id.
func (s *PlayerState) Reset() {
	*s = *NewPlayerState(s.UserID)
}

// CurrentEffects returns the unexpired effects and prunes expired ones from
// the map so they cannot linger in later calculations.
func (s *PlayerState) CurrentEffects(now time.Time) []ActiveEffect {
	out := make([]ActiveEffect, 0, len(s.ActiveEffects))
	for id, e := range s.ActiveEffects {
		if !e.Current(now) {
			delete(s.ActiveEffects, id)
			continue
		}
		out = append(out, e)
	}
	return out
}
