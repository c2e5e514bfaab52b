package domain

// Category is the closed set of catalog item categories. Economy and combat
// rules are keyed on this type, never on raw catalog strings.
type Category string

const (
	CategoryProduction Category = "PRODUCTION"
	CategoryClickTool  Category = "CLICK_TOOL"
	CategoryUpgrade    Category = "UPGRADE"
	CategoryMilestone  Category = "MILESTONE"
	CategoryDefense    Category = "DEFENSE"
	CategoryAttack     Category = "ATTACK"
	CategoryCosmetic   Category = "COSMETIC"
	CategoryGift       Category = "GIFT"
	CategoryUnknown    Category = "UNKNOWN"
)

// SingleLevel reports whether an item of this category can be owned at most
// once (level is 0 or 1, never higher).
func (c Category) SingleLevel() bool {
	switch c {
	case CategoryUpgrade, CategoryDefense, CategoryMilestone, CategoryGift:
		return true
	}
	return false
}

// Consumable reports whether items of this category are single-stock
// consumables: they cannot be repurchased while one is held.
func (c Category) Consumable() bool {
	return c == CategoryAttack || c == CategoryDefense
}

// DynamicPricing reports whether the category uses exponential level pricing.
// All other categories sell at flat base cost.
func (c Category) DynamicPricing() bool {
	return c == CategoryProduction || c == CategoryClickTool
}

// Currency identifies which balance an item is priced in.
type Currency string

const (
	CurrencyPrimary Currency = "PRIMARY"
	CurrencyPremium Currency = "PREMIUM"
)

// Item is a catalog entry. Items are immutable once loaded; a catalog refresh
// replaces the whole set. Name is the stable identity key referenced by player
// progress, so refreshes must preserve names.
type Item struct {
	Name                 string   `json:"name"`
	Category             Category `json:"category"`
	Act                  int      `json:"act"`
	BaseCost             int64    `json:"base_cost"`
	Currency             Currency `json:"currency"`
	ProductionRate       float64  `json:"production_rate"`
	ClickBonus           int64    `json:"click_bonus"`
	ProductionMultiplier float64  `json:"production_multiplier"`
	ClickMultiplier      float64  `json:"click_multiplier"`
	LossRate             float64  `json:"loss_rate"`
	EffectDurationSec    int      `json:"effect_duration_seconds"`
	RequiredItem         string   `json:"required_item,omitempty"`
	RequiredItemCount    int      `json:"required_item_count,omitempty"`
	EffectID             string   `json:"effect_id,omitempty"`
}

// ActMetadata describes a narrative progression tier. Act N unlocks when the
// owned fraction of Act N-1 Production and ClickTool items reaches
// UnlockThreshold; Act 1 is always unlocked.
type ActMetadata struct {
	ID              int     `json:"id"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	UnlockThreshold float64 `json:"unlock_threshold"`
}

// CombatRules maps an attack effect id to the defense effect ids capable of
// neutralizing it. Loaded wholesale from the catalog and replaced atomically
// on refresh.
type CombatRules map[string][]string

// Counters reports whether defenseID neutralizes attackID.
func (r CombatRules) Counters(defenseID, attackID string) bool {
	for _, d := range r[attackID] {
		if d == defenseID {
			return true
		}
	}
	return false
}
