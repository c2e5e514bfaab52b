package economy

import (
	"github.com/tapline-games/tapline/internal/catalog"
	"github.com/tapline-games/tapline/internal/domain"
	"github.com/tapline-games/tapline/internal/metrics"
)

// FailReason discriminates why a purchase attempt was rejected. Rejections
// are expected, frequent and user-facing; they are results, never errors.
type FailReason string

const (
	ReasonNone              FailReason = ""
	ReasonUnknownItem       FailReason = "unknown_item"
	ReasonConsumableHeld    FailReason = "consumable_held"
	ReasonAlreadyOwned      FailReason = "already_owned"
	ReasonPrerequisite      FailReason = "prerequisite_not_met"
	ReasonInsufficientFunds FailReason = "insufficient_funds"
	ReasonActLocked         FailReason = "act_locked"
	ReasonMaintenance       FailReason = "maintenance"
)

// PurchaseResult is the discriminated outcome of AttemptPurchase.
type PurchaseResult struct {
	Success  bool       `json:"success"`
	Reason   FailReason `json:"reason,omitempty"`
	Cost     int64      `json:"cost,omitempty"`
	NewLevel int        `json:"new_level,omitempty"`
}

func failed(reason FailReason) PurchaseResult {
	metrics.PurchaseFailures.WithLabelValues(string(reason)).Inc()
	return PurchaseResult{Reason: reason}
}

// AttemptPurchase validates and applies a purchase of the named item. On any
// failure it returns the reason and leaves the state untouched; on success it
// deducts the currency and increments the item level. The caller owns
// persistence of the mutated state.
func (e *Engine) AttemptPurchase(snap *catalog.Snapshot, st *domain.PlayerState, itemName string) PurchaseResult {
	item, ok := snap.Item(itemName)
	if !ok {
		return failed(ReasonUnknownItem)
	}

	level := st.Level(item.Name)

	// Consumables are strictly single-stock until consumed elsewhere.
	if item.Category.Consumable() && level >= 1 {
		return failed(ReasonConsumableHeld)
	}

	if item.Category.SingleLevel() && level > 0 {
		return failed(ReasonAlreadyOwned)
	}

	if item.RequiredItem != "" {
		needed := item.RequiredItemCount
		if needed == 0 {
			needed = 1
		}
		if st.Level(item.RequiredItem) < needed {
			return failed(ReasonPrerequisite)
		}
	}

	if !e.ActUnlocked(snap, st, item.Act) {
		return failed(ReasonActLocked)
	}

	cost := e.PriceFor(snap, item, level)

	balance := &st.PrimaryCurrency
	if item.Currency == domain.CurrencyPremium {
		balance = &st.PremiumCurrency
	}
	if *balance < cost {
		return failed(ReasonInsufficientFunds)
	}

	*balance -= cost
	if item.Category.SingleLevel() {
		st.ItemLevels[item.Name] = 1
	} else {
		st.ItemLevels[item.Name] = level + 1
	}

	metrics.PurchasesTotal.WithLabelValues(item.Name).Inc()

	return PurchaseResult{
		Success:  true,
		Cost:     cost,
		NewLevel: st.ItemLevels[item.Name],
	}
}
