package settlement

import (
	"time"

	"github.com/tapline-games/tapline/internal/catalog"
	"github.com/tapline-games/tapline/internal/domain"
	"github.com/tapline-games/tapline/internal/economy"
	"github.com/tapline-games/tapline/internal/metrics"
)

// Result reports one settlement application.
type Result struct {
	Credited int64         `json:"credited"`
	Elapsed  time.Duration `json:"elapsed"`
	// Applied is false when no departure stamp existed (first launch, or the
	// stamp was already consumed) and the call was a no-op.
	Applied bool `json:"applied"`
}

// Calculator computes the one-shot credit for an absence window.
type Calculator struct {
	engine *economy.Engine
}

// NewCalculator creates a settlement calculator sharing the economy engine
func NewCalculator(engine *economy.Engine) *Calculator {
	return &Calculator{engine: engine}
}

// Settle credits gains accrued since the departure stamp and clears the stamp
// on the same state, so the caller's single durable write makes credit and
// stamp-clear atomic and the credit can never replay.
//
// The rate uses current item levels and current group membership, not a
// reconstruction of the absence window. It includes the static per-member
// bonus but never the live full-group doubling or the mute penalty, both of
// which only apply to a running session.
func (c *Calculator) Settle(snap *catalog.Snapshot, st *domain.PlayerState, groupMembers int, now time.Time) Result {
	if st.DepartedAt == nil {
		return Result{}
	}

	elapsed := now.Sub(*st.DepartedAt)
	st.DepartedAt = nil

	if elapsed <= 0 {
		return Result{Applied: true}
	}

	mods := economy.Modifiers{GroupMembers: groupMembers}
	rate := c.engine.ProductionRate(snap, st, mods, now)
	credited := int64(rate * elapsed.Seconds())

	st.PrimaryCurrency += credited
	st.LifetimeEarned += credited

	metrics.SettlementsCredited.Inc()
	return Result{Credited: credited, Elapsed: elapsed, Applied: true}
}
