package player

import (
	"context"
	"math"
	"time"

	"github.com/tapline-games/tapline/internal/domain"
	"github.com/tapline-games/tapline/internal/logger"
	"github.com/tapline-games/tapline/internal/metrics"
)

// startTickingLocked launches the production tick loop for a live session.
// The loop goroutine only measures elapsed time; the gain itself is applied
// on the owner's command loop like every other mutation. Must be called on
// the loop goroutine.
func (o *Owner) startTickingLocked() {
	if o.ticking {
		return
	}

	interval := o.deps.TickInterval
	if interval <= 0 {
		interval = DefaultTickInterval
	}

	tctx, cancel := context.WithCancel(context.Background())
	o.tickCancel = cancel
	o.ticking = true
	o.carry = 0

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		last := o.deps.Now()
		for {
			select {
			case <-tctx.Done():
				return
			case <-ticker.C:
				now := o.deps.Now()
				elapsed := now.Sub(last)
				last = now
				err := o.do(tctx, func(cctx context.Context) {
					o.applyTickLocked(cctx, elapsed)
				})
				if err != nil {
					return
				}
			}
		}
	}()
}

// stopTickingLocked cancels the tick loop. Must be called on the loop
// goroutine; any partially accrued sub-unit gain is discarded with the
// session, never committed half-applied.
func (o *Owner) stopTickingLocked() {
	if !o.ticking {
		return
	}
	o.tickCancel()
	o.tickCancel = nil
	o.ticking = false
	o.carry = 0
}

// applyTickLocked credits production accrued over one tick. Sub-unit
// fractions carry between ticks so slow rates still pay out; currency only
// ever changes by whole units.
func (o *Owner) applyTickLocked(ctx context.Context, elapsed time.Duration) {
	if elapsed <= 0 {
		return
	}

	snap := o.deps.Catalog.Snapshot()
	now := o.deps.Now()
	rate := o.deps.Economy.ProductionRate(snap, o.state, o.modifiers(ctx), now)

	total := rate*elapsed.Seconds() + o.carry
	whole := math.Floor(total)
	o.carry = total - whole

	metrics.TicksTotal.Inc()
	if whole <= 0 {
		return
	}

	gain := int64(whole)
	err := o.mutate(ctx, causeTick, func(st *domain.PlayerState) error {
		st.PrimaryCurrency += gain
		st.LifetimeEarned += gain
		return nil
	})
	if err != nil {
		// Mutation dropped; return the fraction so the income isn't lost.
		o.carry = total
		logger.FromContext(ctx).Warn("Tick credit dropped", "user_id", o.userID, "error", err)
	}
}
