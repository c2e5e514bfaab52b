package player

import (
	"context"
	"errors"
	"time"

	"github.com/tapline-games/tapline/internal/combat"
	"github.com/tapline-games/tapline/internal/domain"
	"github.com/tapline-games/tapline/internal/economy"
	"github.com/tapline-games/tapline/internal/event"
	"github.com/tapline-games/tapline/internal/logger"
	"github.com/tapline-games/tapline/internal/metrics"
	"github.com/tapline-games/tapline/internal/settlement"
)

// Click applies one manual click and returns the credited click power.
func (o *Owner) Click(ctx context.Context) (int64, error) {
	var gain int64
	var opErr error
	err := o.do(ctx, func(cctx context.Context) {
		snap := o.deps.Catalog.Snapshot()
		if snap.Config.Maintenance {
			opErr = domain.ErrMaintenance
			return
		}
		gain = o.deps.Economy.ClickPower(snap, o.state, o.modifiers(cctx), o.deps.Now())
		if gain < 0 {
			gain = 0
		}
		opErr = o.mutate(cctx, causeClick, func(st *domain.PlayerState) error {
			st.PrimaryCurrency += gain
			st.LifetimeEarned += gain
			return nil
		})
		if opErr == nil {
			metrics.ClicksTotal.Inc()
		}
	})
	if err != nil {
		return 0, err
	}
	return gain, opErr
}

// Purchase attempts to buy the named item. Validation failures come back in
// the result, not as errors.
func (o *Owner) Purchase(ctx context.Context, itemName string) (economy.PurchaseResult, error) {
	var result economy.PurchaseResult
	var opErr error
	err := o.do(ctx, func(cctx context.Context) {
		snap := o.deps.Catalog.Snapshot()
		if snap.Config.Maintenance {
			result = economy.PurchaseResult{Reason: economy.ReasonMaintenance}
			return
		}
		opErr = o.mutate(cctx, causePurchase, func(st *domain.PlayerState) error {
			result = o.deps.Economy.AttemptPurchase(snap, st, itemName)
			if !result.Success {
				return errNoMutation
			}
			return nil
		})
		if errors.Is(opErr, errNoMutation) {
			opErr = nil
		}
		if opErr == nil && result.Success && o.deps.Bus != nil {
			_ = o.deps.Bus.Publish(cctx, event.Event{
				Version: event.EventSchemaVersion,
				Type:    event.PurchaseCompleted,
				Payload: event.PurchaseCompletedPayloadV1{
					UserID:   o.userID,
					ItemName: itemName,
					Cost:     result.Cost,
					NewLevel: result.NewLevel,
				},
			})
		}
	})
	if err != nil {
		return economy.PurchaseResult{}, err
	}
	return result, opErr
}

// errNoMutation aborts a mutate() without treating it as a failure: the
// transition function declined to change anything.
var errNoMutation = errors.New("no mutation")

// ApplyAttack applies an inbound attack effect. An unknown effect id is
// logged and dropped without error so the transport still acknowledges it.
func (o *Owner) ApplyAttack(ctx context.Context, effectID string, durationMin int, senderLabel, weaponLabel string) error {
	return o.do(ctx, func(cctx context.Context) {
		snap := o.deps.Catalog.Snapshot()
		now := o.deps.Now()

		var applied domain.ActiveEffect
		err := o.mutate(cctx, causeAttack, func(st *domain.PlayerState) error {
			var aerr error
			applied, aerr = o.deps.Combat.ApplyEffect(snap, st, effectID,
				time.Duration(durationMin)*time.Minute, senderLabel, weaponLabel, now)
			return aerr
		})
		if err != nil {
			if errors.Is(err, domain.ErrUnknownEffect) {
				logger.FromContext(cctx).Warn("Dropping attack with unknown effect id",
					"effect_id", effectID, "sender", senderLabel)
				return
			}
			logger.FromContext(cctx).Error("Attack apply failed", "effect_id", effectID, "error", err)
			return
		}

		metrics.SignalsApplied.WithLabelValues(string(domain.SignalAttack)).Inc()
		if o.deps.Bus != nil {
			_ = o.deps.Bus.Publish(cctx, event.Event{
				Version: event.EventSchemaVersion,
				Type:    event.EffectApplied,
				Payload: event.EffectAppliedPayloadV1{
					UserID:     o.userID,
					EffectID:   applied.EffectID,
					SourceName: applied.SourceName,
					Label:      applied.Label,
					ExpiresAt:  applied.Expiry.Unix(),
				},
			})
		}
	})
}

// ApplyGift credits an inbound gift. Unknown gift ids are logged and dropped.
func (o *Owner) ApplyGift(ctx context.Context, giftEffectID, senderLabel string) error {
	return o.do(ctx, func(cctx context.Context) {
		snap := o.deps.Catalog.Snapshot()

		var gift domain.Item
		err := o.mutate(cctx, causeGift, func(st *domain.PlayerState) error {
			var gerr error
			gift, gerr = o.deps.Combat.ApplyGift(snap, st, giftEffectID)
			return gerr
		})
		if err != nil {
			if errors.Is(err, domain.ErrUnknownEffect) {
				logger.FromContext(cctx).Warn("Dropping gift with unknown effect id",
					"gift_id", giftEffectID, "sender", senderLabel)
				return
			}
			logger.FromContext(cctx).Error("Gift apply failed", "gift_id", giftEffectID, "error", err)
			return
		}

		metrics.SignalsApplied.WithLabelValues(string(domain.SignalGift)).Inc()
		if o.deps.Bus != nil {
			_ = o.deps.Bus.Publish(cctx, event.Event{
				Version: event.EventSchemaVersion,
				Type:    event.GiftReceived,
				Payload: event.GiftReceivedPayloadV1{
					UserID:     o.userID,
					GiftID:     gift.EffectID,
					SourceName: senderLabel,
				},
			})
		}
	})
}

// Defend consumes one unit of the named defense item against the active
// attacks.
func (o *Owner) Defend(ctx context.Context, itemName string) (combat.DefendResult, error) {
	var result combat.DefendResult
	var opErr error
	err := o.do(ctx, func(cctx context.Context) {
		snap := o.deps.Catalog.Snapshot()
		opErr = o.mutate(cctx, causeDefend, func(st *domain.PlayerState) error {
			var derr error
			result, derr = o.deps.Combat.TryDefend(snap, st, itemName, o.deps.Now())
			return derr
		})
		if opErr == nil && o.deps.Bus != nil {
			snapItem, _ := snap.Item(itemName)
			_ = o.deps.Bus.Publish(cctx, event.Event{
				Version: event.EventSchemaVersion,
				Type:    event.EffectDefended,
				Payload: event.EffectDefendedPayloadV1{
					UserID:          o.userID,
					DefenseEffectID: snapItem.EffectID,
					Outcome:         string(result.Outcome),
					RemovedEffectID: result.RemovedEffectID,
				},
			})
		}
	})
	if err != nil {
		return combat.DefendResult{}, err
	}
	return result, opErr
}

// Resume opens a live session: the offline settlement is applied first as a
// single atomic credit, then the tick loop starts.
func (o *Owner) Resume(ctx context.Context) (settlement.Result, error) {
	var result settlement.Result
	var opErr error
	err := o.do(ctx, func(cctx context.Context) {
		snap := o.deps.Catalog.Snapshot()
		now := o.deps.Now()
		members := 0
		if o.deps.Presence != nil && o.state.GroupID != "" {
			members, _ = o.deps.Presence.Bonus(cctx, o.state.GroupID)
		}

		// Stamp-clear and credit land in the same durable write; a crash can
		// replay the resume but never the credit.
		opErr = o.mutate(cctx, causeSettlement, func(st *domain.PlayerState) error {
			result = o.deps.Settle.Settle(snap, st, members, now)
			if !result.Applied {
				return errNoMutation
			}
			return nil
		})
		if errors.Is(opErr, errNoMutation) {
			opErr = nil
		}
		if opErr != nil {
			return
		}

		if result.Applied && result.Credited > 0 && o.deps.Bus != nil {
			_ = o.deps.Bus.Publish(cctx, event.Event{
				Version: event.EventSchemaVersion,
				Type:    event.SettlementCredit,
				Payload: event.SettlementCreditPayloadV1{
					UserID:         o.userID,
					ElapsedSeconds: int64(result.Elapsed.Seconds()),
					Credited:       result.Credited,
				},
			})
		}

		o.startTickingLocked()
	})
	if err != nil {
		return settlement.Result{}, err
	}
	return result, opErr
}

// Depart closes the live session and persists the departure stamp.
func (o *Owner) Depart(ctx context.Context) error {
	return o.do(ctx, func(cctx context.Context) {
		o.departLocked(cctx)
	})
}

// SetMuted records the device mute flag feeding the rate penalty.
func (o *Owner) SetMuted(ctx context.Context, muted bool) error {
	var opErr error
	err := o.do(ctx, func(cctx context.Context) {
		if o.state.Muted == muted {
			return
		}
		opErr = o.mutate(cctx, causeMute, func(st *domain.PlayerState) error {
			st.Muted = muted
			return nil
		})
	})
	if err != nil {
		return err
	}
	return opErr
}

// SetGroup binds the player to a cooperative group (empty id unbinds).
func (o *Owner) SetGroup(ctx context.Context, groupID string) error {
	var opErr error
	err := o.do(ctx, func(cctx context.Context) {
		opErr = o.mutate(cctx, causeGroup, func(st *domain.PlayerState) error {
			st.GroupID = groupID
			return nil
		})
	})
	if err != nil {
		return err
	}
	return opErr
}

// HardReset zeroes the whole aggregate and the shown-notification set.
func (o *Owner) HardReset(ctx context.Context) error {
	var opErr error
	err := o.do(ctx, func(cctx context.Context) {
		o.stopTickingLocked()
		opErr = o.mutate(cctx, causeReset, func(st *domain.PlayerState) error {
			st.Reset()
			return nil
		})
		if opErr != nil {
			return
		}
		if err := o.deps.Notifier.ClearShown(cctx, o.userID); err != nil {
			logger.FromContext(cctx).Warn("Failed to clear shown notifications on reset", "error", err)
		}
	})
	if err != nil {
		return err
	}
	return opErr
}
