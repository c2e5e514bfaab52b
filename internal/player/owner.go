package player

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tapline-games/tapline/internal/catalog"
	"github.com/tapline-games/tapline/internal/combat"
	"github.com/tapline-games/tapline/internal/domain"
	"github.com/tapline-games/tapline/internal/economy"
	"github.com/tapline-games/tapline/internal/event"
	"github.com/tapline-games/tapline/internal/logger"
	"github.com/tapline-games/tapline/internal/notification"
	"github.com/tapline-games/tapline/internal/presence"
	"github.com/tapline-games/tapline/internal/repository"
	"github.com/tapline-games/tapline/internal/settlement"
)

// ErrOwnerStopped is returned for commands sent to a stopped owner.
var ErrOwnerStopped = errors.New("player owner stopped")

// Deps are the collaborators one owner needs. All of them are safe for
// concurrent use; only the owner's loop goroutine touches the player state.
type Deps struct {
	Catalog  *catalog.Store
	Economy  *economy.Engine
	Combat   *combat.Engine
	Settle   *settlement.Calculator
	Presence presence.Service
	Notifier notification.Service
	Repo     repository.Player
	Bus      event.Bus

	TickInterval time.Duration
	Now          func() time.Time
}

// Owner is the single mutation owner for one player aggregate. Ticks,
// inbound signals and user actions are all funneled into its command loop,
// so no two mutations can interleave non-atomically.
type Owner struct {
	userID string
	state  *domain.PlayerState
	deps   Deps

	cmds chan command
	stop chan struct{}
	done chan struct{}

	// loop-local; touched only by run().
	ticking    bool
	tickCancel context.CancelFunc
	carry      float64
}

type command struct {
	fn   func(ctx context.Context)
	done chan struct{}
}

// NewOwner wraps a loaded state in its mutation owner and starts the loop.
func NewOwner(state *domain.PlayerState, deps Deps) *Owner {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	o := &Owner{
		userID: state.UserID,
		state:  state,
		deps:   deps,
		cmds:   make(chan command, commandBuffer),
		stop:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go o.run()
	return o
}

func (o *Owner) run() {
	defer close(o.done)
	for {
		select {
		case cmd := <-o.cmds:
			cmd.fn(context.Background())
			close(cmd.done)
		case <-o.stop:
			o.stopTickingLocked()
			return
		}
	}
}

// do runs fn on the loop goroutine and waits for it. fn has exclusive access
// to o.state while it runs.
func (o *Owner) do(ctx context.Context, fn func(ctx context.Context)) error {
	cmd := command{fn: fn, done: make(chan struct{})}
	select {
	case o.cmds <- cmd:
	case <-o.stop:
		return ErrOwnerStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-cmd.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop shuts the owner down. If a session is live it is departed first so
// the departure stamp is persisted for offline settlement.
func (o *Owner) Stop(ctx context.Context) error {
	err := o.do(ctx, func(cctx context.Context) {
		o.departLocked(cctx)
	})
	if err != nil && !errors.Is(err, ErrOwnerStopped) {
		return err
	}
	close(o.stop)
	select {
	case <-o.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// mutate applies a transition to a clone of the state, persists the clone,
// and commits it only on durable-write success; a failed write leaves the
// in-memory aggregate exactly as it was. Committed mutations publish a
// state-mutated event and synchronously re-evaluate the notification rules.
// Must be called on the loop goroutine.
func (o *Owner) mutate(ctx context.Context, cause string, fn func(st *domain.PlayerState) error) error {
	next := o.state.Clone()
	if err := fn(next); err != nil {
		return err
	}

	if err := o.deps.Repo.SavePlayerState(ctx, next); err != nil {
		return fmt.Errorf("state write failed, mutation dropped: %w", err)
	}
	o.state = next

	if o.deps.Bus != nil {
		if err := o.deps.Bus.Publish(ctx, event.NewStateMutatedEvent(o.userID, cause)); err != nil {
			logger.FromContext(ctx).Warn("State mutation event publish failed", "cause", cause, "error", err)
		}
	}

	o.evaluateNotifications(ctx)
	return nil
}

// evaluateNotifications runs the rule engine against the committed state.
// Failures are logged, never propagated: a notification hiccup must not fail
// the mutation that triggered it.
func (o *Owner) evaluateNotifications(ctx context.Context) {
	snap := o.deps.Catalog.Snapshot()
	view := notification.View{
		CurrentAct: o.deps.Economy.CurrentAct(snap, o.state),
		Pps:        o.deps.Economy.ProductionRate(snap, o.state, o.modifiers(ctx), o.deps.Now()),
		Score:      o.state.LifetimeEarned,
	}
	if _, err := o.deps.Notifier.Evaluate(ctx, snap, o.state, view); err != nil {
		logger.FromContext(ctx).Warn("Notification evaluation failed", "user_id", o.userID, "error", err)
	}
}

// ReevaluateNotifications runs the rule engine against the current state
// without mutating it. A catalog refresh may deliver rules the state already
// satisfies; this lets them fire without waiting for the player's next
// mutation.
func (o *Owner) ReevaluateNotifications(ctx context.Context) error {
	return o.do(ctx, func(cctx context.Context) {
		o.evaluateNotifications(cctx)
	})
}

// modifiers folds device mute and the presence aggregator's group outputs.
func (o *Owner) modifiers(ctx context.Context) economy.Modifiers {
	members, fullOnline := 0, false
	if o.deps.Presence != nil && o.state.GroupID != "" {
		members, fullOnline = o.deps.Presence.Bonus(ctx, o.state.GroupID)
	}
	return economy.Modifiers{
		Muted:           o.state.Muted,
		FullGroupOnline: fullOnline,
		GroupMembers:    members,
	}
}

// departLocked stops the tick loop and persists the departure stamp. No-op
// when no session is live. Must be called on the loop goroutine.
func (o *Owner) departLocked(ctx context.Context) {
	if !o.ticking {
		return
	}
	o.stopTickingLocked()

	now := o.deps.Now()
	if err := o.mutate(ctx, causeDepart, func(st *domain.PlayerState) error {
		st.DepartedAt = &now
		return nil
	}); err != nil {
		logger.FromContext(ctx).Error("Failed to persist departure stamp", "user_id", o.userID, "error", err)
	}

	if o.deps.Presence != nil && o.state.GroupID != "" {
		if err := o.deps.Presence.StopSession(ctx, o.state.GroupID, o.userID); err != nil {
			logger.FromContext(ctx).Warn("Failed to clear presence session", "error", err)
		}
	}
}
