package signal

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tapline-games/tapline/internal/domain"
	"github.com/tapline-games/tapline/internal/logger"
	"github.com/tapline-games/tapline/internal/repository"
)

const (
	// DefaultPollInterval is how often a subscription drains its queue.
	DefaultPollInterval = 2 * time.Second

	// drainBatch bounds how many pending signals one poll applies.
	drainBatch = 32
)

// Applier is the consumer of inbound signals: the player service's attack and
// gift entry points.
type Applier interface {
	ApplyAttack(ctx context.Context, userID, effectID string, durationMin int, senderLabel, weaponLabel string) error
	ApplyGift(ctx context.Context, userID, giftEffectID, senderLabel string) error
}

// Dispatcher moves signals from the durable queue into the player owners.
// Delivery is at-least-once: a signal is acknowledged (deleted) only after
// apply returns, and apply itself is idempotent for attacks (same-id
// reapplication refreshes the singleton effect rather than stacking).
type Dispatcher struct {
	repo     repository.Signal
	applier  Applier
	interval time.Duration

	mu       sync.Mutex
	subs     map[uuid.UUID]*Subscription
	sessions map[string]*Subscription
}

// NewDispatcher creates a signal dispatcher
func NewDispatcher(repo repository.Signal, applier Applier, interval time.Duration) *Dispatcher {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Dispatcher{
		repo:     repo,
		applier:  applier,
		interval: interval,
		subs:     make(map[uuid.UUID]*Subscription),
		sessions: make(map[string]*Subscription),
	}
}

// Subscription is the cancellable handle returned by Subscribe. Closing it
// stops the feed; pending signals stay queued for the next subscriber.
type Subscription struct {
	id     uuid.UUID
	userID string
	cancel context.CancelFunc
	done   chan struct{}

	dispatcher *Dispatcher
	closeOnce  sync.Once
}

// Close cancels the subscription and waits for its loop to exit.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.cancel()
		<-s.done
		s.dispatcher.remove(s.id)
	})
}

// Submit places a signal on the durable queue. The transport calls this
// before acknowledging its own delivery.
func (d *Dispatcher) Submit(ctx context.Context, sig domain.InboundSignal) error {
	if sig.ID == uuid.Nil {
		sig.ID = uuid.New()
	}
	if sig.ReceivedAt.IsZero() {
		sig.ReceivedAt = time.Now()
	}
	if err := d.repo.Enqueue(ctx, sig); err != nil {
		return fmt.Errorf("failed to enqueue signal: %w", err)
	}
	return nil
}

// Subscribe starts draining a user's queue on the poll interval and returns
// the handle to dispose on teardown.
func (d *Dispatcher) Subscribe(userID string) *Subscription {
	ctx, cancel := context.WithCancel(context.Background())
	sub := &Subscription{
		id:         uuid.New(),
		userID:     userID,
		cancel:     cancel,
		done:       make(chan struct{}),
		dispatcher: d,
	}

	d.mu.Lock()
	d.subs[sub.id] = sub
	d.mu.Unlock()

	go func() {
		defer close(sub.done)
		ticker := time.NewTicker(d.interval)
		defer ticker.Stop()

		// Drain immediately on subscribe, then on each tick.
		d.drain(ctx, userID)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				d.drain(ctx, userID)
			}
		}
	}()

	return sub
}

// EnsureSession starts the drain loop for a user's live session. At most one
// session subscription exists per user; a resume while one is live is a no-op.
func (d *Dispatcher) EnsureSession(userID string) {
	d.mu.Lock()
	_, live := d.sessions[userID]
	d.mu.Unlock()
	if live {
		return
	}

	sub := d.Subscribe(userID)

	d.mu.Lock()
	if _, raced := d.sessions[userID]; raced {
		d.mu.Unlock()
		sub.Close()
		return
	}
	d.sessions[userID] = sub
	d.mu.Unlock()
}

// EndSession closes the user's session subscription, if any. Queued signals
// stay durable until the next session drains them.
func (d *Dispatcher) EndSession(userID string) {
	d.mu.Lock()
	sub := d.sessions[userID]
	delete(d.sessions, userID)
	d.mu.Unlock()

	if sub != nil {
		sub.Close()
	}
}

func (d *Dispatcher) remove(id uuid.UUID) {
	d.mu.Lock()
	delete(d.subs, id)
	d.mu.Unlock()
}

// drain applies and acknowledges pending signals for one user. Each signal is
// deleted only after its local apply completed; a crash in between redelivers
// on the next drain, which the idempotent apply tolerates.
func (d *Dispatcher) drain(ctx context.Context, userID string) {
	log := logger.FromContext(ctx)

	pending, err := d.repo.Pending(ctx, userID, drainBatch)
	if err != nil {
		log.Warn("Failed to read pending signals", "user_id", userID, "error", err)
		return
	}

	for _, sig := range pending {
		var applyErr error
		switch sig.Kind {
		case domain.SignalAttack:
			applyErr = d.applier.ApplyAttack(ctx, sig.UserID, sig.EffectID, sig.DurationMin, sig.SenderLabel, sig.WeaponLabel)
		case domain.SignalGift:
			applyErr = d.applier.ApplyGift(ctx, sig.UserID, sig.EffectID, sig.SenderLabel)
		default:
			log.Warn("Dropping signal of unknown kind", "kind", sig.Kind, "signal_id", sig.ID)
		}
		if applyErr != nil {
			log.Warn("Signal apply failed, leaving queued", "signal_id", sig.ID, "error", applyErr)
			continue
		}
		if err := d.repo.Ack(ctx, sig.ID); err != nil {
			log.Warn("Signal ack failed, duplicate delivery possible", "signal_id", sig.ID, "error", err)
		}
	}
}

// Shutdown closes every live subscription.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	subs := make([]*Subscription, 0, len(d.subs))
	for _, s := range d.subs {
		subs = append(subs, s)
	}
	d.sessions = make(map[string]*Subscription)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		for _, s := range subs {
			s.Close()
		}
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
