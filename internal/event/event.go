package event

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Type represents the type of an event
type Type string

// EventSchemaVersion is the current event schema version
const EventSchemaVersion = "1.0"

// Event represents a generic event in the system
type Event struct {
	Version string      `json:"version"` // Event schema version (e.g., "1.0")
	Type    Type        `json:"type"`
	Payload interface{} `json:"payload"`
}

// Common event types
const (
	StateMutated      Type = "player.state_mutated"
	PurchaseCompleted Type = "player.purchase_completed"
	EffectApplied     Type = "combat.effect_applied"
	EffectDefended    Type = "combat.effect_defended"
	GiftReceived      Type = "combat.gift_received"
	SettlementCredit  Type = "settlement.credited"
	CatalogRefreshed  Type = "catalog.refreshed"
	NotificationFired Type = "notification.fired"
)

// Typed event payloads for type safety

// StateMutatedPayloadV1 is published after every committed player mutation.
// The notification engine evaluates its rules from this payload.
type StateMutatedPayloadV1 struct {
	UserID    string `json:"user_id"`
	Cause     string `json:"cause"`
	Timestamp int64  `json:"timestamp"`
}

// PurchaseCompletedPayloadV1 carries the outcome of a successful purchase
type PurchaseCompletedPayloadV1 struct {
	UserID   string `json:"user_id"`
	ItemName string `json:"item_name"`
	Cost     int64  `json:"cost"`
	NewLevel int    `json:"new_level"`
}

// EffectAppliedPayloadV1 carries an applied attack effect
type EffectAppliedPayloadV1 struct {
	UserID     string `json:"user_id"`
	EffectID   string `json:"effect_id"`
	SourceName string `json:"source_name"`
	Label      string `json:"label"`
	ExpiresAt  int64  `json:"expires_at"`
}

// EffectDefendedPayloadV1 carries a defend resolution
type EffectDefendedPayloadV1 struct {
	UserID          string `json:"user_id"`
	DefenseEffectID string `json:"defense_effect_id"`
	Outcome         string `json:"outcome"`
	RemovedEffectID string `json:"removed_effect_id,omitempty"`
}

// GiftReceivedPayloadV1 carries an applied gift
type GiftReceivedPayloadV1 struct {
	UserID     string `json:"user_id"`
	GiftID     string `json:"gift_id"`
	SourceName string `json:"source_name"`
}

// SettlementCreditPayloadV1 carries an offline settlement credit
type SettlementCreditPayloadV1 struct {
	UserID         string `json:"user_id"`
	ElapsedSeconds int64  `json:"elapsed_seconds"`
	Credited       int64  `json:"credited"`
}

// NotificationFiredPayloadV1 carries a fired notification rule for outbound push
type NotificationFiredPayloadV1 struct {
	UserID  string `json:"user_id"`
	RuleID  string `json:"rule_id"`
	Title   string `json:"title"`
	Message string `json:"message"`
}

// NewStateMutatedEvent builds the mutation event published by the player owner
func NewStateMutatedEvent(userID, cause string) Event {
	return Event{
		Version: EventSchemaVersion,
		Type:    StateMutated,
		Payload: StateMutatedPayloadV1{
			UserID:    userID,
			Cause:     cause,
			Timestamp: time.Now().Unix(),
		},
	}
}

// Handler is a function that handles an event
type Handler func(ctx context.Context, event Event) error

// Bus defines the interface for an event bus
type Bus interface {
	Publish(ctx context.Context, event Event) error
	Subscribe(eventType Type, handler Handler)
}

// MemoryBus is an in-memory implementation of the Event Bus
type MemoryBus struct {
	handlers map[Type][]Handler
	mu       sync.RWMutex
}

// NewMemoryBus creates a new MemoryBus
func NewMemoryBus() *MemoryBus {
	return &MemoryBus{
		handlers: make(map[Type][]Handler),
	}
}

// Publish publishes an event to all subscribers. Handlers run synchronously;
// publishers must not hold the player owner's loop while a handler blocks.
func (b *MemoryBus) Publish(ctx context.Context, event Event) error {
	b.mu.RLock()
	handlers, ok := b.handlers[event.Type]
	b.mu.RUnlock()

	if !ok {
		return nil
	}

	var errs []error
	for _, handler := range handlers {
		if err := handler(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%d handler error(s) for %s: %v", len(errs), event.Type, errs)
	}

	return nil
}

// Subscribe subscribes a handler to an event type
func (b *MemoryBus) Subscribe(eventType Type, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)
}
