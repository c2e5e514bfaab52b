package domain

import (
	"time"

	"github.com/google/uuid"
)

// SignalKind discriminates inbound peer signals.
type SignalKind string

const (
	SignalAttack SignalKind = "attack"
	SignalGift   SignalKind = "gift"
)

// InboundSignal is one at-least-once delivery from the peer transport. It is
// enqueued durably before dispatch and deleted only after the local apply has
// been persisted, so a crash between the two redelivers rather than loses.
type InboundSignal struct {
	ID          uuid.UUID  `json:"id"`
	UserID      string     `json:"user_id"`
	Kind        SignalKind `json:"kind"`
	EffectID    string     `json:"effect_id"`
	DurationMin int        `json:"duration_minutes,omitempty"`
	SenderLabel string     `json:"sender_label"`
	WeaponLabel string     `json:"weapon_label,omitempty"`
	ReceivedAt  time.Time  `json:"received_at"`
}
