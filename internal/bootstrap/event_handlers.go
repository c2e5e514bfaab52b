package bootstrap

import (
	"context"
	"log/slog"

	"github.com/tapline-games/tapline/internal/event"
	"github.com/tapline-games/tapline/internal/player"
	"github.com/tapline-games/tapline/internal/sse"
)

// RegisterEventHandlers wires the in-process bus to the SSE hub so that
// per-player announcements reach connected clients. Each forwarded event is
// addressed to the user named in its payload; events without a recognized
// payload are dropped silently (they are internal).
func RegisterEventHandlers(bus event.Bus, hub *sse.Hub, players *player.Manager) {
	forward := func(eventType event.Type) {
		bus.Subscribe(eventType, func(ctx context.Context, e event.Event) error {
			if userID := payloadUserID(e.Payload); userID != "" {
				hub.Send(userID, string(e.Type), e.Payload)
			}
			return nil
		})
	}

	forward(event.PurchaseCompleted)
	forward(event.EffectApplied)
	forward(event.EffectDefended)
	forward(event.GiftReceived)
	forward(event.SettlementCredit)
	forward(event.NotificationFired)

	// A refreshed catalog may carry rules existing state already satisfies;
	// re-evaluate live owners so those fire without another mutation.
	bus.Subscribe(event.CatalogRefreshed, func(ctx context.Context, _ event.Event) error {
		players.ReevaluateNotifications(ctx)
		return nil
	})

	slog.Info(LogMsgEventHandlersRegistered)
}

// payloadUserID pulls the addressee out of the known payload shapes.
func payloadUserID(payload interface{}) string {
	switch p := payload.(type) {
	case event.StateMutatedPayloadV1:
		return p.UserID
	case event.PurchaseCompletedPayloadV1:
		return p.UserID
	case event.EffectAppliedPayloadV1:
		return p.UserID
	case event.EffectDefendedPayloadV1:
		return p.UserID
	case event.GiftReceivedPayloadV1:
		return p.UserID
	case event.SettlementCreditPayloadV1:
		return p.UserID
	case event.NotificationFiredPayloadV1:
		return p.UserID
	default:
		return ""
	}
}
