package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/tapline-games/tapline/internal/domain"
)

// Signal defines the interface for the durable inbound-signal queue. The
// transport enqueues; the dispatcher reads pending signals and acknowledges
// (deletes) each one only after its effect has been durably applied.
type Signal interface {
	Enqueue(ctx context.Context, sig domain.InboundSignal) error
	Pending(ctx context.Context, userID string, limit int) ([]domain.InboundSignal, error)
	Ack(ctx context.Context, id uuid.UUID) error
}
