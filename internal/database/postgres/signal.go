package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tapline-games/tapline/internal/domain"
)

// SignalRepository implements the durable inbound-signal queue
type SignalRepository struct {
	db *pgxpool.Pool
}

// NewSignalRepository creates a new SignalRepository
func NewSignalRepository(db *pgxpool.Pool) *SignalRepository {
	return &SignalRepository{db: db}
}

// Enqueue inserts a signal; redelivered ids are absorbed by the primary key.
func (r *SignalRepository) Enqueue(ctx context.Context, sig domain.InboundSignal) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO inbound_signals
			(signal_id, user_id, kind, effect_id, duration_minutes, sender_label, weapon_label, received_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (signal_id) DO NOTHING
	`, sig.ID, sig.UserID, string(sig.Kind), sig.EffectID, sig.DurationMin, sig.SenderLabel, sig.WeaponLabel, sig.ReceivedAt)
	if err != nil {
		return fmt.Errorf("failed to enqueue signal: %w", err)
	}
	return nil
}

// Pending returns a user's undelivered signals, oldest first
func (r *SignalRepository) Pending(ctx context.Context, userID string, limit int) ([]domain.InboundSignal, error) {
	rows, err := r.db.Query(ctx, `
		SELECT signal_id, user_id, kind, effect_id, duration_minutes, sender_label, weapon_label, received_at
		FROM inbound_signals
		WHERE user_id = $1
		ORDER BY received_at
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending signals: %w", err)
	}
	defer rows.Close()

	var out []domain.InboundSignal
	for rows.Next() {
		var sig domain.InboundSignal
		var kind string
		if err := rows.Scan(&sig.ID, &sig.UserID, &kind, &sig.EffectID,
			&sig.DurationMin, &sig.SenderLabel, &sig.WeaponLabel, &sig.ReceivedAt); err != nil {
			return nil, fmt.Errorf("failed to scan signal: %w", err)
		}
		sig.Kind = domain.SignalKind(kind)
		out = append(out, sig)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading signals: %w", err)
	}
	return out, nil
}

// Ack deletes a signal after its effect has been durably applied
func (r *SignalRepository) Ack(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM inbound_signals WHERE signal_id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to ack signal: %w", err)
	}
	return nil
}
