package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tapline-games/tapline/internal/domain"
)

// PlayerRepository implements the player blob store for PostgreSQL. The whole
// aggregate is stored as one JSONB value per user.
type PlayerRepository struct {
	db *pgxpool.Pool
}

// NewPlayerRepository creates a new PlayerRepository
func NewPlayerRepository(db *pgxpool.Pool) *PlayerRepository {
	return &PlayerRepository{db: db}
}

// GetPlayerState loads the aggregate; (nil, nil) for an unknown user.
func (r *PlayerRepository) GetPlayerState(ctx context.Context, userID string) (*domain.PlayerState, error) {
	var blob []byte
	err := r.db.QueryRow(ctx,
		`SELECT state FROM player_states WHERE user_id = $1`, userID).Scan(&blob)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load player state: %w", err)
	}

	state := domain.NewPlayerState(userID)
	if err := json.Unmarshal(blob, state); err != nil {
		return nil, fmt.Errorf("failed to decode player state: %w", err)
	}
	// Guard against blobs written before these maps existed.
	if state.ItemLevels == nil {
		state.ItemLevels = make(map[string]int)
	}
	if state.ActiveEffects == nil {
		state.ActiveEffects = make(map[string]domain.ActiveEffect)
	}
	state.UserID = userID
	return state, nil
}

// SavePlayerState upserts the whole aggregate in one write.
func (r *PlayerRepository) SavePlayerState(ctx context.Context, state *domain.PlayerState) error {
	blob, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("failed to encode player state: %w", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO player_states (user_id, state, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET state = EXCLUDED.state, updated_at = NOW()
	`, state.UserID, blob)
	if err != nil {
		return fmt.Errorf("failed to save player state: %w", err)
	}
	return nil
}

// DeletePlayerState removes the aggregate.
func (r *PlayerRepository) DeletePlayerState(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM player_states WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to delete player state: %w", err)
	}
	return nil
}
