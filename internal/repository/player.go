package repository

import (
	"context"

	"github.com/tapline-games/tapline/internal/domain"
)

// Player defines the interface for player state persistence. The contract is
// a key -> blob store: the whole aggregate is written after every mutation
// and reloaded at startup. Get returns (nil, nil) for an unknown user.
type Player interface {
	GetPlayerState(ctx context.Context, userID string) (*domain.PlayerState, error)
	SavePlayerState(ctx context.Context, state *domain.PlayerState) error
	DeletePlayerState(ctx context.Context, userID string) error
}
