package bootstrap

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tapline-games/tapline/internal/database/postgres"
	"github.com/tapline-games/tapline/internal/repository"
)

// Repositories holds all repository implementations used by the application.
// This provides a centralized location for repository initialization and
// makes dependency injection clearer.
type Repositories struct {
	Player       repository.Player
	Notification repository.Notification
	Group        repository.Group
	Signal       repository.Signal
}

// InitializeRepositories creates all repository implementations.
func InitializeRepositories(dbPool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Player:       postgres.NewPlayerRepository(dbPool),
		Notification: postgres.NewNotificationRepository(dbPool),
		Group:        postgres.NewGroupRepository(dbPool),
		Signal:       postgres.NewSignalRepository(dbPool),
	}
}
