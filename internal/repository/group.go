package repository

import (
	"context"
	"time"

	"github.com/tapline-games/tapline/internal/domain"
)

// Group defines the interface for the shared cooperative-group store. Get
// returns (nil, nil) for an unknown group.
type Group interface {
	CreateGroup(ctx context.Context, group *domain.GroupState) error
	GetGroup(ctx context.Context, groupID string) (*domain.GroupState, error)
	AddMember(ctx context.Context, groupID, memberID, displayName string) error
	RemoveMember(ctx context.Context, groupID, memberID string) error
	// RecordHeartbeat updates a member's lastSeen, the group's activity
	// timestamp, and the member's session flag in one write.
	RecordHeartbeat(ctx context.Context, groupID, memberID string, at time.Time, sessionActive bool) error
	ClearSession(ctx context.Context, groupID, memberID string) error
}
