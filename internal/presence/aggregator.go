package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tapline-games/tapline/internal/domain"
	"github.com/tapline-games/tapline/internal/logger"
	"github.com/tapline-games/tapline/internal/repository"
)

// MemberStatus is the derived online view of one group member.
type MemberStatus struct {
	MemberID    string    `json:"member_id"`
	DisplayName string    `json:"display_name"`
	Online      bool      `json:"online"`
	LastSeen    time.Time `json:"last_seen,omitempty"`
	SessionLive bool      `json:"session_live"`
}

// GroupStatus aggregates a group's presence for consumers.
type GroupStatus struct {
	GroupID         string         `json:"group_id"`
	Name            string         `json:"name"`
	Members         []MemberStatus `json:"members"`
	OnlineCount     int            `json:"online_count"`
	FullGroupOnline bool           `json:"full_group_online"`
}

// Service defines the interface for the presence aggregator
type Service interface {
	CreateGroup(ctx context.Context, name, leaderID, leaderName string) (*domain.GroupState, error)
	JoinGroup(ctx context.Context, groupID, memberID, displayName string) error
	LeaveGroup(ctx context.Context, groupID, memberID string) error
	Heartbeat(ctx context.Context, groupID, memberID string) error
	StopSession(ctx context.Context, groupID, memberID string) error
	Status(ctx context.Context, groupID string) (*GroupStatus, error)
	// Bonus returns the member count and full-group-online flag the economy
	// engine folds into its modifiers. Missing groups degrade to no bonus.
	Bonus(ctx context.Context, groupID string) (members int, fullOnline bool)
}

type service struct {
	repo repository.Group
	now  func() time.Time
}

// NewService creates a presence aggregator over the shared group store
func NewService(repo repository.Group) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) CreateGroup(ctx context.Context, name, leaderID, leaderName string) (*domain.GroupState, error) {
	group := &domain.GroupState{
		ID:             uuid.NewString(),
		Name:           name,
		LeaderID:       leaderID,
		Members:        map[string]string{leaderID: leaderName},
		LastSeen:       map[string]time.Time{},
		ActiveSessions: map[string]bool{},
		LastActivity:   s.now(),
	}
	if err := s.repo.CreateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}
	return group, nil
}

func (s *service) JoinGroup(ctx context.Context, groupID, memberID, displayName string) error {
	group, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to get group: %w", err)
	}
	if group == nil {
		return domain.ErrGroupNotFound
	}
	if _, ok := group.Members[memberID]; ok {
		return domain.ErrAlreadyMember
	}
	return s.repo.AddMember(ctx, groupID, memberID, displayName)
}

func (s *service) LeaveGroup(ctx context.Context, groupID, memberID string) error {
	group, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to get group: %w", err)
	}
	if group == nil {
		return domain.ErrGroupNotFound
	}
	if _, ok := group.Members[memberID]; !ok {
		return domain.ErrNotGroupMember
	}
	return s.repo.RemoveMember(ctx, groupID, memberID)
}

// Heartbeat asserts a member's activity: lastSeen, group activity timestamp
// and the live-session flag all advance together.
func (s *service) Heartbeat(ctx context.Context, groupID, memberID string) error {
	group, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to get group: %w", err)
	}
	if group == nil {
		return domain.ErrGroupNotFound
	}
	if _, ok := group.Members[memberID]; !ok {
		return domain.ErrNotGroupMember
	}
	return s.repo.RecordHeartbeat(ctx, groupID, memberID, s.now(), true)
}

// StopSession clears the member's session flag on teardown so a stale
// heartbeat timestamp cannot keep the full-group bonus alive.
func (s *service) StopSession(ctx context.Context, groupID, memberID string) error {
	return s.repo.ClearSession(ctx, groupID, memberID)
}

func (s *service) Status(ctx context.Context, groupID string) (*GroupStatus, error) {
	group, err := s.repo.GetGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	if group == nil {
		return nil, domain.ErrGroupNotFound
	}

	now := s.now()
	status := &GroupStatus{
		GroupID:         group.ID,
		Name:            group.Name,
		FullGroupOnline: group.FullGroupOnline(),
	}
	for memberID, name := range group.Members {
		m := MemberStatus{
			MemberID:    memberID,
			DisplayName: name,
			Online:      group.MemberOnline(memberID, now),
			SessionLive: group.ActiveSessions[memberID],
		}
		if seen, ok := group.LastSeen[memberID]; ok {
			m.LastSeen = seen
		}
		if m.Online {
			status.OnlineCount++
		}
		status.Members = append(status.Members, m)
	}
	return status, nil
}

func (s *service) Bonus(ctx context.Context, groupID string) (int, bool) {
	if groupID == "" {
		return 0, false
	}
	group, err := s.repo.GetGroup(ctx, groupID)
	if err != nil || group == nil {
		if err != nil {
			logger.FromContext(ctx).Warn("Presence lookup failed, no group bonus", "group_id", groupID, "error", err)
		}
		return 0, false
	}
	return len(group.Members), group.FullGroupOnline()
}
