package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tapline-games/tapline/internal/domain"
)

// GroupRepository implements the shared group/presence store for PostgreSQL
type GroupRepository struct {
	db *pgxpool.Pool
}

// NewGroupRepository creates a new GroupRepository
func NewGroupRepository(db *pgxpool.Pool) *GroupRepository {
	return &GroupRepository{db: db}
}

// CreateGroup inserts a group with its initial members
func (r *GroupRepository) CreateGroup(ctx context.Context, group *domain.GroupState) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO groups (group_id, name, leader_id, last_activity)
		VALUES ($1, $2, $3, $4)
	`, group.ID, group.Name, group.LeaderID, group.LastActivity)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	for memberID, displayName := range group.Members {
		_, err = tx.Exec(ctx, `
			INSERT INTO group_members (group_id, member_id, display_name)
			VALUES ($1, $2, $3)
		`, group.ID, memberID, displayName)
		if err != nil {
			return fmt.Errorf("failed to insert member %s: %w", memberID, err)
		}
	}

	return tx.Commit(ctx)
}

// GetGroup loads a group with its members; (nil, nil) for an unknown id.
func (r *GroupRepository) GetGroup(ctx context.Context, groupID string) (*domain.GroupState, error) {
	group := &domain.GroupState{
		Members:        make(map[string]string),
		LastSeen:       make(map[string]time.Time),
		ActiveSessions: make(map[string]bool),
	}

	err := r.db.QueryRow(ctx, `
		SELECT group_id, name, leader_id, last_activity
		FROM groups WHERE group_id = $1
	`, groupID).Scan(&group.ID, &group.Name, &group.LeaderID, &group.LastActivity)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load group: %w", err)
	}

	rows, err := r.db.Query(ctx, `
		SELECT member_id, display_name, last_seen, session_active
		FROM group_members WHERE group_id = $1
	`, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to load members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var memberID, displayName string
		var lastSeen *time.Time
		var sessionActive bool
		if err := rows.Scan(&memberID, &displayName, &lastSeen, &sessionActive); err != nil {
			return nil, fmt.Errorf("failed to scan member: %w", err)
		}
		group.Members[memberID] = displayName
		if lastSeen != nil {
			group.LastSeen[memberID] = *lastSeen
		}
		if sessionActive {
			group.ActiveSessions[memberID] = true
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading members: %w", err)
	}

	return group, nil
}

// AddMember inserts a member row, idempotently
func (r *GroupRepository) AddMember(ctx context.Context, groupID, memberID, displayName string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO group_members (group_id, member_id, display_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (group_id, member_id) DO UPDATE
		SET display_name = EXCLUDED.display_name
	`, groupID, memberID, displayName)
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	return nil
}

// RemoveMember deletes a member row
func (r *GroupRepository) RemoveMember(ctx context.Context, groupID, memberID string) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM group_members WHERE group_id = $1 AND member_id = $2`,
		groupID, memberID)
	if err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	return nil
}

// RecordHeartbeat advances lastSeen, the session flag and the group activity
// timestamp together.
func (r *GroupRepository) RecordHeartbeat(ctx context.Context, groupID, memberID string, at time.Time, sessionActive bool) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE group_members
		SET last_seen = $3, session_active = $4
		WHERE group_id = $1 AND member_id = $2
	`, groupID, memberID, at, sessionActive)
	if err != nil {
		return fmt.Errorf("failed to record heartbeat: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotGroupMember
	}

	_, err = tx.Exec(ctx,
		`UPDATE groups SET last_activity = $2 WHERE group_id = $1`, groupID, at)
	if err != nil {
		return fmt.Errorf("failed to update group activity: %w", err)
	}

	return tx.Commit(ctx)
}

// ClearSession drops the member's live-session flag
func (r *GroupRepository) ClearSession(ctx context.Context, groupID, memberID string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE group_members SET session_active = FALSE
		WHERE group_id = $1 AND member_id = $2
	`, groupID, memberID)
	if err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}
