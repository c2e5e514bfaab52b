package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// NotificationRepository implements the persisted shown-notification set
type NotificationRepository struct {
	db *pgxpool.Pool
}

// NewNotificationRepository creates a new NotificationRepository
func NewNotificationRepository(db *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// GetShown returns the set of rule ids already fired for a user
func (r *NotificationRepository) GetShown(ctx context.Context, userID string) (map[string]bool, error) {
	rows, err := r.db.Query(ctx,
		`SELECT rule_id FROM shown_notifications WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load shown notifications: %w", err)
	}
	defer rows.Close()

	shown := make(map[string]bool)
	for rows.Next() {
		var ruleID string
		if err := rows.Scan(&ruleID); err != nil {
			return nil, fmt.Errorf("failed to scan rule id: %w", err)
		}
		shown[ruleID] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading shown notifications: %w", err)
	}
	return shown, nil
}

// MarkShown records a fired rule id, idempotently
func (r *NotificationRepository) MarkShown(ctx context.Context, userID, ruleID string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO shown_notifications (user_id, rule_id)
		VALUES ($1, $2)
		ON CONFLICT (user_id, rule_id) DO NOTHING
	`, userID, ruleID)
	if err != nil {
		return fmt.Errorf("failed to mark notification shown: %w", err)
	}
	return nil
}

// ClearShown empties the set on hard reset
func (r *NotificationRepository) ClearShown(ctx context.Context, userID string) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM shown_notifications WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("failed to clear shown notifications: %w", err)
	}
	return nil
}
