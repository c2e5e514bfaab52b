package repository

import "context"

// Notification defines the interface for the persisted shown-notification
// set. Marking before delivery guarantees at-most-once firing per rule per
// installation even across restarts.
type Notification interface {
	GetShown(ctx context.Context, userID string) (map[string]bool, error)
	MarkShown(ctx context.Context, userID, ruleID string) error
	ClearShown(ctx context.Context, userID string) error
}
