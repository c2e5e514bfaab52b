package domain

import "errors"

// Error message string constants - single source of truth for error messages
// Use these in assert.Contains() checks when testing error messages
const (
	// Player errors
	ErrMsgPlayerNotFound = "player not found"

	// Item errors
	ErrMsgItemNotFound  = "item not found"
	ErrMsgUnknownEffect = "unknown effect id"

	// Purchase errors
	ErrMsgInsufficientFunds  = "insufficient funds"
	ErrMsgAlreadyOwned       = "already owned"
	ErrMsgPrerequisiteNotMet = "prerequisite not met"

	// Combat errors
	ErrMsgNotADefense = "item is not a defense"
	ErrMsgNoStock     = "no stock"

	// Group errors
	ErrMsgGroupNotFound  = "group not found"
	ErrMsgAlreadyMember  = "already a group member"
	ErrMsgNotGroupMember = "not a group member"

	// Service errors
	ErrMsgMaintenance  = "maintenance mode active"
	ErrMsgInvalidInput = "invalid input"
)

// Common domain errors
// These errors should be used consistently across all layers of the application.
// Wrap these errors with fmt.Errorf("%w: %s", domain.ErrXxx, details) for additional context.
var (
	// Player errors
	ErrPlayerNotFound = errors.New(ErrMsgPlayerNotFound)

	// Item errors
	ErrItemNotFound  = errors.New(ErrMsgItemNotFound)
	ErrUnknownEffect = errors.New(ErrMsgUnknownEffect)

	// Purchase errors
	ErrInsufficientFunds  = errors.New(ErrMsgInsufficientFunds)
	ErrAlreadyOwned       = errors.New(ErrMsgAlreadyOwned)
	ErrPrerequisiteNotMet = errors.New(ErrMsgPrerequisiteNotMet)

	// Combat errors
	ErrNotADefense = errors.New(ErrMsgNotADefense)
	ErrNoStock     = errors.New(ErrMsgNoStock)

	// Group errors
	ErrGroupNotFound  = errors.New(ErrMsgGroupNotFound)
	ErrAlreadyMember  = errors.New(ErrMsgAlreadyMember)
	ErrNotGroupMember = errors.New(ErrMsgNotGroupMember)

	// Service errors
	ErrMaintenance  = errors.New(ErrMsgMaintenance)
	ErrInvalidInput = errors.New(ErrMsgInvalidInput)
)
