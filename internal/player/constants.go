package player

import "time"

const (
	// commandBuffer bounds how many pending commands an owner queues before
	// producers back-pressure.
	commandBuffer = 64

	// DefaultTickInterval is the live production tick period (20 Hz).
	DefaultTickInterval = 50 * time.Millisecond
)

// Mutation causes carried on state-mutated events
const (
	causeClick      = "click"
	causePurchase   = "purchase"
	causeTick       = "tick"
	causeAttack     = "attack"
	causeGift       = "gift"
	causeDefend     = "defend"
	causeSettlement = "settlement"
	causeDepart     = "depart"
	causeReset      = "hard_reset"
	causeMute       = "mute"
	causeGroup      = "group"
)
